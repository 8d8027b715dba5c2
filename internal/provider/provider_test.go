package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestResolveModel(t *testing.T) {
	tests := []struct {
		in     string
		family Family
		id     string
	}{
		{"", FamilyGemini, "gemini-2.0-flash"},
		{"gemini-flash", FamilyGemini, "gemini-2.0-flash"},
		{"gemini-2.5-flash", FamilyGemini, "gemini-2.5-flash"},
		{"haiku", FamilyClaude, "claude-haiku-4-5-20251001"},
		{"claude-opus-4-1", FamilyClaude, "claude-opus-4-1"},
		{"nova-lite", FamilyNova, "us.amazon.nova-2-lite-v1:0"},
	}
	for _, tt := range tests {
		family, id, err := ResolveModel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.family, family, tt.in)
		assert.Equal(t, tt.id, id, tt.in)
	}

	_, _, err := ResolveModel("gpt-4o")
	assert.Error(t, err)
}

func TestNew_MissingKeys(t *testing.T) {
	_, err := New(context.Background(), "gemini-flash", Keys{})
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = New(context.Background(), "sonnet", Keys{Google: "x"})
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestTextOnly(t *testing.T) {
	got, err := textOnly([]Part{TextPart("a"), TextPart("b")})
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)

	_, err = textOnly([]Part{TextPart("a"), FilePart(&File{Name: "files/1", MIMEType: "video/mp4"})})
	assert.ErrorIs(t, err, ErrMediaUnsupported)
}

func TestClaude_RejectsMedia(t *testing.T) {
	c, err := NewClaude("test-key", "claude-haiku-4-5-20251001")
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), []Part{FilePart(&File{MIMEType: "image/png"})}, Options{})
	assert.ErrorIs(t, err, ErrMediaUnsupported)
}

type fakeConverse struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (f *fakeConverse) Converse(ctx context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = in
	return f.out, f.err
}

func novaOutput(texts ...string) *bedrockruntime.ConverseOutput {
	var blocks []types.ContentBlock
	for _, s := range texts {
		blocks = append(blocks, &types.ContentBlockMemberText{Value: s})
	}
	return &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{Value: types.Message{Content: blocks}},
	}
}

func TestNova_Generate(t *testing.T) {
	fake := &fakeConverse{out: novaOutput(`{"a":`, `1}`)}
	n := &Nova{model: "us.amazon.nova-2-lite-v1:0", client: fake}

	got, err := n.Generate(context.Background(), []Part{TextPart("hello")}, Options{JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, got)
	require.Len(t, fake.input.System, 1, "JSON mode adds a system instruction")

	fake.out = novaOutput()
	_, err = n.Generate(context.Background(), []Part{TextPart("hello")}, Options{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	fake.err = errors.New("throttled")
	_, err = n.Generate(context.Background(), []Part{TextPart("hello")}, Options{})
	assert.ErrorContains(t, err, "throttled")
}

func TestFileState(t *testing.T) {
	assert.Equal(t, FileStateProcessing, fileState(genai.FileStateProcessing))
	assert.Equal(t, FileStateActive, fileState(genai.FileStateActive))
	assert.Equal(t, FileStateFailed, fileState(genai.FileStateFailed))
	assert.Equal(t, FileStateFailed, fileState(genai.FileStateUnspecified))
}

func TestToGenaiParts(t *testing.T) {
	parts := toGenaiParts([]Part{
		TextPart("SYSTEM PERSONA:\nx\n"),
		FilePart(&File{Name: "files/abc", URI: "https://example.test/files/abc", MIMEType: "video/mp4"}),
	})
	require.Len(t, parts, 2)
	assert.Equal(t, "SYSTEM PERSONA:\nx\n", parts[0].Text)
	require.NotNil(t, parts[1].FileData)
	assert.Equal(t, "https://example.test/files/abc", parts[1].FileData.FileURI)
	assert.Equal(t, "video/mp4", parts[1].FileData.MIMEType)
}
