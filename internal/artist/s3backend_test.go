package artist

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	getErr  error
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Backend_StoreRoundTrip(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := NewStore(NewS3Backend(fake, "bucket", "artist-config.json"), nil)
	ctx := context.Background()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = store.Create(ctx, Persona{ID: "novo", Name: "Novo", Keywords: []string{"a"}})
	require.NoError(t, err)
	assert.Contains(t, string(fake.objects["bucket/artist-config.json"]), `"id": "novo"`)

	p, err := store.Get(ctx, "novo")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, p.Keywords)
	assert.Equal(t, "s3://bucket/artist-config.json", store.Location())
}

func TestS3Backend_ReadError(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, getErr: errors.New("access denied")}
	_, err := NewS3Backend(fake, "bucket", "key").Read(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoDocument)
}
