package artist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a, b ,, c", []string{"a", "b", "c"}},
		{" , ,", []string{}},
		{"trap galego,Vigo", []string{"trap galego", "Vigo"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseKeywords(tt.in), "input %q", tt.in)
	}
}

func TestParseExamples(t *testing.T) {
	got := ParseExamples("first line\n\n  second, with comma  \n\n")
	assert.Equal(t, []string{"first line", "second, with comma"}, got)
	assert.NotNil(t, ParseExamples(""))
}

func TestJoinRoundTrip(t *testing.T) {
	keywords := []string{"folk", "tour", "live"}
	assert.Equal(t, keywords, ParseKeywords(JoinKeywords(keywords)))

	examples := []string{"one, two", "three"}
	assert.Equal(t, examples, ParseExamples(JoinExamples(examples)))
}

func TestDefaultID(t *testing.T) {
	assert.Equal(t, "novo_id", DefaultID(""))
	assert.Equal(t, "novo_id", DefaultID("   "))
	assert.Equal(t, "sheila_patricia", DefaultID("Sheila Patricia"))
}

func TestParseLanguage(t *testing.T) {
	l, err := ParseLanguage("")
	require.NoError(t, err)
	assert.Equal(t, LanguageGalician, l)

	l, err = ParseLanguage("english")
	require.NoError(t, err)
	assert.Equal(t, LanguageEnglish, l)

	_, err = ParseLanguage("Português")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseS3Location(t *testing.T) {
	bucket, key, ok := ParseS3Location("s3://personas/config/artist-config.json")
	require.True(t, ok)
	assert.Equal(t, "personas", bucket)
	assert.Equal(t, "config/artist-config.json", key)

	for _, bad := range []string{"artist-config.json", "s3://bucket", "s3:///key", "s3://bucket/"} {
		_, _, ok := ParseS3Location(bad)
		assert.False(t, ok, bad)
	}
}
