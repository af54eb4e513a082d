package youtube

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"http://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"youtu.be/dQw4w9WgXcQ?si=share", "dQw4w9WgXcQ"},
	}
	for _, tc := range cases {
		got, err := ExtractID(tc.url)
		require.NoError(t, err, "url: %s", tc.url)
		assert.Equal(t, tc.want, got, "url: %s", tc.url)
	}
}

func TestExtractIDRejectsNonYoutube(t *testing.T) {
	for _, url := range []string{
		"",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://youtube.com/watch?v=short",
		"not a url",
	} {
		_, err := ExtractID(url)
		assert.ErrorIs(t, err, ErrInvalidLink, "url: %q", url)
	}
}

func TestVideoMetaWithoutKeyIsNoop(t *testing.T) {
	c := NewClient("")
	meta, err := c.VideoMeta(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Nil(t, meta)
}
