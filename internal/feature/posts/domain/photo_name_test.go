package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"beach.jpg", "beach.jpg"},
		{"my trip photo.png", "my_trip_photo.png"},
		{"../../etc/passwd", "etc_passwd"},
		{`C:\Users\me\img.jpeg`, "C_Users_me_img.jpeg"},
		{".bashrc", "bashrc"},
		{"写真.jpg", "jpg"},
		{"", "photo"},
		{"...", "photo"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}

func TestStoredName(t *testing.T) {
	a := StoredName("beach.jpg")
	b := StoredName("beach.jpg")

	assert.NotEqual(t, a, b)

	prefix, rest, ok := strings.Cut(a, "_")
	require.True(t, ok)
	_, err := uuid.Parse(prefix)
	assert.NoError(t, err)
	assert.Equal(t, "beach.jpg", rest)
}
