package codec

import (
	"testing"

	"go-wallhaven-rotator/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		fullURL   string
		thumbURL  string
		localPath string
		isDark    models.Darkness
		want      string
	}{
		{"URL only", "a", "ta", "", models.DarkUnknown, "a|||ta|||"},
		{"Local path", "a", "ta", "/tmp/a.jpg", models.DarkUnknown, "a|||ta|||/tmp/a.jpg"},
		{"File scheme stripped", "a", "ta", "file:///tmp/a.jpg", models.DarkUnknown, "a|||ta|||/tmp/a.jpg"},
		{"Dark", "a", "ta", "/tmp/a.jpg", models.DarkYes, "a|||ta|||/tmp/a.jpg|||1"},
		{"Light", "a", "ta", "", models.DarkNo, "a|||ta||||||0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.fullURL, tt.thumbURL, tt.localPath, tt.isDark)
			if got != tt.want {
				t.Errorf("Encode(%q, %q, %q, %v) = %q, want %q", tt.fullURL, tt.thumbURL, tt.localPath, tt.isDark, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  models.SavedEntry
	}{
		{
			name:  "Legacy single field",
			input: "https://w.wallhaven.cc/full/ab/wallhaven-ab12cd.jpg",
			want: models.SavedEntry{
				FullURL:  "https://w.wallhaven.cc/full/ab/wallhaven-ab12cd.jpg",
				ThumbURL: "https://w.wallhaven.cc/full/ab/wallhaven-ab12cd.jpg",
			},
		},
		{
			name:  "Legacy two fields",
			input: "a|||ta",
			want:  models.SavedEntry{FullURL: "a", ThumbURL: "ta"},
		},
		{
			name:  "Three fields with file scheme",
			input: "a|||ta|||file:///home/u/a.jpg",
			want:  models.SavedEntry{FullURL: "a", ThumbURL: "ta", LocalPath: "/home/u/a.jpg"},
		},
		{
			name:  "Dark hint",
			input: "a|||ta|||/x.jpg|||1",
			want:  models.SavedEntry{FullURL: "a", ThumbURL: "ta", LocalPath: "/x.jpg", IsDark: models.DarkYes},
		},
		{
			name:  "Light hint",
			input: "a|||ta|||/x.jpg|||0",
			want:  models.SavedEntry{FullURL: "a", ThumbURL: "ta", LocalPath: "/x.jpg", IsDark: models.DarkNo},
		},
		{
			name:  "Garbage hint is unknown",
			input: "a|||ta|||/x.jpg|||true",
			want:  models.SavedEntry{FullURL: "a", ThumbURL: "ta", LocalPath: "/x.jpg", IsDark: models.DarkUnknown},
		},
		{
			name:  "Empty string",
			input: "",
			want:  models.SavedEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.input)
			tt.want.Serialized = tt.input
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, dark := range []models.Darkness{models.DarkYes, models.DarkNo} {
		encoded := Encode("https://x/wallhaven-1.jpg", "https://x/th-1.jpg", "/cache/1.jpg", dark)
		got := Decode(encoded)
		assert.Equal(t, models.SavedEntry{
			FullURL:    "https://x/wallhaven-1.jpg",
			ThumbURL:   "https://x/th-1.jpg",
			LocalPath:  "/cache/1.jpg",
			IsDark:     dark,
			Serialized: encoded,
		}, got)
		assert.Equal(t, encoded, Encode(got.FullURL, got.ThumbURL, got.LocalPath, got.IsDark))
	}
}

func TestNormalizeAndPresentPath(t *testing.T) {
	assert.Equal(t, "", NormalizePath(""))
	assert.Equal(t, "/a/b.jpg", NormalizePath("file:///a/b.jpg"))
	assert.Equal(t, "/a/b.jpg", NormalizePath("/a/b.jpg"))
	assert.Equal(t, "file:///a/b.jpg", PresentPath("/a/b.jpg"))
	assert.Equal(t, "file:///a/b.jpg", PresentPath("file:///a/b.jpg"))
	assert.Equal(t, "", PresentPath(""))
}

func TestIsRemoteURL(t *testing.T) {
	assert.True(t, IsRemoteURL("https://wallhaven.cc"))
	assert.True(t, IsRemoteURL("http://example.com/a.jpg"))
	assert.False(t, IsRemoteURL(""))
	assert.False(t, IsRemoteURL("/home/u/a.jpg"))
	assert.False(t, IsRemoteURL("file:///home/u/a.jpg"))
}
