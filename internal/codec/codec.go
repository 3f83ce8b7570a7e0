// Package codec converts saved wallpaper records to and from the flat string
// form kept in the saved list.
package codec

import (
	"strings"

	"go-wallhaven-rotator/internal/models"
)

// Delimiter separates fields of a serialized entry. Previously persisted data
// depends on it, so it must never change.
const Delimiter = "|||"

const fileScheme = "file://"

// Encode serializes an entry as fullUrl, thumbUrl, localPath[, isDark].
// An unknown darkness omits the fourth field.
func Encode(fullURL, thumbURL, localPath string, isDark models.Darkness) string {
	fields := []string{fullURL, thumbURL, NormalizePath(localPath)}
	switch isDark {
	case models.DarkYes:
		fields = append(fields, "1")
	case models.DarkNo:
		fields = append(fields, "0")
	}
	return strings.Join(fields, Delimiter)
}

// Decode parses a serialized entry. It never fails: missing trailing fields
// take their defaults so older or damaged data still rotates.
func Decode(serialized string) models.SavedEntry {
	parts := strings.Split(serialized, Delimiter)
	entry := models.SavedEntry{
		FullURL:    parts[0],
		ThumbURL:   parts[0],
		IsDark:     models.DarkUnknown,
		Serialized: serialized,
	}
	if len(parts) > 1 {
		entry.ThumbURL = parts[1]
	}
	if len(parts) > 2 {
		entry.LocalPath = NormalizePath(parts[2])
	}
	if len(parts) > 3 {
		switch parts[3] {
		case "1":
			entry.IsDark = models.DarkYes
		case "0":
			entry.IsDark = models.DarkNo
		}
	}
	return entry
}

// DecodeAll decodes every serialized entry in order.
func DecodeAll(serialized []string) []models.SavedEntry {
	entries := make([]models.SavedEntry, 0, len(serialized))
	for _, s := range serialized {
		entries = append(entries, Decode(s))
	}
	return entries
}

// NormalizePath strips a leading file:// scheme so paths are stored host-native.
func NormalizePath(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimPrefix(raw, fileScheme)
}

// PresentPath turns a stored local path back into a file:// URL.
func PresentPath(localPath string) string {
	if localPath == "" {
		return ""
	}
	return fileScheme + NormalizePath(localPath)
}

// IsRemoteURL reports whether raw points at an HTTP(S) resource.
func IsRemoteURL(raw string) bool {
	return raw != "" && strings.HasPrefix(raw, "http")
}
