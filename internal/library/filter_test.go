package library

import (
	"testing"

	"go-wallhaven-rotator/internal/codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzyFilter(t *testing.T) {
	entries := codec.DecodeAll([]string{
		"https://w.wallhaven.cc/full/ab/wallhaven-ab12cd.jpg|||t|||/cache/ab12cd.jpg",
		"https://w.wallhaven.cc/full/zz/wallhaven-zz99yy.png",
		"https://example.com/Mountains.jpg",
	})

	all := FuzzyFilter(entries, "  ")
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[2].Position)

	got := FuzzyFilter(entries, "zz99")
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Position)

	got = FuzzyFilter(entries, "MOUNT")
	require.Len(t, got, 1)
	assert.Equal(t, "https://example.com/Mountains.jpg", got[0].Entry.FullURL)

	got = FuzzyFilter(entries, "cache/ab")
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Position)

	assert.Empty(t, FuzzyFilter(entries, "qqqqqq"))
}
