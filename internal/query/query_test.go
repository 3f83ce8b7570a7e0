package query

import (
	"strings"
	"testing"

	"go-wallhaven-rotator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixed returns an intn that always picks n, clamped to the range.
func fixed(n int) func(int) int {
	return func(max int) int {
		if n >= max {
			return max - 1
		}
		return n
	}
}

type mapFlags map[string]bool

func (m mapFlags) Flag(key string) bool { return m[key] }

func TestExtractCatalogID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   string
		wantOk bool
	}{
		{"Full image URL", "https://x/wallhaven-ab12cd.jpg", "ab12cd", true},
		{"Real path", "https://w.wallhaven.cc/full/zy/wallhaven-zyxvqy.png", "zyxvqy", true},
		{"No id", "https://x/foo.jpg", "", false},
		{"Empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCatalogID(tt.url)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildToggleMask(t *testing.T) {
	tests := []struct {
		name  string
		flags mapFlags
		keys  []string
		want  string
	}{
		{"All on", mapFlags{"a": true, "b": true, "c": true}, []string{"a", "b", "c"}, "p=111"},
		{"Positional", mapFlags{"a": true, "c": true}, []string{"a", "b", "c"}, "p=101"},
		{"Order matters", mapFlags{"a": true, "c": true}, []string{"c", "b", "a", "d"}, "p=1010"},
		{"No keys", mapFlags{}, nil, "p="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildToggleMask(tt.flags, "p", tt.keys)
			assert.Equal(t, tt.want, got)
			bits := strings.TrimPrefix(got, "p=")
			require.Len(t, bits, len(tt.keys))
			for i, key := range tt.keys {
				assert.Equal(t, tt.flags[key], bits[i] == '1', "position %d (%s)", i, key)
			}
		})
	}
}

func TestBuildToggleMaskWithConfig(t *testing.T) {
	cfg := models.Config{CategoryGeneral: true, CategoryPeople: true, PuritySFW: true}
	assert.Equal(t, "categories=101", BuildToggleMask(cfg, "categories", CategoryKeys))
	assert.Equal(t, "purity=100", BuildToggleMask(cfg, "purity", PurityKeys))
}

func TestBuildRatioFilter(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.Config
		want string
	}{
		{"Any ratio", models.Config{RatioAny: true, Ratio169: true}, ""},
		{"Nothing selected", models.Config{}, ""},
		{"16x9", models.Config{Ratio169: true}, "ratios=16x9&"},
		{"All three", models.Config{Ratio169: true, Ratio1610: true, RatioCustom: true, RatioCustomValue: "21x9"}, "ratios=16x9,16x10,21x9&"},
		{"Custom only", models.Config{RatioCustom: true, RatioCustomValue: "32x9"}, "ratios=32x9&"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildRatioFilter(tt.cfg))
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name      string
		cfg       models.Config
		dark      bool
		previous  int
		pick      int
		wantQuery string
		wantIndex int
		wantParam string
	}{
		{
			name:      "Exact id never gets dark qualifier",
			cfg:       models.Config{Query: "cats, id:123", FollowSystemTheme: true},
			dark:      true,
			previous:  0,
			pick:      1,
			wantQuery: "id:123",
			wantIndex: 1,
			wantParam: "q=id%3A123",
		},
		{
			name:      "Dark qualifier appended",
			cfg:       models.Config{Query: "cats, dogs", FollowSystemTheme: true},
			dark:      true,
			previous:  1,
			pick:      0,
			wantQuery: "cats+dark",
			wantIndex: 0,
			wantParam: "q=cats%2Bdark",
		},
		{
			name:      "Not following theme",
			cfg:       models.Config{Query: "cats, dogs"},
			dark:      true,
			previous:  -1,
			pick:      1,
			wantQuery: "dogs",
			wantIndex: 1,
			wantParam: "q=dogs",
		},
		{
			name:      "Collision advances by one",
			cfg:       models.Config{Query: "a,b,c"},
			previous:  2,
			pick:      2,
			wantQuery: "a",
			wantIndex: 0,
			wantParam: "q=a",
		},
		{
			name:      "Single term stays put",
			cfg:       models.Config{Query: "nature landscape"},
			previous:  0,
			pick:      0,
			wantQuery: "nature landscape",
			wantIndex: 0,
			wantParam: "q=nature%20landscape",
		},
		{
			name:      "Empty query in dark mode",
			cfg:       models.Config{FollowSystemTheme: true},
			dark:      true,
			previous:  -1,
			pick:      0,
			wantQuery: "+dark",
			wantIndex: 0,
			wantParam: "q=%2Bdark",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSearchQuery(tt.cfg, tt.dark, tt.previous, fixed(tt.pick))
			assert.Equal(t, tt.wantQuery, got.Query)
			assert.Equal(t, tt.wantIndex, got.NextIndex)
			assert.Equal(t, tt.wantParam, got.QueryParam)
		})
	}
}

func TestBuildSearchURL(t *testing.T) {
	cfg := models.Config{
		ApiKey:          "secret",
		Query:           "mountains",
		CategoryGeneral: true,
		PuritySFW:       true,
		Ratio169:        true,
	}
	got, sq := BuildSearchURL(cfg, false, -1, fixed(0))
	assert.Equal(t, "mountains", sq.Query)
	assert.Equal(t, WallhavenSearchUrl+"?ratios=16x9&categories=100&purity=100&sorting=random&q=mountains&apikey=secret", got)
}

func TestBuildSearchURLCustomEndpoint(t *testing.T) {
	cfg := models.Config{SearchURL: "http://127.0.0.1:8080/api/v1/search", Query: "a", RatioAny: true}
	got, _ := BuildSearchURL(cfg, false, -1, fixed(0))
	assert.True(t, strings.HasPrefix(got, "http://127.0.0.1:8080/api/v1/search?categories=000&purity=000&sorting=random&q=a"), got)
}
