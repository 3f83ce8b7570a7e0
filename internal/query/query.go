package query

import (
	"net/url"
	"regexp"
	"strings"

	"go-wallhaven-rotator/internal/models"
)

const WallhavenSearchUrl = "https://wallhaven.cc/api/v1/search"

// ExactIDPrefix marks a search term that looks up a single catalog id.
// The catalog treats it as atomic, so it never gets extra qualifiers.
const ExactIDPrefix = "id:"

// DarkQualifier is appended to a term when following a dark system theme.
const DarkQualifier = "+dark"

// Ordered toggle keys; the bitmask is positional so the order is part of the contract.
var (
	CategoryKeys = []string{"CategoryGeneral", "CategoryAnime", "CategoryPeople"}
	PurityKeys   = []string{"PuritySFW", "PuritySketchy", "PurityNSFW"}
)

var catalogIDPattern = regexp.MustCompile(`wallhaven-([a-zA-Z0-9]+)`)

// Flags resolves boolean configuration toggles by key. models.Config implements it.
type Flags interface {
	Flag(key string) bool
}

// SearchQuery is the chosen search term and its encoded query parameter.
type SearchQuery struct {
	Query      string
	NextIndex  int
	QueryParam string
}

// ExtractCatalogID returns the id embedded in a "wallhaven-<id>" URL.
func ExtractCatalogID(rawURL string) (string, bool) {
	match := catalogIDPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// BuildToggleMask emits "<paramName>=<bits>" with one bit per key, in key order.
func BuildToggleMask(flags Flags, paramName string, keys []string) string {
	var bits strings.Builder
	for _, key := range keys {
		if flags.Flag(key) {
			bits.WriteByte('1')
		} else {
			bits.WriteByte('0')
		}
	}
	return paramName + "=" + bits.String()
}

// BuildRatioFilter returns "ratios=<list>&" or "" when any ratio is allowed
// or none is selected. The trailing separator lets callers concatenate directly.
func BuildRatioFilter(cfg models.Config) string {
	if cfg.RatioAny {
		return ""
	}

	var ratios []string
	if cfg.Ratio169 {
		ratios = append(ratios, "16x9")
	}
	if cfg.Ratio1610 {
		ratios = append(ratios, "16x10")
	}
	if cfg.RatioCustom {
		ratios = append(ratios, cfg.RatioCustomValue)
	}

	if len(ratios) == 0 {
		return ""
	}
	return "ratios=" + strings.Join(ratios, ",") + "&"
}

// BuildSearchQuery picks one of the comma separated terms in cfg.Query.
// intn is the random source (rand.IntN in production). A pick equal to
// previousTermIndex is advanced by one so the same term is not used twice in a row.
func BuildSearchQuery(cfg models.Config, systemDarkMode bool, previousTermIndex int, intn func(int) int) SearchQuery {
	terms := strings.Split(cfg.Query, ",")
	termIndex := intn(len(terms))
	if termIndex == previousTermIndex {
		termIndex = (termIndex + 1) % len(terms)
	}

	finalQuery := strings.TrimSpace(terms[termIndex])
	if cfg.FollowSystemTheme && systemDarkMode && !strings.HasPrefix(finalQuery, ExactIDPrefix) {
		finalQuery += DarkQualifier
	}

	return SearchQuery{
		Query:      finalQuery,
		NextIndex:  termIndex,
		QueryParam: "q=" + encodeComponent(finalQuery),
	}
}

// BuildSearchURL composes the full catalog search URL for the current configuration.
func BuildSearchURL(cfg models.Config, systemDarkMode bool, previousTermIndex int, intn func(int) int) (string, SearchQuery) {
	sq := BuildSearchQuery(cfg, systemDarkMode, previousTermIndex, intn)

	sorting := cfg.Sorting
	if sorting == "" {
		sorting = "random"
	}

	base := cfg.SearchURL
	if base == "" {
		base = WallhavenSearchUrl
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("?")
	b.WriteString(BuildRatioFilter(cfg))
	b.WriteString(BuildToggleMask(cfg, "categories", CategoryKeys))
	b.WriteString("&")
	b.WriteString(BuildToggleMask(cfg, "purity", PurityKeys))
	b.WriteString("&sorting=")
	b.WriteString(url.QueryEscape(sorting))
	b.WriteString("&")
	b.WriteString(sq.QueryParam)
	if cfg.ApiKey != "" {
		b.WriteString("&apikey=")
		b.WriteString(url.QueryEscape(cfg.ApiKey))
	}
	return b.String(), sq
}

// encodeComponent escapes like a URI component: spaces become %20, not '+'.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
