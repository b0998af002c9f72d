package services

import (
	"encoding/json"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
)

// EntityExtractor recognizes regions, metrics, and years in free-text
// queries. Matching is case-insensitive and dictionary-driven: extending the
// vocabulary means editing data, not control flow. Extract is pure and never
// fails; a kind with no match simply stays empty.
type EntityExtractor struct {
	regions       []string          // sorted longest-first so multi-word names win
	metricAliases map[string]string // surface form → canonical metric
	metricKeys    []string          // sorted longest-first
}

// entityDictionary is the on-disk override format for the built-in
// vocabulary.
type entityDictionary struct {
	Regions []string          `json:"regions"`
	Metrics map[string]string `json:"metrics"`
}

var yearRangePattern = regexp.MustCompile(`\b((?:19|20)\d{2})\s*(?:to|through|until|and|[-–])\s*((?:19|20)\d{2})\b`)
var yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// NewEntityExtractor creates an extractor with the built-in vocabulary.
func NewEntityExtractor() *EntityExtractor {
	return newExtractor(defaultRegions(), defaultMetricAliases())
}

// NewEntityExtractorFromFile creates an extractor whose vocabulary is loaded
// from a JSON dictionary file. Entries extend the built-ins.
func NewEntityExtractorFromFile(path string) (*EntityExtractor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dict entityDictionary
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, err
	}

	regions := defaultRegions()
	for _, r := range dict.Regions {
		regions = append(regions, strings.ToLower(strings.TrimSpace(r)))
	}
	metrics := defaultMetricAliases()
	for alias, canonical := range dict.Metrics {
		metrics[strings.ToLower(strings.TrimSpace(alias))] = strings.ToLower(strings.TrimSpace(canonical))
	}
	return newExtractor(regions, metrics), nil
}

func newExtractor(regions []string, metricAliases map[string]string) *EntityExtractor {
	uniq := make(map[string]struct{}, len(regions))
	deduped := regions[:0]
	for _, r := range regions {
		if _, ok := uniq[r]; ok {
			continue
		}
		uniq[r] = struct{}{}
		deduped = append(deduped, r)
	}
	sortLongestFirst(deduped)

	keys := make([]string, 0, len(metricAliases))
	for alias := range metricAliases {
		keys = append(keys, alias)
	}
	sortLongestFirst(keys)

	return &EntityExtractor{
		regions:       deduped,
		metricAliases: metricAliases,
		metricKeys:    keys,
	}
}

// Extract parses the query text into its recognized entities.
func (e *EntityExtractor) Extract(text string) entities.ExtractedEntities {
	lower := strings.ToLower(text)
	result := entities.ExtractedEntities{}

	// Longest names first, each matched span masked so "nagar haveli" does
	// not re-match inside "dadra and nagar haveli".
	masked := lower
	for _, region := range e.regions {
		if idx := indexWord(masked, region); idx >= 0 {
			result.Regions = append(result.Regions, region)
			masked = masked[:idx] + strings.Repeat("\x00", len(region)) + masked[idx+len(region):]
		}
	}

	maskedMetrics := lower
	seen := make(map[string]struct{})
	for _, alias := range e.metricKeys {
		idx := indexWord(maskedMetrics, alias)
		if idx < 0 {
			continue
		}
		canonical := e.metricAliases[alias]
		maskedMetrics = maskedMetrics[:idx] + strings.Repeat("\x00", len(alias)) + maskedMetrics[idx+len(alias):]
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		result.Metrics = append(result.Metrics, canonical)
	}

	result.Years = extractYears(lower)

	if len(result.Regions) >= 2 {
		result.CompareTargets = append([]string(nil), result.Regions...)
	}

	return result
}

// extractYears pulls year ranges first, then standalone years not already
// covered by a range, all normalized to inclusive intervals.
func extractYears(lower string) []entities.YearRange {
	var ranges []entities.YearRange
	consumed := lower

	for _, m := range yearRangePattern.FindAllStringSubmatchIndex(lower, -1) {
		from, err1 := strconv.Atoi(lower[m[2]:m[3]])
		to, err2 := strconv.Atoi(lower[m[4]:m[5]])
		if err1 != nil || err2 != nil {
			continue
		}
		if from > to {
			from, to = to, from
		}
		ranges = append(ranges, entities.YearRange{From: from, To: to})
		consumed = consumed[:m[0]] + strings.Repeat("\x00", m[1]-m[0]) + consumed[m[1]:]
	}

	for _, match := range yearPattern.FindAllString(consumed, -1) {
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		ranges = append(ranges, entities.YearRange{From: year, To: year})
	}
	return ranges
}

// indexWord finds needle in haystack at word boundaries, or -1.
func indexWord(haystack, needle string) int {
	start := 0
	for {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return -1
		}
		idx += start
		before := idx == 0 || !isWordChar(haystack[idx-1])
		afterIdx := idx + len(needle)
		after := afterIdx >= len(haystack) || !isWordChar(haystack[afterIdx])
		if before && after {
			return idx
		}
		start = idx + 1
	}
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func sortLongestFirst(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		if len(values[i]) != len(values[j]) {
			return len(values[i]) > len(values[j])
		}
		return values[i] < values[j]
	})
}

func defaultRegions() []string {
	return []string{
		"andhra pradesh", "arunachal pradesh", "assam", "bihar", "chhattisgarh",
		"goa", "gujarat", "haryana", "himachal pradesh", "jharkhand",
		"karnataka", "kerala", "madhya pradesh", "maharashtra", "manipur",
		"meghalaya", "mizoram", "nagaland", "odisha", "punjab", "rajasthan",
		"sikkim", "tamil nadu", "telangana", "tripura", "uttar pradesh",
		"uttarakhand", "west bengal", "delhi", "chandigarh",
		"dadra and nagar haveli", "daman and diu", "lakshadweep", "puducherry",
		"andaman and nicobar islands", "jammu and kashmir", "ladakh",
	}
}

func defaultMetricAliases() map[string]string {
	return map[string]string{
		"rainfall":                                     "rainfall",
		"precipitation":                                "rainfall",
		"rain":                                         "rainfall",
		"ground water extraction":                      "ground water extraction",
		"groundwater extraction":                       "ground water extraction",
		"extraction":                                   "ground water extraction",
		"annual extractable ground water resources":    "extractable resources",
		"annual extractable groundwater resources":     "extractable resources",
		"extractable resources":                        "extractable resources",
		"water resources":                              "extractable resources",
		"aquifer":                                      "aquifer",
		"bore well":                                    "bore well",
		"tube well":                                    "tube well",
	}
}
