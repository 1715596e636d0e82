// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package nlu

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tomtom215/concierge/internal/cache"
)

// Phrase pattern categories attached as Aho-Corasick pattern data.
type phraseKind int

const (
	phraseGenre phraseKind = iota
	phraseMood
	phraseService
)

// phraseData carries the category and canonical form of a dictionary phrase.
type phraseData struct {
	kind      phraseKind
	canonical string
}

// span marks a half-open byte range [start, end) matched in the input.
type span struct {
	start int
	end   int
}

var (
	durationMaxRe = regexp.MustCompile(`(?i)\b(?:under|less than|shorter than|at most|no longer than|within)\s+(\d{1,3})\s*(minutes?|mins?|hours?|hrs?)\b`)
	durationMinRe = regexp.MustCompile(`(?i)\b(?:over|more than|longer than|at least)\s+(\d{1,3})\s*(minutes?|mins?|hours?|hrs?)\b`)

	yearBetweenRe = regexp.MustCompile(`(?i)\bbetween\s+((?:19|20)\d{2})\s+and\s+((?:19|20)\d{2})\b`)
	yearMinRe     = regexp.MustCompile(`(?i)\b(?:from|after|since)\s+((?:19|20)\d{2})\b`)
	yearMaxRe     = regexp.MustCompile(`(?i)\b(?:before|until|up to)\s+((?:19|20)\d{2})\b`)

	doubleQuoteRe = regexp.MustCompile(`"([^"]+)"|“([^”]+)”`)
	singleQuoteRe = regexp.MustCompile(`(?:^|\s)'([^']+)'(?:$|[\s.,!?;:])`)

	// Bare ISO codes are matched case-sensitively; lowercase two-letter
	// words are too ambiguous to treat as regions.
	isoCodeRe = regexp.MustCompile(`\b(US|GB|UK|CA|AU|DE|FR|JP|IN|BR|MX|ES|IT|NL|KR|NZ|IE|SE|NO|DK)\b`)
)

// Extractor recognizes structured entities in free text using dictionary
// phrase matching and regular expressions. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	phrases      *cache.AhoCorasick
	countryOrder []string // full country names, longest first
}

// NewExtractor builds an extractor with the built-in dictionaries.
func NewExtractor() *Extractor {
	phrases := cache.NewAhoCorasick()
	for phrase, canonical := range genreDictionary {
		phrases.AddPattern(phrase, phraseData{kind: phraseGenre, canonical: canonical})
	}
	for phrase, canonical := range moodDictionary {
		phrases.AddPattern(phrase, phraseData{kind: phraseMood, canonical: canonical})
	}
	for phrase, canonical := range serviceDictionary {
		phrases.AddPattern(phrase, phraseData{kind: phraseService, canonical: canonical})
	}
	phrases.Build()

	countryOrder := make([]string, 0, len(countryNames))
	for name := range countryNames {
		countryOrder = append(countryOrder, name)
	}
	// Longest name first so "united kingdom" wins over any shorter overlap.
	sort.Slice(countryOrder, func(i, j int) bool {
		if len(countryOrder[i]) != len(countryOrder[j]) {
			return len(countryOrder[i]) > len(countryOrder[j])
		}
		return countryOrder[i] < countryOrder[j]
	})

	return &Extractor{
		phrases:      phrases,
		countryOrder: countryOrder,
	}
}

// Extract returns the structured entities recognized in text. An input
// with no recognizable entities yields a zero-valued ExtractedEntities
// with no fields set.
func (x *Extractor) Extract(text string) ExtractedEntities {
	entities, _ := x.extract(text)
	return entities
}

// Strip removes every phrase matched by Extract from text and collapses
// the remaining whitespace to single spaces. The result is the "clean"
// free-text query used by the search worker.
func (x *Extractor) Strip(text string) string {
	_, spans := x.extract(text)
	if len(spans) == 0 {
		return strings.Join(strings.Fields(text), " ")
	}

	merged := mergeSpans(spans)

	var b strings.Builder
	prev := 0
	for _, s := range merged {
		b.WriteString(text[prev:s.start])
		b.WriteByte(' ')
		prev = s.end
	}
	b.WriteString(text[prev:])

	return strings.Join(strings.Fields(b.String()), " ")
}

// extract runs all recognizers and returns both the entities and the
// byte spans they matched.
func (x *Extractor) extract(text string) (ExtractedEntities, []span) {
	var entities ExtractedEntities
	var spans []span

	spans = x.extractPhrases(text, &entities, spans)
	spans = x.extractDuration(text, &entities, spans)
	spans = x.extractYears(text, &entities, spans)
	spans = x.extractRegion(text, &entities, spans)
	spans = x.extractTitles(text, &entities, spans)

	return entities, spans
}

// extractPhrases matches genre/mood/service dictionary phrases.
func (x *Extractor) extractPhrases(text string, entities *ExtractedEntities, spans []span) []span {
	for _, m := range x.phrases.Search(text) {
		if !wordBounded(text, m.Position, m.End()) {
			continue
		}

		data := m.Data.(phraseData)
		switch data.kind {
		case phraseGenre:
			entities.Genres = appendUnique(entities.Genres, data.canonical)
		case phraseMood:
			entities.Moods = appendUnique(entities.Moods, data.canonical)
		case phraseService:
			entities.Services = appendUnique(entities.Services, data.canonical)
		}

		spans = append(spans, span{start: m.Position, end: m.End()})
	}
	return spans
}

// extractDuration matches runtime constraints and converts them to minutes.
func (x *Extractor) extractDuration(text string, entities *ExtractedEntities, spans []span) []span {
	if loc := durationMaxRe.FindStringSubmatchIndex(text); loc != nil {
		minutes := durationToMinutes(text[loc[2]:loc[3]], text[loc[4]:loc[5]])
		ensureDuration(entities).Max = intPtr(minutes)
		spans = append(spans, span{start: loc[0], end: loc[1]})
	}
	if loc := durationMinRe.FindStringSubmatchIndex(text); loc != nil {
		minutes := durationToMinutes(text[loc[2]:loc[3]], text[loc[4]:loc[5]])
		ensureDuration(entities).Min = intPtr(minutes)
		spans = append(spans, span{start: loc[0], end: loc[1]})
	}
	return spans
}

// extractYears matches release year constraints.
func (x *Extractor) extractYears(text string, entities *ExtractedEntities, spans []span) []span {
	if loc := yearBetweenRe.FindStringSubmatchIndex(text); loc != nil {
		lo, _ := strconv.Atoi(text[loc[2]:loc[3]])
		hi, _ := strconv.Atoi(text[loc[4]:loc[5]])
		if lo > hi {
			lo, hi = hi, lo
		}
		yr := ensureYear(entities)
		yr.Min = intPtr(lo)
		yr.Max = intPtr(hi)
		return append(spans, span{start: loc[0], end: loc[1]})
	}

	if loc := yearMinRe.FindStringSubmatchIndex(text); loc != nil {
		year, _ := strconv.Atoi(text[loc[2]:loc[3]])
		ensureYear(entities).Min = intPtr(year)
		spans = append(spans, span{start: loc[0], end: loc[1]})
	}
	if loc := yearMaxRe.FindStringSubmatchIndex(text); loc != nil {
		year, _ := strconv.Atoi(text[loc[2]:loc[3]])
		ensureYear(entities).Max = intPtr(year)
		spans = append(spans, span{start: loc[0], end: loc[1]})
	}
	return spans
}

// extractRegion resolves a region in three passes: full country names
// (longest first), bare uppercase ISO codes, then informal aliases.
func (x *Extractor) extractRegion(text string, entities *ExtractedEntities, spans []span) []span {
	lower := strings.ToLower(text)

	for _, name := range x.countryOrder {
		if pos := indexWord(lower, name); pos >= 0 {
			entities.Region = countryNames[name]
			return append(spans, span{start: pos, end: pos + len(name)})
		}
	}

	if loc := isoCodeRe.FindStringSubmatchIndex(text); loc != nil {
		entities.Region = isoCodes[text[loc[2]:loc[3]]]
		return append(spans, span{start: loc[0], end: loc[1]})
	}

	for alias, code := range countryAliases {
		if pos := indexWord(lower, alias); pos >= 0 {
			entities.Region = code
			return append(spans, span{start: pos, end: pos + len(alias)})
		}
	}

	return spans
}

// extractTitles collects quoted substrings in order of appearance.
// Duplicates are preserved.
func (x *Extractor) extractTitles(text string, entities *ExtractedEntities, spans []span) []span {
	type titleMatch struct {
		pos   int
		title string
		s     span
	}
	var found []titleMatch

	for _, loc := range doubleQuoteRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[2], loc[3]
		if start < 0 {
			start, end = loc[4], loc[5]
		}
		found = append(found, titleMatch{
			pos:   loc[0],
			title: text[start:end],
			s:     span{start: loc[0], end: loc[1]},
		})
	}
	for _, loc := range singleQuoteRe.FindAllStringSubmatchIndex(text, -1) {
		found = append(found, titleMatch{
			pos:   loc[2],
			title: text[loc[2]:loc[3]],
			s:     span{start: loc[2] - 1, end: loc[3] + 1},
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	for _, f := range found {
		entities.Titles = append(entities.Titles, f.title)
		spans = append(spans, f.s)
	}
	return spans
}

// durationToMinutes converts a quantity plus unit phrase to minutes.
func durationToMinutes(quantity, unit string) int {
	n, _ := strconv.Atoi(quantity)
	if strings.HasPrefix(strings.ToLower(unit), "h") {
		return n * 60
	}
	return n
}

// ensureDuration lazily allocates the duration range.
func ensureDuration(entities *ExtractedEntities) *DurationRange {
	if entities.Duration == nil {
		entities.Duration = &DurationRange{}
	}
	return entities.Duration
}

// ensureYear lazily allocates the year range.
func ensureYear(entities *ExtractedEntities) *YearRange {
	if entities.ReleaseYear == nil {
		entities.ReleaseYear = &YearRange{}
	}
	return entities.ReleaseYear
}

// appendUnique appends value if not already present, preserving order.
func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

// wordBounded reports whether the byte range [start, end) sits on word
// boundaries, so dictionary phrases do not match inside larger words.
func wordBounded(text string, start, end int) bool {
	if start > 0 && isWordByte(text[start-1]) {
		return false
	}
	if end < len(text) && isWordByte(text[end]) {
		return false
	}
	return true
}

// isWordByte reports whether b is an ASCII letter or digit.
func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// indexWord finds needle in haystack at a word boundary, or -1.
func indexWord(haystack, needle string) int {
	from := 0
	for {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return -1
		}
		pos := from + idx
		if wordBounded(haystack, pos, pos+len(needle)) {
			return pos
		}
		from = pos + 1
	}
}

// mergeSpans sorts spans and merges overlapping or adjacent ranges.
func mergeSpans(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	merged := make([]span, 0, len(spans))
	for _, s := range spans {
		if len(merged) > 0 && s.start <= merged[len(merged)-1].end {
			if s.end > merged[len(merged)-1].end {
				merged[len(merged)-1].end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
