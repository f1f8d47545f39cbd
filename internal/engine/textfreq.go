package engine

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Term-frequency feature extraction over video transcripts. The top word and
// n-gram lists summarize the spoken content for the categorization prompt.

// isSingleLetter reports whether tok is one letter. Single letters are always
// stop words; single digits are kept.
func isSingleLetter(tok string) bool {
	r, size := utf8.DecodeRuneInString(tok)
	return size == len(tok) && unicode.IsLetter(r)
}

// tokenize lowercases text and splits it into purely alphanumeric word units.
// Any run of non-alphanumeric runes is a separator, so every returned token
// passes the isalnum filter by construction.
func tokenize(text string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// topByCount ranks items by descending frequency, ties broken by
// first-encountered order, truncated to max entries with count >= minCount.
func topByCount(items []string, max, minCount int) []string {
	counts := make(map[string]int, len(items))
	var order []string
	for _, it := range items {
		if counts[it] == 0 {
			order = append(order, it)
		}
		counts[it]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > max {
		order = order[:max]
	}
	top := make([]string, 0, len(order))
	for _, it := range order {
		if counts[it] >= minCount {
			top = append(top, it)
		}
	}
	return top
}

// WordFrequency computes the top maxWords single words and the top maxWords
// contiguous gramLen-grams of the transcript, after dropping stop words.
// The stop set is the baseline English corpus plus customStop plus all single
// letters. minCount drops entries seen fewer times; 1 keeps everything.
// Empty input yields two empty lists.
func WordFrequency(text string, maxWords, gramLen, minCount int, customStop []string) (topWords, topGrams []string) {
	if text == "" {
		return nil, nil
	}
	if minCount < 1 {
		minCount = 1
	}

	sw := buildStopWords(customStop)
	var filtered []string
	for _, tok := range tokenize(text) {
		if isSingleLetter(tok) || sw[tok] {
			continue
		}
		filtered = append(filtered, tok)
	}

	var grams []string
	for i := 0; i+gramLen <= len(filtered); i++ {
		grams = append(grams, strings.Join(filtered[i:i+gramLen], " "))
	}

	return topByCount(filtered, maxWords, minCount), topByCount(grams, maxWords, minCount)
}
