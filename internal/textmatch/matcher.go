// Package textmatch filters a redundant word-level transcript down to the
// words that spell out a target string. Speech recognizers often emit
// duplicated or fragmented words; given the cleaned-up target text, this
// picks the word objects (with their timestamps) that compose it.
//
// It is a standalone utility and is not part of the cutting pipeline.
package textmatch

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mediacut/videocut/internal/types"
)

// DefaultSimilarityThreshold is the ratio above which two words count as
// the same in the greedy matcher.
const DefaultSimilarityThreshold = 0.8

// Matcher holds matching options.
type Matcher struct {
	SimilarityThreshold float64
}

// New creates a Matcher with the default similarity threshold.
func New() *Matcher {
	return &Matcher{SimilarityThreshold: DefaultSimilarityThreshold}
}

// MatchAndFilter extracts the words matching targetText in order. The exact
// matcher is used by default; set greedy for the faster similarity-based
// scan.
func MatchAndFilter(words []types.Word, targetText string, greedy bool) []types.Word {
	if len(words) == 0 || targetText == "" {
		return nil
	}
	m := New()
	if greedy {
		return m.GreedyMatch(words, targetText)
	}
	return m.BestMatchSequence(words, targetText)
}

// Clean strips punctuation, symbols and whitespace so transcript words and
// target text compare on content only. Handles ASCII and CJK punctuation.
func Clean(text string) string {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BestMatchSequence scans the cleaned target left to right and at each
// position picks the longest unused word that matches exactly, preferring
// higher confidence on ties. Unmatched positions are skipped one rune at a
// time. The result keeps transcript order by start time.
func (m *Matcher) BestMatchSequence(words []types.Word, targetText string) []types.Word {
	combined := combineFragments(words, targetText)
	target := []rune(Clean(targetText))

	var result []types.Word
	used := make(map[int]bool)
	pos := 0

	for pos < len(target) {
		bestIdx := -1
		bestLen := 0
		for i, w := range combined {
			if used[i] {
				continue
			}
			word := []rune(Clean(w.Word))
			if len(word) == 0 || pos+len(word) > len(target) {
				continue
			}
			if string(target[pos:pos+len(word)]) != string(word) {
				continue
			}
			if len(word) > bestLen ||
				(len(word) == bestLen && bestIdx >= 0 && w.Conf > combined[bestIdx].Conf) {
				bestIdx = i
				bestLen = len(word)
			}
		}
		if bestIdx >= 0 {
			result = append(result, combined[bestIdx])
			used[bestIdx] = true
			pos += bestLen
		} else {
			pos++
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Start < result[j].Start
	})
	return result
}

// GreedyMatch walks the transcript once in order, accepting each word that
// exactly or approximately matches the next stretch of the cleaned target.
func (m *Matcher) GreedyMatch(words []types.Word, targetText string) []types.Word {
	target := []rune(Clean(targetText))

	var result []types.Word
	pos := 0
	for _, w := range words {
		word := []rune(Clean(w.Word))
		if len(word) == 0 || pos+len(word) > len(target) {
			continue
		}
		segment := string(target[pos : pos+len(word)])
		if string(word) == segment || similarity(string(word), segment) >= m.SimilarityThreshold {
			result = append(result, w)
			pos += len(word)
			if pos >= len(target) {
				break
			}
		}
	}
	return result
}

// combineFragments merges runs of single-rune transcript words whose
// concatenation occurs verbatim in the target, undoing recognizer
// fragmentation (single CJK characters in particular). Longer words are
// tried first when matching.
func combineFragments(words []types.Word, targetText string) []types.Word {
	sorted := make([]types.Word, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var combined []types.Word
	for i := 0; i < len(sorted); {
		cur := sorted[i]
		j := i + 1
		if singleRune(cur.Word) {
			for j < len(sorted) && singleRune(sorted[j].Word) {
				joined := cur.Word + sorted[j].Word
				if !strings.Contains(targetText, joined) {
					break
				}
				cur.Word = joined
				cur.End = sorted[j].End
				if sorted[j].Conf > cur.Conf {
					cur.Conf = sorted[j].Conf
				}
				j++
			}
		}
		combined = append(combined, cur)
		i = j
	}

	// Original multi-rune words stay available even when a combination
	// swallowed their text at a different timestamp.
	for _, w := range words {
		if len([]rune(w.Word)) <= 1 {
			continue
		}
		included := false
		for _, c := range combined {
			if strings.Contains(c.Word, w.Word) && abs(w.Start-c.Start) < 0.1 {
				included = true
				break
			}
		}
		if !included {
			combined = append(combined, w)
		}
	}

	sort.Slice(combined, func(i, j int) bool {
		li, lj := len([]rune(combined[i].Word)), len([]rune(combined[j].Word))
		if li != lj {
			return li > lj
		}
		return combined[i].Start < combined[j].Start
	})
	return combined
}

// similarity is the classic diff ratio: twice the matched rune count over
// the total length of both strings.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 0
	}
	matched := matchingRunes(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingRunes counts matched runes by recursively splitting around the
// longest common substring.
func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingRunes(a[:ai], b[:bi])
	total += matchingRunes(a[ai+size:], b[bi+size:])
	return total
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}

func singleRune(s string) bool {
	return len([]rune(s)) == 1
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
