package server

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// FuzzyMatch represents a fuzzy search result with similarity score
type FuzzyMatch struct {
	Text      string
	Score     float64
	MatchType string // "exact", "partial", "fuzzy"
}

// levenshteinDistance calculates the Levenshtein distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	len1 := len(r1)
	len2 := len(r2)

	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len1][len2]
}

// similarity calculates similarity score (0.0 to 1.0) based on Levenshtein distance
func similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	maxLen := max(len(s1), len(s2))
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshteinDistance(s1, s2)
	return 1.0 - float64(distance)/float64(maxLen)
}

// normalizeGerman normalizes German text for better fuzzy matching. Umlauts
// fold to their base vowels and ß to ss, then the ae/oe/ue digraph spellings
// collapse the same way so that "Zürich" and "Zuerich" compare equal.
func normalizeGerman(text string) string {
	text = strings.ToLower(text)

	var result strings.Builder
	for _, r := range text {
		switch r {
		case 'ä':
			result.WriteRune('a')
		case 'ö':
			result.WriteRune('o')
		case 'ü':
			result.WriteRune('u')
		case 'ß':
			result.WriteString("ss")
		default:
			result.WriteRune(r)
		}
	}

	normalized := result.String()
	normalized = strings.ReplaceAll(normalized, "ae", "a")
	normalized = strings.ReplaceAll(normalized, "oe", "o")
	normalized = strings.ReplaceAll(normalized, "ue", "u")

	return normalized
}

// jaroWinklerSimilarity calculates Jaro-Winkler similarity for better matching of similar strings
func jaroWinklerSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	len1, len2 := utf8.RuneCountInString(s1), utf8.RuneCountInString(s2)
	if len1 == 0 || len2 == 0 {
		return 0.0
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	matchWindow := max(len1, len2)/2 - 1
	if matchWindow < 0 {
		matchWindow = 0
	}

	matches1 := make([]bool, len1)
	matches2 := make([]bool, len2)

	matches := 0
	transpositions := 0

	for i := 0; i < len1; i++ {
		start := max(0, i-matchWindow)
		end := min(i+matchWindow+1, len2)

		for j := start; j < end; j++ {
			if matches2[j] || r1[i] != r2[j] {
				continue
			}

			matches1[i] = true
			matches2[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	k := 0
	for i := 0; i < len1; i++ {
		if !matches1[i] {
			continue
		}

		for !matches2[k] {
			k++
		}

		if r1[i] != r2[k] {
			transpositions++
		}
		k++
	}

	jaro := (float64(matches)/float64(len1) +
		float64(matches)/float64(len2) +
		float64(matches-transpositions/2)/float64(matches)) / 3.0

	// Winkler prefix bonus only applies to already-close strings
	if jaro < 0.7 {
		return jaro
	}

	prefix := 0
	for i := 0; i < min(len1, len2, 4); i++ {
		if r1[i] == r2[i] {
			prefix++
		} else {
			break
		}
	}

	return jaro + 0.1*float64(prefix)*(1.0-jaro)
}

// fuzzyMatchText performs fuzzy matching against a list of candidates.
// Exact matches rank first, then substring overlaps, then Jaro-Winkler and
// Levenshtein scores over German-normalized text.
func fuzzyMatchText(query string, candidates []string, threshold float64) []FuzzyMatch {
	if threshold <= 0 {
		threshold = 0.6
	}

	var matches []FuzzyMatch
	queryLower := strings.ToLower(query)
	queryNormalized := normalizeGerman(query)

	for _, candidate := range candidates {
		candidateLower := strings.ToLower(candidate)
		candidateNormalized := normalizeGerman(candidate)

		if queryLower == candidateLower {
			matches = append(matches, FuzzyMatch{
				Text:      candidate,
				Score:     1.0,
				MatchType: "exact",
			})
			continue
		}

		if strings.Contains(candidateLower, queryLower) || strings.Contains(queryLower, candidateLower) {
			score := float64(min(len(queryLower), len(candidateLower))) / float64(max(len(queryLower), len(candidateLower)))
			if score >= threshold {
				matches = append(matches, FuzzyMatch{
					Text:      candidate,
					Score:     score * 0.9,
					MatchType: "partial",
				})
				continue
			}
		}

		jaroScore := jaroWinklerSimilarity(queryNormalized, candidateNormalized)
		if jaroScore >= threshold {
			matches = append(matches, FuzzyMatch{
				Text:      candidate,
				Score:     jaroScore * 0.8,
				MatchType: "fuzzy",
			})
			continue
		}

		levScore := similarity(queryNormalized, candidateNormalized)
		if levScore >= threshold {
			matches = append(matches, FuzzyMatch{
				Text:      candidate,
				Score:     levScore * 0.7,
				MatchType: "fuzzy",
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}
