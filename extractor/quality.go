package extractor

import "strings"

// QualityScore computes the 0-100 content quality heuristic supplemented
// from the original implementation's scorer: word count, paragraph count
// and average paragraph length contribute. It works on plain text only, so
// header presence and link density are not measured.
func QualityScore(content string) int {
	words := strings.Fields(content)
	wordCount := len(words)
	if wordCount == 0 {
		return 0
	}

	paragraphs := strings.Split(content, "\n\n")
	nonEmptyParagraphs := 0
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			nonEmptyParagraphs++
		}
	}

	score := 0.0

	switch {
	case wordCount >= 300:
		score += 40
	case wordCount >= 100:
		score += 25
	case wordCount >= 30:
		score += 10
	}

	switch {
	case nonEmptyParagraphs >= 4:
		score += 30
	case nonEmptyParagraphs >= 2:
		score += 15
	case nonEmptyParagraphs >= 1:
		score += 5
	}

	avgParaLen := float64(len(content))
	if nonEmptyParagraphs > 0 {
		avgParaLen /= float64(nonEmptyParagraphs)
	}
	if avgParaLen >= 80 && avgParaLen <= 2000 {
		score += 20
	} else if avgParaLen > 0 {
		score += 10
	}

	if wordCount >= 50 {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return int(score)
}
