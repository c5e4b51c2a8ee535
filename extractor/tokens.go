package extractor

import (
	"strings"
	"unicode/utf8"
)

// EstimateTokens gives a fast token count estimate without a tokenizer
// dependency: utf8 rune count / 3, a reasonable middle ground between
// English (~4 chars/token) and CJK (~1.5 chars/token) text.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	if est := n / 3; est > 0 {
		return est
	}
	return 1
}

// ReadingTimeSeconds estimates reading time at 200 words per minute.
func ReadingTimeSeconds(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return words * 60 / 200
}
