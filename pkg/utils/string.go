package utils

import (
	"strings"
	"unicode/utf8"
)

// NormalizeWhitespace collapses every whitespace run to a single space and trims the ends.
func NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateRunes cuts str to at most maxRunes characters. It never splits a UTF-8 sequence.
func TruncateRunes(str string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}

	if utf8.RuneCountInString(str) <= maxRunes {
		return str
	}

	count := 0
	for i := range str {
		if count == maxRunes {
			return str[:i]
		}

		count++
	}

	return str
}

// WordCount returns the number of whitespace-delimited tokens in str.
func WordCount(str string) int {
	return len(strings.Fields(str))
}
