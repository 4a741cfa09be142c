// Package normalize provides content normalization for fingerprinting
// and structural checks shared by the rule engine.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalizer handles content preprocessing ahead of evaluation.
type Normalizer struct {
	maxLength int
}

// New creates a Normalizer with the given hard length ceiling.
func New(maxLength int) *Normalizer {
	return &Normalizer{maxLength: maxLength}
}

// Collapse trims the content and collapses internal whitespace runs
// into single spaces. Two submissions that differ only in incidental
// whitespace collapse to the same string.
func Collapse(content string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(content), " ")
}

// Normalize applies Collapse. Kept as a method so callers holding a
// Normalizer need not import the function separately.
func (n *Normalizer) Normalize(content string) string {
	return Collapse(content)
}

// IsEmpty checks if the content is empty or whitespace only.
func (n *Normalizer) IsEmpty(content string) bool {
	return strings.TrimSpace(content) == ""
}

// IsTooLong checks if the content exceeds the hard ceiling.
func (n *Normalizer) IsTooLong(content string) bool {
	return len(content) > n.maxLength
}

// MaxLength returns the configured hard ceiling.
func (n *Normalizer) MaxLength() int {
	return n.maxLength
}

// CountEmojis counts emoji runes in the content. Advisory content is
// held to a professional ceiling of a few emojis.
func CountEmojis(content string) int {
	count := 0
	for _, r := range content {
		if isEmoji(r) {
			count++
		}
	}
	return count
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F9FF: // symbols, pictographs, emoticons
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x1FA70 && r <= 0x1FAFF:
		return true
	default:
		return false
	}
}

// DevanagariRatio returns the fraction of letters that are Devanagari.
// Used to verify language consistency for Hindi and Marathi content.
func DevanagariRatio(content string) float64 {
	letters, devanagari := 0, 0
	for _, r := range content {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Devanagari, r) {
			devanagari++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(devanagari) / float64(letters)
}
