package textutil

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// minTokenRunes drops short function words in space-separated scripts.
const minTokenRunes = 3

// Fingerprint is a bag-of-words vector used to compare caption texts.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint counts the terms of text, or returns nil when it has none.
func NewFingerprint(text string) *Fingerprint {
	f := &Fingerprint{tokens: map[string]float64{}}
	for _, term := range Tokenize(text) {
		f.tokens[term]++
	}
	if len(f.tokens) == 0 {
		return nil
	}
	for _, n := range f.tokens {
		f.norm += n * n
	}
	f.norm = math.Sqrt(f.norm)
	return f
}

// Tokenize case-folds text and splits it on anything that is not a letter,
// mark or digit. Tokens shorter than three runes are dropped unless they are
// written in a script that does not separate words with spaces.
func Tokenize(text string) []string {
	folded := cases.Fold().String(text)
	raw := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if utf8.RuneCountInString(token) < minTokenRunes && !unspaced(token) {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

func unspaced(token string) bool {
	for _, r := range token {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Thai) {
			return true
		}
	}
	return false
}

// TokenCount is the number of distinct terms.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}
