package textutil

import (
	"strings"
	"unicode"
)

// CaptionFileName builds "<name>[.<lang>].<ext>" for caption exports. Path
// separators and other characters that break file names are dashed or
// dropped; an empty name becomes "captions".
func CaptionFileName(name, lang, ext string) string {
	base := strings.TrimSpace(strings.Map(fileNameRune, name))
	if base == "" {
		base = "captions"
	}
	if tag := langToken(lang); tag != "" {
		base += "." + tag
	}
	return base + "." + strings.TrimPrefix(strings.TrimSpace(ext), ".")
}

func fileNameRune(r rune) rune {
	switch r {
	case '/', '\\', ':', '*':
		return '-'
	case '?', '"', '<', '>', '|':
		return -1
	}
	return r
}

// langToken lowercases a language tag keeping only ASCII letters, digits,
// dashes and underscores.
func langToken(lang string) string {
	token := strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return unicode.ToLower(r)
		case r == '-' || r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(lang))
	return strings.Trim(token, "_-")
}
