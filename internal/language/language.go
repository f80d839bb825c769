package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Target is a language captions can be translated into.
type Target struct {
	// Code is the BCP 47 locale tag, e.g. "ur-PK".
	Code string
	// Name is the English name of the base language, e.g. "Urdu".
	Name string
	// Native is the language's own name for itself.
	Native string
}

var targetCodes = []string{
	"ur-PK",
	"hi-IN",
	"es-ES",
	"fr-FR",
	"de-DE",
	"zh-CN",
	"ja-JP",
	"ar-SA",
	"pt-BR",
	"it-IT",
	"en-US",
}

// Index maps built at init time.
var (
	targets []Target
	byKey   map[string]int
)

func init() {
	targets = make([]Target, 0, len(targetCodes))
	byKey = make(map[string]int, len(targetCodes)*4)
	for _, code := range targetCodes {
		tag := language.MustParse(code)
		base, _ := tag.Base()
		t := Target{
			Code:   tag.String(),
			Name:   display.English.Languages().Name(base),
			Native: display.Self.Name(base),
		}
		idx := len(targets)
		targets = append(targets, t)
		for _, key := range []string{t.Code, base.String(), base.ISO3(), t.Name} {
			key = strings.ToLower(key)
			if _, taken := byKey[key]; !taken {
				byKey[key] = idx
			}
		}
	}
}

// Supported returns the translation targets in presentation order.
func Supported() []Target {
	out := make([]Target, len(targets))
	copy(out, targets)
	return out
}

// Lookup resolves a locale tag, ISO 639 code or English language name to a
// supported target. Matching is case-insensitive and accepts "_" separators.
func Lookup(code string) (Target, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if key == "" {
		return Target{}, false
	}
	if idx, ok := byKey[key]; ok {
		return targets[idx], true
	}
	return Target{}, false
}

// ToISO2 converts a language tag or code to its ISO 639-1 base language.
// Returns empty string for unparseable input.
func ToISO2(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if t, ok := Lookup(code); ok {
		code = t.Code
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}

// DisplayName returns an English name for any BCP 47 tag, including the
// region when one is given ("Urdu (Pakistan)"). Returns "Unknown" for empty
// input, or the uppercased code for unparseable input.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(code)
}
