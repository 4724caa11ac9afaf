package language

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Fallback is used when no default is configured.
const Fallback = "en"

// minLetters is the shortest input worth running detection on; greetings
// like "hi" or "ok" are too ambiguous and keep the default language.
const minLetters = 4

// Detector guesses the language of customer messages.
type Detector struct {
	defaultLang   string
	minConfidence float64
}

// NewDetector returns a Detector that answers defaultLang when detection fails.
func NewDetector(defaultLang string) *Detector {
	code := Normalize(defaultLang)
	if code == "" {
		code = Fallback
	}
	return &Detector{defaultLang: code, minConfidence: 0.5}
}

// Default returns the fallback language code.
func (d *Detector) Default() string {
	return d.defaultLang
}

// Detect returns an ISO 639-1 code (ISO 639-3 when no two-letter code exists).
func (d *Detector) Detect(text string) string {
	if countLetters(text) < minLetters {
		return d.defaultLang
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() && info.Confidence < d.minConfidence {
		return d.defaultLang
	}

	code := Normalize(info.Lang.Iso6393())
	if code == "" {
		return d.defaultLang
	}
	return code
}

// Normalize canonicalises a language code, e.g. "eng" and "EN-us" become "en".
// Unknown codes yield the empty string.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

// Name returns the English display name of a language code, e.g. "de" -> "German".
func Name(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

func countLetters(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
