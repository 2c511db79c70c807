package domain

import "strings"

// WorkingLanguage is the language retrieval and generation operate in.
const WorkingLanguage = "en"

// DefaultLanguage is assumed when a chat request names no language.
const DefaultLanguage = WorkingLanguage

// defaultDisclaimer is appended for languages without their own template.
const defaultDisclaimer = "⚠️ Note: This chatbot provides informational questions only; " +
	"it is not a substitute for medical care."

// Language describes a patient-facing language.
type Language struct {
	// Code is the lower-case ISO 639-1 code.
	Code string `yaml:"code"`

	// Name is the English name, used in translation prompts.
	Name string `yaml:"name"`

	// Disclaimer is appended to every reply in this language.
	// Empty means the default template.
	Disclaimer string `yaml:"disclaimer,omitempty"`
}

// LanguageCatalog maps language codes to their descriptions.
type LanguageCatalog map[string]Language

// DefaultLanguageCatalog returns the built-in languages.
func DefaultLanguageCatalog() LanguageCatalog {
	return LanguageCatalog{
		"en": {Code: "en", Name: "English", Disclaimer: defaultDisclaimer},
		"hi": {
			Code:       "hi",
			Name:       "Hindi",
			Disclaimer: "⚠️ यह चैटबॉट केवल जानकारी के लिए है; यह किसी चिकित्सीय निदान का विकल्प नहीं है।",
		},
		"mr": {Code: "mr", Name: "Marathi"},
		"ta": {Code: "ta", Name: "Tamil"},
		"te": {Code: "te", Name: "Telugu"},
	}
}

// NormaliseLanguage reduces a language tag to its lower-case primary subtag,
// so "pt-BR" and "en_US" become "pt" and "en".
// An empty code means the working language.
func NormaliseLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	if code == "" {
		return WorkingLanguage
	}
	return code
}

// Disclaimer returns the disclaimer for a language code.
// Unknown codes get the default template; this never fails.
func (c LanguageCatalog) Disclaimer(code string) string {
	if lang, ok := c[NormaliseLanguage(code)]; ok && lang.Disclaimer != "" {
		return lang.Disclaimer
	}
	return defaultDisclaimer
}

// Name returns the display name for a code, or the code itself if unknown.
func (c LanguageCatalog) Name(code string) string {
	code = NormaliseLanguage(code)
	if lang, ok := c[code]; ok && lang.Name != "" {
		return lang.Name
	}
	return code
}

// Supports reports whether the catalog knows the code.
func (c LanguageCatalog) Supports(code string) bool {
	_, ok := c[NormaliseLanguage(code)]
	return ok
}

// Merge returns a catalog with other's entries layered over c.
// Fields left empty in other keep the value from c.
func (c LanguageCatalog) Merge(other LanguageCatalog) LanguageCatalog {
	merged := make(LanguageCatalog, len(c)+len(other))
	for code, lang := range c {
		merged[code] = lang
	}
	for code, lang := range other {
		code = NormaliseLanguage(code)
		base := merged[code]
		base.Code = code
		if lang.Name != "" {
			base.Name = lang.Name
		}
		if lang.Disclaimer != "" {
			base.Disclaimer = lang.Disclaimer
		}
		merged[code] = base
	}
	return merged
}
