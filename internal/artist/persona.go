package artist

import (
	"fmt"
	"strings"
	"unicode"
)

// Language is the language an artist publishes in.
type Language string

const (
	LanguageGalician Language = "Galego"
	LanguageSpanish  Language = "Español"
	LanguageEnglish  Language = "English"
)

// Languages lists the accepted languages in display order.
var Languages = []Language{LanguageGalician, LanguageSpanish, LanguageEnglish}

// DefaultLanguage is used when a stored record carries no language.
const DefaultLanguage = LanguageGalician

// ParseLanguage maps a form or flag value onto a Language.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLanguage, nil
	}
	for _, l := range Languages {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown language %q (must be Galego, Español, or English)", ErrValidation, s)
}

// Persona describes an artist's tone, audience, and example phrasing.
type Persona struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Language        Language `json:"language"`
	TargetAudience  string   `json:"target_audience"`
	BasePrompt      string   `json:"base_prompt"`
	Keywords        []string `json:"keywords"`
	FewShotExamples []string `json:"few_shot_examples"`
}

// Document is the persisted shape of the persona store.
type Document struct {
	Artists []Persona `json:"artists"`
}

const idReserved = `/?#%\`

// Validate checks the fields a user must supply before a persona is stored.
func (p Persona) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: name and id are required", ErrValidation)
	}
	if strings.IndexFunc(strings.TrimSpace(p.ID), unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: id %q must not contain spaces", ErrValidation, p.ID)
	}
	// Ids are used as URL path segments.
	if strings.ContainsAny(p.ID, idReserved) {
		return fmt.Errorf("%w: id %q must not contain any of %s", ErrValidation, p.ID, idReserved)
	}
	if _, err := ParseLanguage(string(p.Language)); err != nil {
		return err
	}
	return nil
}

// normalized returns a copy with trimmed identity fields and non-nil lists,
// so the document always serializes lists as [] rather than null.
func (p Persona) normalized() Persona {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if l, err := ParseLanguage(string(p.Language)); err == nil {
		p.Language = l
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	if p.FewShotExamples == nil {
		p.FewShotExamples = []string{}
	}
	return p
}

// LanguageOrDefault returns the persona's language, falling back to Galego.
func (p Persona) LanguageOrDefault() Language {
	if p.Language == "" {
		return DefaultLanguage
	}
	return p.Language
}
