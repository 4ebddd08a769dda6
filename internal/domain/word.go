package domain

import "sort"

// DefaultLanguage is the meaning language used when a requested one is missing.
const DefaultLanguage = "en"

// Word is the smallest scorable unit: a vocabulary entry or an example word
// tied to a kanji. Words come from lesson content and are never modified.
type Word struct {
	ID       string            `json:"id"`
	ParentID string            `json:"parentId,omitempty"`
	Text     string            `json:"text"`
	Reading  string            `json:"reading,omitempty"`
	Meanings map[string]string `json:"meanings"`
}

// Validate checks that the word has an ID.
func (w Word) Validate() error {
	if w.ID == "" {
		return ErrEmptyWordID
	}
	return nil
}

// Meaning returns the meaning for lang, falling back to English and then to
// the alphabetically first available language.
func (w Word) Meaning(lang string) string {
	if m, ok := w.Meanings[lang]; ok && m != "" {
		return m
	}
	if m, ok := w.Meanings[DefaultLanguage]; ok && m != "" {
		return m
	}
	langs := make([]string, 0, len(w.Meanings))
	for l := range w.Meanings {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	for _, l := range langs {
		if w.Meanings[l] != "" {
			return w.Meanings[l]
		}
	}
	return ""
}
