package pairing

import (
	"fmt"

	"github.com/phrazzld/coban-api/internal/domain"
)

// Side says which column a card belongs to. A pair is always one card from
// each side.
type Side string

// Card sides.
const (
	SidePrompt Side = "prompt"
	SideAnswer Side = "answer"
)

// Card is one tappable tile on the board.
type Card struct {
	ID     string `json:"id"`
	WordID string `json:"wordId"`
	Side   Side   `json:"side"`
	Label  string `json:"label"`
}

// CardFactory decides what a word's two cards show. Kanji and vocabulary
// games differ only in their card factory.
type CardFactory interface {
	Labels(w domain.Word) (prompt, answer string)
}

// MeaningCards pairs the written word with its meaning in Language.
type MeaningCards struct {
	Language string
}

// Labels implements CardFactory.
func (f MeaningCards) Labels(w domain.Word) (string, string) {
	lang := f.Language
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	return w.Text, w.Meaning(lang)
}

// ReadingCards pairs the written word with its kana reading.
type ReadingCards struct{}

// Labels implements CardFactory.
func (ReadingCards) Labels(w domain.Word) (string, string) {
	return w.Text, w.Reading
}

// Card factory names accepted by CardFactoryFor.
const (
	CardsMeaning = "meaning"
	CardsReading = "reading"
)

// CardFactoryFor returns the factory registered under name.
func CardFactoryFor(name, language string) (CardFactory, error) {
	switch name {
	case "", CardsMeaning:
		return MeaningCards{Language: language}, nil
	case CardsReading:
		return ReadingCards{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCardFactory, name)
}

func buildCards(w domain.Word, f CardFactory) (prompt, answer Card) {
	p, a := f.Labels(w)
	prompt = Card{ID: "p-" + w.ID, WordID: w.ID, Side: SidePrompt, Label: p}
	answer = Card{ID: "a-" + w.ID, WordID: w.ID, Side: SideAnswer, Label: a}
	return prompt, answer
}
