package review

import "github.com/example/wordbook/pkg/models"

// Deck steps through a review set one flashcard at a time, wrapping around
// at both ends.
type Deck struct {
	cards []models.WordRecord
	pos   int
}

// NewDeck creates a deck positioned on the first card
func NewDeck(cards []models.WordRecord) *Deck {
	return &Deck{cards: cards}
}

// Len returns the number of cards
func (d *Deck) Len() int { return len(d.cards) }

// Position returns the zero-based index of the current card
func (d *Deck) Position() int { return d.pos }

// Current returns the card being shown
func (d *Deck) Current() (models.WordRecord, error) {
	if len(d.cards) == 0 {
		return models.WordRecord{}, models.ErrNoMaterial
	}
	return d.cards[d.pos], nil
}

// Next advances to the following card
func (d *Deck) Next() (models.WordRecord, error) {
	if len(d.cards) == 0 {
		return models.WordRecord{}, models.ErrNoMaterial
	}
	d.pos = (d.pos + 1) % len(d.cards)
	return d.cards[d.pos], nil
}

// Prev goes back to the previous card
func (d *Deck) Prev() (models.WordRecord, error) {
	if len(d.cards) == 0 {
		return models.WordRecord{}, models.ErrNoMaterial
	}
	d.pos = (d.pos - 1 + len(d.cards)) % len(d.cards)
	return d.cards[d.pos], nil
}
