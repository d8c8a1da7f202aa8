package game

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the immutable, process-wide card data. It is safe for concurrent readers.
type Catalog struct {
	decks   []Deck
	byID    map[string]Deck
	answers []AnswerCard
	prompts []PromptCard
}

// NewCatalog builds a catalog from card sets, assigning deck and card ids
func NewCatalog(sets []CardSet) (*Catalog, error) {
	c := &Catalog{
		decks: make([]Deck, 0, len(sets)),
		byID:  make(map[string]Deck, len(sets)),
	}

	for i, set := range sets {
		id := set.ID
		if id == "" {
			id = slugify(set.Name)
		}
		if id == "" {
			return nil, fmt.Errorf("%w: card set %d has no name", ErrCatalogInvalid, i)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate deck id %q", ErrCatalogInvalid, id)
		}

		for n, w := range set.White {
			c.answers = append(c.answers, AnswerCard{
				ID:     fmt.Sprintf("%s/a%d", id, n),
				DeckID: id,
				Text:   w.Text,
				Pack:   w.Pack,
			})
		}
		for n, b := range set.Black {
			pick := b.Pick
			if pick < 1 {
				pick = 1
			}
			c.prompts = append(c.prompts, PromptCard{
				ID:     fmt.Sprintf("%s/p%d", id, n),
				DeckID: id,
				Text:   b.Text,
				Pick:   pick,
				Pack:   b.Pack,
			})
		}

		deck := Deck{
			ID:          id,
			Name:        set.Name,
			Description: set.Description,
			Official:    set.Official,
			PromptCount: len(set.Black),
			AnswerCount: len(set.White),
		}
		c.decks = append(c.decks, deck)
		c.byID[id] = deck
	}

	return c, nil
}

// LoadCatalog parses a JSON list of card sets
func LoadCatalog(data []byte) (*Catalog, error) {
	var sets []CardSet
	if err := json.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("failed to parse card catalog: %w", err)
	}
	return NewCatalog(sets)
}

// LoadCatalogFile reads a catalog from disk. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card catalog %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var sets []CardSet
		if err := yaml.Unmarshal(data, &sets); err != nil {
			return nil, fmt.Errorf("failed to parse card catalog %s: %w", path, err)
		}
		return NewCatalog(sets)
	default:
		return LoadCatalog(data)
	}
}

// Decks returns every deck in catalog order
func (c *Catalog) Decks() []Deck {
	out := make([]Deck, len(c.decks))
	copy(out, c.decks)
	return out
}

// Deck looks up a deck by id
func (c *Catalog) Deck(id string) (Deck, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// AnswerCards returns a copy of every answer card
func (c *Catalog) AnswerCards() []AnswerCard {
	out := make([]AnswerCard, len(c.answers))
	copy(out, c.answers)
	return out
}

// PromptCards returns a copy of every prompt card
func (c *Catalog) PromptCards() []PromptCard {
	out := make([]PromptCard, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// DefaultDeckIDs returns the official decks, or every deck when none is official
func (c *Catalog) DefaultDeckIDs() []string {
	var ids []string
	for _, d := range c.decks {
		if d.Official {
			ids = append(ids, d.ID)
		}
	}
	if len(ids) == 0 {
		for _, d := range c.decks {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// Resolve maps deck ids to decks, dropping duplicates and keeping request order
func (c *Catalog) Resolve(ids []string) ([]Deck, error) {
	seen := make(map[string]bool, len(ids))
	decks := make([]Deck, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		d, ok := c.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownDeck, id)
		}
		seen[id] = true
		decks = append(decks, d)
	}
	return decks, nil
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
