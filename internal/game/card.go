package game

// Deck is an immutable catalog entry describing one toggle-able card set
type Deck struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Official    bool   `json:"official"`
	PromptCount int    `json:"promptCount"`
	AnswerCount int    `json:"answerCount"`
}

// PromptCard is a fill-in-the-blank card. Pick is the number of answer cards it needs.
type PromptCard struct {
	ID     string `json:"id"`
	DeckID string `json:"deckId"`
	Text   string `json:"text"`
	Pick   int    `json:"pick"`
	Pack   int    `json:"pack"`
}

// AnswerCard is a phrase card played against a prompt
type AnswerCard struct {
	ID     string `json:"id"`
	DeckID string `json:"deckId"`
	Text   string `json:"text"`
	Pack   int    `json:"pack"`
}

// Player is the public identity of a participant
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// CardSet is one named set in the catalog source file
type CardSet struct {
	ID          string      `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Official    bool        `json:"official" yaml:"official"`
	White       []WhiteCard `json:"white" yaml:"white"`
	Black       []BlackCard `json:"black" yaml:"black"`
}

// WhiteCard is an answer card as it appears in the source file
type WhiteCard struct {
	Text string `json:"text" yaml:"text"`
	Pack int    `json:"pack" yaml:"pack"`
}

// BlackCard is a prompt card as it appears in the source file
type BlackCard struct {
	Text string `json:"text" yaml:"text"`
	Pick int    `json:"pick" yaml:"pick"`
	Pack int    `json:"pack" yaml:"pack"`
}

// deckSet is a lookup set of enabled deck ids
type deckSet map[string]struct{}

func newDeckSet(decks []Deck) deckSet {
	set := make(deckSet, len(decks))
	for _, d := range decks {
		set[d.ID] = struct{}{}
	}
	return set
}

func (s deckSet) has(id string) bool {
	_, ok := s[id]
	return ok
}
