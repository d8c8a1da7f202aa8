package cardsagainst

import (
	_ "embed"
)

// Embed the built-in card catalog
//
//go:embed static/cards.json
var CardsJSON []byte
