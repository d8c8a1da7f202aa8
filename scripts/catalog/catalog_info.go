package main

import (
	"fmt"
	"os"

	"github.com/rezonant/cardsagainst"
	"github.com/rezonant/cardsagainst/internal/game"
)

// Prints a summary of a card catalog. With no argument the embedded cards are used.
//
//	go run ./scripts/catalog [path/to/cards.json|cards.yaml]
func main() {
	fmt.Println("Card Catalog Info")
	fmt.Println("=================")
	fmt.Println()

	var (
		catalog *game.Catalog
		err     error
		source  = "embedded static/cards.json"
	)
	if len(os.Args) > 1 {
		source = os.Args[1]
		catalog, err = game.LoadCatalogFile(source)
	} else {
		catalog, err = game.LoadCatalog(cardsagainst.CardsJSON)
	}
	if err != nil {
		fmt.Printf("Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %d decks from %s\n\n", len(catalog.Decks()), source)

	picks := make(map[string]map[int]int)
	for _, p := range catalog.PromptCards() {
		if picks[p.DeckID] == nil {
			picks[p.DeckID] = make(map[int]int)
		}
		picks[p.DeckID][p.Pick]++
	}

	for _, d := range catalog.Decks() {
		official := ""
		if d.Official {
			official = " (official)"
		}
		fmt.Printf("- %s [%s]%s\n", d.Name, d.ID, official)
		fmt.Printf("    %d answers, %d prompts", d.AnswerCount, d.PromptCount)
		for pick := 1; pick <= 3; pick++ {
			if n := picks[d.ID][pick]; n > 0 {
				fmt.Printf(", %d pick-%d", n, pick)
			}
		}
		fmt.Println()
	}
	fmt.Println()

	defaults, err := catalog.Resolve(catalog.DefaultDeckIDs())
	if err != nil {
		fmt.Printf("Error resolving default decks: %v\n", err)
		os.Exit(1)
	}
	answers := 0
	for _, d := range defaults {
		answers += d.AnswerCount
	}
	fmt.Printf("Default decks carry %d answers", answers)
	if answers < game.DefaultMinAnswerCards {
		fmt.Printf(" - below the %d a session needs\n", game.DefaultMinAnswerCards)
		os.Exit(1)
	}
	fmt.Println()
}
