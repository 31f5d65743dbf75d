package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
)

//go:embed data/words.json
var wordsJSON []byte

type wordEntry struct {
	Primary string   `json:"primary"`
	Similar []string `json:"similar"`
}

type wordDomain struct {
	Name  string      `json:"name"`
	Words []wordEntry `json:"words"`
}

type wordDataset struct {
	Domains []wordDomain `json:"domains"`
}

// wordDeck is the flattened dataset all games draw from. It is built
// once at startup; an unusable dataset is a fatal configuration error.
type wordDeck struct {
	entries []wordEntry
}

func newWordDeck(data []byte) (*wordDeck, error) {
	var dataset wordDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("parsing word dataset: %w", err)
	}

	deck := &wordDeck{}
	for _, domain := range dataset.Domains {
		for _, entry := range domain.Words {
			if entry.Primary == "" {
				return nil, fmt.Errorf("word dataset: empty primary word in domain %q", domain.Name)
			}
			if len(entry.Similar) == 0 {
				return nil, fmt.Errorf("word dataset: no similar words for %q in domain %q", entry.Primary, domain.Name)
			}
			deck.entries = append(deck.entries, entry)
		}
	}

	if len(deck.entries) == 0 {
		return nil, fmt.Errorf("word dataset contains no words")
	}

	return deck, nil
}

func (d *wordDeck) randomWord() wordEntry {
	return d.entries[rand.Intn(len(d.entries))]
}

func (d *wordDeck) randomPair() (primary, similar string) {
	entry := d.randomWord()
	return entry.Primary, entry.Similar[rand.Intn(len(entry.Similar))]
}
