package spades

import (
	"fmt"
	"math/rand"
	"sort"
)

// Suit is one of the four card suits.
type Suit string

const (
	Spades   Suit = "spades"
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
)

// suitOrder is the fixed sort priority for hands.
var suitOrder = map[Suit]int{Spades: 0, Hearts: 1, Diamonds: 2, Clubs: 3}

// Card is a single playing card. Rank runs 2..14 with 14 = Ace.
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

func (c Card) String() string {
	names := map[int]string{11: "J", 12: "Q", 13: "K", 14: "A"}
	r, ok := names[c.Rank]
	if !ok {
		r = fmt.Sprintf("%d", c.Rank)
	}
	return fmt.Sprintf("%s of %s", r, c.Suit)
}

// newDeck returns all 52 cards in fixed order.
func newDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range []Suit{Spades, Hearts, Diamonds, Clubs} {
		for r := 2; r <= 14; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// shuffle performs a Fisher-Yates shuffle in place.
func shuffle(deck []Card, rng *rand.Rand) {
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// sortHand orders a hand by suit priority then descending rank.
func sortHand(hand []Card) {
	sort.Slice(hand, func(i, j int) bool {
		if hand[i].Suit != hand[j].Suit {
			return suitOrder[hand[i].Suit] < suitOrder[hand[j].Suit]
		}
		return hand[i].Rank > hand[j].Rank
	})
}

// removeCard deletes the first occurrence of c from hand.
func removeCard(hand []Card, c Card) []Card {
	for i, h := range hand {
		if h == c {
			return append(hand[:i], hand[i+1:]...)
		}
	}
	return hand
}
