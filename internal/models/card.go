// internal/models/card.go
package models

import (
	"fmt"
	"math/rand"
	"time"
)

// Color is the suit of an UNO card. Wild cards carry ColorWild and only
// resolve to a real color when played (the game tracks that separately as
// the active color).
type Color string

const (
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
	ColorWild   Color = "wild"
)

// Colors lists the four real colors, i.e. every color a wild card may
// resolve to.
var Colors = []Color{ColorRed, ColorGreen, ColorBlue, ColorYellow}

// IsReal reports whether c is one of the four playable table colors.
func (c Color) IsReal() bool {
	switch c {
	case ColorRed, ColorGreen, ColorBlue, ColorYellow:
		return true
	}
	return false
}

// Face is the value printed on a card: a digit or an action.
type Face string

const (
	FaceSkip     Face = "skip"
	FaceReverse  Face = "reverse"
	FaceDrawTwo  Face = "draw2"
	FaceWild     Face = "wild"
	FaceWildFour Face = "wild4"
)

// Card is an immutable (color, face) pair. Duplicates are interchangeable;
// equality is by value and there are no per-card identifiers.
type Card struct {
	Color Color `json:"color"`
	Face  Face  `json:"face"`
}

// IsWild reports whether the card is a wild or wild-draw-four.
func (c Card) IsWild() bool { return c.Color == ColorWild }

func (c Card) String() string { return fmt.Sprintf("%s %s", c.Face, c.Color) }

// NewDeck builds the standard 108-card UNO deck: per color one 0, two each
// of 1-9, skip, reverse and draw2, plus four wilds and four wild-draw-fours.
func NewDeck() []Card {
	deck := make([]Card, 0, 108)
	for _, color := range Colors {
		deck = append(deck, Card{Color: color, Face: "0"})
		for d := 1; d <= 9; d++ {
			f := Face(fmt.Sprintf("%d", d))
			deck = append(deck, Card{Color: color, Face: f}, Card{Color: color, Face: f})
		}
		for _, f := range []Face{FaceSkip, FaceReverse, FaceDrawTwo} {
			deck = append(deck, Card{Color: color, Face: f}, Card{Color: color, Face: f})
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck,
			Card{Color: ColorWild, Face: FaceWild},
			Card{Color: ColorWild, Face: FaceWildFour},
		)
	}
	return deck
}

// ShuffleDeck shuffles cards in place.
func ShuffleDeck(cards []Card) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
