package dice

import (
	"errors"
	"math/rand"
	"time"
)

var ErrDieIndex = errors.New("die index out of range")

const (
	HandSize = 5
	Sides    = 6
)

// Roller is the random source used for rolling. *rand.Rand satisfies it.
type Roller interface {
	Intn(n int) int
}

// NewRoller returns a seeded roller. A zero seed picks one from the clock.
func NewRoller(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

type Die struct {
	Value int  `json:"value"`
	Held  bool `json:"held"`
}

type Hand [HandSize]Die

// NewHand returns a hand of unheld dice all showing value.
func NewHand(value int) Hand {
	var h Hand
	for i := range h {
		h[i] = Die{Value: value}
	}
	return h
}

// Roll replaces every non-held die with a new value in [1, Sides].
func (h Hand) Roll(r Roller) Hand {
	for i, d := range h {
		if d.Held {
			continue
		}
		h[i].Value = rollDie(r)
	}
	return h
}

func (h Hand) Toggle(index int) (Hand, error) {
	if index < 0 || index >= HandSize {
		return h, ErrDieIndex
	}
	h[index].Held = !h[index].Held
	return h, nil
}

// Release clears every hold.
func (h Hand) Release() Hand {
	for i := range h {
		h[i].Held = false
	}
	return h
}

func (h Hand) Values() []int {
	out := make([]int, 0, HandSize)
	for _, d := range h {
		out = append(out, d.Value)
	}
	return out
}

func (h Hand) Count(face int) int {
	n := 0
	for _, d := range h {
		if d.Value == face {
			n++
		}
	}
	return n
}

// FromValues builds an unheld hand. Missing positions show 1.
func FromValues(values ...int) Hand {
	h := NewHand(1)
	for i := 0; i < len(values) && i < HandSize; i++ {
		h[i].Value = values[i]
	}
	return h
}

func rollDie(r Roller) int {
	return r.Intn(Sides) + 1
}
