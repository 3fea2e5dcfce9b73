package engine

import (
	"errors"

	"github.com/DoyleJ11/dicegame/internal/dice"
)

var ErrNoRollsLeft = errors.New("no rolls left")
var ErrNotRolled = errors.New("roll before scoring")
var ErrCategoryScored = errors.New("category already scored")
var ErrUnknownCategory = errors.New("unknown category")
var ErrUnsupportedCommand = errors.New("unsupported command")
var ErrSheetCompleted = errors.New("sheet already completed")

// MaxRolls is the number of rolls granted at the start of every turn.
const MaxRolls = 3

type Phase string

const (
	PhaseRolling Phase = "rolling"
	PhaseScoring Phase = "scoring" // out of rolls, a category must be chosen
	PhaseDone    Phase = "done"
)

type State struct {
	Phase     Phase
	Hand      dice.Hand
	RollsLeft int
	Rolled    bool // at least one roll this turn
	Scores    map[Category]int
	Turn      int
}

type CommandType string

const (
	CmdRoll       CommandType = "Roll"
	CmdToggleHold CommandType = "ToggleHold"
	CmdScore      CommandType = "Score"
)

type Command struct {
	Type     CommandType
	Index    int
	Category Category
}

type EventType string

const (
	EvtDiceRolled     EventType = "DiceRolled"
	EvtHoldToggled    EventType = "HoldToggled"
	EvtCategoryScored EventType = "CategoryScored"
	EvtTurnStarted    EventType = "TurnStarted"
	EvtSheetCompleted EventType = "SheetCompleted"
)

/*
	CmdRoll       -> EvtDiceRolled (values after the roll, holds untouched)
	CmdToggleHold -> EvtHoldToggled
	CmdScore      -> EvtCategoryScored -> EvtTurnStarted
	                                  or EvtSheetCompleted on the sixth category
*/

type Event struct {
	Type     EventType
	Index    int
	Category Category
	Score    int
	Values   []int
}

// Score applies the stage 1 rule: with c dice showing the category face f
// the category is worth (c-3)*f. Three of a kind scores zero and fewer
// than three goes negative.
func Score(h dice.Hand, c Category) int {
	f := c.Face()
	if f == 0 {
		return 0
	}
	n := h.Count(f)
	if n == 3 {
		return 0
	}
	return (n - 3) * f
}

func Apply(s State, cmd Command, r dice.Roller) ([]Event, State, error) {
	if s.Phase == PhaseDone {
		return nil, s, ErrSheetCompleted
	}

	newState := s
	newState.Scores = cloneScores(s.Scores)

	switch cmd.Type {
	case CmdRoll:
		// Rolling with nothing left is a no-op.
		if s.RollsLeft <= 0 {
			return nil, s, ErrNoRollsLeft
		}
		newState.Hand = s.Hand.Roll(r)
		newState.RollsLeft--
		newState.Rolled = true
		newState.Phase = DerivePhase(newState)

		return []Event{{Type: EvtDiceRolled, Values: newState.Hand.Values()}}, newState, nil

	case CmdToggleHold:
		hand, err := s.Hand.Toggle(cmd.Index)
		if err != nil {
			return nil, s, err
		}
		newState.Hand = hand
		return []Event{{Type: EvtHoldToggled, Index: cmd.Index}}, newState, nil

	case CmdScore:
		if !cmd.Category.Valid() {
			return nil, s, ErrUnknownCategory
		}
		if _, done := s.Scores[cmd.Category]; done {
			return nil, s, ErrCategoryScored
		}
		if !s.Rolled {
			return nil, s, ErrNotRolled
		}

		score := Score(s.Hand, cmd.Category)
		newState.Scores[cmd.Category] = score
		events := []Event{{Type: EvtCategoryScored, Category: cmd.Category, Score: score}}

		if len(newState.Scores) == len(Categories) {
			events = append(events, Event{Type: EvtSheetCompleted})
			newState.Phase = PhaseDone
			return events, newState, nil
		}

		events = append(events, Event{Type: EvtTurnStarted})
		newState = startTurn(newState)
		return events, newState, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// Reduce rebuilds a state from its event log.
func Reduce(events []Event) State {
	s := NewEmptyState()
	for _, event := range events {
		switch event.Type {
		case EvtDiceRolled:
			for i := 0; i < len(event.Values) && i < dice.HandSize; i++ {
				s.Hand[i].Value = event.Values[i]
			}
			s.RollsLeft--
			s.Rolled = true
		case EvtHoldToggled:
			s.Hand, _ = s.Hand.Toggle(event.Index)
		case EvtCategoryScored:
			s.Scores[event.Category] = event.Score
		case EvtTurnStarted:
			s = startTurn(s)
		}
	}

	s.Phase = DerivePhase(s)
	return s
}

func startTurn(s State) State {
	s.Hand = s.Hand.Release()
	s.RollsLeft = MaxRolls
	s.Rolled = false
	s.Turn++
	s.Phase = DerivePhase(s)
	return s
}

func cloneScores(in map[Category]int) map[Category]int {
	out := make(map[Category]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
