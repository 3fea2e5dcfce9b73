package engine

import "github.com/DoyleJ11/dicegame/internal/dice"

func NewEmptyState() State {
	s := State{
		Hand:      dice.NewHand(1),
		RollsLeft: MaxRolls,
		Scores:    map[Category]int{},
		Turn:      1,
	}
	s.Phase = DerivePhase(s)
	return s
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func DerivePhase(s State) Phase {
	if len(s.Scores) >= len(Categories) {
		return PhaseDone
	} else if s.RollsLeft <= 0 {
		return PhaseScoring
	}
	return PhaseRolling
}

// Row is one line of the score sheet. Open rows carry the live score for
// the current hand; committed rows carry the locked-in value.
type Row struct {
	Category  Category
	Score     int
	Committed bool
}

func Sheet(s State) []Row {
	open := Preview(s)
	rows := make([]Row, 0, len(Categories))
	for _, c := range Categories {
		if v, ok := open[c]; ok {
			rows = append(rows, Row{Category: c, Score: v})
			continue
		}
		rows = append(rows, Row{Category: c, Score: s.Scores[c], Committed: true})
	}
	return rows
}

// Preview scores every open category against the current hand.
func Preview(s State) map[Category]int {
	out := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		if _, ok := s.Scores[c]; ok {
			continue
		}
		out[c] = Score(s.Hand, c)
	}
	return out
}

func Total(s State) int {
	total := 0
	for _, v := range s.Scores {
		total += v
	}
	return total
}
