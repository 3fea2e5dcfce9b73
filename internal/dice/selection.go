package dice

import "sort"

// Selection is the set of die indices picked for the next reroll.
// The zero value is empty and ready to use.
type Selection struct {
	picked map[int]struct{}
}

func (s *Selection) Toggle(index int) error {
	if index < 0 || index >= HandSize {
		return ErrDieIndex
	}
	if s.picked == nil {
		s.picked = make(map[int]struct{}, HandSize)
	}
	if _, ok := s.picked[index]; ok {
		delete(s.picked, index)
		return nil
	}
	s.picked[index] = struct{}{}
	return nil
}

func (s *Selection) Contains(index int) bool {
	_, ok := s.picked[index]
	return ok
}

func (s *Selection) Len() int { return len(s.picked) }

// Indices returns the selected indices in ascending order.
func (s *Selection) Indices() []int {
	out := make([]int, 0, len(s.picked))
	for i := range s.picked {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (s *Selection) Clear() {
	clear(s.picked)
}
