package lobby

import (
	"time"

	"github.com/DoyleJ11/dicegame/pkg/types"
)

// Controls names the control group the table shows.
type Controls string

const (
	ControlsNone    Controls = "none"    // not in a game yet
	ControlsLobby   Controls = "lobby"   // waiting room, ready button
	ControlsActive  Controls = "active"  // our turn
	ControlsWaiting Controls = "waiting" // someone else's turn
	ControlsResults Controls = "results" // game over
)

type Kind string

const (
	KindInfo  Kind = "info"
	KindError Kind = "error"
)

type Banner struct {
	Text    string    `json:"text"`
	Kind    Kind      `json:"kind"`
	Expires time.Time `json:"expires"`
}

type DieView struct {
	Index      int  `json:"index"`
	Value      int  `json:"value"`
	Selected   bool `json:"selected"`
	Selectable bool `json:"selectable"`
}

// View is everything a renderer needs; it is rebuilt from scratch on
// every change.
type View struct {
	Version           int              `json:"version"`
	PlayerID          string           `json:"player_id,omitempty"`
	State             *types.GameState `json:"state,omitempty"`
	Controls          Controls         `json:"controls"`
	ReadyEnabled      bool             `json:"ready_enabled"`
	IsReady           bool             `json:"is_ready"`
	CurrentPlayerName string           `json:"current_player_name,omitempty"`
	Interactive       bool             `json:"interactive"`
	RemainingRerolls  int              `json:"remaining_rerolls"`
	Dice              []DieView        `json:"dice,omitempty"`
	Combination       string           `json:"combination,omitempty"`
	Selected          []int            `json:"selected"`
	CanReroll         bool             `json:"can_reroll"`
	Banner            *Banner          `json:"banner,omitempty"`
	NumClients        int              `json:"-"`
}

// Me returns this client's player entry.
func (v View) Me() (types.Player, bool) {
	return v.State.Player(v.PlayerID)
}

func (l *Lobby) interactive() bool {
	if l.state == nil || l.state.Status != types.StatusActive || l.playerID == "" {
		return false
	}
	cur, ok := l.state.Current()
	return ok && cur.ID == l.playerID
}

func (l *Lobby) remainingRerolls() int {
	if l.state == nil || l.state.CurrentTurn == nil {
		return 0
	}
	return l.state.CurrentTurn.RemainingRerolls
}

func (l *Lobby) view() View {
	v := View{
		Version:  l.version,
		PlayerID: l.playerID,
		Controls: ControlsNone,
		Selected: l.selection.Indices(),
	}
	if l.banner != nil {
		b := *l.banner
		v.Banner = &b
	}
	if l.state == nil {
		return v
	}

	cp := *l.state
	v.State = &cp
	v.Interactive = l.interactive()
	v.RemainingRerolls = l.remainingRerolls()

	switch l.state.Status {
	case types.StatusWaiting:
		v.Controls = ControlsLobby
		if me, ok := l.state.Player(l.playerID); ok {
			v.IsReady = me.IsReady
			v.ReadyEnabled = !me.IsReady
		}
	case types.StatusActive:
		if v.Interactive {
			v.Controls = ControlsActive
		} else {
			v.Controls = ControlsWaiting
			if cur, ok := l.state.Current(); ok {
				v.CurrentPlayerName = cur.Name
			}
		}
	case types.StatusCompleted:
		v.Controls = ControlsResults
	}

	if turn := l.state.CurrentTurn; turn != nil && len(turn.Roll) > 0 {
		selectable := v.Interactive && turn.RemainingRerolls > 0
		v.Dice = make([]DieView, 0, len(turn.Roll))
		for i, value := range turn.Roll {
			v.Dice = append(v.Dice, DieView{
				Index:      i,
				Value:      value,
				Selected:   l.selection.Contains(i),
				Selectable: selectable,
			})
		}
		v.Combination = turn.Combination
	}

	v.CanReroll = v.Interactive && l.selection.Len() > 0 && v.RemainingRerolls > 0
	return v
}
