package game

import (
	"strings"
	"time"
)

// Filter cleans user text and decides whether it is acceptable.
type Filter interface {
	Sanitize(text string) string
	Passes(text string) bool
}

type env struct {
	filter Filter
	now    func() time.Time
}

// Room is the aggregate a game is played in. It is not safe for concurrent
// use; every method must run on the Loop goroutine.
type Room struct {
	Code       string
	Name       string
	IsPublic   bool
	Filter     bool
	MaxPlayers int
	HostID     string
	Players    []*Player // join order, which is also turn order
	State      State
	Round      int

	Assignments map[Prompt]string
	Submissions map[Prompt]*Submission
	Sentences   []Sentence

	CreatedAt time.Time
	UpdatedAt time.Time

	env *env
}

func (r *Room) touch() {
	r.UpdatedAt = r.env.now()
}

func (r *Room) player(id string) (*Player, int) {
	for i, p := range r.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// Player returns the roster entry for id, or nil.
func (r *Room) Player(id string) *Player {
	p, _ := r.player(id)
	return p
}

func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// ConnectedIDs lists connected players in turn order.
func (r *Room) ConnectedIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Connected {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (r *Room) Empty() bool { return len(r.Players) == 0 }

func (r *Room) clearRound() {
	r.Assignments = make(map[Prompt]string)
	r.Submissions = make(map[Prompt]*Submission)
}

// enforcePopulation drops a round in progress once fewer than two players are
// still connected. Reports whether it did.
func (r *Room) enforcePopulation() bool {
	if r.State != StateCollecting || r.ConnectedCount() >= MinPlayers {
		return false
	}
	r.State = StateLobby
	r.clearRound()
	return true
}

// Current returns the first prompt still missing its text and its owner.
func (r *Room) Current() (TurnAssignment, bool) {
	if r.State != StateCollecting {
		return TurnAssignment{}, false
	}
	for _, p := range Prompts {
		if r.Submissions[p] == nil {
			return TurnAssignment{Prompt: p, PlayerID: r.Assignments[p], Round: r.Round}, true
		}
	}
	return TurnAssignment{}, false
}

func (r *Room) Snapshot() Snapshot {
	players := make([]Player, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, Player{ID: p.ID, Name: p.Name, Color: p.Color, IsHost: p.IsHost, Connected: p.Connected})
	}
	s := Snapshot{
		Code:       r.Code,
		Name:       r.Name,
		Public:     r.IsPublic,
		Filter:     r.Filter,
		MaxPlayers: r.MaxPlayers,
		HostID:     r.HostID,
		Players:    players,
		State:      r.State,
		Round:      r.Round,
		Sentences:  len(r.Sentences),
		CreatedAt:  r.CreatedAt.UnixMilli(),
		UpdatedAt:  r.UpdatedAt.UnixMilli(),
	}
	if t, ok := r.Current(); ok {
		s.Active = &ActiveTurn{Prompt: t.Prompt, PlayerID: t.PlayerID}
	}
	return s
}

func (r *Room) Summary() Summary {
	return Summary{Code: r.Code, Name: r.Name, Players: r.ConnectedCount(), MaxPlayers: r.MaxPlayers}
}

func (r *Room) clean(text string, max int) string {
	return clampRunes(strings.TrimSpace(r.env.filter.Sanitize(text)), max)
}

func clampRunes(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return strings.TrimSpace(string(rs[:n]))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
