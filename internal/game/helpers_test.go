package game

import (
	"fmt"
	"strings"
	"time"
)

type seqCodes struct {
	codes []string
	n     int
}

func (s *seqCodes) Generate() string {
	if len(s.codes) > 0 {
		c := s.codes[s.n%len(s.codes)]
		s.n++
		return c
	}
	s.n++
	return fmt.Sprintf("R%04d", s.n)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// banFilter rejects anything containing "bad" and strips angle brackets.
type banFilter struct{}

func (banFilter) Sanitize(s string) string { return strings.NewReplacer("<", "", ">", "").Replace(s) }
func (banFilter) Passes(s string) bool     { return !strings.Contains(strings.ToLower(s), "bad") }

func newTestRegistry() (*Registry, *clock) {
	clk := &clock{t: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)}
	reg := NewRegistry(RegistryConfig{
		Codes:  &seqCodes{},
		Filter: banFilter{},
		Now:    clk.now,
		Grace:  time.Minute,
	})
	return reg, clk
}

// newLobby creates a room and joins the given player ids in order.
func newLobby(reg *Registry, maxPlayers int, ids ...string) *Room {
	r, err := reg.Create(RoomOptions{Name: "test", IsPublic: true, MaxPlayers: maxPlayers})
	if err != nil {
		panic(err)
	}
	for _, id := range ids {
		if _, err := r.Join(id, strings.ToUpper(id), ""); err != nil {
			panic(err)
		}
	}
	return r
}

// fillRound submits text for every prompt using whoever owns it.
func fillRound(r *Room) (Outcome, error) {
	var oc Outcome
	for _, p := range Prompts {
		var err error
		oc, err = r.Submit(r.Assignments[p], p, "some "+string(p))
		if err != nil {
			return oc, err
		}
	}
	return oc, nil
}
