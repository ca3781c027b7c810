package game

import (
	"sort"
	"time"
)

const codeAttempts = 64

type RegistryConfig struct {
	Codes  CodeGenerator
	Filter Filter
	Now    func() time.Time
	// Grace is how long a disconnected player keeps their slot.
	Grace time.Duration
}

// Registry owns every room in the process. Like Room it is confined to the
// Loop goroutine.
type Registry struct {
	rooms map[string]*Room
	codes CodeGenerator
	env   *env
	grace time.Duration
}

func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Codes == nil {
		cfg.Codes = RandomCodes{N: 5}
	}
	if cfg.Filter == nil {
		cfg.Filter = passthrough{}
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Registry{
		rooms: make(map[string]*Room),
		codes: cfg.Codes,
		env:   &env{filter: cfg.Filter, now: cfg.Now},
		grace: cfg.Grace,
	}
}

func (reg *Registry) Create(opts RoomOptions) (*Room, error) {
	code := ""
	for i := 0; i < codeAttempts; i++ {
		c := CanonicalCode(reg.codes.Generate())
		if c != "" && reg.rooms[c] == nil {
			code = c
			break
		}
	}
	if code == "" {
		return nil, ErrCodeSpace
	}

	now := reg.env.now()
	r := &Room{
		Code:       code,
		IsPublic:   opts.IsPublic,
		Filter:     opts.Filter == nil || *opts.Filter,
		MaxPlayers: clampInt(opts.MaxPlayers, MinPlayers, MaxPlayers),
		State:      StateLobby,
		CreatedAt:  now,
		UpdatedAt:  now,
		env:        reg.env,
	}
	r.clearRound()
	r.Name = r.clean(opts.Name, MaxNameLen)
	if r.Name == "" {
		r.Name = "Room " + code
	}
	reg.rooms[code] = r
	return r, nil
}

func (reg *Registry) Get(code string) (*Room, error) {
	r := reg.rooms[CanonicalCode(code)]
	if r == nil {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// ListPublic returns joinable public rooms, most recently updated first.
// Disconnected players still hold a slot, so a room is listed only while its
// roster has room; Summary.Players counts connected players.
func (reg *Registry) ListPublic(limit int) []Summary {
	if limit <= 0 {
		limit = DefaultListLen
	}
	open := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		if !r.IsPublic || r.State == StateEnded || len(r.Players) >= r.MaxPlayers {
			continue
		}
		open = append(open, r)
	}
	sort.Slice(open, func(i, j int) bool {
		if open[i].UpdatedAt.Equal(open[j].UpdatedAt) {
			return open[i].Code < open[j].Code
		}
		return open[i].UpdatedAt.After(open[j].UpdatedAt)
	})
	if len(open) > limit {
		open = open[:limit]
	}
	out := make([]Summary, 0, len(open))
	for _, r := range open {
		out = append(out, r.Summary())
	}
	return out
}

// Remove deletes an empty room. Rooms with anyone left in the roster, even if
// disconnected, are kept so those players can come back.
func (reg *Registry) Remove(code string) bool {
	code = CanonicalCode(code)
	r := reg.rooms[code]
	if r == nil || !r.Empty() {
		return false
	}
	delete(reg.rooms, code)
	return true
}

func (reg *Registry) Len() int { return len(reg.rooms) }

type SweepResult struct {
	Room    *Room
	Removed []string
	Deleted bool
	Outcome Outcome
}

// Sweep removes players who stayed disconnected past the grace period. A room
// emptied by the sweep is deleted; one that has sat empty since its last
// update, such as a room nobody joined yet, is deleted once that is older
// than the grace period.
func (reg *Registry) Sweep(now time.Time) []SweepResult {
	var out []SweepResult
	for code, r := range reg.rooms {
		res := SweepResult{Room: r}
		for _, p := range append([]*Player(nil), r.Players...) {
			if p.Connected || now.Sub(p.DisconnectedAt) < reg.grace {
				continue
			}
			oc, err := r.Leave(p.ID)
			if err != nil {
				continue
			}
			res.Removed = append(res.Removed, p.ID)
			if oc.Turn != nil {
				res.Outcome = oc
			}
		}
		if r.Empty() && (len(res.Removed) > 0 || now.Sub(r.UpdatedAt) >= reg.grace) {
			delete(reg.rooms, code)
			res.Deleted = true
		}
		if len(res.Removed) > 0 || res.Deleted {
			out = append(out, res)
		}
	}
	return out
}

type passthrough struct{}

func (passthrough) Sanitize(text string) string { return text }
func (passthrough) Passes(string) bool          { return true }
