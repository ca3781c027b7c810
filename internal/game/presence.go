package game

import (
	"time"
)

// Join adds a player at the end of the turn order. An identity already in the
// roster is treated as a reconnect and keeps its place.
func (r *Room) Join(id, name, color string) (*Player, error) {
	if r.Player(id) != nil {
		return r.Reconnect(id)
	}
	if r.ConnectedCount() >= r.MaxPlayers || len(r.Players) >= r.MaxPlayers {
		return nil, ErrRoomFull
	}
	if r.State != StateLobby {
		return nil, ErrGameInProgress
	}

	name = r.clean(name, MaxNameLen)
	if name == "" {
		name = DefaultName
	}
	color = r.clean(color, MaxNameLen)
	if color == "" {
		color = DefaultColor
	}

	now := r.env.now()
	p := &Player{ID: id, Name: name, Color: color, Connected: true, JoinedAt: now}
	if len(r.Players) == 0 {
		p.IsHost = true
		r.HostID = id
	}
	r.Players = append(r.Players, p)
	r.touch()
	return p, nil
}

// Leave removes the player for good. The host role passes to the earliest
// joined player still connected, or the earliest joined one if nobody is. Unfilled prompts the player owned this round
// are handed to the remaining connected players.
func (r *Room) Leave(id string) (Outcome, error) {
	p, ix := r.player(id)
	if p == nil {
		return Outcome{}, ErrNotInRoom
	}
	before, hadTurn := r.Current()

	r.Players = append(r.Players[:ix], r.Players[ix+1:]...)
	if r.HostID == id {
		r.migrateHost()
	}

	if r.State == StateCollecting {
		fresh := Assign(r.ConnectedIDs(), r.Round)
		for prompt, owner := range r.Assignments {
			if owner == id && r.Submissions[prompt] == nil {
				r.Assignments[prompt] = fresh[prompt]
			}
		}
	}
	r.enforcePopulation()
	r.touch()

	var oc Outcome
	if after, ok := r.Current(); ok && (!hadTurn || after != before) {
		oc.Turn = &after
		oc.Notices = []Notice{{PlayerID: after.PlayerID, Kind: NoticeYourTurn, Prompt: after.Prompt, Round: after.Round}}
	}
	return oc, nil
}

func (r *Room) migrateHost() {
	r.HostID = ""
	if len(r.Players) == 0 {
		return
	}
	next := r.Players[0]
	for _, p := range r.Players {
		if p.Connected {
			next = p
			break
		}
	}
	next.IsHost = true
	r.HostID = next.ID
}

// Disconnect keeps the player's slot but marks them away. A round in progress
// falls back to the lobby once fewer than two players remain connected.
func (r *Room) Disconnect(id string) (reverted bool, err error) {
	p := r.Player(id)
	if p == nil {
		return false, ErrNotInRoom
	}
	if p.Connected {
		p.Connected = false
		p.DisconnectedAt = r.env.now()
	}
	reverted = r.enforcePopulation()
	r.touch()
	return reverted, nil
}

// Reconnect puts a disconnected player back into their original slot.
func (r *Room) Reconnect(id string) (*Player, error) {
	p := r.Player(id)
	if p == nil {
		return nil, ErrNotInRoom
	}
	if !p.Connected {
		p.Connected = true
		p.DisconnectedAt = time.Time{}
		r.touch()
	}
	return p, nil
}

// Rename updates the display name and/or color. Empty values keep the old one.
func (r *Room) Rename(id, name, color string) (*Player, error) {
	p := r.Player(id)
	if p == nil {
		return nil, ErrNotInRoom
	}
	if n := r.clean(name, MaxNameLen); n != "" {
		p.Name = n
	}
	if c := r.clean(color, MaxNameLen); c != "" {
		p.Color = c
	}
	r.touch()
	return p, nil
}
