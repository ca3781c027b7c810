package ws

import (
	"context"

	"github.com/kiliankoe/whowhatwhere/internal/game"
	"github.com/rs/zerolog/log"
)

type CreateRequest struct {
	Name       string `json:"name"`
	IsPublic   *bool  `json:"isPublic"`
	MaxPlayers int    `json:"maxPlayers"`
	Filter     *bool  `json:"filter"`
}

type JoinRequest struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type ResumeRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

type RenameRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type SubmitRequest struct {
	Prompt string `json:"prompt"`
	Text   string `json:"text"`
}

// Connect issues the connection's identity and sends it the public listing.
func (srv *Server) Connect(c Conn) {
	cc := &ConnCtx{limiter: srv.limiter()}
	c.SetContext(cc)
	ack := srv.do(c, "connect", func(cc *ConnCtx) (map[string]any, error) {
		cc.Identity = srv.ids.Issue()
		srv.conns[c.ID()] = c
		c.Emit("session.identity", cc.Identity)
		c.Emit("rooms.list", map[string]any{"rooms": srv.reg.ListPublic(srv.cfg.PublicListLimit)})
		return nil, nil
	})
	if _, failed := ack["error"]; failed {
		return
	}
	log.Info().Str("sid", c.ID()).Msg("socket connected")
}

func (srv *Server) Create(c Conn, req CreateRequest) map[string]any {
	return srv.do(c, "room.create", func(cc *ConnCtx) (map[string]any, error) {
		opts := game.RoomOptions{Name: req.Name, IsPublic: true, MaxPlayers: req.MaxPlayers, Filter: req.Filter}
		if req.IsPublic != nil {
			opts.IsPublic = *req.IsPublic
		}
		if opts.MaxPlayers == 0 {
			opts.MaxPlayers = game.MaxPlayers
		}
		room, err := srv.reg.Create(opts)
		if err != nil {
			return nil, err
		}
		log.Info().Str("sid", c.ID()).Str("code", room.Code).Bool("public", room.IsPublic).Int("maxPlayers", room.MaxPlayers).Msg("room.create")
		c.Emit("rooms.list", map[string]any{"rooms": srv.reg.ListPublic(srv.cfg.PublicListLimit)})
		return map[string]any{"code": room.Code, "room": room.Snapshot()}, nil
	})
}

func (srv *Server) List(c Conn) map[string]any {
	return srv.do(c, "room.list", func(cc *ConnCtx) (map[string]any, error) {
		rooms := srv.reg.ListPublic(srv.cfg.PublicListLimit)
		c.Emit("rooms.list", map[string]any{"rooms": rooms})
		return map[string]any{"rooms": rooms}, nil
	})
}

func (srv *Server) JoinRoom(c Conn, req JoinRequest) map[string]any {
	return srv.do(c, "room.join", func(cc *ConnCtx) (map[string]any, error) {
		room, err := srv.reg.Get(req.Code)
		if err != nil {
			return nil, err
		}
		p, err := room.Join(cc.Identity.ID, req.Name, req.Color)
		if err != nil {
			return nil, err
		}
		if cc.Code != "" && cc.Code != room.Code {
			srv.leaveCurrent(c, cc)
		}
		cc.Code = room.Code
		srv.addMember(room.Code, c)
		log.Info().Str("sid", c.ID()).Str("code", room.Code).Str("playerId", p.ID).Bool("host", p.IsHost).Msg("room.join")
		srv.emitUpdate(room)
		srv.catchUp(c, room, p.ID)
		return map[string]any{"playerId": p.ID, "code": room.Code}, nil
	})
}

// Resume swaps the connection's fresh identity for one issued earlier and,
// when a room code is given, puts the player back into their slot.
func (srv *Server) Resume(c Conn, req ResumeRequest) map[string]any {
	return srv.do(c, "session.resume", func(cc *ConnCtx) (map[string]any, error) {
		id, ok := srv.ids.Resolve(req.Token)
		if !ok {
			return nil, game.ErrNotInRoom
		}
		var room *game.Room
		if req.Code != "" {
			r, err := srv.reg.Get(req.Code)
			if err != nil {
				return nil, err
			}
			if _, err := r.Reconnect(id); err != nil {
				return nil, err
			}
			room = r
		}
		if cc.Identity.ID != id {
			if cc.Code != "" {
				srv.leaveCurrent(c, cc)
			} else {
				srv.ids.Forget(cc.Identity.ID)
			}
			cc.Identity = game.Identity{ID: id, Token: req.Token}
		}
		ack := map[string]any{"playerId": id}
		if room != nil {
			if cc.Code != "" && cc.Code != room.Code {
				srv.leaveCurrent(c, cc)
			}
			cc.Code = room.Code
			srv.addMember(room.Code, c)
			srv.emitUpdate(room)
			srv.catchUp(c, room, id)
			ack["code"] = room.Code
		}
		log.Info().Str("sid", c.ID()).Str("code", req.Code).Str("playerId", id).Msg("session.resume")
		return ack, nil
	})
}

func (srv *Server) LeaveRoom(c Conn) map[string]any {
	return srv.do(c, "room.leave", func(cc *ConnCtx) (map[string]any, error) {
		if cc.Code == "" {
			return nil, game.ErrNotInRoom
		}
		srv.leaveCurrent(c, cc)
		c.Emit("rooms.list", map[string]any{"rooms": srv.reg.ListPublic(srv.cfg.PublicListLimit)})
		return nil, nil
	})
}

// leaveCurrent removes cc's player from its room for good and detaches c.
func (srv *Server) leaveCurrent(c Conn, cc *ConnCtx) {
	code := cc.Code
	cc.Code = ""
	srv.removeMember(code, c)
	room, err := srv.reg.Get(code)
	if err != nil {
		return
	}
	oc, err := room.Leave(cc.Identity.ID)
	if err != nil {
		return
	}
	log.Info().Str("sid", c.ID()).Str("code", code).Str("playerId", cc.Identity.ID).Msg("room.leave")
	if room.Empty() {
		srv.reg.Remove(code)
		delete(srv.members, code)
		log.Info().Str("code", code).Msg("room removed")
		return
	}
	srv.emitUpdate(room)
	srv.emitOutcome(room, oc)
}

func (srv *Server) Rename(c Conn, req RenameRequest) map[string]any {
	return srv.do(c, "player.rename", func(cc *ConnCtx) (map[string]any, error) {
		room, err := srv.currentRoom(cc)
		if err != nil {
			return nil, err
		}
		p, err := room.Rename(cc.Identity.ID, req.Name, req.Color)
		if err != nil {
			return nil, err
		}
		srv.emitUpdate(room)
		return map[string]any{"name": p.Name, "color": p.Color}, nil
	})
}

func (srv *Server) Start(c Conn) map[string]any {
	return srv.do(c, "game.start", func(cc *ConnCtx) (map[string]any, error) {
		room, err := srv.currentRoom(cc)
		if err != nil {
			return nil, err
		}
		from := room.State
		oc, err := room.Start(cc.Identity.ID)
		if err != nil {
			return nil, err
		}
		srv.logTransition(room, from)
		srv.emitUpdate(room)
		srv.emitOutcome(room, oc)
		return nil, nil
	})
}

func (srv *Server) Submit(c Conn, req SubmitRequest) map[string]any {
	return srv.do(c, "submission.send", func(cc *ConnCtx) (map[string]any, error) {
		room, err := srv.currentRoom(cc)
		if err != nil {
			return nil, err
		}
		from := room.State
		oc, err := room.Submit(cc.Identity.ID, game.Prompt(req.Prompt), req.Text)
		if err != nil {
			return nil, err
		}
		log.Info().Str("code", room.Code).Str("playerId", cc.Identity.ID).Str("prompt", req.Prompt).Int("round", room.Round).Msg("submission.send")
		srv.logTransition(room, from)
		srv.emitUpdate(room)
		srv.emitOutcome(room, oc)
		return nil, nil
	})
}

func (srv *Server) Again(c Conn) map[string]any {
	return srv.do(c, "game.again", func(cc *ConnCtx) (map[string]any, error) {
		room, err := srv.currentRoom(cc)
		if err != nil {
			return nil, err
		}
		from := room.State
		oc, err := room.Again(cc.Identity.ID)
		if err != nil {
			return nil, err
		}
		srv.logTransition(room, from)
		srv.emitUpdate(room)
		srv.emitOutcome(room, oc)
		return nil, nil
	})
}

func (srv *Server) End(c Conn) map[string]any {
	return srv.do(c, "game.end", func(cc *ConnCtx) (map[string]any, error) {
		room, err := srv.currentRoom(cc)
		if err != nil {
			return nil, err
		}
		from := room.State
		if err := room.End(cc.Identity.ID); err != nil {
			return nil, err
		}
		srv.logTransition(room, from)
		srv.emitUpdate(room)
		return nil, nil
	})
}

// Disconnect marks the player away rather than removing them, unless the
// same identity is still connected through another socket.
func (srv *Server) Disconnect(c Conn, reason string) {
	cc := connCtx(c)
	if cc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), loopTimeout)
	defer cancel()
	err := srv.loop.Do(ctx, func() {
		delete(srv.conns, c.ID())
		if cc.Code == "" {
			if !srv.identityLive(cc.Identity.ID) {
				srv.ids.Forget(cc.Identity.ID)
			}
			return
		}
		code := cc.Code
		srv.removeMember(code, c)
		if srv.liveElsewhere(code, cc.Identity.ID, c.ID()) {
			return
		}
		room, err := srv.reg.Get(code)
		if err != nil {
			return
		}
		from := room.State
		reverted, err := room.Disconnect(cc.Identity.ID)
		if err != nil {
			return
		}
		if reverted {
			log.Info().Str("code", code).Int("connected", room.ConnectedCount()).Msg("round dropped, back to lobby")
		}
		srv.logTransition(room, from)
		srv.emitUpdate(room)
	})
	if err != nil {
		log.Error().Err(err).Str("sid", c.ID()).Msg("disconnect not processed")
	}
	log.Info().Str("sid", c.ID()).Str("reason", reason).Msg("socket disconnected")
}

func (srv *Server) identityLive(playerID string) bool {
	for _, c := range srv.conns {
		if cc := connCtx(c); cc != nil && cc.Identity.ID == playerID {
			return true
		}
	}
	return false
}

func (srv *Server) logTransition(room *game.Room, from game.State) {
	if room.State == from {
		return
	}
	log.Info().Str("code", room.Code).Str("from", string(from)).Str("to", string(room.State)).Int("round", room.Round).Msg("phase transition")
}
