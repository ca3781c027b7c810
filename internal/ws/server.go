package ws

import (
	"context"
	"errors"
	"time"

	"github.com/kiliankoe/whowhatwhere/internal/config"
	"github.com/kiliankoe/whowhatwhere/internal/game"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	namespace   = "/"
	loopTimeout = 5 * time.Second
)

// Conn is the part of a Socket.IO connection the server relies on.
// socketio.Conn satisfies it.
type Conn interface {
	ID() string
	Emit(event string, v ...interface{})
	Join(room string)
	Leave(room string)
	Context() interface{}
	SetContext(ctx interface{})
}

// Broadcaster delivers an event to every connection in a Socket.IO room.
type Broadcaster interface {
	BroadcastToRoom(namespace string, room, event string, args ...interface{}) bool
}

type ConnCtx struct {
	Identity game.Identity
	Code     string

	limiter *rate.Limiter
}

type Server struct {
	cfg      config.Config
	reg      *game.Registry
	ids      *game.IdentityProvider
	loop     *game.Loop
	exporter *game.Exporter
	bc       Broadcaster

	// loop-confined
	conns   map[string]Conn
	members map[string]map[string]Conn // room code -> socket id -> conn
}

func New(cfg config.Config, reg *game.Registry) *Server {
	srv := &Server{
		cfg:     cfg,
		reg:     reg,
		ids:     game.NewIdentityProvider(),
		conns:   make(map[string]Conn),
		members: make(map[string]map[string]Conn),
	}
	srv.loop = game.NewLoop(cfg.SweepInterval, srv.sweep)
	if cfg.ExportEnabled {
		srv.exporter = game.NewExporter(cfg.ExportFile, 64)
	}
	return srv
}

func (srv *Server) SetBroadcaster(bc Broadcaster) { srv.bc = bc }

// Run drives the event loop and the exporter until ctx ends.
func (srv *Server) Run(ctx context.Context) {
	if srv.exporter != nil {
		go srv.exporter.Run(ctx)
	}
	srv.loop.Run(ctx)
}

// PublicRooms returns the public listing for HTTP callers.
func (srv *Server) PublicRooms(ctx context.Context) ([]game.Summary, error) {
	var out []game.Summary
	err := srv.loop.Do(ctx, func() { out = srv.reg.ListPublic(srv.cfg.PublicListLimit) })
	return out, err
}

// RoomExists reports whether code names a live room.
func (srv *Server) RoomExists(ctx context.Context, code string) (bool, error) {
	var ok bool
	err := srv.loop.Do(ctx, func() {
		_, e := srv.reg.Get(code)
		ok = e == nil
	})
	return ok, err
}

func (srv *Server) limiter() *rate.Limiter {
	if srv.cfg.IntentRate <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(srv.cfg.IntentRate), srv.cfg.IntentBurst)
}

func connCtx(c Conn) *ConnCtx {
	cc, _ := c.Context().(*ConnCtx)
	return cc
}

// do runs fn on the event loop on behalf of c and turns its error into an
// error event for c alone.
func (srv *Server) do(c Conn, intent string, fn func(cc *ConnCtx) (map[string]any, error)) map[string]any {
	cc := connCtx(c)
	if cc == nil {
		return srv.err(c, intent, game.ErrNotInRoom)
	}
	if !cc.limiter.Allow() {
		return srv.err(c, intent, game.ErrRateLimited)
	}

	ctx, cancel := context.WithTimeout(context.Background(), loopTimeout)
	defer cancel()

	var (
		ack map[string]any
		err error
	)
	if lerr := srv.loop.Do(ctx, func() { ack, err = fn(cc) }); lerr != nil {
		log.Error().Err(lerr).Str("sid", c.ID()).Str("intent", intent).Msg("event loop unavailable")
		return map[string]any{"error": lerr.Error(), "kind": game.KindInternal}
	}
	if errors.Is(err, game.ErrDuplicateSubmission) {
		return map[string]any{"ok": true, "duplicate": true}
	}
	if err != nil {
		return srv.err(c, intent, err)
	}
	if ack == nil {
		ack = map[string]any{"ok": true}
	}
	return ack
}

func (srv *Server) err(c Conn, intent string, err error) map[string]any {
	kind := game.KindOf(err)
	log.Warn().Str("sid", c.ID()).Str("intent", intent).Str("kind", string(kind)).Msg(err.Error())
	c.Emit("error", map[string]any{"kind": kind, "message": err.Error()})
	return map[string]any{"error": err.Error(), "kind": kind}
}

// currentRoom resolves the room the connection is in.
func (srv *Server) currentRoom(cc *ConnCtx) (*game.Room, error) {
	if cc.Code == "" {
		return nil, game.ErrNotInRoom
	}
	return srv.reg.Get(cc.Code)
}

func (srv *Server) addMember(code string, c Conn) {
	if srv.members[code] == nil {
		srv.members[code] = make(map[string]Conn)
	}
	srv.members[code][c.ID()] = c
	c.Join(code)
}

func (srv *Server) removeMember(code string, c Conn) {
	if m := srv.members[code]; m != nil {
		delete(m, c.ID())
		if len(m) == 0 {
			delete(srv.members, code)
		}
	}
	c.Leave(code)
}

// liveElsewhere reports whether playerID has another connection in code.
func (srv *Server) liveElsewhere(code, playerID, sid string) bool {
	for id, c := range srv.members[code] {
		if id == sid {
			continue
		}
		if cc := connCtx(c); cc != nil && cc.Identity.ID == playerID {
			return true
		}
	}
	return false
}

func (srv *Server) broadcast(code, event string, payload any) {
	if srv.bc != nil {
		srv.bc.BroadcastToRoom(namespace, code, event, payload)
		return
	}
	for _, c := range srv.members[code] {
		c.Emit(event, payload)
	}
}

func (srv *Server) emitUpdate(room *game.Room) {
	srv.broadcast(room.Code, "room.update", map[string]any{"room": room.Snapshot()})
}

// emitOutcome announces a transition's turn or reveal to the room and its
// targeted notices to the players they name.
func (srv *Server) emitOutcome(room *game.Room, oc game.Outcome) {
	if oc.Reveal != nil {
		srv.broadcast(room.Code, "reveal.show", oc.Reveal)
		if srv.exporter != nil {
			if rec, ok := game.NewExportRecord(room); ok {
				srv.exporter.Enqueue(rec)
			}
		}
	}
	if oc.Turn != nil {
		srv.broadcast(room.Code, "turn.assigned", oc.Turn)
	}
	for _, n := range oc.Notices {
		srv.emitToPlayer(room.Code, n.PlayerID, "turn.notify", n)
	}
}

func (srv *Server) emitToPlayer(code, playerID, event string, payload any) {
	for _, c := range srv.members[code] {
		if cc := connCtx(c); cc != nil && cc.Identity.ID == playerID {
			c.Emit(event, payload)
		}
	}
}

// catchUp sends a (re)joining connection the turn currently being collected.
func (srv *Server) catchUp(c Conn, room *game.Room, playerID string) {
	t, ok := room.Current()
	if !ok {
		return
	}
	c.Emit("turn.assigned", &t)
	if t.PlayerID == playerID {
		c.Emit("turn.notify", game.Notice{PlayerID: playerID, Kind: game.NoticeYourTurn, Prompt: t.Prompt, Round: t.Round})
	}
}

func (srv *Server) sweep(now time.Time) {
	for _, res := range srv.reg.Sweep(now) {
		for _, id := range res.Removed {
			srv.ids.Forget(id)
		}
		code := res.Room.Code
		log.Info().Str("code", code).Strs("removed", res.Removed).Bool("deleted", res.Deleted).Msg("sweep")
		if res.Deleted {
			for _, c := range srv.members[code] {
				if cc := connCtx(c); cc != nil {
					cc.Code = ""
				}
				c.Leave(code)
			}
			delete(srv.members, code)
			continue
		}
		srv.emitUpdate(res.Room)
		srv.emitOutcome(res.Room, res.Outcome)
	}
}
