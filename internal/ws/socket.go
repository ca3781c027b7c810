package ws

import (
	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"
)

// Mount attaches the Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.SetBroadcaster(io)

	io.OnConnect(namespace, func(s socketio.Conn) error {
		srv.Connect(s)
		return nil
	})

	io.OnEvent(namespace, "room.create", func(s socketio.Conn, payload CreateRequest) map[string]any {
		return srv.Create(s, payload)
	})
	io.OnEvent(namespace, "room.list", func(s socketio.Conn) map[string]any {
		return srv.List(s)
	})
	io.OnEvent(namespace, "room.join", func(s socketio.Conn, payload JoinRequest) map[string]any {
		return srv.JoinRoom(s, payload)
	})
	io.OnEvent(namespace, "room.leave", func(s socketio.Conn) map[string]any {
		return srv.LeaveRoom(s)
	})
	io.OnEvent(namespace, "session.resume", func(s socketio.Conn, payload ResumeRequest) map[string]any {
		return srv.Resume(s, payload)
	})
	io.OnEvent(namespace, "player.rename", func(s socketio.Conn, payload RenameRequest) map[string]any {
		return srv.Rename(s, payload)
	})
	io.OnEvent(namespace, "game.start", func(s socketio.Conn) map[string]any {
		return srv.Start(s)
	})
	io.OnEvent(namespace, "submission.send", func(s socketio.Conn, payload SubmitRequest) map[string]any {
		return srv.Submit(s, payload)
	})
	io.OnEvent(namespace, "game.again", func(s socketio.Conn) map[string]any {
		return srv.Again(s)
	})
	io.OnEvent(namespace, "game.end", func(s socketio.Conn) map[string]any {
		return srv.End(s)
	})

	io.OnError(namespace, func(s socketio.Conn, e error) {
		if s == nil {
			log.Error().Err(e).Msg("socket error")
			return
		}
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect(namespace, func(s socketio.Conn, reason string) {
		srv.Disconnect(s, reason)
	})

	go func() {
		if err := io.Serve(); err != nil {
			log.Error().Err(err).Msg("socket.io server stopped")
		}
	}()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	return io
}
