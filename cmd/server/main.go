package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kiliankoe/whowhatwhere/internal/config"
	"github.com/kiliankoe/whowhatwhere/internal/game"
	"github.com/kiliankoe/whowhatwhere/internal/text"
	"github.com/kiliankoe/whowhatwhere/internal/ws"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var version = "dev" // Set at build time via -ldflags

func main() {
	if err := newCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var (
		port     string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "whowhatwhere",
		Short: "Who/What/Where/When - a real-time collaborative sentence game server",
		Long: `Who/What/Where/When - a real-time collaborative sentence game server

Environment Variables:
  PORT                Port to listen on (default: 4000)
  CORS_ORIGINS        Comma separated allowed origins (default: *)
  PUBLIC_URL          Base URL used in share links (default: http://localhost:4000)
  LOG_LEVEL           debug, info, warn, error (default: info)
  CODE_LENGTH         Room code length, 4-6 (default: 5)
  PUBLIC_LIST_LIMIT   Public rooms listed (default: 5)
  RECONNECT_GRACE     How long a disconnected player keeps their slot (default: 2m)
  SWEEP_INTERVAL      How often abandoned players and rooms are swept (default: 15s)
  INTENT_RATE         Client intents per second per connection (default: 10)
  INTENT_BURST        Burst of client intents per connection (default: 20)
  EXPORT_ENABLED      Append revealed sentences to a file (default: false)
  EXPORT_FILE         Path to export sentences (default: ./whowhatwhere-results.txt)`,
		Args:          cobra.ExactArgs(0),
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVarP(&port, "port", "p", "", "port to listen on (overrides PORT env var)")
	fs.StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL env var)")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("whowhatwhere {{.Version}}\n")

	return cmd
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func serve(parent context.Context, cfg config.Config) error {
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := game.NewRegistry(game.RegistryConfig{
		Codes:  game.RandomCodes{N: cfg.CodeLength},
		Filter: text.NewFilter(nil),
		Grace:  cfg.ReconnectGrace,
	})
	sock := ws.New(cfg, reg)
	go sock.Run(ctx)

	r := newEngine(cfg, sock)
	io := sock.Mount(r)
	defer io.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		zerologlog.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	zerologlog.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// roomLister is the slice of ws.Server the HTTP routes need.
type roomLister interface {
	PublicRooms(ctx context.Context) ([]game.Summary, error)
	RoomExists(ctx context.Context, code string) (bool, error)
}

func newEngine(cfg config.Config, rooms roomLister) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	r.GET("/api/rooms", func(c *gin.Context) {
		list, err := rooms.PublicRooms(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rooms": list})
	})

	r.GET("/api/rooms/:code/qr.png", func(c *gin.Context) {
		code := game.CanonicalCode(c.Param("code"))
		ok, err := rooms.RoomExists(c.Request.Context(), code)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": string(game.KindRoomNotFound)})
			return
		}
		png, err := qrcode.Encode(shareURL(cfg.PublicURL, code), qrcode.Medium, 256)
		if err != nil {
			zerologlog.Error().Err(err).Str("code", code).Msg("qr encode")
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, "image/png", png)
	})

	return r
}

// requestLogger logs HTTP requests, skipping /socket.io noise.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		zerologlog.Info().Str("path", path).Int("status", c.Writer.Status()).Dur("dur", time.Since(start)).Msg("http")
	}
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}

func shareURL(base, code string) string {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" {
		return base + "/?room=" + url.QueryEscape(code)
	}
	q := u.Query()
	q.Set("room", code)
	u.RawQuery = q.Encode()
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
