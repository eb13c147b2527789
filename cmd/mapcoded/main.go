// Command mapcoded serves the mapcode API over HTTP.
//
// Configuration comes from the environment, optionally from a .env file:
//
//	ADDR           listen address (default :8080)
//	MAPCODE_TABLE  territory table file (default: embedded)
//	REDIS_HOST     enables the response cache (REDIS_PORT, REDIS_PASS, REDIS_DB, CACHE_TTL)
//	GEOIP_DB       GeoIP2/GeoLite2 city database for /api/encode?ip=
//	LOG_LEVEL      debug, info, warn or error
//	LOG_FORMAT     text or json
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/andreiashu/mapcode"
	"github.com/andreiashu/mapcode/internal/cache"
	"github.com/andreiashu/mapcode/internal/locate"
	"github.com/andreiashu/mapcode/internal/logger"
	"github.com/andreiashu/mapcode/internal/server"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()

	opts := []mapcode.Option{mapcode.WithLogger(l)}
	if table := os.Getenv("MAPCODE_TABLE"); table != "" {
		opts = append(opts, mapcode.WithTableFile(table))
	}
	codec, err := mapcode.NewCodec(opts...)
	if err != nil {
		l.Error("codec_init_error", "err", err)
		os.Exit(1)
	}
	l.Info("codec_ready", "table", codec.Registry().Version(), "territories", len(codec.Territories()))

	srvOpts := []server.Option{server.WithLogger(l)}
	if c := cache.OpenFromEnv(); c != nil {
		if err := c.Ping(context.Background()); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
		defer c.Close()
		srvOpts = append(srvOpts, server.WithCache(c))
	} else {
		l.Info("redis_disabled")
	}
	if path := os.Getenv("GEOIP_DB"); path != "" {
		g, err := locate.Open(path)
		if err != nil {
			l.Error("geoip_open_error", "path", path, "err", err)
		} else {
			defer g.Close()
			srvOpts = append(srvOpts, server.WithLocator(g))
			l.Info("geoip_ready", "path", path)
		}
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	s := &http.Server{
		Addr:              addr,
		Handler:           server.New(codec, srvOpts...).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	l.Info("listening", "addr", addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("listen_error", "err", err)
		os.Exit(1)
	}
	l.Info("stopped")
}
