package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"radio-browser-mcp/internal/config"
	"radio-browser-mcp/internal/directory"
	"radio-browser-mcp/internal/metrics"
	"radio-browser-mcp/internal/playback"
	"radio-browser-mcp/internal/player"
	"radio-browser-mcp/internal/playlist"
	"radio-browser-mcp/internal/store"
	"radio-browser-mcp/internal/tools"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	debugFlag   = flag.Bool("debug", false, "Enable debug logging")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s v%s - MCP server for radio discovery and playback\n\n", config.AppName, config.AppVersion)
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		os.Exit(0)
	}

	// Stdout carries the MCP JSON-RPC stream, so all logging goes to stderr.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level := cfg.LogLevel
	if *debugFlag {
		level = "debug"
	}
	setLogLevel(level)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open database")
	}
	defer st.Close()

	// A missing or broken libVLC must not keep the discovery tools from
	// working; playback tools report the initialization error instead.
	var p player.Player
	vlcPlayer, vlcErr := player.NewVLCPlayer()
	if vlcErr != nil {
		log.Warn().Err(vlcErr).Msg("libVLC unavailable, playback tools will report errors")
	} else {
		p = vlcPlayer
		defer vlcPlayer.Release()
	}

	resolver := playlist.NewResolver(cfg.MaxPlaylistBytes)
	session := playback.NewSession(cfg, st, resolver, p, vlcErr)
	defer session.Close()

	mirrors := directory.NewMirrorResolver()
	dir := directory.NewClient(mirrors)

	srv := server.NewMCPServer(config.AppName, config.AppVersion, server.WithToolCapabilities(true))
	tools.NewService(mirrors, dir, st, session, resolver).Register(srv)

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ServeStdio(srv)
	}()
	log.Info().Str("version", config.AppVersion).Msg("Serving MCP over stdio")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("Server stopped")
		}
	}
	// Deferred cleanup commits the final listen duration before the store
	// closes.
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server stopped")
	}
}
