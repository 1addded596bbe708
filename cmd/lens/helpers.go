package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/abelbrown/lens/internal/account"
	"github.com/abelbrown/lens/internal/annotated"
	"github.com/abelbrown/lens/internal/api"
	"github.com/abelbrown/lens/internal/brain"
	"github.com/abelbrown/lens/internal/config"
	"github.com/abelbrown/lens/internal/imagesource"
	"github.com/abelbrown/lens/internal/logging"
	"github.com/abelbrown/lens/internal/otel"
	"github.com/abelbrown/lens/internal/session"
)

// dataDir returns the data directory, creating it if needed.
func dataDir() string {
	dir := config.DataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return dir
}

// dbPath returns the path to lens.db.
func dbPath(dir string) string {
	return filepath.Join(dir, "lens.db")
}

// eventLogPath returns the path to events.jsonl.
func eventLogPath(dir string) string {
	return filepath.Join(dir, "events.jsonl")
}

// services holds everything the commands share.
type services struct {
	cfg      *config.Config
	dir      string
	events   *otel.Logger
	ring     *otel.RingBuffer
	sessions *session.Store
	client   *api.Client
	accounts *account.Service
	brain    *brain.Manager
	loader   *imagesource.Loader
	fetcher  *annotated.Fetcher

	eventFile *os.File
}

// setup loads config and wires the services. Callers must Close it.
func setup(ctx context.Context, comp string) (*services, error) {
	dir := dataDir()
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := logging.Init(dir); err != nil {
		log.Printf("Warning: file logging disabled: %v", err)
	}

	rt := &services{cfg: cfg, dir: dir}

	f, err := os.OpenFile(eventLogPath(dir), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logging.Warn("event log disabled", "err", err)
		rt.events = otel.NewNullLogger()
	} else {
		rt.eventFile = f
		rt.events = otel.NewLogger(f)
	}
	rt.ring = otel.NewRingBuffer(512)
	rt.events.SetRingBuffer(rt.ring)

	rt.sessions, err = session.Open(dbPath(dir))
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open session store: %w", err)
	}

	rt.client, err = api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithRateLimit(cfg.API.RequestsPerSecond),
		api.WithTokenSource(rt.sessions),
	)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.accounts = account.NewService(rt.client, rt.sessions, rt.events)

	rt.brain = brain.NewManager()
	rt.brain.AddProvider(brain.NewServiceProvider(rt.client))
	if key := cfg.QA.Gemini.APIKey; key != "" {
		gemini, err := brain.NewGeminiProvider(ctx, key, cfg.QA.Gemini.Model)
		if err != nil {
			logging.Warn("gemini provider unavailable", "err", err)
		} else {
			rt.brain.AddProvider(gemini)
		}
	}
	rt.brain.SetPreferred(cfg.QA.Backend)

	var objects imagesource.ObjectReader
	if cfg.S3Enabled() {
		s3 := cfg.Storage.S3
		reader, err := imagesource.NewS3Reader(imagesource.S3Config{
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			UseSSL:    s3.UseSSL,
		})
		if err != nil {
			logging.Warn("s3 disabled", "err", err)
		} else {
			objects = reader
		}
	}
	rt.loader = imagesource.NewLoader(objects)

	rt.fetcher, err = annotated.NewFetcher(rt.client, cfg.Cache.AnnotatedEntries)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindStartup,
		Comp:  comp,
		Msg:   cfg.API.BaseURL,
		Extra: map[string]any{"qa": cfg.QA.Backend, "providers": rt.brain.ListAvailable()},
	})
	return rt, nil
}

// Close flushes events and releases files.
func (rt *services) Close() {
	if rt.events != nil {
		rt.events.Info(otel.KindShutdown, "main", "")
		rt.events.Close()
	}
	if rt.eventFile != nil {
		rt.eventFile.Close()
	}
	if rt.sessions != nil {
		rt.sessions.Close()
	}
	logging.Close()
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
