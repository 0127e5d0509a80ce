// cmd/web/main.go
//
// SolarSaarthi platform – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (server-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load layered config (.env → conf/global.yaml → SAARTHI_ overrides,
//     vault: references resolved).
//
//  4. Open MySQL (profile rows) and Redis (pending hand-off drafts); load
//     the GeoIP database when configured.
//
//  5. Wire the domain: auth-provider client, hand-off client, onboarding
//     orchestrator, Gemini assistant, session manager.
//
//  6. Register components (account, api, assistant) and mount their routers
//     behind the Security / ForceHTTPS / request-enrichment middleware.
//
//  7. Serve the app and the Prometheus /metrics listener side by side under
//     one errgroup; either one failing takes the process down.
//
package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/solarsaarthi/platform/components/account"
	"github.com/solarsaarthi/platform/components/api"
	"github.com/solarsaarthi/platform/components/assistant"
	"github.com/solarsaarthi/platform/internal/authclient"
	"github.com/solarsaarthi/platform/internal/component"
	"github.com/solarsaarthi/platform/internal/config"
	"github.com/solarsaarthi/platform/internal/database"
	"github.com/solarsaarthi/platform/internal/draft"
	"github.com/solarsaarthi/platform/internal/gemini"
	"github.com/solarsaarthi/platform/internal/handoff"
	"github.com/solarsaarthi/platform/internal/logger"
	"github.com/solarsaarthi/platform/internal/middleware"
	"github.com/solarsaarthi/platform/internal/onboarding"
	"github.com/solarsaarthi/platform/internal/profile"
	"github.com/solarsaarthi/platform/internal/requestinfo"
	"github.com/solarsaarthi/platform/internal/server"
	"github.com/solarsaarthi/platform/internal/session"
)

const serverEnvPath = "/usr/local/etc/solarsaarthi/global.env"

// loadEnv prefers the server-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer zlog.Sync()

	//
	// ── 1.  Backing stores ──────────────────────────────────────────────
	//
	dsn := strings.ReplaceAll(cfg.Database.DSN, "{password}", cfg.Database.Password)
	db, err := database.Open(dsn)
	if err != nil {
		zlog.Fatalw("connect database", "err", err)
	}
	defer db.Close()
	zlog.Infow("database online")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if cfg.GeoIP.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.GeoIP.DBPath); err != nil {
			zlog.Warnw("geoip disabled", "path", cfg.GeoIP.DBPath, "err", err)
		}
	}

	//
	// ── 2.  Domain wiring ───────────────────────────────────────────────
	//
	draftTTL := time.Duration(cfg.Redis.DraftTTLHours) * time.Hour
	if draftTTL == 0 {
		draftTTL = 48 * time.Hour
	}
	drafts := draft.NewStore(rdb, draftTTL)

	provider := authclient.New(cfg.Auth.URL, cfg.Auth.AnonKey)
	backend := handoff.New(cfg.Backend.BaseURL)
	orchestrator := onboarding.New(provider, drafts, backend,
		cfg.HTTP.BaseURL+"/auth/callback", zlog)

	sessions := session.NewManager(cfg.HTTP.ForceHTTPS, 24*time.Hour)
	repo := profile.NewRepository(db)
	chat := gemini.New(cfg.Assistant.Endpoint, cfg.Assistant.APIKey, zlog)

	component.Register(account.New(orchestrator, provider, backend, sessions, cfg.HTTP.BaseURL, zlog))
	component.Register(api.New(repo, []byte(cfg.Auth.JWTSecret), zlog))
	component.Register(assistant.New(chat))

	//
	// ── 3.  Router assembly ─────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(middleware.Security)
	r.Use(requestinfo.Enrich)
	for _, c := range component.All() {
		zlog.Infow("mounting component", "name", c.Name())
		// Flatten each component router onto the root so every component can
		// own top-level paths without mount-pattern collisions.
		err := chi.Walk(c.Routes(), func(method, route string, h http.Handler, _ ...func(http.Handler) http.Handler) error {
			r.Method(method, route, h)
			return nil
		})
		if err != nil {
			zlog.Fatalw("mount component", "name", c.Name(), "err", err)
		}
	}

	var root http.Handler = r
	root = middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS, root)

	app := server.New(cfg.HTTP.ListenAddr, root)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := server.New(cfg.HTTP.MetricsAddr, metricsMux)

	//
	// ── 4.  Serve ───────────────────────────────────────────────────────
	//
	var g errgroup.Group
	g.Go(func() error {
		zlog.Infow("app listening", "addr", cfg.HTTP.ListenAddr)
		return app.ListenAndServe()
	})
	g.Go(func() error {
		zlog.Infow("metrics listening", "addr", cfg.HTTP.MetricsAddr)
		return metricsSrv.ListenAndServe()
	})
	if err := g.Wait(); err != nil {
		zlog.Fatalw("server exited", "err", err)
	}
}
