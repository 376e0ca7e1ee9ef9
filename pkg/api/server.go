// Package api is the dashboard's HTTP server: JSON routes under /api, the
// activity websocket, Prometheus metrics and the static UI.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/openclaw/admin-ui/pkg/blogwatcher"
	"github.com/openclaw/admin-ui/pkg/config"
	"github.com/openclaw/admin-ui/pkg/cron"
	"github.com/openclaw/admin-ui/pkg/gateway"
	"github.com/openclaw/admin-ui/pkg/runner"
	"github.com/openclaw/admin-ui/pkg/services"
	"github.com/openclaw/admin-ui/pkg/session"
	"github.com/openclaw/admin-ui/pkg/settings"
	"github.com/openclaw/admin-ui/pkg/textproc"
	"github.com/openclaw/admin-ui/pkg/tools"
	"github.com/openclaw/admin-ui/pkg/watchdog"
)

// Server wires the dashboard's components to HTTP.
type Server struct {
	cfg    *config.Config
	paths  config.Paths
	logger *slog.Logger
	now    func() time.Time

	jobs     *cron.Store
	trigger  *cron.Trigger
	sessions *session.Manager
	gateway  *gateway.Service
	watchdog *watchdog.Service
	tools    *tools.Registry
	exec     *tools.ExecTool
	settings *settings.Store
	services *services.Manager
	blog     *blogwatcher.Watcher
	text     *textproc.Processor
	hub      *Hub
}

// New builds every component from cfg. External commands go through r.
func New(cfg *config.Config, r runner.Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	p := cfg.Paths()
	sessions := session.NewManager(p.SessionsMain, p.SessionsShared)
	reg := tools.NewRegistry(cfg.BinDir)
	return &Server{
		cfg:      cfg,
		paths:    p,
		logger:   logger,
		now:      time.Now,
		jobs:     cron.NewStore(p.JobsFile),
		trigger:  cron.NewTrigger(r, cfg.OpenclawBin, logger),
		sessions: sessions,
		gateway:  gateway.New(p.GatewayLog, p.GatewayErrLog, sessions),
		watchdog: watchdog.New(p.WatchdogState, p.WatchdogLog, p.GatewayLogDir),
		tools:    reg,
		exec:     tools.NewExecTool(reg, r, logger),
		settings: settings.NewStore(p.OpenclawConfig),
		services: services.NewManager(cfg.Services, r, logger),
		blog:     blogwatcher.New(cfg, r, logger),
		text:     textproc.New(cfg),
		hub:      NewHub(cfg.Server.CORSOrigins, logger),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))
	if s.cfg.Server.AuthToken != "" {
		r.Use(bearerAuth(s.cfg.Server.AuthToken))
	}
	r.Use(limitBody(maxBodyBytes))

	r.Route("/api", func(r chi.Router) {
		r.Get("/app-config", s.appConfig)

		r.Route("/cron", func(r chi.Router) {
			r.Get("/jobs", s.listJobs)
			r.Post("/jobs", s.createJob)
			r.Get("/jobs/{id}", s.getJob)
			r.Put("/jobs/{id}", s.updateJob)
			r.Delete("/jobs/{id}", s.deleteJob)
			r.Post("/jobs/{id}/run", s.runJob)
			r.Get("/jobs/{id}/runs", s.jobRuns)
			r.Get("/schedule-map", s.scheduleMap)
			r.Get("/next-up", s.nextUp)
		})

		r.Route("/gateway", func(r chi.Router) {
			r.Get("/stats", s.gatewayStats)
			r.Get("/sessions", s.gatewaySessions)
			r.Get("/activity", s.gatewayActivity)
			r.Get("/activity/stream", s.hub.HandleConnect)
			r.Get("/errors", s.gatewayErrors)
			r.Get("/session/{id}/messages", s.sessionMessages)
		})

		r.Route("/watchdog", func(r chi.Router) {
			r.Get("/state", s.watchdogState)
			r.Get("/logs", s.watchdogLogs)
			r.Get("/runs", s.watchdogRuns)
			r.Get("/stats", s.watchdogStats)
		})

		r.Get("/workspace", s.listWorkspace)
		r.Get("/workspace/{filename}", s.readWorkspace)
		r.Put("/workspace/{filename}", s.writeWorkspace)

		r.Get("/friends", s.listFriends)
		r.Get("/friends/{slug}/{file}", s.readFriend)
		r.Put("/friends/{slug}/{file}", s.writeFriend)
		r.Delete("/friends/{slug}", s.deleteFriend)

		r.Get("/memory", s.listMemory)
		r.Get("/memory/{filename}", s.readMemory)
		r.Put("/memory/{filename}", s.writeMemory)

		r.Get("/stories", s.listStories)
		r.Get("/stories/{filename}", s.readStory)
		r.Put("/stories/{filename}", s.writeStory)

		r.Get("/skills", s.listSkills)
		r.Get("/skills/{name}", s.readSkill)
		r.Put("/skills/{name}", s.writeSkill)

		r.Get("/tools", s.listTools)
		r.Get("/tools/{name}", s.getTool)
		r.Put("/tools/{name}", s.writeTool)
		r.Post("/tools/{name}/run", s.runTool)

		r.Get("/settings", s.readSettings)
		r.Put("/settings", s.writeSettings)

		r.Get("/services", s.listServices)
		r.Post("/services/{name}/{action}", s.serviceAction)

		r.Route("/blog-watcher", func(r chi.Router) {
			r.Get("/articles", s.blogArticles)
			r.Get("/articles/{id}/linkedin-draft", s.blogDraft)
			r.Post("/articles/{id}/send-to-kindle", s.blogSendToKindle)
			r.Get("/feeds", s.blogFeeds)
			r.Get("/status", s.blogStatus)
			r.Post("/check", s.blogCheck)
		})

		r.Route("/text-processor", func(r chi.Router) {
			r.Get("/decisions", s.textDecisions)
			r.Get("/watched-chats", s.textWatchedChats)
			r.Delete("/watched-chats/{chatId}", s.textUnwatch)
			r.Get("/stats", s.textStats)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "Not found")
		})
	})

	r.Handle("/metrics", MetricsHandler())
	spa(r, s.cfg.Server.StaticDir)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and waits for background work.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	streamCtx, stopStream := context.WithCancel(ctx)
	defer stopStream()
	go s.hub.Follow(streamCtx, s.paths.GatewayLog)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("admin ui listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.blog.Wait()
	return err
}

func (s *Server) appConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"features":  s.cfg.Features,
		"user_name": s.cfg.UserName,
		"app_title": s.cfg.AppTitle,
	})
}
