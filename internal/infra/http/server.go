package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"certmanager/internal/config"
	"certmanager/internal/infra/db"
	"certmanager/internal/infra/evidencefs"
	"certmanager/internal/infra/orphans"
	"certmanager/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine
	log   logrus.FieldLogger

	catalog   *usecase.CatalogService
	dashboard *usecase.DashboardService
	textlogs  *usecase.TextLogService
	evidence  *usecase.EvidenceService

	closers []func() error
}

func NewServer(cfg config.Config, store *db.Store, log logrus.FieldLogger) *Server {
	s := &Server{cfg: cfg, store: store, log: orDiscard(log)}
	s.r = newEngine(s.log)
	s.initDeps()
	s.routes()
	return s
}

type ServerDeps struct {
	Store     *db.Store
	Catalog   *usecase.CatalogService
	Dashboard *usecase.DashboardService
	TextLogs  *usecase.TextLogService
	Evidence  *usecase.EvidenceService
	Logger    logrus.FieldLogger
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	s := &Server{
		cfg:       cfg,
		store:     deps.Store,
		log:       orDiscard(deps.Logger),
		catalog:   deps.Catalog,
		dashboard: deps.Dashboard,
		textlogs:  deps.TextLogs,
		evidence:  deps.Evidence,
	}
	s.r = newEngine(s.log)
	s.routes()
	return s
}

func newEngine(log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	return r
}

func (s *Server) initDeps() {
	if s.store == nil || s.store.DB == nil {
		return
	}
	controls := db.NewControlRepository(s.store.DB)
	s.catalog = usecase.NewCatalogService(controls, s.log)
	s.dashboard = usecase.NewDashboardService(controls)
	s.textlogs = usecase.NewTextLogService(db.NewTextLogRepository(s.store.DB), nil)
	s.evidence = usecase.NewEvidenceService(
		db.NewEvidenceRepository(s.store.DB),
		evidencefs.NewOS(s.cfg.UploadDir),
		s.orphanSink(),
		nil,
		s.log,
	)
}

// orphanSink writes to the redis list when configured, falling back to the log.
func (s *Server) orphanSink() usecase.OrphanSink {
	logSink := orphans.NewLogSink(s.log)
	if s.cfg.RedisAddr == "" {
		return logSink
	}
	redisSink, err := orphans.NewRedisSink(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, s.cfg.OrphanListKey)
	if err != nil {
		s.log.WithError(err).Warn("redis orphan sink unavailable; using log sink")
		return logSink
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisSink.Ping(pingCtx); err != nil {
		s.log.WithError(err).WithField("addr", s.cfg.RedisAddr).Warn("redis orphan sink unreachable; using log sink")
		_ = redisSink.Close()
		return logSink
	}
	s.closers = append(s.closers, redisSink.Close)
	return orphans.Fallback{Primary: redisSink, Secondary: logSink}
}

func (s *Server) routes() {
	s.r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	s.r.GET("/healthz", func(c *gin.Context) {
		mode := "no-db"
		if s.store != nil && s.store.DB != nil {
			mode = s.store.Dialect
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	})

	s.r.GET("/controls", s.handleListControls)
	s.r.GET("/controls/:id", s.handleGetControl)
	s.r.PATCH("/controls/:id", s.handleUpdateControl)
	s.r.GET("/dashboard", s.handleDashboard)

	// On these routes :id carries the requirement id; gin requires one
	// wildcard name per path segment.
	s.r.POST("/controls/:id/textlog", s.handleAddTextLog)
	s.r.GET("/controls/:id/textlog", s.handleListTextLog)
	s.r.DELETE("/textlog/:id", s.handleDeleteTextLog)

	s.r.POST("/controls/:id/evidence", s.handleUploadEvidence)
	s.r.GET("/controls/:id/evidence", s.handleListEvidence)
	s.r.DELETE("/evidence/:id", s.handleDeleteEvidence)

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
}

// Handler is the gin engine wrapped with the configured CORS policy.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.r)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.cfg.HTTPAddr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down http server")
	err := srv.Shutdown(shutdownCtx)
	s.close()
	return err
}

func (s *Server) close() {
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			s.log.WithError(err).Warn("close dependency")
		}
	}
	s.closers = nil
}

func orDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log != nil {
		return log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
