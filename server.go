package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meliem/meliem.github.io/internal/config"
	"github.com/meliem/meliem.github.io/internal/contact"
	"github.com/meliem/meliem.github.io/internal/content"
	"github.com/meliem/meliem.github.io/internal/logging"
	"github.com/meliem/meliem.github.io/internal/store"
	"github.com/meliem/meliem.github.io/internal/swcache"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// app holds everything the handlers share.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	site    *content.Holder
	contact *contact.Service
	cache   *swcache.Cache
	admin   *adminSession
	engine  *gin.Engine

	// visits tracks in-flight background visit inserts.
	visits sync.WaitGroup
}

func newApp(cfg *config.Config, logger *zap.Logger, st *store.Store, site *content.Holder) (*app, error) {
	gin.SetMode(cfg.Server.Mode)

	tmpl, err := loadTemplates(content.NewRenderer())
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	var mailer contact.Mailer
	if cfg.MailConfigured() {
		mailer = &contact.SMTPMailer{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			User:     cfg.Mail.User,
			Password: cfg.Mail.Password,
			To:       cfg.Mail.To,
		}
	} else {
		logger.Warn("SMTP credentials not configured, contact messages are stored only")
	}

	admin, err := newAdminSession(cfg.Admin, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		site:    site,
		contact: contact.NewService(st, mailer, logger),
		admin:   admin,
	}

	r := gin.New()
	r.Use(logging.Middleware(logger), logging.Recovery(logger))
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(staticFiles()))

	a.setupRoutes(r)
	a.setupAdminRoutes(r)
	a.engine = r

	a.cache = swcache.New(r, swcache.Options{
		Version:           cfg.Cache.Version,
		Precache:          cfg.Cache.Precache,
		RevalidateTimeout: config.Duration(cfg.Cache.RevalidateTimeout, 10*time.Second),
		MaxEntryBytes:     cfg.Cache.MaxEntryBytes,
		Logger:            logger.Named("cache"),
	})
	return a, nil
}

// handler is the root HTTP handler: the router, behind the asset cache when
// it is enabled.
func (a *app) handler() http.Handler {
	if a.cfg.Cache.Enabled {
		return a.cache
	}
	return a.engine
}

// warmCache precaches core assets and drops older cache generations.
func (a *app) warmCache(ctx context.Context) {
	if !a.cfg.Cache.Enabled {
		return
	}
	if err := a.cache.Install(ctx); err != nil {
		a.logger.Warn("Some core assets were not precached", zap.Error(err))
	}
	a.cache.Activate()
}

// onContentReload drops cached pages and fragments, which embed the old
// content, and re-fetches the core assets.
func (a *app) onContentReload(*content.Site) {
	if !a.cfg.Cache.Enabled {
		return
	}
	a.cache.ClearRuntime()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.cache.Refresh(ctx); err != nil {
		a.logger.Warn("Cache refresh after reload incomplete", zap.Error(err))
	}
}

// runJanitor deletes visit records past the retention window, once at start
// and then every cleanup interval.
func (a *app) runJanitor(ctx context.Context) error {
	interval := config.Duration(a.cfg.Privacy.CleanupInterval, 24*time.Hour)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.cleanupOldVisitorData(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Close waits for background work.
func (a *app) Close() {
	a.cache.Close()
	a.visits.Wait()
}

func loadSite(path string) (*content.Site, error) {
	if path == "" {
		return defaultSite(), nil
	}
	return content.Load(path)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	site, err := loadSite(cfg.Content.Path)
	if err != nil {
		return err
	}
	holder := content.NewHolder(site)

	a, err := newApp(cfg, logger, st, holder)
	if err != nil {
		return err
	}
	defer a.Close()
	a.warmCache(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second))
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return a.runJanitor(gctx) })

	if cfg.Content.Path != "" && (cfg.Content.Watch || cfg.Server.Mode == gin.DebugMode) {
		w := content.NewWatcher(cfg.Content.Path, holder, logger.Named("content"), a.onContentReload)
		g.Go(func() error {
			if err := w.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("Content watcher stopped", zap.Error(err))
			}
			return nil
		})
	}

	return g.Wait()
}
