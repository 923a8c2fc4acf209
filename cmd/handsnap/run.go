package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/handsnap/internal/app"
	"github.com/ayusman/handsnap/internal/capture"
	"github.com/ayusman/handsnap/internal/config"
	"github.com/ayusman/handsnap/internal/detector"
	"github.com/ayusman/handsnap/internal/hook"
	"github.com/ayusman/handsnap/internal/photo"
	"github.com/ayusman/handsnap/internal/server"
	"github.com/ayusman/handsnap/internal/store"
	"github.com/ayusman/handsnap/internal/tray"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runMain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	photos := photo.NewStore(cfg.OutputDir, logger)
	if err := photos.EnsureDir(); err != nil {
		return err
	}

	hooks := hook.NewManager(cfg.HooksDir, logger)
	if err := hooks.Discover(); err != nil {
		logger.Warn("failed to discover hooks", zap.String("dir", cfg.HooksDir), zap.Error(err))
	}
	dispatcher := hook.NewDispatcher(hooks, hook.NewExecutor(cfg.HookTimeout), logger)
	defer dispatcher.Wait()

	a := app.New(app.Config{
		CameraID:     cfg.CameraID,
		HoldDuration: cfg.HoldDuration,
		FrameDelay:   cfg.FrameDelay,
		Retry: capture.RetryConfig{
			MaxRetries:      cfg.OpenRetries,
			InitialInterval: 250 * time.Millisecond,
			MaxElapsed:      5 * time.Second,
		},
		Detector: newDetector(cfg, logger),
		Photos:   photos,
		Store:    st,
		Hooks:    dispatcher,
		Logger:   logger,
	})
	defer a.Close()

	srv := server.New(server.Config{
		StaticDir: cfg.WebDir,
		Store:     st,
		App:       a,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Run(ctx, cfg.Addr)
	}()

	viewerURL := "http://" + cfg.Addr
	fmt.Printf("\n  handsnap viewer: %s\n\n", viewerURL)

	if startFlag {
		if err := a.Start(ctx); err != nil {
			logger.Error("failed to start camera", zap.Error(err))
		}
	}

	if headlessFlag {
		select {
		case <-ctx.Done():
		case err := <-srvErr:
			return serverError(err)
		}
	} else {
		t := tray.New()
		t.OnToggle(func() {
			if err := a.Toggle(ctx); err != nil {
				logger.Error("failed to start camera", zap.Error(err))
			}
		})
		t.OnOpenViewer(func() {
			if err := openBrowser(viewerURL); err != nil {
				logger.Warn("failed to open browser", zap.Error(err))
			}
		})
		t.OnQuit(stop)

		go followViews(a, t)
		go func() {
			select {
			case <-ctx.Done():
			case err := <-srvErr:
				logger.Error("server stopped", zap.Error(serverError(err)))
				stop()
			}
			t.Quit()
		}()

		// Blocks on the main thread until Quit.
		t.Run()
	}

	logger.Info("shutting down")
	return nil
}

// followViews mirrors the application state into the tray menu.
func followViews(a *app.App, t *tray.Tray) {
	views, cancel := a.Subscribe()
	defer cancel()

	for v := range views {
		t.SetRunning(v.Running)
		t.SetStatus(v.Status)
		if p, ok := a.LastPhoto(); ok {
			t.SetLastPhoto(p.Path)
		}
	}
}

// newDetector prefers the MediaPipe service and falls back to a detector
// that never reports a hand so the preview still works.
func newDetector(cfg *config.Config, logger *zap.Logger) detector.Detector {
	dc := detector.DefaultConfig()
	dc.MinConfidence = cfg.MinConfidence

	mp, err := detector.NewMediaPipeDetector(dc, logger)
	if err != nil {
		logger.Warn("MediaPipe not available, gestures will not be detected", zap.Error(err))
		return detector.NewMockDetector()
	}
	logger.Info("using MediaPipe hand detection")
	return mp
}

func openStore(dbPath string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return store.New(dbPath)
}

func serverError(err error) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("server failed: %w", err)
}
