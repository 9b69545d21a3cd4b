package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/config"
	"github.com/songbird/internal/db"
	"github.com/songbird/internal/logging"
	"github.com/songbird/internal/router"
	"github.com/songbird/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    config.AppConfig
	logger *zap.Logger
	noSeed bool
)

var rootCmd = &cobra.Command{
	Use:   "songbird",
	Short: "Songbird - a single-author blog with reader analytics",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		// 初始化数据库
		if err := db.Init(cfg.DatabasePath); err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert placeholder articles and the about page into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := service.Seed(db.DB)
		if err != nil {
			return err
		}
		logger.Info("seed finished", zap.Int("articles", result.Articles), zap.Bool("about", result.About))
		return nil
	},
}

func runServer(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !noSeed {
		result, err := service.Seed(db.DB)
		if err != nil {
			return err
		}
		if result.Articles > 0 || result.About {
			logger.Info("database seeded", zap.Int("articles", result.Articles), zap.Bool("about", result.About))
		}
	}

	gin.SetMode(cfg.GinMode)
	engine, err := router.SetupRouter(db.DB, router.OptionsFromConfig(cfg, logger))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().BoolVar(&noSeed, "no-seed", false, "skip seeding an empty database")
	}
	rootCmd.AddCommand(serveCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			_ = logger.Sync()
		}
		os.Exit(1)
	}
	if logger != nil {
		_ = logger.Sync()
	}
}
