package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"social_board/internal/api"
	"social_board/internal/cache"
	"social_board/internal/logging"
	"social_board/internal/models"
	"social_board/internal/realtime"
	"social_board/internal/repository"
	"social_board/internal/service"
	"social_board/internal/storage"
	"social_board/internal/utils"
	"social_board/internal/visibility"
	"social_board/pkg/config"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          "social_board",
		Short:        "Social board chat server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfgFile)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or ./pkg/config/config.yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfgFile)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logging.Setup(cfg.Log)
			db, err := storage.Open(cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.AutoMigrate(models.All()...); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			slog.Info("database migrated", "driver", cfg.DB.Driver)
			return nil
		},
	})
	return root
}

func runServe(ctx context.Context, cfgFile string) error {
	// 載入應用程式配置
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化資料庫連接
	db, err := storage.Open(cfg.DB)
	if err != nil {
		return err
	}
	// 確保在程序結束時關閉數據庫連接
	defer db.Close()

	// 自動遷移資料庫結構
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	repos := repository.NewRepositories(db)

	// 封鎖名單快取，沒有設定 redis 時直接讀資料庫
	var blockRegistry visibility.Registry
	if cfg.Redis.URL != "" {
		client, err := storage.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		rc := cache.NewRedisCache(client)
		defer rc.Close()
		blockRegistry = cache.NewBlockSets(repos.Block, rc, cfg.Redis.BlockTTL)
		slog.Info("block cache enabled", "ttl", cfg.Redis.BlockTTL)
	}

	services := service.NewServices(repos, blockRegistry, service.SessionOptions{
		Client:       realtime.OptionsFrom(cfg.WebSocket),
		EventTimeout: cfg.WebSocket.EventTimeout,
		VerifyJoin:   cfg.WebSocket.VerifyJoin,
	})
	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// 設置 Gin 路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		r.Use(gin.Logger())
	}
	api.SetupRoutes(r, services, tokens, cfg.WebSocket.AllowedOrigins)

	srv := &http.Server{Addr: cfg.Server.Address, Handler: r}
	// WebSocket 連線被 hijack 後不受 Shutdown 管理，另外關閉
	srv.RegisterOnShutdown(services.Sessions.Shutdown)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
