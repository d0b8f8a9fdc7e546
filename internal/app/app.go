// Package app はサブコマンドの解析と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/api/option"

	"github.com/hitoshi/wardrobe/internal/auth"
	"github.com/hitoshi/wardrobe/internal/calendar"
	"github.com/hitoshi/wardrobe/internal/config"
	"github.com/hitoshi/wardrobe/internal/database"
	"github.com/hitoshi/wardrobe/internal/handler"
	"github.com/hitoshi/wardrobe/internal/logger"
	"github.com/hitoshi/wardrobe/internal/metrics"
	"github.com/hitoshi/wardrobe/internal/middleware"
	"github.com/hitoshi/wardrobe/internal/outfit"
	"github.com/hitoshi/wardrobe/internal/recommend"
	"github.com/hitoshi/wardrobe/internal/repository"
	"github.com/hitoshi/wardrobe/internal/security"
	"github.com/hitoshi/wardrobe/internal/user"
	"github.com/hitoshi/wardrobe/internal/wardrobe"
	"github.com/hitoshi/wardrobe/internal/weather"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("timezone", cfg.Timezone.String()),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. 依存関係の構築
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router, cleanup, err := buildRouter(context.Background(), cfg, db, reg)
	if err != nil {
		return err
	}
	defer cleanup()

	// 3. HTTPサーバーの起動
	// 生成は生成モデル呼び出しを含むためWriteTimeoutを長めにとる
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serverErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// buildRouter はリポジトリ・ドメインサービス・外部APIクライアントを組み立て、ルーターを返す。
// 返されたcleanupはシャットダウン時に呼び出す。
func buildRouter(ctx context.Context, cfg *config.Config, db *sql.DB, reg *prometheus.Registry) (http.Handler, func(), error) {
	log := slog.Default()

	// リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	clothingRepo := repository.NewPostgresClothingRepo(db)
	outfitRepo := repository.NewPostgresOutfitRepo(db)

	// セキュリティ・メトリクス
	guard := security.NewSSRFGuard()
	collector := metrics.NewCollector(reg)

	// 認証
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	authService := auth.NewService(oauthProvider, userRepo, auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL))

	// 外部API
	weatherClient := weather.NewClient(guard.NewSafeClient(cfg.WeatherTimeout), log, cfg.WeatherBaseURL, cfg.WeatherAPIKey)

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	generator := recommend.NewGeminiGenerator(genaiClient, cfg.GeminiModel)

	syncer := calendar.NewSyncer(calendar.NewGoogleEventsFactory(calendar.GoogleEventsConfig{
		OAuth2Config: oauthProvider.OAuth2Config(),
		Timeout:      cfg.CalendarTimeout,
	}), log)

	// ドメインサービス
	clothingService := wardrobe.NewService(clothingRepo, security.NewLabelSanitizer(), guard)
	planner := outfit.NewPlanner(clothingRepo, outfitRepo, syncer, collector, log, cfg.Timezone)
	recommender := recommend.NewService(clothingRepo, weatherClient, generator, collector, log, cfg.Timezone)
	userService := user.NewService(userRepo)

	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitGenerate))

	router := handler.NewRouter(&handler.RouterDeps{
		HealthChecker:      db,
		Authenticator:      authService,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        rateLimiter,
		Logger:             log,
		Metrics:            collector,
		Gatherer:           reg,

		AuthService:     authService,
		ClothingService: clothingService,
		OutfitService:   handler.NewOutfitServiceAdapter(planner, recommender),
		UserService:     userService,
	})

	cleanup := func() {
		rateLimiter.Stop()
		if err := genaiClient.Close(); err != nil {
			slog.Warn("failed to close gemini client", slog.String("error", err.Error()))
		}
	}
	return router, cleanup, nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
