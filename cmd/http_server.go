package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/account"
	accountpg "github.com/campushq/internship-portal/internal/account/postgres"
	"github.com/campushq/internship-portal/internal/application"
	applicationpg "github.com/campushq/internship-portal/internal/application/postgres"
	"github.com/campushq/internship-portal/internal/audit"
	auditpg "github.com/campushq/internship-portal/internal/audit/postgres"
	"github.com/campushq/internship-portal/internal/auth"
	"github.com/campushq/internship-portal/internal/chatbot"
	"github.com/campushq/internship-portal/internal/core/events"
	"github.com/campushq/internship-portal/internal/notifier"
	"github.com/campushq/internship-portal/internal/offer"
	offerpg "github.com/campushq/internship-portal/internal/offer/postgres"
	"github.com/campushq/internship-portal/internal/transport/middleware"
	"github.com/campushq/internship-portal/internal/transport/rest"
	"github.com/campushq/internship-portal/internal/trust"
	"github.com/campushq/internship-portal/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpg.New(gormpg.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	// Event bus and the audit pipeline behind it
	bus := events.NewEventBus(lg)
	auditRepo := auditpg.NewAuditRepository(gormDB)
	auditService := audit.NewService(auditRepo, lg)
	auditService.RegisterSubscriber(bus)
	recorder := audit.NewBusRecorder(bus)

	// Account / OTP gate
	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	mailer := notifier.NewSMTPNotifier(cfg.SMTP, lg)
	evaluator := trust.NewHTTPEvaluator(cfg.Trust, lg)
	detector := account.NewBotDetector(cfg.AntiBot, lg)
	accountRepo := accountpg.NewAccountRepository(gormDB)
	accountService := account.NewService(accountRepo, mailer, evaluator, tokens, detector, recorder,
		cfg.OTP, cfg.Security.BCryptCost, lg)

	// Approval workflow
	offerRepo := offerpg.NewOfferRepository(gormDB)
	offerService := offer.NewService(offerRepo, recorder, lg)
	applicationRepo := applicationpg.NewApplicationRepository(gormDB)
	applicationService := application.NewService(applicationRepo, offerRepo, recorder, lg)

	// Chat command bot
	chatService := chatbot.NewService(offerService, accountService, auditService, lg)

	// Auth middleware resolves tokens against live accounts
	authn := auth.NewMiddleware(tokens, accountLoader{accountService})

	var limiter middleware.Limiter
	if cfg.Redis.Addr != "" {
		limiter = middleware.NewRedisLimiter(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.RouterDeps{
		DB:                 db.DB,
		AuthMiddleware:     authn,
		Limiter:            limiter,
		AccountHandler:     account.NewHandler(accountService),
		OfferHandler:       offer.NewHandler(offerService),
		ApplicationHandler: application.NewHandler(applicationService),
		AuditHandler:       audit.NewHandler(auditService),
		ChatHandler:        chatbot.NewHandler(chatService),
		AllowedOrigins:     splitOrigins(cfg.Server.AllowedOrigins),
		Logger:             lg,
	})

	return &Dependencies{
		Config: cfg,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

// accountLoader adapts the account service to the auth middleware's loader.
type accountLoader struct {
	service *account.Service
}

func (l accountLoader) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	return l.service.GetByID(ctx, id)
}

func splitOrigins(origins string) []string {
	if origins == "" || origins == "*" {
		return nil
	}
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
