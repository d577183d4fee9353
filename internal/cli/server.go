package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iq-quiz-service/internal/app"
	"iq-quiz-service/internal/config"
	"iq-quiz-service/internal/infra/memory"
	pginfra "iq-quiz-service/internal/infra/postgres"
	redisinfra "iq-quiz-service/internal/infra/redis"
	transport "iq-quiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.BankLoader
	loader, err = memory.DefaultBankLoader()
	if err != nil {
		return err
	}
	if pool != nil {
		loader = pginfra.NewBankLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var bankRepo app.BankRepository
	if redisClient != nil {
		bankRepo = redisinfra.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		bankRepo = memory.NewBankRepository(loader, bankTTL)
	}

	var sessionStore app.SessionRepository
	if redisClient != nil {
		sessionStore = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessionStore = memory.NewSessionStore()
	}

	// Without Postgres, results live in memory so the dashboard still works.
	var results app.ResultRepository
	var reader app.ResultReader
	if pool != nil {
		repo := pginfra.NewResultRepository(pool)
		results, reader = repo, repo
	} else {
		repo := memory.NewResultRepository()
		results, reader = repo, repo
	}

	service := app.NewSessionService(bankRepo, sessionStore, results, app.SessionConfig{
		BankID: cfg.Bank.ID,
		Grace:  config.TTLDuration(cfg.Quiz.Grace, 2*time.Second),
	})
	dashboard := app.NewDashboardService(reader, 50)

	wsHandler := transport.NewWSHandler(service)
	dashboardHandler := transport.NewDashboardHandler(dashboard)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/api/results", dashboardHandler.ServeResults)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting iq quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
