package cli

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"safelearn-service/internal/app"
	"safelearn-service/internal/auth"
	"safelearn-service/internal/config"
	"safelearn-service/internal/domain"
	"safelearn-service/internal/email"
	"safelearn-service/internal/infra/memory"
	"safelearn-service/internal/infra/oss"
	pgstore "safelearn-service/internal/infra/postgres"
	redisstore "safelearn-service/internal/infra/redis"
	transport "safelearn-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the learning service",
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

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	var bunDB *bun.DB
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		bunDB = bun.NewDB(sqldb, pgdialect.New())
		defer bunDB.Close()
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(seedBanks())
	if pool != nil {
		loader = pgstore.NewBankLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var banks app.BankRepository
	if redisClient != nil {
		banks = redisstore.NewBankRepository(redisClient, loader, quizTTL)
	} else {
		banks = memory.NewBankRepository(loader, quizTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var users app.UserRepository
	var profiles app.ProfileRepository
	if bunDB != nil {
		repo := pgstore.NewUserRepository(bunDB)
		users, profiles = repo, repo
	} else {
		store := memory.NewUserStore()
		users, profiles = store, store
	}

	var denied app.DenyList
	var recovery app.RecoveryStore
	if redisClient != nil {
		denied = redisstore.NewDenyList(redisClient)
		recovery = redisstore.NewRecoveryStore(redisClient)
	} else {
		denied = memory.NewDenyList()
		recovery = memory.NewRecoveryStore()
	}

	var objects app.ObjectStore
	if cfg.OSS.Endpoint != "" {
		store, err := oss.NewAvatarStore(oss.Config{
			Endpoint:   cfg.OSS.Endpoint,
			AccessKey:  cfg.OSS.AccessKey,
			SecretKey:  cfg.OSS.SecretKey,
			Bucket:     cfg.OSS.Bucket,
			PublicBase: cfg.OSS.PublicBase,
		})
		if err != nil {
			return err
		}
		objects = store
	} else {
		objects = memory.NewObjectStore("http://localhost:" + finalPort + "/static")
	}

	var mailer app.Mailer = email.NewLogMailer(logger)
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPMailer(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, logger)
	}

	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)
	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, tokenTTL)
	if err != nil {
		return err
	}
	verifier := auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)

	hub := app.NewLeaderboardHub()
	authService := app.NewAuthService(users, profiles, tokens, denied, recovery, mailer, verifier, logger)
	profileService := app.NewProfileService(profiles, objects, logger)
	quizService := app.NewQuizService(sessions, banks, profiles, hub, logger)

	mux := transport.NewRouter(
		transport.NewAuthHandler(authService, cfg.SMTP.ResetURL),
		transport.NewProfileHandler(profileService, authService),
		transport.NewQuizHandler(quizService),
		transport.NewWSHandler(hub, logger),
		authService,
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting safelearn service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedBanks provides the built-in preparedness quiz so the service works
// without a database; swap in Postgres-backed banks in production.
func seedBanks() map[string]domain.QuestionBank {
	return map[string]domain.QuestionBank{
		"disaster-basics": {
			ID:    "disaster-basics",
			Title: "Disaster Preparedness Basics",
			Questions: []domain.QuizQuestion{
				{
					ID:     1,
					Prompt: "What should you do first during an earthquake?",
					Options: []string{
						"Run outside immediately",
						"Drop, Cover, and Hold On",
						"Stand in a doorway",
						"Hide under a table only",
					},
					CorrectIndex: 1,
					Explanation:  "Drop to your hands and knees, take cover under a sturdy table, and hold on until shaking stops.",
				},
				{
					ID:     2,
					Prompt: "How much water should you store per person per day for emergency preparedness?",
					Options: []string{
						"1 liter",
						"2 liters",
						"4 liters",
						"6 liters",
					},
					CorrectIndex: 2,
					Explanation:  "Store at least 4 liters (1 gallon) of water per person per day for drinking, cooking, and hygiene.",
				},
				{
					ID:     3,
					Prompt: "What is the emergency number in most countries?",
					Options: []string{
						"911",
						"999",
						"112",
						"All of the above",
					},
					CorrectIndex: 3,
					Explanation:  "Different countries use different emergency numbers: 911 (US), 999 (UK), 112 (EU), but 112 works in many places.",
				},
				{
					ID:     4,
					Prompt: "Which item is most important in a first aid kit?",
					Options: []string{
						"Bandages",
						"Antiseptic wipes",
						"Emergency contact information",
						"Pain relievers",
					},
					CorrectIndex: 2,
					Explanation:  "While all items are important, emergency contact information is crucial for getting professional help quickly.",
				},
				{
					ID:     5,
					Prompt: "How often should you replace the batteries in your smoke detector?",
					Options: []string{
						"Every month",
						"Every 6 months",
						"Every year",
						"Every 2 years",
					},
					CorrectIndex: 2,
					Explanation:  "Smoke detector batteries should be replaced at least once a year, or when the low-battery warning chirps.",
				},
			},
		},
	}
}
