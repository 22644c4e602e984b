package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"safelearn-service/internal/app"
	"safelearn-service/internal/auth"
	"safelearn-service/internal/domain"
	"safelearn-service/internal/email"
	pgstore "safelearn-service/internal/infra/postgres"
	pgmigrations "safelearn-service/internal/infra/postgres/migrations"
	infraredis "safelearn-service/internal/infra/redis"
)

type stubVerifier struct{}

func (stubVerifier) Verify(string) (auth.GoogleIdentity, error) {
	return auth.GoogleIdentity{}, domain.ErrInvalidToken
}

func TestQuizCompletionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	bunDB := seedBank(t, ctx, pgURL, sampleBank())
	defer bunDB.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	logger := zap.NewNop()
	users := pgstore.NewUserRepository(bunDB)
	banks := infraredis.NewBankRepository(redisClient, pgstore.NewBankLoader(pool), 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)

	tokens, err := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	authService := app.NewAuthService(users, users, tokens,
		infraredis.NewDenyList(redisClient), infraredis.NewRecoveryStore(redisClient),
		email.NewLogMailer(logger), stubVerifier{}, logger)

	hub := app.NewLeaderboardHub()
	quizService := app.NewQuizService(sessions, banks, users, hub, logger)

	accessToken, session, err := authService.SignUp(ctx, app.SignUpInput{
		FullName:        "Alice Rivera",
		Email:           "alice@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := authService.Session(ctx, accessToken); err != nil {
		t.Fatalf("resolve session: %v", err)
	}

	if _, err := quizService.Open(ctx, session.UserID, "bank-1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := quizService.SelectAnswer(ctx, session.UserID, "bank-1", 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	view, err := quizService.Advance(ctx, session.UserID, "bank-1")
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !view.Completed {
		t.Fatalf("expected completion on a one-question bank")
	}

	// The award is visible through the Postgres profile record.
	profile, err := users.FetchProfile(ctx, session.UserID)
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if profile.TotalScore != app.PointsPerCorrectAnswer || profile.QuizzesTaken != 1 || profile.Badges != 1 {
		t.Fatalf("unexpected profile after completion: %+v", profile)
	}

	lb, err := quizService.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Entries) != 1 || lb.Entries[0].UserID != session.UserID {
		t.Fatalf("expected the learner on the board, got %+v", lb.Entries)
	}
}

func TestPasswordResetEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	bunDB := seedBank(t, ctx, pgURL, sampleBank())
	defer bunDB.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	logger := zap.NewNop()
	users := pgstore.NewUserRepository(bunDB)
	recovery := infraredis.NewRecoveryStore(redisClient)
	tokens, err := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	mailer := &captureMailer{}
	authService := app.NewAuthService(users, users, tokens,
		infraredis.NewDenyList(redisClient), recovery, mailer, stubVerifier{}, logger)

	if _, _, err := authService.SignUp(ctx, app.SignUpInput{
		FullName:        "Alice Rivera",
		Email:           "alice@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if err := authService.RequestPasswordReset(ctx, "alice@example.com", "https://app.example.com/reset"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if len(mailer.links) != 1 {
		t.Fatalf("expected one reset mail, got %d", len(mailer.links))
	}
	token := strings.TrimPrefix(mailer.links[0], "https://app.example.com/reset?token=")

	if err := authService.ConfirmPasswordReset(ctx, app.ResetConfirmInput{
		Token:           token,
		Password:        "new-secret",
		ConfirmPassword: "new-secret",
	}); err != nil {
		t.Fatalf("confirm reset: %v", err)
	}

	if _, _, err := authService.SignIn(ctx, app.SignInInput{Email: "alice@example.com", Password: "new-secret"}); err != nil {
		t.Fatalf("sign in with new password: %v", err)
	}
}

type captureMailer struct{ links []string }

func (m *captureMailer) SendPasswordReset(_ context.Context, _, resetLink string) error {
	m.links = append(m.links, resetLink)
	return nil
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "safelearn", "POSTGRES_PASSWORD": "safelearnpass", "POSTGRES_DB": "safelearndb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://safelearn:safelearnpass@%s:%s/safelearndb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

// seedBank runs migrations and inserts the bank, returning an open bun DB
// for the repositories under test.
func seedBank(t *testing.T, ctx context.Context, dsn string, bank domain.QuestionBank) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(bank)
	if err != nil {
		t.Fatalf("marshal bank: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO question_banks (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, bank.ID, string(data)); err != nil {
		t.Fatalf("insert bank: %v", err)
	}
	return db
}

func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{
		ID:    "bank-1",
		Title: "Preparedness Basics",
		Questions: []domain.QuizQuestion{
			{
				ID:           1,
				Prompt:       "What should you do first during an earthquake?",
				Options:      []string{"Run outside", "Drop, Cover, and Hold On", "Stand in a doorway"},
				CorrectIndex: 1,
				Explanation:  "Take cover under a sturdy table and hold on until the shaking stops.",
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
