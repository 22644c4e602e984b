package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"safelearn-service/internal/domain"
)

// UserModel is the bun mapping for the credentials table.
type UserModel struct {
	bun.BaseModel `bun:"table:users"`

	ID           string    `bun:"id,pk"`
	Email        string    `bun:"email,notnull,unique"`
	FullName     string    `bun:"full_name,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	GoogleID     string    `bun:"google_id,nullzero"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// ProfileModel mirrors the profiles record the dashboard reads.
type ProfileModel struct {
	bun.BaseModel `bun:"table:profiles"`

	UserID       string    `bun:"user_id,pk"`
	FullName     string    `bun:"full_name,notnull"`
	Email        string    `bun:"email,notnull"`
	AvatarURL    string    `bun:"avatar_url"`
	TotalScore   int       `bun:"total_score,notnull"`
	Streak       int       `bun:"streak,notnull"`
	Badges       int       `bun:"badges,notnull"`
	QuizzesTaken int       `bun:"quizzes_taken,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// UserRepository implements both the credential store and the profile
// record store over the users and profiles tables.
type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	model := &UserModel{
		ID:           user.ID,
		Email:        user.Email,
		FullName:     user.FullName,
		PasswordHash: user.PasswordHash,
		GoogleID:     user.GoogleID,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) ByID(ctx context.Context, id string) (domain.User, error) {
	return r.findUser(ctx, "id = ?", id)
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findUser(ctx, "email = ?", email)
}

func (r *UserRepository) ByGoogleID(ctx context.Context, googleID string) (domain.User, error) {
	return r.findUser(ctx, "google_id = ?", googleID)
}

func (r *UserRepository) findUser(ctx context.Context, where string, arg interface{}) (domain.User, error) {
	model := new(UserModel)
	err := r.db.NewSelect().Model(model).Where(where, arg).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return domain.User{
		ID:           model.ID,
		Email:        model.Email,
		FullName:     model.FullName,
		PasswordHash: model.PasswordHash,
		GoogleID:     model.GoogleID,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}, nil
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	res, err := r.db.NewUpdate().
		Model((*UserModel)(nil)).
		Set("password_hash = ?", hash).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireAffected(res)
}

func (r *UserRepository) CreateProfile(ctx context.Context, profile domain.UserProfile) error {
	model := &ProfileModel{
		UserID:       profile.UserID,
		FullName:     profile.FullName,
		Email:        profile.Email,
		AvatarURL:    profile.AvatarURL,
		TotalScore:   profile.TotalScore,
		Streak:       profile.Streak,
		Badges:       profile.Badges,
		QuizzesTaken: profile.QuizzesTaken,
		UpdatedAt:    profile.UpdatedAt,
	}
	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *UserRepository) FetchProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	model := new(ProfileModel)
	err := r.db.NewSelect().Model(model).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProfile{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("select profile: %w", err)
	}
	return profileFromModel(model), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) error {
	q := r.db.NewUpdate().
		Model((*ProfileModel)(nil)).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID)
	if update.FullName != nil {
		q = q.Set("full_name = ?", *update.FullName)
	}
	if update.AvatarURL != nil {
		q = q.Set("avatar_url = ?", *update.AvatarURL)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireAffected(res)
}

func (r *UserRepository) RecordQuizResult(ctx context.Context, userID string, points, correct, total int) (domain.UserProfile, error) {
	badge := 0
	if correct == total {
		badge = 1
	}
	res, err := r.db.NewUpdate().
		Model((*ProfileModel)(nil)).
		Set("total_score = total_score + ?", points).
		Set("quizzes_taken = quizzes_taken + 1").
		Set("badges = badges + ?", badge).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("record quiz result: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return domain.UserProfile{}, err
	}
	return r.FetchProfile(ctx, userID)
}

func (r *UserRepository) TopProfiles(ctx context.Context, limit int) ([]domain.UserProfile, error) {
	var models []ProfileModel
	err := r.db.NewSelect().
		Model(&models).
		OrderExpr("total_score DESC, full_name ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	profiles := make([]domain.UserProfile, 0, len(models))
	for i := range models {
		profiles = append(profiles, profileFromModel(&models[i]))
	}
	return profiles, nil
}

func profileFromModel(model *ProfileModel) domain.UserProfile {
	return domain.UserProfile{
		UserID:       model.UserID,
		FullName:     model.FullName,
		Email:        model.Email,
		AvatarURL:    model.AvatarURL,
		TotalScore:   model.TotalScore,
		Streak:       model.Streak,
		Badges:       model.Badges,
		QuizzesTaken: model.QuizzesTaken,
		UpdatedAt:    model.UpdatedAt,
	}
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
