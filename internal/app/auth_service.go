package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"safelearn-service/internal/auth"
	"safelearn-service/internal/domain"
	"safelearn-service/internal/validate"
)

// UserRepository is the credential store behind the identity provider.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	ByID(ctx context.Context, id string) (domain.User, error)
	ByEmail(ctx context.Context, email string) (domain.User, error)
	ByGoogleID(ctx context.Context, googleID string) (domain.User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
}

// DenyList revokes signed-out tokens until their natural expiry.
type DenyList interface {
	Deny(ctx context.Context, tokenID string, ttl time.Duration) error
	IsDenied(ctx context.Context, tokenID string) (bool, error)
}

// RecoveryStore holds one-time password-recovery tokens.
type RecoveryStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (string, error)
}

// Mailer dispatches the transactional reset email.
type Mailer interface {
	SendPasswordReset(ctx context.Context, recipientEmail, resetLink string) error
}

// IdentityVerifier validates a federated provider's ID token.
type IdentityVerifier interface {
	Verify(idToken string) (auth.GoogleIdentity, error)
}

// SignUpInput carries the sign-up form fields. Validation mirrors the
// client-side rules so a misbehaving client cannot bypass them.
type SignUpInput struct {
	FullName        string `json:"fullName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// SignInInput carries the sign-in form fields.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ResetConfirmInput consumes a recovery token and sets a new password.
type ResetConfirmInput struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// SessionInfo is the authenticated-user context handed to downstream
// components.
type SessionInfo struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

const recoveryTokenTTL = time.Hour

// AuthService implements the identity-provider operations: credential
// sign-up/sign-in, federated sign-in, sign-out, and the password-reset
// round trip.
type AuthService struct {
	users    UserRepository
	profiles ProfileRepository
	tokens   *auth.TokenManager
	denied   DenyList
	recovery RecoveryStore
	mailer   Mailer
	google   IdentityVerifier
	log      *zap.Logger
}

func NewAuthService(users UserRepository, profiles ProfileRepository, tokens *auth.TokenManager, denied DenyList, recovery RecoveryStore, mailer Mailer, google IdentityVerifier, log *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		profiles: profiles,
		tokens:   tokens,
		denied:   denied,
		recovery: recovery,
		mailer:   mailer,
		google:   google,
		log:      log,
	}
}

// SignUp validates the form, creates the user with a bcrypt hash, creates
// the profile record, and signs the new user in.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (string, SessionInfo, error) {
	if err := validate.Struct(input); err != nil {
		return "", SessionInfo{}, err
	}

	if _, err := s.users.ByEmail(ctx, input.Email); err == nil {
		return "", SessionInfo{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return "", SessionInfo{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return "", SessionInfo{}, err
	}

	now := time.Now()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", SessionInfo{}, fmt.Errorf("create user: %w", err)
	}
	if err := s.profiles.CreateProfile(ctx, domain.UserProfile{
		UserID:    user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		UpdatedAt: now,
	}); err != nil {
		return "", SessionInfo{}, fmt.Errorf("create profile: %w", err)
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID))
	return s.issue(user)
}

// SignIn verifies the credentials and issues an access token.
func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (string, SessionInfo, error) {
	if err := validate.Struct(input); err != nil {
		return "", SessionInfo{}, err
	}

	user, err := s.users.ByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", SessionInfo{}, domain.ErrInvalidCredentials
		}
		return "", SessionInfo{}, fmt.Errorf("lookup email: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		return "", SessionInfo{}, domain.ErrInvalidCredentials
	}
	return s.issue(user)
}

// SignInWithGoogle verifies a Google ID token, creating the account on
// first sign-in, and issues the same access token as credential sign-in.
func (s *AuthService) SignInWithGoogle(ctx context.Context, idToken string) (string, SessionInfo, error) {
	identity, err := s.google.Verify(idToken)
	if err != nil {
		return "", SessionInfo{}, domain.ErrInvalidToken
	}

	user, err := s.users.ByGoogleID(ctx, identity.Subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.registerGoogleUser(ctx, identity)
	}
	if err != nil {
		return "", SessionInfo{}, err
	}
	return s.issue(user)
}

func (s *AuthService) registerGoogleUser(ctx context.Context, identity auth.GoogleIdentity) (domain.User, error) {
	// A random throwaway password keeps the credential path closed for
	// accounts created through Google.
	hash, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return domain.User{}, err
	}
	now := time.Now()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        identity.Email,
		FullName:     identity.Name,
		PasswordHash: hash,
		GoogleID:     identity.Subject,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("create google user: %w", err)
	}
	if err := s.profiles.CreateProfile(ctx, domain.UserProfile{
		UserID:    user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		UpdatedAt: now,
	}); err != nil {
		return domain.User{}, fmt.Errorf("create google profile: %w", err)
	}
	s.log.Info("google user registered", zap.String("user_id", user.ID))
	return user, nil
}

// SignOut revokes the token until its natural expiry.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.denied.Deny(ctx, claims.ID, ttl)
}

// Session resolves a bearer token into the ambient user context, rejecting
// revoked tokens.
func (s *AuthService) Session(ctx context.Context, token string) (SessionInfo, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return SessionInfo{}, err
	}
	denied, err := s.denied.IsDenied(ctx, claims.ID)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("denylist check: %w", err)
	}
	if denied {
		return SessionInfo{}, domain.ErrInvalidToken
	}
	return SessionInfo{UserID: claims.UserID, Email: claims.Email}, nil
}

// RequestPasswordReset mints a one-time recovery token and mails the reset
// link. Unknown emails are answered identically so the endpoint cannot be
// used to probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, redirectTarget string) error {
	if err := validate.Struct(struct {
		Email string `validate:"required,email"`
	}{Email: email}); err != nil {
		return err
	}

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Info("reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("lookup email: %w", err)
	}

	token := uuid.NewString()
	if err := s.recovery.Save(ctx, token, user.ID, recoveryTokenTTL); err != nil {
		return fmt.Errorf("save recovery token: %w", err)
	}

	link := redirectTarget
	if u, err := url.Parse(redirectTarget); err == nil {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
		link = u.String()
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	s.log.Info("reset email dispatched", zap.String("user_id", user.ID))
	return nil
}

// ConfirmPasswordReset consumes the recovery token and sets the new
// password. Validation happens before the token is spent so a mismatched
// confirmation leaves the token usable for retry.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, input ResetConfirmInput) error {
	if err := validate.Struct(input); err != nil {
		return err
	}

	userID, err := s.recovery.Consume(ctx, input.Token)
	if err != nil {
		return domain.ErrInvalidToken
	}
	return s.setPassword(ctx, userID, input.Password)
}

// UpdatePassword changes the password for a signed-in learner. Empty or
// mismatched fields are rejected before any store is touched.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, newPassword, confirmPassword string) error {
	if newPassword == "" || len(newPassword) < 6 {
		return validate.FieldErrors{"password": "must be at least 6 characters"}
	}
	if newPassword != confirmPassword {
		return domain.ErrPasswordMismatch
	}
	return s.setPassword(ctx, userID, newPassword)
}

func (s *AuthService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	s.log.Info("password updated", zap.String("user_id", userID))
	return nil
}

func (s *AuthService) issue(user domain.User) (string, SessionInfo, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", SessionInfo{}, err
	}
	return token, SessionInfo{UserID: user.ID, Email: user.Email}, nil
}
