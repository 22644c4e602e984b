package domain

import "errors"

var (
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrEmptyBank indicates a bank or question with no options.
	ErrEmptyBank = errors.New("question bank has no content")
	// ErrInvalidBank indicates a correct-answer index out of range.
	ErrInvalidBank = errors.New("question bank has an invalid answer key")
	// ErrSessionNotFound is returned when no quiz session is open for the learner.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionCompleted rejects mutations on a completed session.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrOptionOutOfRange rejects an answer index outside the current question's options.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrUnanswered rejects advancing past a question with no recorded answer.
	ErrUnanswered = errors.New("current question not answered")

	// ErrUserNotFound is returned for lookups of unknown accounts.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken rejects sign-up with an already registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers a failed email/password check.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken covers malformed, expired, or revoked tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrEmptyName rejects a whitespace-only display name before it reaches the record store.
	ErrEmptyName = errors.New("display name must not be empty")
	// ErrPasswordMismatch rejects a password update whose confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
)
