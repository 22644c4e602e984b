package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"safelearn-service/internal/domain"
)

// PointsPerCorrectAnswer is the profile award for each correct answer in a
// completed quiz.
const PointsPerCorrectAnswer = 10

const leaderboardSize = 10

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis-backed, etc).
type SessionRepository interface {
	GetOrCreate(userID, bankID string, bank domain.QuestionBank) *Session
	Get(userID, bankID string) (*Session, bool)
	Delete(userID, bankID string)
}

// BankRepository loads question-bank content (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

// ProfileRepository is the record store for learner profiles.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile domain.UserProfile) error
	FetchProfile(ctx context.Context, userID string) (domain.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) error
	RecordQuizResult(ctx context.Context, userID string, points, correct, total int) (domain.UserProfile, error)
	TopProfiles(ctx context.Context, limit int) ([]domain.UserProfile, error)
}

// QuizService contains the quiz-session use cases.
type QuizService struct {
	sessions SessionRepository
	banks    BankRepository
	profiles ProfileRepository
	board    *LeaderboardHub
	log      *zap.Logger
}

func NewQuizService(sessions SessionRepository, banks BankRepository, profiles ProfileRepository, board *LeaderboardHub, log *zap.Logger) *QuizService {
	return &QuizService{
		sessions: sessions,
		banks:    banks,
		profiles: profiles,
		board:    board,
		log:      log,
	}
}

// Bank returns the bank with answer keys and explanations stripped.
func (s *QuizService) Bank(ctx context.Context, bankID string) (string, string, []RedactedQuestion, error) {
	bank, err := s.banks.GetBank(ctx, bankID)
	if err != nil {
		return "", "", nil, err
	}
	questions := make([]RedactedQuestion, 0, len(bank.Questions))
	for _, q := range bank.Questions {
		questions = append(questions, RedactedQuestion{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Options: append([]string(nil), q.Options...),
		})
	}
	return bank.ID, bank.Title, questions, nil
}

// Open starts a fresh session for the learner over the given bank. An
// already open session is reset, matching the widget's open-means-restart
// lifecycle.
func (s *QuizService) Open(ctx context.Context, userID, bankID string) (SessionView, error) {
	bank, err := s.banks.GetBank(ctx, bankID)
	if err != nil {
		return SessionView{}, err
	}
	if err := bank.Validate(); err != nil {
		return SessionView{}, fmt.Errorf("bank %s: %w", bankID, err)
	}

	session := s.sessions.GetOrCreate(userID, bankID, bank)
	session.Reset()
	return session.View(), nil
}

// SelectAnswer records the learner's choice for the current question.
func (s *QuizService) SelectAnswer(ctx context.Context, userID, bankID string, optionIndex int) (SessionView, error) {
	session, ok := s.sessions.Get(userID, bankID)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	if err := session.SelectAnswer(optionIndex); err != nil {
		return SessionView{}, err
	}
	return session.View(), nil
}

// Advance moves the session forward. On the transition to completed it
// awards points to the learner's profile and broadcasts the refreshed
// leaderboard.
func (s *QuizService) Advance(ctx context.Context, userID, bankID string) (SessionView, error) {
	session, ok := s.sessions.Get(userID, bankID)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	completed, err := session.Advance()
	if err != nil {
		return SessionView{}, err
	}
	if completed {
		s.recordCompletion(ctx, userID, session)
	}
	return session.View(), nil
}

// Retreat steps the session back one question.
func (s *QuizService) Retreat(ctx context.Context, userID, bankID string) (SessionView, error) {
	session, ok := s.sessions.Get(userID, bankID)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	if err := session.Retreat(); err != nil {
		return SessionView{}, err
	}
	return session.View(), nil
}

// Reset restarts the learner's session from either state.
func (s *QuizService) Reset(ctx context.Context, userID, bankID string) (SessionView, error) {
	session, ok := s.sessions.Get(userID, bankID)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	session.Reset()
	return session.View(), nil
}

// Close discards the learner's session.
func (s *QuizService) Close(ctx context.Context, userID, bankID string) {
	s.sessions.Delete(userID, bankID)
}

// Results returns the score breakdown for the learner's session.
func (s *QuizService) Results(ctx context.Context, userID, bankID string) (domain.SessionResult, error) {
	session, ok := s.sessions.Get(userID, bankID)
	if !ok {
		return domain.SessionResult{}, domain.ErrSessionNotFound
	}
	return session.Result(), nil
}

// Leaderboard builds the current standings snapshot from the record store.
func (s *QuizService) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	profiles, err := s.profiles.TopProfiles(ctx, leaderboardSize)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(profiles))
	var updatedAt time.Time
	for _, p := range profiles {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:     p.UserID,
			FullName:   p.FullName,
			AvatarURL:  p.AvatarURL,
			TotalScore: p.TotalScore,
		})
		if p.UpdatedAt.After(updatedAt) {
			updatedAt = p.UpdatedAt
		}
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: updatedAt}, nil
}

// recordCompletion applies the score to the learner's profile and pushes
// the refreshed leaderboard to subscribers. A record-store failure here is
// logged, not surfaced: the session result itself is already fixed.
func (s *QuizService) recordCompletion(ctx context.Context, userID string, session *Session) {
	result := session.Result()
	points := result.Score * PointsPerCorrectAnswer

	if _, err := s.profiles.RecordQuizResult(ctx, userID, points, result.Score, result.Total); err != nil {
		s.log.Warn("record quiz result",
			zap.String("user_id", userID),
			zap.String("bank_id", result.BankID),
			zap.Error(err))
		return
	}

	lb, err := s.Leaderboard(ctx)
	if err != nil {
		s.log.Warn("leaderboard snapshot", zap.Error(err))
		return
	}
	s.board.Broadcast(lb)
}
