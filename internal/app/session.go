package app

import (
	"sync"
	"time"

	"safelearn-service/internal/domain"
)

// Session drives one learner through a fixed question bank. It has exactly
// two states, in progress and completed; completion happens once, on the
// advance past the final question, and only Reset returns the session to
// its initial state.
type Session struct {
	bank domain.QuestionBank
	now  func() time.Time

	mu          sync.Mutex
	current     int
	answers     map[int]int
	completed   bool
	completedAt time.Time
}

func newSession(bank domain.QuestionBank) *Session {
	return newSessionWithClock(bank, time.Now)
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(bank domain.QuestionBank, now func() time.Time) *Session {
	return &Session{
		bank:    bank,
		now:     now,
		answers: make(map[int]int),
	}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(bank domain.QuestionBank) *Session {
	return newSession(bank)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(bank domain.QuestionBank, now func() time.Time) *Session {
	return newSessionWithClock(bank, now)
}

// SelectAnswer records the chosen option for the current question,
// silently replacing any prior choice. An index outside the current
// question's options is a contract violation and is rejected.
func (s *Session) SelectAnswer(optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return domain.ErrSessionCompleted
	}
	if optionIndex < 0 || optionIndex >= len(s.bank.Questions[s.current].Options) {
		return domain.ErrOptionOutOfRange
	}
	s.answers[s.current] = optionIndex
	return nil
}

// Advance moves to the next question, or completes the session when the
// current question is the last one. The current question must have a
// recorded answer.
func (s *Session) Advance() (completed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return false, domain.ErrSessionCompleted
	}
	if _, ok := s.answers[s.current]; !ok {
		return false, domain.ErrUnanswered
	}
	if s.current == len(s.bank.Questions)-1 {
		s.completed = true
		s.completedAt = s.now()
		return true, nil
	}
	s.current++
	return false, nil
}

// Retreat steps back one question. At the first question it is a no-op;
// recorded answers are never cleared by navigation.
func (s *Session) Retreat() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return domain.ErrSessionCompleted
	}
	if s.current > 0 {
		s.current--
	}
	return nil
}

// Reset returns the session to its initial state from either state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = 0
	s.answers = make(map[int]int)
	s.completed = false
	s.completedAt = time.Time{}
}

// Score counts questions whose recorded answer matches the answer key.
// Unanswered questions never count as correct.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked()
}

func (s *Session) scoreLocked() int {
	score := 0
	for i, q := range s.bank.Questions {
		if selected, ok := s.answers[i]; ok && selected == q.CorrectIndex {
			score++
		}
	}
	return score
}

// Percentage is the score as a round-half-up integer percent.
func (s *Session) Percentage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return percentage(s.scoreLocked(), len(s.bank.Questions))
}

func percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return (200*score + total) / (2 * total)
}

// Completed reports whether the learner has advanced past the final question.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// CurrentIndex returns the question pointer, always within [0, len-1].
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SessionView is the wire snapshot of a session's navigable state.
type SessionView struct {
	BankID       string          `json:"bankId"`
	Title        string          `json:"title"`
	CurrentIndex int             `json:"currentIndex"`
	Total        int             `json:"total"`
	Answers      map[int]int     `json:"answers"`
	Completed    bool            `json:"completed"`
	Question     RedactedQuestion `json:"question"`
}

// RedactedQuestion is a question with the answer key and explanation
// stripped, safe to hand to a client mid-session.
type RedactedQuestion struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// View snapshots the session for transport.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[int]int, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	q := s.bank.Questions[s.current]
	return SessionView{
		BankID:       s.bank.ID,
		Title:        s.bank.Title,
		CurrentIndex: s.current,
		Total:        len(s.bank.Questions),
		Answers:      answers,
		Completed:    s.completed,
		Question: RedactedQuestion{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Options: append([]string(nil), q.Options...),
		},
	}
}

// Result builds the post-completion review: score, percentage, and the
// per-question breakdown including explanations.
func (s *Session) Result() domain.SessionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	review := make([]domain.QuestionReview, 0, len(s.bank.Questions))
	for i, q := range s.bank.Questions {
		selected, ok := s.answers[i]
		if !ok {
			selected = -1
		}
		review = append(review, domain.QuestionReview{
			Question: q,
			Selected: selected,
			Correct:  ok && selected == q.CorrectIndex,
		})
	}
	score := s.scoreLocked()
	return domain.SessionResult{
		BankID:     s.bank.ID,
		Score:      score,
		Total:      len(s.bank.Questions),
		Percentage: percentage(score, len(s.bank.Questions)),
		Review:     review,
	}
}
