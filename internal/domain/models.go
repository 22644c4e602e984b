package domain

import "time"

// QuizQuestion is a single multiple-choice item. The option index is the
// answer key: CorrectIndex must be a valid index into Options.
type QuizQuestion struct {
	ID           int      `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// QuestionBank is a fixed ordered sequence of questions. Banks are created
// at load time and never mutated afterwards.
type QuestionBank struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

// Validate checks the bank invariants: at least one question, non-empty
// options, and a correct index in range for every question.
func (b QuestionBank) Validate() error {
	if len(b.Questions) == 0 {
		return ErrEmptyBank
	}
	for _, q := range b.Questions {
		if len(q.Options) == 0 {
			return ErrEmptyBank
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return ErrInvalidBank
		}
	}
	return nil
}

// User carries the credential-owning half of an account. Display and game
// state live on UserProfile, mirroring the separate profiles record.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	GoogleID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserProfile is the record-store view of a learner: display fields plus
// the accumulated game state shown on the dashboard.
type UserProfile struct {
	UserID       string    `json:"userId"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	AvatarURL    string    `json:"avatarUrl"`
	TotalScore   int       `json:"totalScore"`
	Streak       int       `json:"streak"`
	Badges       int       `json:"badges"`
	QuizzesTaken int       `json:"quizzesTaken"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfileUpdate is a partial update of the two externally writable profile
// fields. Nil means "leave unchanged".
type ProfileUpdate struct {
	FullName  *string
	AvatarURL *string
}

// QuestionReview pairs a question with the learner's recorded answer for
// the post-completion results view. Selected is -1 when unanswered.
type QuestionReview struct {
	Question QuizQuestion `json:"question"`
	Selected int          `json:"selected"`
	Correct  bool         `json:"correct"`
}

// SessionResult is the derived outcome of a completed quiz session.
type SessionResult struct {
	BankID     string           `json:"bankId"`
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage int              `json:"percentage"`
	Review     []QuestionReview `json:"review"`
}

// LeaderboardEntry is a snapshot-friendly view of a learner's standing.
type LeaderboardEntry struct {
	UserID     string `json:"userId"`
	FullName   string `json:"fullName"`
	AvatarURL  string `json:"avatarUrl"`
	TotalScore int    `json:"totalScore"`
}

// Leaderboard captures the ordered scoreboard shown on the dashboard.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// ModuleProgress is the per-hazard progress block on the dashboard.
type ModuleProgress struct {
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
}
