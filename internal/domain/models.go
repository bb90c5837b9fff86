package domain

import "time"

// Identity is a Telegram user whose launch payload passed signature
// verification. Immutable once produced.
type Identity struct {
	TelegramID string
	Username   string
	FirstName  string
}

// DisplayName builds the profile name shown on leaderboards.
func (i Identity) DisplayName() string {
	name := i.FirstName
	if name == "" {
		name = "Player"
	}
	if i.Username != "" {
		name += " (" + i.Username + ")"
	}
	return name
}

// Question carries the answer key and must never leave the secure quiz copy.
type Question struct {
	QuestionID    string   `json:"questionId"`
	Prompt        string   `json:"prompt,omitempty"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Quiz is the secure projection: full question list including answer keys.
type Quiz struct {
	QuizID      string     `json:"quizId"`
	Title       string     `json:"title,omitempty"`
	Questions   []Question `json:"questions"`
	TotalPoints int        `json:"totalPoints,omitempty"` // defaults to 10 per question if zero
	ExpiresAt   int64      `json:"expiresAt"`             // epoch millis
}

// PublicQuiz is the client-facing projection with answers stripped.
type PublicQuiz struct {
	QuizID         string `json:"quizId"`
	Title          string `json:"title,omitempty"`
	TotalQuestions int    `json:"totalQuestions"`
	TotalPoints    int    `json:"totalPoints,omitempty"`
	ExpiresAt      int64  `json:"expiresAt"`
}

// Public derives the answer-free projection of a quiz.
func (q Quiz) Public() PublicQuiz {
	return PublicQuiz{
		QuizID:         q.QuizID,
		Title:          q.Title,
		TotalQuestions: len(q.Questions),
		TotalPoints:    q.TotalPoints,
		ExpiresAt:      q.ExpiresAt,
	}
}

// Answer is a single submitted answer. SelectedOption is nil when the
// client sent an explicit null (skipped question).
type Answer struct {
	QuestionID     string  `json:"questionId"`
	SelectedOption *string `json:"selectedOption"`
}

// Submission models one quiz attempt from a client.
type Submission struct {
	QuizID  string   `json:"quizId"`
	Answers []Answer `json:"answers"`
}

// ScoreResult summarizes a graded submission.
type ScoreResult struct {
	PointsEarned  int `json:"pointsEarned"`
	CorrectCount  int `json:"correctCount"`
	TotalAnswered int `json:"totalAnswered"`
}

// Profile is the per-user document. Score only grows via submissions;
// CompletedQuizzes marks each quiz at most once.
type Profile struct {
	TelegramID       string                 `json:"telegramId"`
	Name             string                 `json:"name"`
	Score            int                    `json:"score"`
	LastLogin        time.Time              `json:"lastLogin"`
	CompletedQuizzes map[string]time.Time   `json:"completedQuizzes,omitempty"`
	Submissions      map[string]ScoreResult `json:"submissions,omitempty"`
}

// NewProfile returns an empty profile for a first-time user.
func NewProfile(telegramID string) Profile {
	return Profile{
		TelegramID:       telegramID,
		CompletedQuizzes: make(map[string]time.Time),
		Submissions:      make(map[string]ScoreResult),
	}
}

// Completed reports whether the user already submitted the given quiz.
func (p Profile) Completed(quizID string) bool {
	_, ok := p.CompletedQuizzes[quizID]
	return ok
}

// LeaderboardEntry is one row of the global top-50 view.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}
