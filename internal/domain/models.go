package domain

import "time"

// Resource names as exposed by the persistence API.
const (
	ResourceConsoles  = "consoles"
	ResourceExpos     = "expos"
	ResourceQuizzes   = "quizzes"
	ResourceQuestions = "questions"
	ResourcePlayers   = "players"
	ResourceUsers     = "users"
	ResourceResults   = "results"
)

// Resources lists every resource in navigation order.
func Resources() []string {
	return []string{
		ResourceConsoles,
		ResourceExpos,
		ResourceQuizzes,
		ResourceQuestions,
		ResourcePlayers,
		ResourceUsers,
		ResourceResults,
	}
}

// Session is an authenticated admin session.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session has a deadline that lies before now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// QuizResult is one finished quiz run by a player at a console.
type QuizResult struct {
	ID         string    `json:"id"`
	QuizID     string    `json:"quizId"`
	PlayerID   string    `json:"playerId"`
	Score      int       `json:"score"`
	MaxScore   int       `json:"maxScore"`
	FinishedAt time.Time `json:"finishedAt"`
}
