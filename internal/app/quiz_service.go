package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"footy-quiz-service/internal/domain"
)

// LeaderboardLimit caps the global leaderboard view.
const LeaderboardLimit = 50

// defaultQuizLifetime applies when an uploaded quiz sets no expiry.
const defaultQuizLifetime = 24 * time.Hour

// SubmitResult is the outcome of one accepted submission.
type SubmitResult struct {
	domain.ScoreResult
	TotalScore int
}

// QuizService owns quiz publication, listing, scoring and the exactly-once
// submission transaction.
type QuizService struct {
	quizzes     QuizRepository
	store       QuizStore
	invalidator QuizInvalidator
	profiles    ProfileRepository
	leaderboard LeaderboardReader
	broadcaster *LeaderboardBroadcaster
	log         *zap.Logger
	now         func() time.Time
}

func NewQuizService(
	quizzes QuizRepository,
	store QuizStore,
	invalidator QuizInvalidator,
	profiles ProfileRepository,
	leaderboard LeaderboardReader,
	broadcaster *LeaderboardBroadcaster,
	log *zap.Logger,
) *QuizService {
	return &QuizService{
		quizzes:     quizzes,
		store:       store,
		invalidator: invalidator,
		profiles:    profiles,
		leaderboard: leaderboard,
		broadcaster: broadcaster,
		log:         log,
		now:         time.Now,
	}
}

// Publish persists both projections of an uploaded quiz and drops any stale
// cached copy. Quizzes without an expiry default to 24 hours from now.
func (s *QuizService) Publish(ctx context.Context, quiz domain.Quiz) error {
	if quiz.ExpiresAt == 0 {
		quiz.ExpiresAt = s.now().Add(defaultQuizLifetime).UnixMilli()
	}
	if err := s.store.SaveQuiz(ctx, quiz); err != nil {
		return err
	}
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, quiz.QuizID); err != nil {
			// the cache entry will age out on its own TTL
			s.log.Warn("quiz cache invalidation failed",
				zap.String("quiz_id", quiz.QuizID), zap.Error(err))
		}
	}
	s.log.Info("quiz published",
		zap.String("quiz_id", quiz.QuizID),
		zap.Int("questions", len(quiz.Questions)))
	return nil
}

// ListActive returns the public projections of all unexpired quizzes.
func (s *QuizService) ListActive(ctx context.Context) ([]domain.PublicQuiz, error) {
	return s.store.ListActive(ctx, s.now().UnixMilli())
}

// Submit grades the submission and applies it to the user's profile exactly
// once. The profile write is a single optimistic transaction: if the quiz is
// already marked complete the transaction aborts with ErrAlreadyCompleted and
// the score is untouched. Expiry is not re-checked here; an expired quiz
// stays resolvable by id.
func (s *QuizService) Submit(ctx context.Context, userID string, submission domain.Submission) (SubmitResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, submission.QuizID)
	if err != nil {
		return SubmitResult{}, err
	}

	result, err := Score(quiz, submission)
	if err != nil {
		return SubmitResult{}, err
	}

	completedAt := s.now()
	profile, err := s.profiles.Update(ctx, userID, func(p *domain.Profile) error {
		if p.Completed(submission.QuizID) {
			return domain.ErrAlreadyCompleted
		}
		p.Score += result.PointsEarned
		p.CompletedQuizzes[submission.QuizID] = completedAt
		p.Submissions[submission.QuizID] = result
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	s.log.Info("submission accepted",
		zap.String("user_id", userID),
		zap.String("quiz_id", submission.QuizID),
		zap.Int("points", result.PointsEarned),
		zap.Int("total_score", profile.Score))
	s.notifyLeaderboard(ctx)

	return SubmitResult{ScoreResult: result, TotalScore: profile.Score}, nil
}

// Leaderboard returns the global top-50 view, best score first.
func (s *QuizService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	return s.leaderboard.Top(ctx, LeaderboardLimit)
}

// notifyLeaderboard pushes a fresh snapshot to stream subscribers. Best
// effort: a failed read only costs the push, not the submission.
func (s *QuizService) notifyLeaderboard(ctx context.Context) {
	if s.broadcaster == nil {
		return
	}
	entries, err := s.leaderboard.Top(ctx, LeaderboardLimit)
	if err != nil {
		s.log.Warn("leaderboard snapshot for broadcast failed", zap.Error(err))
		return
	}
	s.broadcaster.Publish(entries)
}
