package app

import (
	"math"

	"footy-quiz-service/internal/domain"
)

// defaultPointsPerQuestion applies when a quiz does not declare totalPoints.
const defaultPointsPerQuestion = 10

// Score grades a submission against the secure quiz copy. Pure and
// deterministic, so it is safe to run speculatively before any store access.
//
// Answers referencing unknown question ids and answers with a nil selection
// are ignored entirely, they count neither as answered nor as wrong.
// Matching is exact and case-sensitive.
func Score(quiz domain.Quiz, submission domain.Submission) (domain.ScoreResult, error) {
	totalQuestions := len(quiz.Questions)
	if totalQuestions == 0 {
		return domain.ScoreResult{}, domain.ErrInvalidQuiz
	}

	totalPoints := quiz.TotalPoints
	if totalPoints == 0 {
		totalPoints = totalQuestions * defaultPointsPerQuestion
	}
	pointsPerQuestion := float64(totalPoints) / float64(totalQuestions)

	answerKey := make(map[string]string, totalQuestions)
	for _, question := range quiz.Questions {
		answerKey[question.QuestionID] = question.CorrectAnswer
	}

	var result domain.ScoreResult
	for _, answer := range submission.Answers {
		correct, known := answerKey[answer.QuestionID]
		if !known || answer.SelectedOption == nil {
			continue
		}
		result.TotalAnswered++
		if *answer.SelectedOption == correct {
			result.CorrectCount++
		}
	}

	result.PointsEarned = int(math.Floor(float64(result.CorrectCount) * pointsPerQuestion))
	return result, nil
}
