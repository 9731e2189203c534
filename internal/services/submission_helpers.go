package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/evaluation"
	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
)

// gradeLesson loads a lesson's question set, grades the answers, and
// returns the persisted-ready submission plus per-question feedback.
// Lesson and questions are loaded fresh so grading always runs against
// current content.
func gradeLesson(ctx context.Context, repo repositories.Repository, lessonID uint, req *SubmitRequest, userID string, mode models.SubmissionMode) (*models.Lesson, *models.Submission, []*QuestionResult, error) {
	lesson, err := repo.Lesson().GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrLessonNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	questions, err := repo.Question().GetByLesson(ctx, lessonID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, nil, nil, ErrLessonNoQuestions
	}

	result := evaluation.EvaluateSet(questions, req.Answers)

	feedback := make([]*QuestionResult, 0, len(questions))
	for _, q := range questions {
		score := evaluation.ScoreQuestion(q, req.Answers[q.ID])
		feedback = append(feedback, &QuestionResult{
			QuestionID:  q.ID,
			Correct:     score.Correct,
			Awarded:     score.Awarded,
			Points:      q.EffectivePoints(),
			Expected:    expectedAnswers(q),
			Explanation: q.Explanation,
		})
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	resultsJSON, err := json.Marshal(result.PerQuestion)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode results: %w", err)
	}

	status := models.SubmissionGraded
	if mode == models.ModeMiniTest {
		status = models.SubmissionPendingReview
	}

	submission := &models.Submission{
		LessonID:    lessonID,
		UserID:      userID,
		Mode:        mode,
		Status:      status,
		Answers:     answersJSON,
		Results:     resultsJSON,
		TimeSpent:   models.ClampTimeSpent(req.TimeSpent),
		SubmittedAt: time.Now(),
		TotalScore:  result.TotalScore,
		MaxScore:    result.MaxScore,
	}

	return lesson, submission, feedback, nil
}

// expectedAnswers renders a question's expected answers for post-grade
// feedback.
func expectedAnswers(q *models.Question) []string {
	if q.Kind == models.FillBlank {
		return q.BlankList()
	}
	if answer := q.ExpectedAnswer(); answer != "" {
		return []string{answer}
	}
	return nil
}

func toSubmissionResponse(submission *models.Submission, lessonTitle string, results []*QuestionResult) *SubmissionResponse {
	return &SubmissionResponse{
		ID:          submission.ID,
		LessonID:    submission.LessonID,
		LessonTitle: lessonTitle,
		UserID:      submission.UserID,
		Mode:        submission.Mode,
		Status:      submission.Status,
		TotalScore:  submission.TotalScore,
		MaxScore:    submission.MaxScore,
		TimeSpent:   submission.TimeSpent,
		SubmittedAt: submission.SubmittedAt,
		Results:     results,
		Review:      submission.Review,
	}
}
