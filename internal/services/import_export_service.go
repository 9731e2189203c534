package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/cache"
	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

// Spreadsheet column layouts. Alternatives inside an expected-answer cell
// use the same "|" delimiter the evaluator understands; option cells are
// separated by ";".
const importListSeparator = ";"

type importExportService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, v *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		validator: v,
	}
}

// ===== IMPORT OPERATIONS =====

// ImportWords loads vocabulary rows from an Excel sheet with the columns
// kana, kanji, romaji, meaning, example. Valid rows are saved in one
// batch; invalid rows are reported per row and skipped.
func (s *importExportService) ImportWords(ctx context.Context, lessonID uint, r io.Reader) (*models.ImportSummary, error) {
	start := time.Now()

	if _, err := s.repo.Lesson().GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	rows, headerMap, err := readSheet(r)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{"kana", "meaning"} {
		if _, ok := headerMap[col]; !ok {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	summary := &models.ImportSummary{TotalRows: len(rows)}
	var words []*models.Word

	for i, row := range rows {
		rowNum := i + 2 // 1-based, after header
		word := &models.Word{
			LessonID: lessonID,
			Kana:     cellAt(row, headerMap, "kana"),
			Romaji:   cellAt(row, headerMap, "romaji"),
			Meaning:  cellAt(row, headerMap, "meaning"),
			Order:    i,
		}
		if kanji := cellAt(row, headerMap, "kanji"); kanji != "" {
			word.Kanji = &kanji
		}
		if example := cellAt(row, headerMap, "example"); example != "" {
			word.Example = &example
		}

		if err := s.validator.Content().ValidateWord(word); err != nil {
			summary.Errors = append(summary.Errors, models.ImportRowError{
				Row:     rowNum,
				Field:   "word",
				Message: err.Error(),
			})
			summary.ErrorCount++
		} else {
			words = append(words, word)
		}
		summary.ProcessedRows++
	}

	if len(words) > 0 {
		if err := s.repo.Word().CreateBatch(ctx, words); err != nil {
			return nil, fmt.Errorf("failed to save words: %w", err)
		}
		for _, word := range words {
			summary.CreatedIDs = append(summary.CreatedIDs, word.ID)
		}
		summary.SuccessCount = len(words)
		s.invalidateLessonCache(ctx, lessonID)
	}
	summary.ProcessingTime = time.Since(start)

	s.logger.Info("Word import completed",
		"lesson_id", lessonID,
		"total_rows", summary.TotalRows,
		"success_count", summary.SuccessCount,
		"error_count", summary.ErrorCount)

	return summary, nil
}

// ImportQuestions loads question rows from an Excel sheet with the columns
// kind, prompt, options, blanks, answer, points, explanation.
func (s *importExportService) ImportQuestions(ctx context.Context, lessonID uint, r io.Reader) (*models.ImportSummary, error) {
	start := time.Now()

	if _, err := s.repo.Lesson().GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	rows, headerMap, err := readSheet(r)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{"kind", "prompt"} {
		if _, ok := headerMap[col]; !ok {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	summary := &models.ImportSummary{TotalRows: len(rows)}
	var questions []*models.Question

	for i, row := range rows {
		rowNum := i + 2
		question, err := s.parseQuestionRow(row, headerMap, lessonID, i)
		if err != nil {
			summary.Errors = append(summary.Errors, models.ImportRowError{
				Row:     rowNum,
				Field:   "question",
				Message: err.Error(),
			})
			summary.ErrorCount++
		} else {
			questions = append(questions, question)
		}
		summary.ProcessedRows++
	}

	if len(questions) > 0 {
		if err := s.repo.Question().CreateBatch(ctx, questions); err != nil {
			return nil, fmt.Errorf("failed to save questions: %w", err)
		}
		for _, question := range questions {
			summary.CreatedIDs = append(summary.CreatedIDs, question.ID)
		}
		summary.SuccessCount = len(questions)
		s.invalidateLessonCache(ctx, lessonID)
	}
	summary.ProcessingTime = time.Since(start)

	s.logger.Info("Question import completed",
		"lesson_id", lessonID,
		"total_rows", summary.TotalRows,
		"success_count", summary.SuccessCount,
		"error_count", summary.ErrorCount)

	return summary, nil
}

func (s *importExportService) parseQuestionRow(row []string, headerMap map[string]int, lessonID uint, order int) (*models.Question, error) {
	question := &models.Question{
		LessonID: lessonID,
		Kind:     models.QuestionKind(cellAt(row, headerMap, "kind")),
		Prompt:   cellAt(row, headerMap, "prompt"),
		Order:    order,
	}

	if options := cellAt(row, headerMap, "options"); options != "" {
		question.Options = models.StringListJSON(splitList(options))
	}
	if blanks := cellAt(row, headerMap, "blanks"); blanks != "" {
		question.Blanks = models.StringListJSON(splitList(blanks))
	}
	if answer := cellAt(row, headerMap, "answer"); answer != "" {
		question.Answer = &answer
	}
	if points := cellAt(row, headerMap, "points"); points != "" {
		parsed, err := strconv.ParseFloat(points, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid points value %q", points)
		}
		question.Points = parsed
	}
	if explanation := cellAt(row, headerMap, "explanation"); explanation != "" {
		question.Explanation = &explanation
	}

	if err := s.validator.Content().ValidateQuestion(question); err != nil {
		return nil, err
	}
	return question, nil
}

// ===== EXPORT OPERATIONS =====

// ExportSubmissions writes the matching submissions as an Excel workbook.
func (s *importExportService) ExportSubmissions(ctx context.Context, filters repositories.SubmissionFilters, w io.Writer) error {
	submissions, _, err := s.repo.Submission().List(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Submissions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Lesson", "User", "Mode", "Status", "Score", "Max Score", "Reported Score", "Time Spent (s)", "Submitted At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for i, submission := range submissions {
		values := []interface{}{
			submission.ID,
			submission.Lesson.Title,
			submission.UserID,
			string(submission.Mode),
			string(submission.Status),
			submission.TotalScore,
			submission.MaxScore,
			submission.ReportedScore(),
			submission.TimeSpent,
			submission.SubmittedAt.Format(time.RFC3339),
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Submissions exported", "count", len(submissions))
	return nil
}

func (s *importExportService) invalidateLessonCache(ctx context.Context, lessonID uint) {
	if err := s.cache.Delete(ctx, lessonCacheKey(lessonID)); err != nil {
		s.logger.Warn("failed to invalidate lesson cache", "lesson_id", lessonID, "error", err)
	}
}

// ===== SHEET HELPERS =====

// readSheet opens the first sheet and returns its data rows plus a header
// name to column index map.
func readSheet(r io.Reader) ([][]string, map[string]int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, NewValidationError("file", "Excel must have header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}

	return rows[1:], headerMap, nil
}

func cellAt(row []string, headerMap map[string]int, column string) string {
	idx, ok := headerMap[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func splitList(value string) []string {
	parts := strings.Split(value, importListSeparator)
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
