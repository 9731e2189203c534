package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/kotoba-lab/learning-service/internal/errors"
	"github.com/kotoba-lab/learning-service/internal/models"
)

// Validator combines struct-tag validation with domain content validation.
type Validator struct {
	structValidator  *validator.Validate
	contentValidator *ContentValidator
}

// New creates the shared validator instance with all custom rules
// registered.
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:  structValidator,
		contentValidator: NewContentValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs struct-tag validation and converts failures to the
// shared ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Content returns the content validator
func (v *Validator) Content() *ContentValidator {
	return v.contentValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_kind", validateQuestionKind)
	validate.RegisterValidation("lesson_kind", validateLessonKind)
	validate.RegisterValidation("jlpt_level", validateJLPTLevel)
	validate.RegisterValidation("user_role", validateUserRole)

	// Report json field names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionKind(fl validator.FieldLevel) bool {
	switch models.QuestionKind(fl.Field().String()) {
	case models.FillBlank, models.MultipleChoice, models.Reorder:
		return true
	}
	return false
}

func validateLessonKind(fl validator.FieldLevel) bool {
	switch models.LessonKind(fl.Field().String()) {
	case models.LessonVocabulary, models.LessonKanji, models.LessonGrammar:
		return true
	}
	return false
}

func validateJLPTLevel(fl validator.FieldLevel) bool {
	switch models.JLPTLevel(fl.Field().String()) {
	case models.LevelN5, models.LevelN4, models.LevelN3, models.LevelN2, models.LevelN1:
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleLearner, models.RoleAdmin:
		return true
	}
	return false
}
