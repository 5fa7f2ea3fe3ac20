package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/roster"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id models.TeacherID) (*models.Teacher, error)
	Create(ctx context.Context, input models.TeacherInput) (*models.Teacher, error)
	Update(ctx context.Context, id models.TeacherID, input models.TeacherInput) (*models.Teacher, error)
	Delete(ctx context.Context, id models.TeacherID) error
}

// Form validation messages shown to operators.
const (
	MsgFillAllFields   = "Please fill all fields"
	MsgNameLettersOnly = "Name should contain only letters and spaces"
	MsgInvalidStatus   = "Status must be Active or Inactive"
	MsgInvalidLocation = "Please choose a location from the list"
)

var personNamePattern = regexp.MustCompile(`^[A-Za-z ]+$`)

// TeacherService orchestrates roster operations against the record service.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
	locations []string
}

// NewTeacherService constructs a TeacherService. The location list backs the
// "location" validation tag; it defaults to models.DefaultLocations.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger, locations []string) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(locations) == 0 {
		locations = models.DefaultLocations
	}
	allowed := make(map[string]struct{}, len(locations))
	for _, l := range locations {
		allowed[l] = struct{}{}
	}
	_ = validate.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("location", func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	})
	return &TeacherService{repo: repo, validator: validate, logger: logger, locations: locations}
}

// Locations returns the selectable locations.
func (s *TeacherService) Locations() []string {
	out := make([]string, len(s.locations))
	copy(out, s.locations)
	return out
}

// All fetches the full record set.
func (s *TeacherService) All(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Upstream(err, "Failed to load teachers")
	}
	return teachers, nil
}

// List fetches the record set and runs the list engine over it.
func (s *TeacherService) List(ctx context.Context, q roster.Query) (*roster.View, error) {
	teachers, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	view := roster.Apply(teachers, q)
	return &view, nil
}

// Get returns one record.
func (s *TeacherService) Get(ctx context.Context, id models.TeacherID) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Upstream(err, "Failed to load teacher details")
	}
	return teacher, nil
}

// Create formats, validates and submits a new record.
func (s *TeacherService) Create(ctx context.Context, input models.TeacherInput) (*models.Teacher, error) {
	input, err := s.Prepare(input)
	if err != nil {
		return nil, err
	}
	teacher, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, appErrors.Upstream(err, "Operation failed")
	}
	s.logger.Info("teacher created", zap.Stringer("id", teacher.ID), zap.String("name", teacher.Name))
	return teacher, nil
}

// Update formats, validates and submits changes to an existing record.
func (s *TeacherService) Update(ctx context.Context, id models.TeacherID, input models.TeacherInput) (*models.Teacher, error) {
	input, err := s.Prepare(input)
	if err != nil {
		return nil, err
	}
	teacher, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, appErrors.Upstream(err, "Operation failed")
	}
	s.logger.Info("teacher updated", zap.Stringer("id", id))
	return teacher, nil
}

// Delete removes a record.
func (s *TeacherService) Delete(ctx context.Context, id models.TeacherID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Upstream(err, "Delete failed")
	}
	s.logger.Info("teacher deleted", zap.Stringer("id", id))
	return nil
}

// Prepare applies form formatting (title-cased name, default status) and
// validates the result.
func (s *TeacherService) Prepare(input models.TeacherInput) (models.TeacherInput, error) {
	input.Name = strings.TrimSpace(ToTitleCase(input.Name))
	input.Role = strings.TrimSpace(input.Role)
	input.Location = strings.TrimSpace(input.Location)
	if input.Status == "" {
		input.Status = models.StatusActive
	}
	if err := s.validator.Struct(input); err != nil {
		return input, validationError(err)
	}
	return input, nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, MsgFillAllFields)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, MsgFillAllFields)
		}
	}
	message := MsgFillAllFields
	switch fieldErrs[0].Tag() {
	case "personname":
		message = MsgNameLettersOnly
	case "oneof":
		message = MsgInvalidStatus
	case "location":
		message = MsgInvalidLocation
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// ToTitleCase upper-cases the first word character of every whitespace
// separated word and lower-cases the rest of it: "jane DOE" becomes "Jane Doe".
func ToTitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	seenWordChar := false
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if unicode.IsSpace(r) {
			seenWordChar = false
			b.WriteRune(r)
			continue
		}
		switch {
		case !seenWordChar && isWordChar(r):
			seenWordChar = true
			b.WriteRune(unicode.ToUpper(r))
		case seenWordChar:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordChar(r rune) bool {
	return r == '_' || (r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}
