package domain

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateUserInput captures the payload of a registration.
type CreateUserInput struct {
	Username string `validate:"required"`
}

// AddExerciseInput captures the payload from the API layer. Duration and Date
// arrive as raw text so that malformed values can be reported.
type AddExerciseInput struct {
	UserID      string
	Description string `validate:"required"`
	Duration    string `validate:"required,numeric"`
	Date        string `validate:"omitempty,datetime=2006-01-02"`
}

// LogQueryInput captures the optional filters of a log request.
type LogQueryInput struct {
	UserID string
	From   string `validate:"omitempty,datetime=2006-01-02"`
	To     string `validate:"omitempty,datetime=2006-01-02"`
	Limit  string
}

var fieldMessages = map[string]string{
	"Username.required":    "Username is required",
	"Description.required": "Description is required",
	"Duration.required":    "Duration is required",
	"Duration.numeric":     "Duration must be a number",
	"Date.datetime":        "Invalid date, expected YYYY-MM-DD",
	"From.datetime":        "Invalid from date, expected YYYY-MM-DD",
	"To.datetime":          "Invalid to date, expected YYYY-MM-DD",
}

// check validates v and converts the first failing field into a
// validation error with a client-facing message.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return validationError("Invalid request")
	}

	first := fieldErrs[0]
	if msg, ok := fieldMessages[first.Field()+"."+first.Tag()]; ok {
		return validationError(msg)
	}
	return validationError(first.Field() + " is invalid")
}

func (in *CreateUserInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
}

func (in *AddExerciseInput) normalize() {
	in.UserID = strings.TrimSpace(in.UserID)
	in.Description = strings.TrimSpace(in.Description)
	in.Duration = strings.TrimSpace(in.Duration)
	in.Date = strings.TrimSpace(in.Date)
}

func (in *LogQueryInput) normalize() {
	in.UserID = strings.TrimSpace(in.UserID)
	in.From = strings.TrimSpace(in.From)
	in.To = strings.TrimSpace(in.To)
	in.Limit = strings.TrimSpace(in.Limit)
}
