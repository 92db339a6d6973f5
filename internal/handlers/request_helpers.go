package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"foodify/internal/apperr"
)

var registerValidatorsOnce sync.Once

// RegisterValidators adds the custom binding rules. Safe to call repeatedly.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", validators.NotBlank)
		}
	})
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func ensureDBConnection(ctx context.Context, db Pinger) error {
	if db == nil {
		return errors.New("database is not configured")
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.Ping(checkCtx)
}

// normalizer is implemented by requests whose fields are canonicalised
// before the binding rules run.
type normalizer interface {
	normalize()
}

// bindJSON decodes the body into req, normalizes it and turns binding
// failures into a validation error listing every offending field. summary
// is the message used when a required field is missing.
func bindJSON(c *gin.Context, req interface{}, summary string) error {
	if c.Request.Body == nil {
		return apperr.Validation("Invalid request body", "request body is empty")
	}
	if err := json.NewDecoder(c.Request.Body).Decode(req); err != nil {
		return apperr.Validation("Invalid request body", err.Error())
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return validationError(err, summary)
	}
	return nil
}

func validationError(err error, summary string) *apperr.Error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.Validation("Invalid request body", err.Error())
	}

	details := make([]string, 0, len(validationErrors))
	var missing bool
	var invalid []string
	for _, fieldError := range validationErrors {
		field := lowerCamel(fieldError.Field())
		switch fieldError.Tag() {
		case "required", "notblank":
			missing = true
			details = append(details, fmt.Sprintf("%s is required", field))
		default:
			invalid = append(invalid, field)
			details = append(details, fmt.Sprintf("%s is invalid", field))
		}
	}
	if !missing {
		summary = fmt.Sprintf("Invalid %s", strings.Join(invalid, ", "))
	}
	return apperr.Validation(summary, details...)
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
