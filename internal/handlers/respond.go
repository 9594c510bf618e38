package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/boonegifts/server/internal/middleware"
	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/observability"
	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

var kindStatus = map[models.ErrorKind]int{
	models.KindUnauthorized:   http.StatusUnauthorized,
	models.KindForbidden:      http.StatusForbidden,
	models.KindNotFound:       http.StatusNotFound,
	models.KindConflict:       http.StatusConflict,
	models.KindInvalidRequest: http.StatusBadRequest,
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors to their status. Anything else is a 500,
// logged and reported to Sentry, with a generic body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr models.AppError
	if errors.As(err, &appErr) {
		status, ok := kindStatus[appErr.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, models.ErrorResponse{Error: appErr.Message, Kind: appErr.Kind})
		return
	}

	observability.WithContext(r.Context()).
		WithError(err).
		WithField("path", r.URL.Path).
		Error("Request failed")
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error."})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags
func decodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return models.InvalidRequest("Request body is required.")
		}
		return models.InvalidRequest("Invalid request body.")
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return models.InvalidRequest(describeValidation(verrs))
		}
		return fmt.Errorf("failed to validate request: %w", err)
	}
	return nil
}

func describeValidation(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := toSnake(fe.Field())
		switch fe.Tag() {
		case "required", "required_without":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "url":
			msgs = append(msgs, field+" must be a valid URL")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "min", "max", "gte":
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s", field, fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ") + "."
}

func toSnake(s string) string {
	var b strings.Builder
	for i, c := range s {
		if c >= 'A' && c <= 'Z' {
			if i > 0 && (s[i-1] < 'A' || s[i-1] > 'Z') {
				b.WriteByte('_')
			}
			c += 'a' - 'A'
		}
		b.WriteRune(c)
	}
	return b.String()
}

// currentUser returns the authenticated user or writes a 401
func currentUser(w http.ResponseWriter, r *http.Request) *models.User {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, r, models.ErrUnauthorized)
	}
	return user
}
