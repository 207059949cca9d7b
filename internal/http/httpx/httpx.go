// Package httpx holds the request decoding and response helpers shared by
// the API handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/auth"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Decode reads a JSON body into dst and validates its struct tags.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return Validate(dst)
}

// Validate checks struct tags, flattening field errors into one message.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Field() + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}

		msgs = append(msgs, msg)
	}

	return errors.New(strings.Join(msgs, "; "))
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// UserID returns the authenticated user, answering 401 when there is none.
func UserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
	}

	return id, ok
}

// PathID parses the {id} URL parameter, answering 400 when it is malformed.
func PathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

// ErrInvalidRange is returned when start_date falls after end_date.
var ErrInvalidRange = errors.New("start_date must not be after end_date")

// Clock returns the current time in loc; a nil loc means the process zone.
func Clock(loc *time.Location) func() time.Time {
	if loc == nil {
		return time.Now
	}

	return func() time.Time { return time.Now().In(loc) }
}

// QueryDate parses a YYYY-MM-DD query parameter as midnight in loc. A missing
// parameter yields nil.
func QueryDate(r *http.Request, name string, loc *time.Location) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	if loc == nil {
		loc = time.Local
	}

	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}

	return &t, nil
}

// QueryRange reads start_date and the inclusive end_date into a half-open
// range, so end is the day after end_date. Missing bounds stay nil.
func QueryRange(r *http.Request, loc *time.Location) (start, end *time.Time, err error) {
	if start, err = QueryDate(r, "start_date", loc); err != nil {
		return nil, nil, err
	}

	last, err := QueryDate(r, "end_date", loc)
	if err != nil {
		return nil, nil, err
	}

	if last != nil {
		end = new(last.AddDate(0, 0, 1))
	}

	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, ErrInvalidRange
	}

	return start, end, nil
}

// MonthOrRange resolves start_date/end_date, filling a missing bound from the
// calendar month containing now.
func MonthOrRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	s, e, err := QueryRange(r, now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, end := monthStart, monthStart.AddDate(0, 1, 0)
	if s != nil {
		start = *s
	}

	if e != nil {
		end = *e
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}

	return start, end, nil
}

// QueryUUID parses an optional UUID query parameter.
func QueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be a UUID", name)
	}

	return &id, nil
}

// Internal logs err and answers with a generic 500.
func Internal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.ErrorContext(r.Context(), msg, "error", err, "path", r.URL.Path)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
