package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/mauv0809/touchline/internal/procedures"
	"github.com/unrolled/render"
)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey ContextKey = "dryRun"
)

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so messages match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// decodeJSON reads the request body into dst and runs struct validation.
// Both malformed JSON and failed rules come back as *club.ValidationError.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		verr := &club.ValidationError{}
		verr.Add("body", "invalid JSON: "+err.Error())
		return verr
	}
	if reflect.Indirect(reflect.ValueOf(dst)).Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		verr := &club.ValidationError{}
		for _, fe := range fieldErrs {
			verr.Add(fieldPath(fe), "failed "+fe.Tag()+" rule")
		}
		return verr
	}
	return nil
}

// fieldPath strips the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var verr *club.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, club.ErrNotFound), errors.Is(err, matchsheet.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, procedures.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// requestLog returns the logger paramsMiddleware attached to the request,
// or the default logger.
func requestLog(r *http.Request) *log.Logger {
	return log.FromContext(r.Context())
}

// writeError renders err with the status it maps to. Unexpected errors keep
// their message in the body.
func writeError(rnd *render.Render, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}
	var verr *club.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "validation failed"
		resp.Fields = verr.Messages()
	}
	logger := requestLog(r)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	} else {
		logger.Debug("Request rejected", "status", status, "error", err)
	}
	if rerr := rnd.JSON(w, status, resp); rerr != nil {
		logger.Error("Failed to write error response", "error", rerr)
	}
}

func writeJSON(rnd *render.Render, w http.ResponseWriter, status int, v any) {
	if err := rnd.JSON(w, status, v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// queryInt reads a non-negative integer query parameter, falling back to def.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		verr := &club.ValidationError{}
		verr.Add(key, "must be a non-negative integer")
		return 0, verr
	}
	return n, nil
}
