package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const DateLayout = "2006-01-02"

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ValidationError is returned by services when user input fails a presence
// or range check. Message is shown to the user as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Mapping binds a sentinel error to the HTTP status it is answered with.
type Mapping struct {
	Err    error
	Status int
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func WriteError(w http.ResponseWriter, status int, message, details string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// Fail answers err with the first matching mapping, 400 for validation
// errors and 500 otherwise.
func Fail(w http.ResponseWriter, err error, mappings ...Mapping) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, validationErr.Message, validationErr.Field)
		return
	}
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			WriteError(w, m.Status, m.Err.Error(), "")
			return
		}
	}
	log.Errorf("request failed: %v", err)
	WriteError(w, http.StatusInternalServerError, "internal error", "")
}

func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return false
	}
	return true
}

// PathInt reads an integer mux path variable, answering 400 when it is not one.
func PathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	value := mux.Vars(r)[name]
	id, err := strconv.Atoi(value)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid "+name, "'"+name+"' must be an integer")
		return 0, false
	}
	return id, true
}

// QueryDate parses an optional YYYY-MM-DD query parameter; fallback is
// returned when the parameter is absent.
func QueryDate(w http.ResponseWriter, r *http.Request, name string, fallback time.Time) (time.Time, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback, true
	}
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid "+name+" (date) format", "'"+name+"' must be in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return date, true
}

// QueryOptionalInt parses an optional integer query parameter.
func QueryOptionalInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, true
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid "+name, "'"+name+"' must be an integer")
		return nil, false
	}
	return &parsed, true
}

// QueryOptionalDate parses an optional YYYY-MM-DD query parameter.
func QueryOptionalDate(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	if r.URL.Query().Get(name) == "" {
		return nil, true
	}
	date, ok := QueryDate(w, r, name, time.Time{})
	if !ok {
		return nil, false
	}
	return &date, true
}
