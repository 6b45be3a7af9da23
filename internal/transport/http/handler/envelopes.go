package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-social-nosql/internal/domain"
)

// Envelope is the body of every response. Payload entries sit next to
// "success" and "message", e.g. {"success":true,"users":[...]}.
type Envelope map[string]interface{}

func ok(message string) Envelope {
	e := Envelope{"success": true}
	if message != "" {
		e["message"] = message
	}
	return e
}

// With adds a payload entry.
func (e Envelope) With(key string, v interface{}) Envelope {
	e[key] = v
	return e
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{"success": false, "message": msg})
}

// statusBySentinel lists the domain errors that reach clients, in match order.
var statusBySentinel = []struct {
	err  error
	code int
}{
	{domain.ErrBadRequest, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
}

// httpError maps a service error to its status code. Anything that is not a
// domain error is reported as a generic 500 and only the log sees the cause.
func httpError(w http.ResponseWriter, err error) {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			writeError(w, s.code, clientMessage(err, s.err))
			return
		}
	}
	slog.Error("request failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// clientMessage drops the ": <sentinel>" suffix that wrapping leaves on err.
func clientMessage(err, sentinel error) string {
	return strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
}
