// Package handlers exposes the workshop services as a JSON API.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/diewo77/kfz-werkstatt/httpx"
	"github.com/diewo77/kfz-werkstatt/internal/apperr"
)

// Message is the body of responses that carry no entity.
type Message struct {
	Message string `json:"message"`
}

func pathID(r *http.Request) (uint, error) {
	return parseUint(chi.URLParam(r, "id"), "id")
}

func parseUint(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NewBadRequestError("invalid " + name)
	}
	return uint(id), nil
}

// queryUint reads an optional positive integer query parameter.
func queryUint(r *http.Request, name string) (uint, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	return parseUint(raw, name)
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.NewBadRequestError("invalid " + name)
	}
	return n, nil
}

// withID parses the id path parameter and calls fn, writing any error.
func withID(fn func(w http.ResponseWriter, r *http.Request, id uint) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err == nil {
			err = fn(w, r, id)
		}
		if err != nil {
			httpx.Error(w, r, err)
		}
	}
}

// handle adapts an error returning handler.
func handle(fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			httpx.Error(w, r, err)
		}
	}
}

func reply(w http.ResponseWriter, status int, payload any, err error) error {
	if err != nil {
		return err
	}
	httpx.JSON(w, status, payload)
	return nil
}
