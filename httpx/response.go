package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/diewo77/kfz-werkstatt/internal/apperr"
	"github.com/diewo77/kfz-werkstatt/internal/logging"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Error writes err with the status and code of its application error type.
// Errors outside the taxonomy are logged and reported as 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := apperr.ToHTTP(err)
	var details any
	var ve *apperr.ValidationError
	var be *apperr.BatchUpdateError
	switch {
	case errors.As(err, &ve):
		details = ve.Fields
	case errors.As(err, &be):
		details = be.Failed
	}
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	JSON(w, status, ErrorResponse{Error: code, Message: msg, Details: details})
}

// Decode reads a JSON request body into dst.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.NewBadRequestError("request body is empty")
		}
		return apperr.NewBadRequestError("invalid JSON body: " + strings.TrimPrefix(err.Error(), "json: "))
	}
	return nil
}
