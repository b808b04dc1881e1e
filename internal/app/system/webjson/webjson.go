// Package webjson holds the JSON request/response helpers shared by the
// feature handlers, including the mapping from domain errors to HTTP status
// codes.
package webjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/errs"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; nothing in the API needs more.
const maxBodyBytes = 1 << 20

// Write encodes v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads the request body into dst. A syntactically invalid body comes
// back as a ValidationError so handlers can route it through Error.
func Decode(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.NewValidation("request body is empty")
		}
		return errs.NewValidation("request body is not valid JSON")
	}
	return nil
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields []errs.FieldError `json:"fields,omitempty"`
}

// Error maps a service error onto the wire:
//
//	ValidationError       → 400
//	PermissionError       → 403
//	NotFoundError         → 404
//	StoreUnavailableError → 503
//	anything else         → 500 (logged; detail not leaked)
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		Write(w, http.StatusBadRequest, errorBody{Error: ve.Error(), Fields: ve.Fields})
		return
	}
	if errs.IsPermission(err) {
		Write(w, http.StatusForbidden, errorBody{Error: err.Error()})
		return
	}
	if errs.IsNotFound(err) {
		Write(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	if errs.IsStoreUnavailable(err) {
		log.Error("store unavailable", zap.Error(err))
		Write(w, http.StatusServiceUnavailable, errorBody{Error: "storage temporarily unavailable"})
		return
	}

	log.Error("unhandled error", zap.Error(err))
	Write(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}
