package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/erazemk/regali/internal/store"
	"github.com/erazemk/regali/internal/structure"
)

// maxBodyBytes bounds request bodies. Structures of a few thousand bins fit.
const maxBodyBytes = 4 << 20

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target. Unknown
// fields and trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return err
	}
	if dec.Decode(&struct{}{}) != io.EOF {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// bind decodes and validates a request body, writing the 400 response
// itself. It reports whether the handler should continue.
func bind(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeJSON(w, r, target); err != nil {
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := structure.Validator().Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return false
		}
		violations := make([]structure.Violation, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			violations = append(violations, structure.Violation{
				Path:    fe.Namespace(),
				Message: fmt.Sprintf("failed %q rule", fe.Tag()),
			})
		}
		jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":      "invalid request",
			"violations": violations,
		})
		return false
	}
	return true
}

// writeError maps store and validation errors to responses. Anything
// unexpected is logged and reported as a 500 mentioning action.
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var ve *structure.ValidationError
	var occupied *store.ZoneOccupiedError
	switch {
	case errors.As(err, &ve):
		jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":      ve.Error(),
			"violations": ve.Violations,
		})
	case errors.As(err, &occupied):
		jsonResponse(w, http.StatusConflict, map[string]any{
			"error":        occupied.Error(),
			"blockingBins": occupied.Blocking,
		})
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConcurrentModification),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrBinBlocked):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled):
		slog.Warn("request canceled", "action", action, "path", r.URL.Path)
	default:
		slog.Error("failed to "+action, "error", err, "request_id", RequestID(r.Context()))
		jsonError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// pathID parses a numeric path parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryID parses an optional numeric query parameter. Absent means 0.
func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryBool parses an optional boolean query parameter.
func queryBool(w http.ResponseWriter, r *http.Request, name string) (bool, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid "+name)
		return false, false
	}
	return b, true
}
