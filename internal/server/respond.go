package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/vango-dev/studio/internal/errors"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.Code(err)
	writeJSON(w, statusOf(code), errorBody{Error: err.Error(), Code: code})
}

// statusOf maps an error code to an HTTP status.
func statusOf(code string) int {
	switch code {
	case "E214":
		return http.StatusNotFound
	case "E232":
		return http.StatusConflict
	case "E215":
		return http.StatusInternalServerError
	case "E250", "E280":
		return http.StatusBadRequest
	}
	tmpl, ok := errors.Lookup(code)
	if !ok {
		return http.StatusInternalServerError
	}
	switch tmpl.Category {
	case errors.CategoryLoad, errors.CategoryProtocol, errors.CategoryDiscovery:
		return http.StatusBadGateway
	case errors.CategoryConfig:
		return http.StatusBadRequest
	case errors.CategoryDrop:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return nil
		}
		return errors.New("E250").Wrap(err)
	}
	return nil
}
