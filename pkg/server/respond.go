package server

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidPath, errs.ErrCodeInvalidName,
		errs.ErrCodeInvalidDocument, errs.ErrCodeUnsupportedVersion, errs.ErrCodeInvalidScript:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeLayoutNotFound, errs.ErrCodeCellNotFound, errs.ErrCodeAreaNotFound:
		return http.StatusNotFound
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: errorDetail{
			Code:    errs.ErrCodeInvalidInput,
			Message: "request body too large",
		}})
		return
	}

	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := statusFor(code)
	msg := errs.Describe(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", RequestID(r.Context()))
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}
