/*
Package resp provides helpers for writing JSON HTTP responses.

Successful responses carry the handler's payload as-is; failures carry the
standard error envelope with the HTTP status taken from the error.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"chitty/internal/pkg/errs"
	"chitty/internal/pkg/logx"
)

// RespondJSON sets the content type and writes the payload as JSON with
// the given HTTP status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess writes the payload with HTTP 200.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, data)
}

// RespondError writes the error envelope for a CustomError using its
// HTTP status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ReasonInternal)
	}

	envelope := errs.Envelope{
		Status: "error",
		Error: errs.ErrorBody{
			Reason:  customErr.Reason,
			Message: customErr.Message,
		},
	}

	RespondJSON(w, r, customErr.Status, envelope)
}
