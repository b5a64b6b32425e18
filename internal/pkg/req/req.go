/*
Package req provides helpers for parsing HTTP request bodies.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"chitty/internal/pkg/errs"
)

// BindJSON decodes the JSON request body into dst. Unknown fields and
// trailing content are rejected.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ReasonBadRequest, "Unsupported request format.")
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ReasonBadRequest, "Invalid JSON request body.")
	}

	if decoder.More() {
		return errs.NewError(errs.ReasonBadRequest, "Request contains unexpected data.")
	}

	return nil
}
