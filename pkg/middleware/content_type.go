package middleware

import (
	"mime"
	"net/http"
	"strings"

	"microbus/pkg/errors"
	httputil "microbus/pkg/http"
)

// ContentType rejects bodied requests whose Content-Type is not JSON.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := r.Header.Get("Content-Type")
			if ct == "" {
				httputil.WriteError(w, errors.InvalidInput("Content-Type header is required"))
				return
			}
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || !strings.EqualFold(mediaType, "application/json") {
				httputil.WriteError(w, &errors.AppError{
					Code:       errors.CodeInvalidInput,
					Message:    "Content-Type must be application/json",
					HTTPStatus: http.StatusUnsupportedMediaType,
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
