package middleware

import (
	"net/http"
	"runtime/debug"

	"starcg-market-api/pkg/apierror"

	"go.uber.org/zap"
)

// Recovery converts panics into a 500 error envelope.
func Recovery(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					RequestLogger(r.Context(), logger).Errorw("panic",
						"error", err,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write(apierror.Unknown("internal server error").ToJSON())
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
