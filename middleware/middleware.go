package middleware

import (
	"net/http"

	"github.com/rs/zerolog"
)

type Middleware func(http.HandlerFunc) http.HandlerFunc

/*
Creates a middleware stack out of Middlewares located in this file.
Useful for reusing middleware stacks.

Example:
stack := middleware.CreateStack(middleware.OriginCheck(origins, logger))
*/
func CreateStack(middlewares ...Middleware) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		for _, middleware := range middlewares {
			next = middleware(next)
		}
		return next
	}
}

/*
Checks if the request origin is allowed.
An empty allow list admits every origin; browser extensions send extension
origins that cannot be enumerated ahead of time.
*/
func OriginCheck(allowedOrigins []string, logger zerolog.Logger) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowedOrigins) == 0 {
				next(w, r)
				return
			}

			origin := r.Header.Get("Origin")

			for _, allowedOrigin := range allowedOrigins {
				if origin == allowedOrigin {
					next(w, r)
					return
				}
			}

			logger.Warn().Str("origin", origin).Msg("origin not allowed")
			w.WriteHeader(http.StatusForbidden)
		})
	}
}
