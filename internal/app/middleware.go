package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cashplan/cashplan/internal/auth"
	"github.com/cashplan/cashplan/internal/config"
	"github.com/cashplan/cashplan/internal/rest"
	"github.com/cashplan/cashplan/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {
	r.Use(requestLogger)
	if cfg.Auth.Enabled {
		r.Use(bearerAuth(deps))
	} else {
		log.Warn("authentication disabled, trusting the X-User-Id header")
		r.Use(userIdHeader(deps))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, req)
		log.WithFields(log.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"status":   recorder.status,
			"duration": time.Since(start),
		}).Debug("request handled")
	})
}

// bearerAuth validates the bearer token and provisions the user on first sight.
func bearerAuth(deps *Dependencies) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token, err := auth.FromHeader(req.Header.Get("Authorization"))
			if err != nil {
				rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", err.Error())
				return
			}
			identity, err := deps.AuthTokenValidator.Validate(token)
			if err != nil {
				log.Debugf("rejected token: %v", err)
				rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", auth.ErrInvalidToken.Error())
				return
			}

			ctx := req.Context()
			u, err := deps.UserService.EnsureUser(ctx, identity.Uid, identity.Email)
			if err != nil {
				log.Errorf("failed to provision user %s: %v", identity.Uid, err)
				rest.WriteError(w, http.StatusInternalServerError, "Failed to resolve user", "")
				return
			}
			next.ServeHTTP(w, req.WithContext(user.WithUser(ctx, u)))
		})
	}
}

// userIdHeader propagates the X-User-Id header into the context for downstream services.
func userIdHeader(deps *Dependencies) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			userIdHeader := req.Header.Get("X-User-Id")
			ctx := req.Context()

			if userIdHeader != "" {
				u, err := deps.UserService.GetUserByUid(ctx, userIdHeader)
				if err != nil {
					if errors.Is(err, user.ErrUserNotFound) {
						log.Debugf("user not found: %s", userIdHeader)
						rest.WriteError(w, http.StatusForbidden, "User not found", userIdHeader)
						return
					}
					log.Errorf("failed to get user: %v", err)
					rest.WriteError(w, http.StatusInternalServerError, "Failed to resolve user", "")
					return
				}
				ctx = user.WithUser(ctx, u)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
