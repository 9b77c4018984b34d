package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

const (
	HeaderCorrelationID = "X-Correlation-Id"

	sessionCookie = "sf_session"
	adminCookie   = "sf_admin"

	sessionCookieMaxAge = 365 * 24 * 60 * 60
)

type ctxKey string

const (
	ctxSession ctxKey = "session"
	ctxAdmin   ctxKey = "admin"
)

func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowOrigins) == 1 && allowOrigins[0] == "*"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if r.Method == http.MethodOptions {
				writeCORSHeaders(w, origin, allowOrigins, allowAll)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			writeCORSHeaders(w, origin, allowOrigins, allowAll)
			next.ServeHTTP(w, r)
		})
	}
}

func writeCORSHeaders(w http.ResponseWriter, origin string, allowOrigins []string, allowAll bool) {
	if origin == "" {
		return
	}
	if !allowAll && !originAllowed(origin, allowOrigins) {
		return
	}

	// cookies need a concrete origin, never "*"
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Vary", "Origin")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Language, X-Correlation-Id")
}

func originAllowed(origin string, allow []string) bool {
	for _, a := range allow {
		if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(origin)) {
			return true
		}
	}
	return false
}

// CorrelationID reuses the caller's id or mints one, echoes it and makes it
// available to event publishing.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(HeaderCorrelationID)
		if cid == "" {
			cid = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, cid)

		ctx := events.WithCorrelationID(r.Context(), cid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func Recover(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Printf("panic: %v", rec)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error":         "internal server error",
						"correlationId": events.CorrelationID(r.Context()),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Visitor attaches the visitor's session, issuing a cookie on first contact.
// A brand-new visitor starts in the best match of Accept-Language.
func (h *Handler) Visitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(sessionCookie); err == nil {
			id = c.Value
		}

		s, created := h.sessions.Resolve(r.Context(), id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    s.ID,
				Path:     "/",
				MaxAge:   sessionCookieMaxAge,
				HttpOnly: true,
				Secure:   h.secureCookies,
				SameSite: http.SameSiteLaxMode,
			})
			if lang := h.i18n.Match(r.Header.Get("Accept-Language")); lang != s.Language.Language() {
				if err := s.Language.Set(r.Context(), lang); err != nil {
					h.logger.Printf("session %s: initial language: %v", s.ID, err)
				}
			}
		}

		ctx := context.WithValue(r.Context(), ctxSession, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func visitor(r *http.Request) *session.Session {
	s, _ := r.Context().Value(ctxSession).(*session.Session)
	return s
}

// RequireAdmin lets authenticated admins through. While the identity
// provider cannot answer, the client is told to wait instead of being sent
// to the login page.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := h.ctx(r)
		state, sess, err := auth.Resolve(ctx, h.auth, adminToken(r))
		cancel()
		if err != nil {
			h.logger.Printf("admin session check: %v", err)
		}

		d := auth.Guard(state)
		switch {
		case d.Pending:
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			return
		case d.Redirect != "":
			writeRedirect(w, http.StatusUnauthorized, "authentication required", d.Redirect)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxAdmin, sess)))
	})
}

func adminToken(r *http.Request) string {
	c, err := r.Cookie(adminCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func admin(r *http.Request) auth.Session {
	s, _ := r.Context().Value(ctxAdmin).(auth.Session)
	return s
}
