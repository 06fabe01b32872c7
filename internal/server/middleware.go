package server

import (
	"context"
	"net"
	"net/http"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeyAdmin
)

// authMiddleware requires a bearer session token and stores the resolved
// session in the request context.
func authMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := userFromRequest(r, store)
			if err != nil {
				writeError(w, codeAuth, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// optionalAuthMiddleware resolves the session when a valid token is
// present but lets anonymous requests through. Leaderboard reads use
// this: authentication widens what the caller may ask for, it is never
// required.
func optionalAuthMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := userFromRequest(r, store)
			if err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxKeyUser, sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func adminAuthMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := adminFromRequest(r, store)
			if err != nil {
				writeError(w, codeAuth, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdmin, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userFrom(r *http.Request) userSession {
	return r.Context().Value(ctxKeyUser).(userSession)
}

// maybeUserFrom returns the session when the request carried one.
func maybeUserFrom(r *http.Request) (userSession, bool) {
	sess, ok := r.Context().Value(ctxKeyUser).(userSession)
	return sess, ok
}

func adminFrom(r *http.Request) adminSession {
	return r.Context().Value(ctxKeyAdmin).(adminSession)
}

// limitKey builds the per-operation throttle key, preferring the
// authenticated user and falling back to the client IP. RealIP
// middleware has already rewritten RemoteAddr by the time this runs.
func limitKey(r *http.Request, operation string) string {
	if sess, ok := maybeUserFrom(r); ok {
		return operation + ":" + sess.UserID
	}
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return operation + ":" + ip
}
