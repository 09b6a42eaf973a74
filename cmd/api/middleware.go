// cmd/api/middleware.go
// This file contains HTTP middleware used to wrap the router.
// Middleware functions intercept every request before it reaches a handler.
package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yourorg/libraryapp/internal/access"
	"github.com/yourorg/libraryapp/internal/data"
	"github.com/yourorg/libraryapp/internal/token"

	"golang.org/x/time/rate"
)

// recoverPanic catches any runtime panic that occurs in a downstream handler.
// Without this, a panic would cause the goroutine to terminate and the client's
// connection to be dropped silently. With this middleware the client receives a
// clean 500 Internal Server Error instead.
func (app *applicationDependencies) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// defer runs when the surrounding goroutine unwinds, even after a panic.
		defer func() {
			if err := recover(); err != nil {
				// Tell the HTTP server to close the connection after this response.
				w.Header().Set("Connection", "close")
				// Convert the recovered panic value to an error and send a 500.
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// client holds a per-IP rate limiter and the time it was last seen.
// lastSeen lets us evict old entries so the map does not grow forever.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimit implements per-IP token-bucket rate limiting using the
// golang.org/x/time/rate package. Each unique IP gets its own limiter
// seeded from the limiter settings in the server config.
// A background goroutine cleans up entries that have not been seen in 3 minutes.
func (app *applicationDependencies) rateLimit(next http.Handler) http.Handler {
	// clients maps IP addresses to their individual rate limiters.
	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	// Cleanup goroutine: remove stale IP entries every minute.
	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			for ip, c := range clients {
				if time.Since(c.lastSeen) > 3*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.config.limiter.enabled {
			next.ServeHTTP(w, r)
			return
		}

		// Extract just the IP from the RemoteAddr (strips the port).
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		mu.Lock()
		// Create a new limiter for this IP if we have not seen it before.
		if _, found := clients[ip]; !found {
			clients[ip] = &client{
				limiter: rate.NewLimiter(rate.Limit(app.config.limiter.rps), app.config.limiter.burst),
			}
		}
		clients[ip].lastSeen = time.Now()

		// Allow() consumes one token; returns false if the bucket is empty.
		if !clients[ip].limiter.Allow() {
			mu.Unlock()
			app.rateLimitExceededResponse(w, r)
			return
		}
		mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the caller's identity from the Authorization header
// and stores the resulting actor in the request context. Requests without a
// header proceed as the anonymous actor; permission rules decide later
// whether that is acceptable. Requests with a malformed, invalid, or
// expired token are rejected here with a 401.
func (app *applicationDependencies) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Responses vary by credentials, so caches must key on the header.
		w.Header().Add("Vary", "Authorization")

		authorizationHeader := r.Header.Get("Authorization")
		if authorizationHeader == "" {
			next.ServeHTTP(w, app.contextSetActor(r, access.Anonymous))
			return
		}

		headerParts := strings.Split(authorizationHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		claims, err := app.tokens.Verify(headerParts[1], token.ScopeAccess)
		if err != nil {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		// Re-read the user so a deleted identity stops authenticating the
		// moment its row is gone, even with an unexpired token in hand.
		user, err := app.models.Users.Get(userID)
		if err != nil {
			switch {
			case errors.Is(err, data.ErrRecordNotFound):
				app.invalidAuthenticationTokenResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		actor := access.Actor{
			ID:            user.ID,
			Username:      user.Username,
			IsStaff:       user.IsStaff,
			Authenticated: true,
		}
		next.ServeHTTP(w, app.contextSetActor(r, actor))
	})
}

// requireRules returns a middleware that gates a handler behind the given
// permission rules for the given action. All rules must allow; the first
// denial decides the response: 401 for a missing identity, 403 for an
// insufficient one.
func (app *applicationDependencies) requireRules(action access.Action, rules ...access.Rule) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			actor := app.contextGetActor(r)
			switch access.Evaluate(actor, action, rules...) {
			case access.DeniedUnauthenticated:
				app.authenticationRequiredResponse(w, r)
			case access.DeniedForbidden:
				app.notPermittedResponse(w, r)
			default:
				next(w, r)
			}
		}
	}
}

// requireProfileOwner gates the /profile endpoint. The endpoint always
// operates on the caller's own identity ("me" semantics), so the owner of
// the target resource is the actor itself; the owner-or-read-only rule
// still runs so the denial reasons stay uniform with every other endpoint.
func (app *applicationDependencies) requireProfileOwner(action access.Action, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := app.contextGetActor(r)
		switch access.Evaluate(actor, action, access.Authenticated, access.OwnerOrReadOnly(actor.ID)) {
		case access.DeniedUnauthenticated:
			app.authenticationRequiredResponse(w, r)
		case access.DeniedForbidden:
			app.notPermittedResponse(w, r)
		default:
			next(w, r)
		}
	}
}
