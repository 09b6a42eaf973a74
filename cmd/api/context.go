// cmd/api/context.go
// Request-context plumbing for the authenticated actor. The authenticate
// middleware stores an access.Actor in every request's context; handlers
// and permission middleware read it back with contextGetActor.
package main

import (
	"context"
	"net/http"

	"github.com/yourorg/libraryapp/internal/access"
)

// contextKey is a private type so our context keys can never collide with
// keys set by other packages.
type contextKey string

const actorContextKey = contextKey("actor")

// contextSetActor returns a copy of the request with the actor stored in
// its context.
func (app *applicationDependencies) contextSetActor(r *http.Request, actor access.Actor) *http.Request {
	ctx := context.WithValue(r.Context(), actorContextKey, actor)
	return r.WithContext(ctx)
}

// contextGetActor retrieves the actor from the request context. Every
// request passes through the authenticate middleware, so a missing actor is
// a programming error worth panicking over.
func (app *applicationDependencies) contextGetActor(r *http.Request) access.Actor {
	actor, ok := r.Context().Value(actorContextKey).(access.Actor)
	if !ok {
		panic("missing actor value in request context")
	}
	return actor
}
