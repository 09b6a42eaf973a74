// Package access implements the permission rules that gate every API
// endpoint. Rules are pure functions from (actor, action) to a typed
// decision; an endpoint's rule list is combined with Evaluate, which ANDs
// the rules and short-circuits on the first denial. Denials keep their
// reason so the HTTP layer can answer 401 for a missing identity and 403
// for an insufficient one.
package access

// Action classifies what a request wants to do with a resource.
// Reads cover retrieve and list; everything else is a write.
type Action int

const (
	ActionRead Action = iota
	ActionWrite
)

// Actor is the authenticated (or anonymous) caller of a request.
type Actor struct {
	ID            int64
	Username      string
	IsStaff       bool
	Authenticated bool
}

// Anonymous is the actor attached to requests that carry no credentials.
var Anonymous = Actor{}

// Decision is the typed outcome of a rule.
type Decision int

const (
	// Allowed means the rule does not object to the action.
	Allowed Decision = iota
	// DeniedUnauthenticated means the action needs an authenticated
	// actor; the HTTP layer maps this to 401.
	DeniedUnauthenticated
	// DeniedForbidden means the actor is known but not permitted; the
	// HTTP layer maps this to 403, distinct from a 404.
	DeniedForbidden
)

// String describes the decision for logs and tests.
func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case DeniedUnauthenticated:
		return "denied: authentication required"
	case DeniedForbidden:
		return "denied: forbidden"
	default:
		return "unknown"
	}
}

// Rule is a single permission predicate.
type Rule func(actor Actor, action Action) Decision

// Authenticated denies anonymous actors and allows everyone else,
// regardless of the action.
func Authenticated(actor Actor, _ Action) Decision {
	if !actor.Authenticated {
		return DeniedUnauthenticated
	}
	return Allowed
}

// ReaderOrAdmin allows reads for any authenticated actor and every action
// for staff. A non-staff actor attempting a write is forbidden.
func ReaderOrAdmin(actor Actor, action Action) Decision {
	if !actor.Authenticated {
		return DeniedUnauthenticated
	}
	if actor.IsStaff || action == ActionRead {
		return Allowed
	}
	return DeniedForbidden
}

// AdminOnly requires a staff actor for every action, reads included.
func AdminOnly(actor Actor, _ Action) Decision {
	if !actor.Authenticated {
		return DeniedUnauthenticated
	}
	if !actor.IsStaff {
		return DeniedForbidden
	}
	return Allowed
}

// OwnerOrReadOnly returns a rule that allows reads for any authenticated
// actor but restricts writes to the owner of the resource.
func OwnerOrReadOnly(ownerID int64) Rule {
	return func(actor Actor, action Action) Decision {
		if !actor.Authenticated {
			return DeniedUnauthenticated
		}
		if action == ActionRead || actor.ID == ownerID {
			return Allowed
		}
		return DeniedForbidden
	}
}

// Evaluate runs the rules in order and returns the first non-Allowed
// decision, or Allowed when every rule passes. All rules must independently
// allow an action; a single denial vetoes it.
func Evaluate(actor Actor, action Action, rules ...Rule) Decision {
	for _, rule := range rules {
		if decision := rule(actor, action); decision != Allowed {
			return decision
		}
	}
	return Allowed
}
