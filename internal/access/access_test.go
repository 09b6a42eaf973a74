package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	anonymous = Anonymous
	reader    = Actor{ID: 7, Username: "mario", Authenticated: true}
	staff     = Actor{ID: 1, Username: "peach", IsStaff: true, Authenticated: true}
)

func TestAuthenticated(t *testing.T) {
	assert.Equal(t, DeniedUnauthenticated, Authenticated(anonymous, ActionRead))
	assert.Equal(t, DeniedUnauthenticated, Authenticated(anonymous, ActionWrite))
	assert.Equal(t, Allowed, Authenticated(reader, ActionWrite))
	assert.Equal(t, Allowed, Authenticated(staff, ActionWrite))
}

func TestReaderOrAdmin(t *testing.T) {
	tests := []struct {
		name   string
		actor  Actor
		action Action
		want   Decision
	}{
		{"anonymous read", anonymous, ActionRead, DeniedUnauthenticated},
		{"anonymous write", anonymous, ActionWrite, DeniedUnauthenticated},
		{"reader read", reader, ActionRead, Allowed},
		{"reader write", reader, ActionWrite, DeniedForbidden},
		{"staff read", staff, ActionRead, Allowed},
		{"staff write", staff, ActionWrite, Allowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReaderOrAdmin(tt.actor, tt.action))
		})
	}
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		name   string
		actor  Actor
		action Action
		want   Decision
	}{
		{"anonymous read", anonymous, ActionRead, DeniedUnauthenticated},
		{"reader read", reader, ActionRead, DeniedForbidden},
		{"reader write", reader, ActionWrite, DeniedForbidden},
		{"staff read", staff, ActionRead, Allowed},
		{"staff write", staff, ActionWrite, Allowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdminOnly(tt.actor, tt.action))
		})
	}
}

func TestOwnerOrReadOnly(t *testing.T) {
	rule := OwnerOrReadOnly(reader.ID)

	assert.Equal(t, DeniedUnauthenticated, rule(anonymous, ActionRead))
	assert.Equal(t, Allowed, rule(staff, ActionRead))
	assert.Equal(t, DeniedForbidden, rule(staff, ActionWrite))
	assert.Equal(t, Allowed, rule(reader, ActionRead))
	assert.Equal(t, Allowed, rule(reader, ActionWrite))
}

func TestEvaluate(t *testing.T) {
	t.Run("all rules must allow", func(t *testing.T) {
		got := Evaluate(reader, ActionWrite, Authenticated, ReaderOrAdmin)
		assert.Equal(t, DeniedForbidden, got)
	})

	t.Run("first denial wins", func(t *testing.T) {
		// AdminOnly forbids the reader before OwnerOrReadOnly would allow.
		got := Evaluate(reader, ActionWrite, AdminOnly, OwnerOrReadOnly(reader.ID))
		assert.Equal(t, DeniedForbidden, got)
	})

	t.Run("unauthenticated reason survives composition", func(t *testing.T) {
		got := Evaluate(anonymous, ActionRead, Authenticated, AdminOnly)
		assert.Equal(t, DeniedUnauthenticated, got)
	})

	t.Run("no rules means allowed", func(t *testing.T) {
		assert.Equal(t, Allowed, Evaluate(anonymous, ActionWrite))
	})

	t.Run("staff passes every stacked rule", func(t *testing.T) {
		got := Evaluate(staff, ActionWrite, Authenticated, ReaderOrAdmin, AdminOnly)
		assert.Equal(t, Allowed, got)
	})
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allowed", Allowed.String())
	assert.Equal(t, "denied: authentication required", DeniedUnauthenticated.String())
	assert.Equal(t, "denied: forbidden", DeniedForbidden.String())
}
