package notification

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
)

func TestRegistryLookupAllEventTypes(t *testing.T) {
	registry := NewRegistry()

	for _, et := range domain.EventTypes() {
		tmpl, err := registry.Lookup(et)
		require.NoError(t, err, "event type %s", et)
		assert.NotEmpty(t, tmpl.Body, "event type %s", et)
		assert.NotEmpty(t, tmpl.Fallback, "event type %s", et)
		assert.NotEmpty(t, tmpl.Priority, "event type %s", et)
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Lookup(domain.EventType("bogus_event"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownEventType))
}

func TestRegistryPriorities(t *testing.T) {
	registry := NewRegistry()

	alert, err := registry.Lookup(domain.EventSystemAlert)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, alert.Priority)

	audit, err := registry.Lookup(domain.EventAuditComplete)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityNormal, audit.Priority)
}

func TestRegistryEventTypes(t *testing.T) {
	registry := NewRegistry()
	assert.ElementsMatch(t, domain.EventTypes(), registry.EventTypes())
}
