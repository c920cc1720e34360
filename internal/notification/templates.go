package notification

import (
	"fmt"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
)

// Template is the message template registered for one event type. Body may
// contain {name} placeholders; Fallback is plain text used when the trigger
// context is missing a placeholder value.
type Template struct {
	Body     string
	Fallback string
	Priority domain.Priority
}

// Registry maps event types to templates. It is built once at startup and
// never mutated, so lookups are safe from any goroutine.
type Registry struct {
	templates map[domain.EventType]Template
}

// NewRegistry seeds the registry with the template for every supported event
// type.
func NewRegistry() *Registry {
	return &Registry{
		templates: map[domain.EventType]Template{
			domain.EventAuditComplete: {
				Body:     "Your {auditType} audit for {websiteName} is complete with a score of {score}/100.",
				Fallback: "Your audit is complete. Check your dashboard for details.",
				Priority: domain.PriorityNormal,
			},
			domain.EventAuditStarted: {
				Body:     "Your {auditType} audit for {websiteName} has started. We'll let you know as soon as it's done.",
				Fallback: "Your audit has started.",
				Priority: domain.PriorityLow,
			},
			domain.EventAIVisibility: {
				Body:     "🤖 AI Visibility analysis for {websiteName} is complete! Your visibility score is {visibilityScore}/100 with {insightsCount} insights available.",
				Fallback: "Your AI visibility analysis is ready! Check your dashboard for insights.",
				Priority: domain.PriorityNormal,
			},
			domain.EventCompetitorAnalysis: {
				Body:     "🔍 See who your competitors are! Our analysis for {websiteName} is ready!! We analyzed {competitorCount} competitors and found valuable insights.",
				Fallback: "Your competitor analysis is complete! Discover who your competitors are.",
				Priority: domain.PriorityNormal,
			},
			domain.EventIntegrationStatus: {
				Body:     "Your {integrationName} integration is now {status}.",
				Fallback: "Your integration status has changed.",
				Priority: domain.PriorityNormal,
			},
			domain.EventSystemAlert: {
				Body:     "{alertMessage}",
				Fallback: "System alert: Please check your dashboard for details.",
				Priority: domain.PriorityHigh,
			},
		},
	}
}

// Lookup returns the template for the given event type. Unknown event types
// fail with domain.ErrUnknownEventType; callers must treat this as
// non-retryable.
func (r *Registry) Lookup(eventType domain.EventType) (Template, error) {
	tmpl, ok := r.templates[eventType]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", domain.ErrUnknownEventType, eventType)
	}
	return tmpl, nil
}

// EventTypes returns the registered event types in declaration order.
func (r *Registry) EventTypes() []domain.EventType {
	types := make([]domain.EventType, 0, len(r.templates))
	for _, et := range domain.EventTypes() {
		if _, ok := r.templates[et]; ok {
			types = append(types, et)
		}
	}
	return types
}
