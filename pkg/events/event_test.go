package events

import (
	"testing"
	"time"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := "agg-123"
	tenantID := "tenant-456"

	before := time.Now().UTC()
	event := NewBaseEvent("TransactionRecorded", aggregateID, "Loan", tenantID)
	after := time.Now().UTC()

	if event.EventID() == "" {
		t.Error("expected non-empty event ID")
	}

	if event.EventType() != "TransactionRecorded" {
		t.Errorf("expected event type %q, got %q", "TransactionRecorded", event.EventType())
	}

	if event.AggregateID() != aggregateID {
		t.Errorf("expected aggregate ID %v, got %v", aggregateID, event.AggregateID())
	}

	if event.AggregateType() != "Loan" {
		t.Errorf("expected aggregate type %q, got %q", "Loan", event.AggregateType())
	}

	if event.TenantID() != tenantID {
		t.Errorf("expected tenant ID %q, got %q", tenantID, event.TenantID())
	}

	if event.OccurredAt().Before(before) || event.OccurredAt().After(after) {
		t.Errorf("expected occurredAt between %v and %v, got %v", before, after, event.OccurredAt())
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}
