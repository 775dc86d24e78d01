package amqp

import (
	"testing"
	"time"
)

func TestNewLedgerEventMessage(t *testing.T) {
	msg := NewLedgerEventMessage("transaction.created", 42, 1)

	if msg.Op != "transaction.created" {
		t.Errorf("Op = %v, want transaction.created", msg.Op)
	}
	if msg.TransactionID != 42 {
		t.Errorf("TransactionID = %v, want 42", msg.TransactionID)
	}
	if msg.Count != 1 {
		t.Errorf("Count = %v, want 1", msg.Count)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestLedgerEventMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &LedgerEventMessage{
		Op:            "import.completed",
		TransactionID: 0,
		Count:         25,
		Timestamp:     timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := LedgerEventMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("LedgerEventMessageFromJSON() error = %v", err)
	}

	if parsed.Op != msg.Op || parsed.Count != msg.Count {
		t.Errorf("parsed %+v, want %+v", parsed, msg)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestLedgerEventMessage_InvalidJSON(t *testing.T) {
	if _, err := LedgerEventMessageFromJSON([]byte(`{"count": "nope"}`)); err == nil {
		t.Error("LedgerEventMessageFromJSON() should fail with invalid JSON")
	}
}
