package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEventMessage announces a completed ledger write. Consumers fetch any
// data they need from the database; the message carries only identifiers.
type LedgerEventMessage struct {
	Op            string    `json:"op"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	Count         int       `json:"count"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(op string, transactionID int64, count int) *LedgerEventMessage {
	return &LedgerEventMessage{
		Op:            op,
		TransactionID: transactionID,
		Count:         count,
		Timestamp:     time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
