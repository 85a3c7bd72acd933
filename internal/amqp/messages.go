package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record kinds carried by LedgerChangedMessage.
const (
	KindBooking     = "booking"
	KindLedgerEntry = "ledger_entry"
)

// LedgerChangedMessage announces that a record feeding the ledger changed.
// It carries no record data: consumers rebuild the ledger from the store.
type LedgerChangedMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(kind, id, operation string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Kind:      kind,
		ID:        id,
		Operation: operation,
		Timestamp: time.Now().UTC(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes a message and rejects unknown kinds.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind != KindBooking && msg.Kind != KindLedgerEntry {
		return nil, fmt.Errorf("unknown record kind %q", msg.Kind)
	}
	return &msg, nil
}
