package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Action string

const (
	ActionUpsert Action = "upsert"
	ActionDelete Action = "delete"
)

// PaymentSyncMessage is the lightweight sync notification. Upserts carry only
// the id and version; the worker loads the payment from the database. Deletes
// carry the sheet row because the payment no longer exists locally.
type PaymentSyncMessage struct {
	Action    Action    `json:"action"`
	ID        string    `json:"id"`
	Version   int64     `json:"version,omitempty"`
	SheetRef  string    `json:"sheet_ref,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPaymentSyncMessage(id string, version int64) *PaymentSyncMessage {
	return &PaymentSyncMessage{
		Action:    ActionUpsert,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func NewPaymentDeleteMessage(id, sheetRef string) *PaymentSyncMessage {
	return &PaymentSyncMessage{
		Action:    ActionDelete,
		ID:        id,
		SheetRef:  sheetRef,
		Timestamp: time.Now(),
	}
}

func (m *PaymentSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentSyncMessageFromJSON decodes and validates a message. A missing
// action is read as an upsert.
func PaymentSyncMessageFromJSON(data []byte) (*PaymentSyncMessage, error) {
	var msg PaymentSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("message without id")
	}
	switch msg.Action {
	case "":
		msg.Action = ActionUpsert
	case ActionUpsert, ActionDelete:
	default:
		return nil, fmt.Errorf("unknown action %q", msg.Action)
	}
	return &msg, nil
}
