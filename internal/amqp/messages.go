package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// SnapshotMessage announces that a collection snapshot was written.
// It carries no data; consumers read the snapshot from the store.
type SnapshotMessage struct {
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotMessage creates a message stamped with the current time.
func NewSnapshotMessage(key string, count int) *SnapshotMessage {
	return &SnapshotMessage{
		Key:       key,
		Count:     count,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotMessageFromJSON decodes a message and rejects one without a key.
func SnapshotMessageFromJSON(data []byte) (*SnapshotMessage, error) {
	var msg SnapshotMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Key == "" {
		return nil, errors.New("snapshot message without key")
	}
	return &msg, nil
}
