package amqp

import (
	"encoding/json"
	"time"
)

// EntrySyncMessage asks the worker to mirror one entry to the sheet. It
// carries only the ID and version; the worker loads the full row from the
// database.
type EntrySyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntrySyncMessage(id, version int64) *EntrySyncMessage {
	return &EntrySyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EntryDeleteMessage tells the worker an entry was removed locally.
type EntryDeleteMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryDeleteMessage(id int64) *EntryDeleteMessage {
	return &EntryDeleteMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *EntryDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryDeleteMessageFromJSON(data []byte) (*EntryDeleteMessage, error) {
	var msg EntryDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
