package amqp

import (
	"encoding/json"
	"time"

	"wrapped/internal/core"
)

// RefreshRequestMessage asks the worker to re-fetch and archive one report.
type RefreshRequestMessage struct {
	Desde       string    `json:"desde"`
	Hasta       string    `json:"hasta"`
	Modo        string    `json:"modo"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewRefreshRequestMessage creates a refresh request for q stamped with the current time
func NewRefreshRequestMessage(q core.Query) *RefreshRequestMessage {
	return &RefreshRequestMessage{
		Desde:       q.Desde,
		Hasta:       q.Hasta,
		Modo:        q.Modo.String(),
		RequestedAt: time.Now(),
	}
}

// Query returns the report query carried by the message
func (m *RefreshRequestMessage) Query() core.Query {
	return core.Query{Desde: m.Desde, Hasta: m.Hasta, Modo: core.GroupingMode(m.Modo)}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshRequestMessageFromJSON decodes and validates a refresh request
func RefreshRequestMessageFromJSON(data []byte) (*RefreshRequestMessage, error) {
	var msg RefreshRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Query().Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
