package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"worklog/internal/core"
)

// CollectionChanged announces that a ledger collection was rewritten. It
// carries no records; consumers reload the collection from the store.
type CollectionChanged struct {
	Kind      core.Kind `json:"kind"`
	Records   int       `json:"records"`
	Timestamp time.Time `json:"timestamp"`
}

func NewCollectionChanged(kind core.Kind, records int) *CollectionChanged {
	return &CollectionChanged{
		Kind:      kind,
		Records:   records,
		Timestamp: time.Now(),
	}
}

func (m *CollectionChanged) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CollectionChangedFromJSON decodes a message and rejects unknown kinds.
func CollectionChangedFromJSON(data []byte) (*CollectionChanged, error) {
	var msg CollectionChanged
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, msg.Kind)
	}
	return &msg, nil
}
