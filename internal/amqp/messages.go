package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"savings/internal/core"
)

// Event types published on the ledger exchange.
const (
	EventRecordAdded = "record.added"
	EventGoalSet     = "goal.set"
)

// RecordPayload is the wire form of a core.Record.
type RecordPayload struct {
	Ref      string  `json:"ref"`
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Month    string  `json:"month"`
	Tags     string  `json:"tags"`
}

// GoalPayload is the wire form of a core.Goal.
type GoalPayload struct {
	Month        string  `json:"month"`
	TargetAmount float64 `json:"targetAmount"`
}

// LedgerEvent is published after every successful ledger mutation.
type LedgerEvent struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Record    *RecordPayload `json:"record,omitempty"`
	Goal      *GoalPayload   `json:"goal,omitempty"`
}

func NewRecordAddedEvent(r core.Record, ref string) *LedgerEvent {
	return &LedgerEvent{
		Type:      EventRecordAdded,
		Timestamp: time.Now().UTC(),
		Record: &RecordPayload{
			Ref:      ref,
			Type:     string(r.Type),
			Amount:   r.Amount,
			Category: string(r.Category),
			Month:    r.Month,
			Tags:     r.Tags,
		},
	}
}

func NewGoalSetEvent(g core.Goal) *LedgerEvent {
	return &LedgerEvent{
		Type:      EventGoalSet,
		Timestamp: time.Now().UTC(),
		Goal:      &GoalPayload{Month: g.Month, TargetAmount: g.TargetAmount},
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and checks it carries the payload its
// type promises.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal ledger event: %w", err)
	}
	switch e.Type {
	case EventRecordAdded:
		if e.Record == nil {
			return nil, fmt.Errorf("%s event without record", e.Type)
		}
	case EventGoalSet:
		if e.Goal == nil {
			return nil, fmt.Errorf("%s event without goal", e.Type)
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	return &e, nil
}
