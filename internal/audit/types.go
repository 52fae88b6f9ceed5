package audit

import "time"

// Event types
const (
	TypeOrderDeleted  = "order.deleted"
	TypeNFeCheckedOut = "nfe.checked_out"
)

// Event is the message published to the events queue for every order mutation.
type Event struct {
	EventID     string    `json:"event_id" dynamodbav:"event_id"` // PK
	Type        string    `json:"type" dynamodbav:"type"`
	TenantID    int64     `json:"tenant_id" dynamodbav:"tenant_id"`
	OrderID     int64     `json:"order_id" dynamodbav:"order_id"`
	Numero      int64     `json:"numero,omitempty" dynamodbav:"numero,omitempty"`
	ChaveAcesso string    `json:"chave_acesso,omitempty" dynamodbav:"chave_acesso,omitempty"`
	User        string    `json:"user,omitempty" dynamodbav:"user,omitempty"`
	OccurredAt  time.Time `json:"occurred_at" dynamodbav:"occurred_at"`
}

// Entry is the shape persisted in the audit table.
type Entry struct {
	Event
	RecordedAt time.Time `dynamodbav:"recorded_at"`
	ExpiresAt  int64     `dynamodbav:"expires_at"` // TTL epoch seconds
}
