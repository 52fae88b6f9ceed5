package winthor

import (
	"fmt"
	"strings"
)

// ConfigError means the tenant's ERP settings are incomplete. No request was sent.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "winthor config: " + e.Reason }

// TransportError is a failed exchange with the ERP: a non-2xx answer
// (Status and Body set) or no answer at all (Err set, Status 0).
type TransportError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("winthor %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("winthor %s: HTTP %d: %s", e.Op, e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ContentError is a 2xx answer missing the expected payload.
// Fields lists the top-level fields that were received.
type ContentError struct {
	Op     string
	Reason string
	Fields []string
}

func (e *ContentError) Error() string {
	received := "(vazio)"
	if len(e.Fields) > 0 {
		received = strings.Join(e.Fields, ", ")
	}
	return fmt.Sprintf("winthor %s: %s. Campos recebidos: %s", e.Op, e.Reason, received)
}
