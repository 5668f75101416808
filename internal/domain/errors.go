package domain

import "fmt"

// errors.go — tagged error kinds, one per recovery strategy.
//
//   ConfigError       fatal at startup, the process does not proceed
//   NetworkError      transport failure that survived the retry budget
//   APIError          business-level rejection, never retried
//   RiskLimitError    soft rejection by a risk gate, the loop continues
//   CoordinationError unconfirmed naked leg, manual intervention required
//
// Malformed response bodies are not an error kind: the API client degrades
// them to safe defaults and a warning, so no validation error ever crosses a
// port boundary.

// ConfigError reports missing or invalid credentials or configuration.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Reason, e.Err)
	}
	return "config: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NetworkError reports a connection or timeout failure after all retries
// were exhausted.
type NetworkError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError reports a non-2xx business response. It fails fast: the caller of
// that one call sees it, nothing is retried.
type APIError struct {
	Status   int
	Endpoint string
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s returned %d: %s", e.Endpoint, e.Status, e.Body)
}

// RiskLimitError reports a rejection by the circuit breaker or the inventory
// manager. The opportunity is skipped and the loop continues.
type RiskLimitError struct {
	Gate   string // "circuit_breaker" or "inventory"
	Reason string
}

func (e *RiskLimitError) Error() string {
	return fmt.Sprintf("risk: blocked by %s: %s", e.Gate, e.Reason)
}

// CoordinationError reports that the hedge leg failed and the cancellation of
// the buy leg could not be confirmed. The position may be naked; nothing
// downstream is allowed to treat it as closed.
type CoordinationError struct {
	MarketID     string
	NakedOrderID string
	Reason       string
	Err          error
}

func (e *CoordinationError) Error() string {
	return fmt.Sprintf("coordination: market %s order %s: %s (manual intervention required)",
		e.MarketID, e.NakedOrderID, e.Reason)
}

func (e *CoordinationError) Unwrap() error { return e.Err }
