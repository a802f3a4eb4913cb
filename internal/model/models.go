// Package model defines domain structs shared across the persistence and
// service layers.
package model

import "time"

// ErrorKind is the normalized category for a failed check.
type ErrorKind string

const (
	ErrorKindDNS     ErrorKind = "dns"
	ErrorKindConnect ErrorKind = "connect"
	ErrorKindTLS     ErrorKind = "tls"
	ErrorKindTimeout ErrorKind = "timeout"
	ErrorKindHTTP    ErrorKind = "http"
	ErrorKindUnknown ErrorKind = "unknown"
)

// IsValid reports whether k is one of the known error kinds.
func (k ErrorKind) IsValid() bool {
	switch k {
	case ErrorKindDNS, ErrorKindConnect, ErrorKindTLS, ErrorKindTimeout, ErrorKindHTTP, ErrorKindUnknown:
		return true
	}
	return false
}

// Target is a monitored endpoint configuration.
type Target struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Enabled   bool      `json:"enabled"`
	IntervalS int       `json:"interval_s"`
	TimeoutS  int       `json:"timeout_s"`
	VerifyTLS bool      `json:"verify_tls"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Check is the recorded outcome of one probe against a target.
// LatencyMS, HTTPStatus and ErrorMessage are nil when not observed.
type Check struct {
	ID           string    `json:"id"`
	TargetID     string    `json:"target_id"`
	CheckedAt    time.Time `json:"checked_at"`
	Up           bool      `json:"up"`
	LatencyMS    *int64    `json:"latency_ms"`
	HTTPStatus   *int      `json:"http_status"`
	ErrorType    ErrorKind `json:"error_type"`
	ErrorMessage *string   `json:"error_message"`
}

// TargetLastCheck pairs an enabled target with the time of its most recent
// check, if any.
type TargetLastCheck struct {
	Target      Target
	LastChecked *time.Time
}
