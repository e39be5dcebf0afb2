package client

import (
	"fmt"
	"strings"
	"time"
)

// LocalLayout renders a timestamp the way a desktop locale would, e.g.
// "1/15/2024, 10:30:00 AM".
const LocalLayout = "1/2/2006, 3:04:05 PM"

// Timestamp is an ISO-8601 timestamp exactly as the backend sent it.
// The empty value means the field was absent or null.
type Timestamp string

// Layouts tried by Timestamp parsing, zoned first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// IsZero reports whether the timestamp is absent.
func (t Timestamp) IsZero() bool {
	return strings.TrimSpace(string(t)) == ""
}

// String returns the raw value.
func (t Timestamp) String() string {
	return string(t)
}

// Time parses the timestamp. Values without a zone are read in loc, which
// matches how the backend writes naive local times; a nil loc means time.Local.
func (t Timestamp) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	raw := strings.TrimSpace(string(t))
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// Local renders the timestamp in loc using LocalLayout. Unparseable values
// are returned unchanged.
func (t Timestamp) Local(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	parsed, err := t.Time(loc)
	if err != nil {
		return string(t)
	}

	return parsed.In(loc).Format(LocalLayout)
}

// TimeResult is the outcome of one current-time probe.
//
// Success=false means the backend answered but the gateway could not; the
// time fields are then absent and ErrorMessage says why.
type TimeResult struct {
	Success        bool      `json:"success"`
	CurrentTime    Timestamp `json:"current_time,omitempty"`
	ServerVersion  *int      `json:"server_version,omitempty"`
	ConnectionTime Timestamp `json:"connection_time,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// ConnectionStatus is the gateway connectivity last observed by the backend.
type ConnectionStatus struct {
	Connected      bool      `json:"connected"`
	ClientID       int       `json:"client_id"`
	Host           string    `json:"host"`
	Port           int       `json:"port"`
	ConnectionTime Timestamp `json:"connection_time,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// Address returns "host:port" as displayed in the panel.
func (s *ConnectionStatus) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// HealthStatus is the backend's /health report.
type HealthStatus struct {
	Status       string    `json:"status"`
	Version      string    `json:"version"`
	Timestamp    Timestamp `json:"timestamp,omitempty"`
	TWSConnected bool      `json:"tws_connected"`
}

// ActionResult is the body of the connect and disconnect endpoints.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
