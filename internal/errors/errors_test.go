package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestCLIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CLIError
		want string
	}{
		{
			name: "message only",
			err:  New(ExitGeneral, "something broke"),
			want: "something broke",
		},
		{
			name: "with cause",
			err:  Wrap(ExitNetwork, "request failed", fmt.Errorf("dial tcp: refused")),
			want: "request failed: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLIError_UnwrapAndAs(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	wrapped := fmt.Errorf("outer: %w", Wrap(ExitConfig, "inner", sentinel))

	if !stderrors.Is(wrapped, sentinel) {
		t.Error("errors.Is should find the cause through CLIError")
	}

	var cliErr *CLIError
	if !As(wrapped, &cliErr) {
		t.Fatal("As() should find the CLIError")
	}

	if cliErr.Code != ExitConfig {
		t.Errorf("Code = %d, want %d", cliErr.Code, ExitConfig)
	}
}

func TestWithHint(t *testing.T) {
	err := New(ExitGeneral, "msg").WithHint("do this")
	if err.Hint != "do this" {
		t.Errorf("Hint = %q, want %q", err.Hint, "do this")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *CLIError
		wantCode int
		wantMsg  string
		wantHint string
	}{
		{
			name:     "backend unreachable",
			err:      BackendUnreachable("http://localhost:8000", nil),
			wantCode: ExitNetwork,
			wantMsg:  "Please ensure the backend is running",
			wantHint: "http://localhost:8000",
		},
		{
			name:     "backend status",
			err:      BackendStatus(503, "Service Unavailable", nil),
			wantCode: ExitNetwork,
			wantMsg:  "HTTP 503: Service Unavailable",
			wantHint: "twsdash doctor",
		},
		{
			name:     "gateway failure",
			err:      GatewayRequestFailed("No active session"),
			wantCode: ExitGateway,
			wantMsg:  "No active session",
			wantHint: "twsdash connect",
		},
		{
			name:     "gateway failure without detail",
			err:      GatewayRequestFailed(""),
			wantCode: ExitGateway,
			wantMsg:  "no detail provided",
		},
		{
			name:     "gateway disconnected",
			err:      GatewayDisconnected("127.0.0.1:7497", "connection refused"),
			wantCode: ExitGateway,
			wantMsg:  "(127.0.0.1:7497): connection refused",
			wantHint: "twsdash connect",
		},
		{
			name:     "invalid api url",
			err:      InvalidAPIURL("ftp://x", nil),
			wantCode: ExitUsage,
			wantMsg:  "Invalid API URL",
			wantHint: "http://localhost:8000",
		},
		{
			name:     "invalid timezone",
			err:      InvalidTimezone("Mars/Olympus", nil),
			wantCode: ExitConfig,
			wantMsg:  "Mars/Olympus",
		},
		{
			name:     "config failed",
			err:      ConfigFailed("set config", nil),
			wantCode: ExitConfig,
			wantMsg:  "Failed to set config",
		},
		{
			name:     "not interactive",
			err:      NotInteractive(),
			wantCode: ExitUsage,
			wantHint: "twsdash status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.wantCode)
			}

			if !strings.Contains(tt.err.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want to contain %q", tt.err.Message, tt.wantMsg)
			}

			if !strings.Contains(tt.err.Hint, tt.wantHint) {
				t.Errorf("Hint = %q, want to contain %q", tt.err.Hint, tt.wantHint)
			}
		})
	}
}
