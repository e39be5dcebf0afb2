package main

import (
	"os"
	"strings"
	"testing"

	clierrors "github.com/musher-dev/twsdash/internal/errors"
	"github.com/musher-dev/twsdash/internal/testutil"
)

func TestValidateAPIURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "http localhost", raw: "http://localhost:8000", want: "http://localhost:8000"},
		{name: "https valid", raw: "https://tws.example.dev", want: "https://tws.example.dev"},
		{name: "trims spaces and slash", raw: "  http://127.0.0.1:8000/  ", want: "http://127.0.0.1:8000"},
		{name: "empty", raw: "   ", wantErr: true},
		{name: "no scheme", raw: "localhost:8000", wantErr: true},
		{name: "unsupported scheme", raw: "ws://localhost:8000", wantErr: true},
		{name: "missing host", raw: "http:///api", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := validateAPIURL(tc.raw)
			if tc.wantErr {
				var cliErr *clierrors.CLIError
				if !clierrors.As(err, &cliErr) || cliErr.Code != clierrors.ExitUsage {
					t.Fatalf("validateAPIURL(%q) error = %v, want usage CLIError", tc.raw, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("validateAPIURL(%q) error = %v", tc.raw, err)
			}

			if got != tc.want {
				t.Fatalf("validateAPIURL(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestRootCmd_APIURLFlagSetsEnv(t *testing.T) {
	testutil.IsolateUserDirs(t)
	t.Setenv("TWSDASH_API_URL", "http://from-env.example:8000")

	root := newRootCmd()
	root.SetArgs([]string{"--api-url", "http://from-flag.example:8000/", "version"})
	root.SetOut(&strings.Builder{})

	if err := root.Execute(); err != nil {
		t.Fatalf("root.Execute() error = %v", err)
	}

	if got := os.Getenv("TWSDASH_API_URL"); got != "http://from-flag.example:8000" {
		t.Fatalf("TWSDASH_API_URL = %q, want http://from-flag.example:8000", got)
	}
}

func TestRootCmd_APIURLFlagRejectsInvalidValue(t *testing.T) {
	testutil.IsolateUserDirs(t)

	root := newRootCmd()
	root.SetArgs([]string{"--api-url", "bad-url", "version"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error for invalid --api-url")
	}

	var cliErr *clierrors.CLIError
	if !clierrors.As(err, &cliErr) {
		t.Fatalf("expected CLIError, got %T: %v", err, err)
	}

	if cliErr.Code != clierrors.ExitUsage {
		t.Fatalf("exit code = %d, want %d", cliErr.Code, clierrors.ExitUsage)
	}

	if !strings.Contains(cliErr.Message, "Invalid API URL") {
		t.Fatalf("error message = %q, want Invalid API URL", cliErr.Message)
	}
}
