// Package doctor runs diagnostic checks against the twsdash configuration,
// the backend service, and the gateway session behind it.
package doctor

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/musher-dev/twsdash/internal/buildinfo"
	"github.com/musher-dev/twsdash/internal/client"
)

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"-"`
	State   string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Settings is the configuration the checks inspect.
type Settings interface {
	APIURL() string
	Location() (*time.Location, error)
}

// Backend is the part of the API client the checks call.
type Backend interface {
	BaseURL() string
	Health(ctx context.Context) (*client.HealthStatus, error)
	ConnectionStatus(ctx context.Context) (*client.ConnectionStatus, error)
}

// Runner executes diagnostic checks in registration order.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// New creates a runner with the default checks.
func New(settings Settings, backend Backend) *Runner {
	r := &Runner{}

	r.AddCheck("Configuration", func(context.Context) Result { return checkConfiguration(settings) })
	r.AddCheck("Backend Health", func(ctx context.Context) Result { return checkBackendHealth(ctx, backend) })
	r.AddCheck("Gateway Connection", func(ctx context.Context) Result { return checkGateway(ctx, backend) })
	r.AddCheck("CLI Version", checkCLIVersion)

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		result.State = result.Status.String()
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

func checkConfiguration(settings Settings) Result {
	raw := settings.APIURL()

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Result{
			Status:  StatusFail,
			Message: fmt.Sprintf("invalid api.url %q", raw),
			Detail:  "Use an http(s) URL, e.g. 'twsdash config set api.url http://localhost:8000'",
		}
	}

	loc, err := settings.Location()
	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: raw,
			Detail:  err.Error(),
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (times in %s)", raw, loc),
	}
}

func checkBackendHealth(ctx context.Context, backend Backend) Result {
	start := time.Now()

	health, err := backend.Health(ctx)
	elapsed := time.Since(start)

	if err != nil {
		apiErr := client.AsAPIError(err)

		return Result{
			Status:  StatusFail,
			Message: fmt.Sprintf("%s: %s", apiErr.Category, backend.BaseURL()),
			Detail:  apiErr.Message,
		}
	}

	if health.Status != "healthy" {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s reports %q (%dms)", backend.BaseURL(), health.Status, elapsed.Milliseconds()),
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s v%s (%dms)", backend.BaseURL(), health.Version, elapsed.Milliseconds()),
	}
}

func checkGateway(ctx context.Context, backend Backend) Result {
	status, err := backend.ConnectionStatus(ctx)
	if err != nil {
		apiErr := client.AsAPIError(err)

		return Result{
			Status:  StatusFail,
			Message: apiErr.Category,
			Detail:  apiErr.Message,
		}
	}

	if !status.Connected {
		detail := "Run 'twsdash connect' once TWS is running"
		if status.ErrorMessage != "" {
			detail = status.ErrorMessage
		}

		return Result{
			Status:  StatusWarn,
			Message: "Disconnected from " + status.Address(),
			Detail:  detail,
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (client %d)", status.Address(), status.ClientID),
	}
}

func checkCLIVersion(context.Context) Result {
	if buildinfo.Version == "dev" {
		return Result{
			Status:  StatusWarn,
			Message: "Development build",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("v%s (%s)", buildinfo.Version, buildinfo.Commit),
	}
}

// Reporter is the sink RenderResults writes to.
type Reporter interface {
	Success(format string, args ...any)
	Warning(format string, args ...any)
	Failure(format string, args ...any)
	Muted(format string, args ...any)
}

// RenderResults writes one aligned line per result, plus its detail.
func RenderResults(w Reporter, results []Result) {
	width := 0
	for _, r := range results {
		width = max(width, runewidth.StringWidth(r.Name))
	}

	for _, r := range results {
		name := runewidth.FillRight(r.Name, width+4)

		switch r.Status {
		case StatusPass:
			w.Success("%s%s", name, r.Message)
		case StatusWarn:
			w.Warning("%s%s", name, r.Message)
		default:
			w.Failure("%s%s", name, r.Message)
		}

		if r.Detail != "" {
			w.Muted("    %s", r.Detail)
		}
	}
}

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}
