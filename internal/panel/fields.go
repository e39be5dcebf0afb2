package panel

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/musher-dev/twsdash/internal/client"
)

// Panel titles and control labels.
const (
	TitleConnection     = "TWS Connection"
	TitleTimeSuccess    = "Time Retrieved Successfully"
	TitleGatewayFailure = "TWS Request Failed"
	TitleClientError    = "Connection Error"

	ControlIdle    = "Get TWS Time"
	ControlLoading = "Requesting Time..."
)

type field struct {
	Label string
	Value string
}

type section struct {
	Kind   ResultKind
	Title  string
	Fields []field
}

func connectionFields(status *client.ConnectionStatus, loc *time.Location) []field {
	state := "Disconnected"
	if status.Connected {
		state = "Connected"
	}

	fields := []field{
		{"Status", state},
		{"Host", status.Address()},
		{"Client ID", strconv.Itoa(status.ClientID)},
	}

	if !status.ConnectionTime.IsZero() {
		fields = append(fields, field{"Connected at", status.ConnectionTime.Local(loc)})
	}

	if status.ErrorMessage != "" {
		fields = append(fields, field{"Gateway", status.ErrorMessage})
	}

	return fields
}

func timeFields(result *client.TimeResult, loc *time.Location) []field {
	var fields []field

	if !result.CurrentTime.IsZero() {
		fields = append(fields,
			field{"Current Time", result.CurrentTime.String()},
			field{"Local Time", result.CurrentTime.Local(loc)},
		)
	}

	// A zero version is treated like an absent one.
	if result.ServerVersion != nil && *result.ServerVersion != 0 {
		fields = append(fields, field{"Server Version", strconv.Itoa(*result.ServerVersion)})
	}

	if !result.ConnectionTime.IsZero() {
		fields = append(fields, field{"Connection Time", result.ConnectionTime.Local(loc)})
	}

	return fields
}

func clientErrorFields(apiErr *client.APIError) []field {
	fields := []field{
		{"Error", apiErr.Category},
		{"Message", apiErr.Message},
	}

	if apiErr.HasStatus() {
		fields = append(fields, field{"Status", strconv.Itoa(apiErr.Status)})
	}

	return fields
}

// resultSection builds the result panel chosen by State.ResultPanel.
func resultSection(s *State, loc *time.Location) (section, bool) {
	switch kind := s.ResultPanel(); kind {
	case ResultTimeSuccess:
		return section{kind, TitleTimeSuccess, timeFields(s.Time.Result, loc)}, true
	case ResultGatewayFailure:
		var fields []field
		if s.Time.Result.ErrorMessage != "" {
			fields = append(fields, field{"Error", s.Time.Result.ErrorMessage})
		}

		return section{kind, TitleGatewayFailure, fields}, true
	case ResultClientError:
		return section{kind, TitleClientError, clientErrorFields(s.Time.Err)}, true
	default:
		return section{}, false
	}
}

func labelWidth(fields []field) int {
	width := 0
	for _, f := range fields {
		width = max(width, runewidth.StringWidth(f.Label)+1)
	}

	return width
}

func writeFields(b *strings.Builder, indent string, fields []field) {
	width := labelWidth(fields)
	for _, f := range fields {
		b.WriteString(indent)
		b.WriteString(runewidth.FillRight(f.Label+":", width))
		b.WriteString(" ")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}
}

// WriteConnection writes the connection block as plain text.
func WriteConnection(w io.Writer, probe *Probe[client.ConnectionStatus], loc *time.Location) error {
	var b strings.Builder

	b.WriteString(TitleConnection + "\n")

	if probe.Result != nil {
		writeFields(&b, "  ", connectionFields(probe.Result, loc))
	}

	if probe.Err != nil {
		writeFields(&b, "  ", []field{{"Error", probe.Err.Message}})
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// WriteResult writes the current result panel as plain text. Nothing is
// written when no time probe has completed.
func WriteResult(w io.Writer, s *State, loc *time.Location) error {
	sec, ok := resultSection(s, loc)
	if !ok {
		return nil
	}

	var b strings.Builder

	b.WriteString(sec.Title + "\n")
	writeFields(&b, "  ", sec.Fields)

	_, err := io.WriteString(w, b.String())

	return err
}
