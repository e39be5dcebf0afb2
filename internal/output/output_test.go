package output

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/musher-dev/twsdash/internal/terminal"
	"github.com/musher-dev/twsdash/internal/testutil"
)

// testTerminal returns a non-TTY, colorless terminal.
func testTerminal() *terminal.Info {
	return &terminal.Info{Width: 80, Height: 24, NoColor: true}
}

func TestWriter_QuietMode(t *testing.T) {
	tests := []struct {
		name  string
		emit  func(w *Writer)
		quiet bool
		want  string
	}{
		{name: "print", emit: func(w *Writer) { w.Print("Hello, %s!", "world") }, want: "Hello, world!"},
		{name: "print quiet", emit: func(w *Writer) { w.Print("Hello") }, quiet: true, want: ""},
		{name: "println", emit: func(w *Writer) { w.Println("a", "b") }, want: "a b\n"},
		{name: "println quiet", emit: func(w *Writer) { w.Println("a") }, quiet: true, want: ""},
		{name: "success", emit: func(w *Writer) { w.Success("ok") }, want: CheckMark + " ok\n"},
		{name: "success quiet", emit: func(w *Writer) { w.Success("ok") }, quiet: true, want: ""},
		{name: "muted", emit: func(w *Writer) { w.Muted("dim %d", 1) }, want: "dim 1\n"},
		{name: "field", emit: func(w *Writer) { w.Field(6, "Host", "127.0.0.1") }, want: "  Host:   127.0.0.1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			w := NewWriter(&buf, &buf, testTerminal())
			w.Quiet = tt.quiet

			tt.emit(w)

			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriter_ErrorsGoToStderr(t *testing.T) {
	var outBuf, errBuf bytes.Buffer

	w := NewWriter(&outBuf, &errBuf, testTerminal())
	w.Quiet = true

	w.Error("Error: %s\n", "boom")
	w.Failure("Network Error")

	want := "Error: boom\n" + XMark + " Network Error\n"
	if got := errBuf.String(); got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}

	if outBuf.Len() > 0 {
		t.Errorf("stdout = %q, want empty", outBuf.String())
	}
}

func TestWriter_Write(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, testTerminal())

	n, err := w.Write([]byte("raw"))
	if err != nil || n != 3 {
		t.Fatalf("Write() = %d, %v", n, err)
	}

	w.Quiet = true

	n, err = w.Write([]byte("hidden"))
	if err != nil || n != 6 {
		t.Fatalf("quiet Write() = %d, %v", n, err)
	}

	if buf.String() != "raw" {
		t.Errorf("output = %q, want %q", buf.String(), "raw")
	}
}

func TestWriter_PrintJSONIgnoresQuiet(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, testTerminal())
	w.Quiet = true

	if err := w.PrintJSON(map[string]bool{"connected": true}); err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}

	if got, want := buf.String(), "{\n  \"connected\": true\n}\n"; got != want {
		t.Errorf("PrintJSON() = %q, want %q", got, want)
	}
}

func TestWriter_PrintJSONError(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, testTerminal())
	if err := w.PrintJSON(make(chan int)); err == nil {
		t.Fatal("PrintJSON(chan) should fail")
	}
}

func TestWriter_PrintYAML(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, testTerminal())

	err := w.PrintYAML(map[string]any{
		"api": map[string]string{"url": "http://localhost:8000"},
	})
	if err != nil {
		t.Fatalf("PrintYAML() error = %v", err)
	}

	if got, want := buf.String(), "api:\n  url: http://localhost:8000\n"; got != want {
		t.Errorf("PrintYAML() = %q, want %q", got, want)
	}
}

func TestWriter_Context(t *testing.T) {
	w := NewWriter(&bytes.Buffer{}, &bytes.Buffer{}, testTerminal())

	if got := FromContext(w.WithContext(context.Background())); got != w {
		t.Error("FromContext() did not return stored writer")
	}

	if FromContext(context.Background()) == nil {
		t.Error("FromContext() without writer should return a default writer")
	}
}

func TestWriter_SetNoColor(t *testing.T) {
	term := &terminal.Info{IsTTY: true, Width: 80, Height: 24}

	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, term)
	if !w.Terminal().ColorEnabled() {
		t.Fatal("TTY without NO_COLOR should enable color")
	}

	w.SetNoColor(true)

	if w.Terminal().ColorEnabled() {
		t.Error("SetNoColor(true) should disable color")
	}

	w.Success("plain")

	if got := buf.String(); strings.Contains(got, "\x1b[") {
		t.Errorf("output contains escape codes after SetNoColor: %q", got)
	}
}

func TestSpinner_DisabledFallback(t *testing.T) {
	tests := []struct {
		name string
		stop func(s *Spinner)
		want string
	}{
		{name: "success", stop: func(s *Spinner) { s.StopWithSuccess("Connected") }, want: "Probing... done\n" + CheckMark + " Connected\n"},
		{name: "warning", stop: func(s *Spinner) { s.StopWithWarning("") }, want: "Probing... warning\n"},
		{name: "plain stop", stop: func(s *Spinner) { s.Stop() }, want: "Probing... \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			w := NewWriter(&buf, &buf, testTerminal())

			s := w.Spinner("Probing")
			if !s.disabled {
				t.Fatal("spinner should be disabled without a TTY")
			}

			s.Start()
			tt.stop(s)

			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpinner_SilentInJSONMode(t *testing.T) {
	term := &terminal.Info{IsTTY: true, Width: 80, Height: 24}

	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, term)
	w.JSON = true

	s := w.Spinner("Probing")
	s.Start()
	s.StopWithFailure("boom")

	if buf.Len() != 0 {
		t.Errorf("spinner wrote %q in JSON mode, want nothing", buf.String())
	}
}

func TestPrintJSON_Golden(t *testing.T) {
	type probe struct {
		Connected bool   `json:"connected"`
		Host      string `json:"host"`
		Port      int    `json:"port"`
	}

	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, testTerminal())
	if err := w.PrintJSON(probe{Connected: true, Host: "127.0.0.1", Port: 7497}); err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}

	testutil.AssertGolden(t, buf.String(), "json_output.golden")
}

func TestStatusMessages_Golden(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, testTerminal())

	w.Success("Connected to TWS")
	w.Warning("Gateway not connected")
	w.Info("Backend at http://localhost:8000")
	w.Field(11, "Client ID", "1")
	w.Muted("Press q to quit")

	testutil.AssertGolden(t, buf.String(), "status_messages.golden")
}

func TestHint_WritesToErr(t *testing.T) {
	for _, quiet := range []bool{false, true} {
		var out, errOut bytes.Buffer

		w := NewWriter(&out, &errOut, testTerminal())
		w.Quiet = quiet
		w.JSON = true

		w.Hint("Start the backend")

		if out.Len() != 0 {
			t.Errorf("quiet=%v: Hint wrote %q to Out", quiet, out.String())
		}

		if got, want := errOut.String(), InfoMark+" Start the backend\n"; got != want {
			t.Errorf("quiet=%v: Err = %q, want %q", quiet, got, want)
		}
	}
}
