package main

import (
	"github.com/spf13/cobra"

	"github.com/musher-dev/twsdash/internal/config"
	"github.com/musher-dev/twsdash/internal/doctor"
	"github.com/musher-dev/twsdash/internal/output"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long: `Run diagnostic checks to find out why the panel cannot show the TWS time.

Checks performed:
  - Configuration: api.url and display.timezone are usable
  - Backend Health: the backend answers /health
  - Gateway Connection: the backend holds a session with TWS
  - CLI Version: release or development build`,
		Example: `  twsdash doctor
  twsdash doctor --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			cfg := config.Load()

			// The Configuration check reports a bad api.url, so the client
			// is built from the raw value here.
			results := doctor.New(cfg, clientFor(cfg)).Run(ctx)

			if out.JSON {
				return out.PrintJSON(results)
			}

			renderDoctor(out, results)

			return nil
		},
	}
}

func renderDoctor(out *output.Writer, results []doctor.Result) {
	out.Println("twsdash doctor")
	out.Println("==============")
	out.Println()

	doctor.RenderResults(out, results)

	passed, failed, warnings := doctor.Summary(results)

	out.Println()
	out.Print("%d passed", passed)

	if failed > 0 {
		out.Print(", %d failed", failed)
	}

	if warnings > 0 {
		out.Print(", %d warning(s)", warnings)
	}

	out.Println()
}
