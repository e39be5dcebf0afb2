package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/musher-dev/twsdash/internal/client"
	"github.com/musher-dev/twsdash/internal/config"
	clierrors "github.com/musher-dev/twsdash/internal/errors"
	"github.com/musher-dev/twsdash/internal/output"
	"github.com/musher-dev/twsdash/internal/panel"
	"github.com/musher-dev/twsdash/internal/prompt"
)

func newPanelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "panel",
		Short: "Open the interactive status panel",
		Long: `Open a full-screen panel that checks the gateway connection on start
and requests the current TWS time on demand. Press t (or enter) to request
the time, r to refresh the connection status, and q to quit.`,
		Example: `  twsdash panel
  twsdash panel --api-url http://10.0.0.5:8000`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			if !out.Terminal().InteractiveEnabled() {
				return clierrors.NotInteractive()
			}

			cfg := config.Load()

			api, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			loc, err := displayLocation(cfg)
			if err != nil {
				return err
			}

			err = panel.Run(ctx, api, panel.WithLocation(loc), panel.WithWidth(out.Terminal().Width))
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}

			return err
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the gateway connection status",
		Long: `Ask the backend whether it holds a session with TWS and print the
host, port, client ID and connection time. Exits with status 5 when the
backend is reachable but TWS is not connected.`,
		Example: `  twsdash status
  twsdash status --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			cfg := config.Load()

			api, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			loc, err := displayLocation(cfg)
			if err != nil {
				return err
			}

			var probe panel.Probe[client.ConnectionStatus]

			seq := probe.Begin()

			spin := out.Spinner("Checking connection")
			spin.Start()

			status, err := api.ConnectionStatus(ctx)

			spin.Stop()
			probe.Resolve(seq, status, err)

			if probe.Err != nil {
				if out.JSON {
					_ = out.PrintJSON(probe.Err)
				}

				return backendError(api, err)
			}

			if out.JSON {
				if err := out.PrintJSON(status); err != nil {
					return err
				}
			} else if err := panel.WriteConnection(out, &probe, loc); err != nil {
				return err
			}

			if !status.Connected {
				return clierrors.GatewayDisconnected(status.Address(), status.ErrorMessage)
			}

			return nil
		},
	}
}

func newTimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "time",
		Short: "Request the current time from TWS",
		Long: `Ask the gateway for its current time through the backend and print
the raw timestamp, its local rendering, and the TWS server version. Exits
with status 5 when the backend answers but TWS could not.`,
		Example: `  twsdash time
  twsdash time --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			cfg := config.Load()

			api, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			loc, err := displayLocation(cfg)
			if err != nil {
				return err
			}

			var state panel.State

			seq := state.Time.Begin()

			spin := out.Spinner(panel.ControlLoading)
			spin.Start()

			result, err := api.CurrentTime(ctx)

			spin.Stop()
			state.Time.Resolve(seq, result, err)

			if state.Time.Err != nil {
				if out.JSON {
					_ = out.PrintJSON(state.Time.Err)
				}

				return backendError(api, err)
			}

			if out.JSON {
				if err := out.PrintJSON(result); err != nil {
					return err
				}
			} else if err := panel.WriteResult(out, &state, loc); err != nil {
				return err
			}

			if !result.Success {
				return clierrors.GatewayRequestFailed(result.ErrorMessage)
			}

			return nil
		},
	}
}

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Ask the backend to connect to TWS",
		Long: `Ask the backend to open its API session with TWS using the host, port
and client ID it was started with.`,
		Example: `  twsdash connect`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGatewayAction(cmd, "Connecting to TWS", (*client.Client).Connect)
		},
	}
}

func newDisconnectCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Ask the backend to disconnect from TWS",
		Long: `Ask the backend to close its API session with TWS. On a terminal the
command asks for confirmation first; pass --yes to skip it.`,
		Example: `  twsdash disconnect
  twsdash disconnect --yes`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if p := prompt.New(out, cmd.InOrStdin()); !yes && p.CanPrompt() {
				ok, err := p.Confirm("Disconnect the backend from TWS?", false)
				if err != nil && !prompt.IsCanceled(err) {
					return err
				}

				if !ok {
					out.Muted("Disconnect canceled")
					return nil
				}
			}

			return runGatewayAction(cmd, "Disconnecting from TWS", (*client.Client).Disconnect)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

type gatewayAction func(*client.Client, context.Context) (*client.ActionResult, error)

func runGatewayAction(cmd *cobra.Command, label string, action gatewayAction) error {
	ctx := cmd.Context()
	out := output.FromContext(ctx)

	api, err := newAPIClient(config.Load())
	if err != nil {
		return err
	}

	spin := out.Spinner(label)
	spin.Start()

	result, err := action(api, ctx)
	if err != nil {
		spin.Stop()
		return backendError(api, err)
	}

	if !result.Success {
		spin.Stop()

		if out.JSON {
			_ = out.PrintJSON(result)
		}

		return clierrors.GatewayRequestFailed(result.Message)
	}

	if out.JSON {
		spin.Stop()
		return out.PrintJSON(result)
	}

	spin.StopWithSuccess(result.Message)

	return nil
}
