package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/musher-dev/twsdash/internal/config"
	clierrors "github.com/musher-dev/twsdash/internal/errors"
	"github.com/musher-dev/twsdash/internal/output"
	"github.com/musher-dev/twsdash/internal/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View and modify twsdash configuration settings.`,
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		Long:  `Display every configuration setting with its effective value, after defaults, the config file, and TWSDASH_* environment overrides are applied.`,
		Example: `  twsdash config list
  twsdash config list --json
  twsdash config list --yaml`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			settings := config.Load().All()

			switch {
			case out.JSON:
				return out.PrintJSON(settings)
			case asYAML:
				return out.PrintYAML(settings)
			}

			if file, err := paths.ConfigFile(); err == nil {
				out.Muted("# %s", file)
			}

			for _, key := range flattenKeys("", settings) {
				out.Print("%s = %v\n", key.name, key.value)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Output in YAML format")

	return cmd
}

type settingKey struct {
	name  string
	value any
}

// flattenKeys turns viper's nested settings into sorted dotted keys.
func flattenKeys(prefix string, settings map[string]any) []settingKey {
	var keys []settingKey

	for name, value := range settings {
		full := name
		if prefix != "" {
			full = prefix + "." + name
		}

		if nested, ok := value.(map[string]any); ok {
			keys = append(keys, flattenKeys(full, nested)...)
			continue
		}

		keys = append(keys, settingKey{name: full, value: value})
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].name < keys[j].name })

	return keys
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Get a configuration value",
		Long:    `Retrieve and display the effective value of a single configuration key.`,
		Example: `  twsdash config get api.url`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key := args[0]
			value := config.Load().Get(key)

			if out.JSON {
				return out.PrintJSON(map[string]any{key: value})
			}

			if value == nil {
				out.Muted("%s is not set", key)
				return nil
			}

			out.Print("%s = %v\n", key, value)

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  `Set a configuration key to the given value and persist it to the config file. api.url must be an http(s) URL and display.timezone an IANA zone name.`,
		Example: `  twsdash config set api.url http://localhost:8000
  twsdash config set display.timezone America/New_York`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			key, value, err := normalizeSetting(args[0], args[1])
			if err != nil {
				return err
			}

			if err := config.Load().Set(key, value); err != nil {
				return clierrors.ConfigFailed("set config", err)
			}

			out.Success("Set %s = %s", key, value)

			return nil
		},
	}
}

// normalizeSetting validates the known keys before they are persisted.
func normalizeSetting(key, value string) (string, string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch key {
	case config.KeyAPIURL:
		normalized, err := validateAPIURL(value)
		if err != nil {
			return "", "", err
		}

		return key, normalized, nil
	case config.KeyDisplayTimezone:
		if value != "" {
			if _, err := time.LoadLocation(value); err != nil {
				return "", "", clierrors.InvalidTimezone(value, err)
			}
		}

		return key, value, nil
	case "":
		return "", "", clierrors.New(clierrors.ExitUsage, "Configuration key must not be empty")
	default:
		return "", "", clierrors.New(clierrors.ExitUsage, fmt.Sprintf("Unknown configuration key %q", key)).
			WithHint(fmt.Sprintf("Known keys: %s, %s", config.KeyAPIURL, config.KeyDisplayTimezone))
	}
}
