package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/soyeahso/agentdeck/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and edit ~/.agentdeck/config.yaml",
		Long:  "Keys are dotted paths such as console.baseUrl or llm.fallbackModels.",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print a value or a whole section",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, raw, err := openRaw(args[0])
				if err != nil {
					return err
				}
				val, ok := config.GetValueAtPath(raw, key)
				if !ok {
					return fmt.Errorf("%s is not set", args[0])
				}
				return printValue(cmd.OutOrStdout(), val)
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a value; YAML scalars and [a, b] lists are typed",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, raw, err := openRaw(args[0])
				if err != nil {
					return err
				}
				value := parseValue(args[1])
				if isSecretPath(key) {
					value = args[1]
				}
				config.SetValueAtPath(raw, key, value)
				if err := config.SaveRaw(paths.Config, raw); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", args[0], value)
				warnInvalid(cmd.ErrOrStderr())
				return nil
			},
		},
		&cobra.Command{
			Use:   "unset <key>",
			Short: "Remove a value so the default applies",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, raw, err := openRaw(args[0])
				if err != nil {
					return err
				}
				if !config.UnsetValueAtPath(raw, key) {
					return fmt.Errorf("%s is not set", args[0])
				}
				if err := config.SaveRaw(paths.Config, raw); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), paths.Config)
			},
		},
	)
	return cmd
}

// openRaw parses a dotted key and loads the config file as a generic map.
func openRaw(key string) ([]string, map[string]any, error) {
	path, err := config.ParseConfigPath(key)
	if err != nil {
		return nil, nil, err
	}
	raw, err := config.LoadRaw(paths.Config)
	if err != nil {
		return nil, nil, err
	}
	return path, raw, nil
}

// warnInvalid reloads the saved file and reports validation issues without
// failing the edit, so a half-finished change can be completed.
func warnInvalid(w io.Writer) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
		return
	}
	for _, issue := range config.Validate(&cfg) {
		fmt.Fprintf(w, "warning: %s: %s\n", issue.Path, issue.Message)
	}
}

func printValue(out io.Writer, v any) error {
	switch v.(type) {
	case map[string]any, []any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		_, err := fmt.Fprintln(out, v)
		return err
	}
}

// parseValue decodes s as a YAML scalar or flow list. Anything else,
// including mappings, stays a plain string.
func parseValue(s string) any {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	switch v.(type) {
	case bool, int, float64, []any:
		return v
	default:
		return s
	}
}

// isSecretPath reports whether a key holds a credential that must stay a
// string even when it looks numeric.
func isSecretPath(path []string) bool {
	last := strings.ToLower(path[len(path)-1])
	return last == "token" || last == "apikey"
}
