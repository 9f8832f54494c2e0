package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/devtycoon/forge/am"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Show and change DevTycoon configuration",
	Long: `am: show and change DevTycoon configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (DEVTYCOON_* prefix)
3. Project config (./am.toml or ./config.toml, searching up directories)
4. User config (~/.devtycoon/am.toml)
5. System config (/etc/devtycoon/config.toml)
6. Default values

Examples:
  devtycoon am show                        # Show current configuration
  devtycoon am show --format json          # Show configuration as JSON
  devtycoon am get raid.max_participants   # Get one value
  devtycoon am set raid.event_burst 60     # Write a value to the active file
  devtycoon am where                       # Show where each value comes from`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, raid.teardown_grace_ms)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a configuration value",
	Long: `Write one value into the highest-precedence config file in use, or
~/.devtycoon/am.toml when none exists. The previous file is kept as a
rotating .back1-.back3 backup. A running server picks the change up.`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	RunE:  runAmWhere,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Println(string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Printf("# DevTycoon configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		fmt.Printf("# DevTycoon configuration\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := am.GetViper()
	if !v.IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}

	fmt.Println(am.Get(key))
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	path := am.ConfigFileInUse()
	if path == "" {
		path = am.UserConfigPath()
	}
	if path == "" {
		return fmt.Errorf("no config file in use and no home directory for %s", "~/.devtycoon/am.toml")
	}

	if err := am.SetValue(path, args[0], args[1]); err != nil {
		return err
	}
	pterm.Success.Printfln("%s = %s (%s)", args[0], args[1], path)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return fmt.Errorf("failed to get config introspection: %w", err)
	}

	fmt.Println("Configuration cascade (later overrides earlier):")
	fmt.Println("  1. [DEFAULT]  Built-in defaults")
	fmt.Println("  2. [SYSTEM]   /etc/devtycoon/config.toml")
	fmt.Println("  3. [USER]     ~/.devtycoon/am.toml")
	fmt.Println("  4. [PROJECT]  ./am.toml or ./config.toml (searches up directories)")
	fmt.Println("  5. [ENV]      DEVTYCOON_* environment variables")
	fmt.Println()

	settings := append([]am.SettingInfo(nil), intro.Settings...)
	order := map[am.ConfigSource]int{
		am.SourceDefault:     0,
		am.SourceSystem:      1,
		am.SourceUser:        2,
		am.SourceProject:     3,
		am.SourceEnvironment: 4,
	}
	sort.SliceStable(settings, func(i, j int) bool {
		if order[settings[i].Source] != order[settings[j].Source] {
			return order[settings[i].Source] < order[settings[j].Source]
		}
		return settings[i].Key < settings[j].Key
	})

	rows := pterm.TableData{{"Key", "Value", "Source"}}
	for _, s := range settings {
		value := fmt.Sprintf("%v", s.Value)
		// Truncate long values
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		source := string(s.Source)
		if s.SourcePath != "" {
			source += " " + s.SourcePath
		}
		rows = append(rows, []string{s.Key, value, source})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
