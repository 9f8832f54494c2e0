package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devtycoon/forge/cmd/devtycoon/commands"
	"github.com/devtycoon/forge/logger"
)

var rootCmd = &cobra.Command{
	Use:   "devtycoon",
	Short: "DevTycoon - visual graph compiler and raid sync server",
	Long: `DevTycoon - visual graph compiler and raid sync server.

Compile node graphs built in the DevTycoon editor into JavaScript, Python,
Lua, C++, Rust, Go or SQL, preview them as a runnable page, and host the
real-time raid rooms players hack together in.

Available commands:
  compile   - Compile a graph document to source
  validate  - Check a graph document without compiling
  languages - List compile targets
  graph     - Manage saved graphs and installed files
  server    - Start the HTTP API and raid WebSocket server
  raid      - Follow raid events republished to NATS
  am        - Show and change configuration ("I am")

Examples:
  devtycoon compile game.json -l python    # Print Python source
  devtycoon compile game.yaml --runtime -o play.html
  devtycoon graph import game.json         # Save a graph to the database
  devtycoon server                         # Start the server`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.InitializeWithVerbosity(logger.JSONRequested(), verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.CompileCmd)
	rootCmd.AddCommand(commands.GraphCmd)
	rootCmd.AddCommand(commands.LanguagesCmd)
	rootCmd.AddCommand(commands.RaidCmd)
	rootCmd.AddCommand(commands.ServerCmd)
	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
