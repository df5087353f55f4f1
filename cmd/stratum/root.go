package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/stratum/internal/version"
	"github.com/arthur-debert/stratum/pkg/logging"
)

var (
	verbosity int
	factsPath string

	rootCmd = &cobra.Command{
		Use:   "stratum",
		Short: "A deterministic filesystem-image layer compiler",
		Long: `stratum compiles declarative image features (install a file, add a user,
remove a path, create directories and symlinks) into a validated, ordered
application plan. Features are unordered as authored; stratum discovers a
valid order, detects contradictory or circularly dependent features, and
verifies every precondition before anything touches a filesystem.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Verbosity flag for logging
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	// Facts database override; empty falls back to config / XDG data dir
	rootCmd.PersistentFlags().StringVar(&factsPath, "facts-db", "", "Facts database path (default from config)")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(factsCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version information for stratum`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stratum version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(stratum completion bash)

Zsh:
  $ stratum completion zsh > "${fpath[1]}/_stratum"

Fish:
  $ stratum completion fish | source

PowerShell:
  PS> stratum completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}
