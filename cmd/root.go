package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/skillquest/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "skillquest",
	Short: "Terminal client for the SkillQuest game",
	Long:  "SkillQuest: complete quests, earn coins and spend them in the shop, from the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides SKILLQUEST_DB env var)")
	pf.String("config", "", "Path to YAML config file (default $XDG_CONFIG_HOME/skillquest/config.yaml)")
	pf.String("env-file", ".env", "Path to a dotenv file loaded before resolving the environment")
	pf.String("api-url", "", "Base URL of the SkillQuest API (overrides SKILLQUEST_API_URL)")
	pf.String("lang", "", "Task language shown on the map: en or ru (overrides SKILLQUEST_LANG)")
	pf.Duration("timeout", 0, "Per-request timeout (overrides SKILLQUEST_TIMEOUT)")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(shopCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then SKILLQUEST_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
