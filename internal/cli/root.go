package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	apiURL     string
	lang       string
	demo       bool
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	envConfig := os.Getenv("EXPO_ADMIN_CONFIG")
	if envConfig == "" {
		envConfig = defaultConfigPath()
	}
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "expo-admin",
		Short:         "Admin console for exhibition quiz consoles",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", os.Getenv("EXPO_ADMIN_API_URL"), "persistence API base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.lang, "lang", os.Getenv("EXPO_ADMIN_LANG"), "display language, e.g. en or de")
	cmd.PersistentFlags().BoolVar(&opts.demo, "demo", false, "use an in-memory demo backend instead of the API")

	cmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newStatusCmd(opts),
		newResourcesCmd(opts),
		newListCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newActionCmd(opts),
		newDashboardCmd(opts),
		newTUICmd(opts),
		newMockAPICmd(opts),
	)
	return cmd
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "expo-admin", "config.yaml")
	}
	return "config.yaml"
}
