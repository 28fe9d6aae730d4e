package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/anupamd/picstore/clientcli"
)

var (
	version = "dev"

	cfgFile     string
	server      string
	profileName string
	userID      string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "picstore-cli",
	Version: version,
	Short:   "Client for the picstore upload service",
	Long: `Picstore CLI - client for the picstore upload service.

Uploads images with metadata, lists them with filters, and deletes them
by id. Connection settings come from profiles in ~/.picstore/config.yaml,
environment variables (PICSTORE_ENDPOINT, PICSTORE_USER_ID,
PICSTORE_PROFILE), or flags; flags win.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.picstore/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "server URL (default: http://localhost:8080, env: PICSTORE_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name (env: PICSTORE_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user id attached to uploads (env: PICSTORE_USER_ID)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getConfigPath resolves the config file path from flag, env, or default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if envPath := clientcli.ConfigPathFromEnv(); envPath != "" {
		return envPath
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from profile, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	if configPath != "" {
		fileCfg, err := clientcli.LoadConfigFile(configPath)
		if err == nil {
			profile, profileErr := fileCfg.GetProfile(name)
			if profileErr != nil {
				// A profile explicitly asked for must exist
				if name != "" {
					return nil, profileErr
				}
			} else {
				configs = append(configs, clientcli.ConfigFromProfile(profile))
			}
		} else if cfgFile != "" {
			// Only error if the user explicitly specified a config file
			return nil, err
		}
	}

	configs = append(configs, clientcli.ConfigFromEnv())
	configs = append(configs, &clientcli.Config{
		Endpoint: server,
		UserID:   userID,
	})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}
