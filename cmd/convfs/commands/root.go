// Package commands wires convfs's cobra subcommands together: a root.go
// holding persistent flags and cobra.OnInitialize, one file per
// subcommand.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "convfs",
	Short: "Browse conversation trees as a filesystem and shell",
	Long: `convfs organizes a collection of conversation trees as a virtual
filesystem and a POSIX-flavored shell: navigate, search, filter, tag, and
pipe conversation data with cd, ls, cat, grep, find, and friends.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/convfs/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "SQLite store path (default: config Store.Path)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		viper.AddConfigPath(home + "/.config/convfs")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("CONVFS")
	viper.AutomaticEnv()
	viper.ReadInConfig()
}
