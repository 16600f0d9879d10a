package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/talkincode/qsadmin/internal/utils"
	"github.com/talkincode/qsadmin/pkg/gateway"
	"github.com/talkincode/qsadmin/pkg/qsapi"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qsadmin",
	Short: "Operator console for a Quicksilver trading backend.",
	Long: `qsadmin lets operators inspect users, balances, orders and trades on a
remote Quicksilver trading service and perform privileged mutations:
create or delete users, adjust balances, cancel orders.

All server-side state stays on the remote service; this tool only talks to
its HTTP API.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.qsadmin.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("url", "u", "", "Base URL of the remote service (overrides config)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".qsadmin")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.qsadmin.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("api_url", "http://localhost:8080")
	viper.SetDefault("api_key", "")
	viper.SetDefault("api_secret", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

func baseURL(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("url"); u != "" {
		return u
	}
	return viper.GetString("api_url")
}

// apiClient builds the typed client from config and flags. Missing
// credentials are a configuration error, not a per-call one.
func apiClient(cmd *cobra.Command) *qsapi.Client {
	key := viper.GetString("api_key")
	secret := viper.GetString("api_secret")
	if key == "" || secret == "" {
		utils.Log.Fatal("api_key and api_secret must be set in ", viper.ConfigFileUsed(), " or the environment")
	}

	gw := gateway.New(baseURL(cmd), gateway.Credential{Key: key, Secret: secret})
	return qsapi.New(gw)
}
