package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"mockinterview/internal/config"
	"mockinterview/internal/logger"
)

const (
	app = "mockinterview"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "mockinterview runs adaptive mock interviews over HTTP or in the terminal",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is mockinterview.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("loading .env: %v", err)
	}

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless it was named explicitly.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			log.Fatal(err)
		}
	}
}

// setup builds the logger and loads the configuration for a command
func setup() (*zap.Logger, *config.Config, *config.Secrets) {
	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	secrets, err := config.LoadSecrets()
	if err != nil {
		lg.Fatal("getting secrets", zap.Error(err))
	}

	if f := viper.ConfigFileUsed(); f != "" {
		lg.Debug("config file loaded", zap.String("path", f))
	}
	return lg, cfg, secrets
}
