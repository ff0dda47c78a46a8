package cmd

import (
	"github.com/skuid/aliasql"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// config holds the flags and ALIASQL_* environment variables
var config *viper.Viper = aliasql.NewViper()

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:               "aliasql",
	Short:             "Run catalog queries against a database to exercise alias binding",
	SilenceUsage:      true,
	PersistentPreRunE: initLogger,
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "Debug Mode Switch")
	RootCmd.PersistentFlags().String(aliasql.ConfigDriver, "", "The database driver, postgres or sqlite")
	RootCmd.PersistentFlags().String(aliasql.ConfigDSN, "", "The connection string. A temporary sqlite database is used when empty.")
	RootCmd.PersistentFlags().String(aliasql.ConfigServiceName, "", "The DataDog service name. Statements are traced when set.")
	RootCmd.PersistentFlags().Int(aliasql.ConfigMaxOpenConns, 8, "The max number of open connections")

	cobra.OnInitialize(initConfig)
}

// initConfig binds the flags, so a flag that is set wins over the environment
func initConfig() {
	if err := config.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		zap.L().Fatal("encountered an error on viper flag binding", zap.Error(err))
	}
}

func initLogger(cmd *cobra.Command, args []string) error {
	var (
		logger *zap.Logger
		err    error
	)
	if config.GetBool("debug") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}
