// Command aliasql exercises alias binding against the product catalog.
package main

import (
	"os"

	"github.com/skuid/aliasql/cmd/aliasql/cmd"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if err := cmd.RootCmd.Execute(); err != nil {
		zap.L().Error("encountered an error with root cobra command", zap.Error(err))
		os.Exit(-1)
	}
}
