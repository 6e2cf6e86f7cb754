package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/reposnap/internal/cli"
	"github.com/temirov/reposnap/internal/utils"
)

// main is the entry point for the reposnap command.
func main() {
	loggerLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(loggerLevel)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()

	applicationExecutionError := cli.Execute(cli.Dependencies{Logger: loggerInstance, LoggerLevel: &loggerLevel})
	if applicationExecutionError != nil {
		loggerInstance.Error(utils.ApplicationExecutionFailedMessage, zap.Error(applicationExecutionError))
		loggerInstance.Sync()
		os.Exit(cli.ExitCode(applicationExecutionError))
	}
}
