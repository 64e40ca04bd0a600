/*
Copyright 2024 ClearSettle Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/clearsettle/settle"
	"github.com/clearsettle/settle/config"
	"github.com/clearsettle/settle/database"
	"github.com/clearsettle/settle/internal/notification"
)

// settleCLI wraps the root Cobra command.
type settleCLI struct {
	cmd *cobra.Command
}

// settleInstance carries the initialized engine and configuration into
// the subcommands.
type settleInstance struct {
	settle *settle.Settle
	cnf    *config.Configuration
	logger *logrus.Logger
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the engine before any
// subcommand runs.
func preRun(app *settleInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("settle.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		logger := logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})

		engine, err := setupSettle(cnf, logger)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.settle = engine
		app.cnf = cnf
		app.logger = logger

		return nil
	}
}

func setupSettle(cfg *config.Configuration, logger *logrus.Logger) (*settle.Settle, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	engine, err := settle.NewSettle(db, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating settlement engine: %v", err)
	}
	return engine, nil
}

func NewCLI() *settleCLI {
	var configFile string
	b := &settleInstance{}

	var rootCmd = &cobra.Command{
		Use:   "settle",
		Short: "Merchant settlement engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./settle.json", "Configuration file for the settlement engine")
	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))
	rootCmd.AddCommand(migrateCommands(b))

	return &settleCLI{cmd: rootCmd}
}

func (w settleCLI) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
