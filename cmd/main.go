/*
Copyright 2024 Arigo Pay Authors.

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

	arigopay "github.com/arigohub24/arigo-pay"
	"github.com/arigohub24/arigo-pay/config"
	"github.com/arigohub24/arigo-pay/database"
	"github.com/arigohub24/arigo-pay/internal/notification"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ArigoPay represents the CLI application, encapsulating the root Cobra command.
type ArigoPay struct {
	cmd *cobra.Command
}

// engineInstance holds the running engine and its configuration, shared by
// the server, worker, and migration commands.
type engineInstance struct {
	engine *arigopay.Arigopay
	cnf    *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the engine before any
// command executes.
func preRun(app *engineInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("arigopay.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newEngine, err := setupEngine(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.engine = newEngine
		app.cnf = cnf

		return nil
	}
}

// setupEngine creates a new engine instance backed by the configured data
// source.
func setupEngine(cfg *config.Configuration) (*arigopay.Arigopay, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newEngine, err := arigopay.NewArigopay(db)
	if err != nil {
		return nil, fmt.Errorf("error creating engine: %v", err)
	}
	return newEngine, nil
}

// NewCLI creates the command-line interface for the Arigo Pay wizard engine.
func NewCLI() *ArigoPay {
	var configFile string
	b := &engineInstance{}

	var rootCmd = &cobra.Command{
		Use:   "arigopay",
		Short: "Transactional wizard engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./arigopay.json", "Configuration file for the wizard engine")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))
	rootCmd.AddCommand(migrateCommands(b))
	rootCmd.AddCommand(configCommands())

	return &ArigoPay{cmd: rootCmd}
}

func (w ArigoPay) executeCLI() {
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
