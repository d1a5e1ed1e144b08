/*
Copyright 2025 AF360 Bank Authors.

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

	"github.com/af360bank/financeiro"
	"github.com/af360bank/financeiro/config"
	"github.com/af360bank/financeiro/database"
	"github.com/af360bank/financeiro/internal/notification"
)

// Financeiro represents the CLI application, encapsulating the root Cobra command.
type Financeiro struct {
	cmd *cobra.Command
}

// financeiroInstance holds the service instance and its configuration, shared
// by all subcommands.
type financeiroInstance struct {
	financeiro *financeiro.Financeiro
	cnf        *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error using Logrus.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun sets up the configuration and initializes the service before running
// any command.
func preRun(app *financeiroInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("financeiro.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newFinanceiro, err := setupFinanceiro(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.financeiro = newFinanceiro
		app.cnf = cnf

		return nil
	}
}

// setupFinanceiro creates the service from the configuration, connecting the
// data source first.
func setupFinanceiro(cfg *config.Configuration) (*financeiro.Financeiro, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newFinanceiro, err := financeiro.NewFinanceiro(db)
	if err != nil {
		return nil, fmt.Errorf("error creating financeiro: %v", err)
	}
	return newFinanceiro, nil
}

// NewCLI creates the command-line interface for the application.
func NewCLI() *Financeiro {
	var configFile string
	b := &financeiroInstance{}

	var rootCmd = &cobra.Command{
		Use:   "financeiro",
		Short: "Bank statement ingestion service",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./financeiro.json", "Configuration file for the service")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(migrateCommands(b))

	return &Financeiro{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during execution.
func (w Financeiro) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// main is the entry point for the application.
func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
