// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/foliva/docengine/pkg/app"
)

var (
	debug bool

	rootCmd = &cobra.Command{
		Use:   "docengine",
		Short: "A command line tool for the document engine",
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			a := app.NewApp(configPath)

			return a.Run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose config debug output")
	serveCmd.Flags().String("config", "", "path to config file")
	rootCmd.AddCommand(serveCmd)

	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
