package main

import (
	"github.com/spf13/cobra"

	"github.com/zach-sndr/twitcanva/application/workspace"
	"github.com/zach-sndr/twitcanva/infrastructure/config"
	"github.com/zach-sndr/twitcanva/infrastructure/di"
	"github.com/zach-sndr/twitcanva/infrastructure/persistence/workflow"
)

var version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:           "twitcanva",
	Short:         "twitcanva is a node-based media workflow canvas",
	Long:          "twitcanva manages node-based AI media workflows: inspect, convert, and edit workflow documents from the terminal.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(
		inspectCmd(),
		convertCmd(),
		shellCmd(),
		listCmd(),
	)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func buildContainer() (*di.Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return di.InitializeContainer(cfg)
}

func captureWorkspace(ws *workspace.Workspace) *workflow.Document {
	return workflow.Capture(ws.Canvas(), ws.Viewport())
}
