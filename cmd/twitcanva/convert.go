package main

import (
	"github.com/spf13/cobra"

	"github.com/zach-sndr/twitcanva/infrastructure/persistence/workflow"
)

func convertCmd() *cobra.Command {
	var (
		fromDir  string
		toDB     string
		fromDB   string
		toDir    string
		nameOnly string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Copy workflows between file and SQLite storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer()
			if err != nil {
				return err
			}
			defer container.Shutdown()
			logger := container.Logger

			var src, dst workflow.Store
			switch {
			case fromDir != "" && toDB != "":
				if src, err = workflow.NewFileStore(fromDir, logger); err != nil {
					return err
				}
				sqlite, err := workflow.NewSQLiteStore(toDB, logger)
				if err != nil {
					return err
				}
				defer sqlite.Close()
				dst = sqlite
			case fromDB != "" && toDir != "":
				sqlite, err := workflow.NewSQLiteStore(fromDB, logger)
				if err != nil {
					return err
				}
				defer sqlite.Close()
				src = sqlite
				if dst, err = workflow.NewFileStore(toDir, logger); err != nil {
					return err
				}
			default:
				return cmd.Help()
			}

			names, err := src.List(cmd.Context())
			if err != nil {
				return err
			}
			copied := 0
			for _, name := range names {
				if nameOnly != "" && name != nameOnly {
					continue
				}
				doc, err := src.Load(cmd.Context(), name)
				if err != nil {
					bad.Printf("skipping %s: %v\n", name, err)
					continue
				}
				if err := dst.Save(cmd.Context(), name, doc); err != nil {
					return err
				}
				copied++
			}
			good.Printf("copied %d workflow(s)\n", copied)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromDir, "from-dir", "", "Source workflow directory")
	cmd.Flags().StringVar(&toDB, "to-db", "", "Destination SQLite database path")
	cmd.Flags().StringVar(&fromDB, "from-db", "", "Source SQLite database path")
	cmd.Flags().StringVar(&toDir, "to-dir", "", "Destination workflow directory")
	cmd.Flags().StringVar(&nameOnly, "name", "", "Copy only the named workflow")

	return cmd
}
