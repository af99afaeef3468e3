package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zach-sndr/twitcanva/domain/connection"
	"github.com/zach-sndr/twitcanva/domain/core/entities"
)

var (
	heading = color.New(color.FgHiCyan, color.Bold)
	subtle  = color.New(color.FgHiBlack)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed)
	warn    = color.New(color.FgYellow)
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <workflow>",
		Short: "Summarize a stored workflow and audit its connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer()
			if err != nil {
				return err
			}
			defer container.Shutdown()

			doc, err := container.Store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			canvas, viewport, err := doc.Materialize(container.DomainConfig)
			if err != nil {
				return err
			}

			heading.Printf("%s\n", canvas.Title())
			subtle.Printf("  %d nodes, %d connections, %d groups\n\n",
				canvas.NodeCount(), len(canvas.Edges()), len(canvas.Groups()))

			byType := make(map[string]int)
			statuses := make(map[entities.GenerationStatus]int)
			for _, node := range canvas.Nodes() {
				byType[node.Type().String()]++
				statuses[node.Status()]++
			}

			types := make([]string, 0, len(byType))
			for t := range byType {
				types = append(types, t)
			}
			sort.Strings(types)
			for _, t := range types {
				fmt.Printf("  %-18s %d\n", t, byType[t])
			}
			fmt.Println()

			if n := statuses[entities.StatusLoading]; n > 0 {
				warn.Printf("  %d node(s) were saved mid-generation\n", n)
			}
			if n := statuses[entities.StatusError]; n > 0 {
				bad.Printf("  %d node(s) in error state\n", n)
			}

			violations := 0
			for _, edge := range canvas.Edges() {
				parent, perr := canvas.Node(edge.ParentID)
				child, cerr := canvas.Node(edge.ChildID)
				if perr != nil || cerr != nil {
					continue
				}
				if !connection.IsValidConnection(parent.Type(), child.Type()) {
					violations++
					bad.Printf("  illegal connection: %s -> %s (%s -> %s)\n",
						parent.ID().String()[:8], child.ID().String()[:8],
						parent.Type(), child.Type())
				}
			}
			if violations == 0 {
				good.Println("  all connections legal")
			}

			subtle.Printf("\n  viewport offset (%.1f, %.1f) zoom %.2f\n",
				viewport.X(), viewport.Y(), viewport.Zoom())
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored workflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer()
			if err != nil {
				return err
			}
			defer container.Shutdown()

			names, err := container.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				subtle.Println("no workflows stored")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}
