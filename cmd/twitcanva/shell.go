package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
	"github.com/zach-sndr/twitcanva/infrastructure/di"
)

func shellCmd() *cobra.Command {
	var load string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive workflow editing session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer()
			if err != nil {
				return err
			}
			defer container.Shutdown()

			if load != "" {
				doc, err := container.Store.Load(cmd.Context(), load)
				if err != nil {
					return err
				}
				canvas, viewport, err := doc.Materialize(container.DomainConfig)
				if err != nil {
					return err
				}
				container.Workspace.Load(canvas, viewport)
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "twitcanva> ",
				HistoryLimit:    500,
				InterruptPrompt: "^C",
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			sh := &shell{container: container, ctx: cmd.Context()}
			heading.Println("twitcanva shell. Type 'help' for commands, 'exit' to leave.")

			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt {
					continue
				}
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}

				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				fields := strings.Fields(line)
				if fields[0] == "exit" || fields[0] == "quit" {
					return nil
				}
				if err := sh.execute(fields[0], fields[1:]); err != nil {
					bad.Println(err)
				}
			}
		},
	}

	cmd.Flags().StringVar(&load, "load", "", "Workflow to load on startup")
	return cmd
}

type shell struct {
	container *di.Container
	ctx       context.Context
}

func (s *shell) execute(command string, args []string) error {
	ws := s.container.Workspace
	switch command {
	case "help":
		s.printHelp()
		return nil
	case "nodes":
		return s.printNodes()
	case "add":
		return s.addNode(args)
	case "move":
		return s.moveNode(args)
	case "prompt":
		return s.setPrompt(args)
	case "connect":
		return s.connect(args)
	case "disconnect":
		return s.disconnect(args)
	case "delete":
		return s.deleteNodes(args)
	case "select":
		return s.selectNodes(args)
	case "group":
		_, err := ws.GroupSelection(strings.Join(args, " "))
		return err
	case "ungroup":
		return ws.UngroupSelection()
	case "copy":
		fmt.Printf("copied %d node(s)\n", ws.CopySelection())
		return nil
	case "paste":
		pasted, err := ws.Paste()
		if err == nil {
			fmt.Printf("pasted %d node(s)\n", len(pasted))
		}
		return err
	case "duplicate":
		dups, err := ws.DuplicateSelection()
		if err == nil {
			fmt.Printf("duplicated %d node(s)\n", len(dups))
		}
		return err
	case "undo":
		if !ws.Undo() {
			subtle.Println("nothing to undo")
		}
		return nil
	case "redo":
		if !ws.Redo() {
			subtle.Println("nothing to redo")
		}
		return nil
	case "generate":
		return s.generate(args)
	case "title":
		if len(args) == 0 {
			fmt.Println(ws.Title())
			return nil
		}
		ws.SetTitle(strings.Join(args, " "))
		return nil
	case "save":
		return s.save(args)
	case "load":
		return s.load(args)
	default:
		return fmt.Errorf("unknown command %q, try 'help'", command)
	}
}

func (s *shell) printHelp() {
	fmt.Print(`commands:
  nodes                       list nodes
  add <type> [x y]            create a node (text, image, video, ...)
  move <id> <x> <y>           reposition a node
  prompt <id> <text...>       set a node's prompt
  connect <parent> <child>    connect two nodes
  disconnect <parent> <child> remove a connection
  delete <id...>              delete nodes
  select <id...>              select nodes
  group [label]               group the selection
  ungroup                     dissolve groups in the selection
  copy / paste / duplicate    clipboard operations on the selection
  undo / redo                 step through history
  generate <id>               dispatch generation for a node
  title [text...]             show or set the workflow title
  save <name>                 persist the workflow
  load <name>                 replace the workflow from storage
  exit                        leave the shell
IDs may be abbreviated to a unique prefix.
`)
}

func (s *shell) printNodes() error {
	canvas := s.container.Workspace.Canvas()
	for _, node := range canvas.Nodes() {
		marker := " "
		if s.container.Workspace.IsSelected(node.ID()) {
			marker = "*"
		}
		fmt.Printf("%s %s  %-18s (%.0f, %.0f)  %s",
			marker, node.ID().String()[:8], node.Type(),
			node.Position().X(), node.Position().Y(), node.Status())
		if len(node.ParentIDs()) > 0 {
			var parents []string
			for _, pid := range node.ParentIDs() {
				parents = append(parents, pid.String()[:8])
			}
			subtle.Printf("  <- %s", strings.Join(parents, ","))
		}
		fmt.Println()
	}
	return nil
}

func (s *shell) addNode(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: add <type> [x y]")
	}
	nodeType, err := valueobjects.ParseNodeType(args[0])
	if err != nil {
		return err
	}

	x, y := 0.0, 0.0
	if len(args) >= 3 {
		if x, err = strconv.ParseFloat(args[1], 64); err != nil {
			return fmt.Errorf("invalid x coordinate %q", args[1])
		}
		if y, err = strconv.ParseFloat(args[2], 64); err != nil {
			return fmt.Errorf("invalid y coordinate %q", args[2])
		}
	}
	pos, err := valueobjects.NewPoint(x, y)
	if err != nil {
		return err
	}

	node, err := s.container.Workspace.CreateNode(nodeType, pos, nil)
	if err != nil {
		return err
	}
	good.Printf("created %s %s\n", node.Type(), node.ID().String()[:8])
	return nil
}

func (s *shell) moveNode(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: move <id> <x> <y>")
	}
	id, err := s.resolveNode(args[0])
	if err != nil {
		return err
	}
	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid x coordinate %q", args[1])
	}
	y, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid y coordinate %q", args[2])
	}
	pos, err := valueobjects.NewPoint(x, y)
	if err != nil {
		return err
	}
	s.container.Workspace.MoveNode(id, pos)
	return nil
}

func (s *shell) setPrompt(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: prompt <id> <text...>")
	}
	id, err := s.resolveNode(args[0])
	if err != nil {
		return err
	}
	s.container.Workspace.SetPrompt(id, strings.Join(args[1:], " "))
	return nil
}

func (s *shell) connect(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: connect <parent> <child>")
	}
	parent, err := s.resolveNode(args[0])
	if err != nil {
		return err
	}
	child, err := s.resolveNode(args[1])
	if err != nil {
		return err
	}
	return s.container.Workspace.Connect(parent, child)
}

func (s *shell) disconnect(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: disconnect <parent> <child>")
	}
	parent, err := s.resolveNode(args[0])
	if err != nil {
		return err
	}
	child, err := s.resolveNode(args[1])
	if err != nil {
		return err
	}
	return s.container.Workspace.Disconnect(parent, child)
}

func (s *shell) deleteNodes(args []string) error {
	ids, err := s.resolveNodes(args)
	if err != nil {
		return err
	}
	return s.container.Workspace.DeleteNodes(ids)
}

func (s *shell) selectNodes(args []string) error {
	ids, err := s.resolveNodes(args)
	if err != nil {
		return err
	}
	s.container.Workspace.SelectNodes(ids)
	return nil
}

func (s *shell) generate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: generate <id>")
	}
	id, err := s.resolveNode(args[0])
	if err != nil {
		return err
	}
	if err := s.container.Generation.Dispatch(s.ctx, id); err != nil {
		return err
	}
	good.Printf("generation dispatched for %s\n", id.String()[:8])
	return nil
}

func (s *shell) save(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: save <name>")
	}
	ws := s.container.Workspace
	doc := captureWorkspace(ws)
	if err := s.container.Store.Save(s.ctx, args[0], doc); err != nil {
		return err
	}
	good.Printf("saved %q\n", args[0])
	return nil
}

func (s *shell) load(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load <name>")
	}
	doc, err := s.container.Store.Load(s.ctx, args[0])
	if err != nil {
		return err
	}
	canvas, viewport, err := doc.Materialize(s.container.DomainConfig)
	if err != nil {
		return err
	}
	s.container.Workspace.Load(canvas, viewport)
	good.Printf("loaded %q: %d node(s)\n", args[0], canvas.NodeCount())
	return nil
}

func (s *shell) resolveNodes(args []string) ([]valueobjects.NodeID, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expected at least one node ID")
	}
	ids := make([]valueobjects.NodeID, 0, len(args))
	for _, arg := range args {
		id, err := s.resolveNode(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// resolveNode matches a full ID or a unique prefix against the canvas.
func (s *shell) resolveNode(prefix string) (valueobjects.NodeID, error) {
	var match valueobjects.NodeID
	count := 0
	for _, node := range s.container.Workspace.Canvas().Nodes() {
		if strings.HasPrefix(node.ID().String(), prefix) {
			match = node.ID()
			count++
		}
	}
	switch count {
	case 0:
		return valueobjects.NodeID{}, fmt.Errorf("no node matches %q", prefix)
	case 1:
		return match, nil
	default:
		return valueobjects.NodeID{}, fmt.Errorf("%q is ambiguous (%d matches)", prefix, count)
	}
}
