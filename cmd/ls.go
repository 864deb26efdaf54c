package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Show the session/window/pane tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		ok, err := a.svc.IsAvailable(ctx, connectionID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("tmux not found on connection %q", connectionID)
		}

		tree, err := a.svc.GetTree(ctx, connectionID)
		if err != nil {
			return err
		}
		if len(tree.Sessions) == 0 {
			fmt.Println("No tmux sessions.")
			return nil
		}

		for _, sess := range tree.Sessions {
			suffix := ""
			if sess.Attached {
				suffix = " (attached)"
			}
			fmt.Printf("%s%s\n", sess.Name, suffix)
			for _, w := range sess.Windows {
				marker := " "
				if w.Active {
					marker = "*"
				}
				fmt.Printf(" %s %d: %s\n", marker, w.Index, w.Name)
				for _, p := range w.Panes {
					marker = " "
					if p.Active {
						marker = "*"
					}
					fmt.Printf("   %s %s [%dx%d] %s  %s\n",
						marker, p.ID, p.Width, p.Height, p.CurrentCommand, p.CurrentPath)
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
