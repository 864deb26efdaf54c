package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mouseCmd = &cobra.Command{
	Use:   "mouse <on|off|status>",
	Short: "Toggle tmux mouse mode on a connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		switch args[0] {
		case "on":
			if err := a.svc.EnableMouse(ctx, connectionID); err != nil {
				return err
			}
			fmt.Println("Mouse mode enabled.")
		case "off":
			if err := a.svc.DisableMouse(ctx, connectionID); err != nil {
				return err
			}
			fmt.Println("Mouse mode disabled.")
		case "status":
			on, err := a.svc.MouseEnabled(ctx, connectionID)
			if err != nil {
				return err
			}
			if on {
				fmt.Println("Mouse mode is on.")
			} else {
				fmt.Println("Mouse mode is off.")
			}
		default:
			return fmt.Errorf("unknown argument %q: use on, off, or status", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mouseCmd)
}
