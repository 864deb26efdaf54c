package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Manage tmux windows",
}

var windowNewCmd = &cobra.Command{
	Use:   "new <session> [name]",
	Short: "Create a window in a session",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		if err := a.svc.CreateWindow(ctx, connectionID, args[0], name); err != nil {
			return err
		}
		fmt.Printf("Created window in session %q\n", args[0])
		return nil
	},
}

var windowKillCmd = &cobra.Command{
	Use:   "kill <session> <index>...",
	Short: "Kill one or more windows by index",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		indices, err := parseIndices(args[1:])
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		if err := a.svc.KillWindows(ctx, connectionID, args[0], indices); err != nil {
			return fmt.Errorf("failed to kill windows: %w", err)
		}
		fmt.Printf("Killed %d window(s) in session %q\n", len(indices), args[0])
		return nil
	},
}

var windowRenameCmd = &cobra.Command{
	Use:   "rename <session> <index> <new-name>",
	Short: "Rename a window",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid window index %q", args[1])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		if err := a.svc.RenameWindow(ctx, connectionID, args[0], index, args[2]); err != nil {
			return err
		}
		fmt.Printf("Renamed window %s:%d to %q\n", args[0], index, args[2])
		return nil
	},
}

var windowSelectCmd = &cobra.Command{
	Use:   "select <session> <index>",
	Short: "Make a window the active one",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid window index %q", args[1])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		return a.svc.SelectWindow(ctx, connectionID, args[0], index)
	},
}

func parseIndices(args []string) ([]int, error) {
	indices := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid window index %q", arg)
		}
		indices = append(indices, n)
	}
	return indices, nil
}

func init() {
	windowCmd.AddCommand(windowNewCmd, windowKillCmd, windowRenameCmd, windowSelectCmd)
	rootCmd.AddCommand(windowCmd)
}
