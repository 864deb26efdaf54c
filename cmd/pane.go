package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wangtao2001/Muxify/internal/tmux"
)

var paneCmd = &cobra.Command{
	Use:   "pane",
	Short: "Manage tmux panes",
}

var paneSplitCmd = &cobra.Command{
	Use:   "split <pane-id>",
	Short: "Split a pane (side by side; -v for top/bottom)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		vertical, _ := cmd.Flags().GetBool("vertical")
		if vertical {
			return a.svc.SplitPaneVertical(ctx, connectionID, args[0])
		}
		return a.svc.SplitPaneHorizontal(ctx, connectionID, args[0])
	},
}

var paneKillCmd = &cobra.Command{
	Use:   "kill <pane-id>...",
	Short: "Kill one or more panes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		if err := a.svc.KillPanes(ctx, connectionID, args); err != nil {
			return fmt.Errorf("failed to kill panes: %w", err)
		}
		fmt.Printf("Killed %d pane(s)\n", len(args))
		return nil
	},
}

var paneSelectCmd = &cobra.Command{
	Use:   "select <pane-id>",
	Short: "Make a pane the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		return a.svc.SelectPane(ctx, connectionID, args[0])
	},
}

var paneSwapCmd = &cobra.Command{
	Use:   "swap <pane-id> <pane-id>",
	Short: "Swap two panes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		return a.svc.SwapPane(ctx, connectionID, args[0], args[1])
	},
}

var paneResizeCmd = &cobra.Command{
	Use:   "resize <pane-id> <up|down|left|right> [amount]",
	Short: "Resize a pane",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var dir tmux.ResizeDirection
		switch args[1] {
		case "up":
			dir = tmux.ResizeUp
		case "down":
			dir = tmux.ResizeDown
		case "left":
			dir = tmux.ResizeLeft
		case "right":
			dir = tmux.ResizeRight
		default:
			return fmt.Errorf("invalid direction %q: use up, down, left, or right", args[1])
		}

		amount := 5
		if len(args) == 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid resize amount %q", args[2])
			}
			amount = n
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		return a.svc.ResizePane(ctx, connectionID, args[0], dir, amount)
	},
}

func init() {
	paneSplitCmd.Flags().BoolP("vertical", "v", false, "Split top over bottom instead of side by side")
	paneCmd.AddCommand(paneSplitCmd, paneKillCmd, paneSelectCmd, paneSwapCmd, paneResizeCmd)
	rootCmd.AddCommand(paneCmd)
}
