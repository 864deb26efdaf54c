package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage tmux sessions",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a detached session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		sess, err := a.svc.CreateSession(ctx, connectionID, name)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		if sess == nil {
			return fmt.Errorf("session %q did not appear after creation", name)
		}
		fmt.Printf("Created session %q\n", sess.Name)
		return nil
	},
}

var sessionKillCmd = &cobra.Command{
	Use:   "kill <name>...",
	Short: "Kill one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force && !confirm(fmt.Sprintf("Kill %d session(s)?", len(args))) {
			fmt.Println("Cancelled.")
			return nil
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		if err := a.svc.KillSessions(ctx, connectionID, args); err != nil {
			return fmt.Errorf("failed to kill sessions: %w", err)
		}
		fmt.Printf("Killed %d session(s)\n", len(args))
		return nil
	},
}

var sessionRenameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		if err := a.svc.RenameSession(ctx, connectionID, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Renamed session %q to %q\n", args[0], args[1])
		return nil
	},
}

// confirm asks for a y/N answer on stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
}

func init() {
	sessionKillCmd.Flags().BoolP("force", "f", false, "Skip confirmation")
	sessionCmd.AddCommand(sessionNewCmd, sessionKillCmd, sessionRenameCmd)
	rootCmd.AddCommand(sessionCmd)
}
