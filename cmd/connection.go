package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wangtao2001/Muxify/internal/connection"
)

var connectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "Manage local and SSH connections",
}

var connectionAddCmd = &cobra.Command{
	Use:   "add <host>",
	Short: "Register an SSH connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, _ := cmd.Flags().GetString("user")
		port, _ := cmd.Flags().GetInt("port")
		name, _ := cmd.Flags().GetString("name")
		key, _ := cmd.Flags().GetString("key")
		passphrase, _ := cmd.Flags().GetString("passphrase")
		password, _ := cmd.Flags().GetString("password")

		cfg := connection.SSHConfig{
			Host:     args[0],
			Port:     port,
			Username: user,
		}
		if key != "" {
			cfg.AuthType = connection.AuthPrivateKey
			cfg.PrivateKeyPath = key
			cfg.Passphrase = passphrase
		} else {
			cfg.AuthType = connection.AuthPassword
			if password == "" {
				password, err = promptSecret(fmt.Sprintf("Password for %s@%s: ", user, args[0]))
				if err != nil {
					return err
				}
			}
			cfg.Password = password
		}

		conn, err := a.reg.Add(name, cfg)
		if err != nil {
			return fmt.Errorf("failed to add connection: %w", err)
		}
		fmt.Printf("Added connection %q (%s)\n", conn.DisplayName, conn.ID)
		return nil
	},
}

var connectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered connections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		for _, c := range a.reg.List() {
			if c.Kind == connection.KindLocal {
				fmt.Printf("%-38s %-7s %s\n", c.ID, c.Kind, c.DisplayName)
				continue
			}
			fmt.Printf("%-38s %-7s %s (%s:%d)\n", c.ID, c.Kind, c.DisplayName, c.SSH.Host, c.SSH.Port)
		}
		return nil
	},
}

var connectionRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an SSH connection and its stored secrets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.reg.Remove(args[0]); err != nil {
			return fmt.Errorf("failed to remove connection: %w", err)
		}
		fmt.Printf("Removed connection %q\n", args[0])
		return nil
	},
}

var connectionTestCmd = &cobra.Command{
	Use:   "test <id>",
	Short: "Probe a connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := a.ctx()
		defer cancel()

		if !a.reg.Test(ctx, args[0]) {
			return fmt.Errorf("connection %q is not reachable", args[0])
		}
		fmt.Printf("Connection %q is reachable\n", args[0])
		return nil
	},
}

// promptSecret reads a secret from stdin without echoing it when stdin is a
// terminal. Piped input falls back to a plain line read.
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	connectionAddCmd.Flags().StringP("user", "u", os.Getenv("USER"), "SSH username")
	connectionAddCmd.Flags().IntP("port", "p", 22, "SSH port")
	connectionAddCmd.Flags().StringP("name", "n", "", "Display name")
	connectionAddCmd.Flags().StringP("key", "k", "", "Path to private key (switches to key auth)")
	connectionAddCmd.Flags().String("passphrase", "", "Private key passphrase")
	connectionAddCmd.Flags().String("password", "", "SSH password (prompted if omitted)")

	connectionCmd.AddCommand(connectionAddCmd, connectionListCmd, connectionRemoveCmd, connectionTestCmd)
	rootCmd.AddCommand(connectionCmd)
}
