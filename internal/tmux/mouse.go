package tmux

import (
	"context"
	"fmt"
	"strings"
)

// mouseLine is the configuration line the toggle manages.
const mouseLine = "set -g mouse on"

// MouseEnabled reads the live global mouse option.
func (s *Service) MouseEnabled(ctx context.Context, connID string) (bool, error) {
	res, err := s.exec(ctx, connID, "tmux show-options -g mouse 2>/dev/null")
	if err != nil {
		return false, err
	}
	return strings.Contains(res.Stdout, "on"), nil
}

// EnableMouse turns mouse mode on: the config line is appended only when an
// identical line is not already present, the config is reloaded best-effort,
// and the live global option is always set so a running server picks up the
// change even when the reload fails.
func (s *Service) EnableMouse(ctx context.Context, connID string) error {
	conf := confArg(s.confPath)

	probe := fmt.Sprintf("grep -qsxF %s %s", shellQuote(mouseLine), conf)
	res, err := s.exec(ctx, connID, probe)
	if err != nil {
		return fmt.Errorf("enable mouse mode: %w", err)
	}
	if res.ExitCode != 0 {
		appendCmd := fmt.Sprintf("echo %s >> %s", shellQuote(mouseLine), conf)
		if err := s.mutate(ctx, connID, appendCmd, "update tmux config"); err != nil {
			return err
		}
	}

	s.reloadConfig(ctx, connID)
	return s.mutate(ctx, connID, "tmux set-option -g mouse on", "enable mouse mode")
}

// DisableMouse removes matching config lines and clears the live option.
// The file edit is best-effort; a missing or read-only config must not stop
// the live toggle.
func (s *Service) DisableMouse(ctx context.Context, connID string) error {
	conf := confArg(s.confPath)

	del := fmt.Sprintf("sed -i '/^set -g mouse on$/d' %s 2>/dev/null", conf)
	if res, err := s.exec(ctx, connID, del); err != nil {
		return fmt.Errorf("disable mouse mode: %w", err)
	} else if res.ExitCode != 0 {
		s.log.Debug("tmux config edit skipped", "connection", connID, "stderr", res.Stderr)
	}

	s.reloadConfig(ctx, connID)
	return s.mutate(ctx, connID, "tmux set-option -g mouse off", "disable mouse mode")
}

// reloadConfig asks tmux to re-source the config file. Failures are
// tolerated: the caller always sets the live option afterwards.
func (s *Service) reloadConfig(ctx context.Context, connID string) {
	command := fmt.Sprintf("tmux source-file %s 2>/dev/null", confArg(s.confPath))
	if res, err := s.exec(ctx, connID, command); err != nil {
		s.log.Debug("tmux config reload failed", "connection", connID, "error", err)
	} else if res.ExitCode != 0 {
		s.log.Debug("tmux config reload failed", "connection", connID, "stderr", res.Stderr)
	}
}
