package tmux

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// mutate runs one tmux command and converts a non-zero exit into an
// operation error carrying the captured stderr.
func (s *Service) mutate(ctx context.Context, connID, command, action string) error {
	res, err := s.exec(ctx, connID, command)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if res.ExitCode != 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = fmt.Sprintf("tmux exited with code %d", res.ExitCode)
		}
		return fmt.Errorf("%s: %s", action, msg)
	}
	return nil
}

// CreateSession creates a detached session. With an empty name tmux assigns
// one, and the most recently listed session is returned; with a requested
// name the refreshed listing is searched and a nil session (no error) means
// tmux did not report it.
func (s *Service) CreateSession(ctx context.Context, connID, name string) (*Session, error) {
	command := "tmux new-session -d"
	if name != "" {
		command += " -s " + shellQuote(name)
	}
	if err := s.mutate(ctx, connID, command, "create session"); err != nil {
		return nil, err
	}

	sessions, err := s.ListSessions(ctx, connID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		if len(sessions) == 0 {
			return nil, nil
		}
		return &sessions[len(sessions)-1], nil
	}
	for i := range sessions {
		if sessions[i].Name == name {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

func (s *Service) KillSession(ctx context.Context, connID, name string) error {
	return s.mutate(ctx, connID,
		"tmux kill-session -t "+shellQuote(name),
		fmt.Sprintf("kill session %q", name))
}

func (s *Service) RenameSession(ctx context.Context, connID, name, newName string) error {
	return s.mutate(ctx, connID,
		fmt.Sprintf("tmux rename-session -t %s %s", shellQuote(name), shellQuote(newName)),
		fmt.Sprintf("rename session %q", name))
}

// CreateWindow adds a window to a session; name is optional.
func (s *Service) CreateWindow(ctx context.Context, connID, sessionName, name string) error {
	command := "tmux new-window -t " + shellQuote(sessionName)
	if name != "" {
		command += " -n " + shellQuote(name)
	}
	return s.mutate(ctx, connID, command,
		fmt.Sprintf("create window in %q", sessionName))
}

func (s *Service) KillWindow(ctx context.Context, connID, sessionName string, index int) error {
	return s.mutate(ctx, connID,
		"tmux kill-window -t "+windowTarget(sessionName, index),
		fmt.Sprintf("kill window %s:%d", sessionName, index))
}

func (s *Service) RenameWindow(ctx context.Context, connID, sessionName string, index int, newName string) error {
	return s.mutate(ctx, connID,
		fmt.Sprintf("tmux rename-window -t %s %s", windowTarget(sessionName, index), shellQuote(newName)),
		fmt.Sprintf("rename window %s:%d", sessionName, index))
}

func (s *Service) SelectWindow(ctx context.Context, connID, sessionName string, index int) error {
	return s.mutate(ctx, connID,
		"tmux select-window -t "+windowTarget(sessionName, index),
		fmt.Sprintf("select window %s:%d", sessionName, index))
}

// SplitPaneHorizontal splits a pane side by side.
func (s *Service) SplitPaneHorizontal(ctx context.Context, connID, paneID string) error {
	return s.splitPane(ctx, connID, paneID, "-h")
}

// SplitPaneVertical splits a pane top over bottom.
func (s *Service) SplitPaneVertical(ctx context.Context, connID, paneID string) error {
	return s.splitPane(ctx, connID, paneID, "-v")
}

func (s *Service) splitPane(ctx context.Context, connID, paneID, flag string) error {
	return s.mutate(ctx, connID,
		fmt.Sprintf("tmux split-window %s -t %s", flag, shellQuote(paneID)),
		fmt.Sprintf("split pane %s", paneID))
}

func (s *Service) KillPane(ctx context.Context, connID, paneID string) error {
	return s.mutate(ctx, connID,
		"tmux kill-pane -t "+shellQuote(paneID),
		fmt.Sprintf("kill pane %s", paneID))
}

func (s *Service) SelectPane(ctx context.Context, connID, paneID string) error {
	return s.mutate(ctx, connID,
		"tmux select-pane -t "+shellQuote(paneID),
		fmt.Sprintf("select pane %s", paneID))
}

func (s *Service) SwapPane(ctx context.Context, connID, srcPaneID, dstPaneID string) error {
	return s.mutate(ctx, connID,
		fmt.Sprintf("tmux swap-pane -s %s -t %s", shellQuote(srcPaneID), shellQuote(dstPaneID)),
		fmt.Sprintf("swap pane %s with %s", srcPaneID, dstPaneID))
}

type ResizeDirection string

const (
	ResizeUp    ResizeDirection = "-U"
	ResizeDown  ResizeDirection = "-D"
	ResizeLeft  ResizeDirection = "-L"
	ResizeRight ResizeDirection = "-R"
)

func (s *Service) ResizePane(ctx context.Context, connID, paneID string, dir ResizeDirection, amount int) error {
	switch dir {
	case ResizeUp, ResizeDown, ResizeLeft, ResizeRight:
	default:
		return fmt.Errorf("resize pane %s: invalid direction %q", paneID, dir)
	}
	if amount <= 0 {
		amount = 1
	}
	return s.mutate(ctx, connID,
		fmt.Sprintf("tmux resize-pane %s %d -t %s", dir, amount, shellQuote(paneID)),
		fmt.Sprintf("resize pane %s", paneID))
}

// KillSessions kills several sessions. Sessions are addressed by name, which
// tmux never reassigns, so no ordering is needed.
func (s *Service) KillSessions(ctx context.Context, connID string, names []string) error {
	var errs []error
	for _, name := range names {
		errs = append(errs, s.KillSession(ctx, connID, name))
	}
	return errors.Join(errs...)
}

// KillWindows kills several windows of one session, in descending index
// order: tmux renumbers remaining windows after each kill, so ascending
// deletion would invalidate the queued indices.
func (s *Service) KillWindows(ctx context.Context, connID, sessionName string, indices []int) error {
	sorted := slices.Clone(indices)
	slices.SortFunc(sorted, func(a, b int) int { return b - a })

	var errs []error
	for _, index := range sorted {
		errs = append(errs, s.KillWindow(ctx, connID, sessionName, index))
	}
	return errors.Join(errs...)
}

// KillPanes kills several panes, ordered by the trailing numeric suffix of
// the opaque pane id, descending, for the same renumbering reason as
// KillWindows.
func (s *Service) KillPanes(ctx context.Context, connID string, paneIDs []string) error {
	sorted := slices.Clone(paneIDs)
	slices.SortFunc(sorted, func(a, b string) int { return paneSuffix(b) - paneSuffix(a) })

	var errs []error
	for _, id := range sorted {
		errs = append(errs, s.KillPane(ctx, connID, id))
	}
	return errors.Join(errs...)
}

// paneSuffix extracts the trailing number from a pane id like "%12".
// Returns -1 when there is none.
func paneSuffix(id string) int {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil {
		return -1
	}
	return n
}
