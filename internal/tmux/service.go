// Package tmux derives session/window/pane state from a tmux server and
// performs mutations against it, locally or on a remote host, through the
// connection registry's executors. The hierarchy is rebuilt from tmux output
// on every query; tmux is the single source of truth.
package tmux

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wangtao2001/Muxify/internal/logging"
	"github.com/wangtao2001/Muxify/internal/shell"
)

// Colon-delimited -F formats. The trailing stderr redirection on each
// command makes a missing tmux server produce empty output instead of a
// diagnostic.
const (
	sessionFormat = "#{session_id}:#{session_name}:#{session_attached}:#{session_windows}:#{session_created}"
	windowFormat  = "#{window_id}:#{window_index}:#{window_name}:#{window_active}"
	paneFormat    = "#{pane_id}:#{pane_index}:#{pane_active}:#{pane_current_path}:#{pane_current_command}:#{pane_width}:#{pane_height}"
)

// treeFetchLimit caps concurrent per-session window/pane listings in GetTree.
const treeFetchLimit = 4

// ExecutorProvider hands out one executor per connection id. Satisfied by
// *connection.Registry.
type ExecutorProvider interface {
	GetExecutor(ctx context.Context, id string) (shell.Executor, error)
}

type Session struct {
	ID           string
	Name         string
	Attached     bool
	WindowCount  int
	CreatedAt    time.Time // zero when tmux omits the creation epoch
	ConnectionID string
}

type Window struct {
	ID           string
	Index        int
	Name         string
	Active       bool
	SessionName  string
	ConnectionID string
}

type Pane struct {
	ID             string // opaque tmux handle, e.g. "%3"
	Index          int
	Active         bool
	CurrentPath    string
	CurrentCommand string
	Width          int
	Height         int
	WindowID       string
	SessionName    string
	ConnectionID   string
}

type WindowNode struct {
	Window
	Panes []Pane
}

type SessionNode struct {
	Session
	Windows []WindowNode
}

// Tree is one full session→window→pane snapshot for a connection.
type Tree struct {
	ConnectionID string
	Sessions     []SessionNode
}

// Service issues tmux commands through the registry's executors and parses
// their output into typed records.
type Service struct {
	execs    ExecutorProvider
	confPath string
	log      *slog.Logger
}

// NewService creates a Service. tmuxConfigPath is the configuration file the
// mouse-mode toggle edits; empty defaults to ~/.tmux.conf.
func NewService(execs ExecutorProvider, tmuxConfigPath string) *Service {
	if tmuxConfigPath == "" {
		tmuxConfigPath = "~/.tmux.conf"
	}
	return &Service{
		execs:    execs,
		confPath: tmuxConfigPath,
		log:      logging.ForComponent(logging.CompTmux),
	}
}

func (s *Service) exec(ctx context.Context, connID, command string) (shell.Result, error) {
	ex, err := s.execs.GetExecutor(ctx, connID)
	if err != nil {
		return shell.Result{}, err
	}
	return ex.Execute(ctx, command)
}

// IsAvailable reports whether the tmux binary exists on the connection's
// host.
func (s *Service) IsAvailable(ctx context.Context, connID string) (bool, error) {
	res, err := s.exec(ctx, connID, "command -v tmux")
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0 && strings.TrimSpace(res.Stdout) != "", nil
}

// ListSessions returns all sessions on the connection's tmux server. A
// missing server is a normal state and yields an empty list.
func (s *Service) ListSessions(ctx context.Context, connID string) ([]Session, error) {
	res, err := s.exec(ctx, connID, fmt.Sprintf("tmux list-sessions -F '%s' 2>/dev/null", sessionFormat))
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, nil
	}
	return parseSessions(res.Stdout, connID), nil
}

// ListWindows returns the windows of one session.
func (s *Service) ListWindows(ctx context.Context, connID, sessionName string) ([]Window, error) {
	res, err := s.exec(ctx, connID, fmt.Sprintf("tmux list-windows -t %s -F '%s' 2>/dev/null",
		shellQuote(sessionName), windowFormat))
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, nil
	}
	return parseWindows(res.Stdout, sessionName, connID), nil
}

// ListPanes returns the panes of one window, addressed positionally by
// window index.
func (s *Service) ListPanes(ctx context.Context, connID, sessionName string, windowIndex int) ([]Pane, error) {
	target := fmt.Sprintf("%s:%d", sessionName, windowIndex)
	res, err := s.exec(ctx, connID, fmt.Sprintf("tmux list-panes -t %s -F '%s' 2>/dev/null",
		shellQuote(target), paneFormat))
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, nil
	}
	return parsePanes(res.Stdout, sessionName, connID), nil
}

// GetTree composes the three listings depth-first. Window and pane fetches
// are independent reads, so sessions are walked concurrently.
func (s *Service) GetTree(ctx context.Context, connID string) (*Tree, error) {
	sessions, err := s.ListSessions(ctx, connID)
	if err != nil {
		return nil, err
	}

	nodes := make([]SessionNode, len(sessions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(treeFetchLimit)
	for i, sess := range sessions {
		i, sess := i, sess
		g.Go(func() error {
			windows, err := s.ListWindows(gctx, connID, sess.Name)
			if err != nil {
				return err
			}
			wnodes := make([]WindowNode, len(windows))
			for j, w := range windows {
				panes, err := s.ListPanes(gctx, connID, sess.Name, w.Index)
				if err != nil {
					return err
				}
				for k := range panes {
					panes[k].WindowID = w.ID
				}
				wnodes[j] = WindowNode{Window: w, Panes: panes}
			}
			nodes[i] = SessionNode{Session: sess, Windows: wnodes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Tree{ConnectionID: connID, Sessions: nodes}, nil
}

// parseSessions parses list-sessions output. Lines with fewer than 4 fields
// are dropped; the creation epoch is optional.
func parseSessions(output, connID string) []Session {
	var sessions []Session
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) < 4 {
			continue
		}
		windows, err := strconv.Atoi(parts[3])
		if err != nil {
			continue
		}
		sess := Session{
			ID:           parts[0],
			Name:         parts[1],
			Attached:     parts[2] == "1",
			WindowCount:  windows,
			ConnectionID: connID,
		}
		if len(parts) > 4 {
			if epoch, err := strconv.ParseInt(parts[4], 10, 64); err == nil {
				sess.CreatedAt = time.Unix(epoch, 0)
			}
		}
		sessions = append(sessions, sess)
	}
	return sessions
}

func parseWindows(output, sessionName, connID string) []Window {
	var windows []Window
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) < 4 {
			continue
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		windows = append(windows, Window{
			ID:           parts[0],
			Index:        index,
			Name:         parts[2],
			Active:       parts[3] == "1",
			SessionName:  sessionName,
			ConnectionID: connID,
		})
	}
	return windows
}

func parsePanes(output, sessionName, connID string) []Pane {
	var panes []Pane
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) < 7 {
			continue
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		path := parts[3]
		if path == "" {
			path = "~"
		}
		width, _ := strconv.Atoi(parts[5])
		height, _ := strconv.Atoi(parts[6])
		panes = append(panes, Pane{
			ID:             parts[0],
			Index:          index,
			Active:         parts[2] == "1",
			CurrentPath:    path,
			CurrentCommand: parts[4],
			Width:          width,
			Height:         height,
			SessionName:    sessionName,
			ConnectionID:   connID,
		})
	}
	return panes
}
