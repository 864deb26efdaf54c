package tmux

import (
	"context"
	"strings"
	"testing"

	"github.com/wangtao2001/Muxify/internal/shell"
)

func TestMutationErrorCarriesStderr(t *testing.T) {
	svc, _ := newTestService(func(command string) shell.Result {
		if strings.Contains(command, "kill-session") {
			return shell.Result{ExitCode: 1, Stderr: "can't find session: ghost\n"}
		}
		return shell.Result{}
	})

	err := svc.KillSession(context.Background(), "local", "ghost")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "can't find session: ghost") {
		t.Errorf("error should carry stderr, got %q", err)
	}
}

func TestMutationErrorGenericWhenStderrEmpty(t *testing.T) {
	svc, _ := newTestService(func(string) shell.Result {
		return shell.Result{ExitCode: 2}
	})

	err := svc.KillPane(context.Background(), "local", "%1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "exited with code 2") {
		t.Errorf("error should fall back to a generic message, got %q", err)
	}
}

func TestCreateSessionAutoName(t *testing.T) {
	svc, _ := newTestService(func(command string) shell.Result {
		if strings.Contains(command, "list-sessions") {
			return shell.Result{Stdout: "$0:0:0:1:1700000000\n$1:3:0:1:1700000300"}
		}
		return shell.Result{}
	})

	sess, err := svc.CreateSession(context.Background(), "local", "")
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	if sess == nil {
		t.Fatal("expected a session")
	}
	// tmux auto-assigned the name; the most recently listed one wins
	if sess.Name != "3" {
		t.Errorf("session name = %q, want %q", sess.Name, "3")
	}
}

func TestCreateSessionNamed(t *testing.T) {
	svc, ex := newTestService(func(command string) shell.Result {
		if strings.Contains(command, "list-sessions") {
			return shell.Result{Stdout: "$0:main:0:1:1700000000\n$1:work:0:1:1700000300"}
		}
		return shell.Result{}
	})

	sess, err := svc.CreateSession(context.Background(), "local", "work")
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	if sess == nil || sess.Name != "work" {
		t.Fatalf("got %+v, want session named work", sess)
	}

	if !strings.Contains(ex.issued()[0], "-s 'work'") {
		t.Errorf("new-session should carry the requested name: %v", ex.issued())
	}
}

func TestCreateSessionNamedMissingIsSoftFailure(t *testing.T) {
	svc, _ := newTestService(func(command string) shell.Result {
		if strings.Contains(command, "list-sessions") {
			return shell.Result{Stdout: "$0:other:0:1:1700000000"}
		}
		return shell.Result{}
	})

	sess, err := svc.CreateSession(context.Background(), "local", "work")
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	if sess != nil {
		t.Fatalf("missing session should yield nil, got %+v", sess)
	}
}

func TestKillPanesDescendingSuffixOrder(t *testing.T) {
	svc, ex := newTestService(nil)

	if err := svc.KillPanes(context.Background(), "local", []string{"%3", "%1", "%2"}); err != nil {
		t.Fatalf("KillPanes error: %v", err)
	}

	var targets []string
	for _, cmd := range ex.issued() {
		i := strings.Index(cmd, "-t ")
		targets = append(targets, strings.Trim(cmd[i+3:], "'"))
	}
	want := []string{"%3", "%2", "%1"}
	if len(targets) != len(want) {
		t.Fatalf("issued %d kills, want %d", len(targets), len(want))
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Fatalf("kill order = %v, want %v", targets, want)
		}
	}
}

func TestKillWindowsDescendingIndexOrder(t *testing.T) {
	svc, ex := newTestService(nil)

	if err := svc.KillWindows(context.Background(), "local", "main", []int{0, 2, 1}); err != nil {
		t.Fatalf("KillWindows error: %v", err)
	}

	issued := ex.issued()
	want := []string{"'main:2'", "'main:1'", "'main:0'"}
	if len(issued) != len(want) {
		t.Fatalf("issued %d kills, want %d", len(issued), len(want))
	}
	for i, cmd := range issued {
		if !strings.Contains(cmd, want[i]) {
			t.Fatalf("kill order wrong at %d: %v", i, issued)
		}
	}
}

func TestPaneSuffix(t *testing.T) {
	tests := []struct {
		id   string
		want int
	}{
		{"%0", 0},
		{"%12", 12},
		{"%3", 3},
		{"nope", -1},
		{"%", -1},
	}
	for _, tt := range tests {
		if got := paneSuffix(tt.id); got != tt.want {
			t.Errorf("paneSuffix(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestResizePaneValidatesDirection(t *testing.T) {
	svc, ex := newTestService(nil)

	if err := svc.ResizePane(context.Background(), "local", "%1", "sideways", 5); err == nil {
		t.Fatal("expected error for invalid direction")
	}
	if len(ex.issued()) != 0 {
		t.Errorf("no command should be issued on invalid direction")
	}

	if err := svc.ResizePane(context.Background(), "local", "%1", ResizeRight, 5); err != nil {
		t.Fatalf("ResizePane error: %v", err)
	}
	if got := ex.issued()[0]; !strings.Contains(got, "resize-pane -R 5 -t '%1'") {
		t.Errorf("resize command wrong: %q", got)
	}
}

func TestWindowOperationsQuoteSessionIndexTarget(t *testing.T) {
	svc, ex := newTestService(nil)

	if err := svc.SelectWindow(context.Background(), "local", "my work", 2); err != nil {
		t.Fatalf("SelectWindow error: %v", err)
	}
	if err := svc.KillWindow(context.Background(), "local", "my work", 0); err != nil {
		t.Fatalf("KillWindow error: %v", err)
	}
	if err := svc.RenameWindow(context.Background(), "local", "my work", 1, "logs"); err != nil {
		t.Fatalf("RenameWindow error: %v", err)
	}

	issued := ex.issued()
	wants := []string{
		"tmux select-window -t 'my work:2'",
		"tmux kill-window -t 'my work:0'",
		"tmux rename-window -t 'my work:1' 'logs'",
	}
	for i, want := range wants {
		if !strings.Contains(issued[i], want) {
			t.Errorf("command %d = %q, want it to contain %q", i, issued[i], want)
		}
	}
}

func TestShellQuotingInTargets(t *testing.T) {
	svc, ex := newTestService(nil)

	if err := svc.RenameSession(context.Background(), "local", "it's", "new name"); err != nil {
		t.Fatalf("RenameSession error: %v", err)
	}
	got := ex.issued()[0]
	if !strings.Contains(got, `'it'"'"'s'`) || !strings.Contains(got, "'new name'") {
		t.Errorf("targets not shell-quoted: %q", got)
	}
}
