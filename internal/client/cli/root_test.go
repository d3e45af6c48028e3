package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) isLoggedIn() bool { return s.loggedIn }

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) Register(ctx context.Context) error { return s.record("register") }
func (s *stubExec) Login(ctx context.Context) error    { return s.record("login") }
func (s *stubExec) Logout(ctx context.Context) error   { return s.record("logout") }
func (s *stubExec) List(ctx context.Context) error     { return s.record("list") }
func (s *stubExec) Add(ctx context.Context) error      { return s.record("add") }
func (s *stubExec) Delete(ctx context.Context) error   { return s.record("delete") }
func (s *stubExec) Sync(ctx context.Context) error     { return s.record("sync") }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	orig := printlnFn
	t.Cleanup(func() { printlnFn = orig })

	var lines []string
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	return &lines
}

func runScript(t *testing.T, stub *stubExec, script string) {
	t.Helper()
	scanner := bufio.NewScanner(strings.NewReader(script))
	runREPL(context.Background(), stub, func() string { return "" }, scanner)
}

func TestREPL_DispatchesCommands(t *testing.T) {
	captureOutput(t)
	stub := &stubExec{loggedIn: true}

	runScript(t, stub, "add\nlist\nl\nsync\ndelete\nlogout\nexit\n")

	assert.Equal(t, []string{"add", "list", "list", "sync", "delete", "logout"}, stub.calls)
}

func TestREPL_AuthCommands(t *testing.T) {
	captureOutput(t)
	stub := &stubExec{}

	runScript(t, stub, "register\nlogin\nquit\n")

	assert.Equal(t, []string{"register", "login"}, stub.calls)
}

func TestREPL_UnknownAndEmptyInput(t *testing.T) {
	lines := captureOutput(t)
	stub := &stubExec{}

	runScript(t, stub, "\n   \nfrobnicate\nexit\n")

	assert.Empty(t, stub.calls)
	joined := strings.Join(*lines, "")
	assert.Contains(t, joined, "Unknown command: frobnicate")
}

func TestREPL_HelpDependsOnLoginState(t *testing.T) {
	lines := captureOutput(t)
	runScript(t, &stubExec{}, "help\nexit\n")
	assert.Contains(t, strings.Join(*lines, ""), "register, login")

	lines = captureOutput(t)
	runScript(t, &stubExec{loggedIn: true}, "help\nexit\n")
	assert.Contains(t, strings.Join(*lines, ""), "logout")
}

func TestREPL_ExitsOnEOF(t *testing.T) {
	captureOutput(t)
	stub := &stubExec{}
	runScript(t, stub, "list\n")
	assert.Equal(t, []string{"list"}, stub.calls)
}
