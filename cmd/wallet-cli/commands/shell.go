// Package commands implements the interactive wallet shell.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/session"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

// PasswordReader reads a secret without echoing it. The caller zeroes the
// returned slice.
type PasswordReader func(prompt string) ([]byte, error)

// Shell keeps the logged-in session between command lines.
type Shell struct {
	manager  *session.Manager
	password PasswordReader
	out      io.Writer

	mu      sync.Mutex
	token   string
	session *session.Session
}

// NewShell creates a shell writing to out.
func NewShell(manager *session.Manager, password PasswordReader, out io.Writer) *Shell {
	return &Shell{manager: manager, password: password, out: out}
}

func (s *Shell) current() (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, errNotLoggedIn
	}
	// the session may have idled out since the last command
	if _, err := s.manager.Resolve(s.token); err != nil {
		s.session, s.token = nil, ""
		return nil, errSessionExpired
	}
	return s.session, nil
}

func (s *Shell) setSession(token string, sess *session.Session) {
	s.mu.Lock()
	s.token, s.session = token, sess
	s.mu.Unlock()
}

func (s *Shell) clearSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := s.token
	s.token, s.session = "", nil
	return token
}

var (
	errNotLoggedIn    = errors.New("log in first")
	errSessionExpired = errors.New("session expired, log in again")
)

// Exec runs one command line. ctx is cancelled when the user interrupts a
// long-running command.
func (s *Shell) Exec(ctx context.Context, line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	root := s.Commands()
	root.SetArgs(args)
	root.SetOut(s.out)
	root.SetErr(s.out)
	return root.ExecuteContext(ctx)
}

// Run reads command lines until EOF or "exit". interrupt returns the context
// for one command and a func releasing it.
func (s *Shell) Run(rl *readline.Instance, interrupt func() (context.Context, context.CancelFunc)) {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "exit" || line == "quit" {
			return
		}

		ctx, cancel := interrupt()
		if err := s.Exec(ctx, line); err != nil {
			fmt.Fprintln(s.out, "error:", Describe(err))
		}
		cancel()
	}
}

// Completer builds tab completion from the command tree.
func (s *Shell) Completer() *readline.PrefixCompleter {
	completer := readline.NewPrefixCompleter()
	for _, child := range s.Commands().Commands() {
		pcFromCommands(completer, child)
	}
	completer.SetChildren(append(completer.GetChildren(), readline.PcItem("exit")))
	return completer
}

func pcFromCommands(parent readline.PrefixCompleterInterface, c *cobra.Command) {
	pc := readline.PcItem(c.Name())
	parent.SetChildren(append(parent.GetChildren(), pc))
	for _, child := range c.Commands() {
		pcFromCommands(pc, child)
	}
}

// Describe renders err for the terminal.
func Describe(err error) string {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		return err.Error()
	}
	msg := apperr.Message(err)
	if ae.Err != nil {
		msg += " (" + ae.Err.Error() + ")"
	}
	return msg
}
