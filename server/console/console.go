// Package console implements the interactive stdin command source: a
// go-prompt backed reader whose lines are queued and executed by the tick
// loop. It is the only source of commands the server executes.
package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	prompt "github.com/c-bata/go-prompt"

	"github.com/vxlcore/server/server/cmd"
)

const (
	defaultPromptPrefix = "> "
	maxHistoryEntries   = 128
)

// Console reads command lines from stdin (or a custom reader, for tests)
// and queues them for the tick loop to execute via Drain.
type Console struct {
	log    *slog.Logger
	reader io.Reader

	mu      sync.Mutex
	pending []string
	history []string
}

// New returns a Console reading from os.Stdin, logging output through log.
func New(log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{log: log, reader: os.Stdin}
}

// WithReader overrides the input reader, bypassing the interactive prompt.
// Used by tests to drive the console without a real terminal.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Source returns the cmd.Source commands queued by this console should run
// as.
func (c *Console) Source() cmd.Source { return &consoleSource{log: c.log} }

// Run consumes lines from the reader until ctx is cancelled or the reader
// reaches EOF. It blocks; callers should run it in its own goroutine.
func (c *Console) Run(ctx context.Context) {
	if c.reader == os.Stdin {
		c.runInteractive(ctx)
		return
	}
	c.runScanner(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "err", err)
			}
			return
		}
		c.enqueue(scanner.Text())
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := prompt.Input(defaultPromptPrefix, c.complete,
			prompt.OptionTitle("vxlcore console"),
			prompt.OptionHistory(c.historySnapshot()),
			prompt.OptionPrefix(defaultPromptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)
		c.enqueue(line)
	}
}

func (c *Console) enqueue(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	c.mu.Lock()
	c.pending = append(c.pending, line)
	c.history = append(c.history, line)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}
	c.mu.Unlock()
}

// Drain returns every line queued since the last call, in FIFO order. The
// tick loop calls this once per tick and runs each through cmd.ExecuteLine.
func (c *Console) Drain() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return nil
	}
	out := c.pending
	c.pending = nil
	return out
}

func (c *Console) historySnapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.history...)
}

func (c *Console) complete(doc prompt.Document) []prompt.Suggest {
	word := strings.TrimPrefix(doc.GetWordBeforeCursor(), "/")
	if strings.Contains(strings.TrimSpace(doc.TextBeforeCursor()), " ") {
		// This simplified console only completes the command name itself;
		// cmd.Command exposes no argument metadata to complete from.
		return nil
	}
	return commandSuggestions(word)
}

func commandSuggestions(prefix string) []prompt.Suggest {
	commands := cmd.Commands()
	suggestions := make([]prompt.Suggest, 0, len(commands))
	for _, c := range commands {
		suggestions = append(suggestions, prompt.Suggest{
			Text:        c.Name(),
			Description: c.Description(),
		})
	}
	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].Text < suggestions[j].Text })
	return prompt.FilterHasPrefix(suggestions, strings.TrimSpace(prefix), true)
}

type consoleSource struct {
	log *slog.Logger
}

func (s *consoleSource) Name() string { return "CONSOLE" }

func (s *consoleSource) SendCommandOutput(o *cmd.Output) {
	for _, line := range o.Lines() {
		s.log.Info(line)
	}
}
