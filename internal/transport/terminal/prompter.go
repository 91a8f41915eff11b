package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
)

// Prompter asks the operator questions one at a time. Input is read by a
// single goroutine started on the first question.
type Prompter struct {
	in    io.Reader
	out   io.Writer
	once  sync.Once
	lines chan string
	mu    sync.Mutex
}

// NewPrompter creates a prompter reading answers from in
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:    in,
		out:   out,
		lines: make(chan string),
	}
}

func (p *Prompter) start() {
	go func() {
		defer close(p.lines)
		scanner := bufio.NewScanner(p.in)
		for scanner.Scan() {
			p.lines <- strings.TrimSpace(scanner.Text())
		}
	}()
}

// Ask prints question and blocks for one line of input
func (p *Prompter) Ask(ctx context.Context, question string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.once.Do(p.start)

	if _, err := fmt.Fprint(p.out, question); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return "", errors.ErrPromptClosed
		}
		return line, nil
	}
}
