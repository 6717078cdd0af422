package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// ErrInterrupted is returned when input ends or the context is cancelled while waiting for an answer.
var ErrInterrupted = errors.New("interrupted by user")

type line struct {
	text string
	err  error
}

// Prompter asks questions on out and reads one line answers from in.
// A single goroutine owns the reader so an abandoned question does not leak readers.
type Prompter struct {
	in    io.Reader
	out   io.Writer
	lines chan line
	once  sync.Once
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, lines: make(chan line)}
}

func (p *Prompter) start() {
	go func() {
		scanner := bufio.NewScanner(p.in)
		for scanner.Scan() {
			p.lines <- line{text: scanner.Text()}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		p.lines <- line{err: err}
		close(p.lines)
	}()
}

// Ask prints question and returns the trimmed answer.
func (p *Prompter) Ask(ctx context.Context, question string) (string, error) {
	p.once.Do(p.start)

	if _, err := fmt.Fprint(p.out, question); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ErrInterrupted
	case l, ok := <-p.lines:
		if !ok || errors.Is(l.err, io.EOF) {
			return "", ErrInterrupted
		}
		if l.err != nil {
			return "", fmt.Errorf("failed to read answer: %w", l.err)
		}
		return strings.TrimSpace(l.text), nil
	}
}

// AskInt is Ask for a whole number. A non-numeric answer is an error.
func (p *Prompter) AskInt(ctx context.Context, question string) (int, error) {
	answer, err := p.Ask(ctx, question)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", answer, err)
	}
	return n, nil
}

// Confirm returns true for y or yes, in any case.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.Ask(ctx, question)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
