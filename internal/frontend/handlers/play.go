package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/cory-johannsen/castle/internal/game/session"
)

// Prompt is written before every input line.
const Prompt = "> "

// LineConn is a line-oriented client connection.
type LineConn interface {
	ReadLine() (string, error)
	WriteLine(text string) error
	WritePrompt(prompt string) error
}

// Stdio adapts a reader and writer, typically stdin and stdout, to LineConn.
type Stdio struct {
	scanner *bufio.Scanner
	mu      sync.Mutex
	out     *bufio.Writer
}

// NewStdio wraps r and w.
func NewStdio(r io.Reader, w io.Writer) *Stdio {
	return &Stdio{scanner: bufio.NewScanner(r), out: bufio.NewWriter(w)}
}

// ReadLine returns the next line, or io.EOF when r is exhausted.
func (s *Stdio) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// WriteLine writes text and a newline and flushes.
func (s *Stdio) WriteLine(text string) error {
	return s.write(text + "\n")
}

// WritePrompt writes prompt and flushes.
func (s *Stdio) WritePrompt(prompt string) error {
	return s.write(prompt)
}

func (s *Stdio) write(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.WriteString(text); err != nil {
		return err
	}
	return s.out.Flush()
}

// Play runs g against conn, one tick per line, until the player quits or
// dies, input ends, or ctx is cancelled.
//
// Precondition: g has been started.
// Postcondition: Returns nil on quit, death, end of input or cancellation;
// otherwise the read or write error.
func Play(ctx context.Context, g *session.Game, conn LineConn) error {
	if err := writeLines(conn, RenderRoom(g.Controller)); err != nil {
		return err
	}

	// The reader may still be blocked in ReadLine when Play returns. It
	// exits on the next line or error without touching the game; telnet
	// sessions release it by closing the connection, stdin by process exit.
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			line, err := conn.ReadLine()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
	}()

	var transcript Transcript
	current := g.Controller.Current()
	for {
		if err := conn.WritePrompt(Prompt); err != nil {
			return err
		}

		var line string
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case line = <-lines:
		}

		in := ParseInput(line)
		res := g.Tick(ctx, in)
		var out []string
		if res.Room != current {
			current = res.Room
			out = RenderRoom(g.Controller)
		}
		out = append(out, transcript.Lines(in, res)...)
		if err := writeLines(conn, out); err != nil {
			return err
		}
		if res.GameOver || res.Quit {
			return nil
		}
	}
}

func writeLines(conn LineConn, lines []string) error {
	for _, l := range lines {
		if err := conn.WriteLine(l); err != nil {
			return err
		}
	}
	return nil
}
