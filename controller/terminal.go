package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// ErrQuit is returned by Run when the quit key was pressed.
var ErrQuit = errors.New("quit requested")

// Host is what the keyboard controls.
type Host interface {
	ToggleVector(vector int)
	SelectBank(bank int) error
	ToggleVoice(voice int)
	TogglePlay()
	Stop()
	Reset()
	JumpTo(address uint8)
	Status() string
}

// jump targets on the top letter row, 0x00 - 0x70
const jumpKeys = "qwertyui"

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1B
)

// Terminal reads single key presses from a raw mode terminal.
//
//	a b c d     toggle trampoline vector
//	A B C D     select rom bank
//	1 2 3 4     mute / unmute pulse 1, pulse 2, triangle, noise
//	q w ... i   jump to 0x00, 0x10 ... 0x70 and start
//	space       start / pause
//	s           stop
//	x           reset
//	esc, ^C     quit
type Terminal struct {
	host   Host
	in     *os.File
	status io.Writer
}

func NewTerminal(host Host, status io.Writer) *Terminal {
	return &Terminal{host: host, in: os.Stdin, status: status}
}

// StdinIsTerminal reports whether keys can be read from stdin.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Run puts stdin in raw mode and handles keys until ctx is done or the quit
// key is pressed. The terminal state is restored before returning.
func (terminal *Terminal) Run(ctx context.Context) error {
	fd := int(terminal.in.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	// stops the reader on every return path, not only when the caller cancels
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := make(chan byte)
	readErr := make(chan error, 1)
	go func() {
		readErr <- terminal.readKeys(ctx, keys)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err == nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading stdin: %w", err)
		case key := <-keys:
			if err := terminal.HandleKey(key); err != nil {
				return err
			}
			terminal.printf("%s", terminal.host.Status())
		}
	}
}

// readKeys forwards single bytes from the input to keys until ctx is done or
// a read fails. Canceling ctx sets a read deadline, which interrupts a pending
// read on pollable inputs. A blocking tty stdin only returns after its next
// key.
func (terminal *Terminal) readKeys(ctx context.Context, keys chan<- byte) error {
	stop := context.AfterFunc(ctx, func() {
		terminal.in.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, 1)
	for {
		n, err := terminal.in.Read(buf)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		select {
		case keys <- buf[0]:
		case <-ctx.Done():
			return nil
		}
	}
}

// HandleKey applies one key press to the host. Unknown keys are ignored.
func (terminal *Terminal) HandleKey(key byte) error {
	host := terminal.host
	switch {
	case key == keyCtrlC || key == keyEscape:
		return ErrQuit
	case key >= 'a' && key <= 'd':
		host.ToggleVector(int(key - 'a'))
	case key >= 'A' && key <= 'D':
		if err := host.SelectBank(int(key - 'A')); err != nil {
			terminal.printf("%v", err)
		}
	case key >= '1' && key <= '4':
		host.ToggleVoice(int(key - '1'))
	case key == ' ':
		host.TogglePlay()
	case key == 's':
		host.Stop()
	case key == 'x':
		host.Reset()
	default:
		for i := 0; i < len(jumpKeys); i++ {
			if jumpKeys[i] == key {
				host.JumpTo(uint8(i) << 4)
				return nil
			}
		}
	}
	return nil
}

// raw mode needs explicit carriage returns
func (terminal *Terminal) printf(format string, args ...any) {
	if terminal.status == nil {
		return
	}
	fmt.Fprintf(terminal.status, format+"\r\n", args...)
}
