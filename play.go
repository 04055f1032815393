package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"vsasakiv/sixfive/audio"
	"vsasakiv/sixfive/controller"
	"vsasakiv/sixfive/engine"

	"golang.org/x/sync/errgroup"
)

// play streams the program to the audio device until interrupted. With a
// terminal on stdin the keyboard drives the host controls.
func play(opts options, machine *engine.Engine) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	player, err := newPlayer(opts.backend, machine, opts.sampleRate)
	if err != nil {
		return err
	}
	defer player.Close()

	interactive := controller.StdinIsTerminal()
	if opts.trace {
		var trace io.Writer = os.Stderr
		if interactive {
			trace = crlfWriter{os.Stderr}
		}
		machine.SetTrace(trace)
	}

	machine.JumpTo(opts.start)
	log.Printf("playing at %d Hz, %s", opts.sampleRate, machine.Status())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return player.Play(ctx)
	})
	if interactive {
		terminal := controller.NewTerminal(machine, os.Stderr)
		g.Go(func() error {
			return terminal.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, controller.ErrQuit) {
		return err
	}
	return nil
}

func newPlayer(backend string, source audio.Source, sampleRate int) (audio.Player, error) {
	switch backend {
	case "sdl":
		return audio.NewSDLPlayer(source, sampleRate)
	case "oto":
		return audio.NewOtoPlayer(source, sampleRate)
	}
	return nil, fmt.Errorf("unsupported audio backend: %s", backend)
}

// crlfWriter adds the carriage returns a raw mode terminal needs.
type crlfWriter struct {
	w io.Writer
}

func (cw crlfWriter) Write(p []byte) (int, error) {
	if _, err := cw.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
