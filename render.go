package main

import (
	"log"
	"os"
	"vsasakiv/sixfive/audio"
	"vsasakiv/sixfive/engine"
)

// render runs the program offline and writes the output to a wav file.
func render(opts options, machine *engine.Engine) error {
	if opts.trace {
		machine.SetTrace(os.Stderr)
	}
	machine.JumpTo(opts.start)

	if err := audio.RenderWav(opts.wavFile, machine, opts.sampleRate, opts.seconds); err != nil {
		return err
	}
	log.Printf("rendered %gs to %s", opts.seconds, opts.wavFile)
	return nil
}
