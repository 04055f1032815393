package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"vsasakiv/sixfive/apu"
	"vsasakiv/sixfive/cartridge"
	"vsasakiv/sixfive/controller"
	"vsasakiv/sixfive/engine"
)

type options struct {
	romFile string

	sampleRate int
	clockSpeed int
	bank       int
	vectors    *controller.Vectors
	voices     [apu.VoiceCount]bool
	start      uint8

	wavFile string
	seconds float64
	backend string

	trace      bool
	disasm     bool
	dumpFile   string
	cpuProfile string
}

// UsageError is returned for invalid command lines, the caller prints the
// usage after the message.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: sixfive [options] [rom image]\n\n")
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintln(w)
}

func parseFlags(name string, args []string) (options, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var opts options
	var bank, vectors, voices, start string
	flags.IntVar(&opts.sampleRate, "rate", engine.DefaultSampleRate, "output sample rate in Hz")
	flags.IntVar(&opts.clockSpeed, "clock", engine.DefaultClockSpeed, "instructions per second (1 - 1000000)")
	flags.StringVar(&bank, "bank", "A", "rom bank to run (A - D)")
	flags.StringVar(&vectors, "vectors", "", "trampoline vectors set at start, for example AC")
	flags.StringVar(&voices, "voices", "1111", "enabled voices: pulse 1, pulse 2, triangle, noise")
	flags.StringVar(&start, "start", "00", "instruction pointer to start from, in hex")
	flags.StringVar(&opts.wavFile, "wav", "", "render to this wav file instead of playing")
	flags.Float64Var(&opts.seconds, "seconds", 10, "length of the wav render in seconds")
	flags.StringVar(&opts.backend, "backend", "oto", "audio backend (oto, sdl)")
	flags.BoolVar(&opts.trace, "trace", false, "print every executed instruction to stderr")
	flags.BoolVar(&opts.disasm, "disasm", false, "print the disassembly of the selected bank and exit")
	flags.StringVar(&opts.dumpFile, "dump", "", "write the memory the program touched to this file on exit")
	flags.StringVar(&opts.cpuProfile, "cpuprofile", "", "write a cpu profile to this directory")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	usageErr := func(format string, a ...any) error {
		return &UsageError{flags: flags, msg: fmt.Sprintf(format, a...)}
	}

	switch flags.NArg() {
	case 0:
	case 1:
		opts.romFile = flags.Arg(0)
	default:
		return opts, usageErr("expected at most one rom image, got %d", flags.NArg())
	}

	if opts.sampleRate <= 0 {
		return opts, usageErr("invalid sample rate %d", opts.sampleRate)
	}
	if opts.clockSpeed < engine.MinClockSpeed || opts.clockSpeed > engine.MaxClockSpeed {
		return opts, usageErr("clock speed %d out of range %d - %d", opts.clockSpeed, engine.MinClockSpeed, engine.MaxClockSpeed)
	}
	if opts.seconds <= 0 {
		return opts, usageErr("invalid render length %g", opts.seconds)
	}

	var err error
	if opts.bank, err = cartridge.BankIndex(bank); err != nil {
		return opts, usageErr("%v", err)
	}
	if opts.vectors, err = controller.ParseVectors(vectors); err != nil {
		return opts, usageErr("%v", err)
	}
	if opts.voices, err = parseVoices(voices); err != nil {
		return opts, usageErr("%v", err)
	}
	if opts.start, err = parseAddress(start); err != nil {
		return opts, usageErr("%v", err)
	}

	opts.backend = strings.ToLower(opts.backend)
	if opts.backend != "oto" && opts.backend != "sdl" {
		return opts, usageErr("unsupported audio backend: %s. Valid options: oto, sdl", opts.backend)
	}
	return opts, nil
}

func parseVoices(mask string) ([apu.VoiceCount]bool, error) {
	var voices [apu.VoiceCount]bool
	if len(mask) != apu.VoiceCount {
		return voices, fmt.Errorf("voice mask %q must have %d digits", mask, apu.VoiceCount)
	}
	for i := range mask {
		switch mask[i] {
		case '1':
			voices[i] = true
		case '0':
		default:
			return voices, fmt.Errorf("invalid voice mask %q, use 0 and 1", mask)
		}
	}
	return voices, nil
}

func parseAddress(s string) (uint8, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "$"), "0x")
	address, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid start address %q", s)
	}
	return uint8(address), nil
}
