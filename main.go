package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"vsasakiv/sixfive/cartridge"
	"vsasakiv/sixfive/engine"

	"github.com/pkg/profile"
)

func main() {
	opts, err := parseFlags(os.Args[0], os.Args[1:])
	if err != nil {
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintln(os.Stderr, usageErr)
			usageErr.ShowUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}

	var prof interface{ Stop() }
	if opts.cpuProfile != "" {
		prof = profile.Start(profile.CPUProfile, profile.ProfilePath(opts.cpuProfile), profile.NoShutdownHook)
	}

	err = run(opts)
	if prof != nil {
		prof.Stop()
	}
	if err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	machine, err := newMachine(opts)
	if err != nil {
		return err
	}

	if opts.disasm {
		lines, err := machine.Disassemble(opts.bank)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	}

	if opts.wavFile != "" {
		err = render(opts, machine)
	} else {
		err = play(opts, machine)
	}
	if err != nil {
		return err
	}

	if snapshot := machine.Snapshot(); snapshot.Fault != nil {
		log.Printf("program stopped: %v", snapshot.Fault)
	}

	if opts.dumpFile != "" {
		if err := machine.HexDump(opts.dumpFile); err != nil {
			return fmt.Errorf("dumping memory: %w", err)
		}
		log.Printf("memory dump written to %s", opts.dumpFile)
	}
	return nil
}

// newMachine loads the rom image and applies the initial host settings.
func newMachine(opts options) (*engine.Engine, error) {
	rom := &cartridge.Cartridge{}
	if opts.romFile != "" {
		var err error
		rom, err = cartridge.ReadFromFile(opts.romFile)
		if err != nil {
			return nil, err
		}
	}

	machine, err := engine.New(rom, opts.vectors, opts.sampleRate)
	if err != nil {
		return nil, err
	}
	if err := machine.SetClockSpeed(opts.clockSpeed); err != nil {
		return nil, err
	}
	if err := machine.SelectBank(opts.bank); err != nil {
		return nil, err
	}
	for voice, enabled := range opts.voices {
		machine.SetVoiceEnabled(voice, enabled)
	}
	return machine, nil
}
