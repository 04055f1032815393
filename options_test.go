package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"vsasakiv/sixfive/cartridge"
	"vsasakiv/sixfive/engine"
)

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := parseFlags("sixfive", nil)
	if err != nil {
		t.Fatal(err)
	}
	if opts.sampleRate != engine.DefaultSampleRate || opts.clockSpeed != engine.DefaultClockSpeed {
		t.Errorf("unexpected rates %d / %d", opts.sampleRate, opts.clockSpeed)
	}
	if opts.bank != 0 || opts.start != 0 || opts.backend != "oto" || opts.romFile != "" {
		t.Errorf("unexpected defaults %+v", opts)
	}
	if opts.voices != [4]bool{true, true, true, true} {
		t.Errorf("expected all voices enabled, got %v", opts.voices)
	}
	if opts.vectors.String() != "----" {
		t.Errorf("expected no vectors set, got %s", opts.vectors)
	}
}

func TestParseFlags(t *testing.T) {
	args := []string{
		"-rate", "22050", "-clock", "250", "-bank", "c", "-vectors", "BD",
		"-voices", "1010", "-start", "0x30", "-backend", "SDL", "-wav", "out.wav",
		"song.txt",
	}
	opts, err := parseFlags("sixfive", args)
	if err != nil {
		t.Fatal(err)
	}
	if opts.sampleRate != 22050 || opts.clockSpeed != 250 || opts.bank != 2 {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.vectors.String() != "-B-D" {
		t.Errorf("unexpected vectors %s", opts.vectors)
	}
	if opts.voices != [4]bool{true, false, true, false} {
		t.Errorf("unexpected voices %v", opts.voices)
	}
	if opts.start != 0x30 || opts.backend != "sdl" || opts.wavFile != "out.wav" || opts.romFile != "song.txt" {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := [][]string{
		{"-clock", "0"},
		{"-clock", "1000001"},
		{"-rate", "-5"},
		{"-bank", "E"},
		{"-vectors", "X"},
		{"-voices", "11"},
		{"-voices", "11x1"},
		{"-start", "100"},
		{"-backend", "alsa"},
		{"-seconds", "0"},
		{"-nosuchflag"},
		{"a.txt", "b.txt"},
	}
	for _, args := range tests {
		_, err := parseFlags("sixfive", args)
		var usageErr *UsageError
		if !errors.As(err, &usageErr) {
			t.Errorf("%v: expected UsageError, got %v", args, err)
			continue
		}
		var usage bytes.Buffer
		usageErr.ShowUsage(&usage)
		if !strings.Contains(usage.String(), "-clock") {
			t.Errorf("%v: usage does not list the flags", args)
		}
	}
}

func TestRenderAndDump(t *testing.T) {
	dir := t.TempDir()
	romFile := filepath.Join(dir, "rom.txt")

	// AWI0 #$8F, AWI2 #$FF, AWI3 #$F9, STOR $80, HALT
	var rom cartridge.Cartridge
	copy(rom.Banks[1][:], []uint16{0xA08F, 0xA2FF, 0xA3F9, 0x1280, 0x0000})
	if err := rom.SaveToFile(romFile); err != nil {
		t.Fatal(err)
	}

	opts, err := parseFlags("sixfive", []string{
		"-rate", "1000", "-clock", "1000", "-bank", "B", "-seconds", "0.1",
		"-wav", filepath.Join(dir, "out.wav"), "-dump", filepath.Join(dir, "dump.txt"),
		romFile,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := run(opts); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(dir, "out.wav"))
	if err != nil {
		t.Fatal(err)
	}
	// 100 mono 16 bit samples after the header
	if info.Size() < 44+100*2 {
		t.Errorf("wav file too short: %d bytes", info.Size())
	}

	dump, err := os.ReadFile(filepath.Join(dir, "dump.txt"))
	if err != nil {
		t.Fatal(err)
	}
	want := "80 : 00\na0 : 8f\na2 : ff\na3 : f9\n"
	if string(dump) != want {
		t.Errorf("expected dump %q, got %q", want, string(dump))
	}
}

func TestDisassembleMode(t *testing.T) {
	opts, err := parseFlags("sixfive", []string{"-disasm"})
	if err != nil {
		t.Fatal(err)
	}
	machine, err := newMachine(opts)
	if err != nil {
		t.Fatal(err)
	}
	lines, err := machine.Disassemble(opts.bank)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 64 || lines[0] != "00: 0000  HALT" {
		t.Errorf("unexpected disassembly of an empty bank: %q", lines[0])
	}
}

func TestCrlfWriter(t *testing.T) {
	var buf bytes.Buffer
	n, err := crlfWriter{&buf}.Write([]byte("a\nb\n"))
	if err != nil || n != 4 {
		t.Fatalf("unexpected write result %d, %v", n, err)
	}
	if buf.String() != "a\r\nb\r\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}
