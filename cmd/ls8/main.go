// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/lambdaschool/ls8/cpu"
	"github.com/lambdaschool/ls8/emulator"
	"github.com/lambdaschool/ls8/image"
	"github.com/lambdaschool/ls8/translate"
)

// options are the command line settings.
type options struct {
	verbose  bool
	assemble bool
	output   string
	maxTicks int
}

func usage() {
	out := flag.CommandLine.Output()
	translate.Fprintf(out, "usage: %v [options] file\n", os.Args[0])
	translate.Fprintf(out, "\nRuns an LS8 program image, or an assembly source file with -a or a .asm suffix.\n\n")
	flag.PrintDefaults()
}

func main() {
	var opt options

	flag.BoolVar(&opt.verbose, "v", false, "Verbose mode, trace every instruction")
	flag.BoolVar(&opt.assemble, "a", false, "Treat file as assembly source")
	flag.StringVar(&opt.output, "o", "", "Write the program image to this file, do not execute")
	flag.IntVar(&opt.maxTicks, "max-ticks", 0, "Stop after this many instructions (0 for no limit)")
	flag.Usage = usage

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	err := ls8(&opt, flag.Arg(0), os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
}

// ls8 loads the file at path, then either writes its image or runs it
// with PRN output sent to stdout.
func ls8(opt *options, path string, stdout io.Writer) (err error) {
	emu := emulator.NewEmulator()
	emu.Verbose = opt.verbose
	emu.MaxTicks = opt.maxTicks

	if opt.assemble || strings.HasSuffix(path, ".asm") {
		var inf *os.File
		inf, err = os.Open(path)
		if err != nil {
			return
		}
		defer inf.Close()

		var prog *cpu.Program
		prog, err = emu.Assembler().Parse(inf)
		if err != nil {
			err = errors.Wrap(err, path)
			return
		}
		emu.Program = prog
	} else {
		emu.Image, err = image.Load(path)
		if err != nil {
			return
		}
	}

	if len(opt.output) != 0 {
		var ouf *os.File
		ouf, err = os.Create(opt.output)
		if err != nil {
			return
		}
		defer ouf.Close()

		if len(emu.Program.Lines) > 0 {
			err = image.Write(ouf, emu.Program)
		} else {
			err = image.WriteImage(ouf, emu.Image)
		}
		return
	}

	emu.Tape.Output = stdout

	err = emu.Reset()
	if err != nil {
		return
	}

	err = emu.Run()
	if err != nil {
		if opt.verbose {
			log.Print(emu.Machine.String())
		}
		err = errors.Wrap(err, path)
	}

	return
}
