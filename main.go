//go:build !js

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
	"gochip8/pkg/display"
	"gochip8/pkg/utils"
)

func main() {
	inPath := flag.String("in", "", "input assembly file path")
	outPath := flag.String("out", "", "output ROM file path (default: input with .ch8 extension)")
	runProgram := flag.Bool("run", false, "run the assembled ROM headless")
	runBinPath := flag.String("run-bin", "", "run an existing ROM headless")
	frames := flag.Int("frames", 600, "frames to run (60 per emulated second)")
	disPath := flag.String("dis", "", "print a disassembly listing of a ROM")
	shotPath := flag.String("screenshot", "", "write the final screen as a PNG to this file")
	dumpConfig := flag.Bool("dump-config", false, "print the effective configuration as TOML and exit")
	var flags config.Flags
	flags.Register(flag.CommandLine)
	flag.Parse()

	if *runProgram && *runBinPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-bin, not both")
		os.Exit(2)
	}

	romHint := *runBinPath
	if romHint == "" {
		romHint = *inPath
	}
	cfg, err := flags.Resolve(romHint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(2)
	}
	cfg.ConfigureLogging()

	if *dumpConfig {
		if err := cfg.Encode(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode configuration: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *disPath != "" {
		rom, err := utils.ReadROM(*disPath, chip8.MaxROMSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read ROM %q: %v\n", *disPath, err)
			os.Exit(1)
		}
		if err := asm.WriteListing(os.Stdout, rom); err != nil {
			fmt.Fprintf(os.Stderr, "disassembly failed: %v\n", err)
			os.Exit(1)
		}
	}

	assembledOutput := ""
	if *inPath != "" {
		source, err := os.ReadFile(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
			os.Exit(1)
		}

		code, _, err := asm.Assemble(string(source))
		if err != nil {
			fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
			os.Exit(1)
		}

		output := *outPath
		if output == "" {
			output = defaultOutputPath(*inPath)
		}

		if err := writeBinary(output, code); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write ROM file %q: %v\n", output, err)
			os.Exit(1)
		}

		fmt.Printf("assembled %d bytes -> %s\n", len(code), output)
		assembledOutput = output
	}

	if *inPath == "" && *runBinPath == "" && !*runProgram && *disPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to assemble, -run to run assembled output, -run-bin <file> to run an existing ROM or -dis <file> to disassemble one")
		flag.Usage()
		os.Exit(2)
	}

	runTarget := ""
	switch {
	case *runBinPath != "":
		runTarget = *runBinPath
	case *runProgram:
		if assembledOutput == "" {
			fmt.Fprintln(os.Stderr, "-run requires -in, or use -run-bin <file>")
			os.Exit(2)
		}
		runTarget = assembledOutput
	default:
		return
	}

	screen, err := runBinary(os.Stdout, runTarget, cfg, *frames)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", runTarget, err)
		os.Exit(1)
	}
	if *shotPath != "" {
		if err := screen.SaveScreenshot(*shotPath, cfg.Display.Scale); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write screenshot %q: %v\n", *shotPath, err)
			os.Exit(1)
		}
	}
}

func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".ch8"
	}
	return strings.TrimSuffix(inPath, ext) + ".ch8"
}

func writeBinary(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// beepCounter counts the ticks the beeper was on.
type beepCounter int

func (b *beepCounter) SetBeep(on bool) {
	if on {
		*b++
	}
}

// runBinary runs the ROM at path for the given number of frames with no keys
// held, then prints the machine state and the screen to w.
func runBinary(w io.Writer, path string, cfg *config.Config, frames int) (*display.Screen, error) {
	rom, err := utils.ReadROM(path, chip8.MaxROMSize)
	if err != nil {
		return nil, err
	}

	mc, err := cfg.MachineConfig()
	if err != nil {
		return nil, err
	}
	screen := display.New()
	var beeps beepCounter
	mc.Display = screen
	mc.Sound = &beeps

	vm := chip8.New(mc)
	vm.LoadROM(rom)

	faults := 0
	for range frames {
		if err := vm.Frame(); err != nil {
			faults++
		}
	}
	if faults > 0 {
		commonlog.GetLogger("run").Warningf("%d frames raised faults", faults)
	}

	fmt.Fprintf(w,
		"run complete (%s): frames=%d cycles=%d PC=0x%04X I=0x%03X SP=%d DT=%d ST=%d beep=%d state=%s\n",
		path, vm.Frames(), vm.Cycles(), vm.PC, vm.I, vm.SP, vm.DT, vm.ST, int(beeps), vm.State(),
	)
	for i, v := range vm.V {
		fmt.Fprintf(w, "V%X=%02X", i, v)
		if i%8 == 7 {
			fmt.Fprintln(w)
		} else {
			fmt.Fprint(w, " ")
		}
	}
	fmt.Fprint(w, screen.Text())

	return screen, nil
}
