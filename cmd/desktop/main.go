// Command desktop runs a CHIP-8 ROM in a window.
//
//	desktop [flags] rom.ch8|prog.asm
//
// Keys 1234/QWER/ASDF/ZXCV drive the hex keypad. F12 saves a screenshot,
// P pauses, F5 restarts the ROM and Esc quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"gochip8/pkg/chip8"
	"gochip8/pkg/config"
	"gochip8/pkg/display"
	"gochip8/pkg/grid"
	"gochip8/pkg/keypad"
	"gochip8/pkg/sound"
	"gochip8/pkg/utils"
)

// physicalKeys follows keypad.Layout.
var physicalKeys = [chip8.KeyCount]ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyR,
	ebiten.KeyA, ebiten.KeyS, ebiten.KeyD, ebiten.KeyF,
	ebiten.KeyZ, ebiten.KeyX, ebiten.KeyC, ebiten.KeyV,
}

// pollKeys samples the keyboard into a logical key snapshot.
func pollKeys(pressed func(ebiten.Key) bool) [chip8.KeyCount]bool {
	var down [chip8.KeyCount]bool
	for i, k := range physicalKeys {
		if pressed(k) {
			down[keypad.Logical[i]] = true
		}
	}
	return down
}

type Game struct {
	vm     *chip8.Machine
	screen *display.Screen
	keys   *keypad.State
	tone   *sound.Tone

	cfg     *config.Config
	mc      chip8.Config
	rom     []byte
	romPath string

	canvas *ebiten.Image // reused 64×32 bitmap
	paused bool
	shots  int
	log    commonlog.Logger
}

func newGame(cfg *config.Config, rom []byte, romPath string) (*Game, error) {
	mc, err := cfg.MachineConfig()
	if err != nil {
		return nil, err
	}
	fg, bg, err := cfg.Colors()
	if err != nil {
		return nil, err
	}

	g := &Game{
		screen:  display.New(),
		keys:    &keypad.State{},
		cfg:     cfg,
		rom:     rom,
		romPath: romPath,
		log:     commonlog.GetLogger("desktop"),
	}
	g.screen.Foreground, g.screen.Background = fg, bg

	mc.Display = g.screen
	mc.Keypad = g.keys
	if !cfg.Audio.Mute {
		g.tone = sound.NewTone(cfg.Audio.Frequency, cfg.Audio.Volume)
		mc.Sound = g.tone
	}
	g.mc = mc
	g.reset()
	return g, nil
}

// reset starts the ROM from scratch on a cleared screen.
func (g *Game) reset() {
	g.screen.Clear()
	if g.tone != nil {
		g.tone.SetBeep(false)
	}
	g.vm = chip8.New(g.mc)
	g.vm.LoadROM(g.rom)
	g.log.Infof("started %s (quirks %s, %d instructions/frame)", g.romPath, g.mc.Quirks, g.vm.InstructionsPerFrame())
}

func (g *Game) screenshot() {
	name := utils.ScreenshotName(g.romPath, g.shots)
	g.shots++
	if err := g.screen.SaveScreenshot(name, g.cfg.Display.Scale); err != nil {
		g.log.Errorf("screenshot: %s", err)
		return
	}
	g.log.Noticef("saved %s", name)
}

func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyF12):
		g.screenshot()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.paused = !g.paused
		if g.paused && g.tone != nil {
			g.tone.SetBeep(false)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		g.reset()
	}

	if g.paused {
		return nil
	}

	g.keys.Replace(pollKeys(ebiten.IsKeyPressed))
	_ = g.vm.Frame() // faults are logged by the machine
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas == nil {
		g.canvas = ebiten.NewImage(display.Width, display.Height)
	}
	g.canvas.WritePixels(g.screen.RGBA())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.cfg.Display.Scale), float64(g.cfg.Display.Scale))
	screen.DrawImage(g.canvas, op)

	if g.paused {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("PAUSED  PC %04X  %s", g.vm.PC, g.vm.State()))
		g.drawKeymap(screen)
	}
}

// drawKeymap prints the keyboard-to-keypad layout below the status line,
// bracketing keys that are currently held.
func (g *Game) drawKeymap(screen *ebiten.Image) {
	const cellW, cellH, top = 40, 16, 24
	for i, r := range keypad.Layout {
		x, y := grid.GetGridCoords(i, 4)
		k := keypad.Logical[i]
		label := fmt.Sprintf(" %c=%X ", unicode.ToUpper(r), k)
		if g.keys.IsKeyDown(k) {
			label = fmt.Sprintf("[%c=%X]", unicode.ToUpper(r), k)
		}
		ebitenutil.DebugPrintAt(screen, label, 4+x*cellW, top+y*cellH)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return display.Width * g.cfg.Display.Scale, display.Height * g.cfg.Display.Scale
}

func run(args []string) error {
	fs := flag.NewFlagSet("desktop", flag.ContinueOnError)
	var flags config.Flags
	flags.Register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected one ROM or assembly file")
	}
	romPath := fs.Arg(0)

	cfg, err := flags.Resolve(romPath)
	if err != nil {
		return err
	}
	cfg.ConfigureLogging()

	rom, err := utils.LoadProgram(romPath)
	if err != nil {
		return err
	}

	game, err := newGame(cfg, rom, romPath)
	if err != nil {
		return err
	}

	if game.tone != nil {
		ctx := audio.NewContext(sound.SampleRate)
		player, err := ctx.NewPlayer(game.tone)
		if err != nil {
			return fmt.Errorf("audio: %w", err)
		}
		defer player.Close()
		player.Play()
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(display.Width*cfg.Display.Scale, display.Height*cfg.Display.Scale)
	ebiten.SetWindowTitle("gochip8 - " + romPath)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
