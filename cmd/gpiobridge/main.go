package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"tinyrv/pkg/gpio"
)

const (
	screenWidth  = 320
	screenHeight = 64
)

var keyFor = map[rune]ebiten.Key{
	'a': ebiten.KeyA,
	's': ebiten.KeyS,
	'd': ebiten.KeyD,
	'f': ebiten.KeyF,
}

type Game struct {
	ctx    context.Context
	bridge *gpio.Bridge
	addr   string

	pressed func(ebiten.Key) bool
	face    text.Face

	keys gpio.Keys
	sent int
}

func newGame(ctx context.Context, b *gpio.Bridge, addr string) *Game {
	return &Game{
		ctx:     ctx,
		bridge:  b,
		addr:    addr,
		pressed: ebiten.IsKeyPressed,
		face:    text.NewGoXFace(basicfont.Face7x13),
	}
}

// Update samples the keys once per frame and blocks until the simulator has
// answered.
func (g *Game) Update() error {
	if g.pressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.keys = gpio.Sample(func(r rune) bool {
		return g.pressed(keyFor[r])
	})

	err := g.bridge.Send(g.ctx, g.keys)
	if err != nil {
		return err
	}

	g.sent++

	return nil
}

func (g *Game) status() []string {
	var sb strings.Builder

	for i, r := range gpio.Layout {
		if g.keys.Has(1 << i) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('.')
		}
	}

	return []string{
		fmt.Sprintf("keys %-2v [%s]", g.keys, sb.String()),
		fmt.Sprintf("sent %d to %s", g.sent, g.addr),
		"esc to quit",
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	for i, line := range g.status() {
		op := &text.DrawOptions{}
		op.GeoM.Translate(8, float64(4+i*16))
		op.ColorScale.ScaleWithColor(color.White)

		text.Draw(screen, line, g.face, op)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	app := &cli.Command{
		Name:        "gpiobridge",
		Description: "gpiobridge sends a/s/d/f key state to the TinyRiscV simulator GPIO port",
		Action:      run,
		Flags: []*cli.Flag{
			cli.NewFlag("addr", gpio.DefaultAddr, "simulator GPIO address"),
			cli.NewFlag("timeout", "1s", "per-key send deadline, 0 to wait forever"),
			cli.NewFlag("v", "", "tlog verbosity topics"),
			cli.HelpFlag,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func run(c *cli.Command) (err error) {
	tlog.SetVerbosity(c.String("v"))

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	addr := c.String("addr")

	timeout, err := parseTimeout(c.String("timeout"))
	if err != nil {
		return err
	}

	b, err := gpio.Dial(ctx, addr)
	if err != nil {
		return err
	}

	b.Timeout = timeout

	ebiten.SetWindowSize(2*screenWidth, 2*screenHeight)
	ebiten.SetWindowTitle("TinyRiscV GPIO")

	g := newGame(ctx, b, addr)

	err = ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}

	if e := b.Close(ctx); err == nil {
		err = e
	}

	return err
}

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrap(err, "timeout")
	}

	if d < 0 {
		return 0, errors.New("timeout: negative duration %v", d)
	}

	return d, nil
}
