package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide/audio"
)

const (
	baseWidth  = 960
	baseHeight = 540
)

var background = color.RGBA{0x1d, 0x20, 0x26, 0xff}

type Game struct {
	frames int
	paused bool
	debug  bool

	world *World
	pool  *audio.EbitenPool
}

func NewGame(world *World, pool *audio.EbitenPool, debug bool) *Game {
	return &Game{world: world, pool: pool, debug: debug}
}

func (g *Game) Update() error {
	g.frames++

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.debug = !g.debug
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := g.world.Rebuild(); err != nil {
			g.world.log.Errorf("sandbox: rebuild: %v", err)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if err := g.world.SpawnBall(float64(x), float64(y)); err != nil {
			g.world.log.Warnf("sandbox: spawn: %v", err)
		}
	}

	if g.pool != nil {
		x, y := ebiten.CursorPosition()
		g.pool.SetListener(cp.Vector{X: float64(x), Y: float64(y)})
	}

	if g.paused && !inpututil.IsKeyJustPressed(ebiten.KeyN) {
		return nil
	}
	g.world.Step()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.world.DebugDraw(screen)

	msg := fmt.Sprintf("FPS: %.1f  step: %d", ebiten.ActualFPS(), g.world.dyn.StepCount())
	if g.paused {
		msg += "  [paused, N steps]"
	}
	if g.debug {
		msg += fmt.Sprintf("\nbodies: %d  collisions: %d  reloads: %d", len(g.world.dyn.Bodies()), g.world.dyn.Registry().Len(), g.world.reloads)
		if g.pool != nil {
			msg += fmt.Sprintf("  voices: %d", g.pool.Voices())
		}
	}
	ebitenutil.DebugPrint(screen, msg)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
