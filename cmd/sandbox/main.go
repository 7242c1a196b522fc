package main

import (
	"flag"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/collide/audio"
	"github.com/milk9111/collide/common"
)

func main() {
	configPath := flag.String("config", "", "dynamics config yaml (defaults to the scene's embedded config)")
	materialsPath := flag.String("materials", "", "material library yaml (defaults to the embedded library)")
	scenePath := flag.String("scene", "", "scene yaml (defaults to the embedded sandbox)")
	headless := flag.Bool("headless", false, "step without a window and log collision messages")
	steps := flag.Int("steps", 600, "steps to run in headless mode")
	watch := flag.Bool("watch", false, "reload materials and scripts when they change on disk")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := common.NewDefaultLogger("sandbox", *debug)
	opts := worldOptions{configPath: *configPath, materialsPath: *materialsPath, scenePath: *scenePath}

	if *headless {
		if err := runHeadless(opts, *steps, *watch, logger); err != nil {
			log.Fatal(err)
		}
		return
	}

	pool := audio.NewEbitenPool(stockClips(), logger)
	defer pool.Close()

	world, err := NewWorld(opts, pool, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer world.Close()
	if *watch {
		if err := world.Watch(); err != nil {
			logger.Warnf("sandbox: watch: %v", err)
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("collide sandbox")
	ebiten.SetTPS(int(math.Round(1 / world.dyn.Config().StepSize)))

	if err := ebiten.RunGame(NewGame(world, pool, *debug)); err != nil {
		log.Fatal(err)
	}
}

func runHeadless(opts worldOptions, steps int, watch bool, logger common.Logger) error {
	pool := audio.NewNullPool()
	world, err := NewWorld(opts, pool, logger)
	if err != nil {
		return err
	}
	defer world.Close()
	if watch {
		if err := world.Watch(); err != nil {
			logger.Warnf("sandbox: watch: %v", err)
		}
	}

	for i := 0; i < steps; i++ {
		world.Step()
	}
	logger.Infof("sandbox: %d steps, %d live collisions, %d bodies", world.dyn.StepCount(), world.dyn.Registry().Len(), len(world.dyn.Bodies()))
	return nil
}
