package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/milk9111/collide/audio"
	"github.com/milk9111/collide/common"
	"github.com/milk9111/collide/dynamics"
	"github.com/milk9111/collide/material"
	"github.com/milk9111/collide/prefabs"
	"github.com/milk9111/collide/scene"
)

type worldOptions struct {
	configPath    string
	materialsPath string
	scenePath     string
}

// World owns one built scene and applies hot reloads between steps.
type World struct {
	opts worldOptions
	log  common.Logger
	pool audio.Pool

	dyn   *dynamics.Dynamics
	spec  *prefabs.SceneSpec
	lib   *material.Library
	built *prefabs.Built

	watcher *prefabs.Watcher
	reloads int
}

func NewWorld(opts worldOptions, pool audio.Pool, logger common.Logger) (*World, error) {
	w := &World{opts: opts, log: logger, pool: pool}
	if err := w.build(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *World) build() error {
	spec, err := w.loadScene()
	if err != nil {
		return err
	}
	cfg, err := w.loadConfig(spec)
	if err != nil {
		return err
	}
	lib, err := w.loadLibrary(spec)
	if err != nil {
		return err
	}

	d, err := dynamics.New(scene.New(),
		dynamics.WithConfig(cfg),
		dynamics.WithLogger(w.log),
		dynamics.WithAudio(w.pool),
		dynamics.WithFallbackMaterial(lib.Default()),
	)
	if err != nil {
		return err
	}
	built, err := prefabs.BuildScene(spec, d, lib)
	if err != nil {
		return err
	}

	w.dyn, w.spec, w.lib, w.built = d, spec, lib, built
	w.log.Infof("sandbox: built %q: %d nodes, %d parts, %d bodies", spec.Name, len(built.Nodes), len(built.Parts), len(d.Bodies()))
	return nil
}

// Rebuild discards the current scene and builds it again from disk.
func (w *World) Rebuild() error {
	return w.build()
}

func (w *World) loadScene() (*prefabs.SceneSpec, error) {
	if w.opts.scenePath == "" {
		return prefabs.LoadSceneSpec(prefabs.SceneFile)
	}
	data, err := os.ReadFile(w.opts.scenePath)
	if err != nil {
		return nil, fmt.Errorf("sandbox: read scene: %w", err)
	}
	return prefabs.ParseSceneSpec(data)
}

func (w *World) loadConfig(spec *prefabs.SceneSpec) (dynamics.Config, error) {
	if w.opts.configPath != "" {
		return dynamics.LoadConfig(w.opts.configPath)
	}
	if spec.Config != "" {
		return prefabs.LoadConfig(spec.Config)
	}
	return dynamics.DefaultConfig(), nil
}

func (w *World) loadLibrary(spec *prefabs.SceneSpec) (*material.Library, error) {
	if w.opts.materialsPath == "" {
		name := spec.Materials
		if name == "" {
			name = prefabs.MaterialsFile
		}
		return prefabs.LoadLibrary(name, w.log)
	}
	data, err := os.ReadFile(w.opts.materialsPath)
	if err != nil {
		return nil, fmt.Errorf("sandbox: read materials: %w", err)
	}
	return material.Parse(data, w.scriptLoader(), w.log)
}

// scriptLoader looks next to the materials file before the embedded scripts.
func (w *World) scriptLoader() material.ScriptLoader {
	dir := filepath.Dir(w.opts.materialsPath)
	return func(name string) ([]byte, error) {
		for _, p := range []string{filepath.Join(dir, name), filepath.Join(dir, "scripts", name)} {
			if data, err := os.ReadFile(p); err == nil {
				return data, nil
			}
		}
		return prefabs.LoadScript(name)
	}
}

// Watch starts reporting edits under the prefab directories.
func (w *World) Watch() error {
	dirs := []string{}
	for _, dir := range []string{"prefabs", filepath.Join("prefabs", "scripts")} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if w.opts.materialsPath != "" {
		dirs = append(dirs, filepath.Dir(w.opts.materialsPath))
	}
	if len(dirs) == 0 {
		return fmt.Errorf("sandbox: nothing to watch")
	}
	watcher, err := prefabs.NewWatcher(w.log, dirs...)
	if err != nil {
		return err
	}
	w.watcher = watcher
	w.log.Infof("sandbox: watching %v", dirs)
	return nil
}

// pollReload drains pending file changes and swaps the material library.
// It must run between steps.
func (w *World) pollReload() {
	if w.watcher == nil {
		return
	}
	changed := false
drain:
	for {
		select {
		case ch, ok := <-w.watcher.Events:
			if !ok {
				w.watcher = nil
				return
			}
			w.log.Debugf("sandbox: %s changed", ch.Path)
			changed = true
		case err, ok := <-w.watcher.Errors:
			if ok {
				w.log.Warnf("sandbox: watcher: %v", err)
			}
		default:
			break drain
		}
	}
	if !changed {
		return
	}

	lib, err := w.loadLibrary(w.spec)
	if err != nil {
		w.log.Warnf("sandbox: reload materials: %v", err)
		return
	}
	if err := prefabs.ApplyMaterials(w.spec, w.built, lib); err != nil {
		w.log.Warnf("sandbox: apply materials: %v", err)
	}
	w.lib = lib
	w.reloads++
	w.log.Infof("sandbox: materials reloaded (%d)", w.reloads)
}

// Step advances the world once and logs what the material actions sent.
func (w *World) Step() {
	w.pollReload()
	w.dyn.Step()
	w.drainMessages()
}

func (w *World) drainMessages() {
	sc := w.dyn.Scene()
	for _, msg := range sc.Drain() {
		from, to := sc.Node(msg.From), sc.Node(msg.To)
		w.log.Infof("step %d: %s -> %s: %s %v", w.dyn.StepCount(), from.Name(), to.Name(), msg.Name, msg.Args)
	}
}

func (w *World) Close() error {
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

// SpawnBall drops a rubber ball at x, y.
func (w *World) SpawnBall(x, y float64) error {
	node := w.dyn.Scene().Create(fmt.Sprintf("spawned-%d", w.dyn.StepCount()))
	mats, _ := w.lib.Lookup("rubber")
	part := w.dyn.NewPart(node, "body", mats...)
	def, err := prefabs.BodyDef(prefabs.BodySpec{
		Transform: prefabs.TransformSpec{X: x, Y: y},
		Density:   1,
		Shape:     map[string]any{"circle": map[string]any{"radius": 10}},
	})
	if err != nil {
		return err
	}
	_, err = part.AddBody(def)
	return err
}
