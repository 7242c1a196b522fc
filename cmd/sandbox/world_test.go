package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/collide/audio"
	"github.com/milk9111/collide/common"
	"github.com/milk9111/collide/prefabs"
)

func TestHeadlessSandboxSteps(t *testing.T) {
	var out bytes.Buffer
	logger := common.NewLoggerTo("sandbox", false, &out, &out)

	require.NoError(t, runHeadless(worldOptions{}, 30, false, logger))
	assert.Contains(t, out.String(), `built "sandbox"`)
	assert.Contains(t, out.String(), "30 steps")
}

func TestSpawnBallAddsBody(t *testing.T) {
	w, err := NewWorld(worldOptions{}, audio.NewNullPool(), common.NopLogger{})
	require.NoError(t, err)
	defer w.Close()

	before := len(w.dyn.Bodies())
	require.NoError(t, w.SpawnBall(400, 50))
	assert.Len(t, w.dyn.Bodies(), before+1)
	w.Step()
}

func TestMissingSceneFails(t *testing.T) {
	_, err := NewWorld(worldOptions{scenePath: filepath.Join(t.TempDir(), "none.yaml")}, audio.NewNullPool(), common.NopLogger{})
	assert.Error(t, err)
}

func TestWatchReloadsMaterials(t *testing.T) {
	data, err := prefabs.Load(prefabs.MaterialsFile)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "materials.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	w, err := NewWorld(worldOptions{materialsPath: path}, audio.NewNullPool(), common.NopLogger{})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch())

	w.Step()
	require.NoError(t, os.WriteFile(path, data, 0o644))

	deadline := time.Now().Add(5 * time.Second)
	for w.reloads == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
		w.Step()
	}
	assert.GreaterOrEqual(t, w.reloads, 1)
	assert.Equal(t, "stone", w.built.PartByName("ground", "floor").Materials()[0].Name)
}
