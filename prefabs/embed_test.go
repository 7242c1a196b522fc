package prefabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanScriptPath(t *testing.T) {
	tests := map[string]string{
		"burn.tengo":                 "scripts/burn.tengo",
		"scripts/burn.tengo":         "scripts/burn.tengo",
		"prefabs/burn.tengo":         "scripts/burn.tengo",
		"prefabs/scripts/burn.tengo": "scripts/burn.tengo",
		"":                           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanScriptPath(in), in)
	}
}

func TestCleanPrefabPath(t *testing.T) {
	assert.Equal(t, "sandbox.yaml", cleanPrefabPath("prefabs/sandbox.yaml"))
	assert.Equal(t, "sandbox.yaml", cleanPrefabPath("sandbox.yaml"))
}

func TestEmbeddedAssetsLoad(t *testing.T) {
	cfg, err := LoadConfig(ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.MaxContacts)

	lib, err := LoadLibrary("prefabs/"+MaterialsFile, nil)
	require.NoError(t, err)
	assert.Contains(t, lib.Names(), "lava")
	assert.Contains(t, lib.Names(), "ghost")

	_, err = LoadScript("burn.tengo")
	require.NoError(t, err)
	_, err = LoadScript("missing.tengo")
	assert.Error(t, err)

	_, err = Load("nope.yaml")
	assert.Error(t, err)
}

func TestYAMLColor(t *testing.T) {
	spec, err := ParseSceneSpec([]byte("nodes:\n  - name: a\n    color: \"#ff000080\"\n"))
	require.NoError(t, err)
	r, g, b, a := spec.Nodes[0].Color.RGBA()
	assert.Equal(t, uint32(0x8080), a)
	assert.NotZero(t, r)
	assert.Zero(t, g)
	assert.Zero(t, b)

	_, err = ParseSceneSpec([]byte("nodes:\n  - name: a\n    color: \"#fff\"\n"))
	assert.Error(t, err)
}
