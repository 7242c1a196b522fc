package prefabs

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/milk9111/collide/common"
	"github.com/milk9111/collide/dynamics"
	"github.com/milk9111/collide/material"
)

// Default asset names.
const (
	MaterialsFile = "materials.yaml"
	SceneFile     = "sandbox.yaml"
	ConfigFile    = "dynamics.yaml"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// LoadScript prefers a script on disk so edits are picked up on reload.
func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

//go:embed *.yaml
var PrefabsFS embed.FS

func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return PrefabsFS.ReadFile(clean)
}

func ModTime(name string) (time.Time, bool) {
	clean := cleanPrefabPath(name)
	info, err := os.Stat(diskPrefabPath(clean))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// LoadLibrary builds a material library from a prefab file.
func LoadLibrary(name string, logger common.Logger) (*material.Library, error) {
	data, err := Load(name)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", name, err)
	}
	return material.Parse(data, LoadScript, logger)
}

// LoadConfig decodes a dynamics config prefab over the defaults.
func LoadConfig(name string) (dynamics.Config, error) {
	data, err := Load(name)
	if err != nil {
		return dynamics.Config{}, fmt.Errorf("prefabs: load %s: %w", name, err)
	}
	return dynamics.ParseConfig(data)
}

func cleanPrefabPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if strings.HasPrefix(s, "prefabs/") {
		return strings.TrimPrefix(s, "prefabs/")
	}
	return s
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}

	s := filepath.ToSlash(path)

	if after, ok := strings.CutPrefix(s, "prefabs/scripts/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	return fmt.Sprintf("scripts/%s", s)
}

func diskPrefabPath(clean string) string {
	return filepath.Join("prefabs", filepath.FromSlash(clean))
}
