package dynamics

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config tunes the world and the collision subsystem.
type Config struct {
	StepSize    float64 `yaml:"step_size"`
	Iterations  int     `yaml:"iterations"`
	GravityX    float64 `yaml:"gravity_x"`
	GravityY    float64 `yaml:"gravity_y"`
	MaxContacts int     `yaml:"max_contacts"`

	// Surface blending. See blendSurface.
	FrictionScale  float64 `yaml:"friction_scale"`
	StiffnessScale float64 `yaml:"stiffness_scale"`
	StiffnessFloor float64 `yaml:"stiffness_floor"`
	DampingScale   float64 `yaml:"damping_scale"`
	// BounceVelocity is the approach speed below which contacts do not bounce.
	BounceVelocity float64 `yaml:"bounce_velocity"`

	AutoDisable AutoDisableConfig `yaml:"auto_disable"`
	Audio       AudioConfig       `yaml:"audio"`
}

type AutoDisableConfig struct {
	Enabled          bool    `yaml:"enabled"`
	LinearThreshold  float64 `yaml:"linear_threshold"`
	AngularThreshold float64 `yaml:"angular_threshold"`
	// IdleTime in seconds below both thresholds before a body is disabled.
	IdleTime float64 `yaml:"idle_time"`
}

type AudioConfig struct {
	ImpactWeight  float64       `yaml:"impact_weight"`
	SlideWeight   float64       `yaml:"slide_weight"`
	ClipFraction  float64       `yaml:"clip_fraction"`
	ImpactDivisor float64       `yaml:"impact_divisor"`
	SkidDivisor   float64       `yaml:"skid_divisor"`
	ImpactGap     time.Duration `yaml:"impact_gap"`
	LoopGap       time.Duration `yaml:"loop_gap"`
	LoopFade      time.Duration `yaml:"loop_fade"`
}

func DefaultConfig() Config {
	return Config{
		StepSize:       1.0 / 60.0,
		Iterations:     10,
		GravityY:       900,
		MaxContacts:    20,
		FrictionScale:  1.2,
		StiffnessScale: 8000,
		StiffnessFloor: 1e-3,
		DampingScale:   80,
		BounceVelocity: 10,
		AutoDisable: AutoDisableConfig{
			Enabled:          true,
			LinearThreshold:  2,
			AngularThreshold: 0.05,
			IdleTime:         0.5,
		},
		Audio: AudioConfig{
			ImpactWeight:  0.3,
			SlideWeight:   0.1,
			ClipFraction:  0.15,
			ImpactDivisor: 3,
			SkidDivisor:   2,
			ImpactGap:     500 * time.Millisecond,
			LoopGap:       250 * time.Millisecond,
			LoopFade:      200 * time.Millisecond,
		},
	}
}

// ParseConfig decodes yaml over DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("dynamics: unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a yaml config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("dynamics: load config %s: %w", path, err)
	}
	return ParseConfig(data)
}

func (c Config) Validate() error {
	switch {
	case c.StepSize <= 0:
		return fmt.Errorf("dynamics: step_size must be positive, got %v", c.StepSize)
	case c.Iterations <= 0:
		return fmt.Errorf("dynamics: iterations must be positive, got %d", c.Iterations)
	case c.MaxContacts <= 0:
		return fmt.Errorf("dynamics: max_contacts must be positive, got %d", c.MaxContacts)
	case c.StiffnessFloor <= 0:
		return fmt.Errorf("dynamics: stiffness_floor must be positive, got %v", c.StiffnessFloor)
	}
	return nil
}

func (c Config) stepDuration() time.Duration {
	return time.Duration(c.StepSize * float64(time.Second))
}
