// Package config provides the engine settings: snap radius, coincidence
// tolerance, piece dimensions and any extra piece definitions, loaded from a
// TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"track-planner/internal/catalog"
	"track-planner/internal/piece"
	"track-planner/pkg/geometry"
)

const (
	appDir     = "track-planner"
	configFile = "config.toml"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// PortSpec describes one port of a user-defined piece.
type PortSpec struct {
	ID        string             `toml:"id"`
	X         float64            `toml:"x"`
	Y         float64            `toml:"y"`
	Direction geometry.Direction `toml:"direction"` // "N", "NE", ... "NW"
}

// PieceSpec describes a user-defined piece added to the catalog.
type PieceSpec struct {
	Name  string     `toml:"name"`
	Kind  string     `toml:"kind"`
	Ports []PortSpec `toml:"port"`
}

// Config holds engine settings. Lengths are millimetres.
type Config struct {
	// SnapRadius is how close a dragged port must be to a target to snap.
	SnapRadius float64 `toml:"snap_radius"`
	// CoincidenceTolerance is how close two ports must be to count as joined
	// after placement. It checks alignment, so it is far smaller than SnapRadius.
	CoincidenceTolerance float64 `toml:"coincidence_tolerance"`

	StraightLength float64 `toml:"straight_length"`
	CurveRadius    float64 `toml:"curve_radius"`
	CurveAngle     float64 `toml:"curve_angle"`
	TrackWidth     float64 `toml:"track_width"`

	Pieces []PieceSpec `toml:"piece"`
}

// Default returns the default configuration.
func Default() Config {
	d := catalog.DefaultDimensions()
	return Config{
		SnapRadius:           10,
		CoincidenceTolerance: 0.5,
		StraightLength:       d.StraightLength,
		CurveRadius:          d.CurveRadius,
		CurveAngle:           d.CurveAngle,
		TrackWidth:           d.TrackWidth,
	}
}

// WithSnapRadius returns a copy with a different snap radius.
func (c Config) WithSnapRadius(radius float64) Config {
	c.SnapRadius = radius
	return c
}

// WithCoincidenceTolerance returns a copy with a different coincidence tolerance.
func (c Config) WithCoincidenceTolerance(tolerance float64) Config {
	c.CoincidenceTolerance = tolerance
	return c
}

// DefaultPath returns ~/.config/track-planner/config.toml (or the platform
// equivalent).
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, configFile)
}

// Load reads the TOML file at path over the defaults. Keys absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault reads the file at DefaultPath. A missing file yields the
// defaults without error.
func LoadDefault() (Config, error) {
	path := DefaultPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes the configuration as TOML, creating parent directories.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("save config %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	return nil
}

// Dimensions returns the piece dimensions part of the configuration.
func (c Config) Dimensions() catalog.Dimensions {
	return catalog.Dimensions{
		StraightLength: c.StraightLength,
		CurveRadius:    c.CurveRadius,
		CurveAngle:     c.CurveAngle,
		TrackWidth:     c.TrackWidth,
	}
}

// Validate checks tolerances, dimensions and piece specs.
func (c Config) Validate() error {
	if c.SnapRadius <= 0 {
		return fmt.Errorf("%w: snap_radius must be positive, got %v", ErrInvalidConfig, c.SnapRadius)
	}
	if c.CoincidenceTolerance <= 0 {
		return fmt.Errorf("%w: coincidence_tolerance must be positive, got %v", ErrInvalidConfig, c.CoincidenceTolerance)
	}
	if c.CoincidenceTolerance > c.SnapRadius {
		return fmt.Errorf("%w: coincidence_tolerance %v exceeds snap_radius %v",
			ErrInvalidConfig, c.CoincidenceTolerance, c.SnapRadius)
	}
	if err := c.Dimensions().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	names := make(map[string]bool)
	for i, spec := range c.Pieces {
		if spec.Name == "" {
			return fmt.Errorf("%w: piece %d has no name", ErrInvalidConfig, i)
		}
		if names[spec.Name] {
			return fmt.Errorf("%w: duplicate piece name %q", ErrInvalidConfig, spec.Name)
		}
		names[spec.Name] = true
		if err := spec.validate(); err != nil {
			return fmt.Errorf("%w: piece %q: %v", ErrInvalidConfig, spec.Name, err)
		}
	}
	return nil
}

func (s PieceSpec) validate() error {
	switch piece.Kind(s.Kind) {
	case piece.KindStraight, piece.KindCurve, piece.KindTurnout, piece.KindBridge:
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}
	if len(s.Ports) == 0 {
		return errors.New("no ports")
	}
	ids := make(map[string]bool)
	for _, p := range s.Ports {
		if p.ID == "" {
			return errors.New("port with empty id")
		}
		if ids[p.ID] {
			return fmt.Errorf("duplicate port id %q", p.ID)
		}
		ids[p.ID] = true
	}
	return nil
}

// Definition converts the piece spec into a catalog definition.
func (s PieceSpec) Definition() *piece.Definition {
	def := &piece.Definition{Kind: piece.Kind(s.Kind), Name: s.Name}
	for _, p := range s.Ports {
		def.Ports = append(def.Ports, piece.Port{
			ID:        p.ID,
			Position:  geometry.NewVec2(p.X, p.Y),
			Direction: p.Direction,
		})
	}
	return def
}

// Library builds the standard catalog for the configured dimensions plus the
// configured extra pieces. An extra piece with a standard name replaces it.
func (c Config) Library() (*catalog.Library, error) {
	lib, err := catalog.NewStandardLibrary(c.Dimensions())
	if err != nil {
		return nil, err
	}
	for _, spec := range c.Pieces {
		lib.Add(spec.Definition())
	}
	return lib, nil
}
