package scene

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/box2d-bridge/errors"
)

// Scene describes a world: gravity, bodies with their fixtures, and joints.
type Scene struct {
	Gravity []float32 `yaml:"gravity" toml:"gravity"`
	Bodies  []Body    `yaml:"bodies" toml:"bodies"`
	Joints  []Joint   `yaml:"joints" toml:"joints"`
}

type Body struct {
	Name     string    `yaml:"name" toml:"name"`
	Type     string    `yaml:"type" toml:"type"`
	Position []float32 `yaml:"position" toml:"position"`
	Angle    float32   `yaml:"angle" toml:"angle"`
	Velocity []float32 `yaml:"velocity" toml:"velocity"`
	Fixtures []Fixture `yaml:"fixtures" toml:"fixtures"`
}

type Fixture struct {
	Shape       Shape   `yaml:"shape" toml:"shape"`
	Density     float32 `yaml:"density" toml:"density"`
	Friction    float32 `yaml:"friction" toml:"friction"`
	Restitution float32 `yaml:"restitution" toml:"restitution"`
	Sensor      bool    `yaml:"sensor" toml:"sensor"`
	Filter      *Filter `yaml:"filter" toml:"filter"`
}

// Shape is one of circle, edge, chain, loop, polygon or box.
type Shape struct {
	Type     string      `yaml:"type" toml:"type"`
	Radius   float32     `yaml:"radius" toml:"radius"`
	Center   []float32   `yaml:"center" toml:"center"`
	Vertices [][]float32 `yaml:"vertices" toml:"vertices"`
	HalfSize []float32   `yaml:"half_size" toml:"half_size"`
	Angle    float32     `yaml:"angle" toml:"angle"`
}

type Filter struct {
	Category uint16 `yaml:"category" toml:"category"`
	Mask     uint16 `yaml:"mask" toml:"mask"`
	Group    int16  `yaml:"group" toml:"group"`
}

// Joint references bodies and, for gear joints, other joints by name.
type Joint struct {
	Name             string    `yaml:"name" toml:"name"`
	Type             string    `yaml:"type" toml:"type"`
	BodyA            string    `yaml:"body_a" toml:"body_a"`
	BodyB            string    `yaml:"body_b" toml:"body_b"`
	AnchorA          []float32 `yaml:"anchor_a" toml:"anchor_a"`
	AnchorB          []float32 `yaml:"anchor_b" toml:"anchor_b"`
	GroundA          []float32 `yaml:"ground_a" toml:"ground_a"`
	GroundB          []float32 `yaml:"ground_b" toml:"ground_b"`
	Axis             []float32 `yaml:"axis" toml:"axis"`
	Target           []float32 `yaml:"target" toml:"target"`
	Joint1           string    `yaml:"joint1" toml:"joint1"`
	Joint2           string    `yaml:"joint2" toml:"joint2"`
	Ratio            float32   `yaml:"ratio" toml:"ratio"`
	MaxLength        float32   `yaml:"max_length" toml:"max_length"`
	MaxForce         float32   `yaml:"max_force" toml:"max_force"`
	CollideConnected bool      `yaml:"collide_connected" toml:"collide_connected"`
	Limits           []float32 `yaml:"limits" toml:"limits"`
	Motor            *Motor    `yaml:"motor" toml:"motor"`
}

// Motor enables a joint motor after creation.
type Motor struct {
	Speed     float32 `yaml:"speed" toml:"speed"`
	MaxForce  float32 `yaml:"max_force" toml:"max_force"`
	MaxTorque float32 `yaml:"max_torque" toml:"max_torque"`
}

// Format selects the scene decoder.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, errors.New(errors.PhaseScene, errors.KindInvalidInput).
			Op("load").
			Value(path).
			Detail("unsupported scene file extension %q", filepath.Ext(path)).
			Build()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseScene, errors.KindNotFound, err, "read scene "+path)
	}
	return Parse(data, format)
}

// Parse decodes a scene. Unknown keys are rejected.
func Parse(data []byte, format Format) (*Scene, error) {
	var s Scene
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, errors.Wrap(errors.PhaseScene, errors.KindInvalidData, err, "decode yaml scene")
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseScene, errors.KindInvalidData, err, "decode toml scene")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.PhaseScene, errors.KindInvalidData).
				Op("decode").
				Detail("unknown toml key %q", undecoded[0].String()).
				Build()
		}
	default:
		return nil, errors.New(errors.PhaseScene, errors.KindInvalidInput).
			Op("parse").
			Value(format).
			Detail("unknown scene format %q", string(format)).
			Build()
	}
	return &s, nil
}
