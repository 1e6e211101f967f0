package scene

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

func TestLoad_Formats(t *testing.T) {
	for _, file := range []string{"pendulum.yaml", "pendulum.toml"} {
		t.Run(file, func(t *testing.T) {
			s, err := Load(filepath.Join("testdata", file))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(s.Bodies) != 3 {
				t.Fatalf("got %d bodies, want 3", len(s.Bodies))
			}
			ball := s.Bodies[1]
			if ball.Name != "ball" || ball.Fixtures[0].Shape.Radius != 0.5 {
				t.Errorf("ball = %+v", ball)
			}
			if f := ball.Fixtures[0].Filter; f == nil || f.Category != 2 || f.Mask != 0xffff || f.Group != -1 {
				t.Errorf("ball filter = %+v", f)
			}
			if len(s.Joints) != 1 || s.Joints[0].Motor == nil || s.Joints[0].Motor.MaxTorque != 10 {
				t.Errorf("joints = %+v", s.Joints)
			}
		})
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("scene.json")
	if !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestParse_UnknownKeys(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"yaml", FormatYAML, "bodies:\n  - name: a\n    colour: red\n"},
		{"toml", FormatTOML, "[[bodies]]\nname = \"a\"\ncolour = \"red\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			if !errors.IsKind(err, errors.KindInvalidData) {
				t.Fatalf("err = %v, want invalid data", err)
			}
		})
	}
}

func TestScene_BuildAndStep(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "pendulum.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	w, built, err := s.NewWorld()
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	defer w.Close()

	ball := built.Bodies["ball"]
	typ, err := w.Bodies.Type(built.Bodies["ground"])
	if err != nil || typ != mapping.BodyStatic {
		t.Errorf("ground type = %v, %v", typ, err)
	}
	if n := len(built.Fixtures["ball"]); n != 1 {
		t.Fatalf("ball has %d fixtures, want 1", n)
	}

	f := built.Fixtures["ball"][0]
	if st, _ := w.Fixtures.Type(f); st != mapping.ShapeCircle {
		t.Errorf("ball fixture type = %v", st)
	}
	if r, _ := w.Fixtures.Restitution(f); r != 0.25 {
		t.Errorf("restitution = %v, want 0.25", r)
	}
	var filter marshal.Filter
	if err := w.Fixtures.FilterData(f, &filter); err != nil {
		t.Fatalf("FilterData: %v", err)
	}
	if filter != (marshal.Filter{-1, 2, -1}) {
		t.Errorf("filter = %v", filter)
	}

	hinge := built.Joints["hinge"]
	if jt, _ := w.Joints.Type(hinge); jt != mapping.JointRevolute {
		t.Errorf("hinge type = %v", jt)
	}
	if on, _ := w.Revolute.IsLimitEnabled(hinge); !on {
		t.Error("hinge limit not enabled")
	}
	if on, _ := w.Revolute.IsMotorEnabled(hinge); !on {
		t.Error("hinge motor not enabled")
	}
	if lo, _ := w.Revolute.LowerLimit(hinge); lo != -0.5 {
		t.Errorf("lower limit = %v", lo)
	}

	var before, after marshal.Vec2
	if err := w.Bodies.Position(ball, &before); err != nil {
		t.Fatalf("Position: %v", err)
	}
	for range 10 {
		if err := w.Step(1.0/60, 8, 3); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if err := w.Bodies.Position(ball, &after); err != nil {
		t.Fatalf("Position: %v", err)
	}
	if after[1] >= before[1] {
		t.Errorf("ball did not fall: %v -> %v", before, after)
	}
}

func TestScene_BuildErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		kind errors.Kind
	}{
		{
			"unknown shape",
			"bodies:\n  - fixtures:\n      - shape: {type: blob}\n",
			errors.KindInvalidInput,
		},
		{
			"unknown body type",
			"bodies:\n  - type: floating\n",
			errors.KindInvalidInput,
		},
		{
			"edge vertex count",
			"bodies:\n  - fixtures:\n      - shape: {type: edge, vertices: [[0, 0]]}\n",
			errors.KindInvalidInput,
		},
		{
			"short vector",
			"bodies:\n  - position: [1]\n",
			errors.KindInvalidInput,
		},
		{
			"polygon too small",
			"bodies:\n  - fixtures:\n      - shape: {type: polygon, vertices: [[0, 0], [1, 0]]}\n",
			errors.KindInvalidInput,
		},
		{
			"unknown joint body",
			"bodies:\n  - name: a\njoints:\n  - {type: weld, body_a: a, body_b: b}\n",
			errors.KindNotFound,
		},
		{
			"unknown joint type",
			"bodies:\n  - name: a\n  - name: b\njoints:\n  - {type: spring, body_a: a, body_b: b}\n",
			errors.KindInvalidInput,
		},
		{
			"limits on weld",
			"bodies:\n  - name: a\n  - name: b\njoints:\n  - {type: weld, body_a: a, body_b: b, limits: [0, 1]}\n",
			errors.KindInvalidInput,
		},
		{
			"duplicate body",
			"bodies:\n  - name: a\n  - name: a\n",
			errors.KindInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.yaml), FormatYAML)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			w, _, err := s.NewWorld()
			if err == nil {
				w.Close()
				t.Fatal("NewWorld succeeded")
			}
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("err = %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestScene_GearJoint(t *testing.T) {
	data := `
bodies:
  - {name: ground, type: static}
  - {name: left, position: [-2, 0], fixtures: [{shape: {type: circle, radius: 1}, density: 1}]}
  - {name: right, position: [2, 0], fixtures: [{shape: {type: circle, radius: 1}, density: 1}]}
joints:
  - {name: l, type: revolute, body_a: ground, body_b: left, anchor_a: [-2, 0]}
  - {name: r, type: revolute, body_a: ground, body_b: right, anchor_a: [2, 0]}
  - {name: g, type: gear, body_a: left, body_b: right, joint1: l, joint2: r, ratio: 2}
`
	s, err := Parse([]byte(data), FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	w, built, err := s.NewWorld()
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	defer w.Close()

	g := built.Joints["g"]
	j1, err := w.Gear.Joint1(g)
	if err != nil {
		t.Fatalf("Joint1: %v", err)
	}
	if j1 != built.Joints["l"] {
		t.Errorf("Joint1 = %v, want %v", j1, built.Joints["l"])
	}
	if ratio, _ := w.Gear.Ratio(g); ratio != 2 {
		t.Errorf("Ratio = %v, want 2", ratio)
	}
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.yaml")
	if err := os.WriteFile(path, []byte("bodies: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "notes.yaml")

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("bodies: [{name: a}]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		if got != path {
			t.Errorf("event for %q, want %q", got, path)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
	}
}

func TestWatcher_CloseClosesChannels(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-w.Events; ok {
		t.Error("Events still open")
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestNewWatcher_MissingPath(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
