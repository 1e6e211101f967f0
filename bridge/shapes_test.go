package bridge

import (
	"math"
	"testing"

	"github.com/ByteArena/box2d"

	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/mapping"
	"github.com/wippyai/box2d-bridge/marshal"
)

func newTestWorld(t testing.TB) *World {
	t.Helper()
	w := NewWorld(0, -10)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestShapes_TypeAfterConstruction(t *testing.T) {
	w := newTestWorld(t)

	tests := []struct {
		name string
		make func() (handle.Handle, error)
		want mapping.ShapeType
	}{
		{"circle", w.Circles.New, mapping.ShapeCircle},
		{"edge", w.Edges.New, mapping.ShapeEdge},
		{"polygon", w.Polygons.New, mapping.ShapePolygon},
		{"chain", w.Chains.New, mapping.ShapeChain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := tt.make()
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got, err := w.Shapes.Type(h)
			if err != nil {
				t.Fatalf("Type: %v", err)
			}
			if got != tt.want {
				t.Errorf("Type = %v, want %v", got, tt.want)
			}
			if err := w.Shapes.Dispose(h); err != nil {
				t.Errorf("Dispose: %v", err)
			}
		})
	}
}

func TestCircles_PositionRoundTrip(t *testing.T) {
	w := newTestWorld(t)
	h, err := w.Circles.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := w.Circles.SetPosition(h, 1.25, -3.5); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	var pos marshal.Vec2
	if err := w.Circles.Position(h, &pos); err != nil {
		t.Fatalf("Position: %v", err)
	}
	if pos != (marshal.Vec2{1.25, -3.5}) {
		t.Errorf("Position = %v, want [1.25 -3.5]", pos)
	}

	if err := w.Shapes.SetRadius(h, 0.75); err != nil {
		t.Fatalf("SetRadius: %v", err)
	}
	r, err := w.Shapes.Radius(h)
	if err != nil {
		t.Fatalf("Radius: %v", err)
	}
	if r != 0.75 {
		t.Errorf("Radius = %v, want 0.75", r)
	}
}

func TestShapes_WrongVariant(t *testing.T) {
	w := newTestWorld(t)
	poly, _ := w.Polygons.New()

	var pos marshal.Vec2
	err := w.Circles.Position(poly, &pos)
	if !errors.IsKind(err, errors.KindWrongKind) {
		t.Fatalf("Circles.Position on polygon: got %v, want wrong_kind", err)
	}
}

func TestShapes_WrongEntityKind(t *testing.T) {
	w := newTestWorld(t)
	body, err := w.Bodies.New(mapping.BodyStatic, 0, 0, 0)
	if err != nil {
		t.Fatalf("Bodies.New: %v", err)
	}
	if _, err := w.Shapes.Type(body); !errors.IsKind(err, errors.KindWrongKind) {
		t.Fatalf("Shapes.Type on body: got %v, want wrong_kind", err)
	}
}

func TestShapes_DisposeTwice(t *testing.T) {
	w := newTestWorld(t)
	h, _ := w.Circles.New()

	if err := w.Shapes.Dispose(h); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if _, err := w.Shapes.Radius(h); !errors.IsKind(err, errors.KindStaleHandle) {
		t.Errorf("Radius after dispose: got %v, want stale_handle", err)
	}
	if err := w.Shapes.Dispose(h); !errors.IsKind(err, errors.KindDoubleDispose) {
		t.Errorf("second Dispose: got %v, want double_dispose", err)
	}
}

func TestEdges_HasVertexFlags(t *testing.T) {
	w := newTestWorld(t)
	h, _ := w.Edges.New()

	for _, get := range []func() (bool, error){
		func() (bool, error) { return w.Edges.HasVertex0(h) },
		func() (bool, error) { return w.Edges.HasVertex3(h) },
	} {
		has, err := get()
		if err != nil {
			t.Fatalf("HasVertex: %v", err)
		}
		if has {
			t.Error("new edge has a ghost vertex")
		}
	}

	for range 2 {
		if err := w.Edges.SetHasVertex0(h, true); err != nil {
			t.Fatalf("SetHasVertex0: %v", err)
		}
	}
	has, _ := w.Edges.HasVertex0(h)
	if !has {
		t.Error("HasVertex0 = false after setting it")
	}

	if err := w.Edges.Set(h, 0, 0, 2, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var v1, v2 marshal.Vec2
	w.Edges.Vertex1(h, &v1)
	w.Edges.Vertex2(h, &v2)
	if v1 != (marshal.Vec2{0, 0}) || v2 != (marshal.Vec2{2, 1}) {
		t.Errorf("vertices = %v %v", v1, v2)
	}
}

func TestChains_Create(t *testing.T) {
	w := newTestWorld(t)
	verts := []float32{0, 0, 1, 0, 2, 1, 3, 1}

	t.Run("chain", func(t *testing.T) {
		h, _ := w.Chains.New()
		if err := w.Chains.CreateChain(h, verts, 4); err != nil {
			t.Fatalf("CreateChain: %v", err)
		}
		n, _ := w.Chains.VertexCount(h)
		if n != 4 {
			t.Errorf("VertexCount = %d, want 4", n)
		}
		var v marshal.Vec2
		if err := w.Chains.Vertex(h, 2, &v); err != nil {
			t.Fatalf("Vertex: %v", err)
		}
		if v != (marshal.Vec2{2, 1}) {
			t.Errorf("Vertex(2) = %v", v)
		}
		if err := w.Chains.Vertex(h, 4, &v); !errors.IsKind(err, errors.KindOutOfBounds) {
			t.Errorf("Vertex(4): got %v, want out_of_bounds", err)
		}
		if err := w.Chains.CreateChain(h, verts, 4); !errors.IsKind(err, errors.KindInvalidInput) {
			t.Errorf("second create: got %v, want invalid_input", err)
		}
	})

	t.Run("loop", func(t *testing.T) {
		h, _ := w.Chains.New()
		if err := w.Chains.CreateLoop(h, verts, 4); err != nil {
			t.Fatalf("CreateLoop: %v", err)
		}
		n, _ := w.Chains.VertexCount(h)
		if n != 5 {
			t.Errorf("VertexCount = %d, want 5", n)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name  string
			verts []float32
			n     int
			loop  bool
			kind  errors.Kind
		}{
			{"too few for chain", []float32{0, 0}, 1, false, errors.KindInvalidInput},
			{"too few for loop", []float32{0, 0, 1, 0}, 2, true, errors.KindInvalidInput},
			{"short buffer", []float32{0, 0, 1}, 2, false, errors.KindOutOfBounds},
			{"coincident vertices", []float32{0, 0, 0, 0, 1, 1}, 3, false, errors.KindInvalidInput},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h, _ := w.Chains.New()
				var err error
				if tt.loop {
					err = w.Chains.CreateLoop(h, tt.verts, tt.n)
				} else {
					err = w.Chains.CreateChain(h, tt.verts, tt.n)
				}
				if !errors.IsKind(err, tt.kind) {
					t.Errorf("got %v, want %s", err, tt.kind)
				}
			})
		}
	})
}

func TestPolygons_Set(t *testing.T) {
	w := newTestWorld(t)
	h, _ := w.Polygons.New()

	square := []float32{-1, -1, 1, -1, 1, 1, -1, 1}
	if err := w.Polygons.Set(h, square, 4); err != nil {
		t.Fatalf("Set: %v", err)
	}
	n, _ := w.Polygons.VertexCount(h)
	if n != 4 {
		t.Errorf("VertexCount = %d, want 4", n)
	}

	tests := []struct {
		name string
		n    int
	}{
		{"two vertices", 2},
		{"nine vertices", 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]float32, 2*tt.n)
			if err := w.Polygons.Set(h, buf, tt.n); !errors.IsKind(err, errors.KindInvalidInput) {
				t.Errorf("got %v, want invalid_input", err)
			}
		})
	}
}

func TestPolygons_SetAsBox(t *testing.T) {
	w := newTestWorld(t)
	h, _ := w.Polygons.New()

	if err := w.Polygons.SetAsBox(h, 2, 0.5); err != nil {
		t.Fatalf("SetAsBox: %v", err)
	}
	n, _ := w.Polygons.VertexCount(h)
	if n != 4 {
		t.Fatalf("VertexCount = %d, want 4", n)
	}
	var v marshal.Vec2
	w.Polygons.Vertex(h, 0, &v)
	if v[0] != -2 && v[0] != 2 {
		t.Errorf("Vertex(0) = %v, want x of +-2", v)
	}
	if err := w.Polygons.SetAsBox(h, 0, 1); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("zero extent: got %v, want invalid_input", err)
	}
}

func TestEdges_GhostVertexRoundTrip(t *testing.T) {
	w := newTestWorld(t)
	h, _ := w.Edges.New()
	if err := w.Edges.Set(h, 0, 0, 2, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	tests := []struct {
		name string
		set  func(handle.Handle, float32, float32) error
		get  func(handle.Handle, *marshal.Vec2) error
		has  func(handle.Handle) (bool, error)
		v    marshal.Vec2
	}{
		{"vertex0", w.Edges.SetVertex0, w.Edges.Vertex0, w.Edges.HasVertex0, marshal.Vec2{-1, 0.5}},
		{"vertex3", w.Edges.SetVertex3, w.Edges.Vertex3, w.Edges.HasVertex3, marshal.Vec2{3, -0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.set(h, tt.v[0], tt.v[1]); err != nil {
				t.Fatalf("set: %v", err)
			}
			var got marshal.Vec2
			if err := tt.get(h, &got); err != nil {
				t.Fatalf("get: %v", err)
			}
			if got != tt.v {
				t.Errorf("got %v, want %v", got, tt.v)
			}
			if has, _ := tt.has(h); has {
				t.Error("setting the vertex also set its flag")
			}
		})
	}
}

func TestChains_GhostVertexRoundTrip(t *testing.T) {
	w := newTestWorld(t)
	h, _ := w.Chains.New()
	if err := w.Chains.CreateChain(h, []float32{0, 0, 1, 0, 2, 1}, 3); err != nil {
		t.Fatalf("CreateChain: %v", err)
	}

	if err := w.Chains.SetPrevVertex(h, -1, 0.5); err != nil {
		t.Fatalf("SetPrevVertex: %v", err)
	}
	if err := w.Chains.SetNextVertex(h, 3, 1.5); err != nil {
		t.Fatalf("SetNextVertex: %v", err)
	}

	shape, err := handle.Get[*box2d.B2ChainShape](w.handles, h, handle.KindShape)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	tests := []struct {
		name string
		has  bool
		got  box2d.B2Vec2
		want box2d.B2Vec2
	}{
		{"prev", shape.M_hasPrevVertex, shape.M_prevVertex, box2d.MakeB2Vec2(-1, 0.5)},
		{"next", shape.M_hasNextVertex, shape.M_nextVertex, box2d.MakeB2Vec2(3, 1.5)},
	}
	for _, tt := range tests {
		if !tt.has {
			t.Errorf("%s vertex flag not set", tt.name)
		}
		if tt.got != tt.want {
			t.Errorf("%s vertex = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	edge, _ := w.Edges.New()
	if err := w.Chains.SetPrevVertex(edge, 0, 0); !errors.IsKind(err, errors.KindWrongKind) {
		t.Errorf("SetPrevVertex on edge: got %v, want wrong_kind", err)
	}
}

func TestPolygons_SetAsOrientedBox(t *testing.T) {
	w := newTestWorld(t)
	h, _ := w.Polygons.New()

	if err := w.Polygons.SetAsOrientedBox(h, 1, 0.5, 2, 3, math.Pi/2); err != nil {
		t.Fatalf("SetAsOrientedBox: %v", err)
	}
	n, _ := w.Polygons.VertexCount(h)
	if n != 4 {
		t.Fatalf("VertexCount = %d, want 4", n)
	}

	// Corner (-1, -0.5) rotated a quarter turn lands at (0.5, -1) from the center.
	want := []marshal.Vec2{{2.5, 2}, {2.5, 4}, {1.5, 4}, {1.5, 2}}
	for i, wv := range want {
		var v marshal.Vec2
		if err := w.Polygons.Vertex(h, int32(i), &v); err != nil {
			t.Fatalf("Vertex(%d): %v", i, err)
		}
		if math.Abs(float64(v[0]-wv[0])) > 1e-5 || math.Abs(float64(v[1]-wv[1])) > 1e-5 {
			t.Errorf("Vertex(%d) = %v, want %v", i, v, wv)
		}
	}

	if err := w.Polygons.SetAsOrientedBox(h, 1, -1, 0, 0, 0); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("negative extent: got %v, want invalid_input", err)
	}
}
