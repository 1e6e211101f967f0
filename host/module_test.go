package host

import (
	"context"
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/box2d-bridge/bridge"
	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/internal/wasmtest"
	"github.com/wippyai/box2d-bridge/mapping"
)

func newTestModule(t *testing.T) (*Module, api.Module) {
	t.Helper()
	w := bridge.NewWorld(0, -10)
	t.Cleanup(func() { w.Close() })
	_, guest := wasmtest.Guest(t)
	return New(w), guest
}

// invoke calls a host function as the guest would and returns the trap, if any.
func invoke(t *testing.T, m *Module, guest api.Module, name string, stack ...uint64) (out []uint64, err error) {
	t.Helper()
	f, ok := m.Lookup(name)
	if !ok {
		t.Fatalf("no host function %q", name)
	}
	n := max(len(f.Params), len(f.Results))
	out = make([]uint64, n)
	copy(out, stack)

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				t.Fatalf("%s panicked with %v", name, r)
			}
			err = e
		}
	}()
	f.Handler(context.Background(), guest, out)
	return out[:len(f.Results)], nil
}

func mustInvoke(t *testing.T, m *Module, guest api.Module, name string, stack ...uint64) []uint64 {
	t.Helper()
	out, err := invoke(t, m, guest, name, stack...)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return out
}

func readF32s(t *testing.T, guest api.Module, ptr uint32, n int) []float32 {
	t.Helper()
	out := make([]float32, n)
	for i := range out {
		v, ok := guest.Memory().ReadFloat32Le(ptr + uint32(4*i))
		if !ok {
			t.Fatalf("read f32 at %#x", ptr+uint32(4*i))
		}
		out[i] = v
	}
	return out
}

func TestModule_TableIsConsistent(t *testing.T) {
	m, _ := newTestModule(t)

	if len(m.Functions()) < 150 {
		t.Errorf("only %d functions registered", len(m.Functions()))
	}
	for _, f := range m.Functions() {
		if f.Name != strings.ToLower(f.Name) || strings.ContainsAny(f.Name, "_ ") {
			t.Errorf("%q is not kebab-case", f.Name)
		}
		if len(f.ParamTypes()) != len(f.Params) || len(f.ResultTypes()) != len(f.Results) {
			t.Errorf("%s: core types do not match WIT types", f.Name)
		}
		if f.Handler == nil {
			t.Errorf("%s: nil handler", f.Name)
		}
	}
}

func TestSignature(t *testing.T) {
	m, _ := newTestModule(t)

	tests := []struct {
		name string
		want string
	}{
		{"circle-new", "circle-new: func() -> u64"},
		{"circle-set-position", "circle-set-position: func(u64, f32, f32)"},
		{"contact-get-world-manifold", "contact-get-world-manifold: func(u64, u32) -> s32"},
		{"fixture-set-filter-data", "fixture-set-filter-data: func(u64, u16, u16, s16)"},
		{"world-step", "world-step: func(f32, s32, s32)"},
	}
	for _, tt := range tests {
		f, ok := m.Lookup(tt.name)
		if !ok {
			t.Fatalf("missing %s", tt.name)
		}
		if got := Signature(f); got != tt.want {
			t.Errorf("Signature = %q, want %q", got, tt.want)
		}
	}
}

func TestModule_CirclePosition(t *testing.T) {
	m, guest := newTestModule(t)

	h := mustInvoke(t, m, guest, "circle-new")[0]
	mustInvoke(t, m, guest, "circle-set-position", h, api.EncodeF32(2.5), api.EncodeF32(-1))

	const ptr = 64
	mustInvoke(t, m, guest, "circle-get-position", h, ptr)
	got := readF32s(t, guest, ptr, 2)
	if got[0] != 2.5 || got[1] != -1 {
		t.Errorf("position = %v, want [2.5 -1]", got)
	}

	typ := mustInvoke(t, m, guest, "shape-get-type", h)[0]
	if api.DecodeI32(typ) != int32(mapping.ShapeCircle) {
		t.Errorf("shape-get-type = %d", api.DecodeI32(typ))
	}
}

func TestModule_Traps(t *testing.T) {
	m, guest := newTestModule(t)
	h := mustInvoke(t, m, guest, "circle-new")[0]

	tests := []struct {
		name  string
		fn    string
		stack []uint64
		kind  errors.Kind
	}{
		{"out of bounds pointer", "circle-get-position", []uint64{h, wasmtest.PageSize - 4}, errors.KindOutOfBounds},
		{"wrong variant", "polygon-get-vertex-count", []uint64{h}, errors.KindWrongKind},
		{"unknown handle", "body-get-angle", []uint64{0xdead_0000_0001}, errors.KindStaleHandle},
		{"invalid body type", "body-create", []uint64{api.EncodeI32(7), 0, 0, 0}, errors.KindInvalidInput},
		{"negative time step", "world-step", []uint64{api.EncodeF32(-1), 0, 0}, errors.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := invoke(t, m, guest, tt.fn, tt.stack...)
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("got %v, want %s", err, tt.kind)
			}
		})
	}

	mustInvoke(t, m, guest, "shape-dispose", h)
	if _, err := invoke(t, m, guest, "shape-dispose", h); !errors.IsKind(err, errors.KindDoubleDispose) {
		t.Errorf("double dispose: got %v", err)
	}
}

func TestModule_ChainFromGuestMemory(t *testing.T) {
	m, guest := newTestModule(t)

	const ptr = 256
	verts := []float32{0, 0, 1, 0, 2, 1}
	for i, v := range verts {
		guest.Memory().WriteUint32Le(ptr+uint32(4*i), math.Float32bits(v))
	}

	h := mustInvoke(t, m, guest, "chain-new")[0]
	mustInvoke(t, m, guest, "chain-create-chain", h, ptr, api.EncodeI32(3))

	n := mustInvoke(t, m, guest, "chain-get-vertex-count", h)[0]
	if api.DecodeI32(n) != 3 {
		t.Fatalf("vertex count = %d, want 3", api.DecodeI32(n))
	}
	mustInvoke(t, m, guest, "chain-get-vertex", h, api.EncodeI32(2), 512)
	if got := readF32s(t, guest, 512, 2); got[0] != 2 || got[1] != 1 {
		t.Errorf("vertex 2 = %v, want [2 1]", got)
	}
}

func TestModule_VertexCountBeyondMemory(t *testing.T) {
	m, guest := newTestModule(t)

	tests := []struct {
		name  string
		shape string
		count int32
	}{
		{"chain max count", "chain-new", math.MaxInt32},
		{"chain wraps 32 bits", "chain-new", 0x2000_0000},
		{"chain one past end", "chain-new", wasmtest.PageSize/8 + 1},
		{"polygon max count", "polygon-new", math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := mustInvoke(t, m, guest, tt.shape)[0]
			op := "chain-create-chain"
			if tt.shape == "polygon-new" {
				op = "polygon-set"
			}
			_, err := invoke(t, m, guest, op, h, 0, api.EncodeI32(tt.count))
			if !errors.IsKind(err, errors.KindOutOfBounds) {
				t.Fatalf("%s with n=%d: got %v, want out of bounds", op, tt.count, err)
			}
		})
	}
}

func TestModule_FilterData(t *testing.T) {
	m, guest := newTestModule(t)

	body := mustInvoke(t, m, guest, "body-create", api.EncodeI32(int32(mapping.BodyDynamic)), 0, 0, 0)[0]
	shape := mustInvoke(t, m, guest, "circle-new")[0]
	mustInvoke(t, m, guest, "shape-set-radius", shape, api.EncodeF32(1))
	fixture := mustInvoke(t, m, guest, "body-attach", body, shape, api.EncodeF32(1))[0]

	group := int16(-2)
	mustInvoke(t, m, guest, "fixture-set-filter-data", fixture, 0x0001, 0x00f0, uint64(uint16(group)))
	mustInvoke(t, m, guest, "fixture-get-filter-data", fixture, 128)

	mem := guest.Memory()
	var got [3]int16
	for i := range got {
		v, _ := mem.ReadUint16Le(128 + uint32(2*i))
		got[i] = int16(v)
	}
	if got != [3]int16{0x00f0, 0x0001, -2} {
		t.Errorf("filter = %v, want [240 1 -2]", got)
	}

	if _, err := invoke(t, m, guest, "shape-get-radius", shape); !errors.IsKind(err, errors.KindStaleHandle) {
		t.Errorf("attached shape: got %v, want stale_handle", err)
	}
}

func TestModule_StepAndContacts(t *testing.T) {
	m, guest := newTestModule(t)

	for _, b := range []struct {
		typ mapping.BodyType
		x   float32
	}{{mapping.BodyStatic, 0}, {mapping.BodyDynamic, 1.5}} {
		body := mustInvoke(t, m, guest, "body-create", api.EncodeI32(int32(b.typ)), api.EncodeF32(b.x), 0, 0)[0]
		shape := mustInvoke(t, m, guest, "circle-new")[0]
		mustInvoke(t, m, guest, "shape-set-radius", shape, api.EncodeF32(1))
		mustInvoke(t, m, guest, "body-attach", body, shape, api.EncodeF32(1))
	}

	mustInvoke(t, m, guest, "world-step", api.EncodeF32(1.0/60), 0, 0)

	const list = 1024
	n := api.DecodeI32(mustInvoke(t, m, guest, "world-get-contacts", list, api.EncodeI32(4))[0])
	if n != 1 {
		t.Fatalf("contacts = %d, want 1", n)
	}
	contact, _ := guest.Memory().ReadUint64Le(list)

	const wm = 2048
	for i := uint32(0); i < 8; i++ {
		guest.Memory().WriteUint32Le(wm+4*i, math.Float32bits(99))
	}
	points := api.DecodeI32(mustInvoke(t, m, guest, "contact-get-world-manifold", contact, wm)[0])
	if points != 1 {
		t.Fatalf("points = %d, want 1", points)
	}
	got := readF32s(t, guest, wm, 8)
	if got[5] != 99 || got[7] != 99 {
		t.Errorf("unpopulated slots overwritten: %v", got)
	}
	if got[6] >= 0 {
		t.Errorf("separation = %v, want negative", got[6])
	}

	// Capacity zero still reports the count.
	if n := api.DecodeI32(mustInvoke(t, m, guest, "world-get-contacts", list, 0)[0]); n != 1 {
		t.Errorf("count with zero capacity = %d", n)
	}

	mustInvoke(t, m, guest, "world-step", api.EncodeF32(1.0/60), 0, 0)
	if _, err := invoke(t, m, guest, "contact-is-touching", contact); !errors.IsKind(err, errors.KindStaleHandle) {
		t.Errorf("contact after step: got %v, want stale_handle", err)
	}
}

func TestModule_GuestCallbacks(t *testing.T) {
	tests := []struct {
		name string
		trap bool
	}{
		{"callback returns", false},
		{"callback traps", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := bridge.NewWorld(0, -10)
			defer w.Close()
			m := New(w)
			r, _ := wasmtest.Guest(t)
			guest := wasmtest.Instantiate(t, r, "callbacks", wasmtest.CallbackModule(tt.trap))

			for _, x := range []float32{0, 1.5} {
				typ := mapping.BodyDynamic
				if x == 0 {
					typ = mapping.BodyStatic
				}
				body, _ := w.Bodies.New(typ, x, 0, 0)
				shape, _ := w.Circles.New()
				w.Shapes.SetRadius(shape, 1)
				w.Bodies.Attach(body, shape, 1)
			}

			_, err := invoke(t, m, guest, "world-step", api.EncodeF32(1.0/60), 0, 0)
			if tt.trap {
				if !errors.IsKind(err, errors.KindInvalidData) {
					t.Fatalf("got %v, want invalid_data", err)
				}
				var be *errors.Error
				if !stderrors.As(err, &be) || be.Cause == nil {
					t.Errorf("trap does not carry the guest error: %v", err)
				}
			} else if err != nil {
				t.Fatalf("world-step: %v", err)
			}
			if w.ContactListener() != nil {
				t.Error("guest listener left installed after world-step")
			}
		})
	}
}

func TestModule_Instantiate(t *testing.T) {
	w := bridge.NewWorld(0, -10)
	defer w.Close()
	r, _ := wasmtest.Guest(t)
	ctx := context.Background()

	mod, err := New(w).Instantiate(ctx, r)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	fn := mod.ExportedFunction("polygon-new")
	if fn == nil {
		t.Fatal("polygon-new not exported")
	}
	res, err := fn.Call(ctx)
	if err != nil {
		t.Fatalf("polygon-new: %v", err)
	}
	typ, err := w.Shapes.Type(handle.Handle(res[0]))
	if err != nil || typ != mapping.ShapePolygon {
		t.Errorf("created shape type = %v, %v", typ, err)
	}
}
