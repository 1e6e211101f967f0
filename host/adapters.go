package host

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/marshal"
)

// WIT types used by the box2d ABI.
var (
	tHandle wit.Type = wit.U64{}
	tF32    wit.Type = wit.F32{}
	tS32    wit.Type = wit.S32{}
	tU32    wit.Type = wit.U32{}
	tU16    wit.Type = wit.U16{}
	tS16    wit.Type = wit.S16{}
	tBool   wit.Type = wit.Bool{}
	tPtr             = tU32
)

func types(ts ...wit.Type) []wit.Type { return ts }

func argHandle(stack []uint64, i int) handle.Handle { return handle.Handle(stack[i]) }
func argF32(stack []uint64, i int) float32         { return api.DecodeF32(stack[i]) }
func argS32(stack []uint64, i int) int32           { return api.DecodeI32(stack[i]) }
func argU32(stack []uint64, i int) uint32          { return api.DecodeU32(stack[i]) }
func argBool(stack []uint64, i int) bool           { return uint32(stack[i]) != 0 }

func encodeBool(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// fn registers a raw handler. The handler returns an error to trap.
func (m *Module) fn(name string, params, results []wit.Type, h func(ctx context.Context, mod api.Module, stack []uint64) error) {
	m.add(Func{
		Name:    name,
		Params:  params,
		Results: results,
		Handler: func(ctx context.Context, mod api.Module, stack []uint64) {
			if err := h(ctx, mod, stack); err != nil {
				m.trap(name, err)
			}
		},
	})
}

func (m *Module) newHandle(name string, get func() (handle.Handle, error)) {
	m.fn(name, nil, types(tHandle), func(_ context.Context, _ api.Module, stack []uint64) error {
		h, err := get()
		if err != nil {
			return err
		}
		stack[0] = uint64(h)
		return nil
	})
}

func (m *Module) call(name string, do func(handle.Handle) error) {
	m.fn(name, types(tHandle), nil, func(_ context.Context, _ api.Module, stack []uint64) error {
		return do(argHandle(stack, 0))
	})
}

func (m *Module) getHandle(name string, get func(handle.Handle) (handle.Handle, error)) {
	m.fn(name, types(tHandle), types(tHandle), func(_ context.Context, _ api.Module, stack []uint64) error {
		v, err := get(argHandle(stack, 0))
		if err != nil {
			return err
		}
		stack[0] = uint64(v)
		return nil
	})
}

func (m *Module) getF32(name string, get func(handle.Handle) (float32, error)) {
	m.fn(name, types(tHandle), types(tF32), func(_ context.Context, _ api.Module, stack []uint64) error {
		v, err := get(argHandle(stack, 0))
		if err != nil {
			return err
		}
		stack[0] = api.EncodeF32(v)
		return nil
	})
}

func (m *Module) setF32(name string, set func(handle.Handle, float32) error) {
	m.fn(name, types(tHandle, tF32), nil, func(_ context.Context, _ api.Module, stack []uint64) error {
		return set(argHandle(stack, 0), argF32(stack, 1))
	})
}

// getF32At covers the joint getters that take an inverse time step.
func (m *Module) getF32At(name string, get func(handle.Handle, float32) (float32, error)) {
	m.fn(name, types(tHandle, tF32), types(tF32), func(_ context.Context, _ api.Module, stack []uint64) error {
		v, err := get(argHandle(stack, 0), argF32(stack, 1))
		if err != nil {
			return err
		}
		stack[0] = api.EncodeF32(v)
		return nil
	})
}

func (m *Module) getS32(name string, get func(handle.Handle) (int32, error)) {
	m.fn(name, types(tHandle), types(tS32), func(_ context.Context, _ api.Module, stack []uint64) error {
		v, err := get(argHandle(stack, 0))
		if err != nil {
			return err
		}
		stack[0] = api.EncodeI32(v)
		return nil
	})
}

func (m *Module) getBool(name string, get func(handle.Handle) (bool, error)) {
	m.fn(name, types(tHandle), types(tBool), func(_ context.Context, _ api.Module, stack []uint64) error {
		v, err := get(argHandle(stack, 0))
		if err != nil {
			return err
		}
		stack[0] = encodeBool(v)
		return nil
	})
}

func (m *Module) setBool(name string, set func(handle.Handle, bool) error) {
	m.fn(name, types(tHandle, tBool), nil, func(_ context.Context, _ api.Module, stack []uint64) error {
		return set(argHandle(stack, 0), argBool(stack, 1))
	})
}

// getVec writes a 2-float result into the guest buffer at ptr.
func (m *Module) getVec(name string, get func(handle.Handle, *marshal.Vec2) error) {
	m.fn(name, types(tHandle, tPtr), nil, func(_ context.Context, mod api.Module, stack []uint64) error {
		var v marshal.Vec2
		if err := get(argHandle(stack, 0), &v); err != nil {
			return err
		}
		return m.memory(name, mod).WriteF32s(argU32(stack, 1), v[:])
	})
}

func (m *Module) setVec(name string, set func(handle.Handle, float32, float32) error) {
	m.fn(name, types(tHandle, tF32, tF32), nil, func(_ context.Context, _ api.Module, stack []uint64) error {
		return set(argHandle(stack, 0), argF32(stack, 1), argF32(stack, 2))
	})
}

// getVecAt writes a 2-float result computed from an inverse time step.
func (m *Module) getVecAt(name string, get func(handle.Handle, float32, *marshal.Vec2) error) {
	m.fn(name, types(tHandle, tF32, tPtr), nil, func(_ context.Context, mod api.Module, stack []uint64) error {
		var v marshal.Vec2
		if err := get(argHandle(stack, 0), argF32(stack, 1), &v); err != nil {
			return err
		}
		return m.memory(name, mod).WriteF32s(argU32(stack, 2), v[:])
	})
}

// getVertex writes vertex i of a shape into the guest buffer at ptr.
func (m *Module) getVertex(name string, get func(handle.Handle, int32, *marshal.Vec2) error) {
	m.fn(name, types(tHandle, tS32, tPtr), nil, func(_ context.Context, mod api.Module, stack []uint64) error {
		var v marshal.Vec2
		if err := get(argHandle(stack, 0), argS32(stack, 1), &v); err != nil {
			return err
		}
		return m.memory(name, mod).WriteF32s(argU32(stack, 2), v[:])
	})
}

// loadVertices reads n (x, y) pairs from the guest buffer at ptr and passes
// them to load.
func (m *Module) loadVertices(name string, load func(handle.Handle, []float32, int) error) {
	m.fn(name, types(tHandle, tPtr, tS32), nil, func(_ context.Context, mod api.Module, stack []uint64) error {
		n := int(argS32(stack, 2))
		if n < 0 {
			n = 0
		}
		mem := m.memory(name, mod)
		if _, err := mem.Check(argU32(stack, 1), 2*n, marshal.SizeF32); err != nil {
			return err
		}
		s := marshal.GetScratch(2 * n)
		defer s.Release()
		if err := mem.ReadF32s(argU32(stack, 1), s.Floats); err != nil {
			return err
		}
		return load(argHandle(stack, 0), s.Floats, int(argS32(stack, 2)))
	})
}

// writeHandles writes up to cap handles from list into the guest buffer at
// ptr and returns the total count, which may exceed cap.
func (m *Module) writeHandles(name string, mod api.Module, ptr uint32, capacity int32, list []handle.Handle) (int32, error) {
	n := min(len(list), max(int(capacity), 0))
	if n > 0 {
		raw := make([]uint64, n)
		for i := range raw {
			raw[i] = uint64(list[i])
		}
		if err := m.memory(name, mod).WriteU64s(ptr, raw); err != nil {
			return 0, err
		}
	}
	return int32(len(list)), nil
}
