package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/box2d-bridge/bridge"
	"github.com/wippyai/box2d-bridge/errors"
	"github.com/wippyai/box2d-bridge/marshal"
)

// ModuleName is the import module name guests link against.
const ModuleName = "box2d"

// Func is one host function of the box2d module.
type Func struct {
	Name    string
	Params  []wit.Type
	Results []wit.Type
	Handler api.GoModuleFunc
}

// ParamTypes returns the core value types of the parameters.
func (f Func) ParamTypes() []api.ValueType {
	return coreTypes(f.Params)
}

// ResultTypes returns the core value types of the results.
func (f Func) ResultTypes() []api.ValueType {
	return coreTypes(f.Results)
}

// Module exposes one bridge.World to wasm guests.
//
// Like the World it wraps, a Module is not safe for concurrent use: a guest
// instance calls into it from one goroutine at a time.
type Module struct {
	world  *bridge.World
	funcs  []Func
	byName map[string]int
	logger *zap.Logger
	mem    *marshal.GuestMemory
}

// Option configures a Module.
type Option func(*Module)

// WithLogger sets the module's logger. Defaults to the package Logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

// New builds the function table for w.
func New(w *bridge.World, opts ...Option) *Module {
	m := &Module{
		world:  w,
		byName: make(map[string]int),
		logger: Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.registerWorld()
	m.registerShapes()
	m.registerBodies()
	m.registerFixtures()
	m.registerContacts()
	m.registerJoints()
	m.registerJointFamilies()
	return m
}

// World returns the wrapped world.
func (m *Module) World() *bridge.World {
	return m.world
}

// Functions returns the function table in registration order.
func (m *Module) Functions() []Func {
	return m.funcs
}

// Lookup returns the function registered under name.
func (m *Module) Lookup(name string) (Func, bool) {
	i, ok := m.byName[name]
	if !ok {
		return Func{}, false
	}
	return m.funcs[i], true
}

// Instantiate registers the module in r under ModuleName.
func (m *Module) Instantiate(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	builder := r.NewHostModuleBuilder(ModuleName)
	for _, f := range m.funcs {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.Handler, f.ParamTypes(), f.ResultTypes()).
			WithName(f.Name).
			Export(f.Name)
	}
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Registration(errors.PhaseHost, ModuleName, "", err)
	}
	m.logger.Debug("host module instantiated",
		zap.String("module", ModuleName),
		zap.Int("functions", len(m.funcs)),
	)
	return mod, nil
}

func (m *Module) add(f Func) {
	if _, dup := m.byName[f.Name]; dup {
		panic(fmt.Sprintf("host: duplicate function %q", f.Name))
	}
	m.byName[f.Name] = len(m.funcs)
	m.funcs = append(m.funcs, f)
}

// trap aborts the guest call with err. wazero surfaces the panic value as
// the error returned from the guest's call.
func (m *Module) trap(name string, err error) {
	m.logger.Debug("host call trapped", zap.String("func", name), zap.Error(err))
	panic(err)
}

// memory returns the buffer protocol view of the calling guest's memory.
// Leases are shared across reentrant calls from the same memory.
func (m *Module) memory(name string, mod api.Module) *marshal.GuestMemory {
	mem := mod.Memory()
	if mem == nil {
		m.trap(name, errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Op(name).
			Detail("guest module exports no memory").
			Build())
	}
	if m.mem == nil || m.mem.Mem != mem {
		m.mem = marshal.NewGuestMemory(mem)
	}
	return m.mem
}

// Signature renders f as a WIT-like declaration.
func Signature(f Func) string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteString(": func(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(TypeName(p))
	}
	b.WriteString(")")
	switch len(f.Results) {
	case 0:
	case 1:
		b.WriteString(" -> ")
		b.WriteString(TypeName(f.Results[0]))
	default:
		b.WriteString(" -> (")
		for i, r := range f.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(TypeName(r))
		}
		b.WriteString(")")
	}
	return b.String()
}

// TypeName returns the WIT spelling of a primitive type.
func TypeName(t wit.Type) string {
	switch t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func coreTypes(types []wit.Type) []api.ValueType {
	out := make([]api.ValueType, 0, len(types))
	for _, t := range types {
		switch t.(type) {
		case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32:
			out = append(out, api.ValueTypeI32)
		case wit.U64, wit.S64:
			out = append(out, api.ValueTypeI64)
		case wit.F32:
			out = append(out, api.ValueTypeF32)
		case wit.F64:
			out = append(out, api.ValueTypeF64)
		default:
			panic(fmt.Sprintf("host: %T is not a primitive WIT type", t))
		}
	}
	return out
}
