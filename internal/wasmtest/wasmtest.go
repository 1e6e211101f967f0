// Package wasmtest provides guest modules for exercising host functions
// without a compiled guest.
package wasmtest

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// MemoryModule is a binary module that defines and exports one page of
// linear memory named "memory" and nothing else.
var MemoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 memory, min 1 page
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00, // export "memory"
}

// PageSize is the size of the exported memory.
const PageSize = 65536

// Guest instantiates MemoryModule in a fresh runtime. The runtime is closed
// when the test ends.
func Guest(t testing.TB) (wazero.Runtime, api.Module) {
	t.Helper()
	ctx := context.Background()

	r := wazero.NewRuntime(ctx)
	t.Cleanup(func() { r.Close(ctx) })

	mod, err := r.Instantiate(ctx, MemoryModule)
	if err != nil {
		t.Fatalf("instantiate memory module: %v", err)
	}
	if mod.Memory() == nil {
		t.Fatal("memory module has no memory")
	}
	return r, mod
}

// CallbackModule returns a module exporting one page of memory and a
// "box2d-begin-contact" function taking an i64. With trap set, the function
// executes unreachable; otherwise it does nothing.
func CallbackModule(trap bool) []byte {
	op := byte(0x01) // nop
	if trap {
		op = 0x00 // unreachable
	}
	return []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
		0x01, 0x05, 0x01, 0x60, 0x01, 0x7e, 0x00, // type section: (i64) -> ()
		0x03, 0x02, 0x01, 0x00, // function section
		0x05, 0x03, 0x01, 0x00, 0x01, // memory section
		0x07, 0x20, 0x02, // export section, 2 exports
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
		0x13, 'b', 'o', 'x', '2', 'd', '-', 'b', 'e', 'g', 'i', 'n', '-',
		'c', 'o', 'n', 't', 'a', 'c', 't', 0x00, 0x00,
		0x0a, 0x05, 0x01, 0x03, 0x00, op, 0x0b, // code section
	}
}

// Instantiate instantiates bin in r under a fresh name.
func Instantiate(t testing.TB, r wazero.Runtime, name string, bin []byte) api.Module {
	t.Helper()
	ctx := context.Background()
	mod, err := r.InstantiateWithConfig(ctx, bin, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		t.Fatalf("instantiate %s: %v", name, err)
	}
	return mod
}
