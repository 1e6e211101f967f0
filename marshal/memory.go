package marshal

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/box2d-bridge/errors"
)

// GuestMemory adapts a guest's linear memory to the buffer protocol.
//
// Every transfer runs under a Lease: the byte range is bounds-checked once,
// and no other lease may overlap it until it is released. This rejects
// reentrant host calls that would write into a buffer the host is still
// reading or writing.
type GuestMemory struct {
	Mem    api.Memory
	leases []span
}

type span struct {
	start, end uint64
}

// NewGuestMemory wraps a wazero memory. It returns nil for a nil memory.
func NewGuestMemory(mem api.Memory) *GuestMemory {
	if mem == nil {
		return nil
	}
	return &GuestMemory{Mem: mem}
}

// Lease grants exclusive access to [Ptr, Ptr+Size) of guest memory.
type Lease struct {
	m    *GuestMemory
	Ptr  uint32
	Size uint32
}

// Acquire bounds-checks a byte range and leases it exclusively.
func (m *GuestMemory) Acquire(ptr, size uint32) (Lease, error) {
	start := uint64(ptr)
	end := start + uint64(size)
	if end > uint64(m.Mem.Size()) {
		return Lease{}, errors.New(errors.PhaseMarshal, errors.KindOutOfBounds).
			Op("acquire").
			Value(ptr).
			Detail("buffer [%#x, %#x) exceeds memory size %#x", start, end, m.Mem.Size()).
			Build()
	}
	if size == 0 {
		return Lease{m: m, Ptr: ptr}, nil
	}
	for _, s := range m.leases {
		if start < s.end && s.start < end {
			return Lease{}, errors.Aliasing(errors.PhaseMarshal, ptr, size)
		}
	}
	m.leases = append(m.leases, span{start: start, end: end})
	return Lease{m: m, Ptr: ptr, Size: size}, nil
}

// Check reports whether count elements of size bytes starting at ptr fit in
// guest memory and returns their byte length. The arithmetic is done in
// 64 bits so no count can wrap around.
func (m *GuestMemory) Check(ptr uint32, count int, size uint32) (uint32, error) {
	if count < 0 {
		return 0, errors.New(errors.PhaseMarshal, errors.KindInvalidInput).
			Op("check").
			Value(count).
			Detail("negative element count %d", count).
			Build()
	}
	n := uint64(count) * uint64(size)
	end := uint64(ptr) + n
	if end > uint64(m.Mem.Size()) {
		return 0, errors.New(errors.PhaseMarshal, errors.KindOutOfBounds).
			Op("check").
			Value(ptr).
			Detail("buffer [%#x, %#x) exceeds memory size %#x", ptr, end, m.Mem.Size()).
			Build()
	}
	return uint32(n), nil
}

// Active returns the number of outstanding leases.
func (m *GuestMemory) Active() int {
	return len(m.leases)
}

// Release ends the exclusive access window.
func (l Lease) Release() {
	if l.m == nil || l.Size == 0 {
		return
	}
	start := uint64(l.Ptr)
	end := start + uint64(l.Size)
	leases := l.m.leases
	for i := len(leases) - 1; i >= 0; i-- {
		if leases[i].start == start && leases[i].end == end {
			l.m.leases = append(leases[:i], leases[i+1:]...)
			return
		}
	}
}

// PutF32s writes src at the start of the lease.
func (l Lease) PutF32s(src []float32) error {
	if uint64(len(src))*SizeF32 > uint64(l.Size) {
		return errors.OutOfBounds(errors.PhaseMarshal, "put-f32s", len(src), int(l.Size/SizeF32))
	}
	for i, v := range src {
		if !l.m.Mem.WriteFloat32Le(l.Ptr+uint32(i)*SizeF32, v) {
			return errors.OutOfBounds(errors.PhaseMarshal, "put-f32s", i, len(src))
		}
	}
	return nil
}

// F32s reads len(dst) floats from the start of the lease.
func (l Lease) F32s(dst []float32) error {
	if uint64(len(dst))*SizeF32 > uint64(l.Size) {
		return errors.OutOfBounds(errors.PhaseMarshal, "f32s", len(dst), int(l.Size/SizeF32))
	}
	for i := range dst {
		v, ok := l.m.Mem.ReadFloat32Le(l.Ptr + uint32(i)*SizeF32)
		if !ok {
			return errors.OutOfBounds(errors.PhaseMarshal, "f32s", i, len(dst))
		}
		dst[i] = v
	}
	return nil
}

// PutI16s writes src at the start of the lease.
func (l Lease) PutI16s(src []int16) error {
	if uint64(len(src))*SizeI16 > uint64(l.Size) {
		return errors.OutOfBounds(errors.PhaseMarshal, "put-i16s", len(src), int(l.Size/SizeI16))
	}
	for i, v := range src {
		if !l.m.Mem.WriteUint16Le(l.Ptr+uint32(i)*SizeI16, uint16(v)) {
			return errors.OutOfBounds(errors.PhaseMarshal, "put-i16s", i, len(src))
		}
	}
	return nil
}

// PutU64s writes src at the start of the lease.
func (l Lease) PutU64s(src []uint64) error {
	if uint64(len(src))*SizeU64 > uint64(l.Size) {
		return errors.OutOfBounds(errors.PhaseMarshal, "put-u64s", len(src), int(l.Size/SizeU64))
	}
	for i, v := range src {
		if !l.m.Mem.WriteUint64Le(l.Ptr+uint32(i)*SizeU64, v) {
			return errors.OutOfBounds(errors.PhaseMarshal, "put-u64s", i, len(src))
		}
	}
	return nil
}

// WriteF32s leases [ptr, ptr+4*len(src)), writes src in order and releases.
func (m *GuestMemory) WriteF32s(ptr uint32, src []float32) error {
	size, err := m.Check(ptr, len(src), SizeF32)
	if err != nil {
		return err
	}
	l, err := m.Acquire(ptr, size)
	if err != nil {
		return err
	}
	defer l.Release()
	return l.PutF32s(src)
}

// ReadF32s leases [ptr, ptr+4*len(dst)), fills dst and releases.
func (m *GuestMemory) ReadF32s(ptr uint32, dst []float32) error {
	size, err := m.Check(ptr, len(dst), SizeF32)
	if err != nil {
		return err
	}
	l, err := m.Acquire(ptr, size)
	if err != nil {
		return err
	}
	defer l.Release()
	return l.F32s(dst)
}

// WriteI16s leases [ptr, ptr+2*len(src)), writes src in order and releases.
func (m *GuestMemory) WriteI16s(ptr uint32, src []int16) error {
	size, err := m.Check(ptr, len(src), SizeI16)
	if err != nil {
		return err
	}
	l, err := m.Acquire(ptr, size)
	if err != nil {
		return err
	}
	defer l.Release()
	return l.PutI16s(src)
}

// WriteU64s leases [ptr, ptr+8*len(src)), writes src in order and releases.
func (m *GuestMemory) WriteU64s(ptr uint32, src []uint64) error {
	size, err := m.Check(ptr, len(src), SizeU64)
	if err != nil {
		return err
	}
	l, err := m.Acquire(ptr, size)
	if err != nil {
		return err
	}
	defer l.Release()
	return l.PutU64s(src)
}
