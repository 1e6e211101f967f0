package marshal

import "sync"

// Scratch is a pooled float buffer for variable-length vertex input on the
// per-frame path.
type Scratch struct {
	Floats []float32
}

var scratchPool = sync.Pool{
	New: func() any {
		return &Scratch{Floats: make([]float32, 0, 64)}
	},
}

const maxPooledScratchCapacity = 4096

// GetScratch returns a scratch buffer of length n. Call Release when done;
// the buffer is invalid after Release.
func GetScratch(n int) *Scratch {
	s := scratchPool.Get().(*Scratch)
	if cap(s.Floats) < n {
		s.Floats = make([]float32, n)
	} else {
		s.Floats = s.Floats[:n]
	}
	return s
}

// Release returns the buffer to the pool.
func (s *Scratch) Release() {
	// Only pool small buffers to prevent memory bloat
	if cap(s.Floats) > maxPooledScratchCapacity {
		return
	}
	s.Floats = s.Floats[:0]
	scratchPool.Put(s)
}
