// Package pool provides reusable block buffers shared by the encode, decode
// and random-access read paths.
package pool

import "sync"

// BlockBufferDefaultSize covers the default 2 KiB block size with headroom;
// BlockBufferMaxThreshold keeps buffers for large custom block sizes from
// being retained forever.
const (
	BlockBufferDefaultSize  = 1024 * 16  // 16KiB
	BlockBufferMaxThreshold = 1024 * 256 // 256KiB
)

// BlockBuffer is a reusable byte buffer for per-block scratch space.
type BlockBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewBlockBuffer creates a new BlockBuffer with the specified capacity.
func NewBlockBuffer(capacity int) *BlockBuffer {
	return &BlockBuffer{
		B: make([]byte, 0, capacity),
	}
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *BlockBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Cap returns the capacity of the buffer.
func (bb *BlockBuffer) Cap() int {
	return cap(bb.B)
}

// Block returns the buffer resized to exactly n bytes, reallocating when the
// current capacity cannot hold them. Contents are unspecified.
func (bb *BlockBuffer) Block(n int) []byte {
	if cap(bb.B) < n {
		bb.B = make([]byte, n)
	}
	bb.B = bb.B[:n]

	return bb.B
}

// BlockBufferPool is a pool of BlockBuffers to minimize allocations.
//
// It uses sync.Pool internally to manage the buffers. The pool can be
// configured with a maximum size threshold to avoid retaining overly large
// buffers that could lead to memory bloat.
type BlockBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewBlockBufferPool creates a new BlockBufferPool with buffers of the specified default size.
func NewBlockBufferPool(defaultSize int, maxThreshold int) *BlockBufferPool {
	return &BlockBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewBlockBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a BlockBuffer from the pool.
func (bbp *BlockBufferPool) Get() *BlockBuffer {
	bb, _ := bbp.pool.Get().(*BlockBuffer)
	return bb
}

// Put returns a BlockBuffer to the pool for reuse.
func (bbp *BlockBufferPool) Put(bb *BlockBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		// Discard overly large buffers to prevent memory bloat
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var blockDefaultPool = NewBlockBufferPool(BlockBufferDefaultSize, BlockBufferMaxThreshold)

// GetBlockBuffer retrieves a BlockBuffer from the default pool.
func GetBlockBuffer() *BlockBuffer {
	return blockDefaultPool.Get()
}

// PutBlockBuffer returns a BlockBuffer to the default pool.
func PutBlockBuffer(bb *BlockBuffer) {
	blockDefaultPool.Put(bb)
}
