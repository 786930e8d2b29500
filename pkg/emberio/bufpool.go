package emberio

import "github.com/valyala/bytebufferpool"

// BufferPool is the shared pool for the growable scratch buffer ReadToken
// accumulates a token into before copying it out. Using bytebufferpool
// instead of a bare sync.Pool of []byte gives pooled buffers a
// Reset/Write/Bytes API and lets the pool calibrate its default size to
// observed usage.
var BufferPool bytebufferpool.Pool

// GetBuffer retrieves a reset, pooled *bytebufferpool.ByteBuffer.
func GetBuffer() *bytebufferpool.ByteBuffer {
	return BufferPool.Get()
}

// PutBuffer returns b to the pool.
func PutBuffer(b *bytebufferpool.ByteBuffer) {
	BufferPool.Put(b)
}
