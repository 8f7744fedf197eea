package mapper

import (
	"sync"

	"github.com/hwgfx/gralloc"
)

// Buffer is a process-local, imported buffer handle. It owns one dup()ed
// file descriptor and one mapping of the underlying shared memory, and it
// counts as exactly one reference in the import registry until freed.
//
// Lock and unlock must strictly alternate per Buffer; the Buffer's own
// mutex makes the rejection of a second concurrent lock deterministic, but
// serializing access windows is the caller's job.
type Buffer struct {
	meta   gralloc.BufferMeta
	layout gralloc.BufferLayout

	fd   int
	data []byte

	mutex  sync.Mutex
	locked bool
	freed  bool
}

func (b *Buffer) Width() int                  { return b.meta.Info.Width }
func (b *Buffer) Height() int                 { return b.meta.Info.Height }
func (b *Buffer) LayerCount() int             { return b.meta.Info.LayerCount }
func (b *Buffer) Format() gralloc.PixelFormat { return b.meta.Info.Format }
func (b *Buffer) Usage() gralloc.Usage        { return b.meta.Info.Usage }
func (b *Buffer) StridePixels() int           { return b.meta.StridePixels }
func (b *Buffer) Size() int                   { return b.meta.TotalBytes }

// beginAccess transitions the buffer into the locked state, rejecting
// anything that is not a live, currently-unlocked import.
func (b *Buffer) beginAccess() gralloc.Error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.freed {
		return gralloc.ErrorBadBuffer
	}
	if b.locked {
		return gralloc.ErrorBadBuffer
	}

	b.locked = true
	return gralloc.ErrorNone
}

func (b *Buffer) abortAccess() {
	b.mutex.Lock()
	b.locked = false
	b.mutex.Unlock()
}

// endAccess transitions out of the locked state. Unlocking a buffer that
// was never locked is an error, not a no-op.
func (b *Buffer) endAccess() gralloc.Error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.freed || !b.locked {
		return gralloc.ErrorBadBuffer
	}

	b.locked = false
	return gralloc.ErrorNone
}
