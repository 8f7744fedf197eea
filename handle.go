package gralloc

import (
	"github.com/cockroachdb/errors"
	"github.com/hwgfx/gralloc/internal/shm"
)

// NativeHandle is the opaque aggregate that carries a buffer across process
// and service boundaries: an ordered list of OS file descriptors plus an
// array of integer metadata. The handle itself carries no ownership flags;
// each transfer point (allocate, clone, import, free) decides who owns the
// descriptors it holds.
type NativeHandle struct {
	Fds  []int
	Ints []int
}

const handleMagic = 0x67726c63

// Metadata int slots. The fd for the backing memory is always Fds[0].
const (
	handleIntMagic = iota
	handleIntBufferID
	handleIntWidth
	handleIntHeight
	handleIntLayerCount
	handleIntFormat
	handleIntUsage
	handleIntStride
	handleIntTotalBytes
	handleNumInts
)

// HandleNumFds and HandleNumInts describe the transport footprint of every
// handle produced by this service.
const (
	HandleNumFds  = 1
	HandleNumInts = handleNumInts
)

// BufferMeta is the decoded integer metadata of a buffer handle.
type BufferMeta struct {
	BufferID     uint64
	Info         BufferDescriptorInfo
	StridePixels int
	TotalBytes   int
}

// NewRawHandle builds the raw handle for a freshly allocated buffer. The
// handle takes ownership of fd.
func NewRawHandle(fd int, meta BufferMeta) *NativeHandle {
	ints := make([]int, handleNumInts)
	ints[handleIntMagic] = handleMagic
	ints[handleIntBufferID] = int(meta.BufferID)
	ints[handleIntWidth] = meta.Info.Width
	ints[handleIntHeight] = meta.Info.Height
	ints[handleIntLayerCount] = meta.Info.LayerCount
	ints[handleIntFormat] = int(meta.Info.Format)
	ints[handleIntUsage] = int(meta.Info.Usage)
	ints[handleIntStride] = meta.StridePixels
	ints[handleIntTotalBytes] = meta.TotalBytes

	return &NativeHandle{
		Fds:  []int{fd},
		Ints: ints,
	}
}

// IsValid reports structural validity: the handle exists, carries at least
// one file descriptor, and its metadata block has the expected shape. This
// is the only property a service may assume without backend knowledge.
func (h *NativeHandle) IsValid() bool {
	if h == nil || len(h.Fds) == 0 {
		return false
	}

	return len(h.Ints) == handleNumInts && h.Ints[handleIntMagic] == handleMagic
}

// Metadata decodes the integer metadata block of a structurally valid
// handle.
func (h *NativeHandle) Metadata() (BufferMeta, error) {
	if !h.IsValid() {
		return BufferMeta{}, errors.New("cannot read metadata from an invalid native handle")
	}

	return BufferMeta{
		BufferID: uint64(h.Ints[handleIntBufferID]),
		Info: BufferDescriptorInfo{
			Width:      h.Ints[handleIntWidth],
			Height:     h.Ints[handleIntHeight],
			LayerCount: h.Ints[handleIntLayerCount],
			Format:     PixelFormat(h.Ints[handleIntFormat]),
			Usage:      Usage(h.Ints[handleIntUsage]),
		},
		StridePixels: h.Ints[handleIntStride],
		TotalBytes:   h.Ints[handleIntTotalBytes],
	}, nil
}

// Clone duplicates the handle, dup()ing every file descriptor. The clone
// references the same underlying memory and must be released independently.
func (h *NativeHandle) Clone() (*NativeHandle, error) {
	if !h.IsValid() {
		return nil, errors.New("cannot clone an invalid native handle")
	}

	fds := make([]int, 0, len(h.Fds))
	for _, fd := range h.Fds {
		newFd, err := shm.Dup(fd)
		if err != nil {
			for _, dupped := range fds {
				_ = shm.Close(dupped)
			}
			return nil, err
		}
		fds = append(fds, newFd)
	}

	return &NativeHandle{
		Fds:  fds,
		Ints: append([]int(nil), h.Ints...),
	}, nil
}

// Close releases the file descriptors held by a raw (never imported)
// handle. Imported buffers are released through Mapper.FreeBuffer instead.
func (h *NativeHandle) Close() error {
	if h == nil {
		return errors.New("cannot close a nil native handle")
	}

	var firstErr error
	for _, fd := range h.Fds {
		err := shm.Close(fd)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	h.Fds = nil

	return firstErr
}
