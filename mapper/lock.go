package mapper

import (
	"github.com/cockroachdb/errors"
	"github.com/hwgfx/gralloc"
)

func (m *Mapper) validateAccess(buf *Buffer, usage gralloc.Usage, region gralloc.Rect) (gralloc.Error, error) {
	if usage&gralloc.UsageCPUAccess == 0 {
		return gralloc.ErrorBadValue, errors.New("a lock must request CPU read or write access")
	}
	if usage&gralloc.UsageCPUAccess&^buf.meta.Info.Usage != 0 {
		return gralloc.ErrorBadValue, errors.Newf(
			"lock requests CPU access %s beyond the buffer's usage %s",
			usage.String(), buf.meta.Info.Usage.String())
	}

	if region.Left < 0 || region.Top < 0 || region.Width <= 0 || region.Height <= 0 ||
		region.Left+region.Width > buf.meta.Info.Width ||
		region.Top+region.Height > buf.meta.Info.Height {
		return gralloc.ErrorBadValue, errors.Newf(
			"lock region (%d,%d %dx%d) falls outside the %dx%d buffer",
			region.Left, region.Top, region.Width, region.Height,
			buf.meta.Info.Width, buf.meta.Info.Height)
	}

	return gralloc.ErrorNone, nil
}

// consumeAcquireFence waits for the producer's fence and closes it.
// Ownership of the fence transfers to the mapper the moment it is passed
// in, signaled or not.
func consumeAcquireFence(acquireFence gralloc.Fence) error {
	err := acquireFence.Wait(gralloc.DefaultFenceTimeout)
	if closeErr := acquireFence.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

// Lock opens a CPU access window over the buffer and returns its mapped
// bytes. For packed formats the advisory bytes-per-pixel and
// bytes-per-stride values describe the layout; for planar formats both are
// -1 and LockYCbCr is the structured access path. The region limits what
// the caller intends to touch but never changes the returned mapping or
// stride.
func (m *Mapper) Lock(buf *Buffer, usage gralloc.Usage, region gralloc.Rect, acquireFence gralloc.Fence) ([]byte, int, int, gralloc.Error, error) {
	m.logger.Debug("Mapper::Lock")

	if buf == nil {
		_ = acquireFence.Close()
		return nil, -1, -1, gralloc.ErrorBadBuffer, errors.New("cannot lock a nil buffer")
	}

	if res, err := m.validateAccess(buf, usage, region); res != gralloc.ErrorNone {
		_ = acquireFence.Close()
		return nil, -1, -1, res, err
	}

	if res := buf.beginAccess(); res != gralloc.ErrorNone {
		_ = acquireFence.Close()
		return nil, -1, -1, res, errors.Newf("buffer %d is not lockable in its current state", buf.meta.BufferID)
	}

	err := consumeAcquireFence(acquireFence)
	if err != nil {
		buf.abortAccess()
		return nil, -1, -1, gralloc.ErrorNoResources, errors.Wrap(err, "acquire fence never signaled")
	}

	if buf.layout.Planar {
		return buf.data, -1, -1, gralloc.ErrorNone, nil
	}

	return buf.data, buf.layout.BytesPerPixel, buf.layout.StrideBytes, gralloc.ErrorNone, nil
}

// LockYCbCr opens a CPU access window over a planar buffer and returns the
// per-plane view: base slices, strides in bytes, and the chroma step the
// format table prescribes.
func (m *Mapper) LockYCbCr(buf *Buffer, usage gralloc.Usage, region gralloc.Rect, acquireFence gralloc.Fence) (gralloc.YCbCrLayout, gralloc.Error, error) {
	m.logger.Debug("Mapper::LockYCbCr")

	if buf == nil {
		_ = acquireFence.Close()
		return gralloc.YCbCrLayout{}, gralloc.ErrorBadBuffer, errors.New("cannot lock a nil buffer")
	}
	if !buf.layout.Planar {
		_ = acquireFence.Close()
		return gralloc.YCbCrLayout{}, gralloc.ErrorBadValue, errors.Newf(
			"format %s is not planar; use Lock for packed formats", buf.meta.Info.Format)
	}

	if res, err := m.validateAccess(buf, usage, region); res != gralloc.ErrorNone {
		_ = acquireFence.Close()
		return gralloc.YCbCrLayout{}, res, err
	}

	if res := buf.beginAccess(); res != gralloc.ErrorNone {
		_ = acquireFence.Close()
		return gralloc.YCbCrLayout{}, res, errors.Newf("buffer %d is not lockable in its current state", buf.meta.BufferID)
	}

	err := consumeAcquireFence(acquireFence)
	if err != nil {
		buf.abortAccess()
		return gralloc.YCbCrLayout{}, gralloc.ErrorNoResources, errors.Wrap(err, "acquire fence never signaled")
	}

	layout := &buf.layout
	return gralloc.YCbCrLayout{
		Y:          buf.data[layout.YOffset:],
		Cb:         buf.data[layout.CbOffset:],
		Cr:         buf.data[layout.CrOffset:],
		YStride:    layout.YStride,
		CStride:    layout.CStride,
		ChromaStep: layout.ChromaStep,
	}, gralloc.ErrorNone, nil
}

// Unlock ends the CPU access window and returns the release fence for
// downstream hardware consumers. Host memory needs no flush, so the fence
// is always InvalidFence ("already signaled"); callers may wait on it or
// close it immediately. Unlock must strictly alternate with a lock call, so
// unlocking a buffer that is not locked fails with ErrorBadBuffer.
func (m *Mapper) Unlock(buf *Buffer) (gralloc.Fence, gralloc.Error, error) {
	m.logger.Debug("Mapper::Unlock")

	if buf == nil {
		return gralloc.InvalidFence, gralloc.ErrorBadBuffer, errors.New("cannot unlock a nil buffer")
	}

	if res := buf.endAccess(); res != gralloc.ErrorNone {
		return gralloc.InvalidFence, res, errors.Newf("buffer %d is not locked", buf.meta.BufferID)
	}

	return gralloc.InvalidFence, gralloc.ErrorNone, nil
}
