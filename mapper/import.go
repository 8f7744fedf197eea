package mapper

import (
	"github.com/cockroachdb/errors"
	"github.com/hwgfx/gralloc"
	"github.com/hwgfx/gralloc/internal/shm"
)

// ImportBuffer registers a new reference to the buffer behind a raw (or
// foreign) handle and returns a process-local Buffer for it. The raw handle
// remains owned by the caller; the returned Buffer owns its own duplicated
// descriptor and mapping and must be released with exactly one FreeBuffer.
//
// Importing the same raw handle again, from this or any other Mapper
// instance, yields an independent reference.
func (m *Mapper) ImportBuffer(raw *gralloc.NativeHandle) (*Buffer, gralloc.Error, error) {
	m.logger.Debug("Mapper::ImportBuffer")

	if !raw.IsValid() {
		return nil, gralloc.ErrorBadBuffer, errors.New("cannot import a nil or structurally invalid handle")
	}

	meta, err := raw.Metadata()
	if err != nil {
		return nil, gralloc.ErrorBadBuffer, err
	}
	if meta.TotalBytes <= 0 {
		return nil, gralloc.ErrorBadBuffer, errors.Newf("handle for buffer %d reports a non-positive size", meta.BufferID)
	}

	layout, res := gralloc.ResolveLayout(&meta.Info)
	if res != gralloc.ErrorNone {
		return nil, gralloc.ErrorBadBuffer, errors.Wrapf(res.ToError(),
			"handle for buffer %d carries a descriptor this backend could not have produced", meta.BufferID)
	}
	if layout.StridePixels != meta.StridePixels || layout.TotalBytes != meta.TotalBytes {
		return nil, gralloc.ErrorBadBuffer, errors.Newf(
			"handle for buffer %d disagrees with the layout its descriptor resolves to", meta.BufferID)
	}

	fd, err := shm.Dup(raw.Fds[0])
	if err != nil {
		if shm.IsExhaustion(err) {
			return nil, gralloc.ErrorNoResources, err
		}
		return nil, gralloc.ErrorBadBuffer, err
	}

	data, err := shm.Map(fd, meta.TotalBytes)
	if err != nil {
		_ = shm.Close(fd)
		if shm.IsExhaustion(err) {
			return nil, gralloc.ErrorNoResources, err
		}
		return nil, gralloc.ErrorBadBuffer, err
	}

	m.registry.addRef(meta.BufferID)

	return &Buffer{
		meta:   meta,
		layout: layout,
		fd:     fd,
		data:   data,
	}, gralloc.ErrorNone, nil
}

// FreeBuffer releases exactly one import reference: the mapping and the
// duplicated descriptor go away, and the registry count for the underlying
// buffer drops by one. Freeing a reference twice fails with ErrorBadBuffer
// rather than silently succeeding.
//
// The Buffer may have been imported through a different Mapper instance;
// both instances serve the same domain, so the free still balances.
func (m *Mapper) FreeBuffer(buf *Buffer) (gralloc.Error, error) {
	m.logger.Debug("Mapper::FreeBuffer")

	if buf == nil {
		return gralloc.ErrorBadBuffer, errors.New("cannot free a nil buffer")
	}

	buf.mutex.Lock()
	if buf.freed {
		buf.mutex.Unlock()
		return gralloc.ErrorBadBuffer, errors.Newf("buffer %d reference was already freed", buf.meta.BufferID)
	}
	if buf.locked {
		// Tearing down a locked buffer is legal; the access window simply ends
		m.logger.Debug("freeing a buffer that is still locked")
		buf.locked = false
	}
	buf.freed = true
	data := buf.data
	fd := buf.fd
	buf.data = nil
	buf.fd = -1
	buf.mutex.Unlock()

	_, err := m.registry.release(buf.meta.BufferID)
	if err != nil {
		return gralloc.ErrorBadBuffer, err
	}

	err = shm.Unmap(data)
	if closeErr := shm.Close(fd); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return gralloc.ErrorNoResources, err
	}

	return gralloc.ErrorNone, nil
}
