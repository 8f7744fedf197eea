package mapper

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/hwgfx/gralloc"
	"golang.org/x/exp/slog"
)

// Mapper is the descriptor codec and handle lifecycle service: it
// serializes descriptors for the Allocator, imports raw handles into
// process-local references, and grants CPU access windows over them.
//
// Every Mapper created by New serves the same underlying buffer domain, so
// a buffer imported through one instance may be freed through another.
type Mapper struct {
	logger   *slog.Logger
	registry *importRegistry
}

// New creates a new Mapper.
//
// logger - Destination for debug logging. A nil logger discards everything
func New(logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard))
	}

	return &Mapper{
		logger:   logger,
		registry: sharedRegistry,
	}
}

// CreateDescriptor validates the individual fields of info and serializes
// it into the opaque form the Allocator consumes. It checks structural
// validity only; whether the descriptor is realizable is IsSupported's
// business.
func (m *Mapper) CreateDescriptor(info *gralloc.BufferDescriptorInfo) (gralloc.BufferDescriptor, gralloc.Error, error) {
	m.logger.Debug("Mapper::CreateDescriptor")

	if info == nil {
		return nil, gralloc.ErrorBadValue, errors.New("descriptor info must not be nil")
	}

	err := info.Validate()
	if err != nil {
		return nil, gralloc.ErrorBadValue, err
	}

	descriptor, err := gralloc.EncodeDescriptor(info)
	if err != nil {
		return nil, gralloc.ErrorBadValue, err
	}

	return descriptor, gralloc.ErrorNone, nil
}

// IsSupported reports whether a structurally valid descriptor could be
// allocated and mapped by this backend. It is a pure capability query and
// never allocates buffer memory.
func (m *Mapper) IsSupported(info *gralloc.BufferDescriptorInfo) bool {
	m.logger.Debug("Mapper::IsSupported")

	if info == nil || info.Validate() != nil {
		return false
	}

	_, res := gralloc.ResolveLayout(info)
	return res == gralloc.ErrorNone
}

// ValidateBufferSize checks that an imported buffer is large enough to back
// the given descriptor at the given stride. A consumer receiving a buffer
// across a transport boundary uses this before trusting the metadata that
// came with it.
func (m *Mapper) ValidateBufferSize(buf *Buffer, info *gralloc.BufferDescriptorInfo, stridePixels int) (gralloc.Error, error) {
	m.logger.Debug("Mapper::ValidateBufferSize")

	if buf == nil {
		return gralloc.ErrorBadBuffer, errors.New("cannot validate a nil buffer")
	}
	if info == nil {
		return gralloc.ErrorBadValue, errors.New("descriptor info must not be nil")
	}
	if err := info.Validate(); err != nil {
		return gralloc.ErrorBadValue, err
	}

	layout, res := gralloc.ResolveLayout(info)
	if res != gralloc.ErrorNone {
		return res, res.ToError()
	}

	if stridePixels != 0 && stridePixels != buf.meta.StridePixels {
		return gralloc.ErrorBadValue, errors.Newf(
			"expected stride of %d pixels does not match the buffer's stride of %d",
			stridePixels, buf.meta.StridePixels)
	}
	if layout.TotalBytes > buf.meta.TotalBytes {
		return gralloc.ErrorBadValue, errors.Newf(
			"descriptor needs %d bytes but the buffer only has %d",
			layout.TotalBytes, buf.meta.TotalBytes)
	}

	return gralloc.ErrorNone, nil
}

// GetTransportSize reports how many file descriptors and integers the
// buffer's handle occupies when sent across a transport boundary.
func (m *Mapper) GetTransportSize(buf *Buffer) (numFds int, numInts int, res gralloc.Error, err error) {
	m.logger.Debug("Mapper::GetTransportSize")

	if buf == nil {
		return 0, 0, gralloc.ErrorBadBuffer, errors.New("cannot size a nil buffer")
	}

	return gralloc.HandleNumFds, gralloc.HandleNumInts, gralloc.ErrorNone, nil
}
