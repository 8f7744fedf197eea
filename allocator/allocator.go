package allocator

import (
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/hwgfx/gralloc"
	"github.com/hwgfx/gralloc/internal/shm"
	"github.com/hwgfx/gralloc/internal/utils"
	"github.com/hwgfx/gralloc/memutils"
	"golang.org/x/exp/slog"
)

// Allocator turns validated buffer descriptors into raw, shared-memory
// backed buffer handles. It is a leaf component: it creates resources but
// keeps no cross-reference bookkeeping, so concurrent Allocate calls only
// contend on the statistics block.
type Allocator struct {
	logger      *slog.Logger
	createFlags CreateFlags

	maxAllocationBytes int

	statsMutex  utils.OptionalMutex
	stats       memutils.DetailedStatistics
	failedCalls int
}

// Allocate creates count independent buffers matching the descriptor. All
// buffers share a single descriptor-derived stride, reported in pixels.
// The call is atomic: on any failure, buffers allocated earlier in the
// batch are released and no handles are returned.
//
// The caller owns the returned raw handles and must route each through a
// Mapper import before CPU access.
func (a *Allocator) Allocate(descriptor gralloc.BufferDescriptor, count int) ([]*gralloc.NativeHandle, int, gralloc.Error, error) {
	a.logger.Debug("Allocator::Allocate")

	info, err := gralloc.DecodeDescriptor(descriptor)
	if err != nil {
		a.recordFailure()
		return nil, 0, gralloc.ErrorBadDescriptor, err
	}

	if err = info.Validate(); err != nil {
		a.recordFailure()
		return nil, 0, gralloc.ErrorBadValue, err
	}
	if count < 0 {
		a.recordFailure()
		return nil, 0, gralloc.ErrorBadValue, errors.Newf("buffer count must not be negative, got %d", count)
	}

	layout, res := gralloc.ResolveLayout(info)
	if res != gralloc.ErrorNone {
		a.recordFailure()
		return nil, 0, res, errors.Wrapf(res.ToError(),
			"cannot realize format %s with usage %s", info.Format, info.Usage)
	}

	if count == 0 {
		return nil, layout.StridePixels, gralloc.ErrorNone, nil
	}

	// Divide rather than multiply so a huge count cannot overflow past the cap
	if a.maxAllocationBytes > 0 && count > a.maxAllocationBytes/layout.TotalBytes {
		a.recordFailure()
		return nil, 0, gralloc.ErrorNoResources, errors.Newf(
			"request for %d buffers of %d bytes exceeds the allocation cap of %d bytes",
			count, layout.TotalBytes, a.maxAllocationBytes)
	}

	handles := make([]*gralloc.NativeHandle, 0, count)
	for i := 0; i < count; i++ {
		handle, res, err := a.allocateOne(info, &layout)
		if err != nil {
			for _, earlier := range handles {
				_ = earlier.Close()
			}
			a.recordFailure()
			return nil, 0, res, err
		}

		handles = append(handles, handle)
	}

	a.statsMutex.Lock()
	for range handles {
		a.stats.AddBuffer(layout.TotalBytes)
	}
	a.statsMutex.Unlock()

	memutils.DebugValidate(a)

	return handles, layout.StridePixels, gralloc.ErrorNone, nil
}

// nextBufferID mints process-unique buffer identities. The import registry
// keys reference counts by this identity, so two Allocator instances must
// never hand out the same ID.
var nextBufferID atomic.Uint64

func (a *Allocator) allocateOne(info *gralloc.BufferDescriptorInfo, layout *gralloc.BufferLayout) (*gralloc.NativeHandle, gralloc.Error, error) {
	id := nextBufferID.Add(1)

	name := fmt.Sprintf("gralloc-%d-%s", id, info.Format)
	fd, err := shm.CreateBuffer(name, layout.TotalBytes)
	if err != nil {
		if shm.IsExhaustion(err) {
			return nil, gralloc.ErrorNoResources, err
		}
		return nil, gralloc.ErrorNoResources, errors.Wrapf(err, "failed to back buffer %d", id)
	}

	handle := gralloc.NewRawHandle(fd, gralloc.BufferMeta{
		BufferID:     id,
		Info:         *info,
		StridePixels: layout.StridePixels,
		TotalBytes:   layout.TotalBytes,
	})

	return handle, gralloc.ErrorNone, nil
}

func (a *Allocator) recordFailure() {
	a.statsMutex.Lock()
	a.failedCalls++
	a.statsMutex.Unlock()
}

// Validate checks the allocator's internal bookkeeping for corruption.
func (a *Allocator) Validate() error {
	a.statsMutex.Lock()
	defer a.statsMutex.Unlock()

	if a.stats.BufferCount < 0 || a.stats.BufferBytes < 0 {
		return errors.Newf("allocation statistics have gone negative: %d buffers, %d bytes",
			a.stats.BufferCount, a.stats.BufferBytes)
	}
	if a.stats.BufferCount > 0 && a.stats.BufferSizeMax < a.stats.BufferSizeMin {
		return errors.New("allocation statistics report a max buffer size below the min")
	}

	return nil
}
