package mapper

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
)

// registryShardCount must be a power of two
const registryShardCount = 16

type registryShard struct {
	mutex sync.RWMutex
	refs  *swiss.Map[uint64, int]
}

// importRegistry tracks live import references per underlying buffer,
// keyed by buffer identity rather than handle value so that imports made
// through different Mapper instances land on the same count. Sharding keeps
// unrelated buffers off each other's locks.
type importRegistry struct {
	shards [registryShardCount]registryShard
}

func newImportRegistry() *importRegistry {
	r := &importRegistry{}
	for i := 0; i < registryShardCount; i++ {
		r.shards[i].refs = swiss.NewMap[uint64, int](64)
	}

	return r
}

// sharedRegistry is the process-wide registry backing every Mapper that
// serves the default domain. Imports and frees through different instances
// must agree on reference counts.
var sharedRegistry = newImportRegistry()

func (r *importRegistry) shardFor(bufferID uint64) *registryShard {
	return &r.shards[bufferID&(registryShardCount-1)]
}

// addRef registers one new import reference and returns the new count.
func (r *importRegistry) addRef(bufferID uint64) int {
	shard := r.shardFor(bufferID)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	count, _ := shard.refs.Get(bufferID)
	count++
	shard.refs.Put(bufferID, count)

	return count
}

// release drops one import reference. A release with no matching reference
// indicates registry corruption (a lost or double free) and is reported
// rather than silently absorbed.
func (r *importRegistry) release(bufferID uint64) (int, error) {
	shard := r.shardFor(bufferID)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	count, ok := shard.refs.Get(bufferID)
	if !ok || count <= 0 {
		return 0, errors.Newf("buffer %d has no live import references to release", bufferID)
	}

	count--
	if count == 0 {
		shard.refs.Delete(bufferID)
	} else {
		shard.refs.Put(bufferID, count)
	}

	return count, nil
}

// refCount reports the live import references for one buffer.
func (r *importRegistry) refCount(bufferID uint64) int {
	shard := r.shardFor(bufferID)

	shard.mutex.RLock()
	defer shard.mutex.RUnlock()

	count, _ := shard.refs.Get(bufferID)
	return count
}

// totalImports reports the live import references across all buffers.
func (r *importRegistry) totalImports() int {
	total := 0
	for i := 0; i < registryShardCount; i++ {
		shard := &r.shards[i]

		shard.mutex.RLock()
		shard.refs.Iter(func(_ uint64, count int) bool {
			total += count
			return false
		})
		shard.mutex.RUnlock()
	}

	return total
}
