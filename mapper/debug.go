package mapper

import (
	"strconv"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// DumpDebugInfo returns diagnostic text describing the import registry as a
// JSON document.
func (m *Mapper) DumpDebugInfo() string {
	m.logger.Debug("Mapper::DumpDebugInfo")

	w := jwriter.NewWriter()

	obj := w.Object()
	obj.Name("LiveImports").Int(m.registry.totalImports())

	buffersObj := obj.Name("Buffers").Object()
	for i := 0; i < registryShardCount; i++ {
		shard := &m.registry.shards[i]

		shard.mutex.RLock()
		shard.refs.Iter(func(bufferID uint64, count int) bool {
			buffersObj.Name("buffer-" + strconv.FormatUint(bufferID, 10)).Int(count)
			return false
		})
		shard.mutex.RUnlock()
	}
	buffersObj.End()

	obj.End()

	return string(w.Bytes())
}
