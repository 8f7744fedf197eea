package allocator

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// DumpDebugInfo returns diagnostic text describing the allocator's lifetime
// activity as a JSON document. It has no behavioral contract beyond
// completing promptly.
func (a *Allocator) DumpDebugInfo() string {
	a.logger.Debug("Allocator::DumpDebugInfo")

	a.statsMutex.Lock()
	stats := a.stats
	failedCalls := a.failedCalls
	a.statsMutex.Unlock()

	w := jwriter.NewWriter()

	obj := w.Object()
	obj.Name("Flags").String(a.createFlags.String())
	obj.Name("MaxAllocationBytes").Int(a.maxAllocationBytes)
	obj.Name("FailedCalls").Int(failedCalls)

	statsObj := obj.Name("Buffers").Object()
	statsObj.Name("Count").Int(stats.BufferCount)
	statsObj.Name("Bytes").Int(stats.BufferBytes)
	if stats.BufferCount > 0 {
		statsObj.Name("SizeMin").Int(stats.BufferSizeMin)
		statsObj.Name("SizeMax").Int(stats.BufferSizeMax)
	}
	statsObj.End()

	obj.End()

	return string(w.Bytes())
}
