// Package gralloc holds the shared vocabulary of the buffer allocation and
// mapping services: pixel formats, usage flags, descriptors and their wire
// codec, native handles, fences, and the format-driven layout table.
//
// The services themselves live in the allocator and mapper packages. A
// client builds a BufferDescriptorInfo, serializes it through
// mapper.Mapper.CreateDescriptor, allocates raw handles through
// allocator.Allocator.Allocate, imports each one through
// mapper.Mapper.ImportBuffer, and then cycles Lock/Unlock for CPU access
// before freeing the import with mapper.Mapper.FreeBuffer.
package gralloc
