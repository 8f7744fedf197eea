package mapper

import (
	"testing"

	"github.com/hwgfx/gralloc"
	"github.com/hwgfx/gralloc/allocator"
	"github.com/stretchr/testify/require"
)

func dummyDescriptorInfo() *gralloc.BufferDescriptorInfo {
	return &gralloc.BufferDescriptorInfo{
		Width:      64,
		Height:     64,
		LayerCount: 1,
		Format:     gralloc.PixelFormatRGBA8888,
		Usage:      gralloc.UsageCPURead | gralloc.UsageCPUWrite,
	}
}

// allocateRaw produces one raw handle the way a real client would: descriptor
// through the mapper, allocation through the allocator.
func allocateRaw(t *testing.T, info *gralloc.BufferDescriptorInfo) (*gralloc.NativeHandle, int) {
	t.Helper()

	a, err := allocator.New(nil, allocator.CreateOptions{})
	require.NoError(t, err)

	m := New(nil)
	descriptor, res, err := m.CreateDescriptor(info)
	require.NoError(t, err)
	require.Equal(t, gralloc.ErrorNone, res)

	handles, stride, res, err := a.Allocate(descriptor, 1)
	require.NoError(t, err)
	require.Equal(t, gralloc.ErrorNone, res)
	require.Len(t, handles, 1)

	return handles[0], stride
}

func importBuffer(t *testing.T, m *Mapper, raw *gralloc.NativeHandle) *Buffer {
	t.Helper()

	buf, res, err := m.ImportBuffer(raw)
	require.NoError(t, err)
	require.Equal(t, gralloc.ErrorNone, res)
	require.NotNil(t, buf)

	return buf
}

func freeBuffer(t *testing.T, m *Mapper, buf *Buffer) {
	t.Helper()

	res, err := m.FreeBuffer(buf)
	require.NoError(t, err)
	require.Equal(t, gralloc.ErrorNone, res)
}

func TestCreateDescriptor(t *testing.T) {
	m := New(nil)

	descriptor, res, err := m.CreateDescriptor(dummyDescriptorInfo())
	require.NoError(t, err)
	require.Equal(t, gralloc.ErrorNone, res)
	require.NotEmpty(t, descriptor)
}

func TestCreateDescriptorNegative(t *testing.T) {
	m := New(nil)

	info := dummyDescriptorInfo()
	info.Width = 0
	_, res, err := m.CreateDescriptor(info)
	require.Error(t, err)
	require.Equal(t, gralloc.ErrorBadValue, res, "createDescriptor did not fail with ErrorBadValue")

	_, res, err = m.CreateDescriptor(nil)
	require.Error(t, err)
	require.Equal(t, gralloc.ErrorBadValue, res)
}

func TestIsSupportedRGBA8888(t *testing.T) {
	m := New(nil)
	require.True(t, m.IsSupported(dummyDescriptorInfo()))
}

func TestIsSupportedYV12(t *testing.T) {
	m := New(nil)

	info := dummyDescriptorInfo()
	info.Format = gralloc.PixelFormatYV12
	require.True(t, m.IsSupported(info))
}

func TestIsSupportedY16(t *testing.T) {
	m := New(nil)

	// Y16 is optional; this backend declines it, but the query itself must
	// work without allocating
	info := dummyDescriptorInfo()
	info.Format = gralloc.PixelFormatY16
	require.False(t, m.IsSupported(info))
}

func TestValidateBufferSize(t *testing.T) {
	m := New(nil)

	info := dummyDescriptorInfo()
	raw, stride := allocateRaw(t, info)
	buf := importBuffer(t, m, raw)

	res, err := m.ValidateBufferSize(buf, info, stride)
	require.NoError(t, err)
	require.Equal(t, gralloc.ErrorNone, res)

	// a descriptor needing more memory than the buffer has must be rejected
	bigger := *info
	bigger.Width = 1024
	bigger.Height = 1024
	res, err = m.ValidateBufferSize(buf, &bigger, 0)
	require.Error(t, err)
	require.Equal(t, gralloc.ErrorBadValue, res)

	res, err = m.ValidateBufferSize(buf, info, stride+1)
	require.Error(t, err)
	require.Equal(t, gralloc.ErrorBadValue, res)

	res, err = m.ValidateBufferSize(nil, info, stride)
	require.Error(t, err)
	require.Equal(t, gralloc.ErrorBadBuffer, res)

	freeBuffer(t, m, buf)
	require.NoError(t, raw.Close())
}

func TestGetTransportSize(t *testing.T) {
	m := New(nil)

	raw, _ := allocateRaw(t, dummyDescriptorInfo())
	buf := importBuffer(t, m, raw)

	numFds, numInts, res, err := m.GetTransportSize(buf)
	require.NoError(t, err)
	require.Equal(t, gralloc.ErrorNone, res)
	require.Equal(t, gralloc.HandleNumFds, numFds)
	require.Equal(t, gralloc.HandleNumInts, numInts)

	_, _, res, err = m.GetTransportSize(nil)
	require.Error(t, err)
	require.Equal(t, gralloc.ErrorBadBuffer, res)

	freeBuffer(t, m, buf)
	require.NoError(t, raw.Close())
}

func TestDumpDebugInfo(t *testing.T) {
	m := New(nil)

	raw, _ := allocateRaw(t, dummyDescriptorInfo())
	buf := importBuffer(t, m, raw)

	dump := m.DumpDebugInfo()
	require.NotEmpty(t, dump)
	require.Contains(t, dump, "LiveImports")

	freeBuffer(t, m, buf)
	require.NoError(t, raw.Close())
}
