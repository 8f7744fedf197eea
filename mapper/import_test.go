package mapper

import (
	"testing"

	"github.com/hwgfx/gralloc"
	"github.com/stretchr/testify/require"
)

func TestImportFreeBasic(t *testing.T) {
	m := New(nil)

	info := dummyDescriptorInfo()
	raw, stride := allocateRaw(t, info)
	buf := importBuffer(t, m, raw)

	require.Equal(t, info.Width, buf.Width())
	require.Equal(t, info.Height, buf.Height())
	require.Equal(t, info.LayerCount, buf.LayerCount())
	require.Equal(t, info.Format, buf.Format())
	require.Equal(t, info.Usage, buf.Usage())
	require.Equal(t, stride, buf.StridePixels())
	require.Greater(t, buf.Size(), 0)

	freeBuffer(t, m, buf)
	require.NoError(t, raw.Close())
}

func TestImportFreeClone(t *testing.T) {
	m := New(nil)

	raw, _ := allocateRaw(t, dummyDescriptorInfo())

	// a raw handle can be imported any number of times; each import is an
	// independent reference
	first := importBuffer(t, m, raw)
	second := importBuffer(t, m, raw)

	require.Equal(t, 2, m.registry.refCount(first.meta.BufferID))

	freeBuffer(t, m, first)
	freeBuffer(t, m, second)

	require.Equal(t, 0, m.registry.refCount(first.meta.BufferID))
	require.NoError(t, raw.Close())
}

func TestImportFreeDistinctAllocators(t *testing.T) {
	m := New(nil)

	// buffers minted by different Allocator instances are still distinct
	// identities, so their import references never merge
	rawA, _ := allocateRaw(t, dummyDescriptorInfo())
	rawB, _ := allocateRaw(t, dummyDescriptorInfo())

	metaA, err := rawA.Metadata()
	require.NoError(t, err)
	metaB, err := rawB.Metadata()
	require.NoError(t, err)
	require.NotEqual(t, metaA.BufferID, metaB.BufferID)

	bufA := importBuffer(t, m, rawA)
	bufB := importBuffer(t, m, rawB)

	require.Equal(t, 1, m.registry.refCount(bufA.meta.BufferID))
	require.Equal(t, 1, m.registry.refCount(bufB.meta.BufferID))

	freeBuffer(t, m, bufA)
	require.Equal(t, 1, m.registry.refCount(bufB.meta.BufferID))

	freeBuffer(t, m, bufB)
	require.NoError(t, rawA.Close())
	require.NoError(t, rawB.Close())
}

func TestImportFreeCrossInstance(t *testing.T) {
	m := New(nil)
	anotherMapper := New(nil)

	raw, _ := allocateRaw(t, dummyDescriptorInfo())
	buf := importBuffer(t, m, raw)

	// free through a different mapper serving the same domain
	freeBuffer(t, anotherMapper, buf)
	require.NoError(t, raw.Close())
}

func TestImportFreeNoLeak(t *testing.T) {
	m := New(nil)

	info := dummyDescriptorInfo()
	info.Width = 1024
	info.Height = 1024

	for i := 0; i < 2048; i++ {
		raw, _ := allocateRaw(t, info)
		buf := importBuffer(t, m, raw)
		freeBuffer(t, m, buf)
		require.NoError(t, raw.Close())
	}
}

func TestImportBufferNegative(t *testing.T) {
	m := New(nil)

	_, res, err := m.ImportBuffer(nil)
	require.Error(t, err)
	require.Equal(t, gralloc.ErrorBadBuffer, res, "importBuffer with nil did not fail with ErrorBadBuffer")

	_, res, err = m.ImportBuffer(&gralloc.NativeHandle{})
	require.Error(t, err)
	require.Equal(t, gralloc.ErrorBadBuffer, res, "importBuffer with an empty handle did not fail with ErrorBadBuffer")

	// right shape, wrong content
	_, res, err = m.ImportBuffer(&gralloc.NativeHandle{
		Fds:  []int{0},
		Ints: make([]int, gralloc.HandleNumInts),
	})
	require.Error(t, err)
	require.Equal(t, gralloc.ErrorBadBuffer, res)
}

func TestFreeBufferNegative(t *testing.T) {
	m := New(nil)

	res, err := m.FreeBuffer(nil)
	require.Error(t, err)
	require.Equal(t, gralloc.ErrorBadBuffer, res, "freeBuffer with nil did not fail with ErrorBadBuffer")

	raw, _ := allocateRaw(t, dummyDescriptorInfo())
	buf := importBuffer(t, m, raw)
	freeBuffer(t, m, buf)

	// the reference is gone; a second free must not silently succeed
	res, err = m.FreeBuffer(buf)
	require.Error(t, err)
	require.Equal(t, gralloc.ErrorBadBuffer, res, "double free did not fail with ErrorBadBuffer")

	require.NoError(t, raw.Close())
}

func TestCloneThenImport(t *testing.T) {
	m := New(nil)

	raw, _ := allocateRaw(t, dummyDescriptorInfo())

	clone, err := raw.Clone()
	require.NoError(t, err)

	// the original can be released while the clone stays importable
	require.NoError(t, raw.Close())

	buf := importBuffer(t, m, clone)
	freeBuffer(t, m, buf)
	require.NoError(t, clone.Close())
}
