package gralloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLayoutPacked(t *testing.T) {
	info := &BufferDescriptorInfo{
		Width:      100,
		Height:     50,
		LayerCount: 1,
		Format:     PixelFormatRGBA8888,
		Usage:      UsageCPURead | UsageCPUWrite,
	}

	layout, res := ResolveLayout(info)
	require.Equal(t, ErrorNone, res)
	require.GreaterOrEqual(t, layout.StridePixels, info.Width)
	require.Equal(t, 4, layout.BytesPerPixel)
	require.Equal(t, layout.StridePixels*4, layout.StrideBytes)
	require.Equal(t, layout.StrideBytes*info.Height, layout.TotalBytes)
	require.False(t, layout.Planar)
}

func TestResolveLayoutLayered(t *testing.T) {
	info := &BufferDescriptorInfo{
		Width:      64,
		Height:     64,
		LayerCount: 6,
		Format:     PixelFormatRGBA8888,
		Usage:      UsageGPUTexture | UsageCPUWrite,
	}

	layout, res := ResolveLayout(info)
	require.Equal(t, ErrorNone, res)
	require.Equal(t, layout.LayerBytes*6, layout.TotalBytes)
}

func TestResolveLayoutYV12(t *testing.T) {
	info := &BufferDescriptorInfo{
		Width:      64,
		Height:     64,
		LayerCount: 1,
		Format:     PixelFormatYV12,
		Usage:      UsageCPURead | UsageCPUWrite,
	}

	layout, res := ResolveLayout(info)
	require.Equal(t, ErrorNone, res)
	require.True(t, layout.Planar)
	require.Equal(t, 1, layout.ChromaStep)
	require.Equal(t, 64, layout.YStride)
	require.Equal(t, 32, layout.CStride)
	// plane order is Y, Cr, Cb
	require.Equal(t, 0, layout.YOffset)
	require.Equal(t, 64*64, layout.CrOffset)
	require.Equal(t, 64*64+32*32, layout.CbOffset)
	require.Equal(t, 64*64+2*32*32, layout.TotalBytes)
}

func TestResolveLayoutP010(t *testing.T) {
	info := &BufferDescriptorInfo{
		Width:      64,
		Height:     64,
		LayerCount: 1,
		Format:     PixelFormatYCbCrP010,
		Usage:      UsageCPURead | UsageCPUWrite,
	}

	layout, res := ResolveLayout(info)
	require.Equal(t, ErrorNone, res)
	require.True(t, layout.Planar)
	require.Equal(t, 64, layout.StridePixels)
	require.Equal(t, 64*2, layout.YStride)
	require.Equal(t, layout.YStride, layout.CStride)
	require.Equal(t, 4, layout.ChromaStep)
	require.Equal(t, layout.CrOffset, layout.CbOffset+2)
}

func TestResolveLayoutUnsupported(t *testing.T) {
	info := &BufferDescriptorInfo{
		Width:      64,
		Height:     64,
		LayerCount: 1,
		Format:     PixelFormatY16,
		Usage:      UsageCPURead,
	}

	_, res := ResolveLayout(info)
	require.Equal(t, ErrorUnsupported, res)

	protected := &BufferDescriptorInfo{
		Width:      64,
		Height:     64,
		LayerCount: 1,
		Format:     PixelFormatRGBA8888,
		Usage:      UsageCPURead | UsageProtected,
	}
	_, res = ResolveLayout(protected)
	require.Equal(t, ErrorUnsupported, res)

	oddPlanar := &BufferDescriptorInfo{
		Width:      63,
		Height:     64,
		LayerCount: 1,
		Format:     PixelFormatYV12,
		Usage:      UsageCPURead,
	}
	_, res = ResolveLayout(oddPlanar)
	require.Equal(t, ErrorUnsupported, res)

	tallBlob := &BufferDescriptorInfo{
		Width:      4096,
		Height:     2,
		LayerCount: 1,
		Format:     PixelFormatBlob,
		Usage:      UsageCPURead,
	}
	_, res = ResolveLayout(tallBlob)
	require.Equal(t, ErrorUnsupported, res)
}
