package gralloc

import "github.com/hwgfx/gralloc/memutils"

// Rect restricts the sub-rectangle a caller intends to touch during a lock.
// It never changes the returned base address or stride.
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// YCbCrLayout is the per-plane view over a locked planar buffer. The slices
// alias the buffer's mapping and are only valid until the matching unlock.
type YCbCrLayout struct {
	Y  []byte
	Cb []byte
	Cr []byte

	// YStride and CStride are in bytes
	YStride int
	CStride int
	// ChromaStep is the distance in bytes between consecutive chroma samples
	// of the same channel: 1 for fully planar layouts, 4 for interleaved
	// 2-byte-per-sample chroma
	ChromaStep int
}

// BufferLayout is the resolved memory layout for one descriptor: where each
// plane lives, how wide its rows are, and how many bytes the whole buffer
// (all layers) occupies.
type BufferLayout struct {
	StridePixels  int
	StrideBytes   int
	BytesPerPixel int
	LayerBytes    int
	TotalBytes    int

	Planar     bool
	YOffset    int
	CbOffset   int
	CrOffset   int
	YStride    int
	CStride    int
	ChromaStep int
}

type supportClass byte

const (
	// supportRequired formats must allocate and map on every backend
	supportRequired supportClass = iota
	// supportOptional formats may report unsupported; this backend does
	supportOptional
)

type formatInfo struct {
	bytesPerPixel int
	planar        bool
	evenDims      bool
	support       supportClass
	resolve       func(info *BufferDescriptorInfo, stridePx int, layout *BufferLayout)
}

// strideAlignPixels is the row alignment the backend applies to every
// format. A reported stride holds for the whole buffer, not per row.
const strideAlignPixels = 16

// formatInfos is populated in init because the resolve functions look the
// table back up by format.
var formatInfos map[PixelFormat]formatInfo

func init() {
	formatInfos = map[PixelFormat]formatInfo{
		PixelFormatRGBA8888:              {bytesPerPixel: 4, resolve: resolvePacked},
		PixelFormatRGBX8888:              {bytesPerPixel: 4, resolve: resolvePacked},
		PixelFormatBGRA8888:              {bytesPerPixel: 4, resolve: resolvePacked},
		PixelFormatRGB888:                {bytesPerPixel: 3, resolve: resolvePacked},
		PixelFormatRGB565:                {bytesPerPixel: 2, resolve: resolvePacked},
		PixelFormatImplementationDefined: {bytesPerPixel: 4, resolve: resolvePacked},
		PixelFormatBlob:                  {bytesPerPixel: 1, resolve: resolveBlob},
		PixelFormatYV12:                  {planar: true, evenDims: true, resolve: resolveYV12},
		PixelFormatYCbCr420_888:          {planar: true, evenDims: true, resolve: resolveYV12},
		PixelFormatYCbCrP010:             {planar: true, evenDims: true, resolve: resolveP010},
		PixelFormatY16:                   {bytesPerPixel: 2, support: supportOptional, resolve: resolvePacked},
		PixelFormatRAW16:                 {bytesPerPixel: 2, support: supportOptional, resolve: resolvePacked},
	}
}

func resolvePacked(info *BufferDescriptorInfo, stridePx int, layout *BufferLayout) {
	fi := formatInfos[info.Format]
	layout.BytesPerPixel = fi.bytesPerPixel
	layout.StrideBytes = stridePx * fi.bytesPerPixel
	layout.LayerBytes = layout.StrideBytes * info.Height
}

func resolveBlob(info *BufferDescriptorInfo, stridePx int, layout *BufferLayout) {
	// A blob is a bag of width bytes, no row structure
	layout.StridePixels = info.Width
	layout.BytesPerPixel = 1
	layout.StrideBytes = info.Width
	layout.LayerBytes = info.Width
}

func resolveYV12(info *BufferDescriptorInfo, stridePx int, layout *BufferLayout) {
	yStride := stridePx
	cStride := memutils.AlignUp(yStride/2, strideAlignPixels)
	ySize := yStride * info.Height
	cSize := cStride * info.Height / 2

	layout.Planar = true
	layout.StrideBytes = yStride
	layout.YStride = yStride
	layout.CStride = cStride
	layout.ChromaStep = 1
	// Plane order is Y, then Cr, then Cb
	layout.YOffset = 0
	layout.CrOffset = ySize
	layout.CbOffset = ySize + cSize
	layout.LayerBytes = ySize + 2*cSize
}

func resolveP010(info *BufferDescriptorInfo, stridePx int, layout *BufferLayout) {
	// 2 bytes per luma sample, chroma interleaved as CbCr pairs
	yStride := stridePx * 2
	ySize := yStride * info.Height
	cSize := yStride * info.Height / 2

	layout.Planar = true
	layout.StrideBytes = yStride
	layout.YStride = yStride
	layout.CStride = yStride
	layout.ChromaStep = 4
	layout.YOffset = 0
	layout.CbOffset = ySize
	layout.CrOffset = ySize + 2
	layout.LayerBytes = ySize + cSize
}

// ResolveLayout computes the memory layout the backend uses for a
// structurally valid descriptor. It reports ErrorUnsupported for format and
// usage combinations this backend cannot realize and never allocates.
func ResolveLayout(info *BufferDescriptorInfo) (BufferLayout, Error) {
	fi, ok := formatInfos[info.Format]
	if !ok {
		return BufferLayout{}, ErrorUnsupported
	}
	if fi.support == supportOptional {
		return BufferLayout{}, ErrorUnsupported
	}
	if info.Usage&UsageProtected != 0 {
		// Host memory can always be read by the CPU, so a protection
		// guarantee cannot be honored
		return BufferLayout{}, ErrorUnsupported
	}
	if fi.evenDims && (info.Width%2 != 0 || info.Height%2 != 0) {
		return BufferLayout{}, ErrorUnsupported
	}
	if info.Format == PixelFormatBlob && info.Height != 1 {
		return BufferLayout{}, ErrorUnsupported
	}

	layout := BufferLayout{
		StridePixels: memutils.AlignUp(info.Width, strideAlignPixels),
	}
	fi.resolve(info, layout.StridePixels, &layout)
	layout.TotalBytes = layout.LayerBytes * info.LayerCount

	return layout, ErrorNone
}

// IsFormatPlanar reports whether lockYCbCr is the access path for this
// format.
func IsFormatPlanar(format PixelFormat) bool {
	return formatInfos[format].planar
}
