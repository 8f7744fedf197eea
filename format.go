package gralloc

import "github.com/hwgfx/gralloc/internal/utils"

// PixelFormat identifies the pixel layout of a buffer. Values follow the
// conventional graphics HAL numbering, including the fourcc-style codes for
// the legacy planar formats.
type PixelFormat int32

const (
	PixelFormatRGBA8888 PixelFormat = 0x1
	PixelFormatRGBX8888 PixelFormat = 0x2
	PixelFormatRGB888   PixelFormat = 0x3
	PixelFormatRGB565   PixelFormat = 0x4
	PixelFormatBGRA8888 PixelFormat = 0x5
	// PixelFormatRAW16 is a single-channel 16-bit sensor format. Optional:
	// backends may legitimately not realize it.
	PixelFormatRAW16 PixelFormat = 0x20
	// PixelFormatBlob is an untyped byte container; width is the byte count
	// and height must be 1
	PixelFormatBlob PixelFormat = 0x21
	// PixelFormatImplementationDefined lets the backend pick any layout
	// matching the usage; this backend chooses a 32-bit RGBA layout
	PixelFormatImplementationDefined PixelFormat = 0x22
	// PixelFormatYCbCr420_888 is the flexible planar 4:2:0 format; this
	// backend realizes it with the same plane rules as YV12
	PixelFormatYCbCr420_888 PixelFormat = 0x23
	PixelFormatYCbCrP010    PixelFormat = 0x36
	PixelFormatY16          PixelFormat = 0x20363159 // 'Y16 '
	PixelFormatYV12         PixelFormat = 0x32315659 // 'YV12'
)

var pixelFormatMapping = make(map[PixelFormat]string)

func (f PixelFormat) String() string {
	str, ok := pixelFormatMapping[f]
	if !ok {
		return "unknown format"
	}
	return str
}

func init() {
	pixelFormatMapping[PixelFormatRGBA8888] = "PixelFormatRGBA8888"
	pixelFormatMapping[PixelFormatRGBX8888] = "PixelFormatRGBX8888"
	pixelFormatMapping[PixelFormatRGB888] = "PixelFormatRGB888"
	pixelFormatMapping[PixelFormatRGB565] = "PixelFormatRGB565"
	pixelFormatMapping[PixelFormatBGRA8888] = "PixelFormatBGRA8888"
	pixelFormatMapping[PixelFormatRAW16] = "PixelFormatRAW16"
	pixelFormatMapping[PixelFormatBlob] = "PixelFormatBlob"
	pixelFormatMapping[PixelFormatImplementationDefined] = "PixelFormatImplementationDefined"
	pixelFormatMapping[PixelFormatYCbCr420_888] = "PixelFormatYCbCr420_888"
	pixelFormatMapping[PixelFormatYCbCrP010] = "PixelFormatYCbCrP010"
	pixelFormatMapping[PixelFormatY16] = "PixelFormatY16"
	pixelFormatMapping[PixelFormatYV12] = "PixelFormatYV12"
}

// Usage is a bitmask describing which hardware domains will touch a buffer.
// Allocation validity and lock permissions both depend on it.
type Usage uint64

var usageMapping = utils.NewFlagStringMapping[Usage]()

func (u Usage) Register(str string) {
	usageMapping.Register(u, str)
}
func (u Usage) String() string {
	return usageMapping.FlagsToString(u)
}

const (
	UsageCPURead Usage = 1 << iota
	UsageCPUWrite
	UsageGPUTexture
	UsageGPURenderTarget
	UsageGPUDataBuffer
	UsageComposerOverlay
	UsageVideoEncoder
	UsageVideoDecoder
	UsageCameraOutput
	UsageCameraInput
	// UsageProtected requests memory inaccessible to the CPU. This backend
	// is host memory only, so protected buffers are never realizable.
	UsageProtected
)

func init() {
	UsageCPURead.Register("UsageCPURead")
	UsageCPUWrite.Register("UsageCPUWrite")
	UsageGPUTexture.Register("UsageGPUTexture")
	UsageGPURenderTarget.Register("UsageGPURenderTarget")
	UsageGPUDataBuffer.Register("UsageGPUDataBuffer")
	UsageComposerOverlay.Register("UsageComposerOverlay")
	UsageVideoEncoder.Register("UsageVideoEncoder")
	UsageVideoDecoder.Register("UsageVideoDecoder")
	UsageCameraOutput.Register("UsageCameraOutput")
	UsageCameraInput.Register("UsageCameraInput")
	UsageProtected.Register("UsageProtected")
}

// UsageCPUAccess is the set of usage bits that grant lock access.
const UsageCPUAccess = UsageCPURead | UsageCPUWrite
