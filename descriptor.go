package gralloc

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// BufferDescriptorInfo specifies the buffer a caller wants: dimensions,
// layer count, pixel format, and the usage mask describing which hardware
// domains will touch it. It is immutable once handed to the service.
type BufferDescriptorInfo struct {
	Width      int
	Height     int
	LayerCount int
	Format     PixelFormat
	Usage      Usage
}

// Validate checks the individual fields for structural validity. It does not
// consult backend capability: a descriptor can be structurally valid and
// still unsupported.
func (info *BufferDescriptorInfo) Validate() error {
	if info.Width <= 0 {
		return errors.Newf("descriptor width must be positive, got %d", info.Width)
	}
	if info.Height <= 0 {
		return errors.Newf("descriptor height must be positive, got %d", info.Height)
	}
	if info.LayerCount < 1 {
		return errors.Newf("descriptor layer count must be at least 1, got %d", info.LayerCount)
	}

	return nil
}

// BufferDescriptor is the opaque serialized form of a BufferDescriptorInfo.
// It is a plain value: it carries no ownership semantics and can be passed
// across process boundaries freely.
type BufferDescriptor []byte

const (
	descriptorMagic   = "gralloc-descriptor"
	descriptorVersion = 1
)

// EncodeDescriptor serializes a descriptor info into its opaque wire form.
// The info must already have passed Validate.
func EncodeDescriptor(info *BufferDescriptorInfo) (BufferDescriptor, error) {
	w := jwriter.NewWriter()

	obj := w.Object()
	obj.Name("magic").String(descriptorMagic)
	obj.Name("version").Int(descriptorVersion)
	obj.Name("width").Int(info.Width)
	obj.Name("height").Int(info.Height)
	obj.Name("layerCount").Int(info.LayerCount)
	obj.Name("format").Int(int(info.Format))
	obj.Name("usage").Int(int(info.Usage))
	obj.End()

	if w.Error() != nil {
		return nil, errors.Wrap(w.Error(), "failed to serialize buffer descriptor")
	}

	return w.Bytes(), nil
}

// DecodeDescriptor parses an opaque descriptor blob. Any structural problem
// with the blob itself (bad JSON, missing magic, unknown version) is a
// decode failure- the caller should surface it as ErrorBadDescriptor.
func DecodeDescriptor(descriptor BufferDescriptor) (*BufferDescriptorInfo, error) {
	if len(descriptor) == 0 {
		return nil, errors.New("empty buffer descriptor")
	}

	var info BufferDescriptorInfo
	var magic string
	version := -1

	r := jreader.NewReader(descriptor)
	obj := r.Object()
	for obj.Next() {
		switch string(obj.Name()) {
		case "magic":
			magic = r.String()
		case "version":
			version = r.Int()
		case "width":
			info.Width = r.Int()
		case "height":
			info.Height = r.Int()
		case "layerCount":
			info.LayerCount = r.Int()
		case "format":
			info.Format = PixelFormat(r.Int())
		case "usage":
			info.Usage = Usage(r.Int())
		}
	}

	if r.Error() != nil {
		return nil, errors.Wrap(r.Error(), "failed to parse buffer descriptor")
	}
	if magic != descriptorMagic {
		return nil, errors.New("buffer descriptor is missing its magic tag")
	}
	if version != descriptorVersion {
		return nil, errors.Newf("buffer descriptor version %d is not understood", version)
	}

	return &info, nil
}
