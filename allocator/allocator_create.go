package allocator

import (
	"io"

	"github.com/hwgfx/gralloc/internal/utils"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

var createFlagsMapping = utils.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	createFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return createFlagsMapping.FlagsToString(f)
}

const (
	// CreateExternallySynchronized ensures that this allocator will not be
	// synchronized internally. The consumer must guarantee it is used from
	// only one thread at a time or is synchronized by some other mechanism,
	// but performance may improve because internal mutexes are not used.
	CreateExternallySynchronized CreateFlags = 1 << iota
)

func init() {
	CreateExternallySynchronized.Register("CreateExternallySynchronized")
}

// CreateOptions contains optional settings when creating an allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags

	// MaxAllocationBytes caps the byte size a single Allocate call may
	// request across all its buffers. Requests beyond the cap fail with
	// ErrorNoResources. Zero means no cap.
	MaxAllocationBytes int
}

// New creates a new Allocator
//
// logger - Destination for debug logging. A nil logger discards everything
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard))
	}

	useMutex := options.Flags&CreateExternallySynchronized == 0

	allocator := &Allocator{
		logger:             logger,
		createFlags:        options.Flags,
		maxAllocationBytes: options.MaxAllocationBytes,
		statsMutex:         utils.OptionalMutex{UseMutex: useMutex},
	}
	allocator.stats.Clear()

	if options.MaxAllocationBytes < 0 {
		allocator.maxAllocationBytes = 0
	}

	return allocator, nil
}
