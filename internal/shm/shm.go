package shm

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// CreateBuffer creates an anonymous shared memory file of the requested size
// and returns its file descriptor. The memory is zero-filled by the kernel.
func CreateBuffer(name string, size int) (int, error) {
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return -1, errors.Wrapf(err, "failed to create shared memory file %s", name)
	}

	err = unix.Ftruncate(fd, int64(size))
	if err != nil {
		_ = unix.Close(fd)
		return -1, errors.Wrapf(err, "failed to size shared memory file %s to %d bytes", name, size)
	}

	return fd, nil
}

// Map maps size bytes of the shared memory file into this process for
// reading and writing.
func Map(fd int, size int) ([]byte, error) {
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to map %d bytes of shared memory", size)
	}

	return data, nil
}

// Unmap releases a mapping produced by Map.
func Unmap(data []byte) error {
	err := unix.Munmap(data)
	if err != nil {
		return errors.Wrap(err, "failed to unmap shared memory")
	}

	return nil
}

// Dup duplicates a buffer file descriptor, producing a new reference to the
// same underlying memory.
func Dup(fd int) (int, error) {
	newFd, err := unix.Dup(fd)
	if err != nil {
		return -1, errors.Wrapf(err, "failed to duplicate buffer fd %d", fd)
	}
	unix.CloseOnExec(newFd)

	return newFd, nil
}

// Close releases one file descriptor reference to a buffer.
func Close(fd int) error {
	err := unix.Close(fd)
	if err != nil {
		return errors.Wrapf(err, "failed to close buffer fd %d", fd)
	}

	return nil
}

// IsExhaustion reports whether an error from this package was caused by the
// process or system running out of memory or file descriptors.
func IsExhaustion(err error) bool {
	return errors.Is(err, unix.ENOMEM) || errors.Is(err, unix.EMFILE) ||
		errors.Is(err, unix.ENFILE) || errors.Is(err, unix.ENOSPC)
}
