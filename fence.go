package gralloc

import (
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Fence is a synchronization token signaling hardware completion, backed by
// an eventfd. InvalidFence means "already signaled, no wait needed".
// Ownership transfers with the value: a fence passed as an acquire fence is
// closed by the callee, a returned release fence is closed by the caller.
type Fence int

const InvalidFence Fence = -1

// DefaultFenceTimeout bounds every fence wait. An unsignaled fence is a
// producer bug; hanging the lock path forever on one is not acceptable.
const DefaultFenceTimeout = 3 * time.Second

func (f Fence) IsValid() bool {
	return f >= 0
}

// NewFence creates an unsignaled fence.
func NewFence() (Fence, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC)
	if err != nil {
		return InvalidFence, errors.Wrap(err, "failed to create fence eventfd")
	}

	return Fence(fd), nil
}

// Signal marks the fence as signaled, releasing all current and future
// waiters.
func (f Fence) Signal() error {
	if !f.IsValid() {
		return errors.New("cannot signal an invalid fence")
	}

	payload := [8]byte{0: 1}
	_, err := unix.Write(int(f), payload[:])
	if err != nil {
		return errors.Wrapf(err, "failed to signal fence %d", int(f))
	}

	return nil
}

// Wait blocks until the fence signals or the timeout elapses. Waiting on an
// invalid fence returns immediately. The fence remains open afterwards.
func (f Fence) Wait(timeout time.Duration) error {
	if !f.IsValid() {
		return nil
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			return errors.Newf("timed out after %s waiting on fence %d", timeout, int(f))
		}

		pollFds := []unix.PollFd{{Fd: int32(f), Events: unix.POLLIN}}
		n, err := unix.Poll(pollFds, int(remaining.Milliseconds()))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "failed to poll fence %d", int(f))
		}
		if n == 0 {
			return errors.Newf("timed out after %s waiting on fence %d", timeout, int(f))
		}

		return nil
	}
}

// Close releases the fence's file descriptor. Closing an invalid fence is a
// no-op.
func (f Fence) Close() error {
	if !f.IsValid() {
		return nil
	}

	err := unix.Close(int(f))
	if err != nil {
		return errors.Wrapf(err, "failed to close fence %d", int(f))
	}

	return nil
}
