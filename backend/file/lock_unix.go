//go:build unix

package file

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock takes an exclusive, non-blocking advisory lock on the backing file,
// enforcing at most one mount even across separate processes. Returns an
// error immediately if another mount already holds the lock, rather than
// blocking for it — mount is a synchronous, single-shot operation with no
// suspension points.
func Lock(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return fmt.Errorf("disk %s is already mounted elsewhere: %w", f.Name(), err)
	}
	return nil
}

// Unlock releases the advisory lock taken by Lock.
func Unlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
