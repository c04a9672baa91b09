//go:build !unix

package file

import "os"

// Lock is a no-op on platforms without flock-style advisory locking; the
// single-mount invariant is still enforced in-process by package tinyfs.
func Lock(f *os.File) error {
	return nil
}

// Unlock is the no-op counterpart of Lock.
func Unlock(f *os.File) error {
	return nil
}
