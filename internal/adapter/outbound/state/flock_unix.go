//go:build !windows

package state

import "syscall"

// flockLock blocks until the exclusive lock on the state lock file is held.
func flockLock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX)
}

// flockUnlock releases the state lock file.
func flockUnlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
