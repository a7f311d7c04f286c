//go:build unix

package hashlink

import (
	"os"

	"golang.org/x/sys/unix"
)

func lockFile(f *os.File, mode LockMode) error {
	op := unix.LOCK_SH
	if mode == LockExclusive {
		op = unix.LOCK_EX
	}
	return unix.Flock(int(f.Fd()), op)
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
