//go:build windows

package hashlink

import (
	"os"

	"golang.org/x/sys/windows"
)

// The lock covers the whole addressable range, so records appended past
// the current end are covered too.
const lockRange = 0xFFFFFFFF

func lockFile(f *os.File, mode LockMode) error {
	var flags uint32
	if mode == LockExclusive {
		flags = windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	var ol windows.Overlapped
	return windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, lockRange, lockRange, &ol)
}

func unlockFile(f *os.File) error {
	var ol windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, lockRange, lockRange, &ol)
}
