// Cross-process locking for the diagnostic log.
//
// Decoders in several processes may share one log file. An append holds
// the lock exclusively for the length of one end-of-file write; a reader
// holds it shared while it scans the records. The lock is taken on the
// sink's read-write handle and that handle is what the holder works on.
package hashlink

import (
	"fmt"
	"os"
	"sync"
)

// LockMode selects shared (read) or exclusive (append) locking.
type LockMode int

const (
	LockShared LockMode = iota
	LockExclusive
)

func (m LockMode) String() string {
	if m == LockExclusive {
		return "exclusive"
	}
	return "shared"
}

// logLock hands out the log handle under an OS lock. Once the sink is
// closed the handle is cleared and every caller gets ErrClosed.
type logLock struct {
	mu sync.Mutex
	f  *os.File
}

// hold runs fn with the log handle locked in mode.
func (l *logLock) hold(mode LockMode, fn func(*os.File) error) error {
	f, err := l.acquire(mode)
	if err != nil {
		return err
	}
	err = fn(f)
	if uerr := unlockFile(f); err == nil && uerr != nil {
		err = fmt.Errorf("unlock log: %w", uerr)
	}
	return err
}

func (l *logLock) acquire(mode LockMode) (*os.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil, ErrClosed
	}
	if err := lockFile(l.f, mode); err != nil {
		return nil, fmt.Errorf("lock log %s: %w", mode, err)
	}
	return l.f, nil
}

// release clears the handle. Callers already inside hold finish first
// because the sink serialises them with Close.
func (l *logLock) release() {
	l.mu.Lock()
	l.f = nil
	l.mu.Unlock()
}
