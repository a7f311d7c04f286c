// Write path for the diagnostic log.
//
// Each record is one JSON line. The line and its newline go out in a single
// WriteAt at the end of file, which is re-read under the exclusive lock so
// that another process appending to the same file is never overwritten.
package hashlink

import "os"

// Append writes one attempt record to the log.
func (s *FileSink) Append(a Attempt) error {
	line, err := a.encode()
	if err != nil {
		return err
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	return s.lock.hold(LockExclusive, func(f *os.File) error {
		tail, err := size(f)
		if err != nil {
			return err
		}
		if _, err := f.WriteAt(line, tail); err != nil {
			return err
		}
		if s.config.SyncWrites {
			return f.Sync()
		}
		return nil
	})
}
