// Diagnostic sinks.
//
// The decoder appends one Attempt per step to a Sink and never reads it
// back. MemorySink keeps records in process; FileSink writes them to an
// append-only log of newline-delimited JSON.
package hashlink

import (
	"os"
	"slices"
	"sync"
)

// Sink receives attempt records. Implementations must be safe for
// concurrent use: independent decodes may share one sink.
type Sink interface {
	Append(Attempt) error
}

type discardSink struct{}

func (discardSink) Append(Attempt) error { return nil }

// MemorySink collects attempts in memory.
type MemorySink struct {
	mu       sync.Mutex
	attempts []Attempt
}

func (s *MemorySink) Append(a Attempt) error {
	s.mu.Lock()
	s.attempts = append(s.attempts, a)
	s.mu.Unlock()
	return nil
}

// Attempts returns a copy of the recorded attempts in append order.
func (s *MemorySink) Attempts() []Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.attempts)
}

// SinkConfig holds log file options.
type SinkConfig struct {
	HashAlgorithm int  // Recorded in the header (default xxHash3)
	Truncate      bool // Recreate the file instead of appending
	SyncWrites    bool // Call fsync after each append
}

// FileSink is an append-only diagnostic log file.
type FileSink struct {
	root   *os.Root  // Sandboxed filesystem access
	name   string    // Log filename
	file   *os.File  // Read-write handle, used only under lock
	lock   *logLock  // Cross-process lock on file
	header *Header   // Cached header
	config SinkConfig
	closed bool
	mu     sync.Mutex
}

// OpenSink opens or creates a log file in dir. A new file starts with a
// header carrying the start-up stamp.
func OpenSink(dir, name string, config SinkConfig) (*FileSink, error) {
	if config.HashAlgorithm == 0 {
		config.HashAlgorithm = AlgXXHash3
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}

	_, err = root.Stat(name)
	if os.IsNotExist(err) || config.Truncate {
		if err := create(root, name, config); err != nil {
			root.Close()
			return nil, err
		}
	}

	file, err := root.OpenFile(name, os.O_RDWR, 0644)
	if err != nil {
		root.Close()
		return nil, err
	}

	hdr, err := header(file)
	if err != nil {
		file.Close()
		root.Close()
		return nil, err
	}

	return &FileSink{
		root:   root,
		name:   name,
		file:   file,
		lock:   &logLock{f: file},
		header: hdr,
		config: config,
	}, nil
}

// create writes a fresh file holding only the header.
func create(root *os.Root, name string, config SinkConfig) error {
	file, err := root.Create(name)
	if err != nil {
		return err
	}
	defer file.Close()

	hdr := Header{
		Version:   LogVersion,
		Algorithm: config.HashAlgorithm,
		Timestamp: now(),
	}
	buf, err := hdr.encode()
	if err != nil {
		return err
	}
	if _, err := file.Write(buf); err != nil {
		return err
	}
	return file.Sync()
}

// Header returns the log header.
func (s *FileSink) Header() Header {
	return *s.header
}

// Close releases the file handles. Further appends return ErrClosed.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.lock.release()

	var errs []error
	if err := s.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.root.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
