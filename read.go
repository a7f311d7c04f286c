// Read path for the diagnostic log.
//
// Records are read back through a SectionReader, which reads at absolute
// offsets and leaves the handle's own offset alone. A line that
// does not parse (a torn write from a crashed process) is skipped.
package hashlink

import (
	"bufio"
	"bytes"
	"io"
	"os"
)

// Attempts returns every record in the log, oldest first.
func (s *FileSink) Attempts() ([]Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	var out []Attempt
	err := s.lock.hold(LockShared, func(f *os.File) error {
		end, err := size(f)
		if err != nil || end <= HeaderSize {
			return err
		}
		out, err = ReadAttempts(io.NewSectionReader(f, HeaderSize, end-HeaderSize))
		return err
	})
	return out, err
}

// ReadAttempts parses newline-delimited attempt records from r. A leading
// header line is recognised and skipped, as are blank and malformed lines.
func ReadAttempts(r io.Reader) ([]Attempt, error) {
	reader := bufio.NewReader(r)
	var out []Attempt
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimSpace(line)
			if len(line) > 0 {
				if a, derr := decodeAttempt(line); derr == nil {
					out = append(out, *a)
				}
			}
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

func size(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
