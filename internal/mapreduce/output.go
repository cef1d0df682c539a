package mapreduce

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// OutputName returns the name of the output file for an exponent.
func OutputName(exponent int) string {
	return "out" + strconv.Itoa(exponent) + ".txt"
}

// FileSink writes each count to its own file in a directory.
type FileSink struct {
	dir string
}

// NewFileSink creates the output directory if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Path returns where the count of an exponent is written.
func (s *FileSink) Path(exponent int) string {
	return filepath.Join(s.dir, OutputName(exponent))
}

func (s *FileSink) Write(exponent, count int) error {
	filename := s.Path(exponent)
	if err := os.WriteFile(filename, []byte(strconv.Itoa(count)), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", filename, err)
	}
	return nil
}
