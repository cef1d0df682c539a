package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ErrMalformed marks sample files whose contents do not match their header.
var ErrMalformed = errors.New("malformed sample file")

// Manifest lists the input files of a run.
type Manifest struct {
	Declared int // file count from the header, informational only
	Files    []string
}

// ReadManifest parses a manifest file: an integer file count followed by
// whitespace-separated filenames up to end of file.
func ReadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer file.Close()

	m, err := ParseManifest(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return m, nil
}

func ParseManifest(r io.Reader) (*Manifest, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("missing file count")
	}
	declared, err := strconv.Atoi(scanner.Text())
	if err != nil {
		return nil, fmt.Errorf("invalid file count %q: %w", scanner.Text(), err)
	}

	m := &Manifest{Declared: declared}
	for scanner.Scan() {
		m.Files = append(m.Files, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return m, nil
}

// FileLoader reads sample files from the local filesystem.
type FileLoader struct{}

// Load implements the mapper's source of numbers.
func (FileLoader) Load(filename string) ([]int64, error) {
	return ReadSamples(filename)
}

// ReadSamples parses a sample file: a count N followed by N integers.
func ReadSamples(filename string) ([]int64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	numbers, err := ParseSamples(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return numbers, nil
}

// ParseSamples reads a count N and then exactly N integers. Tokens after the
// N-th integer are ignored.
func ParseSamples(r io.Reader) ([]int64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: missing sample count", ErrMalformed)
	}
	count, err := strconv.Atoi(scanner.Text())
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: invalid sample count %q", ErrMalformed, scanner.Text())
	}

	numbers := make([]int64, 0, count)
	for len(numbers) < count && scanner.Scan() {
		n, err := strconv.ParseInt(scanner.Text(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number %q", ErrMalformed, scanner.Text())
		}
		numbers = append(numbers, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(numbers) < count {
		return nil, fmt.Errorf("%w: declared %d numbers, found %d", ErrMalformed, count, len(numbers))
	}

	return numbers, nil
}
