package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest(strings.NewReader("3\nin1.txt\nin2.txt in3.txt\n"))
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}
	if m.Declared != 3 {
		t.Fatalf("expected declared count 3, got %d", m.Declared)
	}
	want := []string{"in1.txt", "in2.txt", "in3.txt"}
	if len(m.Files) != len(want) {
		t.Fatalf("files = %v, want %v", m.Files, want)
	}
	for i := range want {
		if m.Files[i] != want[i] {
			t.Fatalf("files = %v, want %v", m.Files, want)
		}
	}
}

func TestParseManifestCountNotEnforced(t *testing.T) {
	m, err := ParseManifest(strings.NewReader("5\na.txt\n"))
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}
	if m.Declared != 5 || len(m.Files) != 1 {
		t.Fatalf("unexpected manifest %+v", m)
	}
}

func TestParseManifestErrors(t *testing.T) {
	for _, in := range []string{"", "   \n", "two\na.txt"} {
		if _, err := ParseManifest(strings.NewReader(in)); err == nil {
			t.Fatalf("expected error for manifest %q", in)
		}
	}
}

func TestReadManifestMissingFile(t *testing.T) {
	if _, err := ReadManifest(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing manifest")
	}
}

func TestParseSamples(t *testing.T) {
	got, err := ParseSamples(strings.NewReader("5\n1 4 8\n9\n16 99"))
	if err != nil {
		t.Fatalf("ParseSamples failed: %v", err)
	}
	want := []int64{1, 4, 8, 9, 16}
	if len(got) != len(want) {
		t.Fatalf("ParseSamples = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ParseSamples = %v, want %v", got, want)
		}
	}
}

func TestParseSamplesEmpty(t *testing.T) {
	got, err := ParseSamples(strings.NewReader("0\n"))
	if err != nil {
		t.Fatalf("ParseSamples failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no numbers, got %v", got)
	}
}

func TestParseSamplesMalformed(t *testing.T) {
	cases := []string{
		"",
		"x 1 2",
		"-1",
		"3\n1 2",
		"3\n1 two 3",
	}
	for _, in := range cases {
		_, err := ParseSamples(strings.NewReader(in))
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("ParseSamples(%q) error = %v, want ErrMalformed", in, err)
		}
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("2\n25 27"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	got, err := FileLoader{}.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 || got[0] != 25 || got[1] != 27 {
		t.Fatalf("Load = %v", got)
	}

	if _, err := (FileLoader{}).Load(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
