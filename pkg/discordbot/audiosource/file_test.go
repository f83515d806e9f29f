package audiosource

import (
	"encoding/binary"
	"os"
	"testing"
)

func writeTestPCM(t *testing.T, samples []int16) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "test-*.pcm")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	for _, s := range samples {
		if err := binary.Write(f, binary.LittleEndian, s); err != nil {
			t.Fatalf("failed to write sample: %v", err)
		}
	}
	return f.Name()
}

func TestFileSourceReadsExactSamples(t *testing.T) {
	samples := []int16{1, 2, 3, 4, 5, 6, 7, 8}
	path := writeTestPCM(t, samples)

	src, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer src.Close()

	buf := make([]int16, 4)
	n := src.Read(buf)
	if n != 4 {
		t.Fatalf("expected 4 samples read, got %d", n)
	}
	for i, want := range samples[:4] {
		if buf[i] != want {
			t.Fatalf("sample %d: expected %d, got %d", i, want, buf[i])
		}
	}
}

func TestFileSourceSignalsEndOfFile(t *testing.T) {
	samples := []int16{1, 2, 3}
	path := writeTestPCM(t, samples)

	src, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer src.Close()

	buf := make([]int16, 10)
	n := src.Read(buf)
	if n != 3 {
		t.Fatalf("expected 3 samples (short read at EOF), got %d", n)
	}

	n2 := src.Read(buf)
	if n2 != 0 {
		t.Fatalf("expected 0 samples on a subsequent read past EOF, got %d", n2)
	}
}

func TestOpenFileMissingPath(t *testing.T) {
	if _, err := OpenFile("/nonexistent/path.pcm"); err == nil {
		t.Fatal("expected an error opening a nonexistent file")
	}
}
