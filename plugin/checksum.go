package plugin

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ChecksumFile pins plugin binaries when present in a plugin directory.
// Each line is "<sha256>  <filename>", as written by sha256sum.
const ChecksumFile = "checksums.txt"

// Checksums maps binary file names to their expected sha256
type Checksums map[string]string

// ParseChecksums parses a sha256sum style listing
func ParseChecksums(r io.Reader) (Checksums, error) {
	sums := make(Checksums)
	scanner := bufio.NewScanner(r)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: expected '<hash> <filename>'", lineNum)
		}
		hash := strings.ToLower(parts[0])
		if _, err := hex.DecodeString(hash); err != nil || len(hash) != sha256.Size*2 {
			return nil, fmt.Errorf("line %d: invalid sha256 %q", lineNum, parts[0])
		}
		// sha256sum marks binary mode with a leading '*'
		sums[strings.TrimPrefix(parts[1], "*")] = hash
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading checksums: %w", err)
	}
	return sums, nil
}

// LoadChecksums reads the checksum file of dir. It returns nil, nil when
// the directory has none.
func LoadChecksums(dir string) (Checksums, error) {
	f, err := os.Open(filepath.Join(dir, ChecksumFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseChecksums(f)
}

// Verify checks the binary at path against its pinned hash. Binaries
// without a pin fail verification.
func (c Checksums) Verify(path string) error {
	name := filepath.Base(path)
	expected, ok := c[name]
	if !ok {
		return fmt.Errorf("no checksum pinned for %s", name)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	actual, err := ComputeSHA256(f)
	if err != nil {
		return err
	}
	if actual != expected {
		return &ChecksumMismatchError{Filename: name, Expected: expected, Actual: actual}
	}
	return nil
}

// ChecksumMismatchError indicates a binary that differs from its pin
type ChecksumMismatchError struct {
	Filename string
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Filename, e.Expected, e.Actual)
}

// ComputeSHA256 computes the hex sha256 of a reader
func ComputeSHA256(r io.Reader) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, r); err != nil {
		return "", fmt.Errorf("failed to compute checksum: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
