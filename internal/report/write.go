// pattern: Imperative Shell

package report

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileName is the report file written into the output directory.
const FileName = "usage.txt"

// Write stores lines in dir/usage.txt, one newline-terminated line each,
// replacing any previous report. dir is created if needed. Concurrent writers
// of the same report are serialized by an exclusive lock kept in lockDir, so
// the output directory gains nothing but the report. It returns the path of
// the written file.
func Write(dir, lockDir string, lines []string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := os.MkdirAll(lockDir, 0755); err != nil {
		return "", fmt.Errorf("create lock directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	lockPath, err := LockPath(lockDir, path)
	if err != nil {
		return "", err
	}
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return "", fmt.Errorf("failed to acquire report lock: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, line := range lines {
		_, _ = w.WriteString(line)
		_ = w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// LockPath returns the lock file in lockDir guarding the report at path.
// Different spellings of the same report path share one lock.
func LockPath(lockDir, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve report path: %w", err)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(lockDir, "usage-"+hex.EncodeToString(sum[:8])+".lock"), nil
}
