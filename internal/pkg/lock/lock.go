// Package lock implements the advisory cycle lock: a marker file created
// exclusively at cycle start and removed at cycle end. It is not crash-safe;
// a killed process leaves the marker behind for the operator to clear.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type CycleLock struct {
	path string
}

func New(path string) *CycleLock {
	return &CycleLock{path: path}
}

// Acquire creates the marker file, failing if it already exists. The error
// for a held lock includes the marker's age so a stale lock is easy to spot.
func (l *CycleLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("lock dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			age := "unknown age"
			if st, serr := os.Stat(l.path); serr == nil {
				age = time.Since(st.ModTime()).Truncate(time.Second).String()
			}
			return fmt.Errorf("another cycle appears active: %s held for %s", l.path, age)
		}
		return fmt.Errorf("create lock marker: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(strconv.Itoa(os.Getpid()) + "\n"); err != nil {
		return fmt.Errorf("write lock marker: %w", err)
	}
	return nil
}

// Release removes the marker. Releasing an already-released lock is a no-op.
func (l *CycleLock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock marker: %w", err)
	}
	return nil
}
