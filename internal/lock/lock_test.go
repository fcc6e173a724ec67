package lock

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireWritesOwnerAndReleases(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "LOCK"))
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	if pid := holderPID(string(data)); pid != os.Getpid() {
		t.Errorf("lock file pid = %d, want %d", pid, os.Getpid())
	}
	if !strings.Contains(string(data), "acquired=") {
		t.Errorf("lock file missing acquired line: %q", data)
	}

	if err := l.Release(); err != nil {
		t.Errorf("Release() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "LOCK")); !os.IsNotExist(err) {
		t.Errorf("lock file still present after release: %v", err)
	}
}

func TestSecondAcquireReportsHolder(t *testing.T) {
	dir := t.TempDir()

	l1, err := Acquire(dir)
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer func() { _ = l1.Release() }()

	_, err = Acquire(dir)
	var held *LockHeldError
	if !errors.As(err, &held) {
		t.Fatalf("second Acquire() = %v, want LockHeldError", err)
	}
	if held.PID != os.Getpid() {
		t.Errorf("reported holder pid = %d, want %d", held.PID, os.Getpid())
	}
}

func TestReleaseNilAndTwice(t *testing.T) {
	var nilLock *Lock
	if err := nilLock.Release(); err != nil {
		t.Errorf("nil Release() error = %v", err)
	}

	l, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("first Release() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}

func TestHolderPIDParsesOnlyPidLine(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"pid=42\nacquired=2026-01-01T00:00:00Z\n", 42},
		{"acquired=2026-01-01T00:00:00Z\n", 0},
		{"pid=notanumber\n", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := holderPID(tc.in); got != tc.want {
			t.Errorf("holderPID(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
