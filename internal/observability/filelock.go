package observability

import (
	"fmt"
	"os"
	"syscall"
)

// lockFile takes an exclusive advisory lock (LOCK_EX) on f. Several reseau
// processes may append to the same event log, and the lock keeps their lines
// whole. The returned function releases the lock; f stays open.
func lockFile(f *os.File) (unlock func() error, err error) {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}
	return func() error {
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}
