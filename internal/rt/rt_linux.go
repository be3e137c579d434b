//go:build linux

package rt

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Elevate locks the process's pages in memory and lowers the niceness of the
// calling thread. The caller must have locked its goroutine to the thread.
// Both steps need CAP_SYS_NICE / CAP_IPC_LOCK or root.
func Elevate() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("rt: mlockall: %w", err)
	}
	if err := unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), Nice); err != nil {
		return fmt.Errorf("rt: setpriority: %w", err)
	}
	return nil
}
