//go:build !windows

package tex2html

import "syscall"

// killBrowserTree sends SIGKILL to the browser's process group so renderer
// and GPU children go with it. Errors are ignored: the launcher kills the
// main process afterwards anyway.
func killBrowserTree(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
