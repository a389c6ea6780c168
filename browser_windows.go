//go:build windows

package tex2html

import (
	"os/exec"
	"strconv"
)

// killBrowserTree force-kills the browser and its children with taskkill.
func killBrowserTree(pid int) {
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is numeric
}
