package tex2html

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// browserHost launches headless Chrome lazily and hands out pages.
// Rod downloads Chromium on first run if no browser is found.
type browserHost struct {
	bin string

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func newBrowserHost(bin string) *browserHost {
	return &browserHost{bin: bin}
}

// ensure lazily launches and connects to the browser.
func (h *browserHost) ensure() (*rod.Browser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.browser != nil {
		return h.browser, nil
	}

	l := launcher.New()

	bin := h.bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox is required in CI and containers.
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") != "" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	h.browser, h.launcher = browser, l
	return browser, nil
}

// newPage opens a blank page.
func (h *browserHost) newPage() (*rod.Page, error) {
	browser, err := h.ensure()
	if err != nil {
		return nil, err
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	return page, nil
}

// Close releases browser resources, killing the process tree if the
// browser does not exit on its own.
func (h *browserHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.browser == nil {
		return nil
	}
	err := h.browser.Close()

	if pid := h.launcher.PID(); pid > 0 {
		killBrowserTree(pid)
	}
	h.launcher.Kill()

	h.browser, h.launcher = nil, nil
	return err
}
