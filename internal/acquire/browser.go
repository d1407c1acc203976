package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/chromedp/chromedp"
)

// ErrBrowserNotFound is returned when no Chrome binary can be located.
// No source can be acquired without one, so callers treat it as fatal.
var ErrBrowserNotFound = errors.New("chrome binary not found")

// scrollScript scrolls to the bottom of the page to trigger lazy loading
const scrollScript = `window.scrollTo(0, document.body.scrollHeight); true`

// chromeNames are the binary names searched on PATH when no path is configured
var chromeNames = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// BrowserOptions configures the headless browser
type BrowserOptions struct {
	ExecPath  string
	UserAgent string
}

// Browser acquires pages through headless Chrome
type Browser struct {
	execPath  string
	userAgent string
}

// NewBrowser locates the Chrome binary and returns a Browser.
// It returns ErrBrowserNotFound when Chrome is unavailable.
func NewBrowser(opts BrowserOptions) (*Browser, error) {
	path, err := FindChrome(opts.ExecPath)
	if err != nil {
		return nil, err
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = UserAgent
	}

	return &Browser{
		execPath:  path,
		userAgent: ua,
	}, nil
}

// FindChrome returns path when it names an executable file, otherwise the first
// known Chrome binary on PATH
func FindChrome(path string) (string, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBrowserNotFound, err)
		}
		if info.IsDir() || info.Mode()&0111 == 0 {
			return "", fmt.Errorf("%w: %s is not executable", ErrBrowserNotFound, path)
		}
		return path, nil
	}

	for _, name := range chromeNames {
		if found, err := exec.LookPath(name); err == nil {
			return found, nil
		}
	}

	return "", fmt.Errorf("%w: tried %v on PATH", ErrBrowserNotFound, chromeNames)
}

// ExecPath returns the Chrome binary in use
func (b *Browser) ExecPath() string {
	return b.execPath
}

// Acquire opens a fresh browser session, renders url according to r and returns the page HTML.
// The session is torn down before returning, whether or not rendering succeeded.
func (b *Browser) Acquire(ctx context.Context, url string, r Readiness) (string, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(b.execPath),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	var html string
	if err := chromedp.Run(tabCtx, renderTasks(url, r, &html)); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrAcquisition, url, err)
	}

	return html, nil
}

// renderTasks navigates, waits, scrolls and captures the document
func renderTasks(url string, r Readiness, html *string) chromedp.Tasks {
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.Sleep(r.InitialDelay),
	}

	for i := 0; i < r.ScrollSteps; i++ {
		var scrolled bool
		tasks = append(tasks,
			chromedp.Evaluate(scrollScript, &scrolled),
			chromedp.Sleep(r.SettleDelay),
		)
	}

	return append(tasks, chromedp.OuterHTML("html", html, chromedp.ByQuery))
}
