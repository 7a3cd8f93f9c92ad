package rod

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultIdleTimeout is how long the browser stays up after its last page
// is released. A run renders its items in a burst, so the browser lives for
// roughly one run and is not kept between daily runs under "serve".
const DefaultIdleTimeout = time.Minute

// BrowserManager starts headless Chrome on first use and shuts it down once
// no page has been open for the idle timeout. The next Acquire launches a
// fresh browser.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	idleTimeout time.Duration

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	inFlight int
	idleGen  uint64
	launches int
	closed   bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithIdleTimeout sets how long an unused browser is kept running.
// Values below 1 are ignored.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(bm *BrowserManager) {
		if d > 0 {
			bm.idleTimeout = d
		}
	}
}

// NewBrowserManager creates a BrowserManager. No browser is started until
// the first Acquire.
func NewBrowserManager(opts ...ManagerOption) *BrowserManager {
	bm := &BrowserManager{idleTimeout: DefaultIdleTimeout}
	for _, opt := range opts {
		opt(bm)
	}
	return bm
}

// Acquire returns the running browser, launching one if needed. The caller
// must call release once its page is closed; release may be called more
// than once.
func (bm *BrowserManager) Acquire() (browser *rod.Browser, release func(), err error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, errManagerClosed
	}
	if bm.browser == nil {
		if err := bm.launchBrowser(); err != nil {
			return nil, nil, err
		}
	}

	bm.inFlight++
	bm.idleGen++

	var once sync.Once
	return bm.browser, func() { once.Do(bm.release) }, nil
}

func (bm *BrowserManager) release() {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	bm.inFlight--
	if bm.inFlight > 0 || bm.closed {
		return
	}

	bm.idleGen++
	gen := bm.idleGen
	time.AfterFunc(bm.idleTimeout, func() {
		bm.mu.Lock()
		defer bm.mu.Unlock()
		if bm.idleGen == gen && bm.inFlight == 0 {
			_ = bm.closeBrowser()
		}
	})
}

// Close shuts the browser down and refuses further Acquire calls.
// Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	bm.idleGen++
	return bm.closeBrowser()
}

// Launches returns how many browsers have been started so far.
func (bm *BrowserManager) Launches() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.launches
}

// LauncherPID returns the process ID of the browser launcher, or 0 while no
// browser is running.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

// launchBrowser starts a headless browser. The flags keep background tabs
// from being throttled while a price script is still running.
// Must be called with mu held.
func (bm *BrowserManager) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser (is Chrome or Chromium installed?): %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = lnchr
	bm.launches++
	return nil
}

// closeBrowser shuts down the current browser and launcher.
// Must be called with mu held.
func (bm *BrowserManager) closeBrowser() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}
