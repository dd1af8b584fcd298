package scrape

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/psyduck-osint/psyduck/internal/logging"
)

const (
	viewportWidth  = 1280
	viewportHeight = 900
	listingZoom    = "0.75"
	pageSettle     = 2 * time.Second
	navTimeout     = 45 * time.Second
)

// Session is the shared browser used by one scrape run. It keeps a
// persistent profile per scraping domain so cookie walls and consent
// banners only have to be clicked through once.
type Session struct {
	browser    *rod.Browser
	headless   bool
	profileDir string
}

// NewSession creates an unstarted browser session. profileDir is the base
// directory for persistent browser profiles.
func NewSession(headless bool, profileDir string) *Session {
	return &Session{headless: headless, profileDir: profileDir}
}

// Start launches the browser, reusing the profile directory when present
// and creating it otherwise.
func (s *Session) Start(domain string) error {
	profile := filepath.Join(s.profileDir, domain)
	if err := os.MkdirAll(profile, 0755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	l := launcher.New().
		Headless(s.headless).
		UserDataDir(profile).
		Set("disable-blink-features", "AutomationControlled").
		Set("ignore-certificate-errors")

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	s.browser = rod.New().ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}

	logging.Debugf("browser started: profile=%s headless=%v", profile, s.headless)
	return nil
}

// Close shuts the browser down.
func (s *Session) Close() {
	if s.browser != nil {
		_ = s.browser.Close()
		s.browser = nil
		logging.Debugf("browser closed")
	}
}

// Page is one open tab.
type Page struct {
	page *rod.Page
}

// Open navigates a new tab to the URL and waits for it to settle.
func (s *Session) Open(ctx context.Context, pageURL string) (*Page, error) {
	if s.browser == nil {
		return nil, fmt.Errorf("browser session not started")
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	page = page.Context(ctx).Timeout(navTimeout)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	if err := page.Navigate(pageURL); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("wait load %s: %w", pageURL, err)
	}
	time.Sleep(pageSettle)

	return &Page{page: page}, nil
}

// Close closes the tab.
func (p *Page) Close() {
	_ = p.page.Close()
}

// Screenshot captures the current viewport as PNG.
func (p *Page) Screenshot() ([]byte, error) {
	data, err := p.page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return data, nil
}

// ZoomOut shrinks the page so a listing shows more results per screenshot.
func (p *Page) ZoomOut() {
	_, err := p.page.Eval(`() => { document.body.style.zoom = "` + listingZoom + `" }`)
	if err != nil {
		logging.Debugf("zoom failed: %v", err)
	}
}

// ScrollDown advances the page by one viewport height and lets lazy
// content load.
func (p *Page) ScrollDown() error {
	if _, err := p.page.Eval(`() => window.scrollBy(0, window.innerHeight)`); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	time.Sleep(time.Second)
	return nil
}

// ScrollToComments jumps toward the bottom of the page where discussion
// sections live.
func (p *Page) ScrollToComments() error {
	if _, err := p.page.Eval(`() => window.scrollTo(0, document.body.scrollHeight * 0.7)`); err != nil {
		return fmt.Errorf("scroll to comments: %w", err)
	}
	time.Sleep(time.Second)
	return nil
}
