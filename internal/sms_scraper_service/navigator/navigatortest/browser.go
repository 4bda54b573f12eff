// Package navigatortest provides an in-memory Browser for tests.
package navigatortest

import (
	"context"
	"errors"
	"sync"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/navigator"
)

// ErrNoRoute is returned for URLs the fake has no responses for.
var ErrNoRoute = errors.New("navigatortest: no route")

// Response is one scripted navigation outcome. With Hang set the navigation
// blocks until its context ends; HangRead does the same for the document
// read that follows a successful navigation.
type Response struct {
	HTML     string
	Err      error
	Hang     bool
	HangRead bool
}

// Browser serves scripted responses per URL. Each navigation to a URL
// consumes the next response; the last one repeats.
type Browser struct {
	SessionErr error
	PageErr    error
	// Gate, when non-nil, is received from before every navigation.
	Gate chan struct{}

	mu             sync.Mutex
	routes         map[string][]Response
	visits         []string
	cookies        [][]domain.Cookie
	sessionsOpened int
	sessionsClosed int
	pagesOpened    int
	pagesClosed    int
}

var _ navigator.Browser = (*Browser)(nil)

func NewBrowser() *Browser {
	return &Browser{routes: make(map[string][]Response)}
}

// Route appends responses for url.
func (b *Browser) Route(url string, responses ...Response) *Browser {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[url] = append(b.routes[url], responses...)
	return b
}

// Serve is shorthand for a URL that always returns html.
func (b *Browser) Serve(url, html string) *Browser {
	return b.Route(url, Response{HTML: html})
}

// Fail is shorthand for a URL whose every navigation fails with err.
func (b *Browser) Fail(url string, err error) *Browser {
	return b.Route(url, Response{Err: err})
}

func (b *Browser) NewSession(context.Context) (navigator.Session, error) {
	if b.SessionErr != nil {
		return nil, b.SessionErr
	}
	b.mu.Lock()
	b.sessionsOpened++
	b.mu.Unlock()
	return &session{b: b}, nil
}

// Visits lists every navigated URL in order, one entry per attempt.
func (b *Browser) Visits() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.visits...)
}

// CookieSets lists every cookie set applied to a page.
func (b *Browser) CookieSets() [][]domain.Cookie {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]domain.Cookie(nil), b.cookies...)
}

// Sessions returns how many sessions were opened and closed.
func (b *Browser) Sessions() (opened, closed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessionsOpened, b.sessionsClosed
}

// Pages returns how many pages were opened and closed.
func (b *Browser) Pages() (opened, closed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pagesOpened, b.pagesClosed
}

func (b *Browser) next(url string) Response {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visits = append(b.visits, url)
	rs, ok := b.routes[url]
	if !ok || len(rs) == 0 {
		return Response{Err: ErrNoRoute}
	}
	r := rs[0]
	if len(rs) > 1 {
		b.routes[url] = rs[1:]
	}
	return r
}

type session struct {
	b    *Browser
	once sync.Once
}

func (s *session) NewPage(context.Context) (navigator.Page, error) {
	if s.b.PageErr != nil {
		return nil, s.b.PageErr
	}
	s.b.mu.Lock()
	s.b.pagesOpened++
	s.b.mu.Unlock()
	return &Page{b: s.b}, nil
}

func (s *session) Close() error {
	s.once.Do(func() {
		s.b.mu.Lock()
		s.b.sessionsClosed++
		s.b.mu.Unlock()
	})
	return nil
}

// Page is a fake tab. It can also be used on its own, with a nil browser,
// through NewPage.
type Page struct {
	b        *Browser
	document string
	hangRead bool
	once     sync.Once
}

var _ navigator.Page = (*Page)(nil)

// NewPage returns a page bound to b without going through a session.
func NewPage(b *Browser) *Page {
	return &Page{b: b}
}

func (p *Page) SetCookies(cookies []domain.Cookie) error {
	p.b.mu.Lock()
	defer p.b.mu.Unlock()
	p.b.cookies = append(p.b.cookies, cookies)
	return nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if p.b.Gate != nil {
		select {
		case <-p.b.Gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r := p.b.next(url)
	if r.Hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if r.Err != nil {
		return r.Err
	}
	p.document = r.HTML
	p.hangRead = r.HangRead
	return nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	if p.hangRead {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return p.document, nil
}

func (p *Page) Close() error {
	p.once.Do(func() {
		p.b.mu.Lock()
		p.b.pagesClosed++
		p.b.mu.Unlock()
	})
	return nil
}
