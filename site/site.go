// Package site serves the content site's pages.  Every page fetches its documents through an injected store.Fetcher
// and renders portable text with the portable package.
package site

import (
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	"github.com/swdunlop/portable-html-go"
	"github.com/swdunlop/portable-html-go/hog"
	"github.com/swdunlop/portable-html-go/store"
)

// Site is an http.Handler serving the home, section, article and topic pages.
type Site struct {
	fetcher store.Fetcher
	router  chi.Router
	name    string
	header  html.Tag
	policy  *bluemonday.Policy // nil when rendered content is served as is
	now     func() time.Time
}

// An Option affects a new Site.
type Option func(*Site)

// Sanitize controls whether rendered portable text is passed through an HTML sanitizer.  Span text is rendered
// verbatim, so this should stay enabled unless every author of the content store is trusted.
func Sanitize(enabled bool) Option {
	return func(s *Site) {
		if !enabled {
			s.policy = nil
			return
		}
		s.policy = contentPolicy()
	}
}

// Name sets the site name appended to page titles.
func Name(name string) Option { return func(s *Site) { s.name = name } }

// Now replaces the clock used for dates shown on topic pages.
func Now(now func() time.Time) Option { return func(s *Site) { s.now = now } }

// New builds a Site that fetches documents with fetcher.  Sanitizing is enabled by default.
func New(fetcher store.Fetcher, options ...Option) *Site {
	s := &Site{
		fetcher: fetcher,
		name:    `موقع إسلامي`,
		policy:  contentPolicy(),
		now:     time.Now,
	}
	for _, option := range options {
		option(s)
	}
	s.header = siteHeader(s.name)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, hog.Middleware())
	r.Get(`/`, s.home)
	r.Get(`/section`, s.section)
	r.Get(`/article`, s.article)
	r.Get(`/topic`, s.topic)
	r.Get(`/healthz`, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(`Content-Type`, `text/plain; charset=utf-8`)
		_, _ = w.Write([]byte(`ok`))
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, http.StatusNotFound, failure{
			message: `الصفحة غير موجودة`,
			details: `لم يتم العثور على الصفحة المطلوبة`,
		})
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// field tags every log entry made while serving a request, including the store's, with the document requested.
func field(key, value string) func(zerolog.Context) zerolog.Context {
	return func(z zerolog.Context) zerolog.Context { return z.Str(key, value) }
}

func contentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs(`class`).OnElements(`div`, `p`, `h2`, `h3`, `h4`, `blockquote`)
	return p
}

// sanitize applies the content policy, if any, to rendered portable text.
func (s *Site) sanitize(fragment []byte) html.Content {
	if s.policy == nil {
		return html.HTML(fragment)
	}
	return html.HTML(s.policy.SanitizeBytes(fragment))
}

// write sends a complete page.  Successful pages carry an ETag so unchanged pages are answered with 304.
func (s *Site) write(w http.ResponseWriter, r *http.Request, status int, pg page) {
	p := html.Append(make([]byte, 0, 16384), s.layout(pg))
	h := w.Header()
	h.Set(`Content-Type`, `text/html; charset=utf-8`)
	if status == http.StatusOK && !pg.noStore {
		sum := blake3.Sum256(p)
		etag := `"` + hex.EncodeToString(sum[:16]) + `"`
		h.Set(`ETag`, etag)
		if r.Header.Get(`If-None-Match`) == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	} else {
		h.Set(`Cache-Control`, `no-store`)
	}
	h.Set(`Content-Length`, strconv.Itoa(len(p)))
	w.WriteHeader(status)
	if _, err := w.Write(p); err != nil {
		hog.From(r.Context()).Warn().Err(err).Msg(`could not write page`)
	}
}
