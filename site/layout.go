package site

import (
	"net/http"

	"github.com/swdunlop/portable-html-go"
	"github.com/swdunlop/portable-html-go/tag"
)

// page is everything a handler contributes to the layout.
type page struct {
	title   string // prefixed to the site name, if present
	refresh string // meta refresh content, such as "10;url=/"
	noStore bool   // degraded pages must not be cached or revalidated
	body    []html.Content
	script  html.Content // appended after main, if present
}

var (
	div       = tag.Factory(`div`)
	span      = tag.Factory(`span`)
	para      = tag.Factory(`p`)
	link      = tag.Factory(`a`)
	backLink  = tag.Factory(`a`, tag.Class(`back-button`))
	primary   = tag.Factory(`a`, tag.Class(`back-button`, `primary`))
	secondary = tag.Factory(`a`, tag.Class(`back-button`, `secondary`))
)

var head = html.Static(
	tag.New(`meta`, tag.Attr(`charset`, `utf-8`)),
	tag.New(`meta`, tag.Attr(`name`, `viewport`), tag.Attr(`content`, `width=device-width, initial-scale=1`)),
	tag.New(`link`, tag.Attr(`rel`, `stylesheet`), tag.Attr(`href`, `/css/style.css`)),
	html.Style{Content: baseStyle},
)

// baseStyle keeps pages readable when the site stylesheet is missing.
const baseStyle = `body { direction: rtl; font-family: "Amiri", "Noto Naskh Arabic", serif; line-height: 1.8; margin: 0; }
main { max-width: 60rem; margin: 0 auto; padding: 1rem; }
.error-section { text-align: center; padding: 2rem 1rem; }
.error-details { color: #666; font-size: .9em; }
.content-quote { border-inline-start: .25rem solid #c9a227; margin: 1rem 0; padding-inline-start: 1rem; }`

// countdown decrements the #countdown span once a second; the meta refresh performs the navigation.
var countdown = html.Script{Content: `(function () {
  var el = document.getElementById("countdown");
  if (!el) return;
  var n = parseInt(el.textContent, 10);
  var timer = setInterval(function () {
    n--;
    if (n <= 0) { clearInterval(timer); n = 0; }
    el.textContent = String(n);
  }, 1000);
})();`}

// siteHeader is rendered once per Site, since the name never changes.
func siteHeader(name string) html.Tag {
	return tag.New(`header`, tag.Class(`site-header`),
		tag.Static(link(tag.Class(`site-name`), tag.Attr(`href`, `/`), tag.Text(name))),
	)
}

func (s *Site) layout(pg page) html.Content {
	title := s.name
	if pg.title != `` {
		title = pg.title + ` - ` + s.name
	}
	return html.Group{
		html.HTML5,
		tag.New(`html`, tag.Attr(`lang`, `ar`), tag.Attr(`dir`, `rtl`),
			tag.Content(tag.New(`head`,
				tag.Content(head),
				tag.If(pg.refresh != ``, tag.Content(
					tag.New(`meta`, tag.Attr(`http-equiv`, `refresh`), tag.Attr(`content`, pg.refresh)),
				)),
				tag.Content(tag.New(`title`, tag.Text(title))),
			)),
			tag.Content(tag.New(`body`,
				tag.Content(s.header),
				tag.Content(tag.New(`main`, tag.ID(`content`), tag.Content(pg.body...))),
				tag.Content(pg.script),
			)),
		),
	}
}

// crumb is one breadcrumb entry; the last entry is the current page and is not linked.
type crumb struct {
	label string
	href  string
}

func breadcrumb(crumbs ...crumb) html.Tag {
	out := div(tag.Class(`breadcrumb`), tag.Content(link(tag.Attr(`href`, `/`), tag.Text(`الرئيسية`))))
	for _, c := range crumbs {
		out.Content = append(out.Content, html.Text(` › `))
		if c.href == `` {
			out.Content = append(out.Content, span(tag.Text(c.label)))
		} else {
			out.Content = append(out.Content, link(tag.Attr(`href`, c.href), tag.Text(c.label)))
		}
	}
	return out
}

// failure describes an error panel.
type failure struct {
	message string
	details string
	retry   bool // reload the same page after a delay instead of going home
}

const (
	redirectSeconds = `10`
	retrySeconds    = `15`
)

// fail renders an error page.  Most errors send the reader home after a delay; retryable errors reload the page.
func (s *Site) fail(w http.ResponseWriter, r *http.Request, status int, f failure) {
	pg := page{title: `خطأ`}
	var notice html.Content
	if f.retry {
		pg.refresh = retrySeconds
		notice = para(tag.Class(`auto-redirect`),
			tag.Text(`سيتم إعادة المحاولة تلقائياً خلال `),
			tag.Content(span(tag.ID(`countdown`), tag.Text(retrySeconds))),
			tag.Text(` ثانية`),
		)
	} else {
		pg.refresh = redirectSeconds + `;url=/`
		notice = para(tag.Class(`auto-redirect`),
			tag.Text(`سيتم توجيهك تلقائياً إلى الصفحة الرئيسية خلال `),
			tag.Content(span(tag.ID(`countdown`), tag.Text(redirectSeconds))),
			tag.Text(` ثانية`),
		)
	}
	pg.body = []html.Content{errorPanel(r, f), notice}
	pg.script = countdown
	s.write(w, r, status, pg)
}

func errorPanel(r *http.Request, f failure) html.Tag {
	return div(tag.Class(`error-section`),
		tag.Content(div(tag.Class(`error-icon`), tag.Text(`⚠️`))),
		tag.Content(tag.New(`h2`, tag.Text(`خطأ`))),
		tag.Content(para(tag.Class(`error-main`), tag.Text(f.message))),
		tag.If(f.details != ``, tag.Content(para(tag.Class(`error-details`), tag.Text(f.details)))),
		tag.Content(div(tag.Class(`error-actions`),
			tag.Content(primary(tag.Attr(`href`, `/`), tag.Text(`العودة إلى الصفحة الرئيسية`))),
			tag.Content(secondary(tag.Attr(`href`, r.URL.RequestURI()), tag.Text(`إعادة المحاولة`))),
		)),
	)
}
