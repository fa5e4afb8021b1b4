package site

import (
	"net/http"
	"net/url"

	"github.com/swdunlop/portable-html-go"
	"github.com/swdunlop/portable-html-go/hog"
	"github.com/swdunlop/portable-html-go/portable"
	"github.com/swdunlop/portable-html-go/store"
	"github.com/swdunlop/portable-html-go/tag"
)

func (s *Site) article(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	query, identifier := store.PostBySlugQuery, normalizeID(q.Get(`slug`))
	if identifier == `` {
		query, identifier = store.PostByIDQuery, normalizeID(q.Get(`id`))
	}
	if identifier == `` {
		s.fail(w, r, http.StatusBadRequest, failure{
			message: `معرف المقال أو الرابط مطلوب`,
			details: `لم يتم تحديد المقال المطلوب في الرابط`,
		})
		return
	}

	ctx = hog.With(ctx, field(`article`, identifier))
	post, err := s.fetcher.Fetch(ctx, query, store.Params{`identifier`: identifier})
	if err != nil {
		hog.From(ctx).Error().Err(err).Msg(`could not fetch article`)
		s.fail(w, r, http.StatusBadGateway, failure{
			message: `حدث خطأ في تحميل المقال`,
			details: `خطأ تقني: ` + err.Error(),
		})
		return
	}
	if !post.IsObject() {
		s.fail(w, r, http.StatusNotFound, failure{
			message: `المقال غير موجود`,
			details: `لم يتم العثور على المقال المطلوب في قاعدة البيانات`,
		})
		return
	}

	title := post.Get(`title`).String()
	category := post.Get(`category`)
	var crumbs []crumb
	var categoryHref, categoryTitle string
	if category.IsObject() {
		categoryTitle = category.Get(`title`).String()
		categoryHref = `/section?categoryId=` + url.QueryEscape(category.Get(`_id`).String())
		crumbs = append(crumbs, crumb{label: categoryTitle, href: categoryHref})
	}
	crumbs = append(crumbs, crumb{label: title})

	author := post.Get(`author`).String()
	date := formatDate(post.Get(`publishedAt`).String())
	description := post.Get(`description`).String()

	var image html.Content
	if src := post.Get(`mainImage.asset.url`).String(); src != `` {
		image = div(tag.Class(`article-image`), tag.Content(tag.New(`img`,
			tag.Attr(`src`, src),
			tag.Attr(`alt`, title),
			tag.Attr(`loading`, `lazy`),
		)))
	}

	body := portable.Append(make([]byte, 0, 4096), portable.FromGJSON(post.Get(`content`)))
	s.write(w, r, http.StatusOK, page{
		title: title,
		body: []html.Content{
			breadcrumb(crumbs...),
			tag.New(`article`, tag.Class(`article-content`),
				tag.Content(tag.New(`header`, tag.Class(`article-header`),
					tag.Content(tag.New(`h1`, tag.Class(`article-title`), tag.Text(title))),
					tag.Content(div(tag.Class(`article-meta`),
						tag.If(author != ``, tag.Content(span(tag.Class(`article-author`), tag.Text(`الكاتب: `+author)))),
						tag.If(date != ``, tag.Content(span(tag.Class(`article-date`), tag.Text(`تاريخ النشر: `+date)))),
					)),
					tag.If(description != ``, tag.Content(para(tag.Class(`article-description`), tag.Text(description)))),
				)),
				tag.Content(image),
				tag.Content(div(tag.Class(`article-body`), tag.Content(s.sanitize(body)))),
				tag.Content(div(tag.Class(`article-footer`), tag.Content(div(tag.Class(`navigation-links`),
					tag.If(categoryHref != ``, tag.Content(backLink(tag.Attr(`href`, categoryHref), tag.Text(`العودة إلى `+categoryTitle)))),
					tag.Content(secondary(tag.Attr(`href`, `/`), tag.Text(`العودة إلى الصفحة الرئيسية`))),
				)))),
			),
		},
	})
}
