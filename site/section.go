package site

import (
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/swdunlop/portable-html-go"
	"github.com/swdunlop/portable-html-go/hog"
	"github.com/swdunlop/portable-html-go/store"
	"github.com/swdunlop/portable-html-go/tag"
)

func (s *Site) section(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categoryID := normalizeID(r.URL.Query().Get(`categoryId`))
	if categoryID == `` {
		s.fail(w, r, http.StatusBadRequest, failure{
			message: `معرف القسم مطلوب`,
			details: `لم يتم تحديد القسم المطلوب في الرابط`,
		})
		return
	}

	ctx = hog.With(ctx, field(`category`, categoryID))
	params := store.Params{`categoryId`: categoryID}
	category, err := s.fetcher.Fetch(ctx, store.CategoryQuery, params)
	if err != nil {
		hog.From(ctx).Error().Err(err).Msg(`could not fetch category`)
		s.fail(w, r, http.StatusBadGateway, failure{
			message: `حدث خطأ في تحميل البيانات`,
			details: `خطأ تقني: ` + err.Error(),
		})
		return
	}
	if !category.IsObject() {
		s.fail(w, r, http.StatusNotFound, failure{
			message: `القسم غير موجود`,
			details: `لم يتم العثور على القسم المطلوب في قاعدة البيانات`,
		})
		return
	}

	posts := category.Get(`posts`)
	if !posts.IsArray() {
		// Some categories are referenced directly from posts rather than resolved by the category query.
		posts, err = s.fetcher.Fetch(ctx, store.CategoryPostsQuery, params)
		if err != nil {
			hog.From(ctx).Error().Err(err).Msg(`could not fetch category posts`)
			s.fail(w, r, http.StatusBadGateway, failure{
				message: `حدث خطأ في تحميل البيانات`,
				details: `خطأ تقني: ` + err.Error(),
			})
			return
		}
	}

	title := category.Get(`title`).String()
	seq := posts.Array()
	s.write(w, r, http.StatusOK, page{
		title: title,
		body: []html.Content{
			breadcrumb(crumb{label: title}),
			div(tag.Class(`section-content`),
				tag.Content(div(tag.Class(`section-header`),
					tag.Content(tag.New(`h1`, tag.Class(`section-title`), tag.Text(title))),
					tag.Content(para(tag.Class(`section-description`), tag.Text(category.Get(`description`).String()))),
				)),
				tag.Content(div(tag.Class(`posts-section`),
					tag.Content(tag.New(`h2`, tag.Class(`posts-title`),
						tag.Text(`المقالات المتاحة (`+count(len(seq))+`)`),
					)),
					tag.Content(postCards(seq)),
				)),
			),
		},
	})
}

func postCards(posts []gjson.Result) html.Content {
	if len(posts) == 0 {
		return div(tag.Class(`no-posts-message`),
			tag.Content(tag.New(`h3`, tag.Text(`لا توجد مقالات متاحة`))),
			tag.Content(para(tag.Text(`لم يتم نشر أي مقالات في هذا القسم حتى الآن. يرجى المحاولة لاحقاً أو تصفح أقسام أخرى.`))),
			tag.Content(backLink(tag.Attr(`href`, `/`), tag.Text(`العودة إلى الصفحة الرئيسية`))),
		)
	}
	grid := div(tag.Class(`posts-grid`))
	for _, post := range posts {
		title := post.Get(`title`).String()
		var image html.Content
		if src := post.Get(`mainImage.asset.url`).String(); src != `` {
			image = div(tag.Class(`post-image-container`), tag.Content(tag.New(`img`,
				tag.Attr(`src`, src),
				tag.Attr(`alt`, title),
				tag.Class(`post-image`),
				tag.Attr(`loading`, `lazy`),
			)))
		} else {
			image = div(tag.Class(`post-image-placeholder`), tag.Content(span(tag.Text(`📖`))))
		}
		author := post.Get(`author`).String()
		date := formatDate(post.Get(`publishedAt`).String())
		grid.Content = append(grid.Content, link(
			tag.Class(`post-card`),
			tag.Attr(`href`, postURL(post)),
			tag.Attr(`data-post-id`, post.Get(`_id`).String()),
			tag.Content(image),
			tag.Content(div(tag.Class(`post-content`),
				tag.Content(tag.New(`h3`, tag.Class(`post-title`), tag.Text(title))),
				tag.Content(para(tag.Class(`post-description`), tag.Text(or(post.Get(`description`).String(), `اقرأ المزيد...`)))),
				tag.Content(div(tag.Class(`post-meta`),
					tag.If(author != ``, tag.Content(span(tag.Class(`post-author`), tag.Text(`الكاتب: `+author)))),
					tag.If(date != ``, tag.Content(span(tag.Class(`post-date`), tag.Text(date)))),
				)),
			)),
		))
	}
	return grid
}

// postURL links to a post by slug when it has one, otherwise by ID.
func postURL(post gjson.Result) string {
	if slug := post.Get(`slug.current`).String(); slug != `` {
		return `/article?slug=` + url.QueryEscape(slug)
	}
	return `/article?id=` + url.QueryEscape(post.Get(`_id`).String())
}
