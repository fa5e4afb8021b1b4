package site

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/swdunlop/portable-html-go"
	"github.com/swdunlop/portable-html-go/hog"
	"github.com/swdunlop/portable-html-go/store"
	"github.com/swdunlop/portable-html-go/tag"
)

// fallbackCategories are shown when the content store cannot be reached and no snapshot exists.
var fallbackCategories = gjson.Parse(`[
	{"_id": "fallback-1", "title": "القرآن الكريم", "description": "تفسير وعلوم القرآن الكريم", "posts": []},
	{"_id": "fallback-2", "title": "الحديث الشريف", "description": "شروح وعلوم الحديث النبوي", "posts": []},
	{"_id": "fallback-3", "title": "الفقه الإسلامي", "description": "أحكام وفتاوى فقهية", "posts": []}
]`)

func (s *Site) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		wg                      sync.WaitGroup
		categories, sections    gjson.Result
		categoryErr, sectionErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		categories, categoryErr = s.fetcher.Fetch(ctx, store.CategoriesQuery, nil)
	}()
	go func() {
		defer wg.Done()
		sections, sectionErr = s.fetcher.Fetch(ctx, store.SectionsQuery, nil)
	}()
	wg.Wait()

	pg := page{}
	categoryGrid := div(tag.ID(`categoriesGrid`), tag.Class(`categories-grid`))
	if categoryErr != nil {
		hog.From(ctx).Error().Err(categoryErr).Msg(`could not fetch categories`)
		pg.refresh = retrySeconds
		pg.noStore = true
		pg.body = append(pg.body, div(tag.Class(`error-section`),
			tag.Content(div(tag.Class(`error-icon`), tag.Text(`⚠️`))),
			tag.Content(tag.New(`h3`, tag.Text(`خطأ في تحميل البيانات`))),
			tag.Content(para(tag.Class(`error-main`), tag.Text(`فشل في تحميل الأقسام من الخادم`))),
			tag.Content(para(tag.Class(`auto-redirect`),
				tag.Text(`سيتم إعادة المحاولة تلقائياً خلال `+retrySeconds+` ثانية`),
			)),
		))
		categories = fallbackCategories
	}
	categoryGrid.Content = append(categoryGrid.Content, categoryCards(categories))
	pg.body = append(pg.body, categoryGrid)

	sectionGrid := div(tag.ID(`sectionsGrid`), tag.Class(`sections-grid`))
	switch {
	case sectionErr != nil:
		hog.From(ctx).Error().Err(sectionErr).Msg(`could not fetch sections`)
		pg.noStore = true
		sectionGrid.Content = append(sectionGrid.Content, para(tag.Text(`فشل في جلب الأقسام.`)))
	default:
		sectionGrid.Content = append(sectionGrid.Content, sectionCards(sections))
	}
	pg.body = append(pg.body, sectionGrid)

	s.write(w, r, http.StatusOK, pg)
}

func categoryCards(categories gjson.Result) html.Content {
	seq := categories.Array()
	if len(seq) == 0 {
		return div(tag.Class(`no-categories-message`),
			tag.Content(tag.New(`h3`, tag.Text(`لا توجد أقسام متاحة`))),
			tag.Content(para(tag.Text(`لم يتم إنشاء أي أقسام حتى الآن. يرجى المحاولة لاحقاً.`))),
			tag.Content(backLink(tag.Attr(`href`, `/`), tag.Text(`إعادة المحاولة`))),
		)
	}
	cards := make(html.Group, 0, len(seq))
	for _, cat := range seq {
		title := cat.Get(`title`).String()
		cards = append(cards, link(
			tag.Class(`category-card`),
			tag.Attr(`href`, `/section?categoryId=`+url.QueryEscape(cat.Get(`_id`).String())),
			tag.Attr(`aria-label`, `انتقل إلى قسم `+title),
			tag.Content(div(tag.Class(`category-content`),
				tag.Content(tag.New(`h2`, tag.Class(`category-title`), tag.Text(title))),
				tag.Content(para(tag.Class(`category-description`), tag.Text(or(cat.Get(`description`).String(), `لا يوجد وصف`)))),
				tag.Content(div(tag.Class(`category-meta`),
					tag.Content(span(tag.Class(`post-count`), tag.Text(count(len(cat.Get(`posts`).Array()))+` مقال`))),
					tag.Content(span(tag.Class(`category-arrow`), tag.Text(`←`))),
				)),
			)),
		))
	}
	return cards
}

func sectionCards(sections gjson.Result) html.Content {
	seq := sections.Array()
	if len(seq) == 0 {
		return para(tag.Text(`لا توجد أقسام متاحة.`))
	}
	cards := make(html.Group, 0, len(seq))
	for _, section := range seq {
		cards = append(cards, div(tag.Class(`section-card`),
			tag.Content(tag.New(`h3`, tag.Text(or(section.Get(`icon`).String(), `📖`)+` `+section.Get(`title`).String()))),
			tag.Content(para(tag.Text(or(section.Get(`description`).String(), `بدون وصف`)))),
			tag.Content(para(
				tag.Content(tag.New(`strong`, tag.Text(count(len(section.Get(`topics`).Array()))))),
				tag.Text(` موضوع`),
			)),
		))
	}
	return cards
}

// or returns s unless it is empty.
func or(s, fallback string) string {
	if s == `` {
		return fallback
	}
	return s
}
