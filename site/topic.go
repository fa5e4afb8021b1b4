package site

import (
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/swdunlop/portable-html-go"
	"github.com/swdunlop/portable-html-go/hog"
	"github.com/swdunlop/portable-html-go/portable"
	"github.com/swdunlop/portable-html-go/store"
	"github.com/swdunlop/portable-html-go/tag"
)

func (s *Site) topic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	sectionID, topicID := normalizeID(q.Get(`sectionId`)), normalizeID(q.Get(`topicId`))
	if sectionID == `` || topicID == `` {
		s.fail(w, r, http.StatusBadRequest, failure{message: `معرف القسم أو الموضوع غير موجود`})
		return
	}

	ctx = hog.With(ctx, field(`section`, sectionID), field(`topic`, topicID))
	section, err := s.fetcher.Fetch(ctx, store.TopicQuery, store.Params{`sectionId`: sectionID, `topicId`: topicID})
	if err != nil {
		hog.From(ctx).Error().Err(err).Msg(`could not fetch topic`)
		s.fail(w, r, http.StatusBadGateway, failure{
			message: `حدث خطأ أثناء تحميل البيانات`,
			details: `خطأ تقني: ` + err.Error(),
		})
		return
	}
	topic := section.Get(`topic`)
	if !section.IsObject() || !topic.IsObject() {
		s.fail(w, r, http.StatusNotFound, failure{
			message: `الموضوع غير موجود`,
			details: `لم يتم العثور على الموضوع المطلوب في قاعدة البيانات`,
		})
		return
	}

	title := topic.Get(`title`).String()
	sectionTitle := section.Get(`title`).String()
	body := portable.Append(make([]byte, 0, 4096), portable.FromGJSON(topic.Get(`content`)))
	s.write(w, r, http.StatusOK, page{
		title: title,
		body: []html.Content{
			breadcrumb(crumb{label: sectionTitle}, crumb{label: title}),
			div(tag.Class(`topic-content`),
				tag.Content(div(tag.Class(`topic-header`),
					tag.Content(tag.New(`h1`, tag.ID(`topicTitleHeader`), tag.Text(title))),
					tag.Content(div(tag.Class(`topic-meta`),
						tag.Content(span(tag.ID(`topicSection`), tag.Text(sectionTitle))),
						tag.Content(span(tag.ID(`topicDate`), tag.Text(longDate(s.now())))),
					)),
					tag.Content(para(tag.ID(`topicDescription`), tag.Text(topic.Get(`description`).String()))),
				)),
				tag.Content(div(tag.Class(`topic-body`), tag.Content(s.sanitize(body)))),
				tag.Content(div(tag.ID(`chaptersList`), tag.Class(`chapters-list`),
					tag.Content(chapters(title, topic.Get(`chapters`).Array())),
				)),
			),
		},
	})
}

func chapters(topic string, seq []gjson.Result) html.Content {
	if len(seq) == 0 {
		return para(tag.Text(`لا توجد فصول متاحة لهذا الموضوع`))
	}
	items := make(html.Group, 0, len(seq))
	for i, chapter := range seq {
		n := count(i + 1)
		items = append(items, div(tag.Class(`chapter-item`),
			tag.Content(div(tag.Class(`chapter-number`), tag.Text(`الفصل `+n))),
			tag.Content(div(tag.Class(`chapter-title`), tag.Text(chapter.String()))),
			tag.Content(div(tag.Class(`chapter-description`),
				tag.Text(`شرح مفصل للفصل `+n+` من موضوع `+topic),
			)),
		))
	}
	return items
}
