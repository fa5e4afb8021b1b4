package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/swdunlop/portable-html-go/store"
)

// fakeStore answers queries from canned JSON results and records the parameters it was given.
type fakeStore struct {
	mu      sync.Mutex
	results map[string]string
	errs    map[string]error
	params  map[string]store.Params
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		results: map[string]string{},
		errs:    map[string]error{},
		params:  map[string]store.Params{},
	}
}

func (f *fakeStore) Fetch(ctx context.Context, query string, params store.Params) (gjson.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params[query] = params
	if err := f.errs[query]; err != nil {
		return gjson.Result{}, err
	}
	return gjson.Parse(f.results[query]), nil
}

func (f *fakeStore) called(query string) (store.Params, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	params, ok := f.params[query]
	return params, ok
}

func get(t *testing.T, h http.Handler, path string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(`GET`, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHome(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.CategoriesQuery] = `[
		{"_id": "cat-1", "title": "العقيدة <1>", "description": "", "posts": [{"_id": "p1"}, {"_id": "p2"}]},
		{"_id": "cat 2", "title": "الفقه", "description": "أحكام", "posts": []}
	]`
	fs.results[store.SectionsQuery] = `[{"_id": "s1", "title": "السيرة", "icon": "🕌", "topics": [1, 2, 3]}, {"title": "التاريخ"}]`

	rec := get(t, New(fs), `/`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get(`Content-Type`), `text/html`)
	assert.Contains(t, body, `<!DOCTYPE html><html lang="ar" dir="rtl">`)
	assert.Contains(t, body, `href="/section?categoryId=cat-1"`)
	assert.Contains(t, body, `href="/section?categoryId=cat+2"`)
	assert.Contains(t, body, `العقيدة &lt;1&gt;`)
	assert.Contains(t, body, `لا يوجد وصف`)
	assert.Contains(t, body, count(2)+` مقال`)
	assert.Contains(t, body, `🕌 السيرة`)
	assert.Contains(t, body, `📖 التاريخ`)
	assert.Contains(t, body, `بدون وصف`)
	assert.Contains(t, body, `<strong>`+count(3)+`</strong> موضوع`)
	assert.NotContains(t, body, `http-equiv="refresh"`)
	assert.NotEmpty(t, rec.Header().Get(`ETag`))
	assert.Empty(t, rec.Header().Get(`Cache-Control`))
}

func TestHomeFallsBackWhenStoreFails(t *testing.T) {
	fs := newFakeStore()
	fs.errs[store.CategoriesQuery] = errors.New(`connection refused`)
	fs.errs[store.SectionsQuery] = errors.New(`connection refused`)

	rec := get(t, New(fs), `/`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `فشل في تحميل الأقسام من الخادم`)
	assert.Contains(t, body, `القرآن الكريم`)
	assert.Contains(t, body, `href="/section?categoryId=fallback-1"`)
	assert.Contains(t, body, `فشل في جلب الأقسام.`)
	assert.Contains(t, body, `<meta http-equiv="refresh" content="15">`)
	assert.Equal(t, `no-store`, rec.Header().Get(`Cache-Control`))
	assert.Empty(t, rec.Header().Get(`ETag`))
}

func TestHomeWithFailedSectionsIsNotCached(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.CategoriesQuery] = `[]`
	fs.errs[store.SectionsQuery] = errors.New(`timeout`)

	rec := get(t, New(fs), `/`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `no-store`, rec.Header().Get(`Cache-Control`))
	assert.Empty(t, rec.Header().Get(`ETag`))
}

func TestHomeWithoutCategories(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.CategoriesQuery] = `[]`
	fs.results[store.SectionsQuery] = `[]`

	body := get(t, New(fs), `/`).Body.String()
	assert.Contains(t, body, `لا توجد أقسام متاحة`)
	assert.Contains(t, body, `لا توجد أقسام متاحة.`)
}

func TestSection(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.CategoryQuery] = `{
		"_id": "cat-1", "title": "الفقه", "description": "أحكام وفتاوى",
		"posts": [
			{"_id": "p1", "title": "الطهارة", "slug": {"current": "taharah"}, "author": "الشيخ أحمد",
			 "publishedAt": "2024-01-15T10:00:00Z", "mainImage": {"asset": {"url": "https://cdn.example/p1.jpg"}}},
			{"_id": "p2", "title": "الصلاة"}
		]
	}`

	rec := get(t, New(fs), `/section?categoryId=cat-1`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<title>الفقه - موقع إسلامي</title>`)
	assert.Contains(t, body, `<h1 class="section-title">الفقه</h1>`)
	assert.Contains(t, body, `المقالات المتاحة (`+count(2)+`)`)
	assert.Contains(t, body, `href="/article?slug=taharah"`)
	assert.Contains(t, body, `href="/article?id=p2"`)
	assert.Contains(t, body, `<img src="https://cdn.example/p1.jpg" alt="الطهارة" class="post-image" loading="lazy">`)
	assert.Contains(t, body, `post-image-placeholder`)
	assert.Contains(t, body, `اقرأ المزيد...`)
	assert.Contains(t, body, `الكاتب: الشيخ أحمد`)
	assert.Contains(t, body, formatDate(`2024-01-15T10:00:00Z`))

	params, ok := fs.called(store.CategoryQuery)
	require.True(t, ok)
	assert.Equal(t, store.Params{`categoryId`: `cat-1`}, params)
	_, ok = fs.called(store.CategoryPostsQuery)
	assert.False(t, ok)
}

func TestSectionUsesPostReferences(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.CategoryQuery] = `{"_id": "cat-1", "title": "الفقه"}`
	fs.results[store.CategoryPostsQuery] = `[{"_id": "p9", "title": "الزكاة"}]`

	rec := get(t, New(fs), `/section?categoryId=cat-1`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `الزكاة`)
	params, ok := fs.called(store.CategoryPostsQuery)
	require.True(t, ok)
	assert.Equal(t, store.Params{`categoryId`: `cat-1`}, params)
}

func TestSectionWithoutPosts(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.CategoryQuery] = `{"_id": "cat-1", "title": "الفقه", "posts": []}`

	body := get(t, New(fs), `/section?categoryId=cat-1`).Body.String()
	assert.Contains(t, body, `لا توجد مقالات متاحة`)
}

func TestSectionErrors(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.CategoryQuery] = `null`
	s := New(fs)

	rec := get(t, s, `/section`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `معرف القسم مطلوب`)
	assert.Contains(t, rec.Body.String(), `<meta http-equiv="refresh" content="10;url=/">`)
	assert.Equal(t, `no-store`, rec.Header().Get(`Cache-Control`))

	rec = get(t, s, `/section?categoryId=missing`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `القسم غير موجود`)

	fs.errs[store.CategoryQuery] = &store.Error{Status: 500, Description: `boom`}
	rec = get(t, s, `/section?categoryId=cat-1`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `خطأ تقني: content store returned status 500: boom`)
}

const articleJSON = `{
	"_id": "p1", "title": "الطهارة", "description": "مقدمة", "author": "الشيخ أحمد",
	"publishedAt": "2024-01-15",
	"category": {"_id": "cat-1", "title": "الفقه"},
	"content": [
		{"_type": "block", "style": "h1", "children": [{"_type": "span", "text": "A"}]},
		{"_type": "image", "asset": {"_ref": "image-1"}},
		{"_type": "block", "children": [{"text": "x"}, {"text": "y"}]}
	]
}`

func TestArticle(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.PostBySlugQuery] = articleJSON

	rec := get(t, New(fs), `/article?slug=taharah&id=ignored`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<h1 class="article-title">الطهارة</h1>`)
	assert.Contains(t, body, `<a href="/section?categoryId=cat-1">الفقه</a>`)
	assert.Contains(t, body, `الكاتب: الشيخ أحمد`)
	assert.Contains(t, body, `تاريخ النشر: `+formatDate(`2024-01-15`))
	assert.Contains(t, body, `<p class="article-description">مقدمة</p>`)
	assert.Contains(t, body, `<div class="article-body"><h2 class="content-heading">A</h2><p class="content-paragraph">xy</p></div>`)
	assert.Contains(t, body, `العودة إلى الفقه`)

	params, ok := fs.called(store.PostBySlugQuery)
	require.True(t, ok)
	assert.Equal(t, store.Params{`identifier`: `taharah`}, params)
	_, ok = fs.called(store.PostByIDQuery)
	assert.False(t, ok)
}

func TestArticleByID(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.PostByIDQuery] = `{"_id": "p2", "title": "الصلاة", "content": "نص قديم"}`

	rec := get(t, New(fs), `/article?id=p2`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<div class="article-text">نص قديم</div>`)
	assert.NotContains(t, body, `article-date`)
	assert.NotContains(t, body, `article-image`)
}

func TestArticleWithoutContent(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.PostByIDQuery] = `{"_id": "p3", "title": "فارغ"}`

	body := get(t, New(fs), `/article?id=p3`).Body.String()
	assert.Contains(t, body, `<div class="article-body"><p>المحتوى غير متاح</p></div>`)
}

func TestArticleSanitizing(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.PostByIDQuery] = `{"_id": "p4", "title": "t", "content": [
		{"_type": "block", "children": [{"text": "<script>alert(1)</script>ok"}]}
	]}`

	body := get(t, New(fs), `/article?id=p4`).Body.String()
	assert.NotContains(t, body, `<script>`)
	assert.Contains(t, body, `<p class="content-paragraph">ok</p>`)

	body = get(t, New(fs, Sanitize(false)), `/article?id=p4`).Body.String()
	assert.Contains(t, body, `<p class="content-paragraph"><script>alert(1)</script>ok</p>`)
}

func TestArticleErrors(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.PostBySlugQuery] = `null`
	s := New(fs)

	rec := get(t, s, `/article`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `معرف المقال أو الرابط مطلوب`)

	rec = get(t, s, `/article?slug=nothing`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `المقال غير موجود`)

	fs.errs[store.PostBySlugQuery] = errors.New(`timeout`)
	rec = get(t, s, `/article?slug=x`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `خطأ تقني: timeout`)
}

func TestTopic(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.TopicQuery] = `{
		"_id": "s1", "title": "العقيدة",
		"topic": {"_id": "t1", "title": "التوحيد", "description": "أساس العقيدة",
		          "content": [{"_type": "block", "style": "blockquote", "children": [{"text": "Q"}]}],
		          "chapters": ["أقسام التوحيد", "نواقض التوحيد"]}
	}`
	now := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	rec := get(t, New(fs, Now(func() time.Time { return now }), Name(`الموقع`)), `/topic?sectionId=s1&topicId=t1`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<title>التوحيد - الموقع</title>`)
	assert.Contains(t, body, `<blockquote class="content-quote">Q</blockquote>`)
	assert.Contains(t, body, `الفصل `+count(2))
	assert.Contains(t, body, `نواقض التوحيد`)
	assert.Contains(t, body, `شرح مفصل للفصل `+count(1)+` من موضوع التوحيد`)
	assert.Contains(t, body, longDate(now))

	params, ok := fs.called(store.TopicQuery)
	require.True(t, ok)
	assert.Equal(t, store.Params{`sectionId`: `s1`, `topicId`: `t1`}, params)
}

func TestTopicErrors(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.TopicQuery] = `{"_id": "s1", "title": "العقيدة", "topic": null}`
	s := New(fs)

	rec := get(t, s, `/topic?sectionId=s1`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `معرف القسم أو الموضوع غير موجود`)

	rec = get(t, s, `/topic?sectionId=s1&topicId=t9`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTopicWithoutChapters(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.TopicQuery] = `{"_id": "s1", "title": "العقيدة", "topic": {"_id": "t1", "title": "التوحيد"}}`

	body := get(t, New(fs), `/topic?sectionId=s1&topicId=t1`).Body.String()
	assert.Contains(t, body, `لا توجد فصول متاحة لهذا الموضوع`)
}

func TestETag(t *testing.T) {
	fs := newFakeStore()
	fs.results[store.PostByIDQuery] = articleJSON
	s := New(fs)

	first := get(t, s, `/article?id=p1`)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get(`ETag`)
	require.NotEmpty(t, etag)

	again := get(t, s, `/article?id=p1`, `If-None-Match`, etag)
	assert.Equal(t, http.StatusNotModified, again.Code)
	assert.Empty(t, again.Body.String())

	stale := get(t, s, `/article?id=p1`, `If-None-Match`, `"stale"`)
	assert.Equal(t, http.StatusOK, stale.Code)
	assert.Equal(t, first.Body.String(), stale.Body.String())
}

func TestHealthAndNotFound(t *testing.T) {
	s := New(newFakeStore())

	rec := get(t, s, `/healthz`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `ok`, rec.Body.String())

	rec = get(t, s, `/nowhere`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `الصفحة غير موجودة`)
}

func TestNormalizeID(t *testing.T) {
	// alef followed by madda above composes to alef with madda.
	assert.Equal(t, "\u0622", normalizeID(" \u0627\u0653 "))
	assert.Equal(t, `taharah`, normalizeID(`taharah`))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, ``, formatDate(``))
	assert.Equal(t, ``, formatDate(`not a date`))
	assert.Equal(t, longDate(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)), formatDate(`2024-01-15`))
	assert.Contains(t, formatDate(`2024-12-01T08:00:00Z`), `ديسمبر`)
}
