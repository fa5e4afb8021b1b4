package store

// Queries used by the site.  Parameters are bound through Params, never spliced into the query text.
const (
	// CategoriesQuery lists every category, newest first, with its posts.
	CategoriesQuery = `*[_type == "category"] | order(_createdAt desc) {
  _id,
  title,
  description,
  "posts": *[_type == "post" && references(^._id)] {
    _id,
    title,
    slug,
    description,
    publishedAt,
    "author": author->name
  } | order(publishedAt desc)
}`

	// SectionsQuery lists every section.
	SectionsQuery = `*[_type == "section"]`

	// CategoryQuery loads one category ($categoryId) and its posts.
	CategoryQuery = `*[_type == "category" && _id == $categoryId][0]{
  _id,
  title,
  description,
  "posts": *[_type == "post" && references(^._id)] {
    _id,
    title,
    slug,
    description,
    mainImage { asset-> { _id, url } },
    publishedAt,
    "author": author->name,
    "category": category->{_id, title}
  } | order(publishedAt desc)
}`

	// CategoryPostsQuery finds posts by a direct reference to $categoryId, for categories whose posts were not
	// resolved by CategoryQuery.
	CategoryPostsQuery = `*[_type == "post" && category._ref == $categoryId] {
  _id,
  title,
  slug,
  description,
  mainImage { asset-> { _id, url } },
  publishedAt,
  "author": author->name,
  "category": category->{_id, title}
} | order(publishedAt desc)`

	postProjection = `{
  _id,
  title,
  description,
  content,
  mainImage { asset->{ url } },
  publishedAt,
  "author": author->name,
  "category": category->{ title, _id }
}`

	// PostBySlugQuery loads one post by $identifier matched against its slug.
	PostBySlugQuery = `*[_type == "post" && slug.current == $identifier][0]` + postProjection

	// PostByIDQuery loads one post by $identifier matched against its document ID.
	PostByIDQuery = `*[_type == "post" && _id == $identifier][0]` + postProjection

	// TopicQuery loads the section $sectionId with the topic $topicId.
	TopicQuery = `*[_type == "section" && _id == $sectionId][0]{
  _id,
  title,
  description,
  "topic": *[_type == "topic" && references(^._id) && _id == $topicId][0]{
    _id,
    title,
    description,
    content,
    chapters
  }
}`
)
