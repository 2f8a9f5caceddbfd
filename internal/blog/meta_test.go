package blog

import (
	"strings"
	"testing"
	"time"
)

const postHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="title" content="Understanding Myasthenia Gravis">
  <meta name="subtitle" content="When antibodies attack the junction">
  <meta name="description" content="A walkthrough of the NMJ and why fatigability matters.">
  <meta name="blogimage" content="/images/mg-cover.webp">
  <meta name="date" content="2026-03-15">
</head>
<body><h1>ignored</h1></body>
</html>`

func TestExtractMeta(t *testing.T) {
	m := ExtractMeta(strings.NewReader(postHTML))
	if m.Title != "Understanding Myasthenia Gravis" {
		t.Errorf("title = %q", m.Title)
	}
	if m.Subtitle != "When antibodies attack the junction" {
		t.Errorf("subtitle = %q", m.Subtitle)
	}
	if m.Image != "/images/mg-cover.webp" {
		t.Errorf("image = %q", m.Image)
	}
	if !m.HasDate {
		t.Fatal("date not parsed")
	}
	if got := m.Date.Format("2006-01-02"); got != "2026-03-15" {
		t.Errorf("date = %s", got)
	}
}

func TestExtractMetaDefaults(t *testing.T) {
	m := ExtractMeta(strings.NewReader(`<html><head></head><body></body></html>`))
	if m.Title != "Untitled" {
		t.Errorf("title = %q, want Untitled", m.Title)
	}
	if m.HasDate {
		t.Error("absent date reported as present")
	}
}

func TestExtractMetaBadDate(t *testing.T) {
	doc := `<html><head><meta name="date" content="sometime last week"></head></html>`
	if m := ExtractMeta(strings.NewReader(doc)); m.HasDate {
		t.Error("unparseable date reported as present")
	}
}

func TestExtractMetaTruncatedHTML(t *testing.T) {
	doc := `<html><head><meta name="title" content="Cut short"><meta name="descr`
	m := ExtractMeta(strings.NewReader(doc))
	if m.Title != "Cut short" {
		t.Errorf("title = %q", m.Title)
	}
}

func makePosts(n int) []Post {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Post, n)
	for i := range out {
		// Newest first, matching scan()'s sort.
		out[i] = Post{Slug: string(rune('a' + i)), Date: base.Add(-time.Duration(i) * 24 * time.Hour)}
	}
	return out
}

func TestPaginateFeaturedOnlyOnPageOne(t *testing.T) {
	sec := Section{Key: "s", Title: "S"}
	posts := makePosts(10) // 1 featured + 9 rest -> 2 pages

	p1 := paginate(sec, posts, 1)
	if p1.Featured == nil || p1.Featured.Slug != "a" {
		t.Fatalf("page 1 featured = %+v", p1.Featured)
	}
	if len(p1.Posts) != 6 || p1.Posts[0].Slug != "b" {
		t.Errorf("page 1 posts = %d starting %q", len(p1.Posts), p1.Posts[0].Slug)
	}
	if p1.TotalPages != 2 {
		t.Errorf("total pages = %d", p1.TotalPages)
	}

	p2 := paginate(sec, posts, 2)
	if p2.Featured != nil {
		t.Error("page 2 must not carry the featured post")
	}
	if len(p2.Posts) != 3 {
		t.Errorf("page 2 posts = %d", len(p2.Posts))
	}
}

func TestPaginateEmptySection(t *testing.T) {
	p := paginate(Section{Key: "s"}, nil, 1)
	if p.Featured != nil || len(p.Posts) != 0 || p.TotalPages != 1 {
		t.Errorf("empty section page = %+v", p)
	}
}

func TestPaginatePastEnd(t *testing.T) {
	p := paginate(Section{Key: "s"}, makePosts(3), 9)
	if p.Posts == nil || len(p.Posts) != 0 {
		t.Errorf("past-end posts = %v", p.Posts)
	}
}
