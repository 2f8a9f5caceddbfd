package blog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/neuropulse/neuropulse-server/internal/cache"
)

const (
	postsPerPage       = 6
	featuredPostsCount = 1
)

// ErrUnknownSection is returned for a section key that was never registered.
var ErrUnknownSection = errors.New("unknown blog section")

// Section describes one blog area served from a directory of HTML posts.
type Section struct {
	Key          string // "synapse-speaks"
	DirName      string // directory under the blog root
	Title        string
	Subtitle     string
	DefaultImage string
}

type Post struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Date        time.Time `json:"date"`
}

// PageData is one rendered listing page. Featured is only set on page 1.
type PageData struct {
	Section    string `json:"section"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
	Featured   *Post  `json:"featured,omitempty"`
	Posts      []Post `json:"posts"`
}

type Service struct {
	root     string
	cache    *cache.Cache
	log      *logrus.Logger
	sections map[string]Section
}

func NewService(root string, c *cache.Cache, log *logrus.Logger, sections []Section) *Service {
	m := make(map[string]Section, len(sections))
	for _, s := range sections {
		m[s.Key] = s
	}
	return &Service{root: root, cache: c, log: log, sections: m}
}

func (s *Service) Sections() []Section {
	out := make([]Section, 0, len(s.sections))
	for _, sec := range s.sections {
		out = append(out, sec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Page serves one listing page of a section, cache-first.
func (s *Service) Page(ctx context.Context, sectionKey string, page int) (PageData, error) {
	sec, ok := s.sections[sectionKey]
	if !ok {
		return PageData{}, ErrUnknownSection
	}
	if page < 1 {
		page = 1
	}

	key := cache.BlogPageKey(sec.Key, page)
	var cached PageData
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	posts, err := s.scan(sec)
	if err != nil {
		return PageData{}, err
	}

	out := paginate(sec, posts, page)
	s.cache.SetJSON(ctx, key, out, cache.TTLBlogPage)
	return out, nil
}

// Refresh drops every cached page of a section; the next request re-scans
// the directory. Called after deploying new posts.
func (s *Service) Refresh(ctx context.Context, sectionKey string) error {
	sec, ok := s.sections[sectionKey]
	if !ok {
		return ErrUnknownSection
	}
	s.cache.DeletePattern(ctx, cache.BlogPattern(sec.Key))
	s.log.Infof("blog: invalidated cached pages for section %s", sec.Key)
	return nil
}

func (s *Service) scan(sec Section) ([]Post, error) {
	dir := filepath.Join(s.root, sec.DirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var posts []Post
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			s.log.Warnf("blog: skipping unreadable post %s: %v", path, err)
			continue
		}
		meta := ExtractMeta(f)
		f.Close()

		date := meta.Date
		if !meta.HasDate {
			if info, err := e.Info(); err == nil {
				date = info.ModTime()
				s.log.Warnf("blog: no valid date in %s, using last modified time", e.Name())
			}
		}
		image := meta.Image
		if image == "" {
			image = sec.DefaultImage
		}

		posts = append(posts, Post{
			Slug:        strings.TrimSuffix(e.Name(), ".html"),
			Title:       meta.Title,
			Subtitle:    meta.Subtitle,
			Description: meta.Description,
			Image:       image,
			Date:        date,
		})
	}

	sort.Slice(posts, func(i, j int) bool { return posts[i].Date.After(posts[j].Date) })
	return posts, nil
}

func paginate(sec Section, posts []Post, page int) PageData {
	out := PageData{
		Section:  sec.Key,
		Title:    sec.Title,
		Subtitle: sec.Subtitle,
		Page:     page,
		Posts:    []Post{},
	}

	var rest []Post
	if len(posts) > 0 {
		featured := posts[0]
		out.Featured = &featured
		rest = posts[featuredPostsCount:]
	}

	out.TotalPages = (len(rest) + postsPerPage - 1) / postsPerPage
	if out.TotalPages == 0 {
		out.TotalPages = 1
	}

	start := (page - 1) * postsPerPage
	if start < len(rest) {
		end := start + postsPerPage
		if end > len(rest) {
			end = len(rest)
		}
		out.Posts = rest[start:end]
	}
	if page > 1 {
		out.Featured = nil
	}
	return out
}
