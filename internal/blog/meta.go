package blog

import (
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Meta is the metadata a post declares through <meta name="..."> tags.
type Meta struct {
	Title       string
	Subtitle    string
	Description string
	Image       string
	Date        time.Time
	HasDate     bool
}

// ExtractMeta tokenizes an HTML document and collects its <meta> tags.
// Unknown or malformed dates leave HasDate false so the caller can fall
// back to the file's mtime.
func ExtractMeta(r io.Reader) Meta {
	tags := map[string]string{}

	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "meta" || !hasAttr {
			continue
		}
		var metaName, metaContent string
		for {
			k, v, more := z.TagAttr()
			switch string(k) {
			case "name":
				metaName = string(v)
			case "content":
				metaContent = string(v)
			}
			if !more {
				break
			}
		}
		if metaName != "" && metaContent != "" {
			tags[metaName] = metaContent
		}
	}

	m := Meta{
		Title:       tags["title"],
		Subtitle:    tags["subtitle"],
		Description: tags["description"],
		Image:       tags["blogimage"],
	}
	if m.Title == "" {
		m.Title = "Untitled"
	}
	if raw := strings.TrimSpace(tags["date"]); raw != "" {
		if t, ok := parseDate(raw); ok {
			m.Date = t
			m.HasDate = true
		}
	}
	return m
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
