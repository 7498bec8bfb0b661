package rssfeeds

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// ImageResolver picks a representative image URL for a feed item. It only
// reads fields already present in the parsed item and never fetches the image.
type ImageResolver struct{}

// Resolve walks the fallback chain: image enclosure, media/iTunes extension,
// first <img> in content then description. Empty means no image.
func (ImageResolver) Resolve(item *gofeed.Item) string {
	if item == nil {
		return ""
	}
	for _, resolve := range []func(*gofeed.Item) string{
		fromEnclosures,
		fromMediaExtensions,
		fromITunes,
		func(it *gofeed.Item) string { return firstImg(it.Content, it.Link) },
		func(it *gofeed.Item) string { return firstImg(it.Description, it.Link) },
	} {
		if u := resolve(item); u != "" {
			return u
		}
	}
	return ""
}

func fromEnclosures(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		if isImageType(enc.Type) && strings.TrimSpace(enc.URL) != "" {
			return strings.TrimSpace(enc.URL)
		}
	}
	return ""
}

func fromMediaExtensions(item *gofeed.Item) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	if u := mediaImage(media); u != "" {
		return u
	}
	for _, group := range media["group"] {
		if u := mediaImage(group.Children); u != "" {
			return u
		}
	}
	return ""
}

// mediaImage looks at media:content entries declared as images, then media:thumbnail.
func mediaImage(elems map[string][]ext.Extension) string {
	for _, c := range elems["content"] {
		u := strings.TrimSpace(c.Attrs["url"])
		if u == "" {
			continue
		}
		if isImageType(c.Attrs["type"]) || strings.EqualFold(c.Attrs["medium"], "image") {
			return u
		}
		if c.Attrs["type"] == "" && c.Attrs["medium"] == "" && looksLikeImage(u) {
			return u
		}
	}
	for _, th := range elems["thumbnail"] {
		if u := strings.TrimSpace(th.Attrs["url"]); u != "" {
			return u
		}
	}
	return ""
}

func fromITunes(item *gofeed.Item) string {
	if item.ITunesExt == nil {
		return ""
	}
	return strings.TrimSpace(item.ITunesExt.Image)
}

// firstImg returns the src of the first <img> in an HTML fragment, resolved
// against base when relative. data: URIs are ignored.
func firstImg(fragment, base string) string {
	if !strings.Contains(strings.ToLower(fragment), "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	var src string
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("src")
		if v = strings.TrimSpace(v); v == "" {
			v, _ = s.Attr("data-src")
			v = strings.TrimSpace(v)
		}
		if v == "" || strings.HasPrefix(strings.ToLower(v), "data:") {
			return true
		}
		src = v
		return false
	})
	return absolute(src, base)
}

func absolute(ref, base string) string {
	if ref == "" || base == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func isImageType(mime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
}

func looksLikeImage(u string) bool {
	p := strings.ToLower(u)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	for _, suffix := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif"} {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}
