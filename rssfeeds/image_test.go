package rssfeeds

import (
	"strings"
	"testing"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

func TestResolveOrder(t *testing.T) {
	var r ImageResolver
	cases := []struct {
		name string
		item *gofeed.Item
		want string
	}{
		{
			name: "enclosure beats embedded img",
			item: &gofeed.Item{
				Enclosures:  []*gofeed.Enclosure{{URL: "https://cdn.test/enc.jpg", Type: "image/jpeg"}},
				Description: `<p><img src="https://cdn.test/inline.jpg"></p>`,
			},
			want: "https://cdn.test/enc.jpg",
		},
		{
			name: "non-image enclosure ignored",
			item: &gofeed.Item{
				Enclosures:  []*gofeed.Enclosure{{URL: "https://cdn.test/a.mp3", Type: "audio/mpeg"}},
				Description: `<img src="https://cdn.test/inline.jpg">`,
			},
			want: "https://cdn.test/inline.jpg",
		},
		{
			name: "media thumbnail",
			item: &gofeed.Item{Extensions: ext.Extensions{"media": {
				"thumbnail": {{Name: "thumbnail", Attrs: map[string]string{"url": "https://cdn.test/thumb.jpg"}}},
			}}},
			want: "https://cdn.test/thumb.jpg",
		},
		{
			name: "media group content",
			item: &gofeed.Item{Extensions: ext.Extensions{"media": {
				"group": {{Name: "group", Children: map[string][]ext.Extension{
					"content": {{Name: "content", Attrs: map[string]string{"url": "https://cdn.test/g.png", "medium": "image"}}},
				}}},
			}}},
			want: "https://cdn.test/g.png",
		},
		{
			name: "itunes image",
			item: &gofeed.Item{ITunesExt: &ext.ITunesItemExtension{Image: "https://cdn.test/pod.jpg"}},
			want: "https://cdn.test/pod.jpg",
		},
		{
			name: "content before description",
			item: &gofeed.Item{
				Content:     `<img src="https://cdn.test/content.jpg">`,
				Description: `<img src="https://cdn.test/desc.jpg">`,
			},
			want: "https://cdn.test/content.jpg",
		},
		{
			name: "relative src resolved against link",
			item: &gofeed.Item{Link: "https://news.test/a/b.html", Description: `<img src="/img/x.jpg">`},
			want: "https://news.test/img/x.jpg",
		},
		{
			name: "data uri skipped",
			item: &gofeed.Item{Description: `<img src="data:image/gif;base64,AAAA"><img src="https://cdn.test/real.jpg">`},
			want: "https://cdn.test/real.jpg",
		},
		{name: "nothing", item: &gofeed.Item{Description: "plain text"}, want: ""},
		{name: "nil item", item: nil, want: ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := r.Resolve(c.item); got != c.want {
				t.Fatalf("Resolve() = %q; want %q", got, c.want)
			}
		})
	}
}

func TestResolveParsedMediaContent(t *testing.T) {
	const doc = `<?xml version="1.0"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel><title>t</title>
<item><title>a</title><link>https://news.test/a</link>
<media:content url="https://cdn.test/video.mp4" type="video/mp4"/>
<media:content url="https://cdn.test/photo.jpg" type="image/jpeg"/>
<description>&lt;img src="https://cdn.test/inline.jpg"&gt;</description>
</item></channel></rss>`

	feed, err := gofeed.NewParser().ParseString(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := ImageResolver{}.Resolve(feed.Items[0])
	if !strings.HasSuffix(got, "photo.jpg") {
		t.Fatalf("Resolve() = %q; want media image", got)
	}
}
