package feed

import (
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/starford/postview/internal/checksum"
	"github.com/starford/postview/internal/models"
)

// FromFeed converts an RSS/Atom feed into a payload, keeping item order.
func FromFeed(f *gofeed.Feed) *models.Payload {
	p := &models.Payload{Posts: make([]models.Post, 0, len(f.Items))}
	for _, item := range f.Items {
		p.Posts = append(p.Posts, convertItem(item))
	}
	return p
}

func convertItem(item *gofeed.Item) models.Post {
	var date any
	switch {
	case item.PublishedParsed != nil:
		date = item.PublishedParsed.Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		date = item.UpdatedParsed.Format(time.RFC3339)
	case item.Published != "":
		date = item.Published
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}

	return models.Post{
		Slug:     itemSlug(item),
		Title:    item.Title,
		Date:     date,
		Excerpt:  item.Description,
		Content:  content,
		ImageURL: itemImage(item),
	}
}

// itemSlug derives a stable identifier from the item GUID or link.
func itemSlug(item *gofeed.Item) string {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	if key == "" {
		return ""
	}
	return checksum.Short(key, 8)
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && len(enc.Type) >= 6 && enc.Type[:6] == "image/" {
			return enc.URL
		}
	}
	return ""
}
