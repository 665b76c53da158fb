package mcpserver

// FeedFormatContract describes the payload accepted by the ingest_feed tool
// and POST /api/feed.
const FeedFormatContract = `# postview Feed Format

A feed replaces every post at once. Send either JSON or JSONP.

## JSON

` + "```" + `json
{
  "posts": [
    {
      "slug": "hello-world",
      "title": "Hello world",
      "date": "2024-03-05",
      "excerpt": "One or two lines shown on the card.",
      "content": "Full text.\n\nBlank lines separate paragraphs.",
      "image_url": "https://example.com/cover.jpg"
    }
  ]
}
` + "```" + `

## JSONP

` + "```" + `js
renderFeed({"posts": [ ... ]});
` + "```" + `

## Rules

1. **slug** identifies the post and appears in links as ` + "`" + `#post/<slug>` + "`" + `.
   Posts without a slug are listed but cannot be opened.
2. **Duplicate slugs**: the last post in the list wins.
3. **date** may be ` + "`" + `YYYY-MM-DD` + "`" + ` (shown unchanged), any common date string,
   or epoch milliseconds. Unparseable values are shown as given.
4. **Text fields are plain text.** HTML is escaped, never rendered.
5. **Reading time** is one minute per 400 characters of content, at least one.
6. An empty ` + "`" + `posts` + "`" + ` list shows the empty-state message.
`
