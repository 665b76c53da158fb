package session

import "github.com/starford/postview/internal/render"

// Document turns a session view into the full page view model.
func Document(v View, siteTitle, feedURL string) render.Page {
	d := v.Page.Dialog
	r := render.Reader{Open: d.Open}
	if d.Open {
		r.Title = d.Title
		r.Meta = d.Meta
		r.Body = d.Body
		if !d.ImageHidden {
			r.Image = d.Image
		}
	}
	return render.Page{
		SiteTitle:   siteTitle,
		Year:        v.Page.Year,
		Cards:       v.Page.Cards,
		Reader:      r,
		FeedURL:     feedURL,
		NavExpanded: v.Page.NavExpanded,
	}
}
