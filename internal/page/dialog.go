package page

import "html/template"

// Dialog is the in-memory modal with its title, meta, body and image targets.
type Dialog struct {
	open        bool
	title       string
	meta        string
	body        template.HTML
	image       string
	imageHidden bool
}

// NewDialog returns a closed dialog with a hidden image.
func NewDialog() *Dialog {
	return &Dialog{imageHidden: true}
}

// ShowModal opens the dialog. Opening an open dialog does nothing.
func (d *Dialog) ShowModal() { d.open = true }

// Close closes the dialog.
func (d *Dialog) Close() { d.open = false }

// IsOpen reports whether the dialog is shown.
func (d *Dialog) IsOpen() bool { return d.open }

// SetTitle sets the title text node.
func (d *Dialog) SetTitle(text string) { d.title = text }

// SetMeta sets the meta line text.
func (d *Dialog) SetMeta(text string) { d.meta = text }

// SetBody replaces the body markup.
func (d *Dialog) SetBody(html template.HTML) { d.body = html }

// SetImage sets the image source and visibility. A hidden image keeps its
// previous source, as an <img hidden> element does.
func (d *Dialog) SetImage(src string, visible bool) {
	if visible {
		d.image = src
	}
	d.imageHidden = !visible
}

// DialogView is a serializable copy of the dialog.
type DialogView struct {
	Open        bool          `json:"open"`
	Title       string        `json:"title"`
	Meta        string        `json:"meta"`
	Body        template.HTML `json:"body"`
	Image       string        `json:"image,omitempty"`
	ImageHidden bool          `json:"image_hidden"`
}

// View returns the current dialog contents.
func (d *Dialog) View() DialogView {
	return DialogView{
		Open:        d.open,
		Title:       d.title,
		Meta:        d.meta,
		Body:        d.body,
		Image:       d.image,
		ImageHidden: d.imageHidden,
	}
}
