package clothes

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

type Layout string

const (
	LayoutText  Layout = "text"
	LayoutTable Layout = "table"
)

// Variant is the window flavour: the listing layout and the window size in
// pixels.
type Variant struct {
	Layout Layout
	Width  int
	Height int
}

var (
	TextVariant  = Variant{Layout: LayoutText, Width: 550, Height: 500}
	TableVariant = Variant{Layout: LayoutTable, Width: 700, Height: 560}
)

//go:embed templates/window.html
var templatesFS embed.FS

var windowTpl = template.Must(template.ParseFS(templatesFS, "templates/window.html"))

// Window is everything the page shows.
type Window struct {
	Variant Variant
	Form    Form
	Notices []Notice

	// Listing is nil until the first View or refresh.
	Listing *Listing
}

type windowData struct {
	Width       int
	Height      int
	Form        Form
	Notices     []Notice
	Table       bool
	Shown       bool
	ListingJSON string
	Output      string
	Headers     [2]string
	Rows        []Row
}

func (w Window) data() (windowData, error) {
	d := windowData{
		Width:   w.Variant.Width,
		Height:  w.Variant.Height,
		Form:    w.Form,
		Notices: w.Notices,
		Table:   w.Variant.Layout == LayoutTable,
		Headers: Headers(),
	}
	if w.Listing == nil {
		return d, nil
	}

	raw, err := json.Marshal(w.Listing.Items)
	if err != nil {
		return windowData{}, fmt.Errorf("encode listing: %w", err)
	}
	d.Shown = true
	d.ListingJSON = string(raw)
	if d.Table {
		d.Rows = Rows(w.Listing.Items)
	} else {
		d.Output = Text(w.Listing.Items)
	}
	return d, nil
}

func (w Window) Render(out io.Writer) error {
	d, err := w.data()
	if err != nil {
		return err
	}
	return windowTpl.Execute(out, d)
}

// carriedListing restores the listing a page was showing when its form was
// posted, so that actions which do not refresh leave the output area as is.
func carriedListing(raw string) *Listing {
	if raw == "" {
		return nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	if items == nil {
		items = []Item{}
	}
	return &Listing{Items: items}
}
