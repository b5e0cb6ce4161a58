package clothes

import (
	"strconv"
	"strings"
)

const (
	currency    = "₹"
	emptyText   = "No clothes found."
	lineSep     = " – "
	headerName  = "Cloth Name"
	headerPrice = "Price (" + currency + ")"
)

// FormatPrice renders the shortest decimal that round-trips p and keeps a
// trailing ".0" on whole values, so 499 reads "499.0".
func FormatPrice(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func Line(it Item) string {
	return it.Name + lineSep + currency + FormatPrice(it.Price)
}

// Text renders the listing for the text variant.
func Text(items []Item) string {
	if len(items) == 0 {
		return emptyText
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = Line(it)
	}
	return strings.Join(lines, "\n")
}

type Row struct {
	Name  string
	Price string
}

// Rows renders the listing for the table variant. An empty listing has no
// rows and no placeholder.
func Rows(items []Item) []Row {
	out := make([]Row, len(items))
	for i, it := range items {
		out[i] = Row{Name: it.Name, Price: currency + FormatPrice(it.Price)}
	}
	return out
}

func Headers() [2]string {
	return [2]string{headerName, headerPrice}
}
