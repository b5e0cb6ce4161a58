package clothes

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
)

type Kind int

const (
	KindInfo Kind = iota
	KindWarning
	KindError
	KindUnavailable
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	case KindUnavailable:
		return "unavailable"
	default:
		return "failure"
	}
}

const (
	msgFillAll      = "Fill all fields!"
	msgPriceNumber  = "Price must be a number!"
	msgPriceNeg     = "Price cannot be negative!"
	msgUpdateFields = "Enter name and new price to update."
	msgDeleteName   = "Enter name to delete"
	msgUnavailable  = "The database did not respond. Please try again."
	msgFailure      = "The operation failed."
)

var (
	errBlank      = errors.New("blank field")
	errNotANumber = errors.New("price is not a number")
	errNegative   = errors.New("price is negative")
)

// Notice is what a dialog shows after an action. Err is the store error
// behind an unavailable or failure notice and is never rendered.
type Notice struct {
	Kind    Kind
	Title   string
	Message string
	Err     error
}

type Form struct {
	Name  string
	Price string
}

func (f Form) trimmed() (string, string) {
	return strings.TrimSpace(f.Name), strings.TrimSpace(f.Price)
}

// Listing is a full scan of the store, in store order.
type Listing struct {
	Items []Item
}

// Result is the next window state: the dialogs to show in order, the values
// the inputs hold next and, when the display was refreshed, the listing.
type Result struct {
	Notices []Notice
	Form    Form
	Listing *Listing
}

// Notice returns the primary dialog of r.
func (r Result) Notice() (Notice, bool) {
	if len(r.Notices) == 0 {
		return Notice{}, false
	}
	return r.Notices[0], true
}

// ParsePrice accepts any finite, non-negative decimal. Hex floats such as
// 0x1p4 are not prices.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errBlank
	}
	if strings.ContainsAny(s, "xX") {
		return 0, errNotANumber
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, errNotANumber
	}
	if p < 0 {
		return 0, errNegative
	}
	return p, nil
}

func priceNotice(err error) Notice {
	if errors.Is(err, errNegative) {
		return errorNotice(msgPriceNeg)
	}
	return errorNotice(msgPriceNumber)
}

func Add(ctx context.Context, st Store, f Form) Result {
	name, price := f.trimmed()
	if name == "" || price == "" {
		return keep(f, errorNotice(msgFillAll))
	}
	p, err := ParsePrice(price)
	if err != nil {
		return keep(f, priceNotice(err))
	}

	if err := st.Insert(ctx, Item{Name: name, Price: p}); err != nil {
		return keep(f, storeNotice(err))
	}
	return refreshed(ctx, st, Notice{Kind: KindInfo, Title: "Success", Message: name + " added successfully!"})
}

// View never touches the form.
func View(ctx context.Context, st Store, f Form) Result {
	items, err := st.FindAll(ctx)
	if err != nil {
		return keep(f, storeNotice(err))
	}
	return Result{Form: f, Listing: &Listing{Items: items}}
}

func Update(ctx context.Context, st Store, f Form) Result {
	name, price := f.trimmed()
	if name == "" || price == "" {
		return keep(f, errorNotice(msgUpdateFields))
	}
	p, err := ParsePrice(price)
	if err != nil {
		return keep(f, priceNotice(err))
	}

	ok, err := st.UpdatePriceByName(ctx, name, p)
	if err != nil {
		return keep(f, storeNotice(err))
	}
	if !ok {
		return keep(f, notFound(name))
	}
	return refreshed(ctx, st, Notice{
		Kind:    KindInfo,
		Title:   "Updated",
		Message: name + "'s price updated to " + currency + FormatPrice(p),
	})
}

// Delete reads only the name; the price input is ignored.
func Delete(ctx context.Context, st Store, f Form) Result {
	name, _ := f.trimmed()
	if name == "" {
		return keep(f, errorNotice(msgDeleteName))
	}

	ok, err := st.DeleteByName(ctx, name)
	if err != nil {
		return keep(f, storeNotice(err))
	}
	if !ok {
		return keep(f, notFound(name))
	}
	return refreshed(ctx, st, Notice{Kind: KindInfo, Title: "Deleted", Message: name + " removed successfully!"})
}

func keep(f Form, n Notice) Result {
	return Result{Notices: []Notice{n}, Form: f}
}

// refreshed clears the inputs and reloads the listing after a mutation. A
// failed reload keeps the success dialog and adds a second one.
func refreshed(ctx context.Context, st Store, n Notice) Result {
	r := Result{Notices: []Notice{n}}
	items, err := st.FindAll(ctx)
	if err != nil {
		r.Notices = append(r.Notices, storeNotice(err))
		return r
	}
	r.Listing = &Listing{Items: items}
	return r
}

func errorNotice(msg string) Notice {
	return Notice{Kind: KindError, Title: "Error", Message: msg}
}

func notFound(name string) Notice {
	return Notice{Kind: KindWarning, Title: "Not Found", Message: "No cloth found with name '" + name + "'"}
}

func storeNotice(err error) Notice {
	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return Notice{Kind: KindUnavailable, Title: "Database Unavailable", Message: msgUnavailable, Err: err}
	}
	return Notice{Kind: KindFailure, Title: "Database Error", Message: msgFailure, Err: err}
}
