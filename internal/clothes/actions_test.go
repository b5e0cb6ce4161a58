package clothes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// stubStore delegates to a MemStore unless a hook is set.
type stubStore struct {
	*MemStore
	insertErr error
	findErr   error
	mutateErr error
	block     bool
}

func newStub() *stubStore { return &stubStore{MemStore: NewMemStore()} }

func (s *stubStore) wait(ctx context.Context) error {
	if !s.block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubStore) Insert(ctx context.Context, it Item) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.MemStore.Insert(ctx, it)
}

func (s *stubStore) FindAll(ctx context.Context) ([]Item, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.MemStore.FindAll(ctx)
}

func (s *stubStore) UpdatePriceByName(ctx context.Context, name string, price float64) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	if s.mutateErr != nil {
		return false, s.mutateErr
	}
	return s.MemStore.UpdatePriceByName(ctx, name, price)
}

func (s *stubStore) DeleteByName(ctx context.Context, name string) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	if s.mutateErr != nil {
		return false, s.mutateErr
	}
	return s.MemStore.DeleteByName(ctx, name)
}

func mustItems(t *testing.T, st Store) []Item {
	t.Helper()
	items, err := st.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	return items
}

func mustNotice(t *testing.T, res Result) Notice {
	t.Helper()
	n, ok := res.Notice()
	if !ok {
		t.Fatalf("no notice in result %+v", res)
	}
	return n
}

func seed(t *testing.T, st Store, items ...Item) {
	t.Helper()
	for _, it := range items {
		if err := st.Insert(context.Background(), it); err != nil {
			t.Fatalf("seed %q: %v", it.Name, err)
		}
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name     string
		form     Form
		wantKind Kind
		wantMsg  string
		wantItem *Item
	}{
		{
			name:     "valid",
			form:     Form{Name: "Shirt", Price: "499"},
			wantKind: KindInfo,
			wantMsg:  "Shirt added successfully!",
			wantItem: &Item{Name: "Shirt", Price: 499},
		},
		{
			name:     "trims input",
			form:     Form{Name: "  Jeans ", Price: " 1299.50 "},
			wantKind: KindInfo,
			wantMsg:  "Jeans added successfully!",
			wantItem: &Item{Name: "Jeans", Price: 1299.5},
		},
		{
			name:     "zero price",
			form:     Form{Name: "Sample", Price: "0"},
			wantKind: KindInfo,
			wantMsg:  "Sample added successfully!",
			wantItem: &Item{Name: "Sample", Price: 0},
		},
		{name: "blank name", form: Form{Name: "", Price: "10"}, wantKind: KindError, wantMsg: "Fill all fields!"},
		{name: "blank price", form: Form{Name: "Cap", Price: ""}, wantKind: KindError, wantMsg: "Fill all fields!"},
		{name: "whitespace only", form: Form{Name: "   ", Price: "  "}, wantKind: KindError, wantMsg: "Fill all fields!"},
		{name: "letters", form: Form{Name: "Cap", Price: "abc"}, wantKind: KindError, wantMsg: "Price must be a number!"},
		{name: "trailing junk", form: Form{Name: "Cap", Price: "12x"}, wantKind: KindError, wantMsg: "Price must be a number!"},
		{name: "nan", form: Form{Name: "Cap", Price: "NaN"}, wantKind: KindError, wantMsg: "Price must be a number!"},
		{name: "inf", form: Form{Name: "Cap", Price: "inf"}, wantKind: KindError, wantMsg: "Price must be a number!"},
		{name: "hex float", form: Form{Name: "Cap", Price: "0x1p4"}, wantKind: KindError, wantMsg: "Price must be a number!"},
		{name: "hex prefix", form: Form{Name: "Cap", Price: "0X10"}, wantKind: KindError, wantMsg: "Price must be a number!"},
		{name: "digit separators", form: Form{Name: "Cap", Price: "1_000"}, wantKind: KindError, wantMsg: "Price must be a number!"},
		{name: "negative", form: Form{Name: "Cap", Price: "-5"}, wantKind: KindError, wantMsg: "Price cannot be negative!"},
		{
			name:     "exponent",
			form:     Form{Name: "Coat", Price: "1.5e3"},
			wantKind: KindInfo,
			wantMsg:  "Coat added successfully!",
			wantItem: &Item{Name: "Coat", Price: 1500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewMemStore()

			res := Add(context.Background(), st, tt.form)

			n := mustNotice(t, res)
			if n.Kind != tt.wantKind || n.Message != tt.wantMsg {
				t.Fatalf("notice=%v %q want %v %q", n.Kind, n.Message, tt.wantKind, tt.wantMsg)
			}

			items := mustItems(t, st)
			if tt.wantItem == nil {
				if len(items) != 0 {
					t.Fatalf("store mutated on failure: %+v", items)
				}
				if res.Form != tt.form {
					t.Fatalf("form=%+v want preserved %+v", res.Form, tt.form)
				}
				if res.Listing != nil {
					t.Fatalf("listing refreshed on failure")
				}
				return
			}

			if len(items) != 1 || items[0].Name != tt.wantItem.Name || items[0].Price != tt.wantItem.Price {
				t.Fatalf("items=%+v want one %+v", items, *tt.wantItem)
			}
			if res.Form != (Form{}) {
				t.Fatalf("form=%+v want cleared", res.Form)
			}
			if res.Listing == nil || len(res.Listing.Items) != 1 {
				t.Fatalf("listing=%+v want refreshed with one item", res.Listing)
			}
		})
	}
}

func TestAdd_AllowsDuplicateNames(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	Add(ctx, st, Form{Name: "Shirt", Price: "100"})
	res := Add(ctx, st, Form{Name: "Shirt", Price: "200"})

	if n := mustNotice(t, res); n.Kind != KindInfo {
		t.Fatalf("second add kind=%v", n.Kind)
	}
	if items := mustItems(t, st); len(items) != 2 {
		t.Fatalf("items=%d want 2", len(items))
	}
}

func TestView(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	empty := View(ctx, st, Form{Name: "kept"})
	if empty.Listing == nil || len(empty.Listing.Items) != 0 {
		t.Fatalf("empty listing=%+v", empty.Listing)
	}
	if len(empty.Notices) != 0 {
		t.Fatalf("view produced notices %+v", empty.Notices)
	}
	if empty.Form.Name != "kept" {
		t.Fatalf("view changed the form: %+v", empty.Form)
	}
	if got := Text(empty.Listing.Items); got != "No clothes found." {
		t.Fatalf("empty text=%q", got)
	}

	seed(t, st, Item{Name: "Shirt", Price: 499}, Item{Name: "Socks", Price: 99.5})

	first := View(ctx, st, Form{})
	second := View(ctx, st, Form{})
	a, b := Text(first.Listing.Items), Text(second.Listing.Items)
	if a != b {
		t.Fatalf("view not idempotent:\n%s\n---\n%s", a, b)
	}
	if a != "Shirt – ₹499.0\nSocks – ₹99.5" {
		t.Fatalf("text=%q", a)
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name      string
		form      Form
		wantKind  Kind
		wantMsg   string
		wantPrice float64
	}{
		{
			name:      "existing",
			form:      Form{Name: "Shirt", Price: "599"},
			wantKind:  KindInfo,
			wantMsg:   "Shirt's price updated to ₹599.0",
			wantPrice: 599,
		},
		{
			name:      "missing",
			form:      Form{Name: "Hat", Price: "10"},
			wantKind:  KindWarning,
			wantMsg:   "No cloth found with name 'Hat'",
			wantPrice: 499,
		},
		{
			name:      "blank price",
			form:      Form{Name: "Shirt", Price: " "},
			wantKind:  KindError,
			wantMsg:   "Enter name and new price to update.",
			wantPrice: 499,
		},
		{
			name:      "blank name",
			form:      Form{Name: "", Price: "10"},
			wantKind:  KindError,
			wantMsg:   "Enter name and new price to update.",
			wantPrice: 499,
		},
		{
			name:      "not a number",
			form:      Form{Name: "Shirt", Price: "cheap"},
			wantKind:  KindError,
			wantMsg:   "Price must be a number!",
			wantPrice: 499,
		},
		{
			name:      "case sensitive match",
			form:      Form{Name: "shirt", Price: "1"},
			wantKind:  KindWarning,
			wantMsg:   "No cloth found with name 'shirt'",
			wantPrice: 499,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewMemStore()
			seed(t, st, Item{Name: "Shirt", Price: 499})

			res := Update(context.Background(), st, tt.form)

			n := mustNotice(t, res)
			if n.Kind != tt.wantKind || n.Message != tt.wantMsg {
				t.Fatalf("notice=%v %q want %v %q", n.Kind, n.Message, tt.wantKind, tt.wantMsg)
			}

			items := mustItems(t, st)
			if len(items) != 1 || items[0].Name != "Shirt" || items[0].Price != tt.wantPrice {
				t.Fatalf("items=%+v want Shirt at %v", items, tt.wantPrice)
			}

			if tt.wantKind == KindInfo {
				if res.Form != (Form{}) || res.Listing == nil {
					t.Fatalf("success should clear form and refresh: %+v", res)
				}
			} else if res.Form != tt.form {
				t.Fatalf("form=%+v want preserved %+v", res.Form, tt.form)
			}
		})
	}
}

func TestUpdate_FirstMatchOnly(t *testing.T) {
	st := NewMemStore()
	seed(t, st,
		Item{Name: "Shirt", Price: 100},
		Item{Name: "Shirt", Price: 200},
	)

	Update(context.Background(), st, Form{Name: "Shirt", Price: "300"})

	items := mustItems(t, st)
	if items[0].Price != 300 || items[1].Price != 200 {
		t.Fatalf("prices=%v,%v want 300,200", items[0].Price, items[1].Price)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing clears and refreshes", func(t *testing.T) {
		st := NewMemStore()
		seed(t, st, Item{Name: "Shirt", Price: 1}, Item{Name: "Socks", Price: 2})

		res := Delete(ctx, st, Form{Name: "Shirt", Price: "ignored"})

		n := mustNotice(t, res)
		if n.Kind != KindInfo || n.Message != "Shirt removed successfully!" {
			t.Fatalf("notice=%+v", n)
		}
		if res.Form != (Form{}) {
			t.Fatalf("form=%+v want cleared", res.Form)
		}
		if res.Listing == nil || len(res.Listing.Items) != 1 || res.Listing.Items[0].Name != "Socks" {
			t.Fatalf("listing=%+v", res.Listing)
		}
	})

	t.Run("first match only", func(t *testing.T) {
		st := NewMemStore()
		seed(t, st, Item{Name: "Shirt", Price: 1}, Item{Name: "Shirt", Price: 2})

		Delete(ctx, st, Form{Name: "Shirt"})

		items := mustItems(t, st)
		if len(items) != 1 || items[0].Price != 2 {
			t.Fatalf("items=%+v want the second Shirt left", items)
		}
	})

	t.Run("missing", func(t *testing.T) {
		st := NewMemStore()
		seed(t, st, Item{Name: "Shirt", Price: 1})
		form := Form{Name: "Hat", Price: "3"}

		res := Delete(ctx, st, form)

		n := mustNotice(t, res)
		if n.Kind != KindWarning || n.Message != "No cloth found with name 'Hat'" {
			t.Fatalf("notice=%+v", n)
		}
		if res.Form != form {
			t.Fatalf("form=%+v want preserved", res.Form)
		}
		if len(mustItems(t, st)) != 1 {
			t.Fatalf("store mutated")
		}
	})

	t.Run("blank name ignores price", func(t *testing.T) {
		st := NewMemStore()
		seed(t, st, Item{Name: "Shirt", Price: 1})

		res := Delete(ctx, st, Form{Name: " ", Price: "1"})

		n := mustNotice(t, res)
		if n.Kind != KindError || n.Message != "Enter name to delete" {
			t.Fatalf("notice=%+v", n)
		}
		if len(mustItems(t, st)) != 1 {
			t.Fatalf("store mutated")
		}
	})
}

func TestRoundTrip(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	res := Add(ctx, st, Form{Name: "Shirt", Price: "499.0"})
	if text := Text(res.Listing.Items); !strings.Contains(text, "Shirt") || !strings.Contains(text, "499.0") {
		t.Fatalf("after add: %q", text)
	}

	Update(ctx, st, Form{Name: "Shirt", Price: "599.0"})
	text := Text(View(ctx, st, Form{}).Listing.Items)
	if !strings.Contains(text, "599.0") || strings.Contains(text, "499.0") {
		t.Fatalf("after update: %q", text)
	}

	Delete(ctx, st, Form{Name: "Shirt"})
	if rows := Rows(View(ctx, st, Form{}).Listing.Items); len(rows) != 0 {
		t.Fatalf("after delete rows=%+v", rows)
	}
}

func TestStoreFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("generic error", func(t *testing.T) {
		st := newStub()
		st.insertErr = boom
		form := Form{Name: "Shirt", Price: "1"}

		res := Add(ctx, st, form)

		n := mustNotice(t, res)
		if n.Kind != KindFailure || !errors.Is(n.Err, boom) {
			t.Fatalf("notice=%+v", n)
		}
		if res.Form != form {
			t.Fatalf("form not preserved")
		}
		if strings.Contains(n.Message, "boom") {
			t.Fatalf("cause leaked into message %q", n.Message)
		}
	})

	t.Run("unavailable", func(t *testing.T) {
		st := newStub()
		st.mutateErr = ErrUnavailable

		res := Delete(ctx, st, Form{Name: "Shirt"})

		if n := mustNotice(t, res); n.Kind != KindUnavailable {
			t.Fatalf("kind=%v", n.Kind)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		stub := newStub()
		stub.block = true
		st := WithTimeout(stub, 20*time.Millisecond)

		start := time.Now()
		res := Add(ctx, st, Form{Name: "Shirt", Price: "1"})

		if n := mustNotice(t, res); n.Kind != KindUnavailable {
			t.Fatalf("kind=%v err=%v", n.Kind, n.Err)
		}
		if time.Since(start) > 2*time.Second {
			t.Fatalf("timeout not applied")
		}
		if items, _ := stub.MemStore.FindAll(ctx); len(items) != 0 {
			t.Fatalf("store mutated: %+v", items)
		}
	})

	t.Run("refresh fails after mutation", func(t *testing.T) {
		st := newStub()
		st.findErr = boom

		res := Add(ctx, st, Form{Name: "Shirt", Price: "1"})

		if len(res.Notices) != 2 {
			t.Fatalf("notices=%+v want success and failure", res.Notices)
		}
		if res.Notices[0].Kind != KindInfo || res.Notices[1].Kind != KindFailure {
			t.Fatalf("kinds=%v,%v", res.Notices[0].Kind, res.Notices[1].Kind)
		}
		if res.Listing != nil {
			t.Fatalf("listing should be nil when refresh fails")
		}
	})

	t.Run("view failure", func(t *testing.T) {
		st := newStub()
		st.findErr = ErrUnavailable

		res := View(ctx, st, Form{})

		if n := mustNotice(t, res); n.Kind != KindUnavailable {
			t.Fatalf("kind=%v", n.Kind)
		}
		if res.Listing != nil {
			t.Fatalf("listing should be nil")
		}
	})
}
