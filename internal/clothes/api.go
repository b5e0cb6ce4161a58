package clothes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"ClothesStore/pkg/kit"
)

const maxAPIBody = 1 << 20

// priceText keeps the price as typed. JSON numbers and strings are both
// accepted so that validation stays in the actions.
type priceText string

func (p *priceText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = priceText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = priceText(n.String())
	return nil
}

type addReq struct {
	Name  string    `json:"name"`
	Price priceText `json:"price"`
}

type updateReq struct {
	Price priceText `json:"price"`
}

type noticeResp struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Items   []Item `json:"items,omitempty"`
}

func (s *Server) apiRoutes(r chi.Router) {
	r.Get("/", s.apiList)

	r.Group(func(mr chi.Router) {
		if s.Limit != nil {
			mr.Use(s.Limit)
		}
		mr.Post("/", s.apiAdd)
		mr.Put("/{name}", s.apiUpdate)
		mr.Delete("/{name}", s.apiDelete)
	})
}

func (s *Server) apiList(w http.ResponseWriter, r *http.Request) {
	res := View(r.Context(), s.Store, Form{})
	s.logResult(r, "view", res)
	if res.Listing == nil {
		s.writeNotice(w, r, res, http.StatusOK)
		return
	}
	kit.WriteJSON(w, http.StatusOK, res.Listing.Items)
}

func (s *Server) apiAdd(w http.ResponseWriter, r *http.Request) {
	var req addReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	res := Add(r.Context(), s.Store, Form{Name: req.Name, Price: string(req.Price)})
	s.logResult(r, "add", res)
	s.writeNotice(w, r, res, http.StatusCreated)
}

func (s *Server) apiUpdate(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad name", nil)
		return
	}

	var req updateReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	res := Update(r.Context(), s.Store, Form{Name: name, Price: string(req.Price)})
	s.logResult(r, "update", res)
	s.writeNotice(w, r, res, http.StatusOK)
}

func (s *Server) apiDelete(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad name", nil)
		return
	}

	res := Delete(r.Context(), s.Store, Form{Name: name})
	s.logResult(r, "delete", res)
	s.writeNotice(w, r, res, http.StatusOK)
}

func (s *Server) writeNotice(w http.ResponseWriter, r *http.Request, res Result, ok int) {
	n, _ := res.Notice()
	status := statusFor(res, ok)
	if status >= http.StatusBadRequest {
		kit.WriteError(w, r, status, n.Message, map[string]any{"kind": n.Kind.String(), "title": n.Title})
		return
	}

	out := noticeResp{Kind: n.Kind.String(), Title: n.Title, Message: n.Message}
	if res.Listing != nil {
		out.Items = res.Listing.Items
	}
	kit.WriteJSON(w, status, out)
}

// nameParam returns the {name} segment decoded exactly once. chi matches on
// RawPath when the request kept one (names holding "/" and similar), so only
// then is the segment still escaped.
func nameParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxAPIBody)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after json object")
	}
	return nil
}
