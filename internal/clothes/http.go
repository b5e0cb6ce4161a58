package clothes

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ClothesStore/pkg/kit"
)

const (
	maxFormBody  = 1 << 16
	readyTimeout = 1 * time.Second
)

// Action is one button of the window.
type Action func(ctx context.Context, st Store, f Form) Result

type Server struct {
	Store   Store
	Log     *zap.Logger
	Variant Variant

	// Limit guards the routes that mutate the store. Nil means no limit.
	Limit func(http.Handler) http.Handler
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Get("/", s.window)
	r.Post("/view", s.action("view", View))

	r.Group(func(mr chi.Router) {
		if s.Limit != nil {
			mr.Use(s.Limit)
		}
		mr.Post("/add", s.action("add", Add))
		mr.Post("/update", s.action("update", Update))
		mr.Post("/delete", s.action("delete", Delete))
	})

	r.Route("/api/clothes", s.apiRoutes)

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) window(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, Window{Variant: s.Variant})
}

func (s *Server) action(name string, fn Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
		if err := r.ParseForm(); err != nil {
			s.render(w, r, http.StatusBadRequest, Window{
				Variant: s.Variant,
				Notices: []Notice{errorNotice("The form could not be read.")},
			})
			return
		}

		f := Form{Name: r.PostFormValue("name"), Price: r.PostFormValue("price")}
		res := fn(r.Context(), s.Store, f)
		s.logResult(r, name, res)

		listing := res.Listing
		if listing == nil {
			listing = carriedListing(r.PostFormValue("listing"))
		}

		s.render(w, r, statusFor(res, http.StatusOK), Window{
			Variant: s.Variant,
			Form:    res.Form,
			Notices: res.Notices,
			Listing: listing,
		})
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, win Window) {
	var buf bytes.Buffer
	if err := win.Render(&buf); err != nil {
		s.logger().Error("render window failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) logResult(r *http.Request, action string, res Result) {
	for _, n := range res.Notices {
		if n.Err == nil {
			continue
		}
		s.logger().Error("store call failed",
			zap.String("action", action),
			zap.String("kind", n.Kind.String()),
			zap.String("request_id", kit.RequestID(r)),
			zap.Error(n.Err),
		)
	}
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func statusFor(res Result, ok int) int {
	n, found := res.Notice()
	if !found {
		return http.StatusOK
	}
	switch n.Kind {
	case KindInfo:
		return ok
	case KindWarning:
		return http.StatusNotFound
	case KindError:
		return http.StatusUnprocessableEntity
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
