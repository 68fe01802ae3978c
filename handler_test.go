package pjax

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"

	"github.com/partial-coffee/go-pjax/connector"
)

func TestMiddleware(t *testing.T) {
	probe := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPJAX(r) {
			_, _ = w.Write([]byte("partial:" + RequestedContainer(r)))
			return
		}
		_, _ = w.Write([]byte("full"))
	})

	handler := Middleware(connector.NewPJAX(nil))(probe)

	t.Run("full page load", func(t *testing.T) {
		is := is.New(t)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		is.Equal(w.Body.String(), "full")
		is.Equal(w.Header().Get("Vary"), "X-PJAX")
	})

	t.Run("pjax request", func(t *testing.T) {
		is := is.New(t)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-PJAX", "true")
		r.Header.Set("X-PJAX-Container", "#main")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		is.Equal(w.Body.String(), "partial:#main")
		is.Equal(w.Header().Get("X-PJAX-URL"), "/")
	})

	t.Run("nil connector defaults to pjax", func(t *testing.T) {
		is := is.New(t)

		handler := Middleware(nil)(probe)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-PJAX", "true")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		is.Equal(w.Body.String(), "partial:")
	})
}

func TestIsPJAXWithoutMiddleware(t *testing.T) {
	is := is.New(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	is.Equal(IsPJAX(r), false)

	r.Header.Set("X-PJAX", "true")
	is.Equal(IsPJAX(r), true)
}
