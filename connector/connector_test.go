package connector

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
)

func TestPJAX(t *testing.T) {
	conn := NewPJAX(nil)

	t.Run("full page load", func(t *testing.T) {
		is := is.New(t)

		r := httptest.NewRequest(http.MethodGet, "/", nil)

		is.Equal(conn.IsPartial(r), false)
		is.Equal(conn.ContainerValue(r), "")
	})

	t.Run("pjax request", func(t *testing.T) {
		is := is.New(t)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-PJAX", "true")
		r.Header.Set("X-PJAX-Container", "#main")

		is.Equal(conn.IsPartial(r), true)
		is.Equal(conn.ContainerValue(r), "#main")
		is.Equal(conn.RequestHeader(), "X-PJAX")
		is.Equal(conn.ContainerHeader(), "X-PJAX-Container")
	})

	t.Run("response headers", func(t *testing.T) {
		is := is.New(t)

		conn := NewPJAX(&Config{Version: "v1"})
		r := httptest.NewRequest(http.MethodGet, "/items?page=2", nil)
		r.Header.Set("X-PJAX", "true")
		w := httptest.NewRecorder()

		conn.WriteResponseHeaders(w, r)

		is.Equal(w.Header().Get("X-PJAX-URL"), "/items?page=2")
		is.Equal(w.Header().Get("X-PJAX-Version"), "v1")
	})

	t.Run("query fallback", func(t *testing.T) {
		is := is.New(t)

		conn := NewPJAX(&Config{UseURLQuery: true})
		r := httptest.NewRequest(http.MethodGet, "/?_pjax=%23main", nil)

		is.Equal(conn.ContainerValue(r), "#main")
	})
}

func TestHTMX(t *testing.T) {
	conn := NewHTMX(nil)

	t.Run("hx-request", func(t *testing.T) {
		is := is.New(t)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("HX-Request", "true")
		r.Header.Set("HX-Target", "main")

		is.Equal(conn.IsPartial(r), true)
		is.Equal(conn.ContainerValue(r), "main")
	})

	t.Run("boosted", func(t *testing.T) {
		is := is.New(t)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("HX-Boosted", "true")

		is.Equal(conn.IsPartial(r), true)
	})

	t.Run("history restore needs the full page", func(t *testing.T) {
		is := is.New(t)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("HX-Request", "true")
		r.Header.Set("HX-History-Restore-Request", "true")

		is.Equal(conn.IsPartial(r), false)
	})
}

func TestTurbo(t *testing.T) {
	is := is.New(t)

	conn := NewTurbo(nil)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	is.Equal(conn.IsPartial(r), false)

	r.Header.Set("Turbo-Frame", "sidebar")
	is.Equal(conn.IsPartial(r), true)
	is.Equal(conn.ContainerValue(r), "sidebar")
}

func TestUnpoly(t *testing.T) {
	is := is.New(t)

	conn := NewUnpoly(nil)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	is.Equal(conn.IsPartial(r), false)

	r.Header.Set("X-Up-Target", ".content")
	is.Equal(conn.IsPartial(r), true)
	is.Equal(conn.ContainerValue(r), ".content")

	w := httptest.NewRecorder()
	conn.WriteResponseHeaders(w, r)
	is.Equal(w.Header().Get("X-Up-Target"), ".content")
}
