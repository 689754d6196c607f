package site

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSite_EmbeddedTree(t *testing.T) {
	Convey("Given the embedded site", t, func() {
		s := New(nil)

		Convey("When requesting the landing document", func() {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			w := httptest.NewRecorder()
			err := s.Index(w, req)

			Convey("Then index.html is served as HTML", func() {
				So(err, ShouldBeNil)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/html; charset=utf-8")
				So(w.Body.String(), ShouldContainSubstring, "Îlots de fraîcheur")
			})
		})

		Convey("When requesting the favicon", func() {
			req := httptest.NewRequest(http.MethodGet, "/favicon.ico", http.NoBody)
			w := httptest.NewRecorder()
			err := s.Favicon(w, req)

			Convey("Then PNG bytes are served", func() {
				So(err, ShouldBeNil)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
				So(strings.HasPrefix(w.Body.String(), "\x89PNG"), ShouldBeTrue)
			})
		})

		Convey("When requesting a public asset", func() {
			req := httptest.NewRequest(http.MethodGet, "/js/concatenateStrings.js", http.NoBody)
			w := httptest.NewRecorder()
			s.Assets().ServeHTTP(w, req)

			Convey("Then the file server returns it", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "concatenateStrings")
			})
		})

		Convey("When requesting a missing asset", func() {
			req := httptest.NewRequest(http.MethodGet, "/js/missing.js", http.NoBody)
			w := httptest.NewRecorder()
			s.Assets().ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSite_MissingDocuments(t *testing.T) {
	Convey("Given a public tree without index or favicon", t, func() {
		s := New(fstest.MapFS{
			"js/app.js": &fstest.MapFile{Data: []byte("// app")},
		})

		Convey("When requesting the landing document", func() {
			w := httptest.NewRecorder()
			err := s.Index(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

			Convey("Then ErrResourceUnavailable is returned and nothing is written", func() {
				So(errors.Is(err, ErrResourceUnavailable), ShouldBeTrue)
				So(w.Body.Len(), ShouldEqual, 0)
			})
		})

		Convey("When requesting the favicon", func() {
			w := httptest.NewRecorder()
			err := s.Favicon(w, httptest.NewRequest(http.MethodGet, "/favicon.ico", http.NoBody))

			So(errors.Is(err, ErrResourceUnavailable), ShouldBeTrue)
		})
	})
}

func TestSite_Head(t *testing.T) {
	Convey("Given a HEAD request for the landing document", t, func() {
		w := httptest.NewRecorder()
		err := New(nil).Index(w, httptest.NewRequest(http.MethodHead, "/", http.NoBody))

		Convey("Then headers are sent without a body", func() {
			So(err, ShouldBeNil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.Len(), ShouldEqual, 0)
		})
	})
}
