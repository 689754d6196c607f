package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/okian/freshpoint/internal/adapters/opendata"
	service "github.com/okian/freshpoint/internal/app"
	"github.com/okian/freshpoint/internal/domain/text"
	"github.com/okian/freshpoint/pkg/logger"
	"github.com/okian/freshpoint/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given errors of every kind", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{NewKind("op", ErrMissingBody), http.StatusBadRequest, "missing_body"},
			{WrapKind("op", ErrBadRequest, errors.New("bad id")), http.StatusBadRequest, "bad_request"},
			{fmt.Errorf("join: %w", text.ErrTypeMismatch), http.StatusUnprocessableEntity, "type_mismatch"},
			{fmt.Errorf("%w: 9", service.ErrRecordNotFound), http.StatusNotFound, "not_found"},
			{service.ErrNegativeIndex, http.StatusBadRequest, "bad_request"},
			{&opendata.Error{Op: "fetch", Err: errors.New("dial")}, http.StatusBadGateway, "upstream_failure"},
			{fmt.Errorf("%w: index.html", ErrResourceUnavailable), http.StatusInternalServerError, "resource_unavailable"},
			{WrapKind("op", ErrBodyTooLarge, &http.MaxBytesError{Limit: 1}), http.StatusRequestEntityTooLarge, "body_too_large"},
			{errors.New("something else"), http.StatusInternalServerError, "internal_error"},
		}

		for _, tc := range cases {
			Convey("Then "+tc.err.Error()+" maps to "+tc.code, func() {
				c := classify(tc.err)
				So(c.status, ShouldEqual, tc.status)
				So(c.code, ShouldEqual, tc.code)
			})
		}
	})

	Convey("Given a 5xx error", t, func() {
		err := fmt.Errorf("dial tcp 10.0.0.1:443: %w", errors.New("refused"))

		Convey("Then the public message hides the cause", func() {
			So(publicMessage(classify(err), err), ShouldEqual, "Internal Server Error")
		})
	})

	Convey("Given 4xx errors wrapped with operation names", t, func() {
		cases := []struct {
			err  error
			want string
		}{
			{NewKind("api.post_comment", ErrMissingBody), "no request body"},
			{WrapKind("api.post_join", ErrBadRequest, Detail("body is not valid JSON", errors.New("json: unexpected end"))), "bad request: body is not valid JSON"},
			{WrapKind("api.post_comment", ErrBadRequest, errors.New("unexpected EOF")), "bad request"},
			{fmt.Errorf("api.post_join: %w", text.ErrTypeMismatch), text.ErrTypeMismatch.Error()},
			{fmt.Errorf("%w: index 9, 5 records available", service.ErrRecordNotFound), service.ErrRecordNotFound.Error()},
			{WrapKind("api.post_comment", ErrBodyTooLarge, &http.MaxBytesError{Limit: 64}), "request body too large"},
		}

		for _, tc := range cases {
			Convey("Then "+tc.err.Error()+" is shown as "+tc.want, func() {
				msg := publicMessage(classify(tc.err), tc.err)
				So(msg, ShouldEqual, tc.want)
				So(msg, ShouldNotContainSubstring, "api.")
			})
		}
	})
}

func TestKindError(t *testing.T) {
	Convey("Given a wrapped kind", t, func() {
		cause := errors.New("eof")
		err := WrapKind("api.post_join", ErrBadRequest, cause)

		Convey("Then both kind and cause are reachable", func() {
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.post_join: bad request: eof")
		})

		Convey("And a bare kind prints without a cause", func() {
			So(NewKind("api.post_comment", ErrMissingBody).Error(), ShouldEqual, "api.post_comment: no request body")
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given the request id middleware", t, func() {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		}))

		Convey("When the client sends no id", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

			Convey("Then a UUID is generated and echoed", func() {
				So(seen, ShouldHaveLength, 36)
				So(w.Header().Get(RequestIDHeader), ShouldEqual, seen)
			})
		})

		Convey("When the client sends an id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.Header.Set(RequestIDHeader, "trace-42")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			So(seen, ShouldEqual, "trace-42")
			So(w.Header().Get(RequestIDHeader), ShouldEqual, "trace-42")
		})
	})
}

func TestRecoverer(t *testing.T) {
	Convey("Given a handler that panics", t, func() {
		if err := logger.Init(); err != nil {
			panic(err)
		}
		_ = logger.SetLevelString("error")
		s := NewServer(nil)
		h := Recoverer(logger.Get(), s.handleError)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		Convey("When it is served", func() {
			w := httptest.NewRecorder()
			So(func() { h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", http.NoBody)) }, ShouldNotPanic)

			Convey("Then a 500 internal_error is written", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, `"code":"internal_error"`)
			})
		})
	})
}

func TestChain_PanicIsLoggedAndCounted(t *testing.T) {
	Convey("Given the full middleware chain and a route that panics", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithWriter(&buf)), ShouldBeNil)
		So(logger.SetLevelString("info"), ShouldBeNil)
		defer func() {
			_ = logger.Init()
			_ = logger.SetLevelString("error")
		}()

		s := NewServer(nil, WithLogger(logger.Get()))
		r := chi.NewRouter()
		r.Use(s.chain()...)
		r.Get("/panics", func(http.ResponseWriter, *http.Request) { panic("boom") })

		before := requestCount("/panics", "500")

		Convey("When it is served", func() {
			w := httptest.NewRecorder()
			So(func() { r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panics", http.NoBody)) }, ShouldNotPanic)

			Convey("Then the client gets 500 internal_error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, `"code":"internal_error"`)
			})

			Convey("And the access log records the 500", func() {
				line := accessLine(buf.String(), "/panics")
				So(line, ShouldNotBeEmpty)
				So(line, ShouldContainSubstring, "status=500")
			})

			Convey("And the request counter records the 500", func() {
				So(requestCount("/panics", "500"), ShouldEqual, before+1)
			})
		})
	})
}

func accessLine(out, path string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "msg=request") && strings.Contains(line, "path="+path) {
			return line
		}
	}
	return ""
}

func requestCount(route, status string) float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, mf := range families {
		if mf.GetName() != "freshpoint_server_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["route"] == route && labels["status_code"] == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestResponseWriter(t *testing.T) {
	Convey("Given a wrapped writer", t, func() {
		rec := httptest.NewRecorder()
		rw := wrapResponseWriter(rec)

		Convey("When the handler only writes a body", func() {
			_, _ = rw.Write([]byte("abc"))

			So(rw.statusCode, ShouldEqual, http.StatusOK)
			So(rw.written, ShouldEqual, 3)
		})

		Convey("When the handler sets a status", func() {
			rw.WriteHeader(http.StatusTeapot)

			So(rw.statusCode, ShouldEqual, http.StatusTeapot)
			So(rec.Code, ShouldEqual, http.StatusTeapot)
		})
	})
}
