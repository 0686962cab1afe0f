package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brogergvhs/bookd/internal/parser"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFetch(t *testing.T) {
	Convey("Client.Fetch", t, func() {
		Convey("Returns status, body and content type", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write([]byte("<html>ok</html>"))
			}))
			defer srv.Close()

			c, err := NewClient(Options{})
			So(err, ShouldBeNil)

			resp, err := c.Fetch(context.Background(), srv.URL)
			So(err, ShouldBeNil)
			So(resp.Status, ShouldEqual, 200)
			So(string(resp.Body), ShouldEqual, "<html>ok</html>")
			So(resp.ContentType, ShouldStartWith, "text/html")
		})

		Convey("Injects the User-Agent and cookie headers", func() {
			var gotUA, gotCookie string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUA = r.Header.Get("User-Agent")
				gotCookie = r.Header.Get("Cookie")
			}))
			defer srv.Close()

			c, err := NewClient(Options{UserAgent: "test-agent/1.0", Cookie: "session=abc"})
			So(err, ShouldBeNil)

			_, err = c.Fetch(context.Background(), srv.URL)
			So(err, ShouldBeNil)
			So(gotUA, ShouldEqual, "test-agent/1.0")
			So(gotCookie, ShouldEqual, "session=abc")
		})

		Convey("Retries 5xx responses before giving up", func() {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if hits.Add(1) < 3 {
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				_, _ = w.Write([]byte("recovered"))
			}))
			defer srv.Close()

			c, err := NewClient(Options{Retries: 3, Backoff: time.Millisecond})
			So(err, ShouldBeNil)

			resp, err := c.Fetch(context.Background(), srv.URL)
			So(err, ShouldBeNil)
			So(resp.Status, ShouldEqual, 200)
			So(hits.Load(), ShouldEqual, 3)
		})

		Convey("A dead endpoint is a FetchError", func() {
			c, err := NewClient(Options{Retries: 1, Backoff: time.Millisecond, Timeout: time.Second})
			So(err, ShouldBeNil)

			_, err = c.Fetch(context.Background(), "http://127.0.0.1:1/nope")
			var ferr *parser.FetchError
			So(errors.As(err, &ferr), ShouldBeTrue)
		})

		Convey("4xx responses are returned, not retried", func() {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusNotFound)
			}))
			defer srv.Close()

			c, err := NewClient(Options{Retries: 3, Backoff: time.Millisecond})
			So(err, ShouldBeNil)

			resp, err := c.Fetch(context.Background(), srv.URL)
			So(err, ShouldBeNil)
			So(resp.Status, ShouldEqual, 404)
			So(hits.Load(), ShouldEqual, 1)
		})
	})
}

func TestDecodeBody(t *testing.T) {
	Convey("decodeBody", t, func() {
		Convey("Decodes per the configured label", func() {
			// GBK for 中文
			gbk := []byte{0xD6, 0xD0, 0xCE, 0xC4}
			So(string(decodeBody(gbk, "", "gbk")), ShouldEqual, "中文")
		})

		Convey("UTF-8 labels pass the body through", func() {
			So(string(decodeBody([]byte("中文"), "text/html", "utf-8")), ShouldEqual, "中文")
			So(string(decodeBody([]byte("中文"), "text/html", "")), ShouldEqual, "中文")
		})

		Convey("Without a label the content type drives the decode", func() {
			gbk := []byte{0xD6, 0xD0}
			So(string(decodeBody(gbk, "text/html; charset=gbk", "")), ShouldEqual, "中")
		})

		Convey("An unknown label leaves the body untouched", func() {
			body := []byte("as-is")
			So(decodeBody(body, "", "no-such-encoding"), ShouldResemble, body)
		})
	})
}

func TestForEncoding(t *testing.T) {
	Convey("ForEncoding", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte{0xD6, 0xD0, 0xCE, 0xC4}) // GBK 中文
		}))
		defer srv.Close()

		c, err := NewClient(Options{})
		So(err, ShouldBeNil)

		resp, err := c.ForEncoding("gbk").Fetch(context.Background(), srv.URL)
		So(err, ShouldBeNil)
		So(string(resp.Body), ShouldEqual, "中文")
	})
}

func TestJoinCookies(t *testing.T) {
	Convey("joinCookies", t, func() {
		Convey("Inline cookies pass through trimmed", func() {
			So(joinCookies("  a=1  ", ""), ShouldEqual, "a=1")
		})

		Convey("The first non-empty file line is appended", func() {
			path := filepath.Join(t.TempDir(), "cookies.txt")
			So(os.WriteFile(path, []byte("\n\nb=2; c=3\nignored=4\n"), 0644), ShouldBeNil)

			So(joinCookies("", path), ShouldEqual, "b=2; c=3")
			So(joinCookies("a=1", path), ShouldEqual, "a=1; b=2; c=3")
		})

		Convey("A missing file is ignored", func() {
			So(joinCookies("a=1", "/no/such/file"), ShouldEqual, "a=1")
		})
	})
}

func TestPickUserAgent(t *testing.T) {
	Convey("PickUserAgent", t, func() {
		So(PickUserAgent("custom"), ShouldEqual, "custom")
		So(PickUserAgent(""), ShouldContainSubstring, "Mozilla/5.0")
	})
}
