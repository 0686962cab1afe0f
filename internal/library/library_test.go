package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brogergvhs/bookd/internal/parser"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestSaveBook(t *testing.T) {
	Convey("SaveBook", t, func() {
		dir := NewDir(t.TempDir())

		info := &parser.BookInfo{
			Title:     "The Long Road",
			Author:    "Carol",
			SourceURL: "https://books.test/book/1/",
		}
		chapters := []parser.ChapterRef{
			{Title: "One", URL: "https://books.test/c/1.html", Ordinal: 0},
			{Title: "Two", URL: "https://books.test/c/2.html", Ordinal: 1},
		}

		Convey("Writes one YAML file per book and round-trips", func() {
			path, err := dir.SaveBook(info, "testsrc", chapters)
			So(err, ShouldBeNil)
			So(filepath.Base(path), ShouldEqual, "The_Long_Road.yaml")

			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			var rec bookRecord
			So(yaml.Unmarshal(data, &rec), ShouldBeNil)
			So(rec.Title, ShouldEqual, "The Long Road")
			So(rec.SourceID, ShouldEqual, "testsrc")
			So(rec.Chapters, ShouldHaveLength, 2)
			So(rec.Chapters[1].Ordinal, ShouldEqual, 1)
		})

		Convey("A book without a title is rejected", func() {
			_, err := dir.SaveBook(&parser.BookInfo{}, "testsrc", nil)
			So(err, ShouldNotBeNil)
		})

		Convey("Re-saving overwrites the existing record", func() {
			_, err := dir.SaveBook(info, "testsrc", chapters)
			So(err, ShouldBeNil)

			path, err := dir.SaveBook(info, "othersrc", chapters[:1])
			So(err, ShouldBeNil)

			data, _ := os.ReadFile(path)
			var rec bookRecord
			So(yaml.Unmarshal(data, &rec), ShouldBeNil)
			So(rec.SourceID, ShouldEqual, "othersrc")
			So(rec.Chapters, ShouldHaveLength, 1)
		})
	})
}

func TestSanitize(t *testing.T) {
	Convey("sanitize", t, func() {
		So(sanitize("The Long Road"), ShouldEqual, "The_Long_Road")
		So(sanitize("A/B\\C.D"), ShouldEqual, "A_B_C_D")
		So(sanitize("(Extra) - Title"), ShouldEqual, "Extra_Title")
		So(sanitize("斗破苍穹"), ShouldEqual, "斗破苍穹")
		So(sanitize("__lots___of____runs__"), ShouldEqual, "lots_of_runs")
	})
}
