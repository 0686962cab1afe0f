package selector

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	. "github.com/smartystreets/goconvey/convey"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("Should drop blank paths", func() {
			So(Parse("", "  ").IsEmpty(), ShouldBeTrue)
			So(Parse("div.title").IsEmpty(), ShouldBeFalse)
		})
		Convey("Should split on the last @", func() {
			d := doc(t, `<a data-x="v@w" href="/b">t</a>`)
			v, ok := Parse("a@data-x").ExtractOne(d.Selection)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "v@w")
		})
		Convey("A bare @attr path reads off the current node", func() {
			d := doc(t, `<a href="/book/1">title</a>`)
			v, ok := Parse("@href").ExtractOne(d.Find("a"))
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "/book/1")
		})
	})
}

func TestExtract(t *testing.T) {
	Convey("Extract", t, func() {
		Convey("Text values are trimmed and empties skipped", func() {
			d := doc(t, `<div><span>  one </span><span>   </span><span>two</span></div>`)
			So(Parse("span").Extract(d.Selection), ShouldResemble, []string{"one", "two"})
		})

		Convey("Attribute paths read the attribute", func() {
			d := doc(t, `<a href="/a">x</a><a href="/b">y</a>`)
			So(Parse("a@href").Extract(d.Selection), ShouldResemble, []string{"/a", "/b"})
		})

		Convey("A missing selector yields empty results, not an error", func() {
			d := doc(t, `<div>text</div>`)
			So(Parse(".nope").Extract(d.Selection), ShouldBeEmpty)
			_, ok := Parse(".nope").ExtractOne(d.Selection)
			So(ok, ShouldBeFalse)
		})

		Convey("Fallback list: first path with a non-empty result wins", func() {
			d := doc(t, `<div class="b">second</div><div class="c">third</div>`)
			s := Parse(".a", ".b", ".c")
			So(s.Extract(d.Selection), ShouldResemble, []string{"second"})
		})

		Convey("A matching node with empty text falls through to the next path", func() {
			d := doc(t, `<div class="a">   </div><div class="b">real</div>`)
			v, ok := Parse(".a", ".b").ExtractOne(d.Selection)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "real")
		})

		Convey("Malformed HTML still parses leniently", func() {
			d := doc(t, `<div class="t">title<p>unclosed`)
			v, ok := Parse(".t").ExtractOne(d.Selection)
			So(ok, ShouldBeTrue)
			So(v, ShouldContainSubstring, "title")
		})
	})
}

func TestNodes(t *testing.T) {
	Convey("Nodes", t, func() {
		d := doc(t, `<ul id="list"><li>a</li><li>b</li></ul>`)

		Convey("Returns the first matching path's nodes", func() {
			So(Parse("#missing li", "#list li").Nodes(d.Selection).Length(), ShouldEqual, 2)
		})
		Convey("No match returns an empty selection", func() {
			So(Parse("#missing").Nodes(d.Selection).Length(), ShouldEqual, 0)
		})
	})
}
