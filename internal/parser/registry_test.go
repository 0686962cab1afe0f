package parser

import (
	"testing"

	"github.com/brogergvhs/bookd/internal/source"
	"github.com/brogergvhs/bookd/internal/ui"
	. "github.com/smartystreets/goconvey/convey"
)

func stubFactory(name string) Factory {
	return func(cfg *source.Config, fetch Fetcher, log *ui.Logger) (Parser, error) {
		return NewBase(cfg, fetch, log)
	}
}

func TestRegister(t *testing.T) {
	Convey("Register", t, func() {
		r := NewRegistry()

		Convey("Accepts distinct names and lists them in order", func() {
			So(r.Register(Registration{Name: "alpha", New: stubFactory("alpha")}), ShouldBeNil)
			So(r.Register(Registration{Name: "beta", New: stubFactory("beta")}), ShouldBeNil)
			So(r.Names(), ShouldResemble, []string{"alpha", "beta"})
		})

		Convey("Rejects a duplicate name", func() {
			So(r.Register(Registration{Name: "alpha", New: stubFactory("alpha")}), ShouldBeNil)
			So(r.Register(Registration{Name: "alpha", New: stubFactory("alpha")}), ShouldNotBeNil)
		})

		Convey("Names differing only in case or separators collide", func() {
			So(r.Register(Registration{Name: "My Source", New: stubFactory("a")}), ShouldBeNil)
			So(r.Register(Registration{Name: "my-source", New: stubFactory("b")}), ShouldNotBeNil)
		})

		Convey("Rejects an empty name and a nil factory", func() {
			So(r.Register(Registration{Name: "", New: stubFactory("x")}), ShouldNotBeNil)
			So(r.Register(Registration{Name: "x"}), ShouldNotBeNil)
		})

		Convey("MustRegister panics on error", func() {
			So(func() { r.MustRegister(Registration{Name: ""}) }, ShouldPanic)
		})
	})
}

func TestForURL(t *testing.T) {
	Convey("ForURL", t, func() {
		r := NewRegistry()
		r.MustRegister(Registration{
			Name:    "alpha",
			Domains: []string{"www.alpha.test", "alpha.test"},
			Keyword: "alpha",
			New:     stubFactory("alpha"),
		})
		r.MustRegister(Registration{
			Name:    "beta",
			Keyword: "beta",
			New:     stubFactory("beta"),
		})

		Convey("Exact hostname ownership wins", func() {
			reg, match := r.ForURL("https://www.alpha.test/book/1")
			So(match, ShouldEqual, MatchExact)
			So(reg.Name, ShouldEqual, "alpha")
		})

		Convey("Fuzzy keyword containment is the fallback tier", func() {
			reg, match := r.ForURL("https://m.beta-mirror.net/book/1")
			So(match, ShouldEqual, MatchFuzzy)
			So(reg.Name, ShouldEqual, "beta")
		})

		Convey("Exact is consulted for every registration before any fuzzy test", func() {
			// alpha5.test contains "alpha" fuzzily, but beta owns it exactly.
			r2 := NewRegistry()
			r2.MustRegister(Registration{Name: "alpha", Keyword: "alpha", New: stubFactory("alpha")})
			r2.MustRegister(Registration{Name: "beta", Domains: []string{"alpha5.test"}, New: stubFactory("beta")})

			reg, match := r2.ForURL("https://alpha5.test/x")
			So(match, ShouldEqual, MatchExact)
			So(reg.Name, ShouldEqual, "beta")
		})

		Convey("No match is MatchNone, not an error", func() {
			_, match := r.ForURL("https://unrelated.example/book")
			So(match, ShouldEqual, MatchNone)
		})

		Convey("The same URL always resolves the same way", func() {
			first, m1 := r.ForURL("https://www.alpha.test/book/1")
			second, m2 := r.ForURL("https://www.alpha.test/book/1")
			So(m1, ShouldEqual, m2)
			So(first.Name, ShouldEqual, second.Name)
		})

		Convey("CanHandle overrides the keyword test", func() {
			r3 := NewRegistry()
			r3.MustRegister(Registration{
				Name:      "custom",
				Keyword:   "nevermatches",
				CanHandle: func(rawURL string) bool { return rawURL == "https://odd.site/special" },
				New:       stubFactory("custom"),
			})

			_, match := r3.ForURL("https://odd.site/special")
			So(match, ShouldEqual, MatchFuzzy)
			_, match = r3.ForURL("https://odd.site/other")
			So(match, ShouldEqual, MatchNone)
		})
	})
}

func TestForSource(t *testing.T) {
	Convey("ForSource", t, func() {
		r := NewRegistry()

		built := false
		r.MustRegister(Registration{
			Name: "special",
			New: func(cfg *source.Config, fetch Fetcher, log *ui.Logger) (Parser, error) {
				built = true
				return NewBase(cfg, fetch, log)
			},
		})

		cfg := testConfig()

		Convey("A registered name builds through its factory", func() {
			_, err := r.ForSource("special", cfg, fakeFetcher{}, nil)
			So(err, ShouldBeNil)
			So(built, ShouldBeTrue)
		})

		Convey("Lookup normalizes the way source ids do", func() {
			_, err := r.ForSource("SPE CIAL", cfg, fakeFetcher{}, nil)
			So(err, ShouldBeNil)
			So(built, ShouldBeTrue)
		})

		Convey("An unregistered name falls back to the generic parser", func() {
			p, err := r.ForSource("unknown", cfg, fakeFetcher{}, nil)
			So(err, ShouldBeNil)
			So(p, ShouldNotBeNil)
			So(built, ShouldBeFalse)
		})
	})
}
