package rules_test

import (
	"testing"

	"github.com/scorekeep/scorekeep/internal/domain/refdata"
	"github.com/scorekeep/scorekeep/internal/domain/rules"
	"github.com/scorekeep/scorekeep/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

func context(direction refdata.Direction, metrics ...string) standings.RuleContext {
	return standings.RuleContext{
		Category: refdata.Category{
			ID:        "sprint",
			Direction: direction,
			MetricIDs: metrics,
		},
	}
}

func TestRegistry_RequireAllMetrics(t *testing.T) {
	Convey("Given the built-in registry", t, func() {
		reg := rules.NewRegistry()
		rc := context(refdata.Ascending, "run1", "run2")
		names := []string{rules.RequireAllMetrics}

		Convey("When a candidate scored every metric", func() {
			s, ok := reg.Apply(standings.PlayerStanding{PlayerID: "alice", ItemCount: 2, Score: 25}, names, rc)

			Convey("Then it passes unmodified", func() {
				So(ok, ShouldBeTrue)
				So(s.Score, ShouldEqual, 25)
			})
		})

		Convey("When a candidate scored fewer metrics", func() {
			_, ok := reg.Apply(standings.PlayerStanding{PlayerID: "bob", ItemCount: 1}, names, rc)

			Convey("Then it is vetoed", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a candidate somehow scored more metrics", func() {
			_, ok := reg.Apply(standings.PlayerStanding{PlayerID: "carol", ItemCount: 3}, names, rc)

			Convey("Then the strict equality vetoes it too", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the category has no assigned metrics", func() {
			s, ok := reg.Apply(standings.PlayerStanding{PlayerID: "dora", ItemCount: 0}, names, context(refdata.Ascending))

			Convey("Then the rule is a no-op", func() {
				So(ok, ShouldBeTrue)
				So(s.PlayerID, ShouldEqual, "dora")
			})
		})
	})
}

func TestRegistry_MoreItemsTrumpFewer(t *testing.T) {
	Convey("Given the built-in registry", t, func() {
		reg := rules.NewRegistry()
		names := []string{rules.MoreItemsTrumpFewer}

		Convey("When applied in a descending category", func() {
			s, ok := reg.Apply(standings.PlayerStanding{ItemCount: 2, Score: 25}, names, context(refdata.Descending, "run1", "run2"))

			Convey("Then the item weight is added", func() {
				So(ok, ShouldBeTrue)
				So(s.Score, ShouldEqual, 25+2*rules.WeightPerItem)
			})
		})

		Convey("When applied in an ascending category", func() {
			s, ok := reg.Apply(standings.PlayerStanding{ItemCount: 2, Score: 25}, names, context(refdata.Ascending, "run1", "run2"))

			Convey("Then the item weight is subtracted", func() {
				So(ok, ShouldBeTrue)
				So(s.Score, ShouldEqual, 25-2*rules.WeightPerItem)
			})
		})

		Convey("Then a two-item player always outranks a one-item player", func() {
			two, _ := reg.Apply(standings.PlayerStanding{ItemCount: 2, Score: 100}, names, context(refdata.Ascending, "run1", "run2"))
			one, _ := reg.Apply(standings.PlayerStanding{ItemCount: 1, Score: 10}, names, context(refdata.Ascending, "run1", "run2"))
			So(two.Score, ShouldBeLessThan, one.Score)
		})
	})
}

func TestRegistry_ChainBehavior(t *testing.T) {
	Convey("Given a registry with a custom rule", t, func() {
		reg := rules.NewRegistry()
		called := 0
		reg.Register("count-calls", func(s standings.PlayerStanding, _ standings.RuleContext) (standings.PlayerStanding, bool) {
			called++
			return s, true
		})

		Convey("When an unknown rule name appears in the chain", func() {
			_, ok := reg.Apply(standings.PlayerStanding{ItemCount: 1}, []string{"retired-rule", "count-calls"}, context(refdata.Ascending, "run1"))

			Convey("Then it is skipped silently and the chain continues", func() {
				So(ok, ShouldBeTrue)
				So(called, ShouldEqual, 1)
			})
		})

		Convey("When an earlier rule vetoes", func() {
			called = 0
			_, ok := reg.Apply(
				standings.PlayerStanding{ItemCount: 0},
				[]string{rules.RequireAllMetrics, "count-calls"},
				context(refdata.Ascending, "run1"),
			)

			Convey("Then later rules never run", func() {
				So(ok, ShouldBeFalse)
				So(called, ShouldEqual, 0)
			})
		})

		Convey("When registering a nil rule", func() {
			reg.Register("nil-rule", nil)
			_, ok := reg.Apply(standings.PlayerStanding{ItemCount: 1}, []string{"nil-rule"}, context(refdata.Ascending, "run1"))

			Convey("Then it is ignored", func() {
				So(ok, ShouldBeTrue)
			})
		})
	})
}
