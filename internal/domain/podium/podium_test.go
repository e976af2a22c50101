package podium_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/scorekeep/scorekeep/internal/domain/event"
	"github.com/scorekeep/scorekeep/internal/domain/podium"
	"github.com/scorekeep/scorekeep/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func remove(id string, offset time.Duration, player string) podium.Event {
	return podium.Event{
		ID: event.ID(id), TS: base.Add(offset),
		Type:       podium.TypeRemovePlayer,
		DivisionID: "open", CategoryID: "sprint", PlayerID: player,
	}
}

func restore(id string, offset time.Duration, player string) podium.Event {
	e := remove(id, offset, player)
	e.Type = podium.TypeRestorePlayer
	return e
}

func sprintStandings(players ...string) []standings.DivisionStanding {
	entries := make([]standings.PlayerStanding, 0, len(players))
	for i, playerID := range players {
		entries = append(entries, standings.PlayerStanding{
			PlayerID: playerID,
			Rank:     i + 1,
			Score:    float64(10 + i),
		})
	}
	return []standings.DivisionStanding{{
		DivisionID: "open",
		Name:       "Open",
		Categories: []standings.CategoryStanding{{
			CategoryID: "sprint",
			Name:       "Sprint",
			Entries:    entries,
		}},
	}}
}

func TestAdjustments_Fold(t *testing.T) {
	Convey("Given a podium event log", t, func() {
		events := []podium.Event{
			remove("p2", time.Minute, "bob"),
			remove("p1", 0, "alice"),
			restore("p3", 2*time.Minute, "alice"),
		}

		Convey("When folding the log", func() {
			adj := podium.Fold(events)

			Convey("Then the projection reflects (ts, id) order", func() {
				So(adj.Removed("open", "sprint", "bob"), ShouldBeTrue)
				So(adj.Removed("open", "sprint", "alice"), ShouldBeFalse)
			})

			Convey("And folding again is idempotent", func() {
				So(podium.Fold(events), ShouldResemble, adj)
			})
		})

		Convey("When removing an already-removed player", func() {
			adj := podium.Fold(append(events, remove("p4", 3*time.Minute, "bob")))

			Convey("Then the duplicate removal is a no-op", func() {
				So(adj.Removed("open", "sprint", "bob"), ShouldBeTrue)
			})
		})

		Convey("When restoring a player who was never removed", func() {
			adj := podium.Fold([]podium.Event{restore("p1", 0, "carol")})

			Convey("Then nothing changes", func() {
				So(adj.Removed("open", "sprint", "carol"), ShouldBeFalse)
			})
		})
	})
}

func TestAdjustments_Clone(t *testing.T) {
	Convey("Given a populated projection", t, func() {
		adj := podium.Fold([]podium.Event{remove("p1", 0, "alice")})

		Convey("When mutating a clone", func() {
			clone := adj.Clone()
			clone.Apply(remove("p2", time.Minute, "bob"))

			Convey("Then the original is untouched", func() {
				So(adj.Removed("open", "sprint", "bob"), ShouldBeFalse)
				So(clone.Removed("open", "sprint", "bob"), ShouldBeTrue)
				So(clone.Removed("open", "sprint", "alice"), ShouldBeTrue)
			})
		})
	})
}

func TestDerive(t *testing.T) {
	Convey("Given standings with four ranked players", t, func() {
		divs := sprintStandings("alice", "bob", "carol", "dora")

		Convey("When the second-ranked player is removed", func() {
			adj := podium.Fold([]podium.Event{remove("p1", 0, "bob")})
			curated := podium.Derive(divs, adj, 3)

			Convey("Then survivors re-rank densely and the list truncates", func() {
				entries := curated[0].Categories[0].Entries
				So(entries, ShouldHaveLength, 3)
				So(entries[0].PlayerID, ShouldEqual, "alice")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].PlayerID, ShouldEqual, "carol")
				So(entries[1].Rank, ShouldEqual, 2)
				So(entries[2].PlayerID, ShouldEqual, "dora")
				So(entries[2].Rank, ShouldEqual, 3)
			})

			Convey("And the input standings are not mutated", func() {
				So(divs[0].Categories[0].Entries[1].PlayerID, ShouldEqual, "bob")
				So(divs[0].Categories[0].Entries[1].Rank, ShouldEqual, 2)
			})
		})

		Convey("When the player is removed and then restored", func() {
			adj := podium.Fold([]podium.Event{
				remove("p1", 0, "bob"),
				restore("p2", time.Minute, "bob"),
			})
			curated := podium.Derive(divs, adj, 0)
			reference := podium.Derive(divs, podium.NewAdjustments(), 0)

			Convey("Then the podium matches the unadjusted derivation", func() {
				So(curated, ShouldResemble, reference)
			})
		})

		Convey("When no depth is configured anywhere", func() {
			bare := sprintStandings("alice", "bob", "carol", "dora")
			bare[0].Categories[0].Depth = 0
			curated := podium.Derive(bare, podium.NewAdjustments(), 0)

			Convey("Then the full list is kept", func() {
				So(curated[0].Categories[0].Entries, ShouldHaveLength, 4)
			})
		})

		Convey("When the category carries its own depth", func() {
			deep := sprintStandings("alice", "bob", "carol", "dora")
			deep[0].Categories[0].Depth = 2
			curated := podium.Derive(deep, podium.NewAdjustments(), 3)

			Convey("Then the category depth wins over the default", func() {
				So(curated[0].Categories[0].Entries, ShouldHaveLength, 2)
			})
		})

		Convey("When removals affect a different division", func() {
			other := podium.Fold([]podium.Event{{
				ID: event.ID("p1"), TS: base,
				Type:       podium.TypeRemovePlayer,
				DivisionID: "masters", CategoryID: "sprint", PlayerID: "alice",
			}})
			curated := podium.Derive(divs, other, 0)

			Convey("Then this division is unaffected", func() {
				So(curated[0].Categories[0].Entries, ShouldHaveLength, 4)
			})
		})
	})
}

func TestAdjustments_Codec(t *testing.T) {
	Convey("Given a populated projection", t, func() {
		adj := podium.Fold([]podium.Event{
			remove("p1", 0, "bob"),
			remove("p2", time.Minute, "alice"),
		})

		Convey("When marshaled to JSON", func() {
			data, err := json.Marshal(adj)
			So(err, ShouldBeNil)

			Convey("Then the wire shape is stable with sorted players", func() {
				So(string(data), ShouldEqual, `{"removed":{"open":{"sprint":["alice","bob"]}}}`)
			})

			Convey("And decoding round-trips", func() {
				decoded := podium.Decode(data)
				So(decoded.Removed("open", "sprint", "alice"), ShouldBeTrue)
				So(decoded.Removed("open", "sprint", "bob"), ShouldBeTrue)
				So(decoded.Removed("open", "sprint", "carol"), ShouldBeFalse)
			})
		})

		Convey("When decoding empty or malformed input", func() {
			Convey("Then empty input yields empty adjustments", func() {
				So(podium.Decode(nil).Removed("open", "sprint", "bob"), ShouldBeFalse)
			})

			Convey("And malformed input yields empty adjustments", func() {
				So(podium.Decode([]byte("{not json")).Removed("open", "sprint", "bob"), ShouldBeFalse)
			})
		})
	})
}
