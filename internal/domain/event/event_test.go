package event_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scorekeep/scorekeep/internal/domain/event"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func TestNewID(t *testing.T) {
	Convey("Given freshly generated ids", t, func() {
		first := event.NewID()
		second := event.NewID()

		Convey("Then each id is a valid UUID", func() {
			_, err := uuid.Parse(string(first))
			So(err, ShouldBeNil)
		})

		Convey("And ids compare in creation order", func() {
			So(first, ShouldBeLessThan, second)
		})
	})
}

func TestSortBatch(t *testing.T) {
	Convey("Given a batch delivered out of order", t, func() {
		batch := []event.Event{
			event.ItemStateChanged{ID: "c", TS: base.Add(2 * time.Second), PlayerID: "alice"},
			event.ScorecardVoided{ID: "b", TS: base.Add(time.Second), PlayerID: "bob"},
			event.ItemStateChanged{ID: "a", TS: base, PlayerID: "alice"},
		}

		Convey("When sorting", func() {
			event.SortBatch(batch)

			Convey("Then events order by timestamp", func() {
				So(batch[0].EventID(), ShouldEqual, event.ID("a"))
				So(batch[1].EventID(), ShouldEqual, event.ID("b"))
				So(batch[2].EventID(), ShouldEqual, event.ID("c"))
			})
		})
	})

	Convey("Given events sharing a timestamp", t, func() {
		batch := []event.Event{
			event.ItemStateChanged{ID: "z", TS: base},
			event.ItemStateChanged{ID: "a", TS: base},
		}

		Convey("When sorting", func() {
			event.SortBatch(batch)

			Convey("Then the id breaks the tie", func() {
				So(batch[0].EventID(), ShouldEqual, event.ID("a"))
				So(batch[1].EventID(), ShouldEqual, event.ID("z"))
			})
		})
	})
}

func TestCodec(t *testing.T) {
	Convey("Given an item state change with a value", t, func() {
		evt := event.ItemStateChanged{
			ID: "e1", TS: base, PlayerID: "alice", MetricID: "run1",
			State: event.StateValue, Value: 12.5,
			PriorEventID: "e0", Note: "judge re-score",
		}

		Convey("When encoded and decoded", func() {
			data, err := event.Marshal(evt)
			So(err, ShouldBeNil)
			decoded, err := event.Unmarshal(data)
			So(err, ShouldBeNil)

			Convey("Then the event round-trips", func() {
				So(decoded, ShouldResemble, evt)
			})

			Convey("And the envelope carries the wire kind", func() {
				So(string(data), ShouldContainSubstring, `"kind":"item_state_changed"`)
				So(string(data), ShouldContainSubstring, `"value":12.5`)
			})
		})
	})

	Convey("Given a cleared item", t, func() {
		evt := event.ItemStateChanged{
			ID: "e2", TS: base, PlayerID: "alice", MetricID: "run1",
			State: event.StateEmpty, PriorEventID: "e1",
		}

		Convey("When encoded", func() {
			data, err := event.Marshal(evt)
			So(err, ShouldBeNil)

			Convey("Then no value field is emitted", func() {
				So(strings.Contains(string(data), `"value"`), ShouldBeFalse)
			})

			Convey("And decoding round-trips", func() {
				decoded, err := event.Unmarshal(data)
				So(err, ShouldBeNil)
				So(decoded, ShouldResemble, evt)
			})
		})
	})

	Convey("Given a scorecard void", t, func() {
		evt := event.ScorecardVoided{ID: "e3", TS: base, PlayerID: "bob", Note: "withdrew"}

		Convey("When encoded and decoded", func() {
			data, err := event.Marshal(evt)
			So(err, ShouldBeNil)
			decoded, err := event.Unmarshal(data)
			So(err, ShouldBeNil)

			Convey("Then the event round-trips", func() {
				So(decoded, ShouldResemble, evt)
				So(string(data), ShouldContainSubstring, `"kind":"scorecard_voided"`)
			})
		})
	})

	Convey("Given malformed envelopes", t, func() {
		Convey("Then an unknown kind fails decoding", func() {
			_, err := event.Unmarshal([]byte(`{"kind":"player_teleported","id":"x","ts":"2026-05-10T09:00:00Z"}`))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unknown kind")
		})

		Convey("And a bad timestamp fails decoding", func() {
			_, err := event.Unmarshal([]byte(`{"kind":"scorecard_voided","id":"x","ts":"yesterday"}`))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "bad ts")
		})

		Convey("And invalid JSON fails decoding", func() {
			_, err := event.Unmarshal([]byte("{"))
			So(err, ShouldNotBeNil)
		})
	})
}
