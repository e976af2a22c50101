package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/scorekeep/scorekeep/internal/adapters/eventstore"
	"github.com/scorekeep/scorekeep/internal/adapters/refstore"
	service "github.com/scorekeep/scorekeep/internal/app"
	"github.com/scorekeep/scorekeep/internal/domain/event"
	"github.com/scorekeep/scorekeep/internal/domain/podium"
	"github.com/scorekeep/scorekeep/internal/domain/refdata"
	"github.com/scorekeep/scorekeep/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func testDivision() refdata.Division {
	return refdata.Division{
		ID:   "open",
		Name: "Open",
		Categories: []refdata.CategoryLink{
			{
				Category: refdata.Category{
					ID:        "sprint",
					Name:      "Sprint",
					Direction: refdata.Ascending,
					MetricIDs: []string{"run1", "run2"},
				},
				Depth: 3,
			},
		},
	}
}

func scored(id, player, metric string, value float64, ts time.Time) event.ItemStateChanged {
	return event.ItemStateChanged{
		ID:       event.ID(id),
		TS:       ts,
		PlayerID: player,
		MetricID: metric,
		State:    event.StateValue,
		Value:    value,
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithPodiumDepth(5),
			service.WithRecomputeWorkers(2),
			service.WithReferenceData(refstore.NewMemory(testDivision())),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
			})

			Convey("And starting again should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})
}

// closablePodiumLog wraps the in-memory store and counts Close calls.
type closablePodiumLog struct {
	eventstore.PodiumStore
	closed int
}

func (c *closablePodiumLog) Close() error {
	c.closed++
	return nil
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service with a separate podium log", t, func() {
		ctx := context.Background()
		podiumLog := &closablePodiumLog{PodiumStore: eventstore.NewMemory()}
		svc := service.New(
			service.WithEventStore(eventstore.NewMemory()),
			service.WithPodiumStore(podiumLog),
		)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When the service stops", func() {
			svc.Stop()

			Convey("Then the podium log is closed as well", func() {
				So(podiumLog.closed, ShouldEqual, 1)
			})

			Convey("And stopping again is a no-op", func() {
				svc.Stop()
				So(podiumLog.closed, ShouldEqual, 1)
			})
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a started service with one division", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithReferenceData(refstore.NewMemory(testDivision())))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		base := time.Now().UTC()

		Convey("When submitting a clean batch", func() {
			rejections, err := svc.Submit(ctx, []event.Event{
				scored("e1", "alice", "run1", 12.5, base),
				scored("e2", "alice", "run2", 13.0, base.Add(time.Second)),
				scored("e3", "bob", "run1", 11.0, base.Add(2*time.Second)),
				scored("e4", "bob", "run2", 11.5, base.Add(3*time.Second)),
			})

			Convey("Then nothing is rejected", func() {
				So(err, ShouldBeNil)
				So(rejections, ShouldBeEmpty)
			})

			Convey("And standings reflect the batch", func() {
				divs, err := svc.Standings(ctx)
				So(err, ShouldBeNil)
				So(divs, ShouldHaveLength, 1)
				entries := divs[0].Categories[0].Entries
				So(entries, ShouldHaveLength, 2)
				// Ascending: lower totals rank first.
				So(entries[0].PlayerID, ShouldEqual, "bob")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].PlayerID, ShouldEqual, "alice")
			})

			Convey("And re-submitting the same batch is a silent no-op", func() {
				again, err := svc.Submit(ctx, []event.Event{
					scored("e1", "alice", "run1", 12.5, base),
				})
				So(err, ShouldBeNil)
				So(again, ShouldBeEmpty)
			})

			Convey("And a correction in a later batch moves the standings", func() {
				correction := scored("e5", "bob", "run1", 20.0, base.Add(time.Minute))
				correction.PriorEventID = "e3"
				rej, err := svc.Submit(ctx, []event.Event{correction})
				So(err, ShouldBeNil)
				So(rej, ShouldBeEmpty)

				divs, err := svc.Standings(ctx)
				So(err, ShouldBeNil)
				entries := divs[0].Categories[0].Entries
				So(entries[0].PlayerID, ShouldEqual, "alice")
			})

			Convey("And a stale duplicate initial is rejected without affecting the rest", func() {
				rej, err := svc.Submit(ctx, []event.Event{
					scored("e6", "alice", "run1", 1.0, base), // duplicate initial for alice/run1
					scored("e7", "carol", "run1", 15.0, base.Add(time.Minute)),
				})
				So(err, ShouldBeNil)
				So(rej, ShouldHaveLength, 1)
				So(rej[0].Event.EventID(), ShouldEqual, event.ID("e6"))

				divs, err := svc.Standings(ctx)
				So(err, ShouldBeNil)
				entries := divs[0].Categories[0].Entries
				So(entries, ShouldHaveLength, 3)
			})
		})

		Convey("When submitting before Start", func() {
			cold := service.New()
			_, err := cold.Submit(ctx, []event.Event{scored("x", "p", "m", 1, base)})

			Convey("Then it should fail with ErrNotStarted", func() {
				So(err, ShouldEqual, service.ErrNotStarted)
			})
		})
	})
}

func TestService_Replay(t *testing.T) {
	Convey("Given events persisted by a previous service instance", t, func() {
		ctx := context.Background()
		store := eventstore.NewMemory()
		base := time.Now().UTC()

		first := service.New(
			service.WithEventStore(store),
			service.WithPodiumStore(store),
			service.WithReferenceData(refstore.NewMemory(testDivision())),
		)
		So(first.Start(ctx), ShouldBeNil)
		_, err := first.Submit(ctx, []event.Event{
			scored("e1", "alice", "run1", 12.5, base),
			scored("e2", "alice", "run2", 13.0, base.Add(time.Second)),
		})
		So(err, ShouldBeNil)
		firstDivs, err := first.Standings(ctx)
		So(err, ShouldBeNil)
		first.Stop()

		Convey("When a fresh instance starts over the same store", func() {
			second := service.New(
				service.WithEventStore(store),
				service.WithPodiumStore(store),
				service.WithReferenceData(refstore.NewMemory(testDivision())),
			)
			So(second.Start(ctx), ShouldBeNil)
			defer second.Stop()

			Convey("Then replay reproduces the same standings", func() {
				divs, err := second.Standings(ctx)
				So(err, ShouldBeNil)
				So(divs, ShouldResemble, firstDivs)
			})
		})
	})
}

func TestService_Podium(t *testing.T) {
	Convey("Given a started service with scored players", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithReferenceData(refstore.NewMemory(testDivision())),
			service.WithPodiumDepth(3),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		base := time.Now().UTC()
		_, err := svc.Submit(ctx, []event.Event{
			scored("e1", "alice", "run1", 10, base),
			scored("e2", "bob", "run1", 11, base.Add(time.Second)),
			scored("e3", "carol", "run1", 12, base.Add(2*time.Second)),
		})
		So(err, ShouldBeNil)

		Convey("When removing the leader from the podium", func() {
			err := svc.Adjust(ctx, []podium.Event{{
				ID:         "p1",
				TS:         base.Add(time.Minute),
				Type:       podium.TypeRemovePlayer,
				DivisionID: "open",
				CategoryID: "sprint",
				PlayerID:   "alice",
			}})
			So(err, ShouldBeNil)

			Convey("Then the podium re-ranks without the removed player", func() {
				podiums, err := svc.PodiumStandings(ctx)
				So(err, ShouldBeNil)
				entries := podiums[0].Categories[0].Entries
				So(entries, ShouldHaveLength, 2)
				So(entries[0].PlayerID, ShouldEqual, "bob")
				So(entries[0].Rank, ShouldEqual, 1)
			})

			Convey("And the underlying standings are untouched", func() {
				divs, err := svc.Standings(ctx)
				So(err, ShouldBeNil)
				So(divs[0].Categories[0].Entries, ShouldHaveLength, 3)
			})

			Convey("And restoring the player reproduces the original podium", func() {
				err := svc.Adjust(ctx, []podium.Event{{
					ID:         "p2",
					TS:         base.Add(2 * time.Minute),
					Type:       podium.TypeRestorePlayer,
					DivisionID: "open",
					CategoryID: "sprint",
					PlayerID:   "alice",
				}})
				So(err, ShouldBeNil)

				podiums, err := svc.PodiumStandings(ctx)
				So(err, ShouldBeNil)
				entries := podiums[0].Categories[0].Entries
				So(entries, ShouldHaveLength, 3)
				So(entries[0].PlayerID, ShouldEqual, "alice")
			})
		})

		Convey("When submitting a malformed adjustment", func() {
			err := svc.Adjust(ctx, []podium.Event{{
				ID:   "p3",
				TS:   base,
				Type: podium.EventType("promote-player"),
			}})

			Convey("Then it should be refused", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
