package refstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/scorekeep/scorekeep/internal/adapters/refstore"
	"github.com/scorekeep/scorekeep/internal/domain/refdata"
	. "github.com/smartystreets/goconvey/convey"
)

func writeRefFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "refdata.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write reference data: %v", err)
	}
	return path
}

func TestMemory(t *testing.T) {
	Convey("Given an in-memory reader over two divisions", t, func() {
		ctx := context.Background()
		open := refdata.Division{ID: "open", Name: "Open"}
		masters := refdata.Division{ID: "masters", Name: "Masters"}
		reader := refstore.NewMemory(open, masters)

		Convey("When looking up a division", func() {
			div, ok, err := reader.Division(ctx, "masters")

			Convey("Then it is found intact", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(div, ShouldResemble, masters)
			})
		})

		Convey("When looking up an unknown division", func() {
			_, ok, err := reader.Division(ctx, "junior")

			Convey("Then absence is reported without error", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When listing divisions", func() {
			divs, err := reader.Divisions(ctx)

			Convey("Then declaration order is kept", func() {
				So(err, ShouldBeNil)
				So(divs, ShouldResemble, []refdata.Division{open, masters})
			})
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given a valid reference data file", t, func() {
		path := writeRefFile(t, `
categories:
  - id: sprint
    name: Sprint
    direction: ascending
    metrics: [run1, run2]
    rules: [require-all-metrics, more-items-trump-fewer]
  - id: freestyle
    name: Freestyle
    direction: descending
    metrics: [routine]
divisions:
  - id: open
    name: Open
    players: []
    categories:
      - id: sprint
        depth: 3
        order: 1
      - id: freestyle
        depth: 5
        order: 2
  - id: masters
    name: Masters
    players: [alice, bob]
    categories:
      - id: sprint
        depth: 3
        order: 1
`)

		Convey("When loading", func() {
			divs, err := refstore.LoadFile(path)
			So(err, ShouldBeNil)

			Convey("Then divisions resolve their category links", func() {
				So(divs, ShouldHaveLength, 2)
				So(divs[0].ID, ShouldEqual, "open")
				So(divs[0].Categories, ShouldHaveLength, 2)
				So(divs[0].Categories[0].Category.ID, ShouldEqual, "sprint")
				So(divs[0].Categories[0].Category.Direction, ShouldEqual, refdata.Ascending)
				So(divs[0].Categories[0].Category.MetricIDs, ShouldResemble, []string{"run1", "run2"})
				So(divs[0].Categories[0].Depth, ShouldEqual, 3)
				So(divs[0].Categories[1].Category.Direction, ShouldEqual, refdata.Descending)
			})

			Convey("And eligibility lists carry through", func() {
				So(divs[0].EligiblePlayers, ShouldBeEmpty)
				So(divs[1].EligiblePlayers, ShouldResemble, []string{"alice", "bob"})
			})
		})
	})

	Convey("Given a category with an unknown direction", t, func() {
		path := writeRefFile(t, `
categories:
  - id: sprint
    name: Sprint
    direction: sideways
`)

		Convey("When loading", func() {
			_, err := refstore.LoadFile(path)

			Convey("Then loading fails naming the category", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown direction")
				So(err.Error(), ShouldContainSubstring, "sprint")
			})
		})
	})

	Convey("Given a division linking a missing category", t, func() {
		path := writeRefFile(t, `
categories:
  - id: sprint
    name: Sprint
    direction: ascending
divisions:
  - id: open
    name: Open
    categories:
      - id: vaulting
`)

		Convey("When loading", func() {
			_, err := refstore.LoadFile(path)

			Convey("Then loading fails naming the link", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown category")
				So(err.Error(), ShouldContainSubstring, "vaulting")
			})
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := refstore.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))

		Convey("Then loading fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
