package pseudonym_test

import (
	"strings"
	"testing"

	"github.com/fitrate/arena/internal/domain/pseudonym"
	. "github.com/smartystreets/goconvey/convey"
)

func TestForUser(t *testing.T) {
	Convey("Given the pseudonym generator", t, func() {
		Convey("When generating for the same user twice", func() {
			first := pseudonym.ForUser("user-123")
			second := pseudonym.ForUser("user-123")

			Convey("Then the name is stable", func() {
				So(first, ShouldEqual, second)
			})
		})

		Convey("When generating for many users", func() {
			seen := make(map[string]bool)
			for _, id := range []string{"a", "b", "c", "user-1", "user-2", "user-3"} {
				name := pseudonym.ForUser(id)

				So(name, ShouldNotBeEmpty)
				parts := strings.Split(name, " ")
				So(len(parts), ShouldEqual, 2)
				seen[name] = true
			}

			Convey("Then names vary across users", func() {
				// Collisions are possible but six distinct ids should not
				// all collapse to one name.
				So(len(seen), ShouldBeGreaterThan, 1)
			})
		})

		Convey("When generating for the empty id", func() {
			So(pseudonym.ForUser(""), ShouldNotBeEmpty)
		})
	})
}
