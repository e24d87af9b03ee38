package schedule

import (
	"fmt"
	"time"
)

// TimezoneName is the zone every date in the dataset is interpreted in.
const TimezoneName = "Europe/Kyiv"

var kyivLocation, kyivErr = time.LoadLocation(TimezoneName)

// Location returns the Kyiv location. ok is false when the zone database
// is unavailable; callers then fall back to the time's own location.
func Location() (*time.Location, bool) {
	if kyivErr != nil {
		return nil, false
	}
	return kyivLocation, true
}

func inKyiv(t time.Time) time.Time {
	if loc, ok := Location(); ok {
		return t.In(loc)
	}
	return t
}

// CurrentYear returns the calendar year of now in Kyiv.
func CurrentYear(now time.Time) int {
	return inKyiv(now).Year()
}

// genitive month names, as used in "13 листопада".
var ukMonths = [...]string{
	"січня", "лютого", "березня", "квітня", "травня", "червня",
	"липня", "серпня", "вересня", "жовтня", "листопада", "грудня",
}

// WeekdayNames indexes Ukrainian weekday names by 1=Monday..7=Sunday.
var WeekdayNames = map[int]string{
	1: "Понеділок",
	2: "Вівторок",
	3: "Середа",
	4: "Четвер",
	5: "П'ятниця",
	6: "Субота",
	7: "Неділя",
}

// DayLabel formats the day starting at epoch as "13 листопада".
func DayLabel(epoch int64) string {
	t := inKyiv(time.Unix(epoch, 0))
	return fmt.Sprintf("%d %s", t.Day(), ukMonths[t.Month()-1])
}

// WeekdayIndex returns 1=Monday..7=Sunday for the day starting at epoch,
// or 0 when epoch is absent.
func WeekdayIndex(epoch int64) int {
	if epoch == 0 {
		return 0
	}
	wd := inKyiv(time.Unix(epoch, 0)).Weekday()
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// DayStart returns the epoch of midnight of the Kyiv day containing t.
func DayStart(t time.Time) int64 {
	k := inKyiv(t)
	return time.Date(k.Year(), k.Month(), k.Day(), 0, 0, 0, 0, k.Location()).Unix()
}
