package timezone

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/London")
	if err != nil {
		panic(err)
	}
}

// charges are published by UK councils, run timestamps are recorded in UK
// local time regardless of where the scraper runs.
func Now() time.Time {
	return time.Now().In(Location)
}

type TaxYear struct {
	StartYear int
	EndYear   int
}

func (y TaxYear) String() string {
	return fmt.Sprintf("%04d/%04d", y.StartYear, y.EndYear)
}

// council tax years run from the 1st of April to the 31st of March.
func GetTaxYear(now time.Time) TaxYear {
	year := now.Year()
	if now.Month() >= time.April {
		return TaxYear{StartYear: year, EndYear: year + 1}
	}
	return TaxYear{StartYear: year - 1, EndYear: year}
}
