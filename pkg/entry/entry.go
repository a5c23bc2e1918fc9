package entry

import (
	"errors"
	"time"

	"github.com/cashplan/cashplan/pkg/category"
	"github.com/shopspring/decimal"
)

var (
	ErrEntryNotFound    = errors.New("entry not found")
	ErrInvalidFrequency = errors.New("invalid frequency")
)

type Frequency string

const (
	FrequencyOnce       Frequency = "once"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyBimonthly  Frequency = "bimonthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiannual Frequency = "semiannual"
	FrequencyYearly     Frequency = "yearly"
)

// months is the step of month-based frequencies.
var months = map[Frequency]int{
	FrequencyMonthly:    1,
	FrequencyBimonthly:  2,
	FrequencyQuarterly:  3,
	FrequencySemiannual: 6,
	FrequencyYearly:     12,
}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if f == FrequencyOnce || f == FrequencyWeekly {
		return f, nil
	}
	if _, ok := months[f]; ok {
		return f, nil
	}
	return "", ErrInvalidFrequency
}

type Entry struct {
	Id            int
	ProjectId     int
	ScenarioId    *int
	Type          category.Type
	Name          string
	CategoryId    *int
	SubCategoryId *int
	Supplier      string
	Amount        decimal.Decimal
	Frequency     Frequency
	StartDate     time.Time
	EndDate       *time.Time
	CashAccountId *int
	IsProvision   bool
	LoanId        *int
	Notes         string
}

// Occurrence is one scheduled instance of an entry.
type Occurrence struct {
	EntryId int
	Date    time.Time
	Amount  decimal.Decimal
}

// Occurrences expands the schedule into the dates falling in [from, to].
// Month-based steps are computed from the start date so a day clamped in a
// short month comes back in longer ones (31 Jan, 28 Feb, 31 Mar).
func (e Entry) Occurrences(from, to time.Time) []Occurrence {
	occurrences := make([]Occurrence, 0)
	last := to
	if e.EndDate != nil && e.EndDate.Before(last) {
		last = *e.EndDate
	}
	if e.StartDate.After(last) {
		return occurrences
	}

	add := func(d time.Time) {
		if !d.Before(from) {
			occurrences = append(occurrences, Occurrence{EntryId: e.Id, Date: d, Amount: e.Amount})
		}
	}

	switch e.Frequency {
	case FrequencyOnce:
		add(e.StartDate)
	case FrequencyWeekly:
		d := e.StartDate
		if d.Before(from) {
			weeks := int(from.Sub(d).Hours()/24) / 7
			d = d.AddDate(0, 0, weeks*7)
		}
		for ; !d.After(last); d = d.AddDate(0, 0, 7) {
			add(d)
		}
	default:
		step, ok := months[e.Frequency]
		if !ok {
			return occurrences
		}
		n := 0
		if e.StartDate.Before(from) {
			elapsed := (from.Year()-e.StartDate.Year())*12 + int(from.Month()) - int(e.StartDate.Month())
			n = max(0, elapsed/step-1)
		}
		for ; ; n++ {
			d := AddMonthsClamped(e.StartDate, n*step)
			if d.After(last) {
				break
			}
			add(d)
		}
	}
	return occurrences
}

// AddMonthsClamped adds n months to t keeping its day, clamped to the length
// of the target month.
func AddMonthsClamped(t time.Time, n int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := min(t.Day(), lastDay)
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
