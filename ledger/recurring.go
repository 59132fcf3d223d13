package ledger

import (
	"time"

	"tripsplit-backend/models"
)

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// ProcessResult carries what a scheduler run produced: concrete expenses to
// insert and template copies with their schedule fields updated. The caller
// persists both.
type ProcessResult struct {
	Materialized []models.Expense
	Updated      []models.RecurringExpense
}

// Advance returns the occurrence one period after from. Monthly advancement
// clamps to the last valid day of the target month (Jan 31 + 1 month is
// Feb 28, or Feb 29 in a leap year); yearly clamps Feb 29 to Feb 28 in
// non-leap years. An unrecognized frequency falls back to 30×interval days,
// a documented non-calendar approximation.
func Advance(from time.Time, freq Frequency, interval int) time.Time {
	if interval < 1 {
		interval = 1
	}

	switch freq {
	case Daily:
		return from.AddDate(0, 0, interval)

	case Weekly:
		return from.AddDate(0, 0, 7*interval)

	case Monthly:
		year, month, day := from.Date()
		monthIndex := int(month) - 1 + interval
		year += monthIndex / 12
		target := time.Month(monthIndex%12 + 1)
		if last := daysInMonth(year, target); day > last {
			day = last
		}
		hour, min, sec := from.Clock()
		return time.Date(year, target, day, hour, min, sec, from.Nanosecond(), from.Location())

	case Yearly:
		year, month, day := from.Date()
		year += interval
		if last := daysInMonth(year, month); day > last {
			day = last
		}
		hour, min, sec := from.Clock()
		return time.Date(year, month, day, hour, min, sec, from.Nanosecond(), from.Location())

	default:
		return from.AddDate(0, 0, 30*interval)
	}
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ProcessDueRecurring walks the given templates and, for each one whose
// next_occurrence has arrived, either deactivates it (end date passed) or
// materializes a concrete expense dated now and advances the schedule by a
// single period from the stored next_occurrence (never jumped to now), so
// a missed run catches up one period per invocation.
//
// Input templates are not mutated; updated copies are returned for the
// caller to persist.
func ProcessDueRecurring(templates []models.RecurringExpense, now time.Time) ProcessResult {
	var result ProcessResult

	for _, tpl := range templates {
		if !tpl.IsActive || tpl.NextOccurrence.After(now) {
			continue
		}

		if tpl.EndDate != nil && now.After(*tpl.EndDate) {
			tpl.IsActive = false
			result.Updated = append(result.Updated, tpl)
			continue
		}

		templateID := tpl.ID
		result.Materialized = append(result.Materialized, models.Expense{
			TripID:       tpl.TripID,
			PaidBy:       tpl.PaidBy,
			Description:  tpl.Description,
			Amount:       tpl.Amount,
			Currency:     tpl.Currency,
			Category:     tpl.Category,
			SplitType:    tpl.SplitType,
			Participants: tpl.Participants,
			SplitData:    tpl.SplitData,
			RecurringID:  &templateID,
			ExpenseDate:  now,
		})

		generated := now
		tpl.LastGenerated = &generated
		tpl.NextOccurrence = Advance(tpl.NextOccurrence, Frequency(tpl.Frequency), tpl.Interval)
		result.Updated = append(result.Updated, tpl)
	}

	return result
}
