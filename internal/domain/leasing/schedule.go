package leasing

import "time"

// AdvanceDueDate moves a due date forward by one billing period.
// An unrecognized frequency leaves the date unchanged; callers validate the
// frequency at the boundary so this only happens for legacy rows.
func AdvanceDueDate(date time.Time, frequency PaymentFrequency) time.Time {
	switch frequency {
	case FrequencyMonthly:
		return date.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return date.AddDate(0, 3, 0)
	case FrequencyYearly:
		return date.AddDate(1, 0, 0)
	default:
		return date
	}
}
