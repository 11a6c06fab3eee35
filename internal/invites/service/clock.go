package service

import "time"

// clock returns the current time in UTC at the millisecond precision the
// stores keep, so values handed back match what a later read returns.
func clock(now func() time.Time) time.Time {
	t := time.Now()
	if now != nil {
		t = now()
	}
	return t.UTC().Truncate(time.Millisecond)
}
