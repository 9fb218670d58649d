/*
Copyright 2024 Tim St. Pierre
Lower-bounded waits
*/
package hd44780

import "time"

// spinBelow is the tail of a wait spent polling the clock instead of sleeping.
const spinBelow = 100 * time.Microsecond

// delay blocks for at least d, measured on the monotonic clock.
func delay(d time.Duration) {
	start := time.Now()
	if d > spinBelow {
		time.Sleep(d - spinBelow)
	}
	for time.Since(start) < d {
	}
}
