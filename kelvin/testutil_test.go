package kelvin_test

import "time"

func timeoutC() <-chan time.Time {
	return time.After(5 * time.Second)
}
