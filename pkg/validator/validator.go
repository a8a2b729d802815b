package validator

import (
	"regexp"
	"time"
)

var (
	wallClockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	dateRegex      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

func ValidateWallClock(value string) bool {
	return wallClockRegex.MatchString(value)
}

func ValidateDate(value string) bool {
	if !dateRegex.MatchString(value) {
		return false
	}

	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func ValidateDuration(minutes, maxMinutes int) bool {
	return minutes > 0 && minutes <= maxMinutes
}

// ParseWallClock разбирает строку "HH:MM" в минуты от полуночи.
func ParseWallClock(value string) (int, bool) {
	if !ValidateWallClock(value) {
		return 0, false
	}

	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, false
	}

	return t.Hour()*60 + t.Minute(), true
}
