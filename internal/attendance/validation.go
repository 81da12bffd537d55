package attendance

import (
	"strconv"
	"strings"
	"unicode"
)

// ValidateStudentName reports whether name holds only letters and whitespace.
// The empty string passes.
func ValidateStudentName(name string) bool {
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// ValidateDate reports whether date has the YYYY-MM-DD shape with a month in
// [1,12] and a day in [1,31]. Days are not checked against the month, so
// 2024-02-30 is accepted.
func ValidateDate(date string) bool {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return false
	}
	year, month, day := parts[0], parts[1], parts[2]
	if len(year) != 4 || !allDigits(year) {
		return false
	}
	return inRange(month, 12) && inRange(day, 31)
}

// inRange checks a two digit field against [1,max].
func inRange(field string, max int) bool {
	if len(field) != 2 || !allDigits(field) {
		return false
	}
	n, err := strconv.Atoi(field)
	return err == nil && n >= 1 && n <= max
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// ParseStatus accepts exactly "Present" or "Absent".
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case Present, Absent:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// ValidateEntry checks name, then date, then status and returns the first failure.
func ValidateEntry(name, date, status string) (Status, error) {
	if !ValidateStudentName(name) {
		return "", ErrInvalidName
	}
	if !ValidateDate(date) {
		return "", ErrInvalidDate
	}
	return ParseStatus(status)
}
