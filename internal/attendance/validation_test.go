package attendance

import (
	"errors"
	"testing"
)

func TestValidateStudentName(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Alice", true},
		{"Mary Jane", true},
		{"  Ann  ", true},
		{"Zoë", true},
		{"", true},
		{"Tab\tName", true},
		{"123", false},
		{"Alice1", false},
		{"O'Brien", false},
		{"Smith, John", false},
		{"Ann-Marie", false},
		{"Bob!", false},
		{"Robert; DROP TABLE attendance", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidateStudentName(tt.input); got != tt.want {
				t.Errorf("ValidateStudentName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "plain date", input: "2024-05-01", want: true},
		{name: "month and day bounds low", input: "2024-01-01", want: true},
		{name: "month and day bounds high", input: "2024-12-31", want: true},
		{name: "february 30 accepted", input: "2024-02-30", want: true},
		{name: "april 31 accepted", input: "2023-04-31", want: true},
		{name: "year is unchecked", input: "0000-06-15", want: true},
		{name: "month 13", input: "2024-13-01", want: false},
		{name: "month 00", input: "2024-00-10", want: false},
		{name: "day 32", input: "2024-01-32", want: false},
		{name: "day 00", input: "2024-01-00", want: false},
		{name: "both out of range", input: "2024-13-40", want: false},
		{name: "single digit month", input: "2024-5-01", want: false},
		{name: "single digit day", input: "2024-05-1", want: false},
		{name: "short year", input: "24-05-01", want: false},
		{name: "slashes", input: "2024/05/01", want: false},
		{name: "missing part", input: "2024-05", want: false},
		{name: "extra part", input: "2024-05-01-01", want: false},
		{name: "letters", input: "abcd-ef-gh", want: false},
		{name: "signed month", input: "2024-+5-01", want: false},
		{name: "trailing space", input: "2024-05-01 ", want: false},
		{name: "empty", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateDate(tt.input); got != tt.want {
				t.Errorf("ValidateDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"Present", "Absent"} {
		got, err := ParseStatus(s)
		if err != nil || string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}
	for _, s := range []string{"present", "ABSENT", "Late", "", " Present"} {
		if _, err := ParseStatus(s); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ParseStatus(%q) error = %v, want ErrInvalidStatus", s, err)
		}
	}
}

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{name: "valid", entry: Entry{"Ann", "2024-01-01", "Present"}},
		{name: "bad name checked first", entry: Entry{"123", "bad", "Late"}, wantErr: ErrInvalidName},
		{name: "bad date before status", entry: Entry{"Sam", "2024-13-40", "Late"}, wantErr: ErrInvalidDate},
		{name: "bad status", entry: Entry{"Sam", "2024-01-01", "Late"}, wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateEntry(tt.entry.StudentName, tt.entry.Date, tt.entry.Status)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateEntry() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntry() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error %v does not wrap ErrValidation", err)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrInvalidName, "Invalid student name. Only alphabetic characters and spaces are allowed."},
		{ErrInvalidDate, "Invalid date format. Use YYYY-MM-DD."},
		{ErrInvalidStatus, "Invalid attendance status. Use 'Present' or 'Absent'."},
		{errors.New("disk full"), "disk full"},
	}
	for _, tt := range tests {
		if got := Message(tt.err); got != tt.want {
			t.Errorf("Message(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
