package attendance

// Status is the attendance state of a student on a given day.
type Status string

// The only two statuses the store accepts.
const (
	Present Status = "Present"
	Absent  Status = "Absent"
)

// Record is one row of the attendance table. ID is assigned by the store.
type Record struct {
	ID          int64  `json:"id"`
	StudentName string `json:"student_name"`
	Date        string `json:"date"` // YYYY-MM-DD
	Status      Status `json:"status"`
}

// Entry is an unvalidated (name, date, status) triple collected for bulk marking.
type Entry struct {
	StudentName string
	Date        string
	Status      string
}

// Skip explains why one bulk entry was not inserted.
type Skip struct {
	Index int // position in the submitted batch
	Entry Entry
	Err   error
}

// BulkResult summarises a bulk mark. Inserted rows are already committed.
type BulkResult struct {
	BatchID  string
	Inserted []Record
	Skipped  []Skip
}
