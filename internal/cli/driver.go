// Package cli runs the numbered attendance menu over a text stream.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"smartattendance/internal/attendance"
)

// Operations is the attendance service as seen by the menu.
type Operations interface {
	Mark(ctx context.Context, name, date, status string) (attendance.Record, error)
	Search(ctx context.Context, name string) ([]attendance.Record, error)
	Update(ctx context.Context, name, date, status string) (int64, error)
	Delete(ctx context.Context, name, date string) (int64, error)
	BulkMark(ctx context.Context, entries []attendance.Entry) (attendance.BulkResult, error)
}

// SchemaCreator creates the attendance table.
type SchemaCreator interface {
	EnsureSchema(ctx context.Context) error
}

// Exporter writes every record to a file.
type Exporter interface {
	ToFile(ctx context.Context, dest string) (int, error)
}

const menu = `
Smart Attendance System Menu
1. Create Table
2. Mark Attendance
3. Search Attendance
4. Update Attendance
5. Delete Attendance Record
6. Bulk Mark Attendance
7. Export to CSV
8. Exit
`

// Driver reads menu choices from in and writes prompts and results to out.
type Driver struct {
	ops    Operations
	schema SchemaCreator
	export Exporter
	in     io.Reader
	out    io.Writer
	log    *zap.Logger

	lines   chan string
	readErr error
	closed  bool
}

// New builds a driver. log may be nil.
func New(ops Operations, schema SchemaCreator, exp Exporter, in io.Reader, out io.Writer, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{ops: ops, schema: schema, export: exp, in: in, out: out, log: log.Named("cli")}
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
// Operation failures are printed and never end the loop.
func (d *Driver) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.startReader(ctx)

	for !d.closed {
		fmt.Fprint(d.out, menu)
		choice, ok := d.prompt(ctx, "Enter your choice (1-8): ")
		if !ok {
			break
		}
		choice = strings.TrimSpace(choice)
		d.log.Debug("menu selection", zap.String("choice", choice))

		switch choice {
		case "1":
			d.createTable(ctx)
		case "2":
			d.mark(ctx)
		case "3":
			d.search(ctx)
		case "4":
			d.update(ctx)
		case "5":
			d.remove(ctx)
		case "6":
			d.bulkMark(ctx)
		case "7":
			d.exportFile(ctx)
		case "8":
			fmt.Fprintln(d.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(d.out, "Invalid choice. Please enter a number between 1 and 8.")
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if d.readErr != nil {
		return fmt.Errorf("reading input: %w", d.readErr)
	}
	fmt.Fprintln(d.out, "Exiting...")
	return nil
}

func (d *Driver) startReader(ctx context.Context) {
	d.lines = make(chan string)
	go func() {
		defer close(d.lines)
		sc := bufio.NewScanner(d.in)
		for sc.Scan() {
			select {
			case d.lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		d.readErr = sc.Err()
	}()
}

// prompt prints label and waits for one line. It reports false once input
// is exhausted or ctx is done.
func (d *Driver) prompt(ctx context.Context, label string) (string, bool) {
	if d.closed {
		return "", false
	}
	fmt.Fprint(d.out, label)
	select {
	case line, ok := <-d.lines:
		if !ok {
			d.closed = true
			fmt.Fprintln(d.out)
			return "", false
		}
		return line, true
	case <-ctx.Done():
		d.closed = true
		return "", false
	}
}

// prompts asks each label in turn and stops at the first missing answer.
func (d *Driver) prompts(ctx context.Context, labels ...string) ([]string, bool) {
	answers := make([]string, 0, len(labels))
	for _, l := range labels {
		a, ok := d.prompt(ctx, l)
		if !ok {
			return nil, false
		}
		answers = append(answers, a)
	}
	return answers, true
}

func (d *Driver) createTable(ctx context.Context) {
	if err := d.schema.EnsureSchema(ctx); err != nil {
		d.log.Error("creating table failed", zap.Error(err))
		d.fail(err)
		return
	}
	fmt.Fprintln(d.out, "Table 'attendance' created successfully.")
}

func (d *Driver) mark(ctx context.Context) {
	in, ok := d.prompts(ctx, "Enter student name: ", "Enter date (YYYY-MM-DD): ", "Enter status (Present/Absent): ")
	if !ok {
		return
	}
	if _, err := d.ops.Mark(ctx, in[0], in[1], in[2]); err != nil {
		d.fail(err)
		return
	}
	fmt.Fprintln(d.out, "Attendance marked successfully.")
}

func (d *Driver) search(ctx context.Context) {
	name, ok := d.prompt(ctx, "Enter student name to search: ")
	if !ok {
		return
	}
	recs, err := d.ops.Search(ctx, name)
	if err != nil {
		d.fail(err)
		return
	}
	if len(recs) == 0 {
		fmt.Fprintf(d.out, "No attendance records found for %s.\n", name)
		return
	}
	for _, r := range recs {
		fmt.Fprintf(d.out, "ID: %d | Name: %s | Date: %s | Status: %s\n", r.ID, r.StudentName, r.Date, r.Status)
	}
}

func (d *Driver) update(ctx context.Context) {
	in, ok := d.prompts(ctx, "Enter student name: ", "Enter date (YYYY-MM-DD): ", "Enter new status (Present/Absent): ")
	if !ok {
		return
	}
	n, err := d.ops.Update(ctx, in[0], in[1], in[2])
	if err != nil {
		d.fail(err)
		return
	}
	fmt.Fprintf(d.out, "Attendance updated successfully. %d record(s) affected.\n", n)
}

func (d *Driver) remove(ctx context.Context) {
	in, ok := d.prompts(ctx, "Enter student name: ", "Enter date (YYYY-MM-DD): ")
	if !ok {
		return
	}
	n, err := d.ops.Delete(ctx, in[0], in[1])
	if err != nil {
		d.fail(err)
		return
	}
	fmt.Fprintf(d.out, "Attendance record deleted successfully. %d record(s) affected.\n", n)
}

func (d *Driver) bulkMark(ctx context.Context) {
	var entries []attendance.Entry
	for {
		name, ok := d.prompt(ctx, "Enter student name (or type 'done' to finish): ")
		if !ok {
			return
		}
		if strings.EqualFold(name, "done") {
			break
		}
		rest, ok := d.prompts(ctx, "Enter date (YYYY-MM-DD): ", "Enter status (Present/Absent): ")
		if !ok {
			return
		}
		entries = append(entries, attendance.Entry{StudentName: name, Date: rest[0], Status: rest[1]})
	}

	res, err := d.ops.BulkMark(ctx, entries)
	for _, s := range res.Skipped {
		fmt.Fprintln(d.out, skipMessage(s))
	}
	if err != nil {
		fmt.Fprintf(d.out, "%d record(s) saved before the failure.\n", len(res.Inserted))
		d.fail(err)
		return
	}
	fmt.Fprintln(d.out, "Bulk attendance marked successfully.")
}

func (d *Driver) exportFile(ctx context.Context) {
	dest, ok := d.prompt(ctx, "Enter CSV file name: ")
	if !ok {
		return
	}
	n, err := d.export.ToFile(ctx, dest)
	if err != nil {
		d.log.Error("export failed", zap.String("file", dest), zap.Error(err))
		d.fail(err)
		return
	}
	d.log.Info("exported records", zap.String("file", dest), zap.Int("records", n))
	fmt.Fprintf(d.out, "Data exported to %s successfully.\n", dest)
}

// fail prints validation errors as their user message and anything else
// with an Error prefix.
func (d *Driver) fail(err error) {
	if errors.Is(err, attendance.ErrValidation) {
		fmt.Fprintln(d.out, attendance.Message(err))
		return
	}
	fmt.Fprintf(d.out, "Error: %v\n", err)
}

func skipMessage(s attendance.Skip) string {
	name := s.Entry.StudentName
	switch {
	case errors.Is(s.Err, attendance.ErrInvalidName):
		return fmt.Sprintf("Invalid student name: %s. Only alphabetic characters and spaces are allowed.", name)
	case errors.Is(s.Err, attendance.ErrInvalidDate):
		return fmt.Sprintf("Invalid date format for %s. Use YYYY-MM-DD.", name)
	case errors.Is(s.Err, attendance.ErrInvalidStatus):
		return fmt.Sprintf("Invalid attendance status for %s. Use 'Present' or 'Absent'.", name)
	default:
		return fmt.Sprintf("Skipped %s: %v", name, s.Err)
	}
}
