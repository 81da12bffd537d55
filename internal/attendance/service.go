package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartattendance/internal/metrics"
	"smartattendance/internal/queue"
)

// Operation names used for metrics and logs.
const (
	opMark     = "mark"
	opSearch   = "search"
	opUpdate   = "update"
	opDelete   = "delete"
	opBulkMark = "bulk_mark"
)

// Change is the JSON body of a change-feed message.
type Change struct {
	ID          int64     `json:"id,omitempty"`
	StudentName string    `json:"student_name"`
	Date        string    `json:"date"`
	Status      Status    `json:"status,omitempty"`
	Affected    int64     `json:"affected,omitempty"`
	BatchID     string    `json:"batch_id,omitempty"`
	At          time.Time `json:"at"`
}

// Service validates input before touching the store. Validation failures
// never reach the repository.
type Service struct {
	repo    *Repository
	feed    queue.Queue
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewService creates a service backed by a repository. feed and m may be nil.
func NewService(repo *Repository, feed queue.Queue, m *metrics.Metrics, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, feed: feed, metrics: m, log: log.Named("attendance")}
}

// Mark inserts one record.
func (s *Service) Mark(ctx context.Context, name, date, status string) (Record, error) {
	started := time.Now()
	st, err := ValidateEntry(name, date, status)
	if err != nil {
		s.finish(opMark, started, err)
		return Record{}, err
	}

	rec, err := s.repo.Insert(ctx, name, date, st)
	s.finish(opMark, started, err)
	if err != nil {
		return Record{}, err
	}
	s.publish(ctx, queue.TypeMarked, Change{ID: rec.ID, StudentName: rec.StudentName, Date: rec.Date, Status: rec.Status})
	return rec, nil
}

// Search returns all records for an exact, case-sensitive student name.
func (s *Service) Search(ctx context.Context, name string) ([]Record, error) {
	started := time.Now()
	if !ValidateStudentName(name) {
		s.finish(opSearch, started, ErrInvalidName)
		return nil, ErrInvalidName
	}

	recs, err := s.repo.FindByName(ctx, name)
	s.finish(opSearch, started, err)
	return recs, err
}

// Update sets status on every record matching (name, date) and returns how
// many rows changed. Zero matches is not an error.
func (s *Service) Update(ctx context.Context, name, date, status string) (int64, error) {
	started := time.Now()
	st, err := ValidateEntry(name, date, status)
	if err != nil {
		s.finish(opUpdate, started, err)
		return 0, err
	}

	n, err := s.repo.SetStatus(ctx, name, date, st)
	s.finish(opUpdate, started, err)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publish(ctx, queue.TypeUpdated, Change{StudentName: name, Date: date, Status: st, Affected: n})
	}
	return n, nil
}

// Delete removes every record matching (name, date). Zero matches is not an error.
func (s *Service) Delete(ctx context.Context, name, date string) (int64, error) {
	started := time.Now()
	var err error
	switch {
	case !ValidateStudentName(name):
		err = ErrInvalidName
	case !ValidateDate(date):
		err = ErrInvalidDate
	}
	if err != nil {
		s.finish(opDelete, started, err)
		return 0, err
	}

	n, err := s.repo.DeleteMatching(ctx, name, date)
	s.finish(opDelete, started, err)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publish(ctx, queue.TypeDeleted, Change{StudentName: name, Date: date, Affected: n})
	}
	return n, nil
}

// BulkMark inserts each valid entry on its own; there is no enclosing
// transaction. Invalid entries are skipped and reported in the result.
// A store failure stops the batch: rows inserted before it stay committed
// and are returned alongside the error.
func (s *Service) BulkMark(ctx context.Context, entries []Entry) (BulkResult, error) {
	started := time.Now()
	res := BulkResult{BatchID: uuid.NewString()}
	log := s.log.With(zap.String("batch", res.BatchID))

	for i, e := range entries {
		st, err := ValidateEntry(e.StudentName, e.Date, e.Status)
		if err != nil {
			log.Debug("skipping bulk entry", zap.Int("index", i), zap.String("student", e.StudentName), zap.Error(err))
			res.Skipped = append(res.Skipped, Skip{Index: i, Entry: e, Err: err})
			continue
		}

		rec, err := s.repo.Insert(ctx, e.StudentName, e.Date, st)
		if err != nil {
			s.metrics.Skipped(len(res.Skipped))
			s.finish(opBulkMark, started, err)
			return res, fmt.Errorf("bulk entry %d: %w", i, err)
		}
		res.Inserted = append(res.Inserted, rec)
		s.publish(ctx, queue.TypeMarked, Change{
			ID: rec.ID, StudentName: rec.StudentName, Date: rec.Date, Status: rec.Status, BatchID: res.BatchID,
		})
	}

	s.metrics.Skipped(len(res.Skipped))
	s.finish(opBulkMark, started, nil)
	log.Info("bulk mark finished", zap.Int("inserted", len(res.Inserted)), zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

func (s *Service) finish(op string, started time.Time, err error) {
	switch {
	case err == nil:
		s.metrics.Observe(op, metrics.OutcomeOK, started)
	case errors.Is(err, ErrValidation):
		s.metrics.Observe(op, metrics.OutcomeInvalid, started)
		s.log.Debug("rejected input", zap.String("operation", op), zap.Error(err))
	default:
		s.metrics.Observe(op, metrics.OutcomeStoreError, started)
		s.log.Error("store operation failed", zap.String("operation", op), zap.Error(err))
	}
}

// publish sends a change event; failures are logged and never fail the write.
func (s *Service) publish(ctx context.Context, typ string, c Change) {
	if s.feed == nil {
		return
	}
	c.At = time.Now().UTC()
	body, err := json.Marshal(c)
	if err != nil {
		s.log.Warn("encoding change event failed", zap.Error(err))
		return
	}
	if err := s.feed.Publish(ctx, queue.Message{Type: typ, Body: body}); err != nil {
		s.log.Warn("change feed publish failed", zap.String("type", typ), zap.Error(err))
	}
}
