package events

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDuplicateEventID = errors.New("event_id already exists in recording")
	ErrRecordNotFound   = errors.New("event not found in recording")
)

var (
	errRecordEventIDRequired     = errors.New("event_id is required")
	errRecordRecordingIDRequired = errors.New("recording_id is required")
	errRecordInvalidRange        = errors.New("offset must not precede onset")
	errRecordCreatedAtRequired   = errors.New("created_at is required")
)

// Record is a stored event tied to the recording it was detected in.
type Record struct {
	EventID     string    `json:"event_id"`
	RecordingID string    `json:"recording_id"`
	Name        string    `json:"name"`
	Onset       float64   `json:"onset"`
	Offset      float64   `json:"offset"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r Record) Event() Event {
	return Event{Name: r.Name, Onset: r.Onset, Offset: r.Offset}
}

// Repository persists event tables per recording.
type Repository interface {
	Append(ctx context.Context, records []Record) error
	ListByRecording(ctx context.Context, recordingID, name string) ([]Record, error)
	Get(ctx context.Context, recordingID, eventID string) (Record, error)
	Close() error
}

// NewRecords assigns a fresh event id to every event of table.
func NewRecords(recordingID string, table Table, createdAt time.Time) ([]Record, error) {
	records := make([]Record, 0, len(table))
	for _, event := range table {
		record := Record{
			EventID:     uuid.NewString(),
			RecordingID: recordingID,
			Name:        event.Name,
			Onset:       event.Onset,
			Offset:      event.Offset,
			CreatedAt:   createdAt,
		}
		if err := ValidateRecord(record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func ValidateRecord(record Record) error {
	if record.EventID == "" {
		return errRecordEventIDRequired
	}
	if record.RecordingID == "" {
		return errRecordRecordingIDRequired
	}
	if math.IsNaN(record.Onset) || math.IsNaN(record.Offset) || record.Offset < record.Onset {
		return errRecordInvalidRange
	}
	if record.CreatedAt.IsZero() {
		return errRecordCreatedAtRequired
	}
	return nil
}

// SortRecords orders records by onset, then creation time, then event id.
func SortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		left := records[i]
		right := records[j]
		if left.Onset != right.Onset {
			return left.Onset < right.Onset
		}
		if !left.CreatedAt.Equal(right.CreatedAt) {
			return left.CreatedAt.Before(right.CreatedAt)
		}
		return left.EventID < right.EventID
	})
}

// Store is an in-memory Repository.
type Store struct {
	mu         sync.RWMutex
	recordings map[string]*recordingEvents
}

type recordingEvents struct {
	ordered []Record
	byID    map[string]Record
}

func NewStore() *Store {
	return &Store{
		recordings: make(map[string]*recordingEvents),
	}
}

// Append stores all records or none of them.
func (s *Store) Append(_ context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	for _, record := range records {
		if err := ValidateRecord(record); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seenByRecording := make(map[string]map[string]struct{})
	for _, record := range records {
		if existing, ok := s.recordings[record.RecordingID]; ok {
			if _, exists := existing.byID[record.EventID]; exists {
				return ErrDuplicateEventID
			}
		}

		seenIDs, ok := seenByRecording[record.RecordingID]
		if !ok {
			seenIDs = make(map[string]struct{})
			seenByRecording[record.RecordingID] = seenIDs
		}
		if _, exists := seenIDs[record.EventID]; exists {
			return ErrDuplicateEventID
		}
		seenIDs[record.EventID] = struct{}{}
	}

	updated := make(map[string]struct{})
	for _, record := range records {
		recording := s.ensureRecording(record.RecordingID)
		recording.byID[record.EventID] = record
		recording.ordered = append(recording.ordered, record)
		updated[record.RecordingID] = struct{}{}
	}

	for recordingID := range updated {
		SortRecords(s.recordings[recordingID].ordered)
	}

	return nil
}

func (s *Store) ensureRecording(recordingID string) *recordingEvents {
	recording, ok := s.recordings[recordingID]
	if ok {
		return recording
	}

	recording = &recordingEvents{
		ordered: make([]Record, 0, 1),
		byID:    make(map[string]Record),
	}
	s.recordings[recordingID] = recording
	return recording
}

func (s *Store) Get(_ context.Context, recordingID, eventID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recording, ok := s.recordings[recordingID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	record, found := recording.byID[eventID]
	if !found {
		return Record{}, ErrRecordNotFound
	}
	return record, nil
}

// ListByRecording returns a copy of the recording's records labeled name, ordered
// by onset. An empty name lists every record.
func (s *Store) ListByRecording(_ context.Context, recordingID, name string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recording, ok := s.recordings[recordingID]
	if !ok {
		return []Record{}, nil
	}

	list := make([]Record, 0, len(recording.ordered))
	for _, record := range recording.ordered {
		if name == "" || record.Name == name {
			list = append(list, record)
		}
	}
	return list, nil
}

func (s *Store) Close() error {
	return nil
}
