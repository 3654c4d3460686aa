package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/shared"
)

// KeyPrefix prefixes every course progress entry.
const KeyPrefix = "course-progress-"

// Key returns the storage key for a course.
func Key(courseID string) string {
	return KeyPrefix + courseID
}

// Store reads and writes [models.CourseProgress] values through a [Storage].
type Store struct {
	storage Storage
	logger  *log.Logger
	now     func() time.Time
}

// StoreOpts contains configuration options for creating a Store.
type StoreOpts struct {
	Storage Storage
	Logger  *log.Logger
	Now     func() time.Time // defaults to time.Now
}

// NewStore creates a Store. A nil Storage falls back to a fresh [MemoryStorage].
func NewStore(opts StoreOpts) *Store {
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{storage: opts.Storage, logger: opts.Logger, now: opts.Now}
}

// Load returns the saved progress for courseID, or the zeroed default when nothing usable is stored.
func (s *Store) Load(ctx context.Context, courseID string) models.CourseProgress {
	raw, ok, err := s.storage.Get(ctx, Key(courseID))
	if err != nil {
		s.logger.Warn("failed to read course progress, using defaults", "course", courseID, "err", err)
		return models.NewCourseProgress(s.now())
	}
	if !ok {
		return models.NewCourseProgress(s.now())
	}

	p, err := Decode([]byte(raw))
	if err != nil {
		s.logger.Warn("discarding malformed course progress", "course", courseID, "err", err)
		return models.NewCourseProgress(s.now())
	}
	return p
}

// Save overwrites the stored progress for courseID with p.
func (s *Store) Save(ctx context.Context, courseID string, p models.CourseProgress) error {
	if strings.TrimSpace(courseID) == "" {
		return fmt.Errorf("%w: empty course id", shared.ErrInvalidArgument)
	}

	data, err := Encode(p)
	if err != nil {
		return err
	}

	if err := s.storage.Set(ctx, Key(courseID), string(data)); err != nil {
		return fmt.Errorf("%w: failed to save progress for %s: %v", shared.ErrStorage, courseID, err)
	}
	return nil
}

// Reset removes the stored progress for courseID.
func (s *Store) Reset(ctx context.Context, courseID string) error {
	if err := s.storage.Delete(ctx, Key(courseID)); err != nil {
		return fmt.Errorf("%w: failed to reset progress for %s: %v", shared.ErrStorage, courseID, err)
	}
	return nil
}

// Courses lists the IDs of courses with stored progress.
func (s *Store) Courses(ctx context.Context) ([]string, error) {
	keys, err := s.storage.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list progress keys: %v", shared.ErrStorage, err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, KeyPrefix))
	}
	return ids, nil
}

// Encode serializes p. A nil lesson map is written as an empty object so the value reloads.
func Encode(p models.CourseProgress) ([]byte, error) {
	if p.LessonProgress == nil {
		p.LessonProgress = map[string]float64{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress: %w", err)
	}
	return data, nil
}

// Decode parses and structurally checks a persisted progress blob.
//
// currentChapter, currentLesson, lastPosition and progress must be present and numeric,
// with the three indices/percentages non-negative integers. lessonProgress must be an object
// of numbers. lastAccessTime is optional but must be an ISO-8601 string when present.
func Decode(data []byte) (models.CourseProgress, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return models.CourseProgress{}, fmt.Errorf("%w: %v", shared.ErrMalformedState, err)
	}
	if fields == nil {
		return models.CourseProgress{}, fmt.Errorf("%w: not an object", shared.ErrMalformedState)
	}

	var p models.CourseProgress
	var err error

	if p.CurrentChapter, err = intField(fields, "currentChapter"); err != nil {
		return models.CourseProgress{}, err
	}
	if p.CurrentLesson, err = intField(fields, "currentLesson"); err != nil {
		return models.CourseProgress{}, err
	}
	if p.Progress, err = intField(fields, "progress"); err != nil {
		return models.CourseProgress{}, err
	}
	if p.Progress > 100 {
		return models.CourseProgress{}, fmt.Errorf("%w: progress %d exceeds 100", shared.ErrMalformedState, p.Progress)
	}
	if p.LastPosition, err = numberField(fields, "lastPosition"); err != nil {
		return models.CourseProgress{}, err
	}

	raw, ok := fields["lessonProgress"]
	if !ok || isNull(raw) {
		return models.CourseProgress{}, fmt.Errorf("%w: missing lessonProgress", shared.ErrMalformedState)
	}
	if err := json.Unmarshal(raw, &p.LessonProgress); err != nil {
		return models.CourseProgress{}, fmt.Errorf("%w: lessonProgress: %v", shared.ErrMalformedState, err)
	}

	if raw, ok := fields["lastAccessTime"]; ok && !isNull(raw) {
		var ts string
		if err := json.Unmarshal(raw, &ts); err != nil {
			return models.CourseProgress{}, fmt.Errorf("%w: lastAccessTime is not a string", shared.ErrMalformedState)
		}
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return models.CourseProgress{}, fmt.Errorf("%w: lastAccessTime: %v", shared.ErrMalformedState, err)
		}
		p.LastAccessTime = t
	}

	return p, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func numberField(fields map[string]json.RawMessage, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return 0, fmt.Errorf("%w: missing %s", shared.ErrMalformedState, name)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", shared.ErrMalformedState, name)
	}
	if n < 0 || math.IsNaN(n) {
		return 0, fmt.Errorf("%w: %s is negative", shared.ErrMalformedState, name)
	}
	return n, nil
}

func intField(fields map[string]json.RawMessage, name string) (int, error) {
	n, err := numberField(fields, name)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) {
		return 0, fmt.Errorf("%w: %s is not an integer", shared.ErrMalformedState, name)
	}
	return int(n), nil
}
