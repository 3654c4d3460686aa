package player

import "github.com/desertthunder/zhixue/internal/models"

// EventKind enumerates controller events.
type EventKind int

const (
	LessonChanged EventKind = iota
	LessonCompleted
	ProgressSaved
	CourseCompleted
	LessonUnavailable
	MediaError
	SaveFailed
)

func (k EventKind) String() string {
	switch k {
	case LessonChanged:
		return "lesson_changed"
	case LessonCompleted:
		return "lesson_completed"
	case ProgressSaved:
		return "progress_saved"
	case CourseCompleted:
		return "course_completed"
	case LessonUnavailable:
		return "lesson_unavailable"
	case MediaError:
		return "media_error"
	case SaveFailed:
		return "save_failed"
	default:
		return ""
	}
}

// Event is emitted by a [Controller] as playback state changes.
type Event struct {
	Kind     EventKind
	CourseID string
	Position models.Position
	Lesson   *models.Lesson // nil when the position does not resolve
	Progress int            // overall percentage at emit time
	Err      error
}

func lessonChangedEvent(courseID string, pos models.Position, l *models.Lesson, pct int) Event {
	return Event{Kind: LessonChanged, CourseID: courseID, Position: pos, Lesson: l, Progress: pct}
}

func lessonCompletedEvent(courseID string, pos models.Position, l *models.Lesson, pct int) Event {
	return Event{Kind: LessonCompleted, CourseID: courseID, Position: pos, Lesson: l, Progress: pct}
}

func savedEvent(courseID string, p models.CourseProgress) Event {
	return Event{Kind: ProgressSaved, CourseID: courseID, Position: p.Position(), Progress: p.Progress}
}

func courseCompletedEvent(courseID string, pos models.Position, pct int) Event {
	return Event{Kind: CourseCompleted, CourseID: courseID, Position: pos, Progress: pct}
}

func unavailableEvent(courseID string, pos models.Position, err error) Event {
	return Event{Kind: LessonUnavailable, CourseID: courseID, Position: pos, Err: err}
}

func mediaErrorEvent(courseID string, pos models.Position, err error) Event {
	return Event{Kind: MediaError, CourseID: courseID, Position: pos, Err: err}
}

func saveFailedEvent(courseID string, pos models.Position, err error) Event {
	return Event{Kind: SaveFailed, CourseID: courseID, Position: pos, Err: err}
}
