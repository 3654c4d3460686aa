package player

import (
	"fmt"

	"github.com/desertthunder/zhixue/internal/notify"
)

// Notification converts e into a learner-facing notification.
// Routine events such as saves and lesson switches report false.
func Notification(e Event) (notify.Notification, bool) {
	switch e.Kind {
	case LessonCompleted:
		title := "Lesson completed"
		if e.Lesson != nil {
			title = fmt.Sprintf("Completed %s", e.Lesson.Title)
		}
		return notify.Notification{
			Kind:     notify.KindCourse,
			Title:    title,
			Message:  fmt.Sprintf("Course progress %d%%", e.Progress),
			CourseID: e.CourseID,
		}, true
	case CourseCompleted:
		return notify.Notification{
			Kind:     notify.KindAchievement,
			Title:    "Course completed",
			Message:  fmt.Sprintf("You finished every lesson (%d%%)", e.Progress),
			CourseID: e.CourseID,
		}, true
	case LessonUnavailable:
		return notify.Notification{
			Kind:     notify.KindSystem,
			Title:    "Lesson unavailable",
			Message:  fmt.Sprintf("Lesson %s is not part of this course", e.Position),
			CourseID: e.CourseID,
		}, true
	case MediaError:
		return notify.Notification{
			Kind:     notify.KindSystem,
			Title:    "Playback error",
			Message:  errString(e.Err),
			CourseID: e.CourseID,
		}, true
	case SaveFailed:
		return notify.Notification{
			Kind:     notify.KindSystem,
			Title:    "Progress not saved",
			Message:  errString(e.Err),
			CourseID: e.CourseID,
		}, true
	default:
		return notify.Notification{}, false
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
