// Package player binds a media element to course navigation and persisted progress.
//
// # Controller
//
// [Controller] owns the learner's [models.CourseProgress] for one course while a learning
// session is open. Three sources mutate it:
//
//  1. The save tick started by [Controller.Run] (every 5 seconds by default)
//  2. Manual navigation ([Controller.SelectLesson], [Controller.Next], [Controller.Seek])
//  3. Time updates from the media element ([Controller.TimeUpdate])
//
// All three take the controller mutex and read the media position at the moment they run,
// so the tick never writes a stale copy. Writes to the store are serialized in snapshot order;
// the last write wins.
//
// When playback reaches one second before the end of a lesson the controller moves to the
// next lesson, or pauses and reports [CourseCompleted] after the final one.
//
// # Media
//
// [Media] abstracts the playing element. [ClockMedia] advances its position with wall-clock
// time and backs the terminal UI.
//
// # Events
//
// Controllers report [Event] values over an optional channel. Sends never block; events are
// dropped when the receiver falls behind.
package player
