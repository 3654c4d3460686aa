// Package progress persists per-course learner state and derives completion percentages.
//
// # Store
//
// [Store] is the only component that knows how progress is laid out in storage. Each course
// is one entry under "course-progress-{courseId}" holding a JSON object:
//
//	{"currentChapter":0,"currentLesson":1,"lessonProgress":{"0-0":42.5},
//	 "lastPosition":12,"progress":33,"lastAccessTime":"2026-01-02T03:04:05Z"}
//
// [Store.Load] never fails. Missing entries, unreadable storage and blobs that fail the
// structural check all yield the zeroed default, with a warning logged for the latter two.
// [Store.Save] overwrites the whole entry; there is no merge and no schema versioning.
//
// # Storage
//
// [Storage] abstracts the key-value backend. [MemoryStorage] keeps entries in process;
// repositories.KVRepository persists them in SQLite.
//
// # Calculator
//
// [Calculator] turns per-lesson elapsed seconds into a 0..100 percentage. With a zero
// threshold any recorded time marks a lesson complete.
package progress
