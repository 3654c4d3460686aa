// Package models defines the domain entities of the zhixue learning tracker.
//
// The package contains two categories of types:
//
// 1. Catalog entities: read-only course content supplied by the course catalog
//   - [Course] : A course with metadata and ordered chapters
//   - [Chapter] : An ordered group of lessons
//   - [Lesson] : The smallest playable unit, with a video source and duration
//
// 2. Learner state: values persisted per course by the progress store
//   - [CourseProgress] : Current chapter/lesson, per-lesson elapsed seconds, overall percentage
//   - [Position] : A (chapter, lesson) index pair
//   - [Session] : One sitting with the player, kept as history in the database
//
// Lesson progress is keyed by "chapterIndex-lessonIndex" strings built with [LessonKey].
package models
