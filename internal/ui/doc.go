// Package ui implements the terminal learning view using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [CourseListView] : Browse the catalog with each course's saved progress
//  2. [PlayerView] : Chapter/lesson outline beside the player surface
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// A frame tick polls the [player.Controller] for time updates while the controller's own ticker saves progress.
// Controller events and notifications flow through channels, each drained by a blocking command that re-arms itself.
//
// Keys: space play/pause, ←/→ seek, +/- volume, n next lesson, enter select lesson, q quit.
// Quitting stops the save ticker and saves once.
package ui
