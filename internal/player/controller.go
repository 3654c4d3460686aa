package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zhixue/internal/course"
	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/progress"
	"github.com/desertthunder/zhixue/internal/shared"
)

// DefaultSaveInterval is the period of the progress tick.
const DefaultSaveInterval = 5 * time.Second

// Status is a point-in-time view of the controller for rendering.
type Status struct {
	CourseID string
	Position models.Position
	Lesson   *models.Lesson
	Elapsed  float64
	Duration float64
	Playing  bool
	Volume   int
	Progress int
	Finished bool
}

// Controller coordinates a [Media] element, lesson navigation and the progress [progress.Store].
type Controller struct {
	mu     sync.Mutex
	saveMu sync.Mutex // orders snapshot+write pairs

	courseID string
	course   *models.Course
	store    *progress.Store
	media    Media
	calc     progress.Calculator
	logger   *log.Logger
	interval time.Duration
	now      func() time.Time
	events   chan<- Event
	volume   int

	state    models.CourseProgress
	opened   bool
	loaded   bool // media holds the current lesson's source
	finished bool
}

// ControllerOpts contains configuration options for creating a Controller.
type ControllerOpts struct {
	CourseID   string
	Course     *models.Course
	Store      *progress.Store
	Media      Media
	Calculator progress.Calculator
	Logger     *log.Logger
	Interval   time.Duration    // defaults to DefaultSaveInterval
	Now        func() time.Time // defaults to time.Now
	Events     chan<- Event     // optional
	Volume     int              // initial volume, 0..100
}

// NewController creates a Controller. Call [Controller.Open] before any other method.
func NewController(opts ControllerOpts) *Controller {
	if opts.CourseID == "" && opts.Course != nil {
		opts.CourseID = opts.Course.ID
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Store == nil {
		opts.Store = progress.NewStore(progress.StoreOpts{Logger: opts.Logger})
	}
	if opts.Media == nil {
		opts.Media = NewClockMedia(opts.Now)
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultSaveInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller{
		courseID: opts.CourseID,
		course:   opts.Course,
		store:    opts.Store,
		media:    opts.Media,
		calc:     opts.Calculator,
		logger:   shared.WithLogger(opts.Logger, "course", opts.CourseID),
		interval: opts.Interval,
		now:      opts.Now,
		events:   opts.Events,
		volume:   clampVolume(opts.Volume),
	}
}

// Open loads saved progress and cues the saved lesson at its saved position without playing.
//
// A saved position that no longer exists in the course restarts from the first lesson.
func (c *Controller) Open(ctx context.Context) error {
	if c.course.TotalLessons() == 0 {
		return fmt.Errorf("%w: course %s has no lessons", shared.ErrLessonUnavailable, c.courseID)
	}

	state := c.store.Load(ctx, c.courseID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := course.Clamp(c.course, state.Position()); !ok {
		first, _ := course.Advance(c.course, models.Position{Chapter: 0, Lesson: -1})
		c.logger.Warn("saved lesson no longer exists, restarting course", "position", state.Position())
		state.CurrentChapter, state.CurrentLesson = first.Chapter, first.Lesson
		state.LastPosition = state.LessonProgress[first.Key()]
	}
	if state.LessonProgress == nil {
		state.LessonProgress = map[string]float64{}
	}

	state.Progress = c.calc.Overall(c.course, state.LessonProgress)
	c.state = state
	c.opened = true

	c.media.SetVolume(c.volume)
	return c.cueLocked(state.Position(), state.LastPosition, false)
}

// Play starts or resumes playback. Media failures are logged and reported as events.
func (c *Controller) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		c.mediaFailedLocked(fmt.Errorf("%w: lesson not loaded", shared.ErrMedia))
		return
	}
	if c.finished {
		// replay the final lesson instead of immediately completing again
		c.finished = false
		if err := c.media.Seek(0); err != nil {
			c.mediaFailedLocked(err)
		}
	}
	if err := c.media.Play(); err != nil {
		c.mediaFailedLocked(err)
	}
}

// Pause stops playback and records the current position.
func (c *Controller) Pause(ctx context.Context) error {
	c.mu.Lock()
	c.media.Pause()
	c.syncLocked()
	c.mu.Unlock()

	return c.Save(ctx)
}

// Toggle plays when paused and pauses when playing.
func (c *Controller) Toggle(ctx context.Context) error {
	if c.media.Playing() {
		return c.Pause(ctx)
	}
	c.Play()
	return nil
}

// Seek moves playback to seconds, clamped to the lesson bounds.
func (c *Controller) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return
	}
	seconds = min(max(seconds, 0), c.media.Duration())
	if err := c.media.Seek(seconds); err != nil {
		c.mediaFailedLocked(err)
		return
	}
	c.syncLocked()
}

// SeekBy moves playback by delta seconds relative to the current position.
func (c *Controller) SeekBy(delta float64) {
	c.Seek(c.media.Position() + delta)
}

// SetVolume sets the media volume, clamped to 0..100.
func (c *Controller) SetVolume(volume int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = clampVolume(volume)
	c.media.SetVolume(c.volume)
}

// SelectLesson switches to pos, seeks to its saved position and resumes playback.
//
// An invalid pos leaves the current lesson untouched and returns [shared.ErrLessonUnavailable].
func (c *Controller) SelectLesson(ctx context.Context, pos models.Position) error {
	c.mu.Lock()
	l, err := course.Resolve(c.course, pos)
	if err != nil {
		c.sendEvent(unavailableEvent(c.courseID, pos, err))
		c.mu.Unlock()
		c.logger.Warn("lesson unavailable", "position", pos, "err", err)
		return err
	}

	c.syncLocked()
	resume := c.state.LessonProgress[pos.Key()]
	if course.ShouldAdvance(resume, float64(l.Duration)) {
		resume = 0
	}
	c.finished = false
	err = c.cueLocked(pos, resume, true)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	return c.Save(ctx)
}

// Next moves to the following lesson. It reports false at the end of the course.
func (c *Controller) Next(ctx context.Context) (bool, error) {
	c.mu.Lock()
	next, ok := course.Advance(c.course, c.state.Position())
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, c.SelectLesson(ctx, next)
}

// TimeUpdate records the media position and applies the auto-advance rule.
//
// Call it whenever the media position changes; the save tick also calls it before saving.
func (c *Controller) TimeUpdate(ctx context.Context) error {
	c.mu.Lock()
	c.syncLocked()

	if !c.loaded || !c.media.Playing() || !course.ShouldAdvance(c.media.Position(), c.media.Duration()) {
		c.mu.Unlock()
		return nil
	}

	cur := c.state.Position()
	if l, err := course.Resolve(c.course, cur); err == nil {
		c.sendEvent(lessonCompletedEvent(c.courseID, cur, l, c.state.Progress))
	}

	next, ok := course.Advance(c.course, cur)
	if !ok {
		c.media.Pause()
		c.syncLocked()
		if !c.finished {
			c.finished = true
			c.sendEvent(courseCompletedEvent(c.courseID, cur, c.state.Progress))
			c.logger.Info("course completed", "progress", c.state.Progress)
		}
		c.mu.Unlock()
		return c.Save(ctx)
	}

	resume := c.state.LessonProgress[next.Key()]
	if l, err := course.Resolve(c.course, next); err == nil && course.ShouldAdvance(resume, float64(l.Duration)) {
		resume = 0
	}
	err := c.cueLocked(next, resume, true)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.Save(ctx)
}

// Save writes the current state to the store, stamping lastAccessTime.
func (c *Controller) Save(ctx context.Context) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	if !c.opened {
		c.mu.Unlock()
		return nil
	}
	c.syncLocked()
	c.state.LastAccessTime = c.now().UTC()
	snapshot := c.state.Clone()
	c.mu.Unlock()

	if err := c.store.Save(ctx, c.courseID, snapshot); err != nil {
		c.logger.Error("failed to save progress", "err", err)
		c.sendEvent(saveFailedEvent(c.courseID, snapshot.Position(), err))
		return err
	}

	c.logger.Debug("progress saved", "position", snapshot.Position(), "at", snapshot.LastPosition, "progress", snapshot.Progress)
	c.sendEvent(savedEvent(c.courseID, snapshot))
	return nil
}

// Run drives the save tick until ctx is cancelled. While media is playing, each tick records
// the current position and saves. The ticker is stopped on return.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !c.media.Playing() {
				continue
			}
			if err := c.TimeUpdate(ctx); err != nil {
				c.logger.Warn("time update failed", "err", err)
			}
			_ = c.Save(ctx)
		}
	}
}

// Snapshot returns a copy of the current progress.
func (c *Controller) Snapshot() models.CourseProgress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Status returns what a view needs to render the player.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos := c.state.Position()
	l, _ := course.Resolve(c.course, pos)
	return Status{
		CourseID: c.courseID,
		Position: pos,
		Lesson:   l,
		Elapsed:  c.media.Position(),
		Duration: c.media.Duration(),
		Playing:  c.media.Playing(),
		Volume:   c.media.Volume(),
		Progress: c.state.Progress,
		Finished: c.finished,
	}
}

// Course returns the course being played.
func (c *Controller) Course() *models.Course {
	return c.course
}

// cueLocked loads the lesson at pos, seeks to at and optionally starts playback.
//
// Media failures are logged; the position still changes so navigation stays consistent,
// but the media is paused and nothing is recorded for pos until a lesson loads.
func (c *Controller) cueLocked(pos models.Position, at float64, autoplay bool) error {
	l, err := course.Resolve(c.course, pos)
	if err != nil {
		c.sendEvent(unavailableEvent(c.courseID, pos, err))
		return err
	}

	c.state.CurrentChapter, c.state.CurrentLesson = pos.Chapter, pos.Lesson
	c.state.LastPosition = at

	if err := c.media.Load(l.VideoURL, float64(l.Duration)); err != nil {
		c.loaded = false
		c.media.Pause()
		c.mediaFailedLocked(err)
	} else {
		c.loaded = true
		if _, seen := c.state.LessonProgress[pos.Key()]; !seen {
			c.state.LessonProgress[pos.Key()] = at
		}
		if at > 0 {
			if err := c.media.Seek(at); err != nil {
				c.mediaFailedLocked(err)
			}
		}
		if autoplay {
			if err := c.media.Play(); err != nil {
				c.mediaFailedLocked(err)
			}
		}
	}

	c.logger.Debug("lesson cued", "position", pos, "lesson", l.ID, "at", at)
	c.sendEvent(lessonChangedEvent(c.courseID, pos, l, c.state.Progress))
	return nil
}

// syncLocked copies the media position into the state of the current lesson.
// It does nothing while the current lesson failed to load.
func (c *Controller) syncLocked() {
	if !c.opened || !c.loaded {
		return
	}
	at := c.media.Position()
	c.state.LessonProgress[c.state.Position().Key()] = at
	c.state.LastPosition = at
	c.state.Progress = c.calc.Overall(c.course, c.state.LessonProgress)
}

func (c *Controller) mediaFailedLocked(err error) {
	c.logger.Error("media error", "position", c.state.Position(), "err", err)
	c.sendEvent(mediaErrorEvent(c.courseID, c.state.Position(), err))
}

// sendEvent delivers e without blocking.
func (c *Controller) sendEvent(e Event) {
	if c.events == nil {
		return
	}
	select {
	case c.events <- e:
	default:
	}
}
