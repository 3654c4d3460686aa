// Package notify holds in-app notifications for a learning session.
//
// A [Center] is created by the application, started with a context and closed on teardown.
// Components receive it explicitly; there is no package-level instance.
package notify

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zhixue/internal/shared"
)

// ErrClosed is returned by [Center.Publish] after [Center.Close].
var ErrClosed = errors.New("notification center closed")

// DefaultCapacity bounds how many notifications a Center retains.
const DefaultCapacity = 100

// Kind classifies a notification.
type Kind string

const (
	KindSystem      Kind = "system"
	KindCourse      Kind = "course"
	KindAchievement Kind = "achievement"
)

// Notification is a single message shown to the learner.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CourseID  string    `json:"courseId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}

// Filter narrows [Center.List]. Zero values match everything.
type Filter struct {
	Kind       Kind
	CourseID   string
	UnreadOnly bool
	Limit      int
}

func (f Filter) match(n Notification) bool {
	if f.Kind != "" && n.Kind != f.Kind {
		return false
	}
	if f.CourseID != "" && n.CourseID != f.CourseID {
		return false
	}
	return !f.UnreadOnly || !n.Read
}

// Center stores notifications and fans them out to subscribers.
type Center struct {
	mu       sync.Mutex
	items    []Notification // oldest first
	subs     map[int]chan Notification
	nextSub  int
	capacity int
	closed   bool
	logger   *log.Logger
	now      func() time.Time
}

// CenterOpts contains configuration options for creating a Center.
type CenterOpts struct {
	Capacity int
	Logger   *log.Logger
	Now      func() time.Time
}

// NewCenter creates an empty Center.
func NewCenter(opts CenterOpts) *Center {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Center{
		subs:     map[int]chan Notification{},
		capacity: opts.Capacity,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// Start ties the Center's lifetime to ctx: it is closed when ctx is done.
func (c *Center) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		c.Close()
	}()
}

// Close closes every subscription. Publishing afterwards fails with [ErrClosed].
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}

// Publish stores n, assigning an ID and timestamp when missing, and delivers it to subscribers.
// Slow subscribers miss notifications rather than block the publisher.
func (c *Center) Publish(n Notification) (Notification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Notification{}, ErrClosed
	}
	if n.ID == "" {
		n.ID = shared.GenerateID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = c.now().UTC()
	}
	if n.Kind == "" {
		n.Kind = KindSystem
	}

	c.items = append(c.items, n)
	if over := len(c.items) - c.capacity; over > 0 {
		c.items = slices.Delete(c.items, 0, over)
	}

	for _, ch := range c.subs {
		select {
		case ch <- n:
		default:
			c.logger.Debug("dropping notification for slow subscriber", "id", n.ID)
		}
	}
	return n, nil
}

// List returns matching notifications, newest first.
func (c *Center) List(f Filter) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, 0, len(c.items))
	for i := len(c.items) - 1; i >= 0; i-- {
		if f.match(c.items[i]) {
			out = append(out, c.items[i])
		}
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	slices.SortStableFunc(out, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Latest returns the most recent notification, if any.
func (c *Center) Latest() (Notification, bool) {
	l := c.List(Filter{Limit: 1})
	if len(l) == 0 {
		return Notification{}, false
	}
	return l[0], true
}

// MarkRead marks the notification with id as read. It reports whether id was found.
func (c *Center) MarkRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead marks every notification as read.
func (c *Center) MarkAllRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		c.items[i].Read = true
	}
}

// UnreadCount returns the number of unread notifications.
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// Subscribe returns a channel of newly published notifications and a func that cancels it.
// The channel is closed on cancel or when the Center closes.
func (c *Center) Subscribe(buffer int) (<-chan Notification, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Notification, buffer)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			close(sub)
			delete(c.subs, id)
		}
	}
}
