package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zhixue/internal/catalog"
	"github.com/desertthunder/zhixue/internal/course"
	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/notify"
	"github.com/desertthunder/zhixue/internal/progress"
	"github.com/desertthunder/zhixue/internal/shared"
)

// maxBodyBytes bounds PUT /progress/{id} bodies.
const maxBodyBytes = 1 << 20

// API serves the catalog, the progress store and notifications as JSON.
type API struct {
	catalog *catalog.Catalog
	store   *progress.Store
	center  *notify.Center
	calc    progress.Calculator
	logger  *log.Logger
	now     func() time.Time
}

// APIOpts contains configuration options for creating an API.
type APIOpts struct {
	Catalog    *catalog.Catalog
	Store      *progress.Store
	Center     *notify.Center // optional
	Calculator progress.Calculator
	Logger     *log.Logger
	Now        func() time.Time
}

// NewAPI creates an API.
func NewAPI(opts APIOpts) *API {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &API{
		catalog: opts.Catalog,
		store:   opts.Store,
		center:  opts.Center,
		calc:    opts.Calculator,
		logger:  opts.Logger,
		now:     opts.Now,
	}
}

// Register adds every API route to r.
func (a *API) Register(r Router) {
	r.Handler(&HealthHandler{Catalog: a.catalog})
	r.Handle(http.MethodGet, "/courses", http.HandlerFunc(a.listCourses))
	r.Handle(http.MethodGet, "/courses/{id}", http.HandlerFunc(a.getCourse))
	r.Handle(http.MethodGet, "/progress", http.HandlerFunc(a.listProgress))
	r.Handle(http.MethodGet, "/progress/{id}", http.HandlerFunc(a.getProgress))
	r.Handle(http.MethodPut, "/progress/{id}", http.HandlerFunc(a.putProgress))
	r.Handle(http.MethodDelete, "/progress/{id}", http.HandlerFunc(a.deleteProgress))
	r.Handle(http.MethodGet, "/notifications", http.HandlerFunc(a.listNotifications))
	r.Handle(http.MethodPost, "/notifications/read", http.HandlerFunc(a.markAllRead))
	r.Handle(http.MethodPost, "/notifications/{id}/read", http.HandlerFunc(a.markRead))
}

// NewHandler builds a router with the standard middleware stack and every API route.
func NewHandler(a *API, cfg shared.ServerConfig) *BasicRouter {
	r := NewBasicRouter()
	r.Use(Recover(a.logger), Logging(a.logger), RateLimit(cfg.RateLimit, cfg.Burst))
	a.Register(r)
	return r
}

// CourseSummary is a catalog entry with the learner's overall progress.
type CourseSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Instructor   string `json:"instructor,omitempty"`
	Category     string `json:"category,omitempty"`
	SkillPoints  int    `json:"skillPoints"`
	TotalLessons int    `json:"totalLessons"`
	Duration     int    `json:"duration"`
	Progress     int    `json:"progress"`
}

// HealthHandler reports liveness and the size of the loaded catalog.
type HealthHandler struct {
	Catalog *catalog.Catalog
}

func (h *HealthHandler) Routes() []string {
	return []string{"GET /health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "courses": h.Catalog.Len()})
}

func (a *API) listCourses(w http.ResponseWriter, r *http.Request) {
	courses := a.catalog.List()
	out := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		p := a.store.Load(r.Context(), c.ID)
		out = append(out, CourseSummary{
			ID:           c.ID,
			Title:        c.Title,
			Instructor:   c.Instructor,
			Category:     c.Category,
			SkillPoints:  c.SkillPoints,
			TotalLessons: c.TotalLessons(),
			Duration:     c.TotalDuration(),
			Progress:     a.calc.Overall(c, p.LessonProgress),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getCourse(w http.ResponseWriter, r *http.Request) {
	c, err := a.catalog.Get(r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) listProgress(w http.ResponseWriter, r *http.Request) {
	ids, err := a.store.Courses(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make(map[string]models.CourseProgress, len(ids))
	for _, id := range ids {
		out[id] = a.store.Load(r.Context(), id)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getProgress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := a.catalog.Get(id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.store.Load(r.Context(), id))
}

// putProgress replaces the stored progress for a course. The body must pass the same
// structural check as stored blobs and point at an existing lesson. progress and
// lastAccessTime are always recomputed server-side.
func (a *API) putProgress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, err := a.catalog.Get(id)
	if err != nil {
		writeErr(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	p, err := progress.Decode(body)
	if err != nil {
		writeErr(w, err)
		return
	}
	if _, err := course.Resolve(c, p.Position()); err != nil {
		writeErr(w, err)
		return
	}

	before := a.store.Load(r.Context(), id)

	p.Progress = a.calc.Overall(c, p.LessonProgress)
	p.LastAccessTime = a.now().UTC()
	if err := a.store.Save(r.Context(), id, p); err != nil {
		a.logger.Error("failed to save progress", "course", id, "err", err)
		writeErr(w, err)
		return
	}

	if p.Progress == 100 && before.Progress < 100 {
		a.publish(notify.Notification{
			Kind:     notify.KindAchievement,
			Title:    "Course completed",
			Message:  fmt.Sprintf("You finished %s", c.Title),
			CourseID: id,
		})
	}

	writeJSON(w, http.StatusOK, p)
}

func (a *API) deleteProgress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.store.Reset(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listNotifications(w http.ResponseWriter, r *http.Request) {
	if a.center == nil {
		writeJSON(w, http.StatusOK, []notify.Notification{})
		return
	}

	q := r.URL.Query()
	f := notify.Filter{
		Kind:     notify.Kind(q.Get("kind")),
		CourseID: q.Get("course"),
	}
	if v := q.Get("unread"); v != "" {
		unread, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unread must be a boolean")
			return
		}
		f.UnreadOnly = unread
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		f.Limit = limit
	}

	writeJSON(w, http.StatusOK, a.center.List(f))
}

func (a *API) markRead(w http.ResponseWriter, r *http.Request) {
	if a.center == nil || !a.center.MarkRead(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) markAllRead(w http.ResponseWriter, r *http.Request) {
	if a.center != nil {
		a.center.MarkAllRead()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) publish(n notify.Notification) {
	if a.center == nil {
		return
	}
	if _, err := a.center.Publish(n); err != nil {
		a.logger.Warn("failed to publish notification", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps domain errors to status codes.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrMalformedState), errors.Is(err, shared.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrLessonUnavailable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
