// Package catalog supplies the read-only course catalog consumed by the progress tracker.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/shared"
)

//go:embed courses.json
var defaultCourses []byte

// Catalog indexes courses by ID.
type Catalog struct {
	courses map[string]*models.Course
	order   []string
}

// New builds a Catalog from courses after validating them.
func New(courses []models.Course) (*Catalog, error) {
	c := &Catalog{courses: make(map[string]*models.Course, len(courses))}

	for i := range courses {
		course := courses[i]
		if err := validate(&course); err != nil {
			return nil, err
		}
		if _, dup := c.courses[course.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate course id %s", shared.ErrInvalidCatalog, course.ID)
		}
		c.courses[course.ID] = &course
		c.order = append(c.order, course.ID)
	}

	sort.Strings(c.order)
	return c, nil
}

// Parse decodes a JSON array of courses.
func Parse(data []byte) (*Catalog, error) {
	var courses []models.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCatalog, err)
	}
	return New(courses)
}

// Load reads the catalog at path, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCourses)
}

// Get returns the course with the given ID.
func (c *Catalog) Get(id string) (*models.Course, error) {
	course, ok := c.courses[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrCourseNotFound, id)
	}
	return course, nil
}

// List returns all courses ordered by ID.
func (c *Catalog) List() []*models.Course {
	out := make([]*models.Course, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.courses[id])
	}
	return out
}

// Len returns the number of courses.
func (c *Catalog) Len() int { return len(c.order) }

// validCourseID matches IDs that are safe to use as file name components.
var validCourseID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func validate(c *models.Course) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: course without id", shared.ErrInvalidCatalog)
	}
	if !validCourseID.MatchString(c.ID) || strings.Contains(c.ID, "..") {
		return fmt.Errorf("%w: course id %q may only contain letters, digits, '.', '_' and '-'", shared.ErrInvalidCatalog, c.ID)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: course %s has no title", shared.ErrInvalidCatalog, c.ID)
	}
	for ci, ch := range c.Chapters {
		for li, l := range ch.Lessons {
			key := models.LessonKey(ci, li)
			if strings.TrimSpace(l.VideoURL) == "" {
				return fmt.Errorf("%w: course %s lesson %s has no videoUrl", shared.ErrInvalidCatalog, c.ID, key)
			}
			if l.Duration <= 0 {
				return fmt.Errorf("%w: course %s lesson %s must have a positive duration", shared.ErrInvalidCatalog, c.ID, key)
			}
		}
	}
	return nil
}
