package store

import (
	"fmt"
	"os"
	"strings"

	appErrors "github.com/classdesk/diary-api/pkg/errors"

	"github.com/classdesk/diary-api/internal/models"
)

// LessonRegistry is the ordered set of distinct lesson names ever assigned
// to a class timetable. It drives schema evolution for the homework
// calendar and every marks store of the class.
type LessonRegistry struct {
	path string
}

// NewLessonRegistry returns the registry backed by the class lesson file.
func NewLessonRegistry(path string) *LessonRegistry {
	return &LessonRegistry{path: path}
}

// Init creates an empty registry file if none exists.
func (r *LessonRegistry) Init() error {
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat lesson registry: %w", err)
	}
	if err := os.WriteFile(r.path, nil, 0o644); err != nil {
		return fmt.Errorf("init lesson registry: %w", err)
	}
	return nil
}

// Lessons returns the registered lesson names in order of first appearance.
func (r *LessonRegistry) Lessons() ([]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read lesson registry: %w", err)
	}

	var lessons []string
	for _, line := range strings.Split(string(data), "\n") {
		name := strings.TrimSpace(line)
		if name != "" {
			lessons = append(lessons, name)
		}
	}
	return lessons, nil
}

// Register appends a lesson name if absent, preserving order of first
// appearance, and reports whether it was newly added. The reserved date
// column name is rejected before any write.
func (r *LessonRegistry) Register(lesson string) (bool, error) {
	lesson = strings.TrimSpace(lesson)
	if lesson == "" {
		return false, appErrors.Clone(appErrors.ErrValidation, "lesson name must not be empty")
	}
	if lesson == models.ReservedColumn {
		return false, appErrors.Clone(appErrors.ErrReservedLessonName, fmt.Sprintf("lesson name %q is reserved", lesson))
	}

	lessons, err := r.Lessons()
	if err != nil {
		return false, err
	}
	for _, known := range lessons {
		if known == lesson {
			return false, nil
		}
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("open lesson registry: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if _, err := f.WriteString(lesson + "\n"); err != nil {
		return false, fmt.Errorf("append lesson %q: %w", lesson, err)
	}
	return true, nil
}
