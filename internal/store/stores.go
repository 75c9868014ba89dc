package store

import (
	"github.com/classdesk/diary-api/pkg/config"
)

// Stores hands out typed handles onto the per-class store files.
type Stores struct {
	Layout Layout
	Cfg    config.StorageConfig
}

func NewStores(layout Layout, cfg config.StorageConfig) Stores {
	return Stores{Layout: layout, Cfg: cfg}
}

func (s Stores) Timetable(class string) *TimetableStore {
	return NewTimetableStore(s.Layout.TimetablePath(class), s.Cfg)
}

func (s Stores) Homework(class string) *HomeworkStore {
	return NewHomeworkStore(s.Layout.HomeworkPath(class), s.Cfg)
}

func (s Stores) Roster(class string) *RosterStore {
	return NewRosterStore(s.Layout.RosterPath(class), s.Cfg)
}

func (s Stores) Marks(class, login string) *MarksStore {
	return NewMarksStore(s.Layout.MarksPath(class, login), s.Cfg)
}

func (s Stores) Lessons(class string) *LessonRegistry {
	return NewLessonRegistry(s.Layout.LessonsPath(class))
}
