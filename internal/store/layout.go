// Package store implements the per-class file-backed stores: timetable,
// homework calendar, class roster, per-student marks and the lesson and
// class registries. File and table names match the legacy desktop client,
// so bundles extracted by older clients keep working.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

const (
	studentsDir = "students_dbs"
	teachersDir = "teachers_dbs"
	adminsDir   = "admins_dbs"

	accountsFile = "logins.db"
	classesFile  = "classes.txt"

	timetableFile = "time_table.db"
	homeworkFile  = "home_works.db"
	rosterFile    = "class_list.db"
	lessonsFile   = "lesson_list.txt"
)

// Layout maps logical store names onto the data directory.
type Layout struct {
	DataDir string
}

// EnsureBaseDirs creates the role directories the stores live under.
func (l Layout) EnsureBaseDirs() error {
	for _, dir := range []string{l.DataDir, filepath.Join(l.DataDir, studentsDir), filepath.Join(l.DataDir, teachersDir), filepath.Join(l.DataDir, adminsDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func (l Layout) AccountsPath() string { return filepath.Join(l.DataDir, accountsFile) }
func (l Layout) ClassesPath() string  { return filepath.Join(l.DataDir, classesFile) }

func (l Layout) ClassDir(class string) string {
	return filepath.Join(l.DataDir, studentsDir, class)
}

func (l Layout) TimetablePath(class string) string {
	return filepath.Join(l.ClassDir(class), timetableFile)
}

func (l Layout) HomeworkPath(class string) string {
	return filepath.Join(l.ClassDir(class), homeworkFile)
}

func (l Layout) RosterPath(class string) string {
	return filepath.Join(l.ClassDir(class), rosterFile)
}

func (l Layout) LessonsPath(class string) string {
	return filepath.Join(l.ClassDir(class), lessonsFile)
}

func (l Layout) MarksPath(class, login string) string {
	return filepath.Join(l.ClassDir(class), login+".db")
}

func (l Layout) TeacherPath(login string) string {
	return filepath.Join(l.DataDir, teachersDir, login+".db")
}

func (l Layout) AdminPath(login string) string {
	return filepath.Join(l.DataDir, adminsDir, login+".db")
}

// Resolve joins a client-supplied relative path with the data directory,
// rejecting anything that would escape it.
func (l Layout) Resolve(rel string) (string, error) {
	if err := ValidateRelPath(rel); err != nil {
		return "", err
	}
	return filepath.Join(l.DataDir, filepath.FromSlash(rel)), nil
}

// ValidateName rejects names unusable as a single path element (class names
// and logins become directory and file names).
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "name must not be empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`+"\x00") {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("name %q is not a valid identifier", name))
	}
	return nil
}

// ValidateRelPath rejects relative paths that traverse out of the data dir.
func ValidateRelPath(rel string) error {
	if strings.TrimSpace(rel) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "path must not be empty")
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("path %q escapes the data directory", rel))
	}
	return nil
}
