package inmemdb

import (
	"sync"

	"github.com/madrasah/darsplan/core/lesson"
	"github.com/madrasah/darsplan/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	lessonTable struct {
		mutex sync.RWMutex
		table map[string]*lesson.LessonPlan
	}

	DB struct {
		user   *userTable
		lesson *lessonTable
	}
)

func NewDB() *DB {
	return &DB{
		user:   &userTable{table: make(map[string]*user.User)},
		lesson: &lessonTable{table: make(map[string]*lesson.LessonPlan)},
	}
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.user.mutex.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.mutex.Unlock()

	db.lesson.mutex.Lock()
	db.lesson.table = make(map[string]*lesson.LessonPlan)
	db.lesson.mutex.Unlock()
}
