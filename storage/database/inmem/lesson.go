package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/madrasah/darsplan/core"
	"github.com/madrasah/darsplan/core/lesson"
)

type lessonRepository struct {
	db    *lessonTable
	users *userTable
}

func NewLessonRepository(db *DB) lesson.Repository {
	return &lessonRepository{db: db.lesson, users: db.user}
}

func (repo *lessonRepository) ownerName(ownerID string) string {
	repo.users.mutex.RLock()
	defer repo.users.mutex.RUnlock()
	if usr, ok := repo.users.table[ownerID]; ok {
		return usr.Name
	}
	return ""
}

func (repo *lessonRepository) CreateLessonPlan(ctx context.Context, plan lesson.LessonPlan) (lesson.LessonPlan, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	repo.db.table[plan.ID] = &plan
	return plan, nil
}

func (repo *lessonRepository) GetLessonPlanByID(ctx context.Context, id string) (lesson.LessonPlan, error) {
	repo.db.mutex.RLock()
	plan, ok := repo.db.table[id]
	repo.db.mutex.RUnlock()

	if !ok {
		return lesson.LessonPlan{}, lesson.ErrNotFound
	}
	res := *plan
	res.OwnerName = repo.ownerName(res.OwnerID)
	return res, nil
}

func (repo *lessonRepository) QueryLessonPlans(ctx context.Context, filter *lesson.QueryFilter, ordering ...core.DBOrdering) ([]lesson.LessonPlan, error) {
	repo.db.mutex.RLock()
	plans := make([]lesson.LessonPlan, 0, len(repo.db.table))
	for _, plan := range repo.db.table {
		plans = append(plans, *plan)
	}
	repo.db.mutex.RUnlock()

	var res []lesson.LessonPlan
	for _, plan := range plans {
		plan.OwnerName = repo.ownerName(plan.OwnerID)
		if matchesFilter(plan, filter) {
			res = append(res, plan)
		}
	}
	applyOrdering(res, ordering)
	return res, nil
}

func (repo *lessonRepository) UpdateLessonPlan(ctx context.Context, plan lesson.LessonPlan) (lesson.LessonPlan, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[plan.ID]
	if !ok {
		return lesson.LessonPlan{}, lesson.ErrNotFound
	}
	orig.Title = plan.Title
	orig.Subject = plan.Subject
	orig.GradeLevel = plan.GradeLevel
	orig.Content = plan.Content
	orig.UpdatedAt = plan.UpdatedAt
	return *orig, nil
}

func (repo *lessonRepository) DeleteLessonPlansByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			n++
		}
	}
	return n, nil
}

func matchesFilter(plan lesson.LessonPlan, filter *lesson.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.OwnerID != "" && plan.OwnerID != filter.OwnerID {
		return false
	}
	if filter.Subject != "" && plan.Subject != filter.Subject {
		return false
	}
	if filter.GradeLevel != "" && plan.GradeLevel != filter.GradeLevel {
		return false
	}
	if filter.Week != "" && plan.Content.Week != filter.Week {
		return false
	}
	if filter.OwnerName != "" && !strings.Contains(strings.ToLower(plan.OwnerName), strings.ToLower(filter.OwnerName)) {
		return false
	}
	return true
}

func applyOrdering(plans []lesson.LessonPlan, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		return
	}
	ord := ordering[0]
	less := func(a, b lesson.LessonPlan) bool {
		switch ord.Field {
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "title":
			return a.Title < b.Title
		case "subject":
			return a.Subject < b.Subject
		case "grade_level":
			return a.GradeLevel < b.GradeLevel
		}
		return false
	}
	sort.SliceStable(plans, func(i, j int) bool {
		// descending swaps operands; equal keys must compare false both
		// ways or the sort loses stability
		if ord.Ascending {
			return less(plans[i], plans[j])
		}
		return less(plans[j], plans[i])
	})
}
