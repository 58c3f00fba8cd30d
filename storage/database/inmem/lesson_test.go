package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madrasah/darsplan/core"
	"github.com/madrasah/darsplan/core/lesson"
)

func testPlan(id, title string, createdAt time.Time) lesson.LessonPlan {
	return lesson.LessonPlan{ID: id, Title: title, CreatedAt: createdAt}
}

func planIDs(plans []lesson.LessonPlan) []string {
	ids := make([]string, len(plans))
	for i, plan := range plans {
		ids[i] = plan.ID
	}
	return ids
}

func Test_applyOrdering(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		ordering []core.DBOrdering
		plans    []lesson.LessonPlan
		want     []string
	}{
		{
			name:     "created_at ascending",
			ordering: []core.DBOrdering{{Field: "created_at", Ascending: true}},
			plans: []lesson.LessonPlan{
				testPlan("b", "", t0.Add(time.Hour)),
				testPlan("c", "", t0.Add(2*time.Hour)),
				testPlan("a", "", t0),
			},
			want: []string{"a", "b", "c"},
		},
		{
			name:     "created_at descending",
			ordering: []core.DBOrdering{{Field: "created_at"}},
			plans: []lesson.LessonPlan{
				testPlan("b", "", t0.Add(time.Hour)),
				testPlan("a", "", t0),
				testPlan("c", "", t0.Add(2*time.Hour)),
			},
			want: []string{"c", "b", "a"},
		},
		{
			name:     "descending keeps equal keys in input order",
			ordering: []core.DBOrdering{{Field: "created_at"}},
			plans: []lesson.LessonPlan{
				testPlan("a", "", t0),
				testPlan("b", "", t0),
				testPlan("c", "", t0.Add(-time.Hour)),
			},
			want: []string{"a", "b", "c"},
		},
		{
			name:     "title ascending",
			ordering: []core.DBOrdering{{Field: "title", Ascending: true}},
			plans: []lesson.LessonPlan{
				testPlan("b", "Fiqh of Salah", t0),
				testPlan("a", "Arabic Letters", t0),
			},
			want: []string{"a", "b"},
		},
		{
			name:     "unknown field leaves order alone",
			ordering: []core.DBOrdering{{Field: "owner_id", Ascending: true}},
			plans: []lesson.LessonPlan{
				testPlan("b", "", t0.Add(time.Hour)),
				testPlan("a", "", t0),
			},
			want: []string{"b", "a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applyOrdering(tt.plans, tt.ordering)
			assert.Equal(t, tt.want, planIDs(tt.plans))
		})
	}
}

func Test_lessonRepository_QueryLessonPlans_empty(t *testing.T) {
	repo := NewLessonRepository(NewDB())

	plans, err := repo.QueryLessonPlans(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, plans)
}
