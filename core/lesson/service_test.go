package lesson_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madrasah/darsplan/core/lesson"
	inmemdb "github.com/madrasah/darsplan/storage/database/inmem"
	testutil "github.com/madrasah/darsplan/tests"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                        {}
func (nopLogger) Debug(string, ...interface{})       {}
func (nopLogger) Info(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})        {}
func (nopLogger) Error(string, ...interface{})       {}
func (nopLogger) Fatal(msg string, _ ...interface{}) { panic(msg) }

type changeLog struct {
	changes []lesson.Change
}

func (cl *changeLog) LessonChanged(chg lesson.Change) {
	cl.changes = append(cl.changes, chg)
}

func setup(t *testing.T) (*lesson.Service, *inmemdb.DB, *changeLog) {
	t.Helper()
	db := inmemdb.NewDB()
	changes := new(changeLog)
	svc := lesson.NewService(inmemdb.NewLessonRepository(db), changes, nopLogger{})
	return svc, db, changes
}

func TestService_CreateGet(t *testing.T) {
	ctx := context.Background()
	svc, db, changes := setup(t)

	teacher := testutil.CreateUser(t, inmemdb.NewUserRepository(db), "Aisha Bello", "aisha@test.cd", "", "", true)
	actor := lesson.Actor{ID: teacher.ID}

	plan, err := svc.Create(ctx, actor, lesson.NewLessonPlan{
		Title:      "Intro to Tajweed",
		Subject:    "Quran",
		GradeLevel: "Primary 3",
		Content:    lesson.Content{Week: "Week 1", Objectives: "Learn the rules of noon sakinah"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, teacher.ID, plan.OwnerID)

	got, err := svc.Get(ctx, actor, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro to Tajweed", got.Title)
	assert.Equal(t, "Quran", got.Subject)
	assert.Equal(t, "Primary 3", got.GradeLevel)
	assert.Equal(t, "Week 1", got.Content.Week)

	require.Len(t, changes.changes, 1)
	assert.Equal(t, lesson.OpCreated, changes.changes[0].Op)
	assert.Equal(t, plan.ID, changes.changes[0].ID)
}

func TestService_ownershipScoping(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := setup(t)

	usrRepo := inmemdb.NewUserRepository(db)
	owner := testutil.CreateUser(t, usrRepo, "Aisha Bello", "aisha@test.cd", "", "", true)
	other := testutil.CreateUser(t, usrRepo, "Umar Farouk", "umar@test.cd", "", "", true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", "admin", true)

	plan := testutil.CreateLesson(t, inmemdb.NewLessonRepository(db), owner, "Wudu basics", "Fiqh", "Primary 1", lesson.Content{})

	// another teacher cannot even see the plan
	_, err := svc.Get(ctx, lesson.Actor{ID: other.ID}, plan.ID)
	assert.Equal(t, lesson.ErrNotFound, errors.Cause(err))

	// admins can read it
	got, err := svc.Get(ctx, lesson.Actor{ID: admin.ID, Admin: true}, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aisha Bello", got.OwnerName)

	// but admins cannot mutate what they do not own
	_, err = svc.Update(ctx, lesson.Actor{ID: admin.ID, Admin: true}, plan.ID, lesson.UpdateLessonPlan{
		Title: "hijacked", Subject: "Fiqh", GradeLevel: "Primary 1",
	})
	assert.Equal(t, lesson.ErrReadOnly, errors.Cause(err))
	err = svc.Delete(ctx, lesson.Actor{ID: admin.ID, Admin: true}, plan.ID)
	assert.Equal(t, lesson.ErrReadOnly, errors.Cause(err))

	// a non-owner non-admin gets not-found on mutation, no existence hint
	err = svc.Delete(ctx, lesson.Actor{ID: other.ID}, plan.ID)
	assert.Equal(t, lesson.ErrNotFound, errors.Cause(err))
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := setup(t)

	usrRepo := inmemdb.NewUserRepository(db)
	lsnRepo := inmemdb.NewLessonRepository(db)
	aisha := testutil.CreateUser(t, usrRepo, "Aisha Bello", "aisha@test.cd", "", "", true)
	umar := testutil.CreateUser(t, usrRepo, "Umar Farouk", "umar@test.cd", "", "", true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", "admin", true)

	quran1 := testutil.CreateLesson(t, lsnRepo, aisha, "Intro to Tajweed", "Quran", "Primary 3", lesson.Content{Week: "Week 1"})
	fiqh := testutil.CreateLesson(t, lsnRepo, aisha, "Wudu basics", "Fiqh", "Primary 1", lesson.Content{Week: "Week 2"})
	quran2 := testutil.CreateLesson(t, lsnRepo, umar, "Surah Al-Fatiha", "Quran", "Raudah 1", lesson.Content{Week: "Week 1"})

	// teachers only ever see their own, whatever the filter says
	plans, err := svc.Query(ctx, lesson.Actor{ID: aisha.ID}, lesson.QueryFilter{OwnerID: umar.ID})
	require.NoError(t, err)
	require.Len(t, plans, 2)
	for _, p := range plans {
		assert.Equal(t, aisha.ID, p.OwnerID)
	}

	// subject filter
	plans, err = svc.Query(ctx, lesson.Actor{ID: aisha.ID}, lesson.QueryFilter{Subject: "Quran"})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, quran1.ID, plans[0].ID)

	// week filter
	plans, err = svc.Query(ctx, lesson.Actor{ID: aisha.ID}, lesson.QueryFilter{Week: "Week 2"})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, fiqh.ID, plans[0].ID)

	// admins see everything
	plans, err = svc.Query(ctx, lesson.Actor{ID: admin.ID, Admin: true}, lesson.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, plans, 3)

	// admin-only teacher name filter
	plans, err = svc.Query(ctx, lesson.Actor{ID: admin.ID, Admin: true}, lesson.QueryFilter{OwnerName: "umar"})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, quran2.ID, plans[0].ID)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc, db, changes := setup(t)

	owner := testutil.CreateUser(t, inmemdb.NewUserRepository(db), "Aisha Bello", "aisha@test.cd", "", "", true)
	actor := lesson.Actor{ID: owner.ID}
	plan := testutil.CreateLesson(t, inmemdb.NewLessonRepository(db), owner, "Intro to Tajweed", "Quran", "Primary 3",
		lesson.Content{Week: "Week 1", Objectives: "old"})

	// full-record overwrite: unset fields clear
	updated, err := svc.Update(ctx, actor, plan.ID, lesson.UpdateLessonPlan{
		Title:      "Tajweed, part 2",
		Subject:    "Quran",
		GradeLevel: "Primary 3",
		Content:    lesson.Content{Week: "Week 2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Tajweed, part 2", updated.Title)
	assert.Equal(t, "Week 2", updated.Content.Week)
	assert.Empty(t, updated.Content.Objectives)

	require.Len(t, changes.changes, 1)
	assert.Equal(t, lesson.OpUpdated, changes.changes[0].Op)
}

func TestService_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc, db, changes := setup(t)

	owner := testutil.CreateUser(t, inmemdb.NewUserRepository(db), "Aisha Bello", "aisha@test.cd", "", "", true)
	actor := lesson.Actor{ID: owner.ID}
	content := lesson.Content{Week: "Week 1", Objectives: "Learn the rules", Evaluation: "Exit Ticket"}
	plan := testutil.CreateLesson(t, inmemdb.NewLessonRepository(db), owner, "Intro to Tajweed", "Quran", "Primary 3", content)

	dup, err := svc.Duplicate(ctx, actor, plan.ID)
	require.NoError(t, err)
	assert.NotEqual(t, plan.ID, dup.ID)
	assert.Equal(t, "Intro to Tajweed (Copy)", dup.Title)
	assert.Equal(t, plan.Subject, dup.Subject)
	assert.Equal(t, plan.GradeLevel, dup.GradeLevel)
	assert.Equal(t, content, dup.Content)

	// duplicating a duplicate stacks the marker
	dup2, err := svc.Duplicate(ctx, actor, dup.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro to Tajweed (Copy) (Copy)", dup2.Title)

	require.Len(t, changes.changes, 2)
	assert.Equal(t, lesson.OpCreated, changes.changes[0].Op)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, db, changes := setup(t)

	owner := testutil.CreateUser(t, inmemdb.NewUserRepository(db), "Aisha Bello", "aisha@test.cd", "", "", true)
	actor := lesson.Actor{ID: owner.ID}
	plan := testutil.CreateLesson(t, inmemdb.NewLessonRepository(db), owner, "Intro to Tajweed", "Quran", "Primary 3", lesson.Content{})

	require.NoError(t, svc.Delete(ctx, actor, plan.ID))

	_, err := svc.Get(ctx, actor, plan.ID)
	assert.Equal(t, lesson.ErrNotFound, errors.Cause(err))

	require.Len(t, changes.changes, 1)
	assert.Equal(t, lesson.OpDeleted, changes.changes[0].Op)
}
