package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madrasah/darsplan/core/lesson"
	testutil "github.com/madrasah/darsplan/tests"
)

func Test_lessonApi_catalog(t *testing.T) {
	tests := []httpTest{
		{name: "Get catalog", path: "/v1/lessons/catalog", wantData: marchallObj(t, lesson.GetCatalog())},
		{name: "Get templates", path: "/v1/lessons/templates", wantData: marchallObj(t, lesson.Templates)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_lessonApi_createAndList(t *testing.T) {
	db.Reset()

	teacher := testutil.CreateUser(t, usrRepo, "Aisha Bello", "aisha@test.cd", "", "", true)
	other := testutil.CreateUser(t, usrRepo, "Umar Farouk", "umar@test.cd", "", "", true)
	token := getToken(t, teacher)

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/lessons")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("Invalid choices rejected", func(t *testing.T) {
		body := marchallObj(t, lesson.NewLessonPlan{Title: "x", Subject: "Alchemy", GradeLevel: "PhD"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/lessons", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"subject": "invalid subject", "grade_level": "invalid grade level"}),
		}, rec)
	})

	var plan lesson.LessonPlan

	t.Run("Create lesson plan", func(t *testing.T) {
		body := marchallObj(t, lesson.NewLessonPlan{
			Title:      "Intro to Tajweed",
			Subject:    "Quran",
			GradeLevel: "Primary 3",
			Content:    lesson.Content{Week: "Week 1", Objectives: "Learn the rules of noon sakinah"},
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/lessons", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
		assert.NotEmpty(t, plan.ID)
		assert.Equal(t, teacher.ID, plan.OwnerID)
		assert.Equal(t, "Intro to Tajweed", plan.Title)
	})

	t.Run("Owner sees it in the list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/lessons", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, plan)}, rec)
	})

	t.Run("Another teacher's list is empty", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/lessons", getToken(t, other))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}, rec)
	})
}

func Test_lessonApi_listFilters(t *testing.T) {
	db.Reset()

	aisha := testutil.CreateUser(t, usrRepo, "Aisha Bello", "aisha@test.cd", "", "", true)
	umar := testutil.CreateUser(t, usrRepo, "Umar Farouk", "umar@test.cd", "", "", true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", "admin", true)

	quran1 := testutil.CreateLesson(t, lsnRepo, aisha, "Intro to Tajweed", "Quran", "Primary 3", lesson.Content{Week: "Week 1"})
	fiqh := testutil.CreateLesson(t, lsnRepo, aisha, "Wudu basics", "Fiqh", "Primary 1", lesson.Content{Week: "Week 2"})
	quran2 := testutil.CreateLesson(t, lsnRepo, umar, "Surah Al-Fatiha", "Quran", "Raudah 1", lesson.Content{Week: "Week 1"})

	token := getToken(t, aisha)
	adminToken := getToken(t, admin)

	// admin listings carry the owner's name
	quran2Admin := quran2
	quran2Admin.OwnerName = "Umar Farouk"

	tests := []httpTest{
		{name: "Filter by subject", path: "/v1/lessons?subject=Quran", token: token, wantData: marchallList(t, quran1)},
		{name: "Filter by week", path: "/v1/lessons?week=Week+2", token: token, wantData: marchallList(t, fiqh)},
		{name: "Teacher filter is scoped to own plans", path: "/v1/lessons?teacher=umar", token: token, wantData: marchallList(t, quran1, fiqh)},
		{name: "Admin filters by teacher name", path: "/v1/lessons?teacher=umar", token: adminToken, wantData: marchallList(t, quran2Admin)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Admin sees all plans", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/lessons", adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var plans []lesson.LessonPlan
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plans))
		assert.Len(t, plans, 3)
		for _, p := range plans {
			assert.NotEmpty(t, p.OwnerName)
		}
	})
}

func Test_lessonApi_detail(t *testing.T) {
	db.Reset()

	owner := testutil.CreateUser(t, usrRepo, "Aisha Bello", "aisha@test.cd", "", "", true)
	other := testutil.CreateUser(t, usrRepo, "Umar Farouk", "umar@test.cd", "", "", true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", "admin", true)

	plan := testutil.CreateLesson(t, lsnRepo, owner, "Intro to Tajweed", "Quran", "Primary 3",
		lesson.Content{Week: "Week 1", Objectives: "Learn the rules"})

	adminPlan := plan
	adminPlan.OwnerName = "Aisha Bello"

	errNotFound := marchallObj(t, httpErr{Error: "not found"})
	errReadOnly := marchallObj(t, httpErr{Error: "lesson plan is read-only"})
	update := marchallObj(t, lesson.UpdateLessonPlan{Title: "hijacked", Subject: "Quran", GradeLevel: "Primary 3"})

	tests := []httpTest{
		{name: "Retrieve own plan", method: http.MethodGet, token: getToken(t, owner), wantData: marchallObj(t, plan)},
		{
			name: "Another teacher gets 404", method: http.MethodGet, token: getToken(t, other),
			wantCode: http.StatusNotFound, wantData: errNotFound,
		},
		{name: "Admin can read it", method: http.MethodGet, token: getToken(t, admin), wantData: marchallObj(t, adminPlan)},
		{
			name: "Admin cannot update it", method: http.MethodPut, token: getToken(t, admin), body: update,
			wantCode: http.StatusForbidden, wantData: errReadOnly,
		},
		{
			name: "Admin cannot delete it", method: http.MethodDelete, token: getToken(t, admin),
			wantCode: http.StatusForbidden, wantData: errReadOnly,
		},
		{
			name: "Another teacher cannot delete it", method: http.MethodDelete, token: getToken(t, other),
			wantCode: http.StatusNotFound, wantData: errNotFound,
		},
	}
	for _, tt := range tests {
		tt.path = "/v1/lessons/" + plan.ID
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Unknown ID gets 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/lessons/nope", getToken(t, owner))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: errNotFound}, rec)
	})
}

func Test_lessonApi_update(t *testing.T) {
	db.Reset()

	owner := testutil.CreateUser(t, usrRepo, "Aisha Bello", "aisha@test.cd", "", "", true)
	token := getToken(t, owner)
	plan := testutil.CreateLesson(t, lsnRepo, owner, "Intro to Tajweed", "Quran", "Primary 3",
		lesson.Content{Week: "Week 1", Objectives: "old objectives"})

	// a full-record overwrite: fields left out of the payload clear
	body := marchallObj(t, lesson.UpdateLessonPlan{
		Title:      "Tajweed, part 2",
		Subject:    "Quran",
		GradeLevel: "Primary 3",
		Content:    lesson.Content{Week: "Week 2"},
	})
	req, rec := newAuthRequest(http.MethodPut, "/v1/lessons/"+plan.ID, token, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated lesson.LessonPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Tajweed, part 2", updated.Title)
	assert.Equal(t, "Week 2", updated.Content.Week)
	assert.Empty(t, updated.Content.Objectives)

	// missing required fields are rejected
	body = marchallObj(t, lesson.UpdateLessonPlan{Title: "no subject"})
	req, rec = newAuthRequest(http.MethodPut, "/v1/lessons/"+plan.ID, token, body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"subject": "this field is required", "grade_level": "this field is required"}),
	}, rec)
}

func Test_lessonApi_duplicate(t *testing.T) {
	db.Reset()

	owner := testutil.CreateUser(t, usrRepo, "Aisha Bello", "aisha@test.cd", "", "", true)
	token := getToken(t, owner)
	content := lesson.Content{Week: "Week 1", Objectives: "Learn the rules", Evaluation: "Exit Ticket"}
	plan := testutil.CreateLesson(t, lsnRepo, owner, "Intro to Tajweed", "Quran", "Primary 3", content)

	req, rec := newAuthRequest(http.MethodPost, "/v1/lessons/"+plan.ID+"/duplicate", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dup lesson.LessonPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dup))
	assert.NotEqual(t, plan.ID, dup.ID)
	assert.Equal(t, "Intro to Tajweed (Copy)", dup.Title)
	assert.Equal(t, plan.Subject, dup.Subject)
	assert.Equal(t, content, dup.Content)

	// both now show up in the owner's list
	req, rec = newAuthRequest(http.MethodGet, "/v1/lessons", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var plans []lesson.LessonPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plans))
	assert.Len(t, plans, 2)
}

func Test_lessonApi_destroy(t *testing.T) {
	db.Reset()

	owner := testutil.CreateUser(t, usrRepo, "Aisha Bello", "aisha@test.cd", "", "", true)
	token := getToken(t, owner)
	plan := testutil.CreateLesson(t, lsnRepo, owner, "Intro to Tajweed", "Quran", "Primary 3", lesson.Content{})

	req, rec := newAuthRequest(http.MethodDelete, "/v1/lessons/"+plan.ID, token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/lessons/"+plan.ID, token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "not found"}),
	}, rec)
}

func Test_lessonApi_changeEvents(t *testing.T) {
	db.Reset()

	owner := testutil.CreateUser(t, usrRepo, "Aisha Bello", "aisha@test.cd", "", "", true)
	token := getToken(t, owner)

	events, release := changes.Subscribe()
	defer release()

	body := marchallObj(t, lesson.NewLessonPlan{Title: "Intro to Tajweed", Subject: "Quran", GradeLevel: "Primary 3"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/lessons", token, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	select {
	case chg := <-events:
		assert.Equal(t, lesson.OpCreated, chg.Op)
		assert.Equal(t, owner.ID, chg.OwnerID)
	default:
		t.Fatal("expected a change event")
	}
}
