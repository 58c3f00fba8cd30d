package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/madrasah/darsplan/core/lesson"
	"github.com/madrasah/darsplan/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if role == "" {
		role = user.RoleTeacher
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateLesson(
	t *testing.T,
	repo lesson.Repository,
	owner user.User,
	title, subject, grade string,
	content lesson.Content,
	createdAt ...time.Time,
) lesson.LessonPlan {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	plan := lesson.LessonPlan{
		OwnerID:    owner.ID,
		Title:      title,
		Subject:    subject,
		GradeLevel: grade,
		Content:    content,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	plan, err := repo.CreateLessonPlan(context.Background(), plan)
	if err != nil {
		t.Fatalf("CreateLesson(): %v", err)
	}
	return plan
}
