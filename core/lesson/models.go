package lesson

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/madrasah/darsplan/core"
)

// CopySuffix is appended to the title of a duplicated lesson plan.
const CopySuffix = " (Copy)"

type (
	// Content is the free-form structured body of a lesson plan, persisted
	// as a single JSONB column.
	Content struct {
		Duration          string `json:"duration,omitempty"`
		Period            string `json:"period,omitempty"`
		Date              string `json:"date,omitempty"`
		Age               string `json:"age,omitempty"`
		Week              string `json:"week,omitempty" validate:"omitempty,week"`
		Introduction      string `json:"introduction,omitempty"`
		Objectives        string `json:"objectives,omitempty"`
		Summary           string `json:"summary,omitempty"`
		Methodology       string `json:"methodology,omitempty"`
		Resources         string `json:"resources,omitempty"`
		Evaluation        string `json:"evaluation,omitempty"`
		Assignment        string `json:"assignment,omitempty"`
		TeacherComment    string `json:"teacher_comment,omitempty"`
		SupervisorComment string `json:"supervisor_comment,omitempty"`
	}

	// LessonPlan is a teacher's plan for one lesson.
	LessonPlan struct {
		ID         string    `json:"id"`
		OwnerID    string    `json:"owner_id"`
		OwnerName  string    `json:"owner_name,omitempty"` // populated on admin listings
		Title      string    `json:"title"`
		Subject    string    `json:"subject"`
		GradeLevel string    `json:"grade_level"`
		Content    Content   `json:"content"`
		CreatedAt  time.Time `json:"created_at"` // UTC
		UpdatedAt  time.Time `json:"updated_at"` // UTC
	}

	// NewLessonPlan contains information needed to create a LessonPlan.
	NewLessonPlan struct {
		Title      string  `json:"title" validate:"required"`
		Subject    string  `json:"subject" validate:"required,subject"`
		GradeLevel string  `json:"grade_level" validate:"required,grade"`
		Content    Content `json:"content"`
	}

	// UpdateLessonPlan carries a full-record overwrite; every field is
	// resent even when unchanged.
	UpdateLessonPlan struct {
		Title      string  `json:"title" validate:"required"`
		Subject    string  `json:"subject" validate:"required,subject"`
		GradeLevel string  `json:"grade_level" validate:"required,grade"`
		Content    Content `json:"content"`
	}
)

func (c Content) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling lesson content")
	}
	return b, nil
}

func (c *Content) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = Content{}
		return nil
	case []byte:
		return errors.Wrap(json.Unmarshal(v, c), "scanning lesson content")
	case string:
		return errors.Wrap(json.Unmarshal([]byte(v), c), "scanning lesson content")
	}
	return errors.Errorf("unsupported lesson content type %T", src)
}

func (nl *NewLessonPlan) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	nl.Subject = core.CleanString(nl.Subject)
	nl.GradeLevel = core.CleanString(nl.GradeLevel)
	return validate.Struct(nl)
}

func (ul *UpdateLessonPlan) Validate(validate *validator.Validate) error {
	ul.Title = core.CleanString(ul.Title)
	ul.Subject = core.CleanString(ul.Subject)
	ul.GradeLevel = core.CleanString(ul.GradeLevel)
	return validate.Struct(ul)
}
