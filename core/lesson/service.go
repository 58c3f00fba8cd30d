package lesson

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/madrasah/darsplan/core"
)

var (
	// errors
	ErrNotFound = errors.New("lesson plan not found")
	ErrReadOnly = errors.New("lesson plan is read-only")
)

type (
	// QueryFilter narrows a lesson plan listing. Zero-valued fields are
	// ignored. OwnerName only applies to admin listings.
	QueryFilter struct {
		OwnerID    string
		Subject    string
		GradeLevel string
		Week       string
		OwnerName  string
	}

	Repository interface {
		CreateLessonPlan(ctx context.Context, plan LessonPlan) (LessonPlan, error)
		GetLessonPlanByID(ctx context.Context, id string) (LessonPlan, error)
		QueryLessonPlans(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]LessonPlan, error)
		UpdateLessonPlan(ctx context.Context, plan LessonPlan) (LessonPlan, error)
		DeleteLessonPlansByID(ctx context.Context, ids ...string) (int, error)
	}

	// Actor identifies who is performing an operation.
	Actor struct {
		ID    string
		Admin bool
	}

	// Change describes a committed mutation, for cache invalidation and
	// live listing refreshes.
	Change struct {
		Op      string `json:"op"` // created | updated | deleted
		ID      string `json:"id"`
		OwnerID string `json:"owner_id"`
	}

	// Notifier receives a Change after each committed mutation.
	Notifier interface {
		LessonChanged(Change)
	}

	Service struct {
		repo     Repository
		notifier Notifier
		logger   core.Logger
	}
)

// Change ops
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

func NewService(repo Repository, notifier Notifier, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// Query lists lesson plans scoped to the actor. Admins see every plan, with
// owner names resolved; teachers only ever see their own, whatever the
// filter says.
func (svc *Service) Query(ctx context.Context, actor Actor, filter QueryFilter, ordering ...core.DBOrdering) ([]LessonPlan, error) {
	if !actor.Admin {
		filter.OwnerID = actor.ID
		filter.OwnerName = ""
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}} // newest first
	}
	plans, err := svc.repo.QueryLessonPlans(ctx, &filter, ordering...)
	if err != nil {
		return nil, err
	}
	if !actor.Admin {
		for i := range plans {
			plans[i].OwnerName = ""
		}
	}
	return plans, nil
}

// Get returns one lesson plan. Non-owners without the admin role get
// ErrNotFound rather than a hint that the plan exists.
func (svc *Service) Get(ctx context.Context, actor Actor, id string) (LessonPlan, error) {
	plan, err := svc.repo.GetLessonPlanByID(ctx, id)
	if err != nil {
		return LessonPlan{}, err
	}
	if plan.OwnerID != actor.ID && !actor.Admin {
		return LessonPlan{}, ErrNotFound
	}
	if !actor.Admin {
		plan.OwnerName = ""
	}
	return plan, nil
}

func (svc *Service) Create(ctx context.Context, actor Actor, nl NewLessonPlan) (LessonPlan, error) {
	now := time.Now().UTC()
	plan := LessonPlan{
		OwnerID:    actor.ID,
		Title:      nl.Title,
		Subject:    nl.Subject,
		GradeLevel: nl.GradeLevel,
		Content:    nl.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	plan, err := svc.repo.CreateLessonPlan(ctx, plan)
	if err != nil {
		return LessonPlan{}, err
	}
	svc.notify(Change{Op: OpCreated, ID: plan.ID, OwnerID: plan.OwnerID})
	return plan, nil
}

// Update overwrites a lesson plan in full. Only the owner may mutate;
// admins read everything but mutate nothing they do not own.
func (svc *Service) Update(ctx context.Context, actor Actor, id string, ul UpdateLessonPlan) (LessonPlan, error) {
	plan, err := svc.mutablePlan(ctx, actor, id)
	if err != nil {
		return LessonPlan{}, err
	}

	plan.Title = ul.Title
	plan.Subject = ul.Subject
	plan.GradeLevel = ul.GradeLevel
	plan.Content = ul.Content
	plan.UpdatedAt = time.Now().UTC()

	plan, err = svc.repo.UpdateLessonPlan(ctx, plan)
	if err != nil {
		return LessonPlan{}, err
	}
	svc.notify(Change{Op: OpUpdated, ID: plan.ID, OwnerID: plan.OwnerID})
	return plan, nil
}

func (svc *Service) Delete(ctx context.Context, actor Actor, id string) error {
	plan, err := svc.mutablePlan(ctx, actor, id)
	if err != nil {
		return err
	}
	if _, err = svc.repo.DeleteLessonPlansByID(ctx, id); err != nil {
		return err
	}
	svc.notify(Change{Op: OpDeleted, ID: plan.ID, OwnerID: plan.OwnerID})
	return nil
}

// Duplicate creates a new plan copying every field of the source except id
// and timestamps, with CopySuffix appended to the title. The copy belongs
// to the actor.
func (svc *Service) Duplicate(ctx context.Context, actor Actor, id string) (LessonPlan, error) {
	src, err := svc.Get(ctx, actor, id)
	if err != nil {
		return LessonPlan{}, err
	}
	return svc.Create(ctx, actor, NewLessonPlan{
		Title:      src.Title + CopySuffix,
		Subject:    src.Subject,
		GradeLevel: src.GradeLevel,
		Content:    src.Content,
	})
}

// mutablePlan fetches a plan and enforces write access. A plan invisible to
// the actor yields ErrNotFound; a visible but unowned one yields ErrReadOnly.
func (svc *Service) mutablePlan(ctx context.Context, actor Actor, id string) (LessonPlan, error) {
	plan, err := svc.Get(ctx, actor, id)
	if err != nil {
		return LessonPlan{}, err
	}
	if plan.OwnerID != actor.ID {
		return LessonPlan{}, ErrReadOnly
	}
	return plan, nil
}

func (svc *Service) notify(chg Change) {
	if svc.notifier != nil {
		svc.notifier.LessonChanged(chg)
	}
}
