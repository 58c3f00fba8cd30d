package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madrasah/darsplan/core/lesson"
)

var errLessonNotFoundInCtx = errors.New("lesson plan object not found in echo.Context")

type lessonApi struct {
	deps *ServerDeps
}

func registerLessonAPI(g *echo.Group, jwt, sessions echo.MiddlewareFunc, deps *ServerDeps) {
	api := lessonApi{deps: deps}

	lg := g.Group("/lessons")

	// un-authed endpoints
	lg.GET("/catalog", api.catalog)
	lg.GET("/templates", api.templates)

	// authed endpoints
	ag := lg.Group("", jwt, sessions)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/events", api.events)

	// detail endpoints
	dg := ag.Group("/:id", api.objectMiddleware())
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/duplicate", api.duplicate)
}

// objectMiddleware resolves the lesson plan for detail routes and stashes it
// in the context. Ownership scoping happens in the service.
func (api *lessonApi) objectMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			actor, err := contextActor(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context actor")
			}
			plan, err := api.deps.LessonSvc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == lesson.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding lesson plan by ID")
			}
			ctx.Set("object", plan)
			return next(ctx)
		}
	}
}

// Handlers

func (api *lessonApi) query(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var filter LessonFilterRequest
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []lesson.LessonPlan{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	plans, err := api.deps.LessonSvc.Query(ctx.Request().Context(), actor, filter.queryFilter(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying lesson plans")
	}
	if plans == nil {
		plans = []lesson.LessonPlan{}
	}
	return ctx.JSON(http.StatusOK, plans)
}

func (api *lessonApi) create(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data lesson.NewLessonPlan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLessonPlan")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	plan, err := api.deps.LessonSvc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating lesson plan")
	}
	return ctx.JSON(http.StatusCreated, plan)
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	plan, ok := ctx.Get("object").(lesson.LessonPlan)
	if !ok {
		return errors.Wrap(errLessonNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, plan)
}

func (api *lessonApi) update(ctx echo.Context) error {
	plan, ok := ctx.Get("object").(lesson.LessonPlan)
	if !ok {
		return errors.Wrap(errLessonNotFoundInCtx, "retrieving object from context")
	}
	actor, err := contextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data lesson.UpdateLessonPlan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLessonPlan")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	plan, err = api.deps.LessonSvc.Update(ctx.Request().Context(), actor, plan.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating lesson plan")
	}
	return ctx.JSON(http.StatusOK, plan)
}

func (api *lessonApi) destroy(ctx echo.Context) error {
	plan, ok := ctx.Get("object").(lesson.LessonPlan)
	if !ok {
		return errors.Wrap(errLessonNotFoundInCtx, "retrieving object from context")
	}
	actor, err := contextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	if err := api.deps.LessonSvc.Delete(ctx.Request().Context(), actor, plan.ID); err != nil {
		return errors.Wrap(err, "deleting lesson plan")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *lessonApi) duplicate(ctx echo.Context) error {
	plan, ok := ctx.Get("object").(lesson.LessonPlan)
	if !ok {
		return errors.Wrap(errLessonNotFoundInCtx, "retrieving object from context")
	}
	actor, err := contextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	dup, err := api.deps.LessonSvc.Duplicate(ctx.Request().Context(), actor, plan.ID)
	if err != nil {
		return errors.Wrap(err, "duplicating lesson plan")
	}
	return ctx.JSON(http.StatusCreated, dup)
}

func (api *lessonApi) catalog(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, lesson.GetCatalog())
}

func (api *lessonApi) templates(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, lesson.Templates)
}

// events streams committed lesson plan changes as server-sent events until
// the client disconnects.
func (api *lessonApi) events(ctx echo.Context) error {
	changes, release := api.deps.Changes.Subscribe()
	defer release()
	return streamSSE(ctx, func(w *sseWriter) error {
		for {
			select {
			case chg, ok := <-changes:
				if !ok {
					return nil
				}
				if err := w.WriteEvent(chg.Op, chg); err != nil {
					return err
				}
			case <-ctx.Request().Context().Done():
				return nil
			}
		}
	})
}

func contextActor(ctx echo.Context) (lesson.Actor, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return lesson.Actor{}, err
	}
	return lesson.Actor{ID: claims.Subject, Admin: claims.IsAdmin}, nil
}

// LessonFilterRequest binds the supported listing filters from query params.
type LessonFilterRequest struct {
	Subject    string `query:"subject"`
	GradeLevel string `query:"grade_level"`
	Week       string `query:"week"`
	Teacher    string `query:"teacher"` // admin only
}

func (f LessonFilterRequest) queryFilter() lesson.QueryFilter {
	return lesson.QueryFilter{
		Subject:    f.Subject,
		GradeLevel: f.GradeLevel,
		Week:       f.Week,
		OwnerName:  f.Teacher,
	}
}
