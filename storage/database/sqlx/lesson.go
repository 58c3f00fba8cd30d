package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/madrasah/darsplan/core"
	"github.com/madrasah/darsplan/core/lesson"
)

type lessonRepository struct {
	db *sqlx.DB
}

func NewLessonRepository(db *sqlx.DB) lesson.Repository {
	return &lessonRepository{db: db}
}

// lessonRow mirrors a lesson_plans table row. OwnerName comes from a join,
// not a column.
type lessonRow struct {
	ID         string         `db:"id"`
	OwnerID    string         `db:"owner_id"`
	OwnerName  sql.NullString `db:"owner_name"`
	Title      string         `db:"title"`
	Subject    string         `db:"subject"`
	GradeLevel string         `db:"grade_level"`
	Content    lesson.Content `db:"content"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (row lessonRow) lessonPlan() lesson.LessonPlan {
	return lesson.LessonPlan{
		ID:         row.ID,
		OwnerID:    row.OwnerID,
		OwnerName:  row.OwnerName.String,
		Title:      row.Title,
		Subject:    row.Subject,
		GradeLevel: row.GradeLevel,
		Content:    row.Content,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

const lessonColumns = "lp.id, lp.owner_id, lp.title, lp.subject, lp.grade_level, lp.content, lp.created_at, lp.updated_at"

func (repo *lessonRepository) CreateLessonPlan(ctx context.Context, plan lesson.LessonPlan) (lesson.LessonPlan, error) {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	query := `
	INSERT INTO lesson_plans (id, owner_id, title, subject, grade_level, content, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, query,
		plan.ID, plan.OwnerID, plan.Title, plan.Subject, plan.GradeLevel, plan.Content, plan.CreatedAt, plan.UpdatedAt)
	if err != nil {
		return lesson.LessonPlan{}, errors.Wrap(err, "creating lesson plan")
	}
	return plan, nil
}

func (repo *lessonRepository) GetLessonPlanByID(ctx context.Context, id string) (lesson.LessonPlan, error) {
	var row lessonRow
	query := fmt.Sprintf(`
	SELECT %s, p.name AS owner_name
	FROM lesson_plans lp
	JOIN profiles p ON p.id = lp.owner_id
	WHERE lp.id = $1`, lessonColumns)
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return lesson.LessonPlan{}, lesson.ErrNotFound
		}
		return lesson.LessonPlan{}, errors.Wrap(err, "getting lesson plan")
	}
	return row.lessonPlan(), nil
}

func (repo *lessonRepository) QueryLessonPlans(ctx context.Context, filter *lesson.QueryFilter, ordering ...core.DBOrdering) ([]lesson.LessonPlan, error) {
	var (
		wheres []string
		args   []interface{}
	)
	addWhere := func(cond string, val interface{}) {
		args = append(args, val)
		wheres = append(wheres, fmt.Sprintf(cond, len(args)))
	}

	if filter != nil {
		if filter.OwnerID != "" {
			addWhere("lp.owner_id = $%d", filter.OwnerID)
		}
		if filter.Subject != "" {
			addWhere("lp.subject = $%d", filter.Subject)
		}
		if filter.GradeLevel != "" {
			addWhere("lp.grade_level = $%d", filter.GradeLevel)
		}
		if filter.Week != "" {
			addWhere("lp.content->>'week' = $%d", filter.Week)
		}
		if filter.OwnerName != "" {
			addWhere("p.name ILIKE $%d", "%"+filter.OwnerName+"%")
		}
	}

	query := fmt.Sprintf(`
	SELECT %s, p.name AS owner_name
	FROM lesson_plans lp
	JOIN profiles p ON p.id = lp.owner_id`, lessonColumns)
	if len(wheres) > 0 {
		query += "\n\tWHERE " + strings.Join(wheres, " AND ")
	}
	if orderBy := orderingClause(ordering); orderBy != "" {
		query += "\n\tORDER BY " + orderBy
	}

	var rows []lessonRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying lesson plans")
	}
	var plans []lesson.LessonPlan
	for _, row := range rows {
		plans = append(plans, row.lessonPlan())
	}
	return plans, nil
}

func (repo *lessonRepository) UpdateLessonPlan(ctx context.Context, plan lesson.LessonPlan) (lesson.LessonPlan, error) {
	// full-record overwrite
	query := `
	UPDATE lesson_plans
	SET title = $2, subject = $3, grade_level = $4, content = $5, updated_at = $6
	WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		plan.ID, plan.Title, plan.Subject, plan.GradeLevel, plan.Content, plan.UpdatedAt)
	if err != nil {
		return lesson.LessonPlan{}, errors.Wrap(err, "updating lesson plan")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lesson.LessonPlan{}, lesson.ErrNotFound
	}
	return plan, nil
}

func (repo *lessonRepository) DeleteLessonPlansByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("DELETE FROM lesson_plans WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting lesson plans")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting lesson plans")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// orderingClause whitelists orderable columns; anything else is ignored.
func orderingClause(ordering []core.DBOrdering) string {
	allowed := map[string]string{
		"created_at":  "lp.created_at",
		"updated_at":  "lp.updated_at",
		"title":       "lp.title",
		"subject":     "lp.subject",
		"grade_level": "lp.grade_level",
	}
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		dir := "DESC"
		if ord.Ascending {
			dir = "ASC"
		}
		clauses = append(clauses, fmt.Sprintf("%s %s", col, dir))
	}
	return strings.Join(clauses, ", ")
}
