package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SurakshaKumari/gt-3D-backend/internal/model"
)

const projectColumns = `id, name, title, description, owner_id, user_id, status,
	model_path, transform_state, annotations, chat, created_at, updated_at`

// listColumns maps list fields to their JSONB columns. Column names are only
// ever taken from this map, never from input.
var listColumns = map[model.ListField]string{
	model.FieldAnnotations: "annotations",
	model.FieldChat:        "chat",
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"status":    "status",
}

// Postgres stores projects in a single table with JSONB list columns.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an open pool. The schema must already be migrated.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Create implements Store.
func (s *Postgres) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	cp := cloneProject(p)
	prepareNew(cp, uuid.NewString)

	transform, annotations, chat, err := encodeDocument(cp)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO projects (id, name, title, description, owner_id, user_id, status,
			model_path, transform_state, annotations, chat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb, $11::jsonb)
		RETURNING `+projectColumns,
		cp.ID, cp.Name, cp.Title, cp.Description, cp.OwnerID, cp.UserID, cp.Status,
		cp.ModelPath, transform, annotations, chat,
	)
	created, err := scanProject(row)
	if err != nil {
		return nil, unavailable("create project", err)
	}
	return created, nil
}

// Get implements Gateway.
func (s *Postgres) Get(ctx context.Context, id string) (*model.Project, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get project", err)
	}
	return p, nil
}

// Update implements Gateway.
func (s *Postgres) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if patch.Name != nil {
		add("name = $%d", *patch.Name)
	}
	if patch.Title != nil {
		add("title = $%d", *patch.Title)
	}
	if patch.Description != nil {
		add("description = $%d", *patch.Description)
	}
	if patch.OwnerID != nil {
		add("owner_id = $%d", *patch.OwnerID)
	}
	if patch.UserID != nil {
		add("user_id = $%d", *patch.UserID)
	}
	if patch.Status != nil {
		add("status = $%d", *patch.Status)
	}
	if patch.ModelPath != nil {
		add("model_path = $%d", *patch.ModelPath)
	}
	if patch.TransformState != nil {
		b, err := json.Marshal(patch.TransformState)
		if err != nil {
			return nil, fmt.Errorf("encode transform state: %w", err)
		}
		add("transform_state = $%d::jsonb", string(b))
	}
	if patch.Annotations != nil {
		list := *patch.Annotations
		if list == nil {
			list = []model.Annotation{}
		}
		b, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("encode annotations: %w", err)
		}
		add("annotations = $%d::jsonb", string(b))
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+projectColumns,
		args...)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, unavailable("update project", err)
	}
	return p, nil
}

// Delete implements Store.
func (s *Postgres) Delete(ctx context.Context, id string) (*model.Project, error) {
	row := s.pool.QueryRow(ctx, `DELETE FROM projects WHERE id = $1 RETURNING `+projectColumns, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, unavailable("delete project", err)
	}
	return p, nil
}

// AppendToList implements Gateway. The append is a single UPDATE so
// concurrent appends to the same project never lose items.
func (s *Postgres) AppendToList(ctx context.Context, id string, field model.ListField, item model.ListItem) error {
	if err := checkField(field); err != nil {
		return err
	}
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s item: %w", field, err)
	}

	col := listColumns[field]
	sql := fmt.Sprintf(
		`UPDATE projects SET %[1]s = %[1]s || jsonb_build_array($2::jsonb), updated_at = now() WHERE id = $1`,
		col)
	return s.execOne(ctx, "append to "+col, sql, id, string(b))
}

// ClearList implements Gateway.
func (s *Postgres) ClearList(ctx context.Context, id string, field model.ListField) error {
	if err := checkField(field); err != nil {
		return err
	}

	col := listColumns[field]
	sql := fmt.Sprintf(`UPDATE projects SET %s = '[]'::jsonb, updated_at = now() WHERE id = $1`, col)
	return s.execOne(ctx, "clear "+col, sql, id)
}

// RemoveFromList implements Gateway.
func (s *Postgres) RemoveFromList(ctx context.Context, id string, field model.ListField, itemID string) error {
	if err := checkField(field); err != nil {
		return err
	}

	col := listColumns[field]
	sql := fmt.Sprintf(`
		UPDATE projects SET %[1]s = COALESCE(
			(SELECT jsonb_agg(e ORDER BY ord) FROM jsonb_array_elements(%[1]s) WITH ORDINALITY AS t(e, ord)
			 WHERE e->>'id' IS DISTINCT FROM $2),
			'[]'::jsonb),
			updated_at = now()
		WHERE id = $1`, col)
	return s.execOne(ctx, "remove from "+col, sql, id, itemID)
}

// List implements Store.
func (s *Postgres) List(ctx context.Context, q model.ListQuery) ([]model.Project, int, error) {
	var (
		where []string
		args  []any
	)
	if q.Status != "" {
		args = append(args, q.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.UserID != "" {
		args = append(args, q.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%[1]d OR description ILIKE $%[1]d)", len(args)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM projects`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, unavailable("count projects", err)
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}
	query := `SELECT ` + projectColumns + ` FROM projects` + whereSQL +
		fmt.Sprintf(" ORDER BY %s %s, id", col, dir)
	if q.Limit > 0 {
		args = append(args, q.Limit, q.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, unavailable("list projects", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, unavailable("scan project", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, unavailable("list projects", err)
	}
	return projects, total, nil
}

// Ping implements Store.
func (s *Postgres) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close implements Store.
func (s *Postgres) Close() {
	s.pool.Close()
}

func (s *Postgres) execOne(ctx context.Context, op, sql string, args ...any) error {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return unavailable(op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*model.Project, error) {
	var (
		p                            model.Project
		transform, annotations, chat []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Title, &p.Description, &p.OwnerID, &p.UserID, &p.Status,
		&p.ModelPath, &transform, &annotations, &chat, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(transform, &p.TransformState); err != nil {
		return nil, fmt.Errorf("decode transform state: %w", err)
	}
	if err := json.Unmarshal(annotations, &p.Annotations); err != nil {
		return nil, fmt.Errorf("decode annotations: %w", err)
	}
	if err := json.Unmarshal(chat, &p.Chat); err != nil {
		return nil, fmt.Errorf("decode chat: %w", err)
	}
	if p.Annotations == nil {
		p.Annotations = []model.Annotation{}
	}
	if p.Chat == nil {
		p.Chat = []model.ChatMessage{}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func encodeDocument(p *model.Project) (transform, annotations, chat string, err error) {
	tb, err := json.Marshal(p.TransformState)
	if err != nil {
		return "", "", "", fmt.Errorf("encode transform state: %w", err)
	}
	ab, err := json.Marshal(p.Annotations)
	if err != nil {
		return "", "", "", fmt.Errorf("encode annotations: %w", err)
	}
	cb, err := json.Marshal(p.Chat)
	if err != nil {
		return "", "", "", fmt.Errorf("encode chat: %w", err)
	}
	return string(tb), string(ab), string(cb), nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
