package labels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/dbx"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
)

// PostgresRepository implements label storage for one Kind over a dbx.DBTX.
// Every query is scoped to the owning user.
type PostgresRepository struct {
	db   dbx.DBTX
	kind Kind
}

func NewPostgresRepository(db dbx.DBTX, kind Kind) *PostgresRepository {
	return &PostgresRepository{db: db, kind: kind}
}

func (r *PostgresRepository) Create(ctx context.Context, label *models.Label) (*models.Label, error) {
	query := fmt.Sprintf(`INSERT INTO %s (name, user_id) VALUES ($1, $2) RETURNING id`, r.kind.Table)

	if err := r.db.QueryRowContext(ctx, query, label.Name, label.UserID).Scan(&label.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return label, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id int64) (*models.Label, error) {
	query := fmt.Sprintf(`SELECT id, user_id, name FROM %s WHERE id = $1 AND user_id = $2`, r.kind.Table)

	label := &models.Label{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&label.ID, &label.UserID, &label.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return label, nil
}

// List returns the user's labels ordered by name descending. With
// assignedOnly only labels attached to at least one recipe are returned.
func (r *PostgresRepository) List(ctx context.Context, userID int64, assignedOnly bool) ([]*models.Label, error) {
	query := fmt.Sprintf(`SELECT id, user_id, name FROM %s WHERE user_id = $1`, r.kind.Table)
	if assignedOnly {
		query += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM %s j WHERE j.%s = %s.id)`,
			r.kind.JunctionTable, r.kind.JunctionColumn, r.kind.Table)
	}
	query += ` ORDER BY name DESC, id DESC`

	return r.query(ctx, query, userID)
}

// FindByIDs returns those of ids that belong to userID, ordered by id.
// Unknown or foreign ids are silently absent from the result.
func (r *PostgresRepository) FindByIDs(ctx context.Context, userID int64, ids []int64) ([]*models.Label, error) {
	if len(ids) == 0 {
		return []*models.Label{}, nil
	}

	query := fmt.Sprintf(`SELECT id, user_id, name FROM %s WHERE user_id = $1 AND id IN (%s) ORDER BY id`,
		r.kind.Table, dbx.Placeholders(2, len(ids)))

	args := append([]any{userID}, dbx.Int64Args(ids)...)
	return r.query(ctx, query, args...)
}

func (r *PostgresRepository) Update(ctx context.Context, label *models.Label) error {
	query := fmt.Sprintf(`UPDATE %s SET name = $1 WHERE id = $2 AND user_id = $3`, r.kind.Table)

	res, err := r.db.ExecContext(ctx, query, label.Name, label.ID, label.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.kind.Table)

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Label, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", r.kind.Table, err)
	}
	defer rows.Close()

	result := []*models.Label{}
	for rows.Next() {
		var item models.Label
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
