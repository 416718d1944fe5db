package growth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/babytrack/babytrack/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const measurementCols = `gm.id, gm.child_id, gm.measurement_date, gm.age_months,
	gm.weight_kg, gm.length_cm, gm.notes, gm.created_at, gm.updated_at`

func scanMeasurement(row pgx.Row) (*Measurement, error) {
	var m Measurement
	err := row.Scan(&m.ID, &m.ChildID, &m.MeasurementDate, &m.AgeMonths,
		&m.WeightKG, &m.LengthCM, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Measurement) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO growth_measurement (id, child_id, measurement_date, age_months,
			weight_kg, length_cm, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.ChildID, m.MeasurementDate, m.AgeMonths,
		m.WeightKG, m.LengthCM, m.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Measurement, error) {
	m, err := scanMeasurement(r.conn(ctx).QueryRow(ctx, `
		SELECT `+measurementCols+`
		FROM growth_measurement gm
		JOIN child c ON c.id = gm.child_id
		WHERE gm.id = $1 AND c.owner_id = $2`,
		id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repoPG) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM growth_measurement
		WHERE id = $1
		  AND child_id IN (SELECT id FROM child WHERE owner_id = $2)`,
		id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByChild(ctx context.Context, ownerID string, childID uuid.UUID, ages AgeRange, limit, offset int) ([]*Measurement, int, error) {
	where := `WHERE gm.child_id = $1 AND c.owner_id = $2`
	args := []interface{}{childID, ownerID}
	if ages.Min != nil {
		args = append(args, *ages.Min)
		where += fmt.Sprintf(` AND gm.age_months >= $%d`, len(args))
	}
	if ages.Max != nil {
		args = append(args, *ages.Max)
		where += fmt.Sprintf(` AND gm.age_months <= $%d`, len(args))
	}

	var total int
	countSQL := `SELECT COUNT(*) FROM growth_measurement gm JOIN child c ON c.id = gm.child_id ` + where
	if err := r.conn(ctx).QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	dataSQL := fmt.Sprintf(`
		SELECT `+measurementCols+`
		FROM growth_measurement gm
		JOIN child c ON c.id = gm.child_id
		%s
		ORDER BY gm.measurement_date DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.conn(ctx).Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

// =========== Birth Date Source ===========

type birthDateSourcePG struct{ pool *pgxpool.Pool }

func NewBirthDateSourcePG(pool *pgxpool.Pool) BirthDateSource {
	return &birthDateSourcePG{pool: pool}
}

func (r *birthDateSourcePG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *birthDateSourcePG) BirthDate(ctx context.Context, ownerID string, childID uuid.UUID) (time.Time, error) {
	var birthDate time.Time
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT birth_date FROM child WHERE id = $1 AND owner_id = $2`,
		childID, ownerID).Scan(&birthDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrChildNotFound
	}
	return birthDate, err
}
