package vaccination

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

const uniqueViolation = "23505"

// =========== Definition Repository ===========

type definitionRepoPG struct{ pool *pgxpool.Pool }

func NewDefinitionRepoPG(pool *pgxpool.Pool) DefinitionRepository {
	return &definitionRepoPG{pool: pool}
}

func (r *definitionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const defCols = `id, vaccine_name, dose_number, age_months_offset,
	minimum_interval_days, description, is_active, created_at, updated_at`

func scanDefinition(row pgx.Row) (*VaccineDefinition, error) {
	var d VaccineDefinition
	err := row.Scan(&d.ID, &d.VaccineName, &d.DoseNumber, &d.AgeMonthsOffset,
		&d.MinimumIntervalDays, &d.Description, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *definitionRepoPG) ListActive(ctx context.Context) ([]*VaccineDefinition, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+defCols+`
		FROM vaccine_definition
		WHERE is_active = TRUE
		ORDER BY age_months_offset ASC, dose_number ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*VaccineDefinition
	for rows.Next() {
		d, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// =========== Dose Repository ===========

type doseRepoPG struct{ pool *pgxpool.Pool }

func NewDoseRepoPG(pool *pgxpool.Pool) DoseRepository {
	return &doseRepoPG{pool: pool}
}

func (r *doseRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *doseRepoPG) HasSchedule(ctx context.Context, childID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM scheduled_dose WHERE child_id = $1)`,
		childID).Scan(&exists)
	return exists, err
}

func (r *doseRepoPG) CreateBatch(ctx context.Context, doses []*ScheduledDose) error {
	if len(doses) == 0 {
		return nil
	}

	// One multi-row INSERT so the batch is all-or-nothing without an
	// explicit transaction.
	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString(`INSERT INTO scheduled_dose
		(id, child_id, vaccine_definition_id, scheduled_date, status)
		VALUES `)
	for i, d := range doses {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 5
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, d.ID, d.ChildID, d.VaccineDefinitionID, d.ScheduledDate, d.Status)
	}

	_, err := r.conn(ctx).Exec(ctx, sb.String(), args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrScheduleExists
		}
		return err
	}
	return nil
}

func (r *doseRepoPG) ListViewsByChild(ctx context.Context, ownerID string, childID uuid.UUID) ([]*DoseView, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT sd.id, sd.child_id, sd.vaccine_definition_id, sd.scheduled_date,
			sd.status, sd.completed_date, sd.location, sd.notes,
			sd.created_at, sd.updated_at,
			vd.vaccine_name, vd.dose_number, vd.description,
			c.name, c.birth_date
		FROM scheduled_dose sd
		JOIN vaccine_definition vd ON vd.id = sd.vaccine_definition_id
		JOIN child c ON c.id = sd.child_id
		WHERE sd.child_id = $1 AND c.owner_id = $2
		ORDER BY sd.scheduled_date ASC`,
		childID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*DoseView
	for rows.Next() {
		var v DoseView
		if err := rows.Scan(&v.ID, &v.ChildID, &v.VaccineDefinitionID, &v.ScheduledDate,
			&v.Status, &v.CompletedDate, &v.Location, &v.Notes,
			&v.CreatedAt, &v.UpdatedAt,
			&v.VaccineName, &v.DoseNumber, &v.VaccineDescription,
			&v.ChildName, &v.ChildBirthDate); err != nil {
			return nil, err
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}

func (r *doseRepoPG) MarkApplied(ctx context.Context, ownerID string, doseID uuid.UUID, completedDate time.Time, location string, notes *string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE scheduled_dose SET
			status = $3, completed_date = $4, location = $5, notes = $6,
			updated_at = NOW()
		WHERE id = $1
		  AND child_id IN (SELECT id FROM child WHERE owner_id = $2)`,
		doseID, ownerID, StatusCompleted, completedDate, location, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDoseNotFound
	}
	return nil
}

// =========== Child Directory ===========

type childDirectoryPG struct{ pool *pgxpool.Pool }

func NewChildDirectoryPG(pool *pgxpool.Pool) ChildDirectory {
	return &childDirectoryPG{pool: pool}
}

func (r *childDirectoryPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *childDirectoryPG) Find(ctx context.Context, ownerID string, childID uuid.UUID) (*ChildInfo, error) {
	var info ChildInfo
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, birth_date FROM child WHERE id = $1 AND owner_id = $2`,
		childID, ownerID).Scan(&info.ID, &info.Name, &info.BirthDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChildNotFound
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}
