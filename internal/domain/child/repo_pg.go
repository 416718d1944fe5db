package child

import (
	"context"
	"errors"

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

const childCols = `id, owner_id, name, birth_date, blood_type, birth_place,
	father_name, mother_name, paternal_grandfather, maternal_grandmother,
	created_at, updated_at`

func scanChild(row pgx.Row) (*Child, error) {
	var ch Child
	err := row.Scan(&ch.ID, &ch.OwnerID, &ch.Name, &ch.BirthDate, &ch.BloodType,
		&ch.BirthPlace, &ch.FatherName, &ch.MotherName,
		&ch.PaternalGrandfather, &ch.MaternalGrandmother,
		&ch.CreatedAt, &ch.UpdatedAt)
	return &ch, err
}

func (r *repoPG) Create(ctx context.Context, ch *Child) error {
	ch.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO child (id, owner_id, name, birth_date, blood_type, birth_place,
			father_name, mother_name, paternal_grandfather, maternal_grandmother)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		ch.ID, ch.OwnerID, ch.Name, ch.BirthDate, ch.BloodType, ch.BirthPlace,
		ch.FatherName, ch.MotherName, ch.PaternalGrandfather, ch.MaternalGrandmother)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Child, error) {
	ch, err := scanChild(r.conn(ctx).QueryRow(ctx,
		`SELECT `+childCols+` FROM child WHERE id = $1 AND owner_id = $2`,
		id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *repoPG) Update(ctx context.Context, ch *Child) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE child SET name=$3, birth_date=$4, blood_type=$5, birth_place=$6,
			father_name=$7, mother_name=$8, paternal_grandfather=$9,
			maternal_grandmother=$10, updated_at=NOW()
		WHERE id = $1 AND owner_id = $2`,
		ch.ID, ch.OwnerID, ch.Name, ch.BirthDate, ch.BloodType, ch.BirthPlace,
		ch.FatherName, ch.MotherName, ch.PaternalGrandfather, ch.MaternalGrandmother)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM child WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, ownerID string, limit, offset int) ([]*Child, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM child WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+childCols+` FROM child WHERE owner_id = $1 ORDER BY birth_date DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Child
	for rows.Next() {
		ch, err := scanChild(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ch)
	}
	return items, total, rows.Err()
}
