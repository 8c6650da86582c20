package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"bouquetStore/entities"
	"bouquetStore/models"
)

type MaterialRepository interface {
	GetMaterial(ctx context.Context, id string) (m entities.Material, exists bool, err error)
	ListMaterials(ctx context.Context) (mats []entities.Material, err error)
	CreateMaterial(ctx context.Context, m entities.Material) (err error)
	UpdateMaterial(ctx context.Context, m entities.Material) (err error)
	DeleteMaterial(ctx context.Context, id string) (err error)
}

type MaterialRepo struct {
	db *sql.DB
}

func NewMaterialRepository(conn *sql.DB) (MaterialRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &MaterialRepo{
		db: conn,
	}, nil
}

func (r *MaterialRepo) GetMaterial(ctx context.Context, id string) (m entities.Material, exists bool, err error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, name, category, price FROM materials WHERE id = $1", id)
	err = row.Scan(&m.Id, &m.Name, &m.Category, &m.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
		} else {
			slog.Error("GetMaterial", "id", id, "error", err)
			err = models.ErrServerError
		}
		return
	}
	exists = true
	return
}

func (r *MaterialRepo) ListMaterials(ctx context.Context) (mats []entities.Material, err error) {
	rows, e := r.db.QueryContext(ctx, "SELECT id, name, category, price FROM materials ORDER BY category, name")
	if e != nil {
		slog.Error("ListMaterials[1]", "error", e)
		err = models.ErrServerError
		return
	}
	defer rows.Close()
	mats = []entities.Material{}
	for rows.Next() {
		var m entities.Material
		if err = rows.Scan(&m.Id, &m.Name, &m.Category, &m.Price); err != nil {
			slog.Error("ListMaterials[2]", "error", err)
			err = models.ErrServerError
			return
		}
		mats = append(mats, m)
	}
	if err = rows.Err(); err != nil {
		slog.Error("ListMaterials[3]", "error", err)
		err = models.ErrServerError
	}
	return
}

func (r *MaterialRepo) CreateMaterial(ctx context.Context, m entities.Material) (err error) {
	_, err = r.db.ExecContext(ctx, "INSERT INTO materials (id, name, category, price) VALUES ($1, $2, $3, $4)",
		m.Id, m.Name, m.Category, m.Price)
	if err != nil {
		slog.Error("CreateMaterial", "error", err)
		err = models.ErrServerError
	}
	return
}

func (r *MaterialRepo) UpdateMaterial(ctx context.Context, m entities.Material) (err error) {
	res, e := r.db.ExecContext(ctx, "UPDATE materials SET name = $1, category = $2, price = $3 WHERE id = $4",
		m.Name, m.Category, m.Price, m.Id)
	if e != nil {
		slog.Error("UpdateMaterial", "error", e)
		err = models.ErrServerError
		return
	}
	err = expectOneRow(res, "UpdateMaterial")
	return
}

func (r *MaterialRepo) DeleteMaterial(ctx context.Context, id string) (err error) {
	res, e := r.db.ExecContext(ctx, "DELETE FROM materials WHERE id = $1", id)
	if e != nil {
		slog.Error("DeleteMaterial", "error", e)
		err = models.ErrServerError
		return
	}
	err = expectOneRow(res, "DeleteMaterial")
	return
}

// expectOneRow turns a zero-row update or delete into ErrNotFoundError.
func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		slog.Error(op, "error", err)
		return models.ErrServerError
	}
	if n == 0 {
		return models.ErrNotFoundError
	}
	return nil
}
