package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"bouquetStore/entities"
	"bouquetStore/models"
)

type ProductRepository interface {
	GetProductById(ctx context.Context, id string) (p entities.Product, exists bool, err error)
	ListProducts(ctx context.Context, category string) (prods []entities.Product, err error)
	CreateProduct(ctx context.Context, p entities.Product) (err error)
	UpdateProduct(ctx context.Context, p entities.Product) (err error)
	DeleteProduct(ctx context.Context, id string) (err error)
}

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepository(conn *sql.DB) (ProductRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &ProductRepo{
		db: conn,
	}, nil
}

const productColumns = `id, name, category, type, requires_photo, is_customizable, processing_time_days,
	service_fee, image_url, materials_by_size, base_price_by_size, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (p entities.Product, err error) {
	var materials, prices []byte
	err = row.Scan(&p.Id, &p.Name, &p.Category, &p.Type, &p.RequiresPhoto, &p.IsCustomizable,
		&p.ProcessingTimeDays, &p.ServiceFee, &p.ImageURL, &materials, &prices, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return
	}
	if err = json.Unmarshal(materials, &p.MaterialsBySize); err != nil {
		return
	}
	err = json.Unmarshal(prices, &p.BasePriceBySize)
	return
}

func (r *ProductRepo) GetProductById(ctx context.Context, id string) (p entities.Product, exists bool, err error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err = scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
		} else {
			slog.Error("GetProductById", "id", id, "error", err)
			err = models.ErrServerError
		}
		return
	}
	exists = true
	return
}

func (r *ProductRepo) ListProducts(ctx context.Context, category string) (prods []entities.Product, err error) {
	var rows *sql.Rows
	var e error
	if category == "" {
		rows, e = r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY created_at DESC")
	} else {
		rows, e = r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products WHERE category = $1 ORDER BY created_at DESC", category)
	}
	if e != nil {
		slog.Error("ListProducts[1]", "error", e)
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	prods = []entities.Product{}
	for rows.Next() {
		var p entities.Product
		p, err = scanProduct(rows)
		if err != nil {
			slog.Error("ListProducts[2]", "error", err)
			err = models.ErrServerError
			return
		}
		prods = append(prods, p)
	}
	if err = rows.Err(); err != nil {
		slog.Error("ListProducts[3]", "error", err)
		err = models.ErrServerError
	}
	return
}

func marshalProductMaps(p entities.Product) (materials, prices []byte, err error) {
	materials, err = json.Marshal(p.MaterialsBySize)
	if err != nil {
		return
	}
	prices, err = json.Marshal(p.BasePriceBySize)
	return
}

func (r *ProductRepo) CreateProduct(ctx context.Context, p entities.Product) (err error) {
	materials, prices, e := marshalProductMaps(p)
	if e != nil {
		slog.Error("CreateProduct[1]", "error", e)
		err = models.ErrServerError
		return
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.Id, p.Name, p.Category, p.Type, p.RequiresPhoto, p.IsCustomizable, p.ProcessingTimeDays,
		p.ServiceFee, p.ImageURL, materials, prices, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		slog.Error("CreateProduct[2]", "error", err)
		err = models.ErrServerError
	}
	return
}

func (r *ProductRepo) UpdateProduct(ctx context.Context, p entities.Product) (err error) {
	materials, prices, e := marshalProductMaps(p)
	if e != nil {
		slog.Error("UpdateProduct[1]", "error", e)
		err = models.ErrServerError
		return
	}
	res, e := r.db.ExecContext(ctx, `UPDATE products SET name = $1, category = $2, type = $3, requires_photo = $4,
		is_customizable = $5, processing_time_days = $6, service_fee = $7, image_url = $8,
		materials_by_size = $9, base_price_by_size = $10, updated_at = $11 WHERE id = $12`,
		p.Name, p.Category, p.Type, p.RequiresPhoto, p.IsCustomizable, p.ProcessingTimeDays,
		p.ServiceFee, p.ImageURL, materials, prices, p.UpdatedAt, p.Id)
	if e != nil {
		slog.Error("UpdateProduct[2]", "error", e)
		err = models.ErrServerError
		return
	}
	err = expectOneRow(res, "UpdateProduct")
	return
}

func (r *ProductRepo) DeleteProduct(ctx context.Context, id string) (err error) {
	res, e := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if e != nil {
		slog.Error("DeleteProduct", "error", e)
		err = models.ErrServerError
		return
	}
	err = expectOneRow(res, "DeleteProduct")
	return
}
