package league

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/midwicket/pavilion/internal/domain/model"
)

// CreateProduct inserts a product and returns it with its assigned id.
func (s *Store) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	row, err := s.returningRow(ctx, s.sb.Insert("products").
		Columns("name", "description", "price_cents", "stock").
		Values(p.Name, p.Description, p.PriceCents, p.Stock).
		Suffix("RETURNING id"))
	if err != nil {
		return model.Product{}, err
	}
	if err := row.Scan(&p.ID); err != nil {
		return model.Product{}, fmt.Errorf("%w: insert product: %w", ErrDataAccess, err)
	}
	return p, nil
}

// ListProducts returns all products ordered by id.
func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.query(ctx, s.sb.
		Select("id", "name", "description", "price_cents", "stock").
		From("products").
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock); err != nil {
			return nil, fmt.Errorf("%w: scan product: %w", ErrDataAccess, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list products: %w", ErrDataAccess, err)
	}
	return out, nil
}

// UpdateProduct updates a product; unknown ids yield ErrNotFound.
func (s *Store) UpdateProduct(ctx context.Context, p model.Product) error {
	tag, err := s.exec(ctx, s.sb.Update("products").
		Set("name", p.Name).
		Set("description", p.Description).
		Set("price_cents", p.PriceCents).
		Set("stock", p.Stock).
		Where(sq.Eq{"id": p.ID}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

// DeleteProduct removes a product; unknown ids yield ErrNotFound.
func (s *Store) DeleteProduct(ctx context.Context, id int) error {
	tag, err := s.exec(ctx, s.sb.Delete("products").Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}
