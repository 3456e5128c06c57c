package catalog

import (
	"context"
	"fmt"
)

// Resource is the CRUD surface admin screens drive.
type Resource[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, id int64, v T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Service maps a REST collection whose payloads are W onto domain values T.
type Service[T any, W any] struct {
	client   *Client
	path     string
	fromWire func(W) T
	toWire   func(T) W
}

func NewService[T any, W any](client *Client, path string, fromWire func(W) T, toWire func(T) W) *Service[T, W] {
	return &Service[T, W]{client: client, path: path, fromWire: fromWire, toWire: toWire}
}

// GetAll lists the collection.
func (s *Service[T, W]) GetAll(ctx context.Context) ([]T, error) {
	var wire []W
	if err := s.client.Get(ctx, s.path, &wire); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(wire))
	for _, w := range wire {
		out = append(out, s.fromWire(w))
	}
	return out, nil
}

// Get fetches one element.
func (s *Service[T, W]) Get(ctx context.Context, id int64) (T, error) {
	var wire W
	if err := s.client.Get(ctx, s.itemPath(id), &wire); err != nil {
		var zero T
		return zero, err
	}
	return s.fromWire(wire), nil
}

func (s *Service[T, W]) Create(ctx context.Context, v T) (T, error) {
	var wire W
	if err := s.client.Post(ctx, s.path, s.toWire(v), &wire); err != nil {
		var zero T
		return zero, err
	}
	return s.fromWire(wire), nil
}

func (s *Service[T, W]) Update(ctx context.Context, id int64, v T) (T, error) {
	var wire W
	if err := s.client.Put(ctx, s.itemPath(id), s.toWire(v), &wire); err != nil {
		var zero T
		return zero, err
	}
	return s.fromWire(wire), nil
}

func (s *Service[T, W]) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, s.itemPath(id))
}

func (s *Service[T, W]) itemPath(id int64) string {
	return fmt.Sprintf("%s/%d", s.path, id)
}

// ref is the {id, nombre} shape the backend uses for relations.
type ref struct {
	ID              int64  `json:"id,omitempty"`
	Nombre          string `json:"nombre,omitempty"`
	NombreCategoria string `json:"nombreCategoria,omitempty"`
}

func refTo(id int64) *ref {
	if id <= 0 {
		return nil
	}
	return &ref{ID: id}
}

func (r *ref) id() int64 {
	if r == nil {
		return 0
	}
	return r.ID
}

func (r *ref) name(fallback string) string {
	switch {
	case r == nil:
		return fallback
	case r.Nombre != "":
		return r.Nombre
	case r.NombreCategoria != "":
		return r.NombreCategoria
	default:
		return fallback
	}
}
