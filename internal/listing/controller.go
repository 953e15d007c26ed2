package listing

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stockroom/console/internal/backend"
)

// Controller performs the backend calls behind a Resource's screens.
type Controller[T, F any] struct {
	client   *backend.Client
	resource *Resource[T, F]
}

// NewController builds a Controller.
func NewController[T, F any](client *backend.Client, resource *Resource[T, F]) *Controller[T, F] {
	return &Controller[T, F]{client: client, resource: resource}
}

// Page fetches one page of the collection.
func (c *Controller[T, F]) Page(ctx context.Context, page, limit int) (backend.Page[T], error) {
	return backend.ListPage[T](ctx, c.client, c.resource.Endpoint, page, limit)
}

// Get fetches a single entity.
func (c *Controller[T, F]) Get(ctx context.Context, id int64) (T, error) {
	var item T
	err := c.client.Get(ctx, c.itemPath(id), nil, &item)
	return item, err
}

// Create posts form to the collection.
func (c *Controller[T, F]) Create(ctx context.Context, form F) error {
	if err := c.client.Post(ctx, c.resource.Endpoint, form, nil); err != nil {
		return err
	}
	c.changed(ctx)
	return nil
}

// Update replaces the entity with form.
func (c *Controller[T, F]) Update(ctx context.Context, id int64, form F) error {
	if err := c.client.Put(ctx, c.itemPath(id), form, nil); err != nil {
		return err
	}
	c.changed(ctx)
	return nil
}

// Delete removes the entity.
func (c *Controller[T, F]) Delete(ctx context.Context, id int64) error {
	if err := c.client.Delete(ctx, c.itemPath(id)); err != nil {
		return err
	}
	c.changed(ctx)
	return nil
}

func (c *Controller[T, F]) itemPath(id int64) string {
	return fmt.Sprintf("%s/%s", c.resource.Endpoint, strconv.FormatInt(id, 10))
}

// changed runs the resource hook. Hook failures are not reported to the
// caller; the hook logs its own.
func (c *Controller[T, F]) changed(ctx context.Context) {
	if c.resource.AfterChange == nil {
		return
	}
	_ = c.resource.AfterChange(ctx)
}
