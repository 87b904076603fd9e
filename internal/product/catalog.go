package product

import (
	"context"
	"errors"
	"log"
)

// Catalog serves product reads through the cache and writes through the
// repository.
type Catalog struct {
	repo  RepoInterface
	cache Cache
}

func NewCatalog(repo RepoInterface, cache Cache) *Catalog {
	return &Catalog{repo: repo, cache: cache}
}

func (c *Catalog) List(ctx context.Context) ([]*Product, error) {
	return c.repo.GetAllProducts(ctx)
}

func (c *Catalog) Get(ctx context.Context, id string) (*Product, error) {
	p, err := c.cache.Get(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Printf("product: cache get error: %v", err) // log cache error but continue
	}

	p, err = c.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	go func() {
		if errSet := c.cache.Set(context.Background(), p.ID, p); errSet != nil {
			log.Printf("product: cache set error: %v", errSet)
		}
	}()

	return p, nil
}

func (c *Catalog) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return c.repo.GetProductBySlug(ctx, slug)
}

func (c *Catalog) Create(ctx context.Context, p *Product) error {
	if err := c.repo.CreateProduct(ctx, p); err != nil {
		return err
	}
	if err := c.cache.Delete(ctx, p.ID); err != nil {
		log.Printf("product: cache invalidate error: %v", err)
	}
	return nil
}
