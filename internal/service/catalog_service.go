package service

import (
	"context"
	"fmt"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"

	"golang.org/x/sync/errgroup"
)

// InvoiceOptions feeds the client and product selectors of the invoice form.
type InvoiceOptions struct {
	Clients  []model.Client  `json:"clientes"`
	Products []model.Product `json:"productos"`
}

type CatalogService interface {
	LoadInvoiceOptions(ctx context.Context) (InvoiceOptions, error)
}

type catalogService struct {
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
}

func NewCatalogService(clientRepo repository.ClientRepository, productRepo repository.ProductRepository) CatalogService {
	return &catalogService{clientRepo: clientRepo, productRepo: productRepo}
}

// LoadInvoiceOptions reads active clients and active products concurrently.
func (s *catalogService) LoadInvoiceOptions(ctx context.Context) (InvoiceOptions, error) {
	var opts InvoiceOptions
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		clients, _, err := s.clientRepo.List(gctx, repository.ClientFilter{Status: model.StatusActive})
		if err != nil {
			return fmt.Errorf("failed to load clients: %w", err)
		}
		opts.Clients = clients
		return nil
	})
	g.Go(func() error {
		products, _, err := s.productRepo.List(gctx, repository.ProductFilter{Status: model.StatusActive})
		if err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}
		opts.Products = products
		return nil
	})

	if err := g.Wait(); err != nil {
		return InvoiceOptions{}, err
	}
	return opts, nil
}
