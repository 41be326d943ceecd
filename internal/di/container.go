package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maplemarket/api/internal/platform/config"
	"github.com/maplemarket/api/internal/repositories"
	"github.com/maplemarket/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon.
// Concrete implementations are assembled via dependency injection in
// NewContainer.
type Services struct {
	Orders  services.OrderService
	Cart    services.CartService
	Catalog services.CatalogService
	System  services.SystemService
}

// Container wires repositories and services for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// NewContainer constructs the runtime dependencies. Production wiring provides
// the Firestore-backed registry; tests can supply stub registries.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}

	svc, err := buildServices(reg)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(reg repositories.Registry) (Services, error) {
	var svc Services

	itemsRepo := reg.Items()

	if itemsRepo != nil {
		catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
			Items: itemsRepo,
			Clock: time.Now,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build catalog service: %w", err)
		}
		svc.Catalog = catalogSvc
	}

	if cartsRepo := reg.Carts(); cartsRepo != nil && itemsRepo != nil {
		cartSvc, err := services.NewCartService(services.CartServiceDeps{
			Carts: cartsRepo,
			Items: itemsRepo,
			Clock: time.Now,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build cart service: %w", err)
		}
		svc.Cart = cartSvc
	}

	if ordersRepo := reg.Orders(); ordersRepo != nil && itemsRepo != nil {
		orderSvc, err := services.NewOrderService(services.OrderServiceDeps{
			Orders:   ordersRepo,
			Items:    itemsRepo,
			Carts:    reg.Carts(),
			Accounts: reg.Accounts(),
			Tx:       reg,
			Clock:    time.Now,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build order service: %w", err)
		}
		svc.Orders = orderSvc
	}

	if healthRepo := reg.Health(); healthRepo != nil {
		systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
			Health: healthRepo,
			Clock:  time.Now,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build system service: %w", err)
		}
		svc.System = systemSvc
	}

	return svc, nil
}
