package seed

import (
	"context"
	"fmt"

	"github.com/ecomstore/backend/internal/domain/catalog"
	"github.com/ecomstore/backend/internal/domain/identity"
	"github.com/ecomstore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Resetter wipes the storefront tables
type Resetter interface {
	ResetData(ctx context.Context) error
}

// Options controls a seed run
type Options struct {
	// Reset deletes users, products, carts and orders before loading
	Reset bool
	// Fake adds this many generated products after the fixtures
	Fake int
	// FakeSeed makes generated products reproducible; 0 picks a random seed
	FakeSeed uint64
}

// Result summarises a seed run
type Result struct {
	Users        int
	SkippedUsers int
	Products     int
	FakeProducts int
}

// Seeder writes fixtures through the domain repositories
type Seeder struct {
	uow      shared.UnitOfWork
	users    identity.UserRepository
	products catalog.ProductRepository
	resetter Resetter
	logger   *zap.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(
	uow shared.UnitOfWork,
	users identity.UserRepository,
	products catalog.ProductRepository,
	resetter Resetter,
	logger *zap.Logger,
) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		uow:      uow,
		users:    users,
		products: products,
		resetter: resetter,
		logger:   logger,
	}
}

// Run loads fx in a single transaction. Without Reset, users whose email
// already exists are skipped and products are appended.
func (s *Seeder) Run(ctx context.Context, fx *Fixtures, opts Options) (*Result, error) {
	if opts.Fake < 0 {
		return nil, fmt.Errorf("fake product count cannot be negative: %d", opts.Fake)
	}

	users := make([]*identity.User, 0, len(fx.Users))
	for _, u := range fx.Users {
		user, err := u.ToUser()
		if err != nil {
			return nil, fmt.Errorf("invalid user fixture %s: %w", u.Email, err)
		}
		users = append(users, user)
	}
	products := make([]*catalog.Product, 0, len(fx.Products)+opts.Fake)
	for _, p := range fx.Products {
		product, err := p.ToProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	fakes, err := FakeProducts(opts.FakeSeed, opts.Fake)
	if err != nil {
		return nil, err
	}
	products = append(products, fakes...)

	result := &Result{FakeProducts: len(fakes)}
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		if opts.Reset {
			if err := s.resetter.ResetData(ctx); err != nil {
				return err
			}
			s.logger.Info("Cleared existing data")
		}

		for _, user := range users {
			if !opts.Reset {
				exists, err := s.users.ExistsByEmail(ctx, user.Email)
				if err != nil {
					return err
				}
				if exists {
					result.SkippedUsers++
					s.logger.Debug("User already exists, skipping", zap.String("email", user.Email))
					continue
				}
			}
			if err := s.users.Create(ctx, user); err != nil {
				return fmt.Errorf("failed to create user %s: %w", user.Email, err)
			}
			result.Users++
		}

		for _, product := range products {
			if err := s.products.Save(ctx, product); err != nil {
				return fmt.Errorf("failed to create product %q: %w", product.Name, err)
			}
			result.Products++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Data seeded",
		zap.Int("users", result.Users),
		zap.Int("skipped_users", result.SkippedUsers),
		zap.Int("products", result.Products),
		zap.Int("fake_products", result.FakeProducts))
	return result, nil
}
