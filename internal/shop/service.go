// Package shop implements the storefront backend used for local development
// and end-to-end tests.
package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/storefront/pkg/auth"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/security"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	msgUsernameTaken       = "Username is already taken"
	msgUnknownUser         = "Username does not exist"
	msgWrongPassword       = "Password is incorrect"
	msgNoProducts          = "No products found"
	msgUnknownProduct      = "Product doesn't exist"
	msgUnknownAddress      = "Address not found"
	msgEmptyCart           = "Cart is empty"
	msgAddressNotSpecified = "Address to deliver order was not specified"
	msgInsufficientBalance = "Wallet balance not sufficient to place order"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	DB             *db.Client
	JWT            config.JWTConfig
	Password       config.PasswordConfig
	DefaultBalance decimal.Decimal
	Logger         *logger.Logger
}

type Service struct {
	repo           *Repository
	tx             txRunner
	hasher         *security.Hasher
	jwt            config.JWTConfig
	defaultBalance decimal.Decimal
	logg           *logger.Logger
	now            func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if strings.TrimSpace(params.JWT.Secret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Service{
		repo:           NewRepository(params.DB.DB()),
		tx:             params.DB,
		hasher:         security.NewHasher(params.Password),
		jwt:            params.JWT,
		defaultBalance: params.DefaultBalance,
		logg:           params.Logger,
		now:            time.Now,
	}, nil
}

// Register creates a shopper with the default wallet balance.
func (s *Service) Register(ctx context.Context, req types.RegisterRequest) error {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		Balance:      s.defaultBalance,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, msgUsernameTaken)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithUsername(ctx, user.Username), "user registered")
	}
	return nil
}

// Login verifies the password and mints an access token.
func (s *Service) Login(ctx context.Context, req types.LoginRequest) (types.LoginResponse, error) {
	user, err := s.repo.FindUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.LoginResponse{}, pkgerrors.New(pkgerrors.CodeRejected, msgUnknownUser)
		}
		return types.LoginResponse{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return types.LoginResponse{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return types.LoginResponse{}, pkgerrors.New(pkgerrors.CodeRejected, msgWrongPassword)
	}

	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return types.LoginResponse{}, pkgerrors.Wrap(pkgerrors.CodeDataIntegrity, err, "stored user id is not a uuid")
	}
	token, err := pkgAuth.MintAccessToken(s.jwt, s.now(), pkgAuth.AccessTokenPayload{
		UserID:   userID,
		Username: user.Username,
	})
	if err != nil {
		return types.LoginResponse{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	return types.LoginResponse{
		Success:  true,
		Token:    token,
		Username: user.Username,
		Balance:  user.Balance,
	}, nil
}

func (s *Service) Products(ctx context.Context) ([]types.Product, error) {
	rows, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return toProducts(rows), nil
}

// Search answers 404 when nothing matches.
func (s *Service) Search(ctx context.Context, text string) ([]types.Product, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.Products(ctx)
	}
	rows, err := s.repo.SearchProducts(ctx, text)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search products")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNoProducts)
	}
	return toProducts(rows), nil
}

func (s *Service) Cart(ctx context.Context, userID string) ([]types.CartEntry, error) {
	lines, err := s.repo.CartLines(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return toEntries(lines), nil
}

// SetCartItem sets the absolute quantity of a product and returns the cart.
func (s *Service) SetCartItem(ctx context.Context, userID string, req types.CartItemRequest) ([]types.CartEntry, error) {
	if req.Qty > 0 {
		exists, err := s.repo.ProductExists(ctx, req.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgUnknownProduct).
				WithDetails(map[string]any{"productId": req.ProductID})
		}
	}
	if err := s.repo.SetCartLine(ctx, userID, req.ProductID, req.Qty, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart")
	}
	return s.Cart(ctx, userID)
}

func (s *Service) Addresses(ctx context.Context, userID string) ([]types.Address, error) {
	rows, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	return toAddresses(rows), nil
}

func (s *Service) AddAddress(ctx context.Context, userID, text string) ([]types.Address, error) {
	row := &models.Address{UserID: userID, Text: strings.TrimSpace(text)}
	if err := s.repo.CreateAddress(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
	}
	return s.Addresses(ctx, userID)
}

func (s *Service) DeleteAddress(ctx context.Context, userID, id string) ([]types.Address, error) {
	found, err := s.repo.DeleteAddress(ctx, userID, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgUnknownAddress)
	}
	return s.Addresses(ctx, userID)
}

// Checkout debits the wallet and empties the cart in one transaction.
func (s *Service) Checkout(ctx context.Context, userID, addressID string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		user, err := repo.FindUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeUnauthorized, msgUnknownUser)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
		}
		lines, err := repo.CartLines(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeRejected, msgEmptyCart)
		}
		if _, err := repo.FindAddress(ctx, userID, addressID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeRejected, msgAddressNotSpecified)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
		}

		total, err := cartTotal(ctx, repo, lines)
		if err != nil {
			return err
		}
		if total.GreaterThan(user.Balance) {
			return pkgerrors.New(pkgerrors.CodeRejected, msgInsufficientBalance).
				WithDetails(map[string]any{"total": total.String(), "balance": user.Balance.String()})
		}

		user.Balance = user.Balance.Sub(total)
		if err := repo.UpdateBalance(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit wallet")
		}
		if err := repo.ClearCart(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		if s.logg != nil {
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{
				"total":   total.String(),
				"balance": user.Balance.String(),
			}), "order placed")
		}
		return nil
	})
}

func cartTotal(ctx context.Context, repo *Repository, lines []models.CartLine) (decimal.Decimal, error) {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := repo.FindProducts(ctx, ids)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart products")
	}
	cost := make(map[string]decimal.Decimal, len(products))
	for _, p := range products {
		cost[p.ID] = p.Cost
	}
	total := decimal.Zero
	for _, line := range lines {
		c, ok := cost[line.ProductID]
		if !ok {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeDataIntegrity, "cart references a deleted product").
				WithDetails(map[string]any{"productId": line.ProductID})
		}
		total = total.Add(c.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	return total, nil
}
