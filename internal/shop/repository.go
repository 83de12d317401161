package shop

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists shoppers, the catalog, carts and addresses.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdateBalance(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		UpdateColumn("balance", user.Balance).Error
}

const productOrder = "position ASC, name ASC"

// UpsertProducts inserts the products, overwriting existing rows by id.
func (r *Repository) UpsertProducts(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&products).Error
}

// ListProducts returns the catalog in display order.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Order(productOrder).Find(&products).Error
	return products, err
}

// SearchProducts matches text against name and category, case-insensitively.
func (r *Repository) SearchProducts(ctx context.Context, text string) ([]models.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(category) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order(productOrder).
		Find(&products).Error
	return products, err
}

func (r *Repository) FindProducts(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *Repository) ProductExists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CartLines returns the user's cart in the order lines were first added.
func (r *Repository) CartLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Order("product_id ASC").
		Find(&lines).Error
	return lines, err
}

// SetCartLine writes an absolute quantity. A quantity of zero or less
// deletes the line; an existing line keeps its position.
func (r *Repository) SetCartLine(ctx context.Context, userID, productID string, qty int, now time.Time) error {
	db := r.db.WithContext(ctx)
	if qty <= 0 {
		return db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartLine{}).Error
	}
	var line models.CartLine
	err := db.Where("user_id = ? AND product_id = ?", userID, productID).First(&line).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Create(&models.CartLine{UserID: userID, ProductID: productID, Qty: qty, AddedAt: now}).Error
	case err != nil:
		return err
	}
	return db.Model(&models.CartLine{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		UpdateColumn("qty", qty).Error
}

func (r *Repository) ClearCart(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartLine{}).Error
}

func (r *Repository) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&addresses).Error
	return addresses, err
}

func (r *Repository) CreateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

// DeleteAddress removes the user's address and reports whether a row existed.
func (r *Repository) DeleteAddress(ctx context.Context, userID, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&models.Address{})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) FindAddress(ctx context.Context, userID, id string) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
