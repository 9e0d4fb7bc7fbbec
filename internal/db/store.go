package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Keoroanthony/go-ordertrack/internal/models"
)

// ErrNotFound is returned when a record does not exist or is owned by
// another user. Callers cannot tell the two apart.
var ErrNotFound = errors.New("record not found")

// Store runs every customer and order query scoped to an owning user.
type Store struct {
	db *gorm.DB
}

func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// DB exposes the underlying handle for tests and migrations.
func (s *Store) DB() *gorm.DB { return s.db }

// CustomerSummary is a customer row with its derived order count.
type CustomerSummary struct {
	ID         uint
	Name       string
	Phone      string
	CreatedAt  time.Time
	OrderCount int64
}

// FindOrCreateUser returns the user with profile.Subject, creating it from
// profile when the subject has not been seen before.
func (s *Store) FindOrCreateUser(ctx context.Context, profile models.User) (models.User, error) {
	if profile.Subject == "" {
		return models.User{}, fmt.Errorf("db: find or create user: empty subject")
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where(models.User{Subject: profile.Subject}).
		Attrs(models.User{Email: profile.Email, Name: profile.Name}).
		FirstOrCreate(&user).Error
	if err != nil {
		return models.User{}, fmt.Errorf("db: find or create user: %w", err)
	}
	return user, nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, translate("user by id", err)
	}
	return user, nil
}

func (s *Store) CreateCustomer(ctx context.Context, userID uint, name, phone string) (models.Customer, error) {
	customer := models.Customer{
		Name:   name,
		Phone:  phone,
		UserID: userID,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&customer).Error; err != nil {
		return models.Customer{}, fmt.Errorf("db: create customer: %w", err)
	}
	return customer, nil
}

func (s *Store) CustomerForUser(ctx context.Context, userID, customerID uint) (models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", customerID, userID).
		First(&customer).Error
	if err != nil {
		return models.Customer{}, translate("customer for user", err)
	}
	return customer, nil
}

// CustomersForUser lists the user's customers, newest first.
func (s *Store) CustomersForUser(ctx context.Context, userID uint) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("db: customers for user: %w", err)
	}
	return customers, nil
}

// CustomerSummaries lists the user's customers with the number of orders
// placed against each.
func (s *Store) CustomerSummaries(ctx context.Context, userID uint) ([]CustomerSummary, error) {
	customers, err := s.CustomersForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var counts []struct {
		CustomerID uint
		OrderCount int64
	}
	err = s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("customer_id, COUNT(*) AS order_count").
		Where("user_id = ?", userID).
		Group("customer_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("db: order counts: %w", err)
	}

	byCustomer := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byCustomer[c.CustomerID] = c.OrderCount
	}

	summaries := make([]CustomerSummary, 0, len(customers))
	for _, c := range customers {
		summaries = append(summaries, CustomerSummary{
			ID:         c.ID,
			Name:       c.Name,
			Phone:      c.Phone,
			CreatedAt:  c.CreatedAt,
			OrderCount: byCustomer[c.ID],
		})
	}
	return summaries, nil
}

// CreateOrder persists an order against one of the user's own customers.
// The ownership check and the insert share a transaction; a customer owned by
// someone else yields ErrNotFound. The returned order has Customer loaded.
func (s *Store) CreateOrder(ctx context.Context, userID, customerID uint, name string, price float64) (models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.Where("id = ? AND user_id = ?", customerID, userID).First(&customer).Error; err != nil {
			return err
		}

		order = models.Order{
			Name:       name,
			Price:      price,
			CustomerID: customer.ID,
			UserID:     userID,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		order.Customer = customer
		return nil
	})
	if err != nil {
		return models.Order{}, translate("create order", err)
	}
	return order, nil
}

// OrdersForUser lists the user's orders newest first, each with its customer.
func (s *Store) OrdersForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("db: orders for user: %w", err)
	}
	return orders, nil
}

// DeleteCustomer removes one of the user's customers and every order placed
// against it in a single transaction.
func (s *Store) DeleteCustomer(ctx context.Context, userID, customerID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.Where("id = ? AND user_id = ?", customerID, userID).First(&customer).Error; err != nil {
			return err
		}

		if err := tx.Where("customer_id = ?", customer.ID).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		return tx.Delete(&customer).Error
	})
	if err != nil {
		return translate("delete customer", err)
	}
	return nil
}

func translate(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("db: %s: %w", op, err)
}
