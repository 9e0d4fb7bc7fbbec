// Package dbtest opens isolated, migrated in-memory SQLite databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-ordertrack/internal/db"
	"github.com/Keoroanthony/go-ordertrack/internal/models"
)

// Open returns a fresh database private to t. It is closed on cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.Open(dsn)
	require.NoError(t, err, "failed to connect test database")
	require.NoError(t, db.Migrate(gdb), "failed to auto-migrate models")

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return gdb
}

// SeedUser inserts a user with the given subject.
func SeedUser(t testing.TB, gdb *gorm.DB, subject string) models.User {
	t.Helper()

	user := models.User{
		Subject: subject,
		Email:   subject + "@example.com",
		Name:    "User " + subject,
	}
	require.NoError(t, gdb.Create(&user).Error)
	return user
}

// SeedCustomer inserts a customer owned by userID.
func SeedCustomer(t testing.TB, gdb *gorm.DB, userID uint, name, phone string) models.Customer {
	t.Helper()

	customer := models.Customer{Name: name, Phone: phone, UserID: userID}
	require.NoError(t, gdb.Create(&customer).Error)
	return customer
}

// SeedOrder inserts an order for customer, owned by the customer's user.
func SeedOrder(t testing.TB, gdb *gorm.DB, customer models.Customer, name string, price float64) models.Order {
	t.Helper()

	order := models.Order{
		Name:       name,
		Price:      price,
		CustomerID: customer.ID,
		UserID:     customer.UserID,
	}
	require.NoError(t, gdb.Omit("Customer").Create(&order).Error)
	return order
}
