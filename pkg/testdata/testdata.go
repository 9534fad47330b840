package testdata

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Package testdata generates realistic payloads for create/update checks.

// User is a synthetic user payload.
type User struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Company string `json:"company"`
	Job     string `json:"job"`
}

// Product is a synthetic product payload.
type Product struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
	SKU         string  `json:"sku"`
}

// Order is a synthetic order payload.
type Order struct {
	OrderID      string  `json:"order_id"`
	CustomerName string  `json:"customer_name"`
	Total        float64 `json:"total"`
	Status       string  `json:"status"`
	OrderDate    string  `json:"order_date"`
	ItemsCount   int     `json:"items_count"`
}

var (
	productCategories = []string{"Electronics", "Clothing", "Food", "Books"}
	orderStatuses     = []string{"pending", "processing", "shipped", "delivered"}
)

// RandomUser returns a user with plausible fake details.
func RandomUser() User {
	return User{
		Name:    gofakeit.Name(),
		Email:   gofakeit.Email(),
		Phone:   gofakeit.Phone(),
		Address: gofakeit.Address().Address,
		Company: gofakeit.Company(),
		Job:     gofakeit.JobTitle(),
	}
}

// RandomProduct returns a product with plausible fake details.
func RandomProduct() Product {
	return Product{
		Name:        gofakeit.ProductName(),
		Description: gofakeit.Sentence(12),
		Price:       gofakeit.Price(10, 1000),
		Category:    gofakeit.RandomString(productCategories),
		Stock:       gofakeit.Number(0, 100),
		SKU:         strings.ToUpper(RandomString(8)),
	}
}

// RandomOrder returns an order with plausible fake details.
func RandomOrder() Order {
	now := time.Now()
	return Order{
		OrderID:      strings.ToUpper(RandomString(12)),
		CustomerName: gofakeit.Name(),
		Total:        gofakeit.Price(20, 500),
		Status:       gofakeit.RandomString(orderStatuses),
		OrderDate:    gofakeit.DateRange(now.AddDate(0, -12, 0), now).Format(time.RFC3339),
		ItemsCount:   gofakeit.Number(1, 5),
	}
}

// RandomEmail returns a random email address.
func RandomEmail() string { return gofakeit.Email() }

// RandomString returns an alphanumeric string of length n.
func RandomString(n int) string {
	if n < 1 {
		return ""
	}
	return gofakeit.Password(true, true, true, false, false, n)
}
