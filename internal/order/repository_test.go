package order_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"

	"github.com/northmart/storefront/internal/order"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		var err error
		testDB, err = pgxpool.New(context.Background(), dsn)
		if err != nil {
			log.Fatalf("Failed to connect to test database: %v", err)
		}
	}

	exitCode := m.Run()

	if testDB != nil {
		testDB.Close()
	}
	os.Exit(exitCode)
}

func setupOrders(t *testing.T) (order.Repository, int64) {
	if testDB == nil {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	truncate := func() {
		_, err := testDB.Exec(ctx, "TRUNCATE TABLE orders, users RESTART IDENTITY CASCADE")
		if err != nil {
			t.Fatalf("Failed to truncate tables: %v", err)
		}
	}
	truncate()
	t.Cleanup(truncate)

	var userID int64
	err := testDB.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, is_admin)
		VALUES ('alice@example.com', 'x', 'Alice', TRUE)
		RETURNING id
	`).Scan(&userID)
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}

	return order.NewRepository(testDB), userID
}

// insertOrder creates an order with created_at expressed relative to the
// database clock, so the CURRENT_DATE filter is exercised in the
// server's own timezone.
func insertOrder(t *testing.T, userID int64, status order.Status, createdAtSQL string) int64 {
	t.Helper()

	var id int64
	err := testDB.QueryRow(context.Background(), `
		INSERT INTO orders (user_id, status, total_amount,
			shipping_full_name, shipping_phone, shipping_address,
			shipping_city, shipping_zip_code, shipping_country, created_at)
		VALUES ($1, $2, 50.00, 'Alice Smith', '+1234567', '1 Main St', 'Springfield', '12345', 'US', `+createdAtSQL+`)
		RETURNING id
	`, userID, string(status)).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to insert test order: %v", err)
	}
	return id
}

func TestRepository_ListActive_StatusAndDateFilter(t *testing.T) {
	repo, userID := setupOrders(t)
	ctx := context.Background()

	pendingToday := insertOrder(t, userID, order.StatusPendingCall, "now() - interval '1 hour'")
	verifiedToday := insertOrder(t, userID, order.StatusVerified, "now()")
	insertOrder(t, userID, order.StatusShipped, "now()")
	insertOrder(t, userID, order.StatusPendingCall, "now() - interval '1 day'")

	orders, err := repo.ListActive(ctx, order.ActionableStatuses, true)
	assert.NoError(t, err)

	// Only today's Pending Call and Verified orders, newest first.
	if assert.Len(t, orders, 2) {
		assert.Equal(t, verifiedToday, orders[0].ID)
		assert.Equal(t, pendingToday, orders[1].ID)
		assert.Equal(t, "Alice", orders[0].CustomerName)
		assert.Equal(t, "Alice Smith", orders[0].ShippingDetails.FullName)
	}
}

func TestRepository_ListActive_NoFiltersListsAll(t *testing.T) {
	repo, userID := setupOrders(t)
	ctx := context.Background()

	insertOrder(t, userID, order.StatusPendingCall, "now()")
	insertOrder(t, userID, order.StatusShipped, "now()")
	insertOrder(t, userID, order.StatusDelivered, "now() - interval '2 days'")

	orders, err := repo.ListActive(ctx, nil, false)
	assert.NoError(t, err)
	assert.Len(t, orders, 3)
}

func TestRepository_ListRecent(t *testing.T) {
	repo, userID := setupOrders(t)
	ctx := context.Background()

	insertOrder(t, userID, order.StatusDelivered, "now() - interval '3 hours'")
	middle := insertOrder(t, userID, order.StatusShipped, "now() - interval '2 hours'")
	newest := insertOrder(t, userID, order.StatusPendingCall, "now() - interval '1 hour'")

	summaries, err := repo.ListRecent(ctx, 2)
	assert.NoError(t, err)

	if assert.Len(t, summaries, 2) {
		assert.Equal(t, newest, summaries[0].ID)
		assert.Equal(t, middle, summaries[1].ID)
		assert.Equal(t, "Alice", summaries[0].CustomerName)
	}
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, userID := setupOrders(t)
	ctx := context.Background()

	id := insertOrder(t, userID, order.StatusPendingCall, "now()")

	err := repo.UpdateStatus(ctx, id, order.StatusVerified)
	assert.NoError(t, err)

	updated, err := repo.GetByID(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, order.StatusVerified, updated.Status)

	err = repo.UpdateStatus(ctx, 9999, order.StatusVerified)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _ := setupOrders(t)

	_, err := repo.GetByID(context.Background(), 9999)
	assert.ErrorIs(t, err, order.ErrNotFound)
}
