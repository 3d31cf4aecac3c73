package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/webshopd/nexipay/checkout"
)

// SQLiteStore persists orders and checkout sessions. It implements both
// checkout.OrderStore and checkout.SessionStore.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// retryOperation executes a database operation with retry logic for SQLITE_BUSY errors
func (s *SQLiteStore) retryOperation(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		// Check if it's a busy error
		if strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked") {
			lastErr = err
			if attempt < maxRetries {
				// Exponential backoff: 10ms, 20ms, 40ms, 80ms
				backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
				log.Printf("SQLite busy, retrying in %v (attempt %d/%d)", backoff, attempt+1, maxRetries+1)
				time.Sleep(backoff)
				continue
			}
		} else {
			// Not a retry-able error
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

// NewSQLiteStore creates a new SQLite store optimized for multiple processes
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// SQLite connection string with multi-process optimizations
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_timeout=20000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:   db,
		path: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.optimizeForMultiProcess(); err != nil {
		log.Printf("Warning: Failed to apply optimizations: %v", err)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		payment_id TEXT,
		status TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_orders_payment_id ON orders(payment_id);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Trigger to update updated_at column
	CREATE TRIGGER IF NOT EXISTS update_orders_updated_at
		AFTER UPDATE ON orders
	BEGIN
		UPDATE orders SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
	END;
	`

	_, err := s.db.Exec(query)
	return err
}

// optimizeForMultiProcess applies SQLite optimizations for multi-process access
func (s *SQLiteStore) optimizeForMultiProcess() error {
	optimizations := []string{
		"PRAGMA journal_mode = WAL;",    // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous = NORMAL;",  // Balance between safety and speed
		"PRAGMA cache_size = 1000;",     // Increase cache size
		"PRAGMA busy_timeout = 30000;",  // 30 second timeout for lock waits
		"PRAGMA temp_store = memory;",   // Store temp tables in memory
		"PRAGMA mmap_size = 268435456;", // 256MB memory mapping
		"PRAGMA optimize;",              // Optimize database
	}

	for _, pragma := range optimizations {
		if _, err := s.db.Exec(pragma); err != nil {
			log.Printf("Warning: Failed to execute %s: %v", pragma, err)
		}
	}

	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode)
	if err != nil {
		return fmt.Errorf("failed to check journal mode: %w", err)
	}

	return nil
}

// SaveOrder upserts an order
func (s *SQLiteStore) SaveOrder(order *checkout.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	return s.retryOperation(func() error {
		query := `
		INSERT INTO orders (id, payment_id, status, data, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id)
		DO UPDATE SET
			payment_id = excluded.payment_id,
			status = excluded.status,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
		`

		paymentID := order.GetMeta(checkout.MetaPaymentID)
		_, err := s.db.Exec(query, order.ID, paymentID, string(order.Status), string(data))
		if err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		return nil
	}, 3) // Max 3 retries
}

// GetOrder loads an order by id
func (s *SQLiteStore) GetOrder(id string) (*checkout.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var order *checkout.Order
	err := s.retryOperation(func() error {
		var data string
		err := s.db.QueryRow(`SELECT data FROM orders WHERE id = ?`, id).Scan(&data)
		if err != nil {
			if err == sql.ErrNoRows {
				return checkout.NewError(checkout.ErrKindNotFound, "store.GetOrder", fmt.Sprintf("order %s not found", id), nil)
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		order = &checkout.Order{}
		if err := json.Unmarshal([]byte(data), order); err != nil {
			return fmt.Errorf("failed to unmarshal order: %w", err)
		}
		return nil
	}, 3)

	return order, err
}

// FindOrderByPaymentID resolves the newest order annotated with the given
// provider payment id
func (s *SQLiteStore) FindOrderByPaymentID(paymentID string) (*checkout.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var order *checkout.Order
	err := s.retryOperation(func() error {
		query := `
		SELECT data FROM orders
		WHERE payment_id = ?
		ORDER BY updated_at DESC
		LIMIT 1
		`

		var data string
		err := s.db.QueryRow(query, paymentID).Scan(&data)
		if err != nil {
			if err == sql.ErrNoRows {
				return checkout.NewError(checkout.ErrKindNotFound, "store.FindOrderByPaymentID", fmt.Sprintf("no order for payment %s", paymentID), nil)
			}
			return fmt.Errorf("failed to find order: %w", err)
		}

		order = &checkout.Order{}
		if err := json.Unmarshal([]byte(data), order); err != nil {
			return fmt.Errorf("failed to unmarshal order: %w", err)
		}
		return nil
	}, 3)

	return order, err
}

// SaveSession upserts a checkout session
func (s *SQLiteStore) SaveSession(session *checkout.CheckoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return s.retryOperation(func() error {
		query := `
		INSERT INTO sessions (id, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id)
		DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
		`

		_, err := s.db.Exec(query, session.ID, string(data))
		if err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	}, 3)
}

// GetSession loads a checkout session by id
func (s *SQLiteStore) GetSession(id string) (*checkout.CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var session *checkout.CheckoutSession
	err := s.retryOperation(func() error {
		var data string
		err := s.db.QueryRow(`SELECT data FROM sessions WHERE id = ?`, id).Scan(&data)
		if err != nil {
			if err == sql.ErrNoRows {
				return checkout.NewError(checkout.ErrKindNotFound, "store.GetSession", fmt.Sprintf("session %s not found", id), nil)
			}
			return fmt.Errorf("failed to load session: %w", err)
		}

		session = &checkout.CheckoutSession{}
		if err := json.Unmarshal([]byte(data), session); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}
		return nil
	}, 3)

	return session, err
}

// DeleteSession removes a checkout session
func (s *SQLiteStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(func() error {
		_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	}, 3)
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
