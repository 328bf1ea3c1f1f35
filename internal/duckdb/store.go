// Package duckdb exports the cluster index to a DuckDB database so that
// cluster membership can be queried with SQL downstream.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/bactgen/clusterid/internal/clstr"
)

// Store manages a DuckDB connection holding exported cluster assignments.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS clusters (
		sample VARCHAR,
		allele VARCHAR,
		cluster_id VARCHAR,
		PRIMARY KEY (sample, allele)
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS export_metadata (
		key VARCHAR PRIMARY KEY,
		value VARCHAR
	)`)
	return err
}

// WriteIndex batch-inserts the cluster index using the Appender API.
// Rows are written in sorted (sample, allele) order so that repeated
// exports of the same report produce identical databases.
func (s *Store) WriteIndex(idx clstr.Index) error {
	if idx.Len() == 0 {
		return nil
	}

	samples := make([]string, 0, len(idx))
	for sample := range idx {
		samples = append(samples, sample)
	}
	sort.Strings(samples)

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "clusters")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, sample := range samples {
		alleles := make([]string, 0, len(idx[sample]))
		for allele := range idx[sample] {
			alleles = append(alleles, allele)
		}
		sort.Strings(alleles)

		for _, allele := range alleles {
			if err := appender.AppendRow(sample, allele, idx[sample][allele]); err != nil {
				return fmt.Errorf("append cluster row: %w", err)
			}
		}
	}

	return appender.Flush()
}

// WriteMetadata records the source cluster report path and export time.
func (s *Store) WriteMetadata(source string) error {
	entries := map[string]string{
		"source":      source,
		"exported_at": time.Now().UTC().Format(time.RFC3339),
	}
	for key, value := range entries {
		if _, err := s.db.Exec(
			`INSERT OR REPLACE INTO export_metadata (key, value) VALUES (?, ?)`,
			key, value,
		); err != nil {
			return fmt.Errorf("write metadata %q: %w", key, err)
		}
	}
	return nil
}

// LookupCluster queries the exported cluster identifier for a (sample,
// allele) pair. The second return value reports whether a row exists.
func (s *Store) LookupCluster(sample, allele string) (string, bool, error) {
	var clusterID string
	err := s.db.QueryRow(
		`SELECT cluster_id FROM clusters WHERE sample = ? AND allele = ?`,
		sample, allele,
	).Scan(&clusterID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup cluster: %w", err)
	}
	return clusterID, true, nil
}

// Count returns the number of exported (sample, allele) rows.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM clusters`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count clusters: %w", err)
	}
	return n, nil
}
