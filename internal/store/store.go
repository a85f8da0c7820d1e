// Package store keeps listings, inquiries and consultations as JSONB
// documents in Postgres, with a Redis snapshot cache for the public listing
// scan and an optional Elasticsearch mirror of listings.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/listing"
	"realty-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tableListings      = "listings"
	tableListingImages = "listing_images"
	tableInquiries     = "inquiries"
	tableConsultations = "consultations"
)

type Options struct {
	SnapshotLimit int
	CacheTTL      time.Duration
	ListingIndex  string
}

// Store is safe for concurrent use. cache and search may be nil.
type Store struct {
	db     *sql.DB
	cache  redis.Cmdable
	search *elasticsearch.Client
	opts   Options
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

func New(db *sql.DB, cache redis.Cmdable, search *elasticsearch.Client, opts Options, log logger.Logger) *Store {
	if opts.SnapshotLimit <= 0 {
		opts.SnapshotLimit = listing.SnapshotLimit
	}
	if opts.ListingIndex == "" {
		opts.ListingIndex = "listings"
	}
	return &Store{
		db:     db,
		cache:  cache,
		search: search,
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Ping checks the document database.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.NewDocumentStoreUnavailableError(err)
	}
	return nil
}

// GetStats counts listings and pending requests for the admin dashboard.
func (s *Store) GetStats(ctx context.Context) (*models.Stats, error) {
	const query = `SELECT
		(SELECT count(*) FROM listings),
		(SELECT count(*) FROM listings WHERE doc->>'status' = 'available'),
		(SELECT count(*) FROM inquiries WHERE doc->>'status' = 'pending'),
		(SELECT count(*) FROM consultations WHERE doc->>'status' = 'pending')`

	var st models.Stats
	err := s.db.QueryRowContext(ctx, query).Scan(
		&st.TotalListings, &st.AvailableListings, &st.PendingInquiries, &st.PendingConsultations,
	)
	if err != nil {
		return nil, errors.NewDocumentStoreUnavailableError(err)
	}
	return &st, nil
}

// insertDoc stores v as the document for id in table.
func (s *Store) insertDoc(ctx context.Context, table, id string, v interface{}, createdAt time.Time) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(table, err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, doc, created_at, updated_at) VALUES ($1, $2, $3, $3)`, table)
	if _, err := s.db.ExecContext(ctx, query, id, doc, createdAt); err != nil {
		return errors.NewDatabaseInsertFailedError(table, err)
	}
	return nil
}

// patchDoc merges patch into the stored document and returns the result.
// It returns sql.ErrNoRows when id does not exist.
func (s *Store) patchDoc(ctx context.Context, table, id string, patch map[string]interface{}) ([]byte, error) {
	now := s.now()
	patch["updatedAt"] = now

	body, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`UPDATE %s SET doc = doc || $2::jsonb, updated_at = $3 WHERE id = $1 RETURNING doc`, table)

	var doc []byte
	if err := s.db.QueryRowContext(ctx, query, id, body, now).Scan(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// queryDocs runs query and decodes every returned doc column with decode.
func (s *Store) queryDocs(ctx context.Context, query string, decode func([]byte) error, args ...interface{}) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.NewDocumentStoreUnavailableError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return errors.NewDocumentStoreUnavailableError(err)
		}
		if err := decode(doc); err != nil {
			return errors.NewDocumentStoreUnavailableError(fmt.Errorf("decode document: %w", err))
		}
	}
	if err := rows.Err(); err != nil {
		return errors.NewDocumentStoreUnavailableError(err)
	}
	return nil
}

func isNoRows(err error) bool {
	return stderrors.Is(err, sql.ErrNoRows)
}
