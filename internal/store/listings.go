package store

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"realty-workers/internal/common/errors"
	"realty-workers/internal/models"

	"github.com/lib/pq"
)

// ListListings returns the listing snapshot: at most SnapshotLimit listings,
// newest first, each with its images. It is served from the snapshot cache
// when possible; cache failures fall through to the database.
func (s *Store) ListListings(ctx context.Context) ([]models.Listing, error) {
	if cached, ok := s.cachedSnapshot(ctx); ok {
		return cached, nil
	}

	const query = `SELECT doc FROM listings ORDER BY created_at DESC LIMIT $1`

	// A document that no longer decodes is skipped so one bad row cannot
	// empty the public list.
	out := make([]models.Listing, 0, s.opts.SnapshotLimit)
	err := s.queryDocs(ctx, query, func(doc []byte) error {
		var l models.Listing
		if err := json.Unmarshal(doc, &l); err != nil {
			s.skipDocument(tableListings, doc, err)
			return nil
		}
		out = append(out, l)
		return nil
	}, s.opts.SnapshotLimit)
	if err != nil {
		return nil, err
	}

	if err := s.attachImages(ctx, out); err != nil {
		return nil, err
	}

	s.storeSnapshot(ctx, out)
	return out, nil
}

func (s *Store) attachImages(ctx context.Context, listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	ids := make([]string, len(listings))
	byID := make(map[string]int, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
		byID[l.ID] = i
	}

	const query = `SELECT doc FROM listing_images WHERE listing_id = ANY($1)
		ORDER BY listing_id, (doc->>'orderIndex')::int`

	return s.queryDocs(ctx, query, func(doc []byte) error {
		var img models.ListingImage
		if err := json.Unmarshal(doc, &img); err != nil {
			s.skipDocument(tableListingImages, doc, err)
			return nil
		}
		if i, ok := byID[img.ListingID]; ok {
			listings[i].Images = append(listings[i].Images, img)
		}
		return nil
	}, pq.Array(ids))
}

// GetListing returns one listing with its images and counts the view.
func (s *Store) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	const query = `UPDATE listings
		SET doc = jsonb_set(doc, '{viewCount}', to_jsonb(COALESCE((doc->>'viewCount')::int, 0) + 1))
		WHERE id = $1 RETURNING doc`

	var doc []byte
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&doc); err != nil {
		if isNoRows(err) {
			return nil, errors.NewListingNotFoundError(id)
		}
		return nil, errors.NewDocumentStoreUnavailableError(err)
	}

	var l models.Listing
	if err := json.Unmarshal(doc, &l); err != nil {
		return nil, errors.NewDocumentStoreUnavailableError(err)
	}

	one := []models.Listing{l}
	if err := s.attachImages(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// CreateListing stores l with a fresh id, zero views and status available
// when none is given.
func (s *Store) CreateListing(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	now := s.now()
	created := *l
	created.ID = s.newID()
	created.ViewCount = 0
	created.Images = nil
	created.CreatedAt = &now
	created.UpdatedAt = &now
	if created.Status == "" {
		created.Status = models.ListingAvailable
	}

	if err := s.insertDoc(ctx, tableListings, created.ID, created, now); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx)
	return &created, nil
}

// UpdateListing merges patch (camelCase document keys) into the listing.
// id, viewCount and createdAt cannot be patched. A patch that would leave
// the document undecodable is rejected before the write.
func (s *Store) UpdateListing(ctx context.Context, id string, patch map[string]interface{}) (*models.Listing, error) {
	clean := make(map[string]interface{}, len(patch)+1)
	for k, v := range patch {
		switch k {
		case "id", "viewCount", "createdAt", "images":
			continue
		}
		clean[k] = v
	}
	if err := models.CheckListingPatch(clean); err != nil {
		return nil, errors.NewInvalidListingError(err.Error())
	}

	doc, err := s.patchDoc(ctx, tableListings, id, clean)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewListingNotFoundError(id)
		}
		return nil, errors.NewDocumentStoreUnavailableError(err)
	}

	var l models.Listing
	if err := json.Unmarshal(doc, &l); err != nil {
		return nil, errors.NewDocumentStoreUnavailableError(err)
	}
	s.invalidateSnapshot(ctx)
	return &l, nil
}

func (s *Store) UpdateListingStatus(ctx context.Context, id string, status models.ListingStatus) (*models.Listing, error) {
	if !status.Valid() {
		return nil, errors.NewInvalidStatusError(string(status))
	}
	return s.UpdateListing(ctx, id, map[string]interface{}{"status": status})
}

// DeleteListing removes the listing; its images go with it.
func (s *Store) DeleteListing(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return errors.NewDocumentStoreUnavailableError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewListingNotFoundError(id)
	}
	s.invalidateSnapshot(ctx)
	return nil
}

func (s *Store) AddListingImage(ctx context.Context, listingID string, img *models.ListingImage) (*models.ListingImage, error) {
	created := *img
	created.ID = s.newID()
	created.ListingID = listingID
	created.CreatedAt = s.now()

	doc, err := json.Marshal(created)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(tableListingImages, err)
	}

	const query = `INSERT INTO listing_images (id, listing_id, doc, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := s.db.ExecContext(ctx, query, created.ID, listingID, doc, created.CreatedAt); err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, errors.NewListingNotFoundError(listingID)
		}
		return nil, errors.NewDatabaseInsertFailedError(tableListingImages, err)
	}
	s.invalidateSnapshot(ctx)
	return &created, nil
}

func (s *Store) skipDocument(table string, doc []byte, err error) {
	var head struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(doc, &head)
	s.logger.Warn("skipping undecodable document", map[string]interface{}{
		"table": table,
		"id":    head.ID,
		"error": err.Error(),
	})
}
