package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"realty-workers/internal/common/errors"
	"realty-workers/internal/models"
)

// SearchEnabled reports whether listings are mirrored to Elasticsearch.
func (s *Store) SearchEnabled() bool {
	return s.search != nil
}

// IndexListing writes l into the listing index. Images are not mirrored.
func (s *Store) IndexListing(ctx context.Context, l *models.Listing) error {
	if s.search == nil {
		return nil
	}

	doc := *l
	doc.Images = nil
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewSearchIndexFailedError(err)
	}

	res, err := s.search.Index(s.opts.ListingIndex, bytes.NewReader(body),
		s.search.Index.WithContext(ctx),
		s.search.Index.WithDocumentID(l.ID),
	)
	if err != nil {
		return errors.NewSearchIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewSearchIndexFailedError(fmt.Errorf("index listing %s: %s", l.ID, res.Status()))
	}
	return nil
}

// RemoveListing deletes the listing from the index; a missing document is
// not an error.
func (s *Store) RemoveListing(ctx context.Context, id string) error {
	if s.search == nil {
		return nil
	}

	res, err := s.search.Delete(s.opts.ListingIndex, id, s.search.Delete.WithContext(ctx))
	if err != nil {
		return errors.NewSearchIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return errors.NewSearchIndexFailedError(fmt.Errorf("remove listing %s: %s", id, res.Status()))
	}
	return nil
}

// ReindexAll mirrors the current snapshot into the index and returns how
// many listings were written.
func (s *Store) ReindexAll(ctx context.Context) (int, error) {
	if s.search == nil {
		return 0, nil
	}
	s.invalidateSnapshot(ctx)
	listings, err := s.ListListings(ctx)
	if err != nil {
		return 0, err
	}
	for i := range listings {
		if err := s.IndexListing(ctx, &listings[i]); err != nil {
			return i, err
		}
	}
	return len(listings), nil
}
