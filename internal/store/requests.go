package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"realty-workers/internal/common/errors"
	"realty-workers/internal/models"
)

// CreateInquiry stores a new pending inquiry.
func (s *Store) CreateInquiry(ctx context.Context, in *models.Inquiry) (*models.Inquiry, error) {
	now := s.now()
	created := *in
	created.ID = s.newID()
	created.Status = models.RequestPending
	created.CreatedAt = now
	created.UpdatedAt = now

	if err := s.insertDoc(ctx, tableInquiries, created.ID, created, now); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListInquiries returns inquiries newest first; limit <= 0 returns all.
func (s *Store) ListInquiries(ctx context.Context, limit int) ([]models.Inquiry, error) {
	const query = `SELECT doc FROM inquiries ORDER BY created_at DESC LIMIT $1`

	out := []models.Inquiry{}
	err := s.queryDocs(ctx, query, func(doc []byte) error {
		var in models.Inquiry
		if err := json.Unmarshal(doc, &in); err != nil {
			return err
		}
		out = append(out, in)
		return nil
	}, optionalLimit(limit))
	return out, err
}

// UpdateInquiryStatus records who handled the inquiry and when.
func (s *Store) UpdateInquiryStatus(ctx context.Context, id string, status models.RequestStatus, notes, handledBy string) (*models.Inquiry, error) {
	if !status.Valid() {
		return nil, errors.NewInvalidStatusError(string(status))
	}

	patch := map[string]interface{}{
		"status":    status,
		"handledBy": handledBy,
		"handledAt": s.now(),
	}
	if notes != "" {
		patch["adminNotes"] = notes
	}

	doc, err := s.patchDoc(ctx, tableInquiries, id, patch)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewRequestNotFoundError("inquiry", id)
		}
		return nil, errors.NewDocumentStoreUnavailableError(err)
	}

	var in models.Inquiry
	if err := json.Unmarshal(doc, &in); err != nil {
		return nil, errors.NewDocumentStoreUnavailableError(err)
	}
	return &in, nil
}

// CreateConsultation stores a new pending consultation booking.
func (s *Store) CreateConsultation(ctx context.Context, c *models.Consultation) (*models.Consultation, error) {
	now := s.now()
	created := *c
	created.ID = s.newID()
	created.Status = models.RequestPending
	created.CreatedAt = now
	created.UpdatedAt = now

	if err := s.insertDoc(ctx, tableConsultations, created.ID, created, now); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListConsultations returns bookings by preferred date, earliest first.
func (s *Store) ListConsultations(ctx context.Context, limit int) ([]models.Consultation, error) {
	const query = `SELECT doc FROM consultations ORDER BY doc->>'preferredDate' ASC LIMIT $1`

	out := []models.Consultation{}
	err := s.queryDocs(ctx, query, func(doc []byte) error {
		var c models.Consultation
		if err := json.Unmarshal(doc, &c); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	}, optionalLimit(limit))
	return out, err
}

// UpdateConsultationStatus stamps confirmedAt when the booking completes.
func (s *Store) UpdateConsultationStatus(ctx context.Context, id string, status models.RequestStatus, notes, handledBy string) (*models.Consultation, error) {
	if !status.Valid() {
		return nil, errors.NewInvalidStatusError(string(status))
	}

	patch := map[string]interface{}{
		"status":    status,
		"handledBy": handledBy,
	}
	if notes != "" {
		patch["adminNotes"] = notes
	}
	if status == models.RequestCompleted {
		patch["confirmedAt"] = s.now()
	}

	doc, err := s.patchDoc(ctx, tableConsultations, id, patch)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewRequestNotFoundError("consultation", id)
		}
		return nil, errors.NewDocumentStoreUnavailableError(err)
	}

	var c models.Consultation
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, errors.NewDocumentStoreUnavailableError(err)
	}
	return &c, nil
}

// LIMIT NULL means no limit in Postgres.
func optionalLimit(limit int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(limit), Valid: limit > 0}
}
