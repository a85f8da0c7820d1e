package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redismock/v9"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/common/metrics"
	"realty-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, cache redis.Cmdable, search *elasticsearch.Client) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(db, cache, search, Options{SnapshotLimit: 100, CacheTTL: time.Minute}, logger.NewTestLogger(t))
	s.now = func() time.Time { return fixedNow }
	var n int
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s, mock
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func listingDoc(t *testing.T, id, title string, status models.ListingStatus) []byte {
	t.Helper()
	price := int64(50000)
	created := fixedNow.Add(-time.Hour)
	doc, err := json.Marshal(models.Listing{
		ID: id, Title: title, Status: status,
		PropertyType: models.PropertyTypeApartment, TransactionType: models.TransactionSale,
		Price: &price, City: "서울", District: "강남구", CreatedAt: &created,
	})
	require.NoError(t, err)
	return doc
}

func imageDoc(t *testing.T, id, listingID string, order int) []byte {
	t.Helper()
	doc, err := json.Marshal(models.ListingImage{
		ID: id, ListingID: listingID, URL: "https://cdn.example.com/" + id + ".jpg", OrderIndex: order,
	})
	require.NoError(t, err)
	return doc
}

func q(s string) string { return regexp.QuoteMeta(s) }

// ==========================
// Listing Snapshot Tests
// ==========================

func TestListListings_CachesSnapshot(t *testing.T) {
	mr, client := newMiniredis(t)
	s, mock := newTestStore(t, client, nil)

	mock.ExpectQuery(q("SELECT doc FROM listings ORDER BY created_at DESC LIMIT")).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow(listingDoc(t, "l-1", "역삼 래미안", models.ListingAvailable)).
			AddRow(listingDoc(t, "l-2", "대치 은마", models.ListingReserved)))
	mock.ExpectQuery(q("SELECT doc FROM listing_images WHERE listing_id = ANY(")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow(imageDoc(t, "img-1", "l-1", 0)).
			AddRow(imageDoc(t, "img-2", "l-1", 1)))

	hitsBefore := testutil.ToFloat64(metrics.SnapshotCacheRequests.WithLabelValues("hit"))

	first, err := s.ListListings(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Len(t, first[0].Images, 2)
	assert.Empty(t, first[1].Images)
	assert.True(t, mr.Exists(snapshotKey))
	assert.Equal(t, time.Minute, mr.TTL(snapshotKey))

	// served from cache, no further queries expected
	second, err := s.ListListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(metrics.SnapshotCacheRequests.WithLabelValues("hit")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListListings_CacheErrorFallsBackToDatabase(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	s, mock := newTestStore(t, client, nil)

	redisMock.ExpectGet(snapshotKey).SetErr(fmt.Errorf("connection refused"))
	redisMock.ExpectSet(snapshotKey, []byte("[]"), time.Minute).SetErr(fmt.Errorf("connection refused"))
	mock.ExpectQuery(q("SELECT doc FROM listings")).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	errorsBefore := testutil.ToFloat64(metrics.SnapshotCacheRequests.WithLabelValues("error"))

	listings, err := s.ListListings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Equal(t, errorsBefore+1, testutil.ToFloat64(metrics.SnapshotCacheRequests.WithLabelValues("error")))
	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListListings_DatabaseUnavailable(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)
	mock.ExpectQuery(q("SELECT doc FROM listings")).WillReturnError(fmt.Errorf("connection reset"))

	_, err := s.ListListings(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDocumentStoreUnavailable, errors.CodeOf(err))
}

func TestListListings_SkipsUndecodableDocuments(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)

	mock.ExpectQuery(q("SELECT doc FROM listings")).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow(listingDoc(t, "l-1", "역삼 래미안", models.ListingAvailable)).
			AddRow([]byte(`{"id":"l-bad","rooms":2.5,"price":"5억"}`)).
			AddRow(listingDoc(t, "l-3", "대치 은마", models.ListingAvailable)))
	mock.ExpectQuery(q("SELECT doc FROM listing_images")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"listingId":"l-1","orderIndex":"first"}`)).
			AddRow(imageDoc(t, "img-1", "l-3", 0)))

	listings, err := s.ListListings(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "l-1", listings[0].ID)
	assert.Empty(t, listings[0].Images)
	assert.Equal(t, "l-3", listings[1].ID)
	assert.Len(t, listings[1].Images, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Listing CRUD Tests
// ==========================

func TestGetListing(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)

	mock.ExpectQuery(q("UPDATE listings SET doc = jsonb_set(doc, '{viewCount}'")).
		WithArgs("l-1").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(listingDoc(t, "l-1", "역삼 래미안", models.ListingAvailable)))
	mock.ExpectQuery(q("SELECT doc FROM listing_images")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(imageDoc(t, "img-1", "l-1", 0)))

	l, err := s.GetListing(context.Background(), "l-1")
	require.NoError(t, err)
	assert.Equal(t, "역삼 래미안", l.Title)
	require.Len(t, l.Images, 1)
	assert.Equal(t, "img-1", l.Images[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetListing_NotFound(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)
	mock.ExpectQuery(q("UPDATE listings")).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := s.GetListing(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeListingNotFound, errors.CodeOf(err))
}

func TestCreateListing_DefaultsAndInvalidatesCache(t *testing.T) {
	mr, client := newMiniredis(t)
	require.NoError(t, mr.Set(snapshotKey, "[]"))
	s, mock := newTestStore(t, client, nil)

	mock.ExpectExec(q("INSERT INTO listings (id, doc, created_at, updated_at)")).
		WithArgs("id-1", sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := s.CreateListing(context.Background(), &models.Listing{
		ID:        "ignored",
		Title:     "성수 오피스텔",
		ViewCount: 42,
		Images:    []models.ListingImage{{URL: "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", created.ID)
	assert.Equal(t, models.ListingAvailable, created.Status)
	assert.Zero(t, created.ViewCount)
	assert.Nil(t, created.Images)
	assert.Equal(t, fixedNow, *created.CreatedAt)
	assert.False(t, mr.Exists(snapshotKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateListing_InsertFailure(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)
	mock.ExpectExec(q("INSERT INTO listings")).WillReturnError(fmt.Errorf("disk full"))

	_, err := s.CreateListing(context.Background(), &models.Listing{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatabaseInsertFailed, errors.CodeOf(err))
}

func TestUpdateListing_StripsProtectedKeys(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)

	mock.ExpectQuery(q("UPDATE listings SET doc = doc || $2::jsonb, updated_at = $3 WHERE id = $1 RETURNING doc")).
		WithArgs("l-1", sqlmock.AnyArg(), fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(listingDoc(t, "l-1", "새 제목", models.ListingAvailable)))

	patch := map[string]interface{}{"title": "새 제목", "viewCount": 999, "id": "other"}
	l, err := s.UpdateListing(context.Background(), "l-1", patch)
	require.NoError(t, err)
	assert.Equal(t, "새 제목", l.Title)
	assert.Equal(t, "l-1", l.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateListing_RejectsMistypedPatch(t *testing.T) {
	tests := []struct {
		name  string
		patch map[string]interface{}
	}{
		{name: "fractional rooms", patch: map[string]interface{}{"rooms": 2.5}},
		{name: "price as text", patch: map[string]interface{}{"price": "5억"}},
		{name: "area as text", patch: map[string]interface{}{"areaSquareMeters": "84"}},
		{name: "unknown key", patch: map[string]interface{}{"parking": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStore(t, nil, nil)

			_, err := s.UpdateListing(context.Background(), "l-1", tt.patch)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidListing, errors.CodeOf(err))
			assert.NoError(t, mock.ExpectationsWereMet(), "nothing may be written")
		})
	}
}

func TestUpdateListingStatus(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)

	_, err := s.UpdateListingStatus(context.Background(), "l-1", "sold")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidStatus, errors.CodeOf(err))

	mock.ExpectQuery(q("UPDATE listings SET doc = doc ||")).
		WithArgs("missing", sqlmock.AnyArg(), fixedNow).
		WillReturnError(sql.ErrNoRows)
	_, err = s.UpdateListingStatus(context.Background(), "missing", models.ListingReserved)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeListingNotFound, errors.CodeOf(err))
}

func TestDeleteListing(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)

	mock.ExpectExec(q("DELETE FROM listings WHERE id = $1")).WithArgs("l-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.DeleteListing(context.Background(), "l-1"))

	mock.ExpectExec(q("DELETE FROM listings")).WithArgs("l-2").WillReturnResult(sqlmock.NewResult(0, 0))
	err := s.DeleteListing(context.Background(), "l-2")
	assert.Equal(t, errors.ErrCodeListingNotFound, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddListingImage(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)

	mock.ExpectExec(q("INSERT INTO listing_images")).
		WithArgs("id-1", "l-1", sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	img, err := s.AddListingImage(context.Background(), "l-1", &models.ListingImage{URL: "https://cdn/x.jpg", IsPrimary: true})
	require.NoError(t, err)
	assert.Equal(t, "l-1", img.ListingID)
	assert.True(t, img.IsPrimary)

	mock.ExpectExec(q("INSERT INTO listing_images")).WillReturnError(&pq.Error{Code: "23503"})
	_, err = s.AddListingImage(context.Background(), "gone", &models.ListingImage{URL: "x"})
	assert.Equal(t, errors.ErrCodeListingNotFound, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Inquiry and Consultation Tests
// ==========================

func TestCreateInquiry(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)
	mock.ExpectExec(q("INSERT INTO inquiries")).
		WithArgs("id-1", sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	in, err := s.CreateInquiry(context.Background(), &models.Inquiry{
		Name: "홍길동", Phone: "010-1234-5678", Message: "매물 문의드립니다.", Status: models.RequestCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, in.Status)
	assert.Equal(t, fixedNow, in.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListInquiries(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)

	doc, _ := json.Marshal(models.Inquiry{ID: "i-1", Name: "홍길동", Status: models.RequestPending})
	mock.ExpectQuery(q("SELECT doc FROM inquiries ORDER BY created_at DESC LIMIT $1")).
		WithArgs(nil).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(doc))
	mock.ExpectQuery(q("SELECT doc FROM inquiries")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	all, err := s.ListInquiries(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "i-1", all[0].ID)

	recent, err := s.ListInquiries(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateInquiryStatus(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)

	handled := fixedNow
	doc, _ := json.Marshal(models.Inquiry{ID: "i-1", Status: models.RequestInProgress, HandledBy: "agent-1", HandledAt: &handled})
	mock.ExpectQuery(q("UPDATE inquiries SET doc = doc ||")).
		WithArgs("i-1", sqlmock.AnyArg(), fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(doc))

	in, err := s.UpdateInquiryStatus(context.Background(), "i-1", models.RequestInProgress, "전화 완료", "agent-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestInProgress, in.Status)
	assert.Equal(t, "agent-1", in.HandledBy)

	mock.ExpectQuery(q("UPDATE inquiries")).WillReturnError(sql.ErrNoRows)
	_, err = s.UpdateInquiryStatus(context.Background(), "nope", models.RequestCompleted, "", "agent-1")
	assert.Equal(t, errors.ErrCodeRequestNotFound, errors.CodeOf(err))

	_, err = s.UpdateInquiryStatus(context.Background(), "i-1", "archived", "", "agent-1")
	assert.Equal(t, errors.ErrCodeInvalidStatus, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultations(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)

	mock.ExpectExec(q("INSERT INTO consultations")).
		WithArgs("id-1", sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	c, err := s.CreateConsultation(context.Background(), &models.Consultation{
		Name: "김철수", Phone: "010-9876-5432", PreferredDate: "2026-03-20", PreferredTime: "14:00",
		ConsultationType: models.ConsultationVisit,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, c.Status)

	early, _ := json.Marshal(models.Consultation{ID: "c-1", PreferredDate: "2026-03-18"})
	late, _ := json.Marshal(models.Consultation{ID: "c-2", PreferredDate: "2026-03-25"})
	mock.ExpectQuery(q("SELECT doc FROM consultations ORDER BY doc->>'preferredDate' ASC")).
		WithArgs(nil).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(early).AddRow(late))
	list, err := s.ListConsultations(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c-1", list[0].ID)

	confirmed := fixedNow
	done, _ := json.Marshal(models.Consultation{ID: "c-1", Status: models.RequestCompleted, ConfirmedAt: &confirmed})
	mock.ExpectQuery(q("UPDATE consultations SET doc = doc ||")).
		WithArgs("c-1", sqlmock.AnyArg(), fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(done))
	updated, err := s.UpdateConsultationStatus(context.Background(), "c-1", models.RequestCompleted, "", "admin-1")
	require.NoError(t, err)
	require.NotNil(t, updated.ConfirmedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Stats Tests
// ==========================

func TestGetStats(t *testing.T) {
	s, mock := newTestStore(t, nil, nil)
	mock.ExpectQuery(q("SELECT count(*) FROM listings")).
		WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c", "d"}).AddRow(12, 7, 3, 2))

	st, err := s.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalListings: 12, AvailableListings: 7, PendingInquiries: 3, PendingConsultations: 2}, *st)
}

// ==========================
// Search Index Tests
// ==========================

type fakeES struct {
	mu       sync.Mutex
	requests []string
	status   int
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	status := f.status
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"result":"ok"}`))
}

func newFakeES(t *testing.T, status int) (*fakeES, *elasticsearch.Client) {
	t.Helper()
	fake := &fakeES{status: status}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return fake, client
}

func TestIndexListing(t *testing.T) {
	fake, es := newFakeES(t, http.StatusCreated)
	s, _ := newTestStore(t, nil, es)

	err := s.IndexListing(context.Background(), &models.Listing{ID: "l-1", Title: "역삼 래미안"})
	require.NoError(t, err)
	require.Len(t, fake.requests, 1)
	assert.True(t, strings.HasPrefix(fake.requests[0], "PUT /listings/_doc/l-1"))
}

func TestIndexListing_Failure(t *testing.T) {
	_, es := newFakeES(t, http.StatusInternalServerError)
	s, _ := newTestStore(t, nil, es)

	err := s.IndexListing(context.Background(), &models.Listing{ID: "l-1"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSearchIndexFailed, errors.CodeOf(err))
}

func TestRemoveListing_MissingIsNotAnError(t *testing.T) {
	fake, es := newFakeES(t, http.StatusNotFound)
	s, _ := newTestStore(t, nil, es)

	require.NoError(t, s.RemoveListing(context.Background(), "l-1"))
	assert.Equal(t, []string{"DELETE /listings/_doc/l-1"}, fake.requests)
}

func TestSearchDisabled(t *testing.T) {
	s, _ := newTestStore(t, nil, nil)

	assert.False(t, s.SearchEnabled())
	assert.NoError(t, s.IndexListing(context.Background(), &models.Listing{ID: "l-1"}))
	assert.NoError(t, s.RemoveListing(context.Background(), "l-1"))
	n, err := s.ReindexAll(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, n)
}
