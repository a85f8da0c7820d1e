// internal/workers/ai-conversation/ai-chat/handler_test.go
package aichat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeGenerator struct {
	systemPrompt string
	prompt       string
	reply        string
	err          error
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	f.systemPrompt = systemPrompt
	f.prompt = prompt
	return f.reply, f.err
}

type fakeListings struct {
	listings []models.Listing
	err      error
}

func (f *fakeListings) ListListings(ctx context.Context) ([]models.Listing, error) {
	return f.listings, f.err
}

func price(v int64) *int64 { return &v }

func sampleListing() models.Listing {
	rooms := 3
	area := 84.0
	return models.Listing{
		ID:               "l-1",
		Title:            "역삼 래미안",
		PropertyType:     models.PropertyTypeApartment,
		TransactionType:  models.TransactionJeonse,
		Status:           models.ListingAvailable,
		Price:            price(500_000_000),
		AreaSquareMeters: &area,
		Rooms:            &rooms,
		City:             "서울",
		District:         "강남구",
		Features:         []string{"역세권", "남향"},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name            string
		input           *Input
		listings        *fakeListings
		expectedContext bool
		contextContains string
	}{
		{
			name:            "question only",
			input:           &Input{Message: "전세 계약 절차가 궁금합니다"},
			expectedContext: false,
		},
		{
			name:            "caller context",
			input:           &Input{Message: "관리비는 얼마인가요?", Context: "강남 아파트 84㎡"},
			expectedContext: true,
			contextContains: "강남 아파트 84㎡",
		},
		{
			name:            "context from listing snapshot",
			input:           &Input{Message: "주차 가능한가요?", ListingID: "l-1"},
			listings:        &fakeListings{listings: []models.Listing{sampleListing()}},
			expectedContext: true,
			contextContains: "가격: 5억원",
		},
		{
			name:            "unknown listing drops context",
			input:           &Input{Message: "주차 가능한가요?", ListingID: "missing"},
			listings:        &fakeListings{listings: []models.Listing{sampleListing()}},
			expectedContext: false,
		},
		{
			name:            "snapshot failure drops context",
			input:           &Input{Message: "주차 가능한가요?", ListingID: "l-1"},
			listings:        &fakeListings{err: fmt.Errorf("store down")},
			expectedContext: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: "네, 안내해 드리겠습니다."}
			var src ListingSource
			if tt.listings != nil {
				src = tt.listings
			}
			h := NewHandler(LoadConfig(), gen, src, logger.NewTestLogger(t), nil)

			out, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, "네, 안내해 드리겠습니다.", out.Reply)
			assert.Equal(t, tt.expectedContext, out.WithContext)

			assert.True(t, strings.HasPrefix(gen.systemPrompt, "당신은 부동산 중개 전문 AI 상담사입니다."))
			assert.Equal(t, "고객 질문: "+tt.input.Message, gen.prompt)
			if tt.expectedContext {
				assert.Contains(t, gen.systemPrompt, "현재 보고 있는 매물 정보:\n")
				assert.Contains(t, gen.systemPrompt, tt.contextContains)
			} else {
				assert.NotContains(t, gen.systemPrompt, "현재 보고 있는 매물 정보")
			}
		})
	}
}

func TestDescribeListing(t *testing.T) {
	text := DescribeListing(sampleListing())
	assert.Equal(t, strings.Join([]string{
		"제목: 역삼 래미안",
		"유형: 아파트 / 전세",
		"가격: 5억원",
		"면적: 84m² (25.4평)",
		"방: 3개",
		"위치: 서울 강남구",
		"특징: 역세권, 남향",
		"상태: 판매중",
	}, "\n"), text)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	h := NewHandler(LoadConfig(), nil, nil, logger.NewTestLogger(t), nil)
	_, err := h.Execute(context.Background(), &Input{Message: "안녕하세요"})
	assert.Equal(t, errors.ErrCodeAINotConfigured, errors.CodeOf(err))

	h = NewHandler(LoadConfig(), &fakeGenerator{reply: "x"}, nil, logger.NewTestLogger(t), nil)
	_, err = h.Execute(context.Background(), &Input{Message: "   "})
	assert.Equal(t, errors.ErrCodeInvalidPrompt, errors.CodeOf(err))

	_, err = h.Execute(context.Background(), &Input{Message: strings.Repeat("가", 1001)})
	assert.Equal(t, errors.ErrCodeInvalidPrompt, errors.CodeOf(err))

	h = NewHandler(LoadConfig(), &fakeGenerator{err: errors.NewAIGenerationFailedError(fmt.Errorf("quota"))}, nil, logger.NewTestLogger(t), nil)
	_, err = h.Execute(context.Background(), &Input{Message: "안녕하세요"})
	assert.Equal(t, errors.ErrCodeAIGenerationFailed, errors.CodeOf(err))
}
