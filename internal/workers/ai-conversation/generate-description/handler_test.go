// internal/workers/ai-conversation/generate-description/handler_test.go
package generatedescription

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/logger"
)

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

func intp(v int) *int { return &v }

func TestBuildPrompt(t *testing.T) {
	area := 59.5
	tests := []struct {
		name     string
		input    *Input
		contains []string
	}{
		{
			name: "full listing",
			input: &Input{
				PropertyType:    "apartment",
				TransactionType: "monthly",
				Area:            &area,
				Rooms:           intp(3),
				Bathrooms:       intp(2),
				Floor:           intp(12),
				Features:        []string{"역세권", "남향"},
				City:            "서울",
				District:        "마포구",
				Address:         "월드컵로 1",
			},
			contains: []string{
				"- 매물 유형: 아파트\n",
				"- 거래 유형: 월세\n",
				"- 면적: 59.5㎡\n",
				"- 방 개수: 3개\n",
				"- 욕실 개수: 2개\n",
				"- 층수: 12층\n",
				"- 위치: 서울 마포구 월드컵로 1\n",
				"- 특징: 역세권, 남향\n",
			},
		},
		{
			name:  "missing values",
			input: &Input{Rooms: intp(0)},
			contains: []string{
				"- 매물 유형: 미정\n",
				"- 거래 유형: 미정\n",
				"- 면적: 미정㎡\n",
				"- 방 개수: 미정개\n",
				"- 특징: 없음\n",
			},
		},
		{
			name:     "unknown type is passed through",
			input:    &Input{PropertyType: "warehouse"},
			contains: []string{"- 매물 유형: warehouse\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := BuildPrompt(tt.input)
			assert.Contains(t, prompt, "당신은 부동산 전문가입니다.")
			assert.Contains(t, prompt, "4. 과장된 표현은 피해주세요")
			for _, want := range tt.contains {
				assert.Contains(t, prompt, want)
			}
		})
	}
}

func TestHandler_Execute(t *testing.T) {
	gen := &fakeGenerator{reply: "채광이 좋은 남향 아파트입니다."}
	h := NewHandler(LoadConfig(), gen, logger.NewTestLogger(t), nil)

	out, err := h.Execute(context.Background(), &Input{PropertyType: "villa"})
	require.NoError(t, err)
	assert.Equal(t, "채광이 좋은 남향 아파트입니다.", out.Description)
	assert.Empty(t, gen.systemPrompt)
	assert.Contains(t, gen.prompt, "- 매물 유형: 빌라/연립\n")
}

func TestHandler_Execute_Errors(t *testing.T) {
	h := NewHandler(LoadConfig(), nil, logger.NewTestLogger(t), nil)
	_, err := h.Execute(context.Background(), &Input{})
	assert.Equal(t, errors.ErrCodeAINotConfigured, errors.CodeOf(err))

	h = NewHandler(LoadConfig(), &fakeGenerator{err: errors.NewAITimeoutError(0)}, logger.NewTestLogger(t), nil)
	_, err = h.Execute(context.Background(), &Input{})
	assert.Equal(t, errors.ErrCodeAITimeout, errors.CodeOf(err))

	h = NewHandler(LoadConfig(), &fakeGenerator{err: fmt.Errorf("boom")}, logger.NewTestLogger(t), nil)
	_, err = h.Execute(context.Background(), &Input{})
	assert.Error(t, err)
}
