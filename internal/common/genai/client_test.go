package genai

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	googlegenai "google.golang.org/genai"

	"realty-workers/internal/common/config"
	"realty-workers/internal/common/errors"
)

type fakeModels struct {
	reply  string
	err    error
	delay  time.Duration
	model  string
	system string
	prompt string
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*googlegenai.Content, cfg *googlegenai.GenerateContentConfig) (*googlegenai.GenerateContentResponse, error) {
	f.model = model
	if cfg != nil && cfg.SystemInstruction != nil {
		f.system = cfg.SystemInstruction.Parts[0].Text
	}
	f.prompt = contents[0].Parts[0].Text

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &googlegenai.GenerateContentResponse{
		Candidates: []*googlegenai.Candidate{{
			Content: &googlegenai.Content{Parts: []*googlegenai.Part{{Text: f.reply}}},
		}},
	}, nil
}

func TestGenerate_Success(t *testing.T) {
	models := &fakeModels{reply: "  역세권 아파트로 교통이 편리합니다.  "}
	client := NewClientWithAPI(models, "", time.Second)

	out, err := client.Generate(context.Background(), "부동산 상담사", "매물 설명")
	require.NoError(t, err)
	assert.Equal(t, "역세권 아파트로 교통이 편리합니다.", out)
	assert.Equal(t, DefaultModel, models.model)
	assert.Equal(t, "부동산 상담사", models.system)
	assert.Equal(t, "매물 설명", models.prompt)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		models   *fakeModels
		timeout  time.Duration
		expected errors.ErrorCode
	}{
		{
			name:     "api failure",
			models:   &fakeModels{err: fmt.Errorf("quota exceeded")},
			expected: errors.ErrCodeAIGenerationFailed,
		},
		{
			name:     "empty reply",
			models:   &fakeModels{reply: "   "},
			expected: errors.ErrCodeAIGenerationFailed,
		},
		{
			name:     "timeout",
			models:   &fakeModels{reply: "늦은 답변", delay: time.Second},
			timeout:  20 * time.Millisecond,
			expected: errors.ErrCodeAITimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClientWithAPI(tt.models, "gemini-test", tt.timeout)
			_, err := client.Generate(context.Background(), "", "질문")
			require.Error(t, err)
			assert.Equal(t, tt.expected, errors.CodeOf(err))
		})
	}
}

func TestNewClient_NotConfigured(t *testing.T) {
	_, err := NewClient(context.Background(), config.GenAIConfig{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAINotConfigured, errors.CodeOf(err))
}
