// internal/workers/ai-conversation/ai-chat/handler.go
package aichat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"realty-workers/internal/common/camunda"
	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/genai"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/common/observability"
	"realty-workers/internal/listing"
	"realty-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "ai-chat"

const systemPrompt = `당신은 부동산 중개 전문 AI 상담사입니다.
고객의 부동산 관련 질문에 친절하고 전문적으로 답변해주세요.

역할:
- 매물 문의 및 상담 안내
- 부동산 용어 설명
- 지역 정보 제공
- 계약 절차 안내

주의사항:
- 항상 정중하고 친절하게 응대하세요
- 확실하지 않은 정보는 "정확한 확인이 필요합니다"라고 말해주세요
- 구체적인 법률 조언은 피하고, 전문가 상담을 권유하세요
- 답변은 간결하고 명확하게 해주세요 (3-5문장)`

// ListingSource looks up listings for chat context without counting a view.
type ListingSource interface {
	ListListings(ctx context.Context) ([]models.Listing, error)
}

type Handler struct {
	config    *Config
	generator genai.Generator
	listings  ListingSource
	logger    logger.Logger
	runner    *camunda.Runner
}

// NewHandler builds the handler. A nil generator makes every job fail with
// AI_NOT_CONFIGURED; listings may be nil.
func NewHandler(config *Config, generator genai.Generator, listings ListingSource, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		generator: generator,
		listings:  listings,
		logger:    log,
		runner:    camunda.NewRunner(TaskType, config.Timeout, log, obs),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	var input Input
	h.runner.Run(client, job, &input, func(ctx context.Context) (interface{}, error) {
		return h.Execute(ctx, &input)
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.generator == nil {
		return nil, errors.NewAINotConfiguredError()
	}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, errors.NewInvalidPromptError("message is required")
	}
	if n := utf8.RuneCountInString(message); h.config.MaxMessageLength > 0 && n > h.config.MaxMessageLength {
		return nil, errors.NewInvalidPromptError(fmt.Sprintf("message too long (%d > %d)", n, h.config.MaxMessageLength))
	}

	listingContext := strings.TrimSpace(input.Context)
	if listingContext == "" && input.ListingID != "" {
		listingContext = h.lookupContext(ctx, input.ListingID)
	}

	prompt := systemPrompt
	if listingContext != "" {
		prompt += "\n\n현재 보고 있는 매물 정보:\n" + listingContext
	}

	reply, err := h.generator.Generate(ctx, prompt, "고객 질문: "+message)
	if err != nil {
		return nil, err
	}

	h.logger.Info("chat answered", map[string]interface{}{
		"withContext": listingContext != "",
		"replyLength": utf8.RuneCountInString(reply),
	})
	return &Output{Reply: reply, WithContext: listingContext != ""}, nil
}

// lookupContext finds the listing in the snapshot. Any failure just drops the
// context; the question is still answered.
func (h *Handler) lookupContext(ctx context.Context, id string) string {
	if h.listings == nil {
		return ""
	}
	snapshot, err := h.listings.ListListings(ctx)
	if err != nil {
		h.logger.Warn("listing context unavailable", map[string]interface{}{
			"listingId": id,
			"error":     err.Error(),
		})
		return ""
	}
	for _, l := range snapshot {
		if l.ID == id {
			return DescribeListing(l)
		}
	}
	return ""
}

// DescribeListing renders the listing fields a customer sees on the detail
// page as plain text lines.
func DescribeListing(l models.Listing) string {
	lines := []string{
		"제목: " + l.Title,
		fmt.Sprintf("유형: %s / %s", models.PropertyTypeLabels[l.PropertyType], models.TransactionTypeLabels[l.TransactionType]),
		"가격: " + listing.FormatDisplayPrice(l),
		"면적: " + listing.FormatArea(l.AreaSquareMeters),
	}
	if l.Rooms != nil {
		lines = append(lines, fmt.Sprintf("방: %d개", *l.Rooms))
	}
	if l.Floor != nil {
		lines = append(lines, fmt.Sprintf("층: %d층", *l.Floor))
	}
	location := strings.Join(strings.Fields(l.City+" "+l.District+" "+l.Address), " ")
	if location != "" {
		lines = append(lines, "위치: "+location)
	}
	if len(l.Features) > 0 {
		lines = append(lines, "특징: "+strings.Join(l.Features, ", "))
	}
	lines = append(lines, "상태: "+models.ListingStatusLabels[l.Status])
	return strings.Join(lines, "\n")
}
