// internal/workers/ai-conversation/generate-description/handler.go
package generatedescription

import (
	"context"
	"strconv"
	"strings"

	"realty-workers/internal/common/camunda"
	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/genai"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/common/observability"
	"realty-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "generate-description"

const unknown = "미정"

type Handler struct {
	config    *Config
	generator genai.Generator
	logger    logger.Logger
	runner    *camunda.Runner
}

func NewHandler(config *Config, generator genai.Generator, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		generator: generator,
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

	description, err := h.generator.Generate(ctx, "", BuildPrompt(input))
	if err != nil {
		return nil, err
	}

	h.logger.Info("description generated", map[string]interface{}{
		"propertyType": input.PropertyType,
		"length":       len([]rune(description)),
	})
	return &Output{Description: description}, nil
}

// BuildPrompt renders the listing attributes into the description request.
// Missing or zero values read as 미정.
func BuildPrompt(input *Input) string {
	features := "없음"
	if len(input.Features) > 0 {
		features = strings.Join(input.Features, ", ")
	}

	var b strings.Builder
	b.WriteString("당신은 부동산 전문가입니다. 다음 매물 정보를 바탕으로 고객에게 매력적으로 어필할 수 있는 매물 설명을 한국어로 작성해주세요.\n\n")
	b.WriteString("매물 정보:\n")
	b.WriteString("- 매물 유형: " + propertyTypeText(input.PropertyType) + "\n")
	b.WriteString("- 거래 유형: " + transactionTypeText(input.TransactionType) + "\n")
	b.WriteString("- 면적: " + floatText(input.Area) + "㎡\n")
	b.WriteString("- 방 개수: " + intText(input.Rooms) + "개\n")
	b.WriteString("- 욕실 개수: " + intText(input.Bathrooms) + "개\n")
	b.WriteString("- 층수: " + intText(input.Floor) + "층\n")
	b.WriteString("- 위치: " + strings.Join(strings.Fields(input.City+" "+input.District+" "+input.Address), " ") + "\n")
	b.WriteString("- 특징: " + features + "\n\n")
	b.WriteString("요구사항:\n")
	b.WriteString("1. 3-5문장으로 작성해주세요\n")
	b.WriteString("2. 매물의 장점을 부각해주세요\n")
	b.WriteString("3. 전문적이면서도 친근한 톤으로 작성해주세요\n")
	b.WriteString("4. 과장된 표현은 피해주세요")
	return b.String()
}

func propertyTypeText(s string) string {
	if label, ok := models.PropertyTypeLabels[models.PropertyType(s)]; ok {
		return label
	}
	return orUnknown(s)
}

func transactionTypeText(s string) string {
	if label, ok := models.TransactionTypeLabels[models.TransactionType(s)]; ok {
		return label
	}
	return orUnknown(s)
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return unknown
	}
	return s
}

func intText(v *int) string {
	if v == nil || *v == 0 {
		return unknown
	}
	return strconv.Itoa(*v)
}

func floatText(v *float64) string {
	if v == nil || *v == 0 {
		return unknown
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
