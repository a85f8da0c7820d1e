// internal/workers/notifications/notify-admin/handler.go
package notifyadmin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"realty-workers/internal/common/camunda"
	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/common/metrics"
	"realty-workers/internal/common/observability"
	"realty-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "notify-admin"

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendText(ctx context.Context, from, to, subject, body string) (string, error)
}

// SMSSender is satisfied by aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, senderID, message string) (string, error)
}

type Handler struct {
	config *Config
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
	runner *camunda.Runner
	now    func() time.Time
}

// NewHandler builds the handler. email and sms may be nil; the matching
// channel is then treated as disabled.
func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		email:  email,
		sms:    sms,
		logger: log,
		runner: camunda.NewRunner(TaskType, config.Timeout, log, obs),
		now:    time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	var input Input
	h.runner.Run(client, job, &input, func(ctx context.Context) (interface{}, error) {
		return h.Execute(ctx, &input)
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	tmpl, ok := templates[input.Kind]
	if !ok {
		err := errors.NewNotificationSendFailedError("template", fmt.Errorf("no template for kind %q", input.Kind))
		err.Retryable = false
		return nil, err
	}

	data := templateData(input)
	subject := renderTemplate(tmpl.subject, data)
	body := renderTemplate(tmpl.body, data)

	out := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}

	if h.emailEnabled() {
		if _, err := h.email.SendText(ctx, h.config.FromEmail, h.config.AdminEmail, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":     err.Error(),
				"requestId": input.RequestID,
			})
			metrics.NotificationsSent.WithLabelValues(ChannelEmail, StatusFailed).Inc()
			out.Status = StatusFailed
			return out, nil
		}
		metrics.NotificationsSent.WithLabelValues(ChannelEmail, StatusSent).Inc()
		out.EmailSent = true
	}

	// SMS only for consultations; a booked visit needs a faster response.
	if input.Kind == KindConsultation && h.smsEnabled() {
		if _, err := h.sms.SendSMS(ctx, h.config.AdminPhone, h.config.SenderID, renderTemplate(tmpl.sms, data)); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":     err.Error(),
				"requestId": input.RequestID,
			})
			metrics.NotificationsSent.WithLabelValues(ChannelSMS, StatusFailed).Inc()
			out.Status = StatusFailed
			return out, nil
		}
		metrics.NotificationsSent.WithLabelValues(ChannelSMS, StatusSent).Inc()
		out.SMSSent = true
	}

	if out.EmailSent || out.SMSSent {
		out.Status = StatusSent
	}

	h.logger.Info("admin notified", map[string]interface{}{
		"kind":   input.Kind,
		"status": out.Status,
		"email":  out.EmailSent,
		"sms":    out.SMSSent,
	})
	return out, nil
}

func (h *Handler) emailEnabled() bool {
	return h.config.EmailEnabled && h.email != nil && h.config.AdminEmail != ""
}

func (h *Handler) smsEnabled() bool {
	return h.config.SMSEnabled && h.sms != nil && h.config.AdminPhone != ""
}

type template struct {
	subject string
	body    string
	sms     string
}

var templates = map[string]template{
	KindInquiry: {
		subject: "[새 문의] {{name}}님의 문의가 접수되었습니다",
		body: "새 문의가 접수되었습니다.\n\n" +
			"이름: {{name}}\n연락처: {{phone}}\n이메일: {{email}}\n매물: {{listingId}}\n\n{{message}}\n",
	},
	KindConsultation: {
		subject: "[상담 예약] {{name}}님 {{preferredDate}} {{preferredTime}}",
		body: "새 상담 예약이 접수되었습니다.\n\n" +
			"이름: {{name}}\n연락처: {{phone}}\n이메일: {{email}}\n" +
			"희망 일시: {{preferredDate}} {{preferredTime}}\n상담 방식: {{consultationType}}\n\n{{message}}\n",
		sms: "[상담 예약] {{name}} {{phone}} {{preferredDate}} {{preferredTime}} {{consultationType}}",
	},
}

func templateData(input *Input) map[string]interface{} {
	consultationType := input.ConsultationType
	if label, ok := models.ConsultationTypeLabels[models.ConsultationType(consultationType)]; ok {
		consultationType = label
	}
	return map[string]interface{}{
		"name":             input.Name,
		"phone":            input.Phone,
		"email":            input.Email,
		"message":          input.Message,
		"listingId":        input.ListingID,
		"preferredDate":    input.PreferredDate,
		"preferredTime":    input.PreferredTime,
		"consultationType": consultationType,
	}
}

// renderTemplate replaces {{key}} placeholders; unknown placeholders and
// empty values render as "-".
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := "-"
		if s := strings.TrimSpace(fmt.Sprint(v)); v != nil && s != "" {
			value = s
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + "-" + result[end:]
	}
	return result
}
