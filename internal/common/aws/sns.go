// internal/common/aws/sns.go
package aws

import (
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSAPI is the slice of the SNS client used here.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client SNSAPI
}

func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSClient{client: sns.NewFromConfig(cfg)}, nil
}

func NewSNSClientWithAPI(api SNSAPI) *SNSClient {
	return &SNSClient{client: api}
}

// SendSMS publishes a transactional text message to a Korean phone number.
func (s *SNSClient) SendSMS(ctx context.Context, phone, senderID, message string) (string, error) {
	number, err := ToE164(phone)
	if err != nil {
		return "", err
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: awssdk.String("String"), StringValue: awssdk.String("Transactional")},
	}
	if senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType: awssdk.String("String"), StringValue: awssdk.String(senderID),
		}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       awssdk.String(number),
		Message:           awssdk.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", fmt.Errorf("sns publish to %s: %w", number, err)
	}
	return awssdk.ToString(out.MessageId), nil
}

// ToE164 converts a domestic number such as 010-1234-5678 to +821012345678.
// Numbers already starting with + are returned with separators removed.
func ToE164(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(strings.TrimSpace(phone), "+") && len(digits) >= 8:
		return "+" + digits, nil
	case strings.HasPrefix(digits, "0") && len(digits) >= 9 && len(digits) <= 11:
		return "+82" + digits[1:], nil
	default:
		return "", fmt.Errorf("unsupported phone number %q", phone)
	}
}
