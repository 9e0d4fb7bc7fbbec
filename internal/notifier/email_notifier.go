package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/Keoroanthony/go-ordertrack/configs"
	"github.com/Keoroanthony/go-ordertrack/internal/metrics"
)

// SESAPI is the subset of the SES client used for receipts.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Receipt describes an order for the owning user's confirmation email.
type Receipt struct {
	OwnerName    string
	OrderID      uint
	OrderName    string
	CustomerName string
	Price        float64
}

// EmailNotifier emails order receipts to account owners through SES. Without
// a configured sender address it is disabled and every send is skipped.
type EmailNotifier struct {
	api    SESAPI
	sender string
	log    *slog.Logger
}

func NewEmailNotifier(ctx context.Context, cfg config.EmailConfig, log *slog.Logger) (*EmailNotifier, error) {
	if cfg.SenderEmail == "" {
		return NewEmailNotifierWithAPI(nil, "", log), nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("notifier: load AWS config: %w", err)
	}

	return NewEmailNotifierWithAPI(ses.NewFromConfig(awsCfg), cfg.SenderEmail, log), nil
}

// NewEmailNotifierWithAPI builds a notifier around an existing SES client. A
// nil api or empty sender yields a disabled notifier.
func NewEmailNotifierWithAPI(api SESAPI, sender string, log *slog.Logger) *EmailNotifier {
	if log == nil {
		log = slog.Default()
	}
	if sender == "" {
		api = nil
	}
	return &EmailNotifier{api: api, sender: sender, log: log.With("component", "email")}
}

func (n *EmailNotifier) Mode() Mode {
	if n.api == nil {
		return ModeDisabled
	}
	return ModeLive
}

// SendOrderReceipt emails r to the address to.
func (n *EmailNotifier) SendOrderReceipt(ctx context.Context, to string, r Receipt) Result {
	if n.api == nil {
		return Result{Mode: ModeDisabled, Reason: "email disabled"}
	}
	if to == "" {
		return n.done(Result{Mode: ModeLive, Reason: "recipient email address is empty"})
	}

	subject := fmt.Sprintf("Order #%d Confirmation - %s", r.OrderID, r.OrderName)
	price := strconv.FormatFloat(r.Price, 'f', 2, 64)

	bodyHTML := fmt.Sprintf(`
        <html>
        <body>
            <p>Dear %s,</p>
            <p>Order #%d has been recorded for your customer %s.</p>
            <ul>
                <li>Order: %s</li>
                <li>Price: KES %s</li>
            </ul>
        </body>
        </html>`, r.OwnerName, r.OrderID, r.CustomerName, r.OrderName, price)

	bodyText := fmt.Sprintf(
		"Dear %s,\n\nOrder #%d has been recorded for your customer %s.\n\nOrder: %s\nPrice: KES %s\n",
		r.OwnerName, r.OrderID, r.CustomerName, r.OrderName, price)

	input := &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(bodyHTML)},
				Text: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(bodyText)},
			},
		},
	}

	if _, err := n.api.SendEmail(context.WithoutCancel(ctx), input); err != nil {
		n.log.ErrorContext(ctx, "order receipt failed", "order_id", r.OrderID, "to", to, "error", err)
		return n.done(Result{Mode: ModeLive, Reason: err.Error()})
	}

	n.log.InfoContext(ctx, "order receipt sent", "order_id", r.OrderID, "to", to)
	return n.done(Result{Delivered: true, Mode: ModeLive})
}

func (n *EmailNotifier) done(res Result) Result {
	metrics.RecordNotification("email", string(res.Mode), res.Delivered)
	return res
}
