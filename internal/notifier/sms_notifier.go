package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Keoroanthony/go-ordertrack/configs"
	"github.com/Keoroanthony/go-ordertrack/internal/metrics"
)

// Mode is chosen once when a client is built.
type Mode string

const (
	ModeLive     Mode = "live"
	ModeDemo     Mode = "demo"
	ModeDisabled Mode = "disabled"
)

// Result is the outcome of a send. Senders never return errors; a failed
// delivery is Delivered=false with a Reason for the logs.
type Result struct {
	Delivered bool
	Mode      Mode
	Reason    string
}

type SMSResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Cost       string `json:"cost"`
			Status     string `json:"status"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

var placeholderMarkers = []string{"your_", "demo"}

// SMSClient sends order confirmations through the Africa's Talking gateway,
// or only logs them when the credentials are missing or placeholders.
type SMSClient struct {
	cfg    config.AfricaTalkingConfig
	mode   Mode
	client *http.Client
	log    *slog.Logger
}

func NewSMSClient(cfg config.AfricaTalkingConfig, log *slog.Logger) *SMSClient {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	mode := ModeDemo
	if ValidCredentials(cfg.Username, cfg.APIKey) {
		mode = ModeLive
	}

	return &SMSClient{
		cfg:    cfg,
		mode:   mode,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With("component", "sms"),
	}
}

func (c *SMSClient) Mode() Mode { return c.mode }

// ValidCredentials reports whether username and apiKey are both present and
// neither looks like a template placeholder.
func ValidCredentials(username, apiKey string) bool {
	if username == "" || apiKey == "" {
		return false
	}
	return !isPlaceholder(username) && !isPlaceholder(apiKey)
}

func isPlaceholder(value string) bool {
	lower := strings.ToLower(value)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// FormatPhoneNumber returns number in international form. Numbers already
// starting with "+" are returned unchanged; a leading trunk "0" is replaced by
// countryCode; anything else gets a "+" prefix.
func FormatPhoneNumber(number, countryCode string) string {
	switch {
	case strings.HasPrefix(number, "+"):
		return number
	case strings.HasPrefix(number, "0"):
		return "+" + strings.TrimPrefix(countryCode, "+") + number[1:]
	default:
		return "+" + number
	}
}

func (c *SMSClient) FormatPhoneNumber(number string) string {
	return FormatPhoneNumber(number, c.cfg.CountryCode)
}

// OrderMessage is the confirmation text sent to a customer.
func OrderMessage(orderName string, price float64) string {
	return fmt.Sprintf("ORDER CONFIRMATION: %s - KES %.2f. Thank you for your order!", orderName, price)
}

// SendOrderConfirmation texts the customer at phone about a new order.
func (c *SMSClient) SendOrderConfirmation(ctx context.Context, phone, orderName string, price float64) Result {
	to := c.FormatPhoneNumber(phone)
	message := OrderMessage(orderName, price)

	var res Result
	if c.mode == ModeDemo {
		c.log.InfoContext(ctx, "demo sms", "to", to, "message", message)
		res = Result{Delivered: true, Mode: ModeDemo}
	} else {
		res = c.liveSend(ctx, to, message)
	}

	metrics.RecordNotification("sms", string(res.Mode), res.Delivered)
	return res
}

func (c *SMSClient) liveSend(ctx context.Context, to, message string) Result {
	// The gateway call is bounded by the client timeout, not by the caller.
	ctx = context.WithoutCancel(ctx)

	data := url.Values{}
	data.Set("username", c.cfg.Username)
	data.Set("to", to)
	data.Set("message", message)
	if c.cfg.SenderID != "" {
		data.Set("from", c.cfg.SenderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SMSURL, strings.NewReader(data.Encode()))
	if err != nil {
		return c.failed(ctx, to, fmt.Sprintf("build request: %v", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return c.failed(ctx, to, fmt.Sprintf("send: %v", err))
	}
	defer resp.Body.Close()

	var smsResp SMSResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&smsResp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		return c.failed(ctx, to, fmt.Sprintf("gateway returned status %d: %s", resp.StatusCode, smsResp.SMSMessageData.Message))
	}

	if decodeErr != nil {
		c.log.WarnContext(ctx, "sms accepted with unreadable response", "to", to, "status", resp.StatusCode, "error", decodeErr)
	} else {
		for _, r := range smsResp.SMSMessageData.Recipients {
			c.log.DebugContext(ctx, "sms recipient", "number", r.Number, "status", r.Status, "message_id", r.MessageID)
		}
	}

	c.log.InfoContext(ctx, "sms sent", "to", to, "status", resp.StatusCode, "gateway_message", smsResp.SMSMessageData.Message)
	return Result{Delivered: true, Mode: ModeLive}
}

func (c *SMSClient) failed(ctx context.Context, to, reason string) Result {
	c.log.ErrorContext(ctx, "sms send failed", "to", to, "reason", reason)
	return Result{Delivered: false, Mode: ModeLive, Reason: reason}
}
