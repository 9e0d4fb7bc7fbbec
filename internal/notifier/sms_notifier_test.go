package notifier_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keoroanthony/go-ordertrack/configs"
	"github.com/Keoroanthony/go-ordertrack/internal/notifier"
)

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0712345678", "+254712345678"},
		{"+254712345678", "+254712345678"},
		{"254712345678", "+254712345678"},
		{"+14155550100", "+14155550100"},
		{"0", "+254"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := notifier.FormatPhoneNumber(tt.in, "254")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, notifier.FormatPhoneNumber(got, "254"), "formatting must be idempotent")
		})
	}

	assert.Equal(t, "+255712345678", notifier.FormatPhoneNumber("0712345678", "+255"))
}

func TestValidCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		apiKey   string
		want     bool
	}{
		{"both real", "shop", "atsk_123", true},
		{"missing username", "", "atsk_123", false},
		{"missing key", "shop", "", false},
		{"username placeholder", "your_username", "atsk_123", false},
		{"key placeholder", "shop", "YOUR_API_KEY", false},
		{"sandbox demo account", "Demo", "atsk_123", false},
		{"demo key", "shop", "demo-key", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notifier.ValidCredentials(tt.username, tt.apiKey))
		})
	}
}

func newGateway(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestDemoModeNeverCallsGateway(t *testing.T) {
	srv, hits := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	for _, cfg := range []config.AfricaTalkingConfig{
		{SMSURL: srv.URL, CountryCode: "254"},
		{Username: "demo", APIKey: "realkey", SMSURL: srv.URL, CountryCode: "254"},
		{Username: "shop", APIKey: "your_api_key", SMSURL: srv.URL, CountryCode: "254"},
	} {
		client := notifier.NewSMSClient(cfg, nil)
		require.Equal(t, notifier.ModeDemo, client.Mode())

		res := client.SendOrderConfirmation(t.Context(), "0712345678", "Widget", 9.5)
		assert.True(t, res.Delivered)
		assert.Equal(t, notifier.ModeDemo, res.Mode)
	}

	assert.Equal(t, int32(0), hits.Load())
}

func TestLiveSend(t *testing.T) {
	t.Run("Accepted by gateway", func(t *testing.T) {
		srv, hits := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "atsk_123", r.Header.Get("apiKey"))
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "shop", r.PostForm.Get("username"))
			assert.Equal(t, "+254712345678", r.PostForm.Get("to"))
			assert.Equal(t, "ORDER CONFIRMATION: Widget - KES 99.99. Thank you for your order!", r.PostForm.Get("message"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"SMSMessageData":{"Message":"Sent to 1/1","Recipients":[{"statusCode":101,"number":"+254712345678","status":"Success","messageId":"ATXid_1"}]}}`))
		})

		client := notifier.NewSMSClient(config.AfricaTalkingConfig{
			Username: "shop", APIKey: "atsk_123", SMSURL: srv.URL, CountryCode: "254",
		}, nil)
		require.Equal(t, notifier.ModeLive, client.Mode())

		res := client.SendOrderConfirmation(t.Context(), "0712345678", "Widget", 99.99)
		assert.True(t, res.Delivered)
		assert.Equal(t, notifier.ModeLive, res.Mode)
		assert.Equal(t, int32(1), hits.Load())
	})

	for _, status := range []int{http.StatusOK, http.StatusAccepted} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			})
			client := notifier.NewSMSClient(config.AfricaTalkingConfig{
				Username: "shop", APIKey: "atsk_123", SMSURL: srv.URL,
			}, nil)

			assert.True(t, client.SendOrderConfirmation(t.Context(), "+254712345678", "Widget", 1).Delivered)
		})
	}

	t.Run("Rejected by gateway", func(t *testing.T) {
		srv, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"SMSMessageData":{"Message":"InvalidCredentials"}}`))
		})
		client := notifier.NewSMSClient(config.AfricaTalkingConfig{
			Username: "shop", APIKey: "atsk_123", SMSURL: srv.URL,
		}, nil)

		res := client.SendOrderConfirmation(t.Context(), "0712345678", "Widget", 1)
		assert.False(t, res.Delivered)
		assert.Contains(t, res.Reason, "401")
	})

	t.Run("Gateway too slow", func(t *testing.T) {
		release := make(chan struct{})
		srv, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-time.After(2 * time.Second):
			}
			w.WriteHeader(http.StatusCreated)
		})
		defer close(release)

		client := notifier.NewSMSClient(config.AfricaTalkingConfig{
			Username: "shop", APIKey: "atsk_123", SMSURL: srv.URL, Timeout: 50 * time.Millisecond,
		}, nil)

		res := client.SendOrderConfirmation(t.Context(), "0712345678", "Widget", 1)
		assert.False(t, res.Delivered)
		assert.Equal(t, notifier.ModeLive, res.Mode)
	})

	t.Run("Gateway unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client := notifier.NewSMSClient(config.AfricaTalkingConfig{
			Username: "shop", APIKey: "atsk_123", SMSURL: url,
		}, nil)

		assert.False(t, client.SendOrderConfirmation(t.Context(), "0712345678", "Widget", 1).Delivered)
	})
}
