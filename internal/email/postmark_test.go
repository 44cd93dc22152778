package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostmarkSender_Send(t *testing.T) {
	var got postmarkEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "server-token", r.Header.Get("X-Postmark-Server-Token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"To":"ada@example.com","MessageID":"b7bc2f4a-e38e-4336-af7d-e6c392c2f817","ErrorCode":0,"Message":"OK"}`))
	}))
	defer srv.Close()

	sender := NewPostmarkSender("server-token", srv.URL, zerolog.Nop())
	id, err := sender.Send(context.Background(), &Email{
		To:       []string{"ada@example.com", "billing@st-marys.example"},
		From:     "Patient Billing <billing@hospital.local>",
		Subject:  "Invoice INV-100 is due tomorrow",
		HTMLBody: "<p>Hello</p>",
		TextBody: "Hello",
		Headers:  map[string]string{"X-Invoice-ID": "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "b7bc2f4a-e38e-4336-af7d-e6c392c2f817", id)

	assert.Equal(t, "ada@example.com,billing@st-marys.example", got.To)
	assert.Equal(t, "Invoice INV-100 is due tomorrow", got.Subject)
	assert.Equal(t, "outbound", got.MessageStream)
	assert.Equal(t, []postmarkHeader{{Name: "X-Invoice-ID", Value: "42"}}, got.Headers)
}

func TestPostmarkSender_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "rejected recipient",
			status:  http.StatusUnprocessableEntity,
			body:    `{"ErrorCode":300,"Message":"Invalid 'To' address"}`,
			wantErr: "postmark error 300: Invalid 'To' address",
		},
		{
			name:    "error code with ok status",
			status:  http.StatusOK,
			body:    `{"ErrorCode":406,"Message":"Inactive recipient"}`,
			wantErr: "postmark error 406",
		},
		{
			name:    "non json failure",
			status:  http.StatusBadGateway,
			body:    "upstream unavailable",
			wantErr: "status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			sender := NewPostmarkSender("server-token", srv.URL, zerolog.Nop())
			_, err := sender.Send(context.Background(), &Email{To: []string{"ada@example.com"}, Subject: "s"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewPostmarkSender_DefaultEndpoint(t *testing.T) {
	sender := NewPostmarkSender("server-token", "", zerolog.Nop())
	assert.Equal(t, PostmarkAPIURL, sender.endpoint)
}
