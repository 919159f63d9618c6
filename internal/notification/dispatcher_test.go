package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/internal/notification/telegram"
)

type fakePrefRepo struct {
	prefs map[uint]*alertdomain.AlertPreference
}

func (f *fakePrefRepo) FindByUserID(ctx context.Context, userID uint) (*alertdomain.AlertPreference, error) {
	pref, ok := f.prefs[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return pref, nil
}

func (f *fakePrefRepo) GetOrCreate(ctx context.Context, userID uint) (*alertdomain.AlertPreference, error) {
	return f.FindByUserID(ctx, userID)
}

func (f *fakePrefRepo) Save(ctx context.Context, pref *alertdomain.AlertPreference) error { return nil }

type sentMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// telegramServer fakes the Bot API and records every sendMessage payload
func telegramServer(t *testing.T, status int) (*httptest.Server, *[]sentMessage) {
	t.Helper()
	var sent []sentMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg sentMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		sent = append(sent, msg)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &sent
}

func newTestDispatcher(t *testing.T, status int, prefs map[uint]*alertdomain.AlertPreference) (*Dispatcher, *[]sentMessage) {
	srv, sent := telegramServer(t, status)
	client := telegram.NewClient("test-token", "channel-chat")
	client.BaseURL = srv.URL
	return NewDispatcher(client, &fakePrefRepo{prefs: prefs}, nil), sent
}

func lowStockAlert(userID *uint) *alertdomain.AlertLog {
	return &alertdomain.AlertLog{
		ID:        1,
		AlertType: alertdomain.TypeLowStock,
		Severity:  alertdomain.SeverityHigh,
		Title:     "Low stock: Ibuprofen",
		Message:   "Ibuprofen is down to 3 units (threshold 10)",
		UserID:    userID,
	}
}

func TestDispatchToChannel(t *testing.T) {
	d, sent := newTestDispatcher(t, http.StatusOK, nil)

	delivered := d.Dispatch(context.Background(), lowStockAlert(nil))
	assert.True(t, delivered)

	require.Len(t, *sent, 1)
	assert.Equal(t, "channel-chat", (*sent)[0].ChatID)
	assert.Contains(t, (*sent)[0].Text, "Low stock: Ibuprofen")
	assert.Contains(t, (*sent)[0].Text, "⚠️")
}

func TestDispatchUnconfiguredClient(t *testing.T) {
	d := NewDispatcher(telegram.NewClient("", ""), &fakePrefRepo{}, nil)

	delivered := d.Dispatch(context.Background(), lowStockAlert(nil))
	assert.False(t, delivered)
}

func TestDispatchMissingPreferenceDelivers(t *testing.T) {
	userID := uint(5)
	d, sent := newTestDispatcher(t, http.StatusOK, nil)

	delivered := d.Dispatch(context.Background(), lowStockAlert(&userID))
	assert.True(t, delivered)
	require.Len(t, *sent, 1)
	assert.Equal(t, "channel-chat", (*sent)[0].ChatID)
}

func TestDispatchSuppression(t *testing.T) {
	userID := uint(5)

	tests := []struct {
		name   string
		mutate func(*alertdomain.AlertPreference)
		alert  *alertdomain.AlertLog
	}{
		{
			name:   "telegram disabled",
			mutate: func(p *alertdomain.AlertPreference) { p.TelegramNotifications = false },
			alert:  lowStockAlert(&userID),
		},
		{
			name:   "push disabled",
			mutate: func(p *alertdomain.AlertPreference) { p.PushNotifications = false },
			alert:  lowStockAlert(&userID),
		},
		{
			name:   "immediate alerts off",
			mutate: func(p *alertdomain.AlertPreference) { p.ImmediateAlerts = false },
			alert:  lowStockAlert(&userID),
		},
		{
			name:   "severity below floor",
			mutate: func(p *alertdomain.AlertPreference) { p.MinSeverityLevel = alertdomain.SeverityCritical },
			alert:  lowStockAlert(&userID),
		},
		{
			name:   "low stock alerts off",
			mutate: func(p *alertdomain.AlertPreference) { p.ReceiveLowStockAlerts = false },
			alert:  lowStockAlert(&userID),
		},
		{
			name:   "expiry alerts off",
			mutate: func(p *alertdomain.AlertPreference) { p.ReceiveExpiryAlerts = false },
			alert: &alertdomain.AlertLog{
				ID:        2,
				AlertType: alertdomain.TypeExpiryWarning,
				Severity:  alertdomain.SeverityHigh,
				Title:     "Expiring soon: Insulin",
				UserID:    &userID,
			},
		},
		{
			name:   "prescription alerts off",
			mutate: func(p *alertdomain.AlertPreference) { p.ReceivePrescriptionAlerts = false },
			alert: &alertdomain.AlertLog{
				ID:        3,
				AlertType: alertdomain.TypePrescriptionUrgent,
				Severity:  alertdomain.SeverityHigh,
				Title:     "Urgent prescription",
				UserID:    &userID,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pref := alertdomain.DefaultPreference(userID)
			pref.MinSeverityLevel = alertdomain.SeverityLow
			tt.mutate(pref)
			d, sent := newTestDispatcher(t, http.StatusOK, map[uint]*alertdomain.AlertPreference{userID: pref})

			delivered := d.Dispatch(context.Background(), tt.alert)
			assert.False(t, delivered)
			assert.Empty(t, *sent)
		})
	}
}

func TestDispatchChatIDOverride(t *testing.T) {
	userID := uint(5)
	pref := alertdomain.DefaultPreference(userID)
	pref.MinSeverityLevel = alertdomain.SeverityLow
	pref.TelegramChatID = "direct-chat-42"
	d, sent := newTestDispatcher(t, http.StatusOK, map[uint]*alertdomain.AlertPreference{userID: pref})

	delivered := d.Dispatch(context.Background(), lowStockAlert(&userID))
	assert.True(t, delivered)
	require.Len(t, *sent, 1)
	assert.Equal(t, "direct-chat-42", (*sent)[0].ChatID)
}

func TestDispatchSendFailureIsSwallowed(t *testing.T) {
	d, _ := newTestDispatcher(t, http.StatusBadGateway, nil)

	delivered := d.Dispatch(context.Background(), lowStockAlert(nil))
	assert.False(t, delivered)
}

func TestFormatAlertSeverityPrefix(t *testing.T) {
	tests := []struct {
		severity string
		emoji    string
	}{
		{alertdomain.SeverityCritical, "🚨"},
		{alertdomain.SeverityHigh, "⚠️"},
		{alertdomain.SeverityMedium, "🔔"},
		{alertdomain.SeverityLow, "ℹ️"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.emoji, telegram.SeverityEmoji(tt.severity), tt.severity)
	}
}
