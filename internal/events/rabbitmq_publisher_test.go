package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spbu-ds-practicum-2025/balance-service/internal/domain"
	"github.com/spbu-ds-practicum-2025/balance-service/internal/events"
)

func TestNewDepositCompletedMessage(t *testing.T) {
	event := &domain.DepositCompleted{
		EventID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		AccountID: 42,
		Amount:    decimal.RequireFromString("25.5"),
		Balance:   decimal.RequireFromString("125.5"),
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600)),
	}

	body, err := json.Marshal(events.NewDepositCompletedMessage(event))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &got))

	assert.Equal(t, "11111111-1111-1111-1111-111111111111", got["eventId"])
	assert.Equal(t, "balance.deposited", got["eventType"])
	assert.Equal(t, float64(42), got["accountId"])
	assert.Equal(t, "25.50", got["amount"])
	assert.Equal(t, "125.50", got["balance"])
	assert.Equal(t, "2025-03-01T09:00:00Z", got["timestamp"])
}
