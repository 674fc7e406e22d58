package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	ts := time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC)
	processedAt := time.Date(2024, 8, 1, 9, 30, 0, 0, time.UTC)

	row := domain.HotspotRow{
		Timestamp: ts,
		Zone:      "athens",
		TempC:     36.5,
		Anomaly:   2.75,
		Hour:      14,
		Weekday:   0,
	}

	msg, err := serializeToMessage(row, "athens", processedAt)
	require.NoError(t, err)

	assert.Equal(t, []byte("2024-07-15T14:00:00Z"), msg.Key)
	assert.JSONEq(t,
		`{"timestamp":"2024-07-15T14:00:00Z","zone_id":"athens","temp_c":36.5,"anomaly":2.75,"hour":14,"weekday":0}`,
		string(msg.Value),
	)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "zone", msg.Headers[0].Key)
	assert.Equal(t, []byte("athens"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-08-01T09:30:00Z"), msg.Headers[1].Value)
}
