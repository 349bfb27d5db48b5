package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	ev, err := decode([]byte(`{"type":"order.placed","order_id":"6f1a3c2e-8f0b-4a57-9d8e-1b2c3d4e5f60","seats":["A-001"]}`))
	require.NoError(t, err)
	assert.Equal(t, "order.placed", string(ev.Type))
	assert.Equal(t, []string{"A-001"}, ev.Seats)

	_, err = decode([]byte(`{"type":"order.placed"}`))
	assert.Error(t, err)

	_, err = decode([]byte(`not json`))
	assert.Error(t, err)
}
