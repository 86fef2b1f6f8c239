package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConsumer() *Consumer {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Consumer{log: log}
}

func TestDispatchDeliversTicketIssuedEvents(t *testing.T) {
	c := testConsumer()

	payload, err := json.Marshal(TicketEvent{
		Type:          EventTicketIssued,
		CodigoBillete: "ABC123DEF456GHI",
		CodigoReserva: "AB12CD34EF",
		Email:         "ana@example.com",
	})
	require.NoError(t, err)

	var handled []TicketEvent
	c.dispatch(context.Background(), payload, func(_ context.Context, event TicketEvent) error {
		handled = append(handled, event)
		return nil
	})

	require.Len(t, handled, 1)
	assert.Equal(t, "ABC123DEF456GHI", handled[0].CodigoBillete)
	assert.Equal(t, "ana@example.com", handled[0].Email)
}

func TestDispatchDropsMalformedPayload(t *testing.T) {
	c := testConsumer()

	called := false
	c.dispatch(context.Background(), []byte("{not json"), func(context.Context, TicketEvent) error {
		called = true
		return nil
	})
	assert.False(t, called)
}

func TestDispatchSkipsOtherEventTypes(t *testing.T) {
	c := testConsumer()

	payload, err := json.Marshal(ReservationEvent{Type: EventReservationCreated, CodigoReserva: "AB12CD34EF"})
	require.NoError(t, err)

	called := false
	c.dispatch(context.Background(), payload, func(context.Context, TicketEvent) error {
		called = true
		return nil
	})
	assert.False(t, called)
}

func TestDispatchSwallowsHandlerErrors(t *testing.T) {
	c := testConsumer()

	payload, err := json.Marshal(TicketEvent{Type: EventTicketIssued, CodigoBillete: "ABC123DEF456GHI"})
	require.NoError(t, err)

	// Must not panic or propagate: the loop keeps consuming.
	c.dispatch(context.Background(), payload, func(context.Context, TicketEvent) error {
		return errors.New("smtp down")
	})
}
