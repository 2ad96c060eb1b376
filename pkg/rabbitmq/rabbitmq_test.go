package rabbitmq

import (
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	apperrors "github.com/director74/saga_shop/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

var testLogger = log.New(io.Discard, "", 0)

func TestDispatch_AckOnSuccess(t *testing.T) {
	ack := &fakeAck{}
	var got []byte

	Dispatch(ack, []byte(`{"order_id":"1"}`), func(b []byte) error {
		got = b
		return nil
	}, testLogger)

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Equal(t, `{"order_id":"1"}`, string(got))
}

func TestDispatch_RequeueOnFailure(t *testing.T) {
	ack := &fakeAck{}

	Dispatch(ack, nil, func([]byte) error {
		return errors.New("store unavailable")
	}, testLogger)

	assert.False(t, ack.acked)
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)
}

func TestDispatch_DropMalformed(t *testing.T) {
	ack := &fakeAck{}

	Dispatch(ack, []byte("{"), func([]byte) error {
		return fmt.Errorf("payment.processed: %w", apperrors.ErrMalformedMessage)
	}, testLogger)

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestDispatch_PanicIsRequeued(t *testing.T) {
	ack := &fakeAck{}

	assert.NotPanics(t, func() {
		Dispatch(ack, nil, func([]byte) error {
			panic("boom")
		}, testLogger)
	})

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)
}
