package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Abhishek-Anvekar/healthcare/internal/delivery/dto"
	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
	"github.com/Abhishek-Anvekar/healthcare/internal/usecase"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcknowledger struct {
	mu   sync.Mutex
	acks int
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error { return nil }
func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error         { return nil }

type fakeBooker struct {
	usecase.AppointmentUsecase

	mu       sync.Mutex
	requests []*dto.BookAppointmentRequest
	err      error
}

func (b *fakeBooker) Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if b.err != nil {
		return nil, b.err
	}
	return &dto.AppointmentResponse{ID: "appt-1"}, nil
}

type fakeParkedRepo struct {
	mu     sync.Mutex
	parked []entity.ParkedMessage
}

func (r *fakeParkedRepo) Park(ctx context.Context, msg *entity.ParkedMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parked = append(r.parked, *msg)
	return nil
}

type fakeDeduper struct {
	seen map[string]bool
}

func (d *fakeDeduper) Seen(ctx context.Context, messageID string) bool {
	if d.seen[messageID] {
		return true
	}
	d.seen[messageID] = true
	return false
}

func consumerForTest(booker *fakeBooker, parked *fakeParkedRepo, dedup Deduper) *BookRequestConsumer {
	return &BookRequestConsumer{
		log:         discardLogger(),
		appointment: booker,
		parked:      parked,
		dedup:       dedup,
		topic:       "appointment-book-request",
	}
}

func delivery(messageID string, body string) (amqp091.Delivery, *fakeAcknowledger) {
	ack := &fakeAcknowledger{}
	return amqp091.Delivery{
		Acknowledger: ack,
		MessageId:    messageID,
		Body:         []byte(body),
	}, ack
}

const validBookRequest = `{
	"bookingId": "bk-1",
	"doctorId": "doc-1",
	"patientId": "pat-1",
	"startTime": "2026-09-01T10:00:00Z",
	"durationMinutes": 30
}`

func TestHandle_BooksAndAcks(t *testing.T) {
	booker := &fakeBooker{}
	parked := &fakeParkedRepo{}
	c := consumerForTest(booker, parked, &fakeDeduper{seen: map[string]bool{}})

	d, ack := delivery("msg-1", validBookRequest)
	c.handle(context.Background(), d)

	require.Len(t, booker.requests, 1)
	assert.Equal(t, "doc-1", booker.requests[0].DoctorID)
	assert.Equal(t, 1, ack.acks)
	assert.Empty(t, parked.parked)
}

func TestHandle_SkipsRedeliveredMessage(t *testing.T) {
	booker := &fakeBooker{}
	c := consumerForTest(booker, &fakeParkedRepo{}, &fakeDeduper{seen: map[string]bool{}})

	d1, ack1 := delivery("msg-1", validBookRequest)
	c.handle(context.Background(), d1)
	d2, ack2 := delivery("msg-1", validBookRequest)
	c.handle(context.Background(), d2)

	assert.Len(t, booker.requests, 1, "the redelivery must not book twice")
	assert.Equal(t, 1, ack1.acks)
	assert.Equal(t, 1, ack2.acks, "the redelivery is still acked")
}

func TestHandle_ParksUndecodableMessage(t *testing.T) {
	booker := &fakeBooker{}
	parked := &fakeParkedRepo{}
	c := consumerForTest(booker, parked, &fakeDeduper{seen: map[string]bool{}})

	d, ack := delivery("msg-2", `{"bookingId":"bk-2","doctorId":"doc-1"}`)
	c.handle(context.Background(), d)

	assert.Empty(t, booker.requests)
	assert.Equal(t, 1, ack.acks, "a parked message is acked, not requeued")
	require.Len(t, parked.parked, 1)
	assert.Equal(t, "appointment-book-request", parked.parked[0].Topic)
	assert.Equal(t, "msg-2", parked.parked[0].MessageID)
	assert.NotEmpty(t, parked.parked[0].Reason)
}

func TestHandle_ParkedMessageFallsBackToProducerRef(t *testing.T) {
	parked := &fakeParkedRepo{}
	c := consumerForTest(&fakeBooker{}, parked, &fakeDeduper{seen: map[string]bool{}})

	// No broker message id; the producer's bookingId identifies the parked row.
	d, _ := delivery("", `{"bookingId":"bk-3","doctorId":"doc-1","patientId":"pat-1","startTime":"bad","durationMinutes":30}`)
	c.handle(context.Background(), d)

	require.Len(t, parked.parked, 1)
	assert.Equal(t, "bk-3", parked.parked[0].MessageID)
}

func TestHandle_BusinessFailureIsDroppedNotParked(t *testing.T) {
	booker := &fakeBooker{err: errors.New("slot unavailable")}
	parked := &fakeParkedRepo{}
	c := consumerForTest(booker, parked, &fakeDeduper{seen: map[string]bool{}})

	d, ack := delivery("msg-3", validBookRequest)
	c.handle(context.Background(), d)

	assert.Len(t, booker.requests, 1)
	assert.Equal(t, 1, ack.acks)
	assert.Empty(t, parked.parked, "a business rejection is final, not a poison message")
}
