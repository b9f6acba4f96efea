package inbound

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/gocontact/internal/notification/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/goroutine"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/messaging"
	"github.com/shandysiswandi/gocontact/internal/pkg/uid"
	"github.com/shandysiswandi/gocontact/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUsecase struct {
	mock.Mock
}

func (m *MockUsecase) ConsumeContactMessage(ctx context.Context, in usecase.ConsumeContactMessageInput) error {
	return m.Called(ctx, in).Error(0)
}

func newConfig(t *testing.T, yaml string) config.Config {
	t.Helper()
	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)
	return cfg
}

const enabledConfig = `
modules:
  notification:
    consumer_names:
      - contact_message_submitted_notification
`

func TestRegisterMQConsumer_Delivers(t *testing.T) {
	// Arrange
	broker := messaging.NewMemory()
	defer broker.Close()

	got := make(chan usecase.ConsumeContactMessageInput, 1)
	gotCID := make(chan string, 1)
	m := new(MockUsecase)
	m.On("ConsumeContactMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			select {
			case gotCID <- instrument.GetCorrelationID(args.Get(0).(context.Context)):
				got <- args.Get(1).(usecase.ConsumeContactMessageInput)
			default:
			}
		}).
		Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	routine := goroutine.NewManager(4)

	// Act
	n := RegisterMQConsumer(ctx, newConfig(t, enabledConfig), routine, broker, uid.NewUUID(), m, instrument.NewNoop())
	require.Equal(t, 1, n)

	// the consumer subscribes asynchronously
	require.Eventually(t, func() bool {
		_, err := broker.Publish(context.Background(), event.ContactMessageSubmittedDestination, messaging.OutgoingMessage{
			Body:    []byte(`{"id":5,"name":"Jane","email":"jane@example.com","message":"hi","created_at":1772355600000}`),
			Headers: map[string]string{messaging.HeaderCorrelationID: "cid-7"},
		})
		if err != nil {
			return false
		}
		select {
		case in := <-got:
			assert.Equal(t, usecase.ConsumeContactMessageInput{
				ID: 5, Name: "Jane", Email: "jane@example.com", Message: "hi", CreatedAt: 1772355600000,
			}, in)
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	// Assert
	assert.Equal(t, "cid-7", <-gotCID)
	cancel()
	_ = routine.Wait()
}

func TestRegisterMQConsumer_DisabledByConfig(t *testing.T) {
	routine := goroutine.NewManager(1)

	n := RegisterMQConsumer(context.Background(), newConfig(t, "{}"), routine, messaging.NewMemory(), uid.NewUUID(), new(MockUsecase), instrument.NewNoop())

	assert.Zero(t, n)
	assert.Zero(t, routine.Running())
}

type stubMessage struct {
	messaging.Message
	body    []byte
	headers map[string]string
}

func (s stubMessage) Body() []byte               { return s.body }
func (s stubMessage) ID() string                 { return "1" }
func (s stubMessage) Header(key string) string   { return s.headers[key] }
func (s stubMessage) Headers() map[string]string { return s.headers }

func TestMQHandler_ContactMessageNotification(t *testing.T) {
	t.Run("malformed body is acked", func(t *testing.T) {
		m := new(MockUsecase)
		h := &MQHandler{uc: m, uuid: uid.NewUUID(), ins: instrument.NewNoop()}

		err := h.ContactMessageNotification(context.Background(), stubMessage{body: []byte(`{`)})

		assert.NoError(t, err)
		m.AssertNotCalled(t, "ConsumeContactMessage", mock.Anything, mock.Anything)
	})

	t.Run("usecase error is returned for redelivery", func(t *testing.T) {
		m := new(MockUsecase)
		boom := errors.New("smtp down")
		m.On("ConsumeContactMessage", mock.Anything, mock.Anything).Return(boom).Once()
		h := &MQHandler{uc: m, uuid: uid.NewUUID(), ins: instrument.NewNoop()}

		err := h.ContactMessageNotification(context.Background(), stubMessage{body: []byte(`{"id":1}`)})

		assert.ErrorIs(t, err, boom)
	})

	t.Run("missing correlation id gets a fresh one", func(t *testing.T) {
		m := new(MockUsecase)
		m.On("ConsumeContactMessage", mock.MatchedBy(func(ctx context.Context) bool {
			return instrument.GetCorrelationID(ctx) != ""
		}), mock.Anything).Return(nil).Once()
		h := &MQHandler{uc: m, uuid: uid.NewUUID(), ins: instrument.NewNoop()}

		require.NoError(t, h.ContactMessageNotification(context.Background(), stubMessage{body: []byte(`{"id":1}`)}))
		m.AssertExpectations(t)
	})
}
