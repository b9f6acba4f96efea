package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/gocontact/internal/contact/usecase"
	otpusecase "github.com/shandysiswandi/gocontact/internal/otp/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/shandysiswandi/gocontact/internal/pkg/idempotency"
	"github.com/shandysiswandi/gocontact/internal/pkg/router"
	"github.com/shandysiswandi/gocontact/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUsecase struct {
	mock.Mock
}

func (m *MockUsecase) Submit(ctx context.Context, in usecase.SubmitInput) (*usecase.SubmitOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*usecase.SubmitOutput)
	return out, args.Error(1)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, m *MockUsecase, body string, headers map[string]string) (int, envelope) {
	t.Helper()
	cfg, err := config.NewViperFromBytes("yaml", []byte("{}"))
	require.NoError(t, err)

	r := router.NewRouter(router.Config{Config: cfg, UUID: uid.NewUUID()})
	RegisterHTTPEndpoint(r, m)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

const validBody = `{"name":"Jane","email":"jane@example.com","message":"hello","otp":"4821"}`

func TestHTTPEndpoint_Submit(t *testing.T) {
	t.Run("submitted with idempotency key", func(t *testing.T) {
		// Arrange
		m := new(MockUsecase)
		m.On("Submit", mock.Anything, usecase.SubmitInput{
			IdempotencyKey: "form-1",
			Name:           "Jane",
			Email:          "jane@example.com",
			Message:        "hello",
			OTP:            "4821",
		}).Return(&usecase.SubmitOutput{ID: 1234567890123}, nil).Once()

		// Act
		status, env := serve(t, m, validBody, map[string]string{"Idempotency-Key": "form-1"})

		// Assert
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, env.Success)
		assert.Equal(t, "Thank you. Your message has been sent.", env.Message)
		assert.JSONEq(t, `{"id":"1234567890123"}`, string(env.Data))
		m.AssertExpectations(t)
	})

	t.Run("invalid otp", func(t *testing.T) {
		m := new(MockUsecase)
		m.On("Submit", mock.Anything, mock.Anything).
			Return(nil, goerror.NewBusinessCause(otpusecase.ErrOtpNotMatched, otpusecase.MsgInvalidOTP, goerror.CodeInvalidOTP)).Once()

		status, env := serve(t, m, validBody, nil)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid OTP", env.Message)
	})

	t.Run("duplicate", func(t *testing.T) {
		m := new(MockUsecase)
		m.On("Submit", mock.Anything, mock.Anything).
			Return(nil, goerror.NewBusinessCause(idempotency.ErrAlreadyCompleted, usecase.MsgDuplicate, goerror.CodeConflict)).Once()

		status, env := serve(t, m, validBody, map[string]string{"Idempotency-Key": "form-1"})

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, usecase.MsgDuplicate, env.Message)
	})

	t.Run("save failure", func(t *testing.T) {
		m := new(MockUsecase)
		m.On("Submit", mock.Anything, mock.Anything).
			Return(nil, goerror.NewServerMessage(errors.New("db"), usecase.MsgSaveFailed)).Once()

		status, env := serve(t, m, validBody, nil)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, usecase.MsgSaveFailed, env.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		status, env := serve(t, new(MockUsecase), `{"name":`, nil)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.False(t, env.Success)
	})
}
