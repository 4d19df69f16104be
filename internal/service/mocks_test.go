package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dtroode/confreg-server/internal/model"
)

// MockRegistrationStore mocks the RegistrationStore interface
type MockRegistrationStore struct {
	mock.Mock
}

func (m *MockRegistrationStore) Create(ctx context.Context, registration model.Registration) (model.Registration, error) {
	args := m.Called(ctx, registration)
	return args.Get(0).(model.Registration), args.Error(1)
}

func (m *MockRegistrationStore) Count(ctx context.Context, filter model.TypeFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegistrationStore) List(ctx context.Context, query model.ListQuery) ([]model.Registration, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]model.Registration), args.Error(1)
}

// MockReceiptStorage mocks the ReceiptStorage interface
type MockReceiptStorage struct {
	mock.Mock
	body []byte
}

func (m *MockReceiptStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64) error {
	m.body, _ = io.ReadAll(reader)
	args := m.Called(ctx, key, size)
	return args.Error(0)
}

func noopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}
