package app

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Chapstick53/phone-sms-api/internal/inbound_processor_service/domain"
	"github.com/Chapstick53/phone-sms-api/internal/platform/messagebroker"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mocks ---

type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) Save(ctx context.Context, msg *domain.ArchivedMessage) (bool, error) {
	args := m.Called(ctx, msg)
	return args.Bool(0), args.Error(1)
}

func (m *MockArchiveRepository) RecentByPhone(ctx context.Context, phone string, limit int) ([]domain.ArchivedMessage, error) {
	args := m.Called(ctx, phone, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ArchivedMessage), args.Error(1)
}

// fakeSubscriber captures the handler so tests can deliver messages without
// a NATS server.
type fakeSubscriber struct {
	mu           sync.Mutex
	subject      string
	queueGroup   string
	handler      func(messagebroker.Message)
	err          error
	unsubscribed bool
	subscribed   chan struct{}
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{subscribed: make(chan struct{})}
}

func (f *fakeSubscriber) Subscribe(_ context.Context, subject, queueGroup string, handler func(messagebroker.Message)) (messagebroker.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.subject, f.queueGroup, f.handler = subject, queueGroup, handler
	close(f.subscribed)
	return f, nil
}

func (f *fakeSubscriber) Unsubscribe() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = true
	return nil
}

func (f *fakeSubscriber) deliver(msg messagebroker.Message) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	h(msg)
}

func (f *fakeSubscriber) isUnsubscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribed
}
