package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

type MockNumberLister struct{ mock.Mock }

func (m *MockNumberLister) ListNumbers(ctx context.Context) ([]domain.PhoneNumber, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PhoneNumber), args.Error(1)
}

type MockMessageLister struct{ mock.Mock }

func (m *MockMessageLister) ListMessages(ctx context.Context, phone string) ([]domain.Message, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishScraped(ctx context.Context, event domain.ScrapedMessagesEvent) error {
	return m.Called(ctx, event).Error(0)
}

func strPtr(s string) *string { return &s }

func sampleNumbers() []domain.PhoneNumber {
	return []domain.PhoneNumber{
		{ID: "12025550123", Phone: "+12025550123", CountryCode: strPtr("us"), Country: strPtr("United States")},
		{ID: "8613800138000", Phone: "+8613800138000", CountryCode: strPtr("cn"), Country: strPtr("China")},
		{ID: "12025550124", Phone: "+12025550124", CountryCode: strPtr("us"), Country: strPtr("United States")},
	}
}

func TestService_NumbersUsesCache(t *testing.T) {
	lister := new(MockNumberLister)
	lister.On("ListNumbers", mock.Anything).Return(sampleNumbers(), nil).Once()
	svc := NewService("sms24", lister, new(MockMessageLister), time.Minute, nil, testClock, discardLogger())

	all, err := svc.Numbers(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, all.Count)
	assert.Equal(t, "sms24", all.Provider)

	china, err := svc.Numbers(context.Background(), "china")
	require.NoError(t, err)
	assert.Equal(t, 1, china.Count)

	countries, err := svc.Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, countries.Count)
	assert.Equal(t, "China", countries.Countries[0].Country)

	lister.AssertExpectations(t)
}

func TestService_NumbersBrowserUnavailable(t *testing.T) {
	lister := new(MockNumberLister)
	lister.On("ListNumbers", mock.Anything).Return(nil, domain.ErrBrowserUnavailable)
	svc := NewService("sms24", lister, new(MockMessageLister), time.Minute, nil, testClock, discardLogger())

	_, err := svc.Numbers(context.Background(), "")
	assert.True(t, domain.IsUpstreamUnavailable(err))
}

func TestService_MessagesPublishesEvent(t *testing.T) {
	msgs := []domain.Message{
		{ID: "msg-1", From: "Google", Text: "code 48213", OTP: strPtr("48213"), Time: "2024-03-10T09:15:00.000Z"},
	}
	messages := new(MockMessageLister)
	messages.On("ListMessages", mock.Anything, "12025550123").Return(msgs, nil)
	publisher := new(MockEventPublisher)
	publisher.On("PublishScraped", mock.Anything, mock.MatchedBy(func(e domain.ScrapedMessagesEvent) bool {
		return e.Provider == "sms24" && e.Phone == "+12025550123" && len(e.RunID) == 36 &&
			e.ScrapedAt.Equal(testNow) && len(e.Messages) == 1
	})).Return(nil).Once()

	svc := NewService("sms24", new(MockNumberLister), messages, time.Minute, publisher, testClock, discardLogger())
	res, err := svc.Messages(context.Background(), "+12025550123")

	require.NoError(t, err)
	assert.Equal(t, "+12025550123", res.Phone)
	assert.Equal(t, 1, res.Count)
	publisher.AssertExpectations(t)
}

func TestService_MessagesPublishFailureIsIgnored(t *testing.T) {
	messages := new(MockMessageLister)
	messages.On("ListMessages", mock.Anything, "12025550123").Return([]domain.Message{{Text: "x", Time: "t"}}, nil)
	publisher := new(MockEventPublisher)
	publisher.On("PublishScraped", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	svc := NewService("sms24", new(MockNumberLister), messages, time.Minute, publisher, testClock, discardLogger())
	res, err := svc.Messages(context.Background(), "12025550123")

	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
}

func TestService_EmptyInboxIsNotPublished(t *testing.T) {
	messages := new(MockMessageLister)
	messages.On("ListMessages", mock.Anything, "12025550123").Return([]domain.Message{}, nil)
	publisher := new(MockEventPublisher)

	svc := NewService("sms24", new(MockNumberLister), messages, time.Minute, publisher, testClock, discardLogger())
	res, err := svc.Messages(context.Background(), "12025550123")

	require.NoError(t, err)
	assert.NotNil(t, res.Messages)
	publisher.AssertNotCalled(t, "PublishScraped", mock.Anything, mock.Anything)
}

func TestService_InvalidPhone(t *testing.T) {
	messages := new(MockMessageLister)
	svc := NewService("sms24", new(MockNumberLister), messages, time.Minute, nil, testClock, discardLogger())

	_, err := svc.Messages(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)
	messages.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
}

func TestService_OTP(t *testing.T) {
	messages := new(MockMessageLister)
	messages.On("ListMessages", mock.Anything, "12025550123").Return([]domain.Message{
		{From: "A", Text: "hello", Time: "2024-03-10T09:00:00.000Z"},
		{From: "B", Text: "code 5521", OTP: strPtr("5521"), Time: "2024-03-10T09:01:00.000Z"},
	}, nil)
	svc := NewService("sms24", new(MockNumberLister), messages, time.Minute, nil, testClock, discardLogger())

	otp, err := svc.OTP(context.Background(), "12025550123")
	require.NoError(t, err)
	require.NotNil(t, otp.OTP)
	assert.Equal(t, "5521", *otp.OTP)
	assert.Equal(t, "B", otp.From)
}

func TestService_OTPNavigationError(t *testing.T) {
	navErr := &domain.NavigationError{URL: "https://sms24.me/en/numbers/12025550123", Attempts: 3, Cause: errors.New("timeout")}
	messages := new(MockMessageLister)
	messages.On("ListMessages", mock.Anything, "12025550123").Return(nil, navErr)
	svc := NewService("sms24", new(MockNumberLister), messages, time.Minute, nil, testClock, discardLogger())

	_, err := svc.OTP(context.Background(), "12025550123")
	assert.ErrorIs(t, err, navErr)
}

func TestService_StatusAndInvalidate(t *testing.T) {
	lister := new(MockNumberLister)
	lister.On("ListNumbers", mock.Anything).Return(sampleNumbers(), nil).Twice()
	svc := NewService("sms24", lister, new(MockMessageLister), 30*time.Second, nil, testClock, discardLogger())

	st, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, st.AvailableNumbers)
	assert.Equal(t, 30*time.Second, st.CacheTTL)
	require.NotNil(t, st.CachedAt)
	assert.Equal(t, testNow, *st.CachedAt)
	assert.Equal(t, testNow, st.Timestamp)

	svc.InvalidateNumbers(context.Background())
	_, err = svc.Numbers(context.Background(), "")
	require.NoError(t, err)
	lister.AssertExpectations(t)
}

func TestOptions_URLs(t *testing.T) {
	base, err := ParseBaseURL("https://sms24.me/")
	require.NoError(t, err)
	opts := Options{BaseURL: base, ListPath: "en/numbers/"}

	assert.Equal(t, "https://sms24.me/", opts.RootURL())
	assert.Equal(t, "https://sms24.me/en/numbers/page/3", opts.ListingURL(3))
	assert.Equal(t, "https://sms24.me/en/numbers/12025550123", opts.InboxURL("12025550123"))

	_, err = ParseBaseURL("sms24.me")
	assert.Error(t, err)
}
