package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onton-events/settler/src/utils/config"
	monitor_settler "github.com/onton-events/settler/src/utils/monitoring/settler"

	"github.com/stretchr/testify/suite"
)

type fakeSender struct {
	calls       int
	failFirst   int
	lastChatId  int64
	lastMessage string
}

func (f *fakeSender) Send(ctx context.Context, chatId int64, text string) (err error) {
	f.calls++
	f.lastChatId = chatId
	f.lastMessage = text
	if f.calls <= f.failFirst {
		return errors.New("telegram unavailable")
	}
	return nil
}

type NotifierTestSuite struct {
	suite.Suite

	ctx      context.Context
	config   *config.Config
	monitor  *monitor_settler.Monitor
	sender   *fakeSender
	notifier *Notifier
}

func (s *NotifierTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.config = config.Default()
	s.config.Notifier.AttemptDelay = time.Millisecond
	s.monitor = monitor_settler.NewMonitor().WithMaxHistorySize(10)
	s.sender = &fakeSender{}
	s.notifier = NewNotifier(s.config).
		WithSender(s.sender).
		WithMonitor(s.monitor)
}

func (s *NotifierTestSuite) TestDeliversOnFirstAttempt() {
	err := s.notifier.deliver(s.ctx, 42, "hello")
	s.NoError(err)
	s.Equal(1, s.sender.calls)
	s.Equal(int64(42), s.sender.lastChatId)
	s.Zero(s.monitor.Report.Notifier.Errors.DeliveryFailures.Load())
}

func (s *NotifierTestSuite) TestStopsRetryingAfterSuccess() {
	s.sender.failFirst = 2

	err := s.notifier.deliver(s.ctx, 42, "hello")
	s.NoError(err)
	s.Equal(3, s.sender.calls)
	s.Equal(uint64(2), s.monitor.Report.Notifier.Errors.DeliveryFailures.Load())
}

func (s *NotifierTestSuite) TestGivesUpAfterMaxAttempts() {
	s.sender.failFirst = 1000

	err := s.notifier.deliver(s.ctx, 42, "hello")
	s.Error(err)
	s.Equal(s.config.Notifier.MaxAttempts, s.sender.calls)
}

func (s *NotifierTestSuite) TestCanceledContextStopsRetrying() {
	s.sender.failFirst = 1000

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	err := s.notifier.deliver(ctx, 42, "hello")
	s.Error(err)
	s.LessOrEqual(s.sender.calls, 1)
}

func TestNotifierTestSuite(t *testing.T) {
	suite.Run(t, new(NotifierTestSuite))
}
