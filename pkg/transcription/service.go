package transcription

import (
	"context"
	"time"

	"github.com/joshdias/zaprouter/pkg/workerpool"
	"github.com/joshdias/zaprouter/pkg/zapi"
	"github.com/rs/zerolog/log"
)

// Gateway is the messaging surface the service notifies through.
type Gateway interface {
	SendMessage(ctx context.Context, phone, message string, opts zapi.SendOptions) bool
	ReadMessage(ctx context.Context, phone, messageID string)
}

// Processor runs the transcription pipeline for one request.
type Processor interface {
	Process(ctx context.Context, req Request) Result
}

// Metrics receives notification delivery events. Implementations must be
// safe for concurrent use.
type Metrics interface {
	NotificationRetry()
	NotificationFailure()
}

// noopMetrics is used when no metrics sink is configured.
type noopMetrics struct{}

func (noopMetrics) NotificationRetry()   {}
func (noopMetrics) NotificationFailure() {}

// ServiceOptions configures the background transcription service.
type ServiceOptions struct {
	Workers       int                // pool workers (default: 5)
	QueueSize     int                // pool queue capacity (default: 100)
	RetryAttempts int                // notification send attempts (default: 3)
	RetryDelay    time.Duration      // delay between attempts (default: 1s)
	Metrics       Metrics            // optional notification event sink
	PoolMetrics   workerpool.Metrics // optional pool event sink
}

// Service processes transcription requests on a private bounded worker pool
// and reports outcomes by replying to the sender through the gateway. The
// sender only ever learns the outcome through that reply.
type Service struct {
	workflow Processor
	gateway  Gateway
	pool     *workerpool.Pool
	options  ServiceOptions
}

// NewService creates and starts the transcription service.
func NewService(workflow Processor, gateway Gateway, options ServiceOptions) *Service {
	if options.RetryAttempts <= 0 {
		options.RetryAttempts = 3
	}
	if options.RetryDelay <= 0 {
		options.RetryDelay = time.Second
	}
	if options.Metrics == nil {
		options.Metrics = noopMetrics{}
	}

	return &Service{
		workflow: workflow,
		gateway:  gateway,
		pool: workerpool.New("transcription", workerpool.Options{
			Workers:   options.Workers,
			QueueSize: options.QueueSize,
			Overflow:  workerpool.CallerRuns,
			Metrics:   options.PoolMetrics,
		}),
		options: options,
	}
}

// ProcessAsync schedules a request on the pool and returns immediately.
func (s *Service) ProcessAsync(req Request) {
	log.Info().Str("phone", req.PhoneNumber).Msg("Submitting async transcription request")
	s.pool.Submit(func() {
		s.Process(req)
	})
}

// Process runs a request inline: mark the message read, run the workflow,
// notify the sender with bounded retry.
func (s *Service) Process(req Request) Result {
	ctx := context.Background()

	s.gateway.ReadMessage(ctx, req.PhoneNumber, req.MessageID)

	log.Info().Str("phone", req.PhoneNumber).Msg("Processing transcription")
	result := s.workflow.Process(ctx, req)

	s.notifyWithRetry(ctx, result)
	return result
}

// notifyWithRetry sends the outcome to the sender, retrying failed sends
// with a fixed delay.
func (s *Service) notifyWithRetry(ctx context.Context, result Result) {
	message := result.Text
	if !result.Success {
		message = "*Error:* " + result.ErrorMessage
	}

	for attempt := 1; attempt <= s.options.RetryAttempts; attempt++ {
		log.Info().
			Int("attempt", attempt).
			Str("phone", result.PhoneNumber).
			Msg("Sending transcription notification")

		if s.gateway.SendMessage(ctx, result.PhoneNumber, message, zapi.SendOptions{ReferenceID: result.MessageID}) {
			log.Info().Int("attempts", attempt).Msg("Notification sent successfully")
			return
		}

		if attempt < s.options.RetryAttempts {
			s.options.Metrics.NotificationRetry()
			log.Warn().Dur("delay", s.options.RetryDelay).Msg("Notification failed, will retry")
			time.Sleep(s.options.RetryDelay)
		}
	}

	s.options.Metrics.NotificationFailure()
	log.Error().
		Int("attempts", s.options.RetryAttempts).
		Str("phone", result.PhoneNumber).
		Msg("Failed to send notification, giving up")
}

// Stats returns the worker pool state.
func (s *Service) Stats() workerpool.Stats {
	return s.pool.Stats()
}

// Close drains the worker pool.
func (s *Service) Close(timeout time.Duration) bool {
	log.Info().Msg("Shutting down transcription service")
	return s.pool.Close(timeout)
}
