package telemetry

import (
	"context"
	"time"

	"marketRecs/domain"
	"marketRecs/pkg/logger"
	"marketRecs/pkg/metrics"
)

type ImpressionRepository interface {
	Save(ctx context.Context, impression *domain.RecommendationImpression) error
}

// ImpressionWriter persists impression records off the request path. A
// single goroutine drains a buffered channel; when the buffer is full the
// record is dropped and counted, never blocking a response.
type ImpressionWriter struct {
	repo    ImpressionRepository
	queue   chan domain.RecommendationImpression
	done    chan struct{}
	timeout time.Duration
}

func NewImpressionWriter(repo ImpressionRepository, buffer int) *ImpressionWriter {
	if buffer <= 0 {
		buffer = 1024
	}
	return &ImpressionWriter{
		repo:    repo,
		queue:   make(chan domain.RecommendationImpression, buffer),
		done:    make(chan struct{}),
		timeout: 5 * time.Second,
	}
}

// Start launches the writer goroutine. It runs until ctx is canceled, then
// drains whatever is still buffered before signaling done.
func (w *ImpressionWriter) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for {
			select {
			case imp := <-w.queue:
				w.write(imp)
			case <-ctx.Done():
				for {
					select {
					case imp := <-w.queue:
						w.write(imp)
					default:
						return
					}
				}
			}
		}
	}()
}

// Record enqueues an impression without blocking.
func (w *ImpressionWriter) Record(impression domain.RecommendationImpression) {
	select {
	case w.queue <- impression:
	default:
		metrics.ImpressionsDropped.Inc()
		logger.Warn("impression buffer full, dropping record", "recommendation_id", impression.RecommendationID)
	}
}

// Wait blocks until the writer goroutine has drained and exited.
func (w *ImpressionWriter) Wait() {
	<-w.done
}

func (w *ImpressionWriter) write(impression domain.RecommendationImpression) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.repo.Save(ctx, &impression); err != nil {
		logger.Error("failed to persist impression", "recommendation_id", impression.RecommendationID, "error", err)
	}
}
