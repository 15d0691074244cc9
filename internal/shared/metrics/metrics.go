package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	uploadsAcceptedTotal  atomic.Uint64
	uploadsRejectedTotal  atomic.Uint64
	extractionsTotal      atomic.Uint64
	extractionFailedTotal atomic.Uint64

	reviewsStartedTotal   atomic.Uint64
	reviewsCompletedTotal atomic.Uint64
	reviewsFailedTotal    atomic.Uint64
	reviewJobsReceived    atomic.Uint64
	reviewJobsDiscarded   atomic.Uint64

	rateLimitedTotal atomic.Uint64

	extractionDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000})
	reviewDuration     = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncUploadAccepted increments the accepted uploads counter.
func IncUploadAccepted() { uploadsAcceptedTotal.Add(1) }

// IncUploadRejected increments the rejected uploads counter.
func IncUploadRejected() { uploadsRejectedTotal.Add(1) }

// IncExtractionCompleted increments the completed extractions counter.
func IncExtractionCompleted() { extractionsTotal.Add(1) }

// IncExtractionFailed increments the failed extractions counter.
func IncExtractionFailed() { extractionFailedTotal.Add(1) }

// IncReviewStarted increments the started reviews counter.
func IncReviewStarted() { reviewsStartedTotal.Add(1) }

// IncReviewCompleted increments the completed reviews counter.
func IncReviewCompleted() { reviewsCompletedTotal.Add(1) }

// IncReviewFailed increments the failed reviews counter.
func IncReviewFailed() { reviewsFailedTotal.Add(1) }

// IncReviewJobsReceived increments the queue-delivered jobs counter.
func IncReviewJobsReceived() { reviewJobsReceived.Add(1) }

// IncReviewJobsDiscarded increments the counter of queue jobs dropped as
// unrecoverable (empty or undecodable payloads).
func IncReviewJobsDiscarded() { reviewJobsDiscarded.Add(1) }

// IncRateLimited increments the throttled requests counter.
func IncRateLimited() { rateLimitedTotal.Add(1) }

// ObserveExtractionDurationMs records an extraction duration in milliseconds.
func ObserveExtractionDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	extractionDuration.Observe(value)
}

// ObserveReviewDurationMs records a review duration in milliseconds.
func ObserveReviewDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	reviewDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_uploads_accepted_total", "Total resume uploads accepted", uploadsAcceptedTotal.Load())
	writeCounter(&buf, "resume_uploads_rejected_total", "Total resume uploads rejected by validation", uploadsRejectedTotal.Load())
	writeCounter(&buf, "resume_extractions_completed_total", "Total extractions completed", extractionsTotal.Load())
	writeCounter(&buf, "resume_extractions_failed_total", "Total extractions failed", extractionFailedTotal.Load())
	writeCounter(&buf, "review_started_total", "Total reviews started", reviewsStartedTotal.Load())
	writeCounter(&buf, "review_completed_total", "Total reviews completed", reviewsCompletedTotal.Load())
	writeCounter(&buf, "review_failed_total", "Total reviews failed", reviewsFailedTotal.Load())
	writeCounter(&buf, "review_jobs_received_total", "Total review jobs received from the queue", reviewJobsReceived.Load())
	writeCounter(&buf, "review_jobs_discarded_total", "Total review jobs dropped as unrecoverable", reviewJobsDiscarded.Load())
	writeCounter(&buf, "rate_limited_total", "Total requests rejected by rate limiting", rateLimitedTotal.Load())
	writeHistogram(&buf, "extraction_duration_ms", "Extraction duration in milliseconds", extractionDuration.Snapshot())
	writeHistogram(&buf, "review_duration_ms", "Review duration in milliseconds", reviewDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
