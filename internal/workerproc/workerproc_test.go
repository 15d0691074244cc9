package workerproc

import (
	"context"
	"errors"
	"testing"

	"resume-review-backend/internal/queue"
)

type recordingProcessor struct {
	ids []string
}

func (r *recordingProcessor) Process(ctx context.Context, reviewRequestID string) {
	r.ids = append(r.ids, reviewRequestID)
}

func TestParseMessage(t *testing.T) {
	body, err := queue.EncodeMessage(queue.Message{ReviewRequestID: "review-1", RequestID: "req-1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	msg, meta, err := ParseMessage(string(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.ReviewRequestID != "review-1" || msg.RequestID != "req-1" {
		t.Errorf("message = %+v", msg)
	}
	if meta.BodyLen != len(body) || meta.BodySHA == "" {
		t.Errorf("meta = %+v", meta)
	}
}

func TestParseMessageRejectsEmptyBody(t *testing.T) {
	_, _, err := ParseMessage("   ")
	var empty ErrEmptyBody
	if !errors.As(err, &empty) {
		t.Fatalf("err = %v, want ErrEmptyBody", err)
	}
}

func TestParseMessageRejectsGarbage(t *testing.T) {
	_, meta, err := ParseMessage("{not json")
	var decode ErrDecode
	if !errors.As(err, &decode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
	if meta.BodySHA == "" {
		t.Error("meta hash missing for diagnostics")
	}
}

func TestParseMessageRejectsMissingReviewID(t *testing.T) {
	body, _ := queue.EncodeMessage(queue.Message{RequestID: "req-1"})
	_, _, err := ParseMessage(string(body))
	var missing ErrMissingReviewID
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want ErrMissingReviewID", err)
	}
	if missing.RequestID != "req-1" {
		t.Errorf("request id = %q", missing.RequestID)
	}
}

func TestHandleMessageProcessesReview(t *testing.T) {
	proc := &recordingProcessor{}
	body, _ := queue.EncodeMessage(queue.Message{ReviewRequestID: "review-2", RequestID: "req-2"})

	if err := HandleMessage(context.Background(), proc, string(body)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(proc.ids) != 1 || proc.ids[0] != "review-2" {
		t.Errorf("processed = %v", proc.ids)
	}
}

func TestHandleMessageReusesParsedMessage(t *testing.T) {
	proc := &recordingProcessor{}
	ctx := WithParsedMessage(context.Background(), queue.Message{ReviewRequestID: "review-3"})

	// Body is ignored when the context already carries the decoded message.
	if err := HandleMessage(ctx, proc, "{not json"); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(proc.ids) != 1 || proc.ids[0] != "review-3" {
		t.Errorf("processed = %v", proc.ids)
	}
}

func TestHandleMessageRejectsInvalidPayloads(t *testing.T) {
	proc := &recordingProcessor{}
	if err := HandleMessage(context.Background(), proc, "{not json"); err == nil {
		t.Fatal("expected decode error")
	}
	if err := HandleMessage(context.Background(), nil, "{}"); err == nil {
		t.Fatal("expected configuration error")
	}
	if len(proc.ids) != 0 {
		t.Errorf("invalid payload reached the processor: %v", proc.ids)
	}
}
