package queue

import "testing"

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		ReviewRequestID: "rr-1",
		RequestID:       "req-1",
		EnqueuedAt:      "2026-01-02T03:04:05Z",
		Version:         1,
	}
	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	decoded, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if decoded != msg {
		t.Fatalf("decoded = %+v, want %+v", decoded, msg)
	}
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	if _, err := DecodeMessage([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}
