package main

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"resume-review-backend/internal/queue"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeProcessor struct {
	ids []string
}

func (f *fakeProcessor) Process(ctx context.Context, reviewRequestID string) {
	f.ids = append(f.ids, reviewRequestID)
}

func TestWorkerProcessesAndDeletesMessage(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	msgBody, err := queue.EncodeMessage(queue.Message{ReviewRequestID: "review-1", RequestID: "req-1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	msg := sqstypes.Message{
		MessageId:     aws.String("m1"),
		ReceiptHandle: aws.String("r1"),
		Body:          aws.String(string(msgBody)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}

	handleMessage(context.Background(), client, "queue", proc, msg)

	if len(proc.ids) != 1 || proc.ids[0] != "review-1" {
		t.Fatalf("processed = %v", proc.ids)
	}
	if len(client.deleted) != 1 || client.deleted[0] != "r1" {
		t.Fatalf("deleted = %v", client.deleted)
	}
}

func TestWorkerDiscardsInvalidJSON(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m2"),
		ReceiptHandle: aws.String("r2"),
		Body:          aws.String("{bad-json"),
	}

	handleMessage(context.Background(), client, "queue", proc, msg)

	if len(proc.ids) != 0 {
		t.Fatalf("invalid payload reached the processor: %v", proc.ids)
	}
	if len(client.deleted) != 1 {
		t.Fatalf("unrecoverable message not deleted: %v", client.deleted)
	}
}

func TestWorkerDiscardsEmptyBody(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m3"),
		ReceiptHandle: aws.String("r3"),
		Body:          aws.String(""),
	}

	handleMessage(context.Background(), client, "queue", proc, msg)

	if len(proc.ids) != 0 {
		t.Fatalf("empty payload reached the processor: %v", proc.ids)
	}
	if len(client.deleted) != 1 {
		t.Fatalf("empty message not deleted: %v", client.deleted)
	}
}

func TestWorkerDiscardsMissingReviewID(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	msgBody, _ := queue.EncodeMessage(queue.Message{RequestID: "req-4"})
	msg := sqstypes.Message{
		MessageId:     aws.String("m4"),
		ReceiptHandle: aws.String("r4"),
		Body:          aws.String(string(msgBody)),
	}

	handleMessage(context.Background(), client, "queue", proc, msg)

	if len(proc.ids) != 0 {
		t.Fatalf("incomplete payload reached the processor: %v", proc.ids)
	}
	if len(client.deleted) != 1 {
		t.Fatalf("incomplete message not deleted: %v", client.deleted)
	}
}
