package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSForwarderSendsEnvelope(t *testing.T) {
	client := &fakeSQS{}
	f := newSQSForwarder(client, "https://sqs.local/queue")

	entry := OutboxEntry{ID: uuid.New(), Type: TypeAppointmentCreated, Payload: json.RawMessage(`{"appointment_id":"a1"}`)}
	require.NoError(t, f.Handle(context.Background(), entry))
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, "https://sqs.local/queue", aws.ToString(in.QueueUrl))
	assert.Equal(t, TypeAppointmentCreated, aws.ToString(in.MessageAttributes["event_type"].StringValue))

	var body OutboxEntry
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &body))
	assert.Equal(t, entry.ID, body.ID)
	assert.JSONEq(t, `{"appointment_id":"a1"}`, string(body.Payload))
}
