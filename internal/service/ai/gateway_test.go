package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	reply    string
	chunks   []string
	err      error
	block    bool
	received [][]*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.received = append(f.received, input)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.received = append(f.received, input)
	if f.err != nil {
		return nil, f.err
	}
	msgs := make([]*schema.Message, 0, len(f.chunks))
	for _, c := range f.chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

func TestGatewayCompleteReturnsContent(t *testing.T) {
	fake := &fakeChatModel{reply: "hello"}
	gw := NewGateway(fake, time.Second)

	got, err := gw.Complete(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	require.Len(t, fake.received, 1)
	assert.Equal(t, schema.User, fake.received[0][0].Role)
}

func TestGatewayWrapsTransportError(t *testing.T) {
	cause := errors.New("401 unauthorized")
	gw := NewGateway(&fakeChatModel{err: cause}, time.Second)

	_, err := gw.Complete(context.Background(), nil)
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.ErrorIs(t, err, cause)
}

func TestGatewayEmptyCompletionIsError(t *testing.T) {
	gw := NewGateway(&fakeChatModel{reply: "  \n"}, time.Second)

	_, err := gw.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGatewayTimeout(t *testing.T) {
	gw := NewGateway(&fakeChatModel{block: true}, 20*time.Millisecond)

	_, err := gw.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDisabledCompleterFails(t *testing.T) {
	_, err := Disabled{}.Complete(context.Background(), nil)
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGatewayStreamCompleteDeliversChunks(t *testing.T) {
	fake := &fakeChatModel{chunks: []string{"The Classic ", "", "Tee costs $20."}}
	gw := NewGateway(fake, time.Second)

	var got []string
	text, err := gw.StreamComplete(context.Background(), []*schema.Message{schema.UserMessage("price?")}, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "The Classic Tee costs $20.", text)
	assert.Equal(t, []string{"The Classic ", "Tee costs $20."}, got)
}

func TestGatewayStreamCompleteEmptyIsError(t *testing.T) {
	gw := NewGateway(&fakeChatModel{chunks: []string{" "}}, time.Second)

	_, err := gw.StreamComplete(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGatewayStreamCompleteStopsWhenSinkFails(t *testing.T) {
	gw := NewGateway(&fakeChatModel{chunks: []string{"a", "b"}}, time.Second)
	sinkErr := errors.New("client gone")

	calls := 0
	_, err := gw.StreamComplete(context.Background(), nil, func(string) error {
		calls++
		return sinkErr
	})
	assert.ErrorIs(t, err, sinkErr)
	assert.Equal(t, 1, calls)
}
