package notify

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/types"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{}, f.err
}

type sinkFunc func(ctx context.Context, n types.Notification) error

func (f sinkFunc) Notify(ctx context.Context, n types.Notification) error { return f(ctx, n) }

func TestSNSPublishesJSON(t *testing.T) {
	fake := &fakeSNS{}
	n := types.NewNotification(types.OutOfStock, 3)

	err := NewSNS(fake, "arn:aws:sns:us-east-1:000000000000:cart").Notify(context.Background(), n)
	require.NoError(t, err)
	require.Len(t, fake.inputs, 1)

	in := fake.inputs[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:cart", *in.TopicArn)
	assert.Equal(t, "out_of_stock", *in.MessageAttributes["signal"].StringValue)

	var got types.Notification
	require.NoError(t, json.Unmarshal([]byte(*in.Message), &got))
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, int64(3), got.ProductID)
	assert.True(t, got.Error)
	assert.Equal(t, types.SignalMessages[types.OutOfStock], got.Message)
}

func TestLogLevels(t *testing.T) {
	logger, hook := test.NewNullLogger()
	l := NewLog(logger)

	require.NoError(t, l.Notify(context.Background(), types.NewNotification(types.Added, 1)))
	require.NoError(t, l.Notify(context.Background(), types.NewNotification(types.RemoveFailed, 2)))

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, log.InfoLevel, hook.AllEntries()[0].Level)
	assert.Equal(t, types.SignalMessages[types.Added], hook.AllEntries()[0].Message)
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "remove_failed", hook.LastEntry().Data["signal"])
}

func TestMultiTriesEverySink(t *testing.T) {
	var calls int
	boom := errors.New("boom")
	m := Multi{
		sinkFunc(func(context.Context, types.Notification) error { calls++; return boom }),
		nil,
		sinkFunc(func(context.Context, types.Notification) error { calls++; return nil }),
	}

	err := m.Notify(context.Background(), types.NewNotification(types.Updated, 1))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)

	assert.NoError(t, Multi{}.Notify(context.Background(), types.NewNotification(types.Updated, 1)))
}
