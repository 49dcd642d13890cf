package heartbeat

import (
	"context"
	"testing"
	"time"

	"ina260-go/bus"
	"ina260-go/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, sub *bus.Subscription, within time.Duration) types.Heartbeat {
	t.Helper()
	select {
	case m := <-sub.Channel():
		hb, ok := m.Payload.(types.Heartbeat)
		require.True(t, ok)
		return hb
	case <-time.After(within):
		t.Fatal("no heartbeat")
		return types.Heartbeat{}
	}
}

func TestHeartbeatFollowsConfig(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("hb")
	cli := b.NewConnection("cli")
	sub := cli.Subscribe(TopicHeartbeat)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s := &Service{}
	go func() { s.Run(ctx, conn); close(done) }()

	first := next(t, sub, time.Second)
	assert.Equal(t, uint64(1), first.Seq)

	cli.Publish(cli.NewMessage(topicConfigHeartbeat, Config{IntervalMs: 10}, true))
	second := next(t, sub, time.Second)
	third := next(t, sub, time.Second)
	assert.Equal(t, uint64(2), second.Seq)
	assert.Equal(t, uint64(3), third.Seq)
	assert.GreaterOrEqual(t, third.UptimeMs, second.UptimeMs)

	cancel()
	<-done
}
