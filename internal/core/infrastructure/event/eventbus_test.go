package event

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

// testEvent 实现event.Event接口，用于测试PublishEvent
type testEvent struct {
	eventType event.EventType
	data      interface{}
}

func (e *testEvent) Type() event.EventType { return e.eventType }
func (e *testEvent) Data() interface{}     { return e.data }

func boolPtr(b bool) *bool { return &b }

// TestEventBusPublishSubscribe 测试基础的发布订阅
func TestEventBusPublishSubscribe(t *testing.T) {
	eventBus := New(eventconfig.New(nil))

	t.Run("同步订阅接收事件", func(t *testing.T) {
		var receivedData string
		var wg sync.WaitGroup
		wg.Add(1)

		handler := func(data string) {
			receivedData = data
			wg.Done()
		}

		err := eventBus.Subscribe(event.EventType("test.sync.event"), handler)
		require.NoError(t, err)

		eventBus.Publish(event.EventType("test.sync.event"), "hello relayer")
		wg.Wait()

		assert.Equal(t, "hello relayer", receivedData)

		// 取消订阅后不再接收
		err = eventBus.Unsubscribe(event.EventType("test.sync.event"), handler)
		require.NoError(t, err)

		receivedData = ""
		eventBus.Publish(event.EventType("test.sync.event"), "should not receive")
		assert.Equal(t, "", receivedData)
	})

	t.Run("异步订阅接收事件", func(t *testing.T) {
		var asyncData string
		var wg sync.WaitGroup
		wg.Add(1)

		err := eventBus.SubscribeAsync(event.EventType("test.async.event"), func(data string) {
			asyncData = data
			wg.Done()
		}, false)
		require.NoError(t, err)

		eventBus.Publish(event.EventType("test.async.event"), "async data")

		eventBus.WaitAsync()
		wg.Wait()

		assert.Equal(t, "async data", asyncData)
	})

	t.Run("PublishEvent走相同的发布路径", func(t *testing.T) {
		var received *types.TokenRegisteredEventData
		var wg sync.WaitGroup
		wg.Add(1)

		err := eventBus.Subscribe(event.EventTypeTokenRegistered, func(data *types.TokenRegisteredEventData) {
			received = data
			wg.Done()
		})
		require.NoError(t, err)

		payload := &types.TokenRegisteredEventData{Mint: "testMint", SwapRate: 100}
		eventBus.PublishEvent(&testEvent{eventType: event.EventTypeTokenRegistered, data: payload})
		wg.Wait()

		require.NotNil(t, received)
		assert.Equal(t, "testMint", received.Mint)
		assert.Equal(t, uint64(100), received.SwapRate)
	})

	t.Run("HasCallback反映订阅状态", func(t *testing.T) {
		assert.False(t, eventBus.HasCallback(event.EventType("test.nobody.listens")))

		err := eventBus.Subscribe(event.EventType("test.somebody.listens"), func() {})
		require.NoError(t, err)
		assert.True(t, eventBus.HasCallback(event.EventType("test.somebody.listens")))
	})
}

// TestEventBusDisabled 测试事件系统禁用时的静默行为
func TestEventBusDisabled(t *testing.T) {
	disabledCfg := eventconfig.New(&types.UserEventConfig{Enabled: boolPtr(false)})
	eventBus := New(disabledCfg)

	var delivered bool
	err := eventBus.Subscribe(event.EventType("test.disabled.event"), func() {
		delivered = true
	})
	require.NoError(t, err, "禁用时订阅应静默成功")

	eventBus.Publish(event.EventType("test.disabled.event"))
	eventBus.WaitAsync()

	assert.False(t, delivered, "禁用时不应分发事件")
	assert.False(t, eventBus.HasCallback(event.EventType("test.disabled.event")))

	// 历史功能同样保持静默
	require.NoError(t, eventBus.EnableEventHistory(event.EventTypeTokenRegistered, 10))
	eventBus.Publish(event.EventTypeTokenRegistered, "payload")
	assert.Nil(t, eventBus.GetEventHistory(event.EventTypeTokenRegistered))
}

// TestEventHistory 测试事件历史记录
func TestEventHistory(t *testing.T) {
	eventBus := New(eventconfig.New(nil))
	historyType := event.EventType("test.history.event")

	t.Run("未启用历史时返回nil", func(t *testing.T) {
		eventBus.Publish(historyType, "before enable")
		assert.Nil(t, eventBus.GetEventHistory(historyType))
	})

	t.Run("启用后按从旧到新记录", func(t *testing.T) {
		require.NoError(t, eventBus.EnableEventHistory(historyType, 5))

		for i := 0; i < 3; i++ {
			eventBus.Publish(historyType, fmt.Sprintf("payload-%d", i))
		}

		history := eventBus.GetEventHistory(historyType)
		require.Len(t, history, 3)
		assert.Equal(t, "payload-0", history[0])
		assert.Equal(t, "payload-2", history[2])
	})

	t.Run("超过上限时淘汰最旧的记录", func(t *testing.T) {
		for i := 3; i < 8; i++ {
			eventBus.Publish(historyType, fmt.Sprintf("payload-%d", i))
		}

		history := eventBus.GetEventHistory(historyType)
		require.Len(t, history, 5, "历史长度不应超过上限")
		assert.Equal(t, "payload-3", history[0], "最旧的记录应被淘汰")
		assert.Equal(t, "payload-7", history[4])
	})

	t.Run("返回的是副本", func(t *testing.T) {
		history := eventBus.GetEventHistory(historyType)
		require.NotEmpty(t, history)
		history[0] = "mutated"

		fresh := eventBus.GetEventHistory(historyType)
		assert.Equal(t, "payload-3", fresh[0], "外部修改不应影响内部历史")
	})

	t.Run("收紧上限时裁剪已有记录", func(t *testing.T) {
		require.NoError(t, eventBus.EnableEventHistory(historyType, 2))

		history := eventBus.GetEventHistory(historyType)
		require.Len(t, history, 2)
		assert.Equal(t, "payload-6", history[0])
		assert.Equal(t, "payload-7", history[1])
	})

	t.Run("禁用后历史被清空", func(t *testing.T) {
		require.NoError(t, eventBus.DisableEventHistory(historyType))
		assert.Nil(t, eventBus.GetEventHistory(historyType))

		// 禁用后发布不再记录
		eventBus.Publish(historyType, "after disable")
		assert.Nil(t, eventBus.GetEventHistory(historyType))
	})

	t.Run("maxSize非正数时使用配置默认值", func(t *testing.T) {
		defaultType := event.EventType("test.history.default")
		require.NoError(t, eventBus.EnableEventHistory(defaultType, 0))

		eventBus.Publish(defaultType, "entry")
		assert.Len(t, eventBus.GetEventHistory(defaultType), 1)
	})

	t.Run("多参数发布存参数切片", func(t *testing.T) {
		multiType := event.EventType("test.history.multi")
		require.NoError(t, eventBus.EnableEventHistory(multiType, 5))

		eventBus.Publish(multiType, "first", "second")

		history := eventBus.GetEventHistory(multiType)
		require.Len(t, history, 1)
		args, ok := history[0].([]interface{})
		require.True(t, ok)
		assert.Equal(t, []interface{}{"first", "second"}, args)
	})
}

// TestEventBusGetConfig 测试运行时配置导出
func TestEventBusGetConfig(t *testing.T) {
	eventBus := New(eventconfig.New(nil))

	busConfig, err := eventBus.GetConfig()
	require.NoError(t, err)
	require.NotNil(t, busConfig)

	assert.Equal(t, 100, busConfig.MaxEventHistory)
	assert.True(t, busConfig.DefaultAsync)
}

// TestPublishedCount 测试发布计数
func TestPublishedCount(t *testing.T) {
	eventBus := New(eventconfig.New(nil)).(*EventBus)

	assert.Equal(t, uint64(0), eventBus.PublishedCount())

	for i := 0; i < 4; i++ {
		eventBus.Publish(event.EventType("test.counter.event"), i)
	}

	assert.Equal(t, uint64(4), eventBus.PublishedCount())
}
