package coordinator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/coordinator"
)

type titleSelected struct {
	TitleID string
}

func Test_Notifier_Emit_DeliversToAttachedObserver(t *testing.T) {
	// arrange
	notifier := coordinator.NewNotifier[titleSelected]()

	var received []titleSelected
	notifier.Attach(func(notification titleSelected) {
		received = append(received, notification)
	})

	// act
	delivered := notifier.Emit(titleSelected{TitleID: "42"})

	// assert
	assert.True(t, delivered, "the notification should be delivered")
	require.Len(t, received, 1, "the observer should have received exactly one notification")
	assert.Equal(t, "42", received[0].TitleID)
}

func Test_Notifier_Emit_DropsNotificationWithoutObserver(t *testing.T) {
	// arrange
	notifier := coordinator.NewNotifier[titleSelected]()

	// act
	delivered := notifier.Emit(titleSelected{TitleID: "42"})

	// assert
	assert.False(t, delivered, "without an observer the notification should be dropped")
}

func Test_Notifier_Attach_DoesNotReplayPastNotifications(t *testing.T) {
	// arrange
	notifier := coordinator.NewNotifier[titleSelected]()
	notifier.Emit(titleSelected{TitleID: "42"})

	var received []titleSelected

	// act
	notifier.Attach(func(notification titleSelected) {
		received = append(received, notification)
	})

	// assert
	assert.Empty(t, received, "an observer attached later must not see past notifications")
}

func Test_Notifier_Detach_StopsDelivery(t *testing.T) {
	// arrange
	notifier := coordinator.NewNotifier[titleSelected]()

	var received []titleSelected
	notifier.Attach(func(notification titleSelected) {
		received = append(received, notification)
	})
	notifier.Detach()

	// act
	delivered := notifier.Emit(titleSelected{TitleID: "42"})

	// assert
	assert.False(t, delivered)
	assert.Empty(t, received, "a detached observer must not receive notifications")
}

func Test_Notifier_Attach_ReplacesPreviousObserver(t *testing.T) {
	// arrange
	notifier := coordinator.NewNotifier[titleSelected]()

	var first, second []titleSelected
	notifier.Attach(func(notification titleSelected) { first = append(first, notification) })
	notifier.Attach(func(notification titleSelected) { second = append(second, notification) })

	// act
	notifier.Emit(titleSelected{TitleID: "42"})

	// assert
	assert.Empty(t, first, "the replaced observer must not receive notifications")
	require.Len(t, second, 1, "only the current observer should receive the notification")
}

func Test_Notifier_Emit_ContainsObserverPanic(t *testing.T) {
	// arrange
	notifier := coordinator.NewNotifier[titleSelected]()
	notifier.Attach(func(_ titleSelected) {
		panic("observer exploded")
	})

	// act + assert
	var delivered bool
	assert.NotPanics(t, func() {
		delivered = notifier.Emit(titleSelected{TitleID: "42"})
	}, "a panicking observer must not crash the emitter")
	assert.False(t, delivered, "a panicking observer counts as undelivered")
}
