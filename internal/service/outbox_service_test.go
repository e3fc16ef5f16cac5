package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"Care_Community/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFailure_QueuesOutbox(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oak, manager := env.community(t, "Oak")
	env.room(t, manager, "101")
	resident := env.user(t, "r@example.com", model.RoleResident, &oak.ID)

	env.events.fail(errors.New("broker down"))
	task, err := env.svc.Tasks.IntakeHuman(ctx, resident, TaskInput{Description: "need a blanket"})
	require.NoError(t, err, "publish failure must not fail intake")

	due, err := env.store.Outbox.ListDue(ctx, 10, MaxRelayRetry)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, EventTaskCreated, due[0].EventType)
	assert.Equal(t, task.ID, due[0].TaskID)

	require.NotNil(t, env.svc.Relayer)
	assert.Zero(t, env.svc.Relayer.DrainOnce(ctx))
	due, _ = env.store.Outbox.ListDue(ctx, 10, MaxRelayRetry)
	require.Len(t, due, 1)
	assert.Equal(t, model.OutboxFailed, due[0].Status)
	assert.Equal(t, 1, due[0].Retry)

	env.events.fail(nil)
	assert.Equal(t, 1, env.svc.Relayer.DrainOnce(ctx))
	require.Equal(t, 1, env.events.count())
	var ev TaskEvent
	require.NoError(t, json.Unmarshal(env.events.events[0].value, &ev))
	assert.Equal(t, task.ID, ev.TaskID)
	assert.Equal(t, EventTaskCreated, env.events.events[0].typ)

	due, _ = env.store.Outbox.ListDue(ctx, 10, MaxRelayRetry)
	assert.Empty(t, due)
}

func TestOutboxRelayer_StopsAfterMaxRetry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.Outbox.Enqueue(ctx, &model.TaskOutbox{EventType: EventTaskCreated, TaskID: 1, Key: "1", Payload: "{}"}))

	env.events.fail(errors.New("broker down"))
	relayer := NewOutboxRelayer(env.store.Outbox, env.events, env.svc.Tasks.log)
	relayer.maxRetry = 2
	relayer.DrainOnce(ctx)
	relayer.DrainOnce(ctx)

	due, err := env.store.Outbox.ListDue(ctx, 10, relayer.maxRetry)
	require.NoError(t, err)
	assert.Empty(t, due)

	env.events.fail(nil)
	assert.Zero(t, relayer.DrainOnce(ctx))
	assert.Zero(t, env.events.count())
}
