package mqtt_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/mqtt"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	topic    string
	retained bool
	payload  []byte
}

type recorder struct {
	messages []message
	fail     bool
}

func (r *recorder) Publish(topic string, _ byte, retained bool, payload []byte) error {
	if r.fail {
		return errors.New("broker gone")
	}
	r.messages = append(r.messages, message{topic: topic, retained: retained, payload: payload})
	return nil
}

func (r *recorder) on(topic string) []message {
	var out []message
	for _, m := range r.messages {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

func TestBridge_PublishesCommittedRenderState(t *testing.T) {
	rec := &recorder{}
	bridge := mqtt.NewBridge(rec, "studio", 1, nil)
	ed := runtime.New(runtime.WithLifecycleHooks(bridge.Hooks()))
	ctx := context.Background()

	require.NoError(t, ed.Open(ctx))
	_, err := ed.Create(ctx, domain.TagEntity)
	require.NoError(t, err)
	_, err = ed.Create(ctx, "Teapot")
	require.Error(t, err)

	renders := rec.on(mqtt.RenderTopic("studio"))
	require.Len(t, renders, 2, "open and create commit, the failed create does not")
	assert.True(t, renders[1].retained)

	var commit domain.CommitEvent
	require.NoError(t, json.Unmarshal(renders[1].payload, &commit))
	assert.Equal(t, "create", commit.Command)
	assert.Len(t, commit.Render.Entities, 3)
	assert.Len(t, commit.Render.Lights, 1)
}

func TestBridge_PublishesFailedSavesAsEvents(t *testing.T) {
	rec := &recorder{}
	bridge := mqtt.NewBridge(rec, "", 0, nil)
	ed := runtime.New(
		runtime.WithLifecycleHooks(bridge.Hooks()),
		runtime.WithDialog(memory.NewDialog()),
	)
	ctx := context.Background()

	err := ed.Load(ctx, "missing.json")
	require.ErrorIs(t, err, domain.ErrDocumentNotFound)

	assert.Empty(t, rec.on(mqtt.RenderTopic(mqtt.DefaultTopic)), "rolled back loads are not rendered")
	events := rec.on(mqtt.EventsTopic(mqtt.DefaultTopic))
	require.Len(t, events, 1)
	assert.False(t, events[0].retained)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(events[0].payload, &payload))
	assert.Equal(t, "io_failure", payload["outcome"])
	assert.Equal(t, "missing.json", payload["path"])
}

func TestBridge_PublishFailureDoesNotFailCommands(t *testing.T) {
	rec := &recorder{fail: true}
	bridge := mqtt.NewBridge(rec, "studio", 1, nil)
	ed := runtime.New(runtime.WithLifecycleHooks(bridge.Hooks()))

	_, err := ed.Create(context.Background(), domain.TagGroup)
	assert.NoError(t, err)
}
