package mqtt

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// DefaultTopic is the topic prefix used when none is configured.
const DefaultTopic = "arbor"

// StatusTopic carries the retained online/offline status of the editor.
func StatusTopic(prefix string) string { return prefix + "/status" }

// RenderTopic carries the retained render-registry membership after the last commit.
func RenderTopic(prefix string) string { return prefix + "/render" }

// EventsTopic carries save and load notifications.
func EventsTopic(prefix string) string { return prefix + "/events" }

// Bridge turns editor lifecycle events into MQTT messages. Only committed state is
// published, so a renderer following RenderTopic never sees a rolled back transaction.
type Bridge struct {
	pub    Publisher
	topic  string
	qos    byte
	logger *slog.Logger
}

// NewBridge creates a bridge publishing under topic. A nil logger discards.
func NewBridge(pub Publisher, topic string, qos byte, logger *slog.Logger) *Bridge {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bridge{pub: pub, topic: topic, qos: qos, logger: logger}
}

// Hooks returns the lifecycle hooks to register with the editor.
func (b *Bridge) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommit: b.onCommit,
		OnSave:   b.onPersist,
		OnLoad:   b.onPersist,
	}
}

func (b *Bridge) onCommit(ctx context.Context, e *domain.CommitEvent) {
	b.publish(ctx, RenderTopic(b.topic), true, e)
}

type persistMessage struct {
	*domain.PersistEvent
	Outcome string `json:"outcome"`
}

func (b *Bridge) onPersist(ctx context.Context, e *domain.PersistEvent) {
	b.publish(ctx, EventsTopic(b.topic), false, persistMessage{PersistEvent: e, Outcome: domain.Classify(e.Err)})
}

// publish never fails the command; the renderer catches up on the next commit.
func (b *Bridge) publish(ctx context.Context, topic string, retained bool, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to encode mqtt payload", "topic", topic, "error", err)
		return
	}
	if err := b.pub.Publish(topic, b.qos, retained, payload); err != nil {
		b.logger.WarnContext(ctx, "failed to publish", "topic", topic, "error", err)
	}
}
