package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/angelmondragon/rocketcart/pkg/logger"
)

const defaultPublishTimeout = 10 * time.Second

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// PubSubSink forwards messages to a Pub/Sub topic. Delivery results are only
// logged; Report returns as soon as the message is queued.
type PubSubSink struct {
	pub       publisher
	sessionID string
	logg      *logger.Logger
	timeout   time.Duration
}

// NewPubSubSink wraps a topic publisher for one session.
func NewPubSubSink(p *gcppubsub.Publisher, sessionID string, logg *logger.Logger) *PubSubSink {
	var pub publisher
	if p != nil {
		pub = &gcpPublisher{Publisher: p}
	}
	return &PubSubSink{pub: pub, sessionID: sessionID, logg: logg, timeout: defaultPublishTimeout}
}

func (s *PubSubSink) Report(ctx context.Context, msg Message) {
	if s == nil || s.pub == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logError(ctx, "notification.encode_failed", err)
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	result := s.pub.Publish(publishCtx, &gcppubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"session_id": s.sessionID,
			"kind":       string(msg.Kind),
			"operation":  msg.Operation,
			"product_id": strconv.FormatInt(msg.ProductID, 10),
		},
	})
	if result == nil {
		cancel()
		s.logError(ctx, "notification.publish_failed", errors.New("publisher returned nil result"))
		return
	}

	go func() {
		defer cancel()
		if _, err := result.Get(publishCtx); err != nil {
			s.logError(publishCtx, "notification.publish_failed", err)
		}
	}()
}

func (s *PubSubSink) logError(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(s.logg.WithSessionID(ctx, s.sessionID), msg, err)
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
