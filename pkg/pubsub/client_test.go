package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/rocketcart/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	c := &Client{projectID: "rocket"}

	cases := map[string]string{
		"":                             "",
		"   ":                          "",
		"cart-notifications":           "projects/rocket/topics/cart-notifications",
		"projects/other/topics/notify": "projects/other/topics/notify",
		" cart-notifications ":         "projects/rocket/topics/cart-notifications",
	}
	for in, want := range cases {
		if got := c.topicResourceName(in); got != want {
			t.Fatalf("topicResourceName(%q) = %q, want %q", in, got, want)
		}
	}

	if got := (&Client{}).topicResourceName("t"); got != "" {
		t.Fatalf("expected empty name without project, got %q", got)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.Publisher("t") != nil {
		t.Fatal("expected nil publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{NotificationTopic: "t"}, nil)
	if err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
}
