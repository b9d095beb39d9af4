package telegram

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogNotifierWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	notifier := NewLogNotifier(zerolog.New(&buf))

	if err := notifier.Send(context.Background(), 100, "payment due"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"chat_id":100`) || !strings.Contains(out, "payment due") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestLogNotifierIgnoresChatZero(t *testing.T) {
	var buf bytes.Buffer
	notifier := NewLogNotifier(zerolog.New(&buf))

	if err := notifier.Send(context.Background(), 0, "operator alert"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if !strings.Contains(buf.String(), "operator alert") {
		t.Fatalf("expected message to be logged, got %s", buf.String())
	}
}
