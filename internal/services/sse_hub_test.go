package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TranKhoaa/AITChatbot/internal/services/ingest"
)

func TestSSEHubBroadcastReachesOnlyOwner(t *testing.T) {
	hub := NewSSEHub()

	ch1 := hub.RegisterClient("admin-1")
	ch2 := hub.RegisterClient("admin-2")
	defer hub.UnregisterClient("admin-1", ch1)
	defer hub.UnregisterClient("admin-2", ch2)

	hub.Broadcast("admin-1", "file_processed", map[string]string{"filename": "a.txt"})

	select {
	case msg := <-ch1:
		assert.Contains(t, string(msg), "event: file_processed")
		assert.Contains(t, string(msg), `"filename":"a.txt"`)
	case <-time.After(time.Second):
		t.Fatal("owner did not receive the broadcast")
	}

	select {
	case msg := <-ch2:
		t.Fatalf("other admin received message: %s", msg)
	default:
	}
}

func TestSSEHubMultipleClientsPerAdmin(t *testing.T) {
	hub := NewSSEHub()

	ch1 := hub.RegisterClient("admin-1")
	ch2 := hub.RegisterClient("admin-1")
	require.Equal(t, 2, hub.GetClientCount("admin-1"))

	hub.Broadcast("admin-1", "file_processed", map[string]string{"status": "success"})
	for _, ch := range []chan []byte{ch1, ch2} {
		select {
		case msg := <-ch:
			assert.Contains(t, string(msg), `"status":"success"`)
		case <-time.After(time.Second):
			t.Fatal("client missed the broadcast")
		}
	}

	hub.UnregisterClient("admin-1", ch1)
	assert.Equal(t, 1, hub.GetClientCount("admin-1"))
	hub.UnregisterClient("admin-1", ch2)
	assert.Equal(t, 0, hub.GetClientCount("admin-1"))
}

func TestSSEHubFullChannelDoesNotBlock(t *testing.T) {
	hub := NewSSEHub()

	ch := hub.RegisterClient("admin-1")
	defer hub.UnregisterClient("admin-1", ch)

	// The client buffer holds 10 messages; extra broadcasts are dropped
	// instead of blocking the notifier.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			hub.Broadcast("admin-1", "file_processed", map[string]int{"n": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
	assert.Len(t, ch, 10)
}

func TestSSEHubHeartbeatIsCommentFrame(t *testing.T) {
	hub := NewSSEHub()

	ch := hub.RegisterClient("admin-1")
	defer hub.UnregisterClient("admin-1", ch)

	hub.SendHeartbeat("admin-1")

	select {
	case msg := <-ch:
		require.True(t, len(msg) > 0)
		// Comment frames start with ":" so EventSource ignores them.
		assert.Equal(t, byte(':'), msg[0])
		assert.Contains(t, string(msg), "heartbeat")
		assert.True(t, string(msg[len(msg)-2:]) == "\n\n")
	case <-time.After(time.Second):
		t.Fatal("client did not receive the heartbeat")
	}

	// A full channel is skipped, not blocked on.
	for i := 0; i < 10; i++ {
		hub.Broadcast("admin-1", "file_processed", map[string]string{"filename": "a.txt"})
	}
	hub.SendHeartbeat("admin-1")
	assert.Len(t, ch, 10)
}

func TestNotifierForwardsCompletionsToSSE(t *testing.T) {
	hub := NewSSEHub()
	ch := hub.RegisterClient("admin-1")
	defer hub.UnregisterClient("admin-1", ch)

	events := make(chan ingest.Completion, 2)
	notifier := NewNotifier(hub, nil)
	notifier.Start(events)

	events <- ingest.Completion{
		BatchID: "batch-1",
		AdminID: "admin-1",
		Result:  ingest.Result{Filename: "a.txt", Status: ingest.StatusSuccess, FileID: "f1", ChunkCount: 3},
	}
	close(events)
	notifier.Wait()

	select {
	case msg := <-ch:
		assert.Contains(t, string(msg), `"batch_id":"batch-1"`)
		assert.Contains(t, string(msg), `"filename":"a.txt"`)
		assert.Contains(t, string(msg), `"status":"success"`)
	case <-time.After(time.Second):
		t.Fatal("completion did not reach the SSE client")
	}
}
