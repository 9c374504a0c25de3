package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-messaging-gateway/core"
)

type memoryTransport struct {
	mu         sync.Mutex
	published  []Publishing
	replies    chan Reply
	publishErr error
	closeOnce  sync.Once
}

func newMemoryTransport() *memoryTransport {
	return &memoryTransport{replies: make(chan Reply, 16)}
}

func (m *memoryTransport) Publish(_ context.Context, publishing Publishing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, publishing)
	return nil
}

func (m *memoryTransport) Replies() <-chan Reply { return m.replies }

func (m *memoryTransport) Close() error {
	m.closeOnce.Do(func() { close(m.replies) })
	return nil
}

func (m *memoryTransport) lastPublished(t *testing.T) Publishing {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.published) == 0 {
		t.Fatal("expected a published request")
	}
	return m.published[len(m.published)-1]
}

// reply answers the next published request after publishing happens.
func (m *memoryTransport) reply(correlationID string, body []byte) {
	m.replies <- Reply{CorrelationID: correlationID, Body: body}
}

func packetBody(t *testing.T, response any) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{"response": response, "isDisposed": true})
	if err != nil {
		t.Fatalf("marshal reply packet: %v", err)
	}
	return body
}

func TestCallRoundTrip(t *testing.T) {
	transport := newMemoryTransport()
	defer transport.Close()
	client := NewClient(transport)

	done := make(chan struct{})
	var got core.ReplyPayload
	var callErr error
	go func() {
		defer close(done)
		got, callErr = client.Call(context.Background(), "messages_queue", core.DispatchEnvelope{
			Operation: "whatsapp.message.text",
			Payload:   map[string]any{"to": "16505550101", "text": "hi"},
		})
	}()

	published := waitForPublish(t, transport)
	var packet requestPacket
	if err := json.Unmarshal(published.Body, &packet); err != nil {
		t.Fatalf("decode request packet: %v", err)
	}
	if packet.Pattern != "whatsapp.message.text" {
		t.Fatalf("expected operation as pattern, got %q", packet.Pattern)
	}
	if packet.ID != published.CorrelationID {
		t.Fatalf("expected packet id to match correlation id")
	}

	transport.reply(published.CorrelationID, packetBody(t, map[string]any{"messageId": "wamid.out.1"}))
	<-done
	if callErr != nil {
		t.Fatalf("call: %v", callErr)
	}
	var response map[string]any
	if err := json.Unmarshal(got, &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response["messageId"] != "wamid.out.1" {
		t.Fatalf("expected backend response relayed, got %v", response)
	}
}

func TestCallBackendError(t *testing.T) {
	transport := newMemoryTransport()
	defer transport.Close()
	client := NewClient(transport)

	done := make(chan error, 1)
	go func() {
		_, err := client.Call(context.Background(), "messages_queue", core.DispatchEnvelope{
			Operation: "whatsapp.message.text", Payload: map[string]any{},
		})
		done <- err
	}()

	published := waitForPublish(t, transport)
	transport.reply(published.CorrelationID, []byte(`{"err": "recipient not found", "isDisposed": true}`))

	err := <-done
	if err == nil {
		t.Fatal("expected backend error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if richErr.TextCode != core.GatewayErrorBackend {
		t.Fatalf("expected backend text code, got %q", richErr.TextCode)
	}
	if richErr.Metadata["detail"] != "recipient not found" {
		t.Fatalf("expected backend detail preserved, got %v", richErr.Metadata)
	}
}

func TestCallTimeout(t *testing.T) {
	transport := newMemoryTransport()
	defer transport.Close()
	client := NewClient(transport)

	start := time.Now()
	_, err := client.CallWithTimeout(context.Background(), "messages_queue", core.DispatchEnvelope{
		Operation: "facebook.health.check",
	}, 30*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("call resolved before the deadline: %s", elapsed)
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if richErr.TextCode != core.GatewayErrorTimeout {
		t.Fatalf("expected timeout text code, got %q", richErr.TextCode)
	}
}

func TestConcurrentCallsResolveIndependently(t *testing.T) {
	transport := newMemoryTransport()
	defer transport.Close()
	client := NewClient(transport)

	const calls = 5
	results := make([]core.ReplyPayload, calls)
	errs := make([]error, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = client.Call(context.Background(), "messages_queue", core.DispatchEnvelope{
				Operation: "whatsapp.message.text",
				Payload:   map[string]any{"index": i},
			})
		}(i)
	}

	published := waitForPublishCount(t, transport, calls)

	// Answer in reverse publish order; each call must still receive the
	// reply carrying its own correlation id.
	for i := len(published) - 1; i >= 0; i-- {
		var packet requestPacket
		if err := json.Unmarshal(published[i].Body, &packet); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		transport.reply(published[i].CorrelationID,
			packetBody(t, map[string]any{"echo": packet.ID}))
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < calls; i++ {
		if errs[i] != nil {
			t.Fatalf("call %d: %v", i, errs[i])
		}
		var response map[string]string
		if err := json.Unmarshal(results[i], &response); err != nil {
			t.Fatalf("decode response %d: %v", i, err)
		}
		if seen[response["echo"]] {
			t.Fatalf("correlation id %q resolved twice", response["echo"])
		}
		seen[response["echo"]] = true
	}
}

func TestDuplicateRepliesIgnored(t *testing.T) {
	transport := newMemoryTransport()
	defer transport.Close()
	client := NewClient(transport)

	done := make(chan error, 1)
	go func() {
		_, err := client.Call(context.Background(), "messages_queue", core.DispatchEnvelope{
			Operation: "whatsapp.health.check",
		})
		done <- err
	}()

	published := waitForPublish(t, transport)
	body := packetBody(t, "ok")
	transport.reply(published.CorrelationID, body)
	transport.reply(published.CorrelationID, body)
	transport.reply("never-issued", body)

	if err := <-done; err != nil {
		t.Fatalf("call: %v", err)
	}
	// Drain happened without a second waiter; nothing to assert beyond the
	// resolver not panicking or blocking.
}

func TestNonPacketReplyRelayedVerbatim(t *testing.T) {
	transport := newMemoryTransport()
	defer transport.Close()
	client := NewClient(transport)

	done := make(chan struct{})
	var got core.ReplyPayload
	var callErr error
	go func() {
		defer close(done)
		got, callErr = client.Call(context.Background(), "messages_queue", core.DispatchEnvelope{
			Operation: "facebook.webhook.message",
		})
	}()

	published := waitForPublish(t, transport)
	transport.reply(published.CorrelationID, []byte(`{"status":"received"}`))
	<-done
	if callErr != nil {
		t.Fatalf("call: %v", callErr)
	}
	if string(got) != `{"status":"received"}` {
		t.Fatalf("expected raw reply relayed, got %s", got)
	}
}

func TestPublishFailureSurfacesTransportError(t *testing.T) {
	transport := newMemoryTransport()
	defer transport.Close()
	transport.publishErr = goerrors.Wrap(errors.New("connection refused"),
		goerrors.CategoryExternal, "dispatch: publish request").
		WithTextCode(core.GatewayErrorTransport)
	client := NewClient(transport)

	_, err := client.Call(context.Background(), "messages_queue", core.DispatchEnvelope{
		Operation: "whatsapp.message.text",
	})
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %v", err)
	}
	if richErr.TextCode != core.GatewayErrorTransport {
		t.Fatalf("expected transport text code, got %q", richErr.TextCode)
	}
}

func TestCallRejectsEmptyOperation(t *testing.T) {
	transport := newMemoryTransport()
	defer transport.Close()
	client := NewClient(transport)

	_, err := client.Call(context.Background(), "messages_queue", core.DispatchEnvelope{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != core.GatewayErrorValidation {
		t.Fatalf("expected validation text code, got %v", err)
	}
}

func waitForPublish(t *testing.T, transport *memoryTransport) Publishing {
	t.Helper()
	return waitForPublishCount(t, transport, 1)[0]
}

func waitForPublishCount(t *testing.T, transport *memoryTransport, count int) []Publishing {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		transport.mu.Lock()
		if len(transport.published) >= count {
			published := make([]Publishing, count)
			copy(published, transport.published[:count])
			transport.mu.Unlock()
			return published
		}
		transport.mu.Unlock()
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("expected %d published requests", count)
	return nil
}
