package lsp

import (
	"context"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

// pipePair wires a client Transport to a bare peer driven manually via
// send/readMessage, simulating a language server without spawning a process.
type pipePair struct {
	client *Transport
	peer   *Transport
}

func newPipePair() *pipePair {
	clientReader, peerWriter := io.Pipe()
	peerReader, clientWriter := io.Pipe()
	return &pipePair{
		client: NewTransport(clientReader, clientWriter, nil),
		peer:   NewTransport(peerReader, peerWriter, nil),
	}
}

func TestTransportCallReceivesResult(t *testing.T) {
	pp := newPipePair()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pp.client.Start(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		msg, err := pp.peer.readMessage()
		if err != nil {
			t.Errorf("peer readMessage: %v", err)
			return
		}
		req := gjson.ParseBytes(msg)
		if req.Get("method").String() != "initialize" {
			t.Errorf("unexpected method: %s", req.Get("method").String())
		}
		id := req.Get("id").Int()
		reply, _ := buildResponse(id, `{"serverInfo":{"name":"fake"}}`)
		if err := pp.peer.send(reply); err != nil {
			t.Errorf("peer send: %v", err)
		}
	}()

	result, err := pp.client.Call(context.Background(), "initialize", `{"processId":1}`)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result.Get("serverInfo.name").String() != "fake" {
		t.Fatalf("unexpected result: %s", result.Raw)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for peer goroutine")
	}
}

func TestTransportCallReceivesError(t *testing.T) {
	pp := newPipePair()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pp.client.Start(ctx)

	go func() {
		msg, err := pp.peer.readMessage()
		if err != nil {
			return
		}
		req := gjson.ParseBytes(msg)
		reply, _ := buildErrorResponse(req.Get("id").Int(), CodeMethodNotFound, "nope")
		pp.peer.send(reply)
	}()

	_, err := pp.client.Call(context.Background(), "unknown", "")
	if err == nil {
		t.Fatal("expected error")
	}
	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected *RPCError, got %T", err)
	}
	if rpcErr.Code != CodeMethodNotFound {
		t.Fatalf("unexpected code: %d", rpcErr.Code)
	}
}

func TestTransportNotificationDispatch(t *testing.T) {
	pp := newPipePair()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pp.client.Start(ctx)

	received := make(chan gjson.Result, 1)
	pp.client.OnNotification("textDocument/publishDiagnostics", func(_ string, params gjson.Result) {
		received <- params
	})

	body, _ := buildRequest(0, "textDocument/publishDiagnostics", `{"uri":"file:///a.go","diagnostics":[]}`)
	if err := pp.peer.send(body); err != nil {
		t.Fatalf("peer send: %v", err)
	}

	select {
	case params := <-received:
		if params.Get("uri").String() != "file:///a.go" {
			t.Fatalf("unexpected params: %s", params.Raw)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestTransportCloseUnblocksPendingCall(t *testing.T) {
	pp := newPipePair()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pp.client.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		_, err := pp.client.Call(context.Background(), "initialize", "")
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	pp.client.Close()

	select {
	case err := <-errCh:
		if err != ErrShutdown {
			t.Fatalf("expected ErrShutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Call did not unblock after Close")
	}
}

// buildResponse and buildErrorResponse build JSON-RPC replies for the fake
// peer side of a test; the real Transport never constructs responses since
// this package only ever acts as an LSP client.
func buildResponse(id int64, resultJSON string) ([]byte, error) {
	return []byte(`{"jsonrpc":"2.0","id":` + strconv.FormatInt(id, 10) + `,"result":` + resultJSON + `}`), nil
}

func buildErrorResponse(id int64, code int, message string) ([]byte, error) {
	return []byte(`{"jsonrpc":"2.0","id":` + strconv.FormatInt(id, 10) + `,"error":{"code":` + strconv.Itoa(code) + `,"message":"` + message + `"}}`), nil
}
