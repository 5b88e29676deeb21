package lsp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Transport is the JSON-RPC 2.0 base protocol over a language server's
// stdio pipes: Content-Length-framed messages, built and queried with
// gjson/sjson instead of encoding/json structs (SPEC_FULL.md §11) so a
// large textDocument/publishDiagnostics payload never needs a full
// unmarshal just to read its uri and diagnostics array.
type Transport struct {
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer

	mu       sync.Mutex
	nextID   atomic.Int64
	pending  map[int64]chan gjson.Result
	handlers map[string]NotificationHandler

	closed atomic.Bool
	done   chan struct{}
}

// NotificationHandler receives a server-to-client notification's raw params.
type NotificationHandler func(method string, params gjson.Result)

// NewTransport wraps r/w/c as a JSON-RPC channel (typically a language
// server subprocess's stdout/stdin/the process itself as Closer).
func NewTransport(r io.Reader, w io.Writer, c io.Closer) *Transport {
	return &Transport{
		reader:   bufio.NewReaderSize(r, 64*1024),
		writer:   w,
		closer:   c,
		pending:  make(map[int64]chan gjson.Result),
		handlers: make(map[string]NotificationHandler),
		done:     make(chan struct{}),
	}
}

// Start begins the read loop in a new goroutine.
func (t *Transport) Start(ctx context.Context) {
	go t.readLoop(ctx)
}

// Close shuts the transport down and releases the underlying closer.
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	close(t.done)

	t.mu.Lock()
	t.pending = make(map[int64]chan gjson.Result)
	t.mu.Unlock()

	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// IsClosed reports whether Close has been called.
func (t *Transport) IsClosed() bool {
	return t.closed.Load()
}

// Call sends a JSON-RPC request and blocks for its response, returning
// the raw "result" field as a gjson.Result (or an *RPCError when the reply
// carries "error"). paramsJSON must be a JSON object or empty.
func (t *Transport) Call(ctx context.Context, method string, paramsJSON string) (gjson.Result, error) {
	if t.closed.Load() {
		return gjson.Result{}, ErrShutdown
	}

	id := t.nextID.Add(1)
	ch := make(chan gjson.Result, 1)
	t.mu.Lock()
	t.pending[id] = ch
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
	}()

	body, err := buildRequest(id, method, paramsJSON)
	if err != nil {
		return gjson.Result{}, err
	}
	if err := t.send(body); err != nil {
		return gjson.Result{}, fmt.Errorf("send request: %w", err)
	}

	select {
	case <-ctx.Done():
		return gjson.Result{}, ctx.Err()
	case <-t.done:
		return gjson.Result{}, ErrShutdown
	case resp, ok := <-ch:
		if !ok {
			return gjson.Result{}, ErrShutdown
		}
		if errVal := resp.Get("error"); errVal.Exists() {
			return gjson.Result{}, &RPCError{
				Code:    int(errVal.Get("code").Int()),
				Message: errVal.Get("message").String(),
			}
		}
		return resp.Get("result"), nil
	}
}

// Notify sends a JSON-RPC notification; no response is expected.
func (t *Transport) Notify(method string, paramsJSON string) error {
	if t.closed.Load() {
		return ErrShutdown
	}
	body, err := buildRequest(0, method, paramsJSON)
	if err != nil {
		return err
	}
	return t.send(body)
}

// OnNotification registers handler for method, replacing any prior one.
// The handler "*" matches any method with no specific handler.
func (t *Transport) OnNotification(method string, handler NotificationHandler) {
	t.mu.Lock()
	t.handlers[method] = handler
	t.mu.Unlock()
}

// buildRequest assembles the JSON-RPC envelope with sjson rather than
// marshaling a Request struct: id is omitted entirely for notifications.
func buildRequest(id int64, method, paramsJSON string) ([]byte, error) {
	body, err := sjson.SetBytes(nil, "jsonrpc", "2.0")
	if err != nil {
		return nil, err
	}
	if id != 0 {
		body, err = sjson.SetBytes(body, "id", id)
		if err != nil {
			return nil, err
		}
	}
	body, err = sjson.SetBytes(body, "method", method)
	if err != nil {
		return nil, err
	}
	if paramsJSON != "" {
		body, err = sjson.SetRawBytes(body, "params", []byte(paramsJSON))
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (t *Transport) send(data []byte) error {
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.writer, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

func (t *Transport) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		default:
		}

		msg, err := t.readMessage()
		if err != nil {
			if t.closed.Load() || err == io.EOF || err == io.ErrClosedPipe {
				return
			}
			continue
		}
		t.dispatch(msg)
	}
}

func (t *Transport) readMessage() ([]byte, error) {
	var contentLength int
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if strings.HasPrefix(strings.ToLower(line), "content-length:") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
					contentLength = n
				}
			}
		}
	}
	if contentLength == 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	body := make([]byte, contentLength)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// dispatch routes one decoded JSON-RPC message: a reply to a pending Call
// if it carries an id alongside a result/error, otherwise a notification.
func (t *Transport) dispatch(data []byte) {
	parsed := gjson.ParseBytes(data)
	idVal := parsed.Get("id")
	hasResultOrError := parsed.Get("result").Exists() || parsed.Get("error").Exists()

	if idVal.Exists() && hasResultOrError {
		t.handleResponse(idVal.Int(), parsed)
		return
	}
	if method := parsed.Get("method").String(); method != "" {
		t.handleNotification(method, parsed.Get("params"))
	}
}

func (t *Transport) handleResponse(id int64, resp gjson.Result) {
	if t.closed.Load() {
		return
	}
	t.mu.Lock()
	ch, ok := t.pending[id]
	if ok {
		delete(t.pending, id)
	}
	t.mu.Unlock()
	if ok {
		select {
		case ch <- resp:
		default:
		}
	}
}

func (t *Transport) handleNotification(method string, params gjson.Result) {
	t.mu.Lock()
	handler, ok := t.handlers[method]
	if !ok {
		handler, ok = t.handlers["*"]
	}
	t.mu.Unlock()
	if ok && handler != nil {
		go handler(method, params)
	}
}
