package lsp

import (
	"context"
	"fmt"
	"sync"
)

// Client is the entry point higher-level components (the editor aggregate,
// component L) use instead of Manager directly. Trimmed from the teacher's
// Client — which fronted completion, hover, navigation, code actions,
// formatting and rename services — to the document lifecycle and
// diagnostics surface SPEC_FULL.md §1 actually asks the LSP package for.
type Client struct {
	mu     sync.RWMutex
	status ClientStatus

	manager     *Manager
	diagnostics *DiagnosticsStore

	config ClientConfig

	onDiagnostics func(path string, diags []Diagnostic)
}

// ClientStatus is the client's lifecycle state.
type ClientStatus int

const (
	ClientStatusStopped ClientStatus = iota
	ClientStatusStarting
	ClientStatusReady
	ClientStatusShuttingDown
)

func (s ClientStatus) String() string {
	switch s {
	case ClientStatusStopped:
		return "stopped"
	case ClientStatusStarting:
		return "starting"
	case ClientStatusReady:
		return "ready"
	case ClientStatusShuttingDown:
		return "shutting down"
	default:
		return "unknown"
	}
}

// ClientConfig configures which servers to run and where.
type ClientConfig struct {
	Servers           map[string]ServerConfig
	WorkspaceRoot     string
	AutoDetectServers bool
	MinSeverity       DiagnosticSeverity
}

// DefaultClientConfig returns a usable zero-value-adjacent configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Servers:           make(map[string]ServerConfig),
		AutoDetectServers: true,
		MinSeverity:       DiagnosticSeverityHint,
	}
}

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// WithClientConfig sets the full configuration.
func WithClientConfig(config ClientConfig) ClientOption {
	return func(c *Client) { c.config = config }
}

// WithServers registers a fixed set of server configurations.
func WithServers(servers map[string]ServerConfig) ClientOption {
	return func(c *Client) { c.config.Servers = servers }
}

// WithWorkspaceRoot sets the project root new servers are launched in.
func WithWorkspaceRoot(path string) ClientOption {
	return func(c *Client) { c.config.WorkspaceRoot = path }
}

// WithAutoDetectServers toggles $PATH server auto-detection.
func WithAutoDetectServers(enable bool) ClientOption {
	return func(c *Client) { c.config.AutoDetectServers = enable }
}

// WithClientDiagnosticsCallback registers a callback fired whenever a
// file's diagnostics change.
func WithClientDiagnosticsCallback(cb func(path string, diags []Diagnostic)) ClientOption {
	return func(c *Client) { c.onDiagnostics = cb }
}

// NewClient returns a Client, not yet started.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		status: ClientStatusStopped,
		config: DefaultClientConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start registers configured (and, if enabled, auto-detected) servers.
// Servers themselves start lazily on the first document opened in their
// language.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.status != ClientStatusStopped {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.status = ClientStatusStarting
	c.mu.Unlock()

	c.diagnostics = NewDiagnosticsStore(c.onDiagnostics)
	c.diagnostics.SetMinSeverity(c.config.MinSeverity)

	c.manager = NewManager(c.config.WorkspaceRoot, c.diagnostics)
	for langID, serverConfig := range c.config.Servers {
		c.manager.RegisterServer(langID, serverConfig)
	}
	if c.config.AutoDetectServers && len(c.config.Servers) == 0 {
		for langID, serverConfig := range AutoDetectServers() {
			c.manager.RegisterServer(langID, serverConfig)
		}
	}

	c.mu.Lock()
	c.status = ClientStatusReady
	c.mu.Unlock()
	return nil
}

// Shutdown gracefully shuts down every running server.
func (c *Client) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if c.status != ClientStatusReady {
		status := c.status
		c.mu.Unlock()
		if status == ClientStatusStopped {
			return nil
		}
		return fmt.Errorf("lsp client in invalid state for shutdown: %s", status)
	}
	c.status = ClientStatusShuttingDown
	c.mu.Unlock()

	var err error
	if c.manager != nil {
		err = c.manager.Shutdown(ctx)
	}

	c.mu.Lock()
	c.status = ClientStatusStopped
	c.manager = nil
	c.diagnostics = nil
	c.mu.Unlock()
	return err
}

// Status returns the client's current lifecycle state.
func (c *Client) Status() ClientStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// IsReady reports whether the client can accept document events.
func (c *Client) IsReady() bool { return c.Status() == ClientStatusReady }

// OpenDocument notifies the owning server (if any) that path is open.
func (c *Client) OpenDocument(ctx context.Context, path, content string) error {
	m, err := c.managerOrErr()
	if err != nil {
		return err
	}
	return m.OpenDocument(ctx, path, content)
}

// ChangeDocument notifies the owning server of path's new content.
func (c *Client) ChangeDocument(ctx context.Context, path, content string) error {
	m, err := c.managerOrErr()
	if err != nil {
		return err
	}
	return m.ChangeDocument(ctx, path, content)
}

// CloseDocument notifies the owning server that path is closed.
func (c *Client) CloseDocument(ctx context.Context, path string) error {
	m, err := c.managerOrErr()
	if err != nil {
		return err
	}
	return m.CloseDocument(ctx, path)
}

// IsAvailable reports whether a server is configured for path's language.
func (c *Client) IsAvailable(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.status != ClientStatusReady || c.manager == nil {
		return false
	}
	return c.manager.IsAvailable(path)
}

// Diagnostics returns the cached diagnostics for path.
func (c *Client) Diagnostics(path string) []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.status != ClientStatusReady || c.diagnostics == nil {
		return nil
	}
	return c.diagnostics.Get(path)
}

// DiagnosticsSummary totals diagnostics by severity across every tracked file.
func (c *Client) DiagnosticsSummary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.status != ClientStatusReady || c.diagnostics == nil {
		return Summary{}
	}
	return c.diagnostics.Summary()
}

// RegisterServer registers a server configuration, before or after Start.
func (c *Client) RegisterServer(languageID string, config ServerConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.config.Servers == nil {
		c.config.Servers = make(map[string]ServerConfig)
	}
	c.config.Servers[languageID] = config
	if c.manager != nil {
		c.manager.RegisterServer(languageID, config)
	}
}

// ServerStatus returns a language server's current lifecycle status.
func (c *Client) ServerStatus(languageID string) ServerStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.manager == nil {
		return ServerStatusStopped
	}
	return c.manager.ServerStatus(languageID)
}

// RestartServer restarts a language's server.
func (c *Client) RestartServer(ctx context.Context, languageID string) error {
	m, err := c.managerOrErr()
	if err != nil {
		return err
	}
	return m.RestartServer(ctx, languageID)
}

func (c *Client) managerOrErr() (*Manager, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.status != ClientStatusReady {
		return nil, ErrNotStarted
	}
	return c.manager, nil
}

// QuickStart creates and starts a client auto-detecting servers rooted at
// workspacePath.
func QuickStart(ctx context.Context, workspacePath string) (*Client, error) {
	client := NewClient(
		WithWorkspaceRoot(workspacePath),
		WithAutoDetectServers(true),
	)
	if err := client.Start(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
