package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alexshin/httpcache"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "civic-mcp"
	serverVersion = "1.0.0"

	// defaultDatasetPath is where the extraction pipeline publishes the
	// voting snapshot relative to the deployment root.
	defaultDatasetPath = "servers/swiss-voting/data/current_initiatives.json"
)

// Config holds server configuration options
type Config struct {
	DebugMode   bool
	DatasetPath string
}

// CacheEntry represents a cached item with expiration
type CacheEntry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// HTTPCacheStats tracks cache performance metrics
type HTTPCacheStats struct {
	Hits        int64
	Misses      int64
	Requests    int64
	LastCleanup time.Time
}

// Cache holds parsed reference data. TableFields keeps one entry per Cargo
// table so repeated schema lookups don't hit the wiki.
type Cache struct {
	TableFields map[string]*CacheEntry
	HTTPStats   *HTTPCacheStats
	mu          sync.RWMutex
}

// CivicServer exposes Swiss direct-democracy data, Swiss public transport,
// Singapore open data and the Public AI community wiki through the MCP protocol.
type CivicServer struct {
	server *server.MCPServer
	client *http.Client
	cache  *Cache
	logger *slog.Logger
	config Config
}

// LRUTTLCache implements httpcache.Cache using hashicorp's LRU with TTL
type LRUTTLCache struct {
	cache *expirable.LRU[string, []byte]
}

// NewLRUTTLCache creates a new LRU cache with TTL expiration
func NewLRUTTLCache(size int, ttl time.Duration) *LRUTTLCache {
	cache := expirable.NewLRU[string, []byte](size, nil, ttl)
	return &LRUTTLCache{
		cache: cache,
	}
}

// Get retrieves a cached response if it exists and hasn't expired
func (c *LRUTTLCache) Get(key string) ([]byte, bool) {
	return c.cache.Get(key)
}

// Set stores a response in the cache with TTL expiration
func (c *LRUTTLCache) Set(key string, data []byte) {
	c.cache.Add(key, data)
}

// Delete removes an entry from the cache
func (c *LRUTTLCache) Delete(key string) {
	c.cache.Remove(key)
}

// NewCivicServer creates a new instance of CivicServer with default configuration.
func NewCivicServer() *CivicServer {
	return NewCivicServerWithConfig(Config{DebugMode: false})
}

// NewCivicServerWithConfig creates a new instance of CivicServer with custom configuration.
func NewCivicServerWithConfig(config Config) *CivicServer {
	if config.DatasetPath == "" {
		config.DatasetPath = defaultDatasetPath
	}

	baseTransport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}

	// LRU cache with TTL that forces caching even when upstream sends
	// no-cache headers. Only GET responses may be served from the cache:
	// wiki edits POST through the same client.
	cache := NewLRUTTLCache(1000, 60*time.Minute)
	cachedTransport := httpcache.NewConfigurableTransport(cache, &httpcache.CacheConfig{
		CacheKeyFn: func(req *http.Request) string {
			return req.URL.String()
		},
		AuthorizeCacheFn: func(req *http.Request, _ *http.Client) bool {
			return req.Method == http.MethodGet
		},
	})
	cachedTransport.Transport = baseTransport

	client := &http.Client{
		Timeout:   45 * time.Second,
		Transport: cachedTransport,
	}

	logLevel := slog.LevelInfo
	if config.DebugMode {
		logLevel = slog.LevelDebug
	}

	// Structured logger on stderr so stdio mode keeps stdout for MCP frames
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: true,
	}))
	logger.Info("CIVIC-MCP server starting up",
		slog.Bool("debugMode", config.DebugMode),
		slog.String("logLevel", logLevel.String()),
		slog.String("datasetPath", config.DatasetPath),
		slog.String("cacheType", "LRU with TTL"),
		slog.Int("cacheSize", 1000),
		slog.Duration("cacheTTL", 60*time.Minute))

	s := &CivicServer{
		client: client,
		cache: &Cache{
			TableFields: make(map[string]*CacheEntry),
			HTTPStats: &HTTPCacheStats{
				LastCleanup: time.Now(),
			},
		},
		logger: logger,
		config: config,
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
	)

	s.server = mcpServer
	s.registerTools()

	return s
}

// RunStdio starts the server in stdio mode for MCP client communication.
func (s *CivicServer) RunStdio() error {
	s.logger.Debug("Starting server in stdio mode")
	return server.ServeStdio(s.server)
}

// RunSSE starts the server in SSE mode with real-time streaming capabilities.
func (s *CivicServer) RunSSE(addr string) error {
	s.logger.Info("Starting server in SSE mode", slog.String("address", addr))

	sseServer := server.NewSSEServer(s.server,
		server.WithSSEEndpoint("/mcp"),
		server.WithMessageEndpoint("/mcp/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(10*time.Second))

	mux := s.newHealthMux()
	mux.Handle("/mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Info("MCP request received",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("userAgent", r.Header.Get("User-Agent")),
			slog.String("accept", r.Header.Get("Accept")))

		sseServer.ServeHTTP(w, r)
	}))
	mux.Handle("/mcp/message", sseServer.MessageHandler())

	return s.serveMux(addr, mux, true)
}

// RunHTTP starts the server in stateless HTTP mode for production deployment.
func (s *CivicServer) RunHTTP(addr string) error {
	s.logger.Info("Starting server in HTTP mode", slog.String("address", addr))

	httpServer := server.NewStreamableHTTPServer(s.server,
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(true),
		server.WithHeartbeatInterval(30*time.Second))

	mux := s.newHealthMux()
	mux.Handle("/mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Info("MCP HTTP request received",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("userAgent", r.Header.Get("User-Agent")),
			slog.String("contentType", r.Header.Get("Content-Type")))

		httpServer.ServeHTTP(w, r)
	}))

	return s.serveMux(addr, mux, false)
}

// newHealthMux builds the shared mux carrying the health and discovery
// endpoints both network modes expose around /mcp.
func (s *CivicServer) newHealthMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("Health check request received", slog.String("method", r.Method), slog.String("path", r.URL.Path))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy","service":"` + serverName + `","version":"` + serverVersion + `"}`)); err != nil {
			s.logger.Warn("Failed to write health check response", slog.Any("error", err))
		}
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("Root endpoint request", slog.String("method", r.Method), slog.String("path", r.URL.Path))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		rootResponse := map[string]interface{}{
			"service": serverName,
			"version": serverVersion,
			"status":  "healthy",
			"mcp":     "/mcp",
		}
		if err := json.NewEncoder(w).Encode(rootResponse); err != nil {
			s.logger.Warn("Failed to encode root response", slog.Any("error", err))
		}
	})

	mux.HandleFunc("/mcp/health", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("MCP health check request received", slog.String("method", r.Method), slog.String("path", r.URL.Path))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		healthResponse := map[string]interface{}{
			"jsonrpc": "2.0",
			"result": map[string]interface{}{
				"protocolVersion": "2024-11-05",
				"capabilities": map[string]interface{}{
					"logging": map[string]interface{}{},
					"tools": map[string]interface{}{
						"listChanged": true,
					},
				},
				"serverInfo": map[string]interface{}{
					"name":    serverName,
					"version": serverVersion,
				},
			},
		}
		if err := json.NewEncoder(w).Encode(healthResponse); err != nil {
			s.logger.Warn("Failed to encode health response", slog.Any("error", err))
		}
	})

	return mux
}

// serveMux binds addr and serves mux, logging the endpoints actually
// available (the port matters when :0 picked a random one).
func (s *CivicServer) serveMux(addr string, mux *http.ServeMux, withMessageEndpoint bool) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		if strings.Contains(err.Error(), "address already in use") {
			s.logger.Error("Port already in use",
				slog.String("address", addr),
				slog.String("suggestion", "Try a different port with -addr :8081 or kill existing processes"))
		}
		return fmt.Errorf("failed to create listener on %s: %w", addr, err)
	}

	actualAddr := listener.Addr().String()
	_, port, _ := net.SplitHostPort(actualAddr)
	attrs := []any{
		slog.String("actualAddress", actualAddr),
		slog.String("health", "http://localhost:"+port+"/health"),
		slog.String("mcp", "http://localhost:"+port+"/mcp"),
	}
	if withMessageEndpoint {
		attrs = append(attrs, slog.String("mcpMessage", "http://localhost:"+port+"/mcp/message"))
	}
	s.logger.Info("HTTP server will be available with endpoints", attrs...)

	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second,
	}

	return httpServer.Serve(listener)
}

func (s *CivicServer) registerTools() {
	s.registerVotingTools()
	s.registerTransportTools()
	s.registerSingaporeTools()
	s.registerWikiTools()
}

func (s *CivicServer) makeAPIRequest(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	return s.makeAPIRequestWithHeaders(ctx, endpoint, params, map[string]string{"Accept": "application/json"})
}

func (s *CivicServer) makeAPIRequestWithHeaders(ctx context.Context, endpoint string, params map[string]string, headers map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(endpoint)
	if err != nil {
		s.logger.Error("Invalid URL parsing failed",
			slog.String("endpoint", endpoint),
			slog.Any("error", err))
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if params != nil {
		q := reqURL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		reqURL.RawQuery = q.Encode()
	}

	finalURL := reqURL.String()
	s.logger.Info("Starting API request",
		slog.String("url", finalURL),
		slog.Any("headers", headers),
		slog.Any("params", params))

	// Retry logic for connection stability
	maxRetries := 3
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoffDuration := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			s.logger.Warn("Retrying request",
				slog.Int("attempt", attempt+1),
				slog.Int("maxRetries", maxRetries),
				slog.Duration("backoff", backoffDuration))
			select {
			case <-ctx.Done():
				s.logger.Error("Request cancelled by context", slog.Any("error", ctx.Err()))
				return nil, ctx.Err()
			case <-time.After(backoffDuration):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
		if err != nil {
			s.logger.Error("Failed to create HTTP request", slog.Any("error", err))
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		for k, v := range headers {
			req.Header.Set(k, v)
		}

		s.logger.Debug("Executing HTTP request", slog.String("url", finalURL))
		start := time.Now()
		resp, err := s.client.Do(req)
		duration := time.Since(start)

		if err != nil {
			s.logger.Error("HTTP request failed",
				slog.Int("attempt", attempt+1),
				slog.Int("maxRetries", maxRetries),
				slog.Duration("duration", duration),
				slog.Any("error", err))
			lastErr = err
			if attempt < maxRetries-1 {
				continue
			}
			return nil, fmt.Errorf("failed to make request after %d attempts: %w", maxRetries, err)
		}

		s.logger.Info("HTTP request completed",
			slog.Int("attempt", attempt+1),
			slog.Int("maxRetries", maxRetries),
			slog.Duration("duration", duration),
			slog.Int("status", resp.StatusCode))

		if resp.StatusCode != http.StatusOK {
			s.logger.Warn("HTTP request returned non-200 status",
				slog.Int("status", resp.StatusCode),
				slog.String("statusText", resp.Status),
				slog.String("url", finalURL))
			if err := resp.Body.Close(); err != nil {
				s.logger.Warn("Failed to close response body", slog.Any("error", err))
			}
			switch resp.StatusCode {
			case http.StatusNotFound:
				s.logger.Error("Resource not found", slog.String("url", finalURL))
				return nil, fmt.Errorf("resource not found (404) - the requested record or endpoint does not exist")
			case http.StatusForbidden:
				s.logger.Error("Access denied", slog.String("url", finalURL))
				return nil, fmt.Errorf("access denied (403) - this may indicate API access restrictions or invalid parameters")
			case http.StatusTooManyRequests:
				s.logger.Warn("Rate limit exceeded",
					slog.String("url", finalURL),
					slog.Int("attempt", attempt+1),
					slog.Int("maxRetries", maxRetries))
				if attempt < maxRetries-1 {
					continue
				}
				return nil, fmt.Errorf("rate limit exceeded (429) - please wait before making additional requests")
			case http.StatusInternalServerError:
				s.logger.Warn("Server error",
					slog.String("url", finalURL),
					slog.Int("attempt", attempt+1),
					slog.Int("maxRetries", maxRetries))
				if attempt < maxRetries-1 {
					continue
				}
				return nil, fmt.Errorf("server error (500) - the API service is experiencing technical difficulties")
			case http.StatusBadRequest:
				s.logger.Error("Bad request", slog.String("url", finalURL))
				return nil, fmt.Errorf("bad request (400) - invalid parameters or malformed request")
			case http.StatusUnauthorized:
				s.logger.Error("Unauthorized", slog.String("url", finalURL))
				return nil, fmt.Errorf("unauthorized (401) - authentication required or invalid credentials")
			default:
				s.logger.Error("Unexpected HTTP status",
					slog.Int("status", resp.StatusCode),
					slog.String("url", finalURL))
				return nil, fmt.Errorf("API request failed with status %d - unexpected error occurred", resp.StatusCode)
			}
		}

		body, err := s.readResponse(resp, headers["Accept"])
		if err != nil {
			return nil, err
		}
		return body, nil
	}

	return nil, fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// readResponse consumes a successful response body, decoding JSON payloads
// when the request asked for JSON and returning raw bytes otherwise.
func (s *CivicServer) readResponse(resp *http.Response, acceptType string) ([]byte, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Warn("Failed to close response body", slog.Any("error", err))
		}
	}()

	s.updateHTTPCacheStats(resp)

	cacheStatus := "MISS"
	if resp.Header.Get("X-From-Cache") == "1" {
		cacheStatus = "HIT"
	}

	s.logger.Info("Processing successful response",
		slog.Int64("contentLength", resp.ContentLength),
		slog.String("contentType", resp.Header.Get("Content-Type")),
		slog.String("cacheStatus", cacheStatus))

	if acceptType == "application/json" {
		var result json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			s.logger.Error("Failed to decode JSON response", slog.Any("error", err))
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		s.logger.Debug("Successfully decoded JSON response", slog.Int("bytes", len(result)))
		return result, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.Error("Failed to read response body", slog.Any("error", err))
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	s.logger.Debug("Successfully read response body", slog.Int("bytes", len(body)))
	return body, nil
}

// makeFormRequest sends a single form-encoded POST. Edits are not idempotent,
// so there is no retry here, and POSTs never come out of the response cache.
func (s *CivicServer) makeFormRequest(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	s.logger.Info("Starting form POST request",
		slog.String("url", endpoint),
		slog.String("action", form.Get("action")))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		s.logger.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("Form POST request failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	s.logger.Info("Form POST request completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		if err := resp.Body.Close(); err != nil {
			s.logger.Warn("Failed to close response body", slog.Any("error", err))
		}
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	return s.readResponse(resp, "application/json")
}

// parseLimit parses a numeric limit parameter, falling back to def when the
// value is missing or unusable and clamping to the upstream API's ceiling.
func parseLimit(raw string, def, ceiling int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > ceiling {
		return ceiling
	}
	return n
}

// updateHTTPCacheStats updates cache statistics based on response headers
func (s *CivicServer) updateHTTPCacheStats(resp *http.Response) {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	s.cache.HTTPStats.Requests++

	if resp.Header.Get("X-From-Cache") == "1" {
		s.cache.HTTPStats.Hits++
	} else {
		s.cache.HTTPStats.Misses++
	}
}
