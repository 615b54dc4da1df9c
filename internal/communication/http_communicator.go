package communication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/supervise-dev/bridge/internal/log_service"
)

const rpcPath = "/rpc"

type HTTPCommunicator struct {
	listenAddress string
	httpServer    *http.Server
	handler       MessageHandler
	ls            log_service.LogService
	clientLock    sync.RWMutex
	clients       map[string]*http.Client
	startErr      chan error
}

func NewHTTPCommunicator(listenAddress string, ls log_service.LogService) *HTTPCommunicator {
	return &HTTPCommunicator{
		listenAddress: listenAddress,
		ls:            ls,
		clients:       make(map[string]*http.Client),
		startErr:      make(chan error, 1),
	}
}

func (c *HTTPCommunicator) Address() string {
	return c.listenAddress
}

func (c *HTTPCommunicator) Start(handler MessageHandler) error {
	c.ls.Info(log_service.LogEvent{
		Message:  "Starting HTTP communicator",
		Metadata: map[string]any{"address": c.listenAddress},
	})

	c.handler = handler

	mux := http.NewServeMux()
	mux.HandleFunc(rpcPath, c.handleHTTPMessage)

	c.httpServer = &http.Server{
		Addr:    c.listenAddress,
		Handler: mux,
	}

	go func() {
		if err := c.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.ls.Error(log_service.LogEvent{
				Message:  "HTTP server error",
				Metadata: map[string]any{"address": c.listenAddress, "error": err.Error()},
			})
			c.startErr <- err
		}
	}()

	// Surface immediate bind failures (port already taken) to the caller.
	select {
	case err := <-c.startErr:
		return fmt.Errorf("%w: %v", ErrServerStartFailed, err)
	case <-time.After(100 * time.Millisecond):
	}

	c.ls.Info(log_service.LogEvent{
		Message:  "HTTP communicator started successfully",
		Metadata: map[string]any{"address": c.listenAddress},
	})

	return nil
}

func (c *HTTPCommunicator) Stop() error {
	c.ls.Info(log_service.LogEvent{
		Message:  "Stopping HTTP communicator",
		Metadata: map[string]any{"address": c.listenAddress},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.httpServer.Shutdown(ctx); err != nil {
		c.ls.Error(log_service.LogEvent{
			Message:  "Failed to stop HTTP server",
			Metadata: map[string]any{"address": c.listenAddress, "error": err.Error()},
		})
		return ErrServerStopFailed
	}

	c.ls.Info(log_service.LogEvent{
		Message:  "HTTP communicator stopped successfully",
		Metadata: map[string]any{"address": c.listenAddress},
	})

	return nil
}

func mapFromHTTPCode(code int) BridgeCode {
	switch code {
	case http.StatusOK:
		return CodeOK
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusForbidden:
		return CodePermissionDenied
	case http.StatusConflict:
		return CodeAlreadyExists
	case http.StatusUnprocessableEntity:
		return CodeSpawnFailed
	case http.StatusServiceUnavailable:
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

func mapToHTTPCode(code BridgeCode) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeSpawnFailed:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (c *HTTPCommunicator) Send(ctx context.Context, to string, msg Message) (*Response, error) {
	c.ls.Debug(log_service.LogEvent{
		Message:  "Sending HTTP message",
		Metadata: map[string]any{"to": to, "type": msg.Type},
	})

	c.clientLock.RLock()
	client, ok := c.clients[to]
	c.clientLock.RUnlock()

	if !ok {
		client = &http.Client{
			Timeout: 60 * time.Second,
		}
		c.clientLock.Lock()
		c.clients[to] = client
		c.clientLock.Unlock()
	}

	if msg.From == "" {
		msg.From = c.listenAddress
	}
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMessageMarshalFailed, err)
	}

	url := fmt.Sprintf("http://%s%s", to, rpcPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTTPRequestCreateFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		c.ls.Error(log_service.LogEvent{
			Message:  "Failed to send HTTP request",
			Metadata: map[string]any{"to": to, "type": msg.Type, "error": err.Error()},
		})
		return nil, fmt.Errorf("%w: %v", ErrHTTPRequestSendFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTTPResponseReadFailed, err)
	}

	headers := map[string]string{}
	for key, values := range resp.Header {
		headers[key] = values[0]
	}

	return &Response{
		Code:    mapFromHTTPCode(resp.StatusCode),
		Body:    respBody,
		Headers: headers,
	}, nil
}

func (c *HTTPCommunicator) handleHTTPMessage(w http.ResponseWriter, r *http.Request) {
	c.ls.Info(log_service.LogEvent{
		Message:  "Inbound request",
		Metadata: map[string]any{"method": r.Method, "target": r.URL.Path, "remoteAddr": r.RemoteAddr},
	})

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, ErrHTTPBodyReadFailed.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var rawMsg struct {
		From    string          `json:"From"`
		Type    string          `json:"Type"`
		Payload json.RawMessage `json:"Payload"`
	}
	if err := json.Unmarshal(body, &rawMsg); err != nil {
		c.ls.Warn(log_service.LogEvent{
			Message:  "Invalid JSON in HTTP request",
			Metadata: map[string]any{"remoteAddr": r.RemoteAddr, "error": err.Error()},
		})
		http.Error(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	if rawMsg.Type == "" {
		http.Error(w, ErrMissingRequiredFields.Error(), http.StatusBadRequest)
		return
	}

	if c.handler == nil {
		http.Error(w, ErrHandlerNotSet.Error(), http.StatusServiceUnavailable)
		return
	}

	// The payload stays raw here; the dispatcher decodes it against the
	// operation's input schema before anything runs.
	msg := Message{
		From:    rawMsg.From,
		Type:    rawMsg.Type,
		Payload: rawMsg.Payload,
	}

	resp, err := c.handler(r.Context(), msg)
	if err != nil {
		c.ls.Error(log_service.LogEvent{
			Message:  "Message handler failed",
			Metadata: map[string]any{"type": rawMsg.Type, "error": err.Error()},
		})
		http.Error(w, fmt.Sprintf("handler error: %v", err), http.StatusInternalServerError)
		return
	}

	if resp == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(mapToHTTPCode(resp.Code))
	if resp.Body != nil {
		w.Write(resp.Body)
	}

	c.ls.Debug(log_service.LogEvent{
		Message:  "HTTP response sent",
		Metadata: map[string]any{"type": rawMsg.Type, "code": resp.Code},
	})
}
