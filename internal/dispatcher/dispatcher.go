package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/supervise-dev/bridge/internal/communication"
	"github.com/supervise-dev/bridge/internal/fs_service"
	"github.com/supervise-dev/bridge/internal/log_service"
	"github.com/supervise-dev/bridge/internal/process_service"
	"github.com/supervise-dev/bridge/internal/schema"
)

// Response headers attached to every dispatched call.
const (
	HeaderRequestID     = "X-Bridge-Request-Id"
	HeaderOperationKind = "X-Bridge-Operation-Kind"
)

type invokeFunc func(ctx context.Context, req any) (any, error)

type procedure struct {
	op     schema.Operation
	invoke invokeFunc
}

// Dispatcher binds every operation name to its handler, validates each
// decoded input against the operation's schema before invocation, and
// normalizes every failure into the wire ErrorEnvelope. The procedure table
// is built once at construction and never mutated afterwards. Accepted
// mutations execute at most once; retries are the client's business.
type Dispatcher struct {
	fs         fs_service.FSService
	ps         process_service.ProcessService
	ls         log_service.LogService
	procedures map[string]procedure
}

func NewDispatcher(fs fs_service.FSService, ps process_service.ProcessService, ls log_service.LogService) *Dispatcher {
	d := &Dispatcher{fs: fs, ps: ps, ls: ls}
	d.procedures = d.buildProcedures()
	return d
}

// HandleMessage implements communication.MessageHandler.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg communication.Message) (*communication.Response, error) {
	requestID := uuid.New().String()
	started := time.Now()

	proc, ok := d.procedures[msg.Type]
	if !ok {
		d.ls.Warn(log_service.LogEvent{
			Message:  "Unknown operation",
			Metadata: map[string]any{"operation": msg.Type, "requestId": requestID},
		})
		return d.errorResponse(requestID, "", communication.CodeBadRequest,
			fmt.Errorf("%w: %q", ErrUnknownOperation, msg.Type)), nil
	}

	payload, err := rawPayload(msg.Payload)
	if err != nil {
		return d.errorResponse(requestID, proc.op.Kind, communication.CodeBadRequest, err), nil
	}

	req, err := schema.Decode(proc.op, payload)
	if err != nil {
		d.ls.Warn(log_service.LogEvent{
			Message:  "Input validation failed",
			Metadata: map[string]any{"operation": msg.Type, "requestId": requestID, "error": err.Error()},
		})
		return d.errorResponse(requestID, proc.op.Kind, communication.CodeBadRequest, err), nil
	}

	result, err := proc.invoke(ctx, req)
	if err != nil {
		code := classifyError(err)
		d.ls.Warn(log_service.LogEvent{
			Message:  "Operation failed",
			Metadata: map[string]any{"operation": msg.Type, "requestId": requestID, "code": code, "error": err.Error()},
		})
		return d.errorResponse(requestID, proc.op.Kind, code, err), nil
	}

	body, err := json.Marshal(result)
	if err != nil {
		return d.errorResponse(requestID, proc.op.Kind, communication.CodeInternal,
			fmt.Errorf("failed to marshal result: %w", err)), nil
	}

	d.ls.Debug(log_service.LogEvent{
		Message: "Operation completed",
		Metadata: map[string]any{
			"operation": msg.Type,
			"requestId": requestID,
			"elapsed":   time.Since(started).String(),
		},
	})

	return &communication.Response{
		Code:    communication.CodeOK,
		Body:    body,
		Headers: d.headers(requestID, proc.op.Kind),
	}, nil
}

func (d *Dispatcher) headers(requestID string, kind schema.Kind) map[string]string {
	headers := map[string]string{HeaderRequestID: requestID}
	if kind != "" {
		headers[HeaderOperationKind] = string(kind)
	}
	return headers
}

// errorResponse wraps any failure as a well-formed ErrorEnvelope. Only the
// message string crosses the wire; stack traces and internals never do.
func (d *Dispatcher) errorResponse(requestID string, kind schema.Kind, code communication.BridgeCode, err error) *communication.Response {
	body, marshalErr := json.Marshal(schema.ErrorEnvelope{Error: err.Error()})
	if marshalErr != nil {
		body = []byte(`{"error":"internal error"}`)
	}
	return &communication.Response{
		Code:    code,
		Body:    body,
		Headers: d.headers(requestID, kind),
	}
}

// rawPayload renders the message payload as JSON bytes. Inbound transport
// payloads arrive as json.RawMessage; in-process callers may pass typed
// values instead.
func rawPayload(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	case []byte:
		return p, nil
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNilPayload, err)
		}
		return data, nil
	}
}

func classifyError(err error) communication.BridgeCode {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		return communication.CodeBadRequest
	case errors.Is(err, process_service.ErrSpawnFailed):
		return communication.CodeSpawnFailed
	case errors.Is(err, fs.ErrNotExist):
		return communication.CodeNotFound
	case errors.Is(err, fs.ErrPermission):
		return communication.CodePermissionDenied
	case errors.Is(err, syscall.ENOTEMPTY):
		// A non-recursive delete of a populated directory would otherwise
		// match fs.ErrExist and read as a conflict; the caller's request is
		// what needs changing (recursive: true).
		return communication.CodeBadRequest
	case errors.Is(err, fs.ErrExist):
		return communication.CodeAlreadyExists
	case errors.Is(err, fs_service.ErrUnsupportedEncoding), errors.Is(err, fs_service.ErrUnsupportedFlag):
		return communication.CodeBadRequest
	default:
		return communication.CodeInternal
	}
}
