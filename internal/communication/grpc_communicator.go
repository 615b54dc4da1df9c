package communication

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/supervise-dev/bridge/internal/log_service"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const callMethod = "/bridge.Bridge/Call"

// messageEnvelope and responseEnvelope are the JSON frames exchanged over the
// gRPC unary Call method. They mirror Message and Response.
type messageEnvelope struct {
	From    string          `json:"from"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type responseEnvelope struct {
	Code    string            `json:"code"`
	Body    []byte            `json:"body,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

type bridgeCallServer interface {
	call(ctx context.Context, in *messageEnvelope) (*responseEnvelope, error)
}

func bridgeCallHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(messageEnvelope)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(bridgeCallServer).call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: callMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(bridgeCallServer).call(ctx, req.(*messageEnvelope))
	}
	return interceptor(ctx, in, info, handler)
}

// bridgeServiceDesc is registered by hand; the service has a single unary
// method carrying JSON envelopes, so there is no generated protobuf code.
var bridgeServiceDesc = grpc.ServiceDesc{
	ServiceName: "bridge.Bridge",
	HandlerType: (*bridgeCallServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Call", Handler: bridgeCallHandler},
	},
	Streams: []grpc.StreamDesc{},
}

type GRPCCommunicator struct {
	listenAddress string
	handler       MessageHandler
	grpcServer    *grpc.Server
	ls            log_service.LogService

	clientLock sync.RWMutex
	clients    map[string]*grpc.ClientConn
	stopped    bool
	stopMutex  sync.Mutex
}

func NewGRPCCommunicator(addr string, ls log_service.LogService) *GRPCCommunicator {
	return &GRPCCommunicator{
		listenAddress: addr,
		ls:            ls,
		clients:       make(map[string]*grpc.ClientConn),
	}
}

func (c *GRPCCommunicator) Address() string {
	return c.listenAddress
}

func (c *GRPCCommunicator) Start(handler MessageHandler) error {
	c.ls.Info(log_service.LogEvent{
		Message:  "Starting GRPC communicator",
		Metadata: map[string]any{"address": c.listenAddress},
	})

	c.handler = handler
	c.grpcServer = grpc.NewServer()
	c.grpcServer.RegisterService(&bridgeServiceDesc, c)

	lis, err := net.Listen("tcp", c.listenAddress)
	if err != nil {
		c.ls.Error(log_service.LogEvent{
			Message:  "Failed to listen on address",
			Metadata: map[string]any{"address": c.listenAddress, "error": err.Error()},
		})
		return fmt.Errorf("%w: %v", ErrGRPCListenFailed, err)
	}

	c.ls.Info(log_service.LogEvent{
		Message:  "GRPC communicator started successfully",
		Metadata: map[string]any{"address": c.listenAddress},
	})

	go func() {
		if err := c.grpcServer.Serve(lis); err != nil {
			c.ls.Error(log_service.LogEvent{
				Message:  "GRPC server error",
				Metadata: map[string]any{"address": c.listenAddress, "error": err.Error()},
			})
		}
	}()
	return nil
}

func (c *GRPCCommunicator) Stop() error {
	c.stopMutex.Lock()
	defer c.stopMutex.Unlock()

	if c.stopped {
		return nil
	}

	c.ls.Info(log_service.LogEvent{
		Message:  "Stopping GRPC communicator",
		Metadata: map[string]any{"address": c.listenAddress},
	})

	if c.grpcServer != nil {
		c.grpcServer.GracefulStop()
	}

	c.clientLock.Lock()
	for _, conn := range c.clients {
		conn.Close()
	}
	c.clients = make(map[string]*grpc.ClientConn)
	c.clientLock.Unlock()

	c.stopped = true
	return nil
}

func (c *GRPCCommunicator) Send(ctx context.Context, to string, msg Message) (*Response, error) {
	c.ls.Debug(log_service.LogEvent{
		Message:  "Sending GRPC message",
		Metadata: map[string]any{"to": to, "type": msg.Type},
	})

	c.clientLock.RLock()
	conn, ok := c.clients[to]
	c.clientLock.RUnlock()

	if !ok {
		var err error
		conn, err = grpc.NewClient(to,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultCallOptions(grpc.CallContentSubtype(JSONCodecName)),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrClientCreateFailed, err)
		}
		c.clientLock.Lock()
		c.clients[to] = conn
		c.clientLock.Unlock()
	}

	var payload json.RawMessage
	if msg.Payload != nil {
		data, err := json.Marshal(msg.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMessageMarshalFailed, err)
		}
		payload = data
	}

	from := msg.From
	if from == "" {
		from = c.listenAddress
	}
	in := &messageEnvelope{From: from, Type: msg.Type, Payload: payload}
	out := new(responseEnvelope)

	if err := conn.Invoke(ctx, callMethod, in, out); err != nil {
		c.ls.Error(log_service.LogEvent{
			Message:  "Failed to send GRPC message",
			Metadata: map[string]any{"to": to, "type": msg.Type, "error": err.Error()},
		})
		return nil, fmt.Errorf("%w: %v", ErrMessageSendFailed, err)
	}

	return &Response{
		Code:    BridgeCode(out.Code),
		Body:    out.Body,
		Headers: out.Headers,
	}, nil
}

func (c *GRPCCommunicator) call(ctx context.Context, in *messageEnvelope) (*responseEnvelope, error) {
	c.ls.Info(log_service.LogEvent{
		Message:  "Inbound request",
		Metadata: map[string]any{"method": "Call", "target": in.Type},
	})

	if c.handler == nil {
		return nil, ErrHandlerNotSet
	}

	msg := Message{
		From:    in.From,
		Type:    in.Type,
		Payload: in.Payload,
	}

	resp, err := c.handler(ctx, msg)
	if err != nil {
		return &responseEnvelope{
			Code: string(CodeInternal),
			Body: []byte(err.Error()),
		}, nil
	}
	if resp == nil {
		return &responseEnvelope{Code: string(CodeOK)}, nil
	}

	return &responseEnvelope{
		Code:    string(resp.Code),
		Body:    resp.Body,
		Headers: resp.Headers,
	}, nil
}
