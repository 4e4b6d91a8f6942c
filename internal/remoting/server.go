package remoting

import (
	"context"
	"fmt"
	"net"

	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
)

// Server is one domain's remoting listener: a single-service grpc.Server
// whose one RPC enqueues onto the domain's MessageQueue and waits for the
// listen loop to resolve it, exactly funxy's builtinGrpcServer /
// builtinGrpcRegister pattern of constructing a grpc.ServiceDesc by hand
// around a dynamic-message handler instead of generated stubs.
type Server struct {
	grpcServer *grpc.Server
	queue      *MessageQueue
}

// NewServer builds the DomainService grpc.Server bound to queue; every
// inbound Invoke RPC becomes one MessageQueue.Enqueue call.
func NewServer(queue *MessageQueue) (*Server, error) {
	sd, err := serviceDescriptor()
	if err != nil {
		return nil, err
	}

	handler := &domainServiceHandler{queue: queue}
	desc := &grpc.ServiceDesc{
		ServiceName: sd.GetFullyQualifiedName(),
		HandlerType: (*any)(nil),
		Metadata:    sd.GetFile().GetName(),
	}
	for _, m := range sd.GetMethods() {
		methodName := m.GetName()
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: methodName,
			Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				h := srv.(*domainServiceHandler)
				return h.handleInvoke(ctx, dec)
			},
		})
	}

	gs := grpc.NewServer()
	gs.RegisterService(desc, handler)
	return &Server{grpcServer: gs, queue: queue}, nil
}

// Serve blocks accepting connections on lis, matching
// builtinGrpcServe/builtinGrpcServeAsync's direct use of net.Listener.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Stop gracefully stops the server (§4.8 close_domain tears the listener
// down along with everything else it owns).
func (s *Server) Stop() { s.grpcServer.GracefulStop() }

type domainServiceHandler struct {
	queue *MessageQueue
}

func (h *domainServiceHandler) handleInvoke(ctx context.Context, dec func(any) error) (any, error) {
	envMD, err := messageDescriptor("Envelope")
	if err != nil {
		return nil, err
	}
	env := dynamic.NewMessage(envMD)
	if err := dec(env); err != nil {
		return nil, err
	}

	target, _ := env.GetFieldByName("target_object").(string)
	method, _ := env.GetFieldByName("method_name").(string)

	var args []Arg
	for _, raw := range env.GetFieldByName("args").([]any) {
		valMsg, ok := raw.(*dynamic.Message)
		if !ok {
			return nil, fmt.Errorf("remoting: malformed Envelope.args entry")
		}
		a, err := decodeArg(valMsg)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}

	result, callErr := h.queue.Enqueue(ctx, target, method, args)

	replyMD, err := messageDescriptor("Reply")
	if err != nil {
		return nil, err
	}
	reply := dynamic.NewMessage(replyMD)
	if callErr != nil {
		reply.SetFieldByName("ok", false)
		reply.SetFieldByName("error", callErr.Error())
		return reply, nil
	}
	resMsg, err := encodeArg(result)
	if err != nil {
		return nil, err
	}
	reply.SetFieldByName("ok", true)
	reply.SetFieldByName("result", resMsg)
	return reply, nil
}
