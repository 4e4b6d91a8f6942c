package remoting

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client dials a remote domain's listener and issues synchronous
// cross-domain calls (§4.9), exactly funxy's builtinGrpcConnect +
// builtinGrpcInvoke shape: grpc.NewClient with insecure transport
// credentials, then Conn.Invoke against a dynamic.Message envelope.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to a domain's remoting listener at addr.
func Dial(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("remoting: dialing %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close tears down the client connection.
func (c *Client) Close() error { return c.conn.Close() }

// Call sends one Invoke RPC, bounded by ctx (callers should derive ctx
// from CallContext for the §5 RemoteCallTimeout default).
func (c *Client) Call(ctx context.Context, targetObject, methodName string, args []Arg) (Arg, error) {
	envMD, err := messageDescriptor("Envelope")
	if err != nil {
		return Arg{}, err
	}
	env := dynamic.NewMessage(envMD)
	env.SetFieldByName("target_object", targetObject)
	env.SetFieldByName("method_name", methodName)
	for _, a := range args {
		valMsg, err := encodeArg(a)
		if err != nil {
			return Arg{}, err
		}
		env.AddRepeatedFieldByName("args", valMsg)
	}

	replyMD, err := messageDescriptor("Reply")
	if err != nil {
		return Arg{}, err
	}
	reply := dynamic.NewMessage(replyMD)

	if err := c.conn.Invoke(ctx, "/skizo.remoting.DomainService/Invoke", env, reply); err != nil {
		return Arg{}, fmt.Errorf("remoting: RPC failed: %w", err)
	}

	ok, _ := reply.GetFieldByName("ok").(bool)
	if !ok {
		errMsg, _ := reply.GetFieldByName("error").(string)
		return Arg{}, fmt.Errorf("remoting: remote call failed: %s", errMsg)
	}
	resMsg, ok := reply.GetFieldByName("result").(*dynamic.Message)
	if !ok {
		return Arg{}, fmt.Errorf("remoting: Reply.result missing or malformed")
	}
	return decodeArg(resMsg)
}
