package domain

import (
	"context"
	"fmt"
	"net"

	"github.com/skizo-lang/skizo/internal/cbackend"
	"github.com/skizo-lang/skizo/internal/metadata"
	"github.com/skizo-lang/skizo/internal/pool"
	"github.com/skizo-lang/skizo/internal/remoting"
)

// ExportedInstance pairs a live heap object with the class the remoting
// dispatcher resolves its methods against — the domain-side half of
// §4.9's "foreign references encoded as exported-object names".
type ExportedInstance struct {
	Class *metadata.Class
	Ptr   pool.Ptr
}

// Export registers obj under className so a remote domain's client can
// address it by the returned name (§4.9, §6 "export object").
func (d *Domain) Export(className string, ptr pool.Ptr) (string, error) {
	c, ok := d.registry.ByFlatName(className)
	if !ok {
		return "", fmt.Errorf("domain: export: class %q not registered", className)
	}
	return d.exported.Export(&ExportedInstance{Class: c, Ptr: ptr}), nil
}

// Revoke removes a previously exported name (e.g. once its object is
// collected).
func (d *Domain) Revoke(name string) { d.exported.Revoke(name) }

// Invoke implements remoting.Dispatcher (§4.9: "the listen loop ...
// resolves the method via the target object's vtable, invokes the server
// stub"). It resolves the named exported object and instance method and
// calls the compiled implementation through the same native-call boundary
// InvokeEntryPoint uses.
//
// Only zero-argument, void-returning methods are callable through this
// path today: marshaling Arg values across the cdecl call boundary needs
// a call primitive richer than cbackend.CallVoid (one that can push
// arguments and read back a return value), which isn't built yet — see
// DESIGN.md. Any other signature is reported back to the caller as an
// error rather than silently dropped or faked.
func (d *Domain) Invoke(targetObject, methodName string, args []remoting.Arg) (remoting.Arg, error) {
	obj, ok := d.exported.Lookup(targetObject)
	if !ok {
		return remoting.Arg{}, fmt.Errorf("domain: remoting: exported object %q not found", targetObject)
	}
	inst, ok := obj.(*ExportedInstance)
	if !ok {
		return remoting.Arg{}, fmt.Errorf("domain: remoting: exported object %q is not a domain instance", targetObject)
	}

	var method *metadata.Method
	for _, m := range inst.Class.InstanceMethods {
		if m.Name == methodName {
			method = m
			break
		}
	}
	if method == nil {
		return remoting.Arg{}, fmt.Errorf("domain: remoting: %s has no method %s", inst.Class.NiceName, methodName)
	}
	if len(args) != 0 || len(method.Signature.Params) != 0 || method.Signature.ReturnType.Kind != metadata.KindVoid {
		return remoting.Arg{}, fmt.Errorf("domain: remoting: %s::%s: only zero-argument, void-returning methods are callable through this call boundary today", inst.Class.NiceName, methodName)
	}

	addr, ok := d.backend.ResolveSymbol(methodCName(inst.Class, method))
	if !ok {
		return remoting.Arg{}, fmt.Errorf("domain: remoting: %s::%s was not emitted", inst.Class.NiceName, methodName)
	}
	d.pushFrame(StackFrame{ClassName: inst.Class.NiceName, MethodName: method.Name})
	cbackend.CallVoid(addr)
	d.popFrame()
	return remoting.Arg{}, nil
}

// StartRemoting opens this domain's remoting listener (§4.9) on lis,
// wiring its message queue's listen loop to run against the domain
// itself as the Dispatcher. The returned *remoting.Server owns the grpc
// server; CloseDomain stops it if the embedder didn't already.
func (d *Domain) StartRemoting(ctx context.Context, lis net.Listener) (*remoting.Server, error) {
	if !d.CheckPermission("remoting") {
		return nil, fmt.Errorf("domain: remoting is not in this domain's permission list")
	}
	if d.queue == nil {
		d.queue = remoting.NewMessageQueue()
	}
	srv, err := remoting.NewServer(d.queue)
	if err != nil {
		return nil, err
	}
	go remoting.Listen(ctx, d.queue, d)
	go srv.Serve(lis)
	d.server = srv
	return srv, nil
}

// DialRemote connects to another domain's remoting listener, returning a
// client the caller uses to issue Invoke RPCs bounded by
// remoting.CallContext.
func DialRemote(addr string) (*remoting.Client, error) {
	return remoting.Dial(addr)
}
