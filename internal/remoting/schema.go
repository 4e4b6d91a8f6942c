// Package remoting implements §4.9: a per-domain message queue and
// exported-objects table for cross-domain calls, plus the wire encoding
// §4.9 specifies (primitives copied, strings cloned, interfaces prefixed
// with their concrete nice name, foreign references as exported-object
// names).
//
// Grounded on funxy's internal/evaluator/builtins_grpc.go: the envelope
// schema is parsed from an in-memory .proto string via
// jhump/protoreflect's protoparse (no build-time protoc step, exactly
// funxy's grpcLoadProto shape) and marshaled through dynamic.Message;
// each domain's listen loop is a one-service grpc.Server bound to a
// net.Listener, matching funxy's builtinGrpcServer/builtinGrpcRegister
// construction of a ServiceDesc with hand-written Handler closures rather
// than generated stubs.
package remoting

import (
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

// envelopeProto is the fixed cross-domain call schema (§4.9): a target
// exported-object name, a method name, and a flat argument list, each
// argument one of the primitive/string/object-ref/interface shapes the
// class-driven encoder produces.
const envelopeProto = `
syntax = "proto3";
package skizo.remoting;

message Value {
  oneof kind {
    int64 int_value = 1;
    double float_value = 2;
    bool bool_value = 3;
    string string_value = 4;
    string object_ref = 5;
    string interface_value = 6;
  }
}

message Envelope {
  string target_object = 1;
  string method_name = 2;
  repeated Value args = 3;
}

message Reply {
  bool ok = 1;
  string error = 2;
  Value result = 3;
}

service DomainService {
  rpc Invoke(Envelope) returns (Reply);
}
`

var (
	schemaOnce sync.Once
	schemaFD   *desc.FileDescriptor
	schemaErr  error
)

// Schema parses and caches the envelope file descriptor, built once per
// process since the wire shape never varies across domains.
func Schema() (*desc.FileDescriptor, error) {
	schemaOnce.Do(func() {
		parser := protoparse.Parser{
			Accessor: protoparse.FileContentsFromMap(map[string]string{
				"skizo_remoting.proto": envelopeProto,
			}),
		}
		fds, err := parser.ParseFiles("skizo_remoting.proto")
		if err != nil {
			schemaErr = fmt.Errorf("remoting: parsing envelope schema: %w", err)
			return
		}
		schemaFD = fds[0]
	})
	return schemaFD, schemaErr
}

func messageDescriptor(name string) (*desc.MessageDescriptor, error) {
	fd, err := Schema()
	if err != nil {
		return nil, err
	}
	md := fd.FindMessage("skizo.remoting." + name)
	if md == nil {
		return nil, fmt.Errorf("remoting: message %s not found in envelope schema", name)
	}
	return md, nil
}

func serviceDescriptor() (*desc.ServiceDescriptor, error) {
	fd, err := Schema()
	if err != nil {
		return nil, err
	}
	sd := fd.FindService("skizo.remoting.DomainService")
	if sd == nil {
		return nil, fmt.Errorf("remoting: DomainService not found in envelope schema")
	}
	return sd, nil
}
