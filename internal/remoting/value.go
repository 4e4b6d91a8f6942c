package remoting

import (
	"fmt"

	"github.com/jhump/protoreflect/dynamic"
)

// ArgKind selects which wire shape a value crosses the domain boundary
// as (§4.9's class-driven encoder: "primitives copied in-place, strings
// cloned to a shared heap, interfaces prefixed with their concrete nice
// name, foreign references encoded as exported-object names").
type ArgKind int

const (
	KindInt ArgKind = iota
	KindFloat
	KindBool
	KindString
	KindObjectRef
	KindInterface
)

// Arg is one encoded call argument or return value.
type Arg struct {
	Kind ArgKind

	Int    int64
	Float  float64
	Bool   bool
	Str    string // also holds the cloned string payload for KindString
	Object string // exported-object name for KindObjectRef

	// InterfaceNiceName prefixes an interface-typed argument with its
	// concrete class's nice name; Str carries the serialized payload.
	InterfaceNiceName string
}

func encodeArg(a Arg) (*dynamic.Message, error) {
	md, err := messageDescriptor("Value")
	if err != nil {
		return nil, err
	}
	msg := dynamic.NewMessage(md)
	switch a.Kind {
	case KindInt:
		msg.SetFieldByName("int_value", a.Int)
	case KindFloat:
		msg.SetFieldByName("float_value", a.Float)
	case KindBool:
		msg.SetFieldByName("bool_value", a.Bool)
	case KindString:
		msg.SetFieldByName("string_value", a.Str)
	case KindObjectRef:
		msg.SetFieldByName("object_ref", a.Object)
	case KindInterface:
		msg.SetFieldByName("interface_value", a.InterfaceNiceName+"|"+a.Str)
	default:
		return nil, fmt.Errorf("remoting: unknown arg kind %d", a.Kind)
	}
	return msg, nil
}

func decodeArg(msg *dynamic.Message) (Arg, error) {
	switch msg.WhichOneof("kind") {
	case "int_value":
		return Arg{Kind: KindInt, Int: msg.GetFieldByName("int_value").(int64)}, nil
	case "float_value":
		return Arg{Kind: KindFloat, Float: msg.GetFieldByName("float_value").(float64)}, nil
	case "bool_value":
		return Arg{Kind: KindBool, Bool: msg.GetFieldByName("bool_value").(bool)}, nil
	case "string_value":
		return Arg{Kind: KindString, Str: msg.GetFieldByName("string_value").(string)}, nil
	case "object_ref":
		return Arg{Kind: KindObjectRef, Object: msg.GetFieldByName("object_ref").(string)}, nil
	case "interface_value":
		raw, _ := msg.GetFieldByName("interface_value").(string)
		nice, payload := splitOnce(raw, '|')
		return Arg{Kind: KindInterface, InterfaceNiceName: nice, Str: payload}, nil
	default:
		return Arg{}, fmt.Errorf("remoting: Value message carries no recognized oneof field")
	}
}

func splitOnce(s string, sep byte) (string, string) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
