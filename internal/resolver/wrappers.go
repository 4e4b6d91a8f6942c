package resolver

import (
	"fmt"

	"github.com/skizo-lang/skizo/internal/metadata"
)

// resolveArray generates (or reuses a cached) array wrapper class
// "0Array_N" for elem's class (§4.4 step 4 Array wrappers): length:int,
// set(index,value), get(index), createByLength(n), with GC treatment
// special-cased on the wrapped class's GC map.
func (r *Resolver) resolveArray(ref metadata.TypeRef, elem metadata.TypeRef) (metadata.TypeRef, error) {
	key := elem.ResolvedClass.FlatName
	if cached, ok := r.registry.CachedWrapper(metadata.SpecialClassArray, key); ok {
		ref.ResolvedClass = cached
		return ref, nil
	}

	flat := elem.ArrayOf().FlatName()
	c := metadata.NewClass(flat, elem.ResolvedClass.NiceName+"[]")
	c.Special = metadata.SpecialClassArray
	c.Flags.IsCompilerGenerated = true
	c.Wrapped = elem.ResolvedClass

	length := &metadata.Field{Name: "length", Type: metadata.Primitive(metadata.KindInt)}
	if err := c.AddField(length); err != nil {
		return ref, &AbortError{Ref: ref, Msg: err.Error()}
	}

	for _, name := range []string{"set", "get", "createByLength"} {
		m := metadata.NewMethod(name, metadata.MethodNormal)
		m.Flags.CompilerGenerated = true
		if name == "createByLength" {
			m.Signature.IsStatic = true
		}
		if err := c.AddInstanceMethod(m); err != nil {
			return ref, &AbortError{Ref: ref, Msg: err.Error()}
		}
	}

	if !r.registry.Register(c) {
		return ref, &AbortError{Ref: ref, Msg: "array wrapper flat-name collision"}
	}
	r.registry.CacheWrapper(metadata.SpecialClassArray, key, c)

	ref.ResolvedClass = c
	return ref, nil
}

// resolveFailable generates the T? value-type wrapper: a value slot, an
// error slot, a discriminator, constructors from value and from error, and
// an accessor that aborts if the failable holds an error (§4.4 step 4
// Failable wrappers).
func (r *Resolver) resolveFailable(ref metadata.TypeRef, inner metadata.TypeRef) (metadata.TypeRef, error) {
	key := inner.ResolvedClass.FlatName
	if cached, ok := r.registry.CachedWrapper(metadata.SpecialClassFailable, key); ok {
		ref.ResolvedClass = cached
		return ref, nil
	}

	flat := inner.Failable().FlatName()
	c := metadata.NewClass(flat, inner.ResolvedClass.NiceName+"?")
	c.Special = metadata.SpecialClassFailable
	c.Flags.IsValueType = true
	c.Flags.IsCompilerGenerated = true
	c.Wrapped = inner.ResolvedClass

	for _, f := range []struct {
		name string
		typ  metadata.TypeRef
	}{
		{"_value", inner},
		{"error", metadata.Object("Error")},
		{"hasError", metadata.Primitive(metadata.KindBool)},
	} {
		if err := c.AddField(&metadata.Field{Name: f.name, Type: f.typ}); err != nil {
			return ref, &AbortError{Ref: ref, Msg: err.Error()}
		}
	}

	fromValue := metadata.NewMethod("fromValue", metadata.MethodCtor)
	fromValue.Flags.CompilerGenerated = true
	fromError := metadata.NewMethod("fromError", metadata.MethodCtor)
	fromError.Flags.CompilerGenerated = true
	c.InstanceCtors = append(c.InstanceCtors, fromValue, fromError)

	accessor := metadata.NewMethod("value", metadata.MethodNormal)
	accessor.Flags.CompilerGenerated = true
	if err := c.AddInstanceMethod(accessor); err != nil {
		return ref, &AbortError{Ref: ref, Msg: err.Error()}
	}

	if !r.registry.Register(c) {
		return ref, &AbortError{Ref: ref, Msg: "failable wrapper flat-name collision"}
	}
	r.registry.CacheWrapper(metadata.SpecialClassFailable, key, c)

	ref.ResolvedClass = c
	return ref, nil
}

// resolveForeign generates a reference-type proxy whose methods become
// remote-call client stubs (special=foreign-sync), plus a hidden
// domain-handle field and exported name (§4.4 step 4 Foreign wrappers).
// The element is resolved first, same as array/failable, since a foreign
// proxy stands in for an object of that class owned by another domain.
func (r *Resolver) resolveForeign(ref metadata.TypeRef) (metadata.TypeRef, error) {
	inner := ref
	inner.Wrapper = metadata.WrapperNormal
	resolvedInner, err := r.Resolve(inner)
	if err != nil {
		return ref, err
	}

	key := resolvedInner.ResolvedClass.FlatName
	if cached, ok := r.registry.CachedWrapper(metadata.SpecialClassForeign, key); ok {
		ref.ResolvedClass = cached
		return ref, nil
	}

	flat := resolvedInner.Foreign().FlatName()
	c := metadata.NewClass(flat, resolvedInner.ResolvedClass.NiceName)
	c.Special = metadata.SpecialClassForeign
	c.Flags.IsCompilerGenerated = true
	c.Wrapped = resolvedInner.ResolvedClass

	for _, f := range []struct {
		name string
		typ  metadata.TypeRef
	}{
		{"_domainHandle", metadata.Primitive(metadata.KindIntPtr)},
		{"_exportedName", metadata.Object("string")},
	} {
		if err := c.AddField(&metadata.Field{Name: f.name, Type: f.typ}); err != nil {
			return ref, &AbortError{Ref: ref, Msg: err.Error()}
		}
	}

	for _, base := range resolvedInner.ResolvedClass.InstanceMethods {
		stub := metadata.NewMethod(base.Name, metadata.MethodNormal)
		stub.Signature = base.Signature
		stub.Special = metadata.SpecialForeignSync
		stub.Flags.CompilerGenerated = true
		if err := c.AddInstanceMethod(stub); err != nil {
			return ref, &AbortError{Ref: ref, Msg: fmt.Sprintf("foreign proxy method %s: %v", base.Name, err)}
		}
	}

	if !r.registry.Register(c) {
		return ref, &AbortError{Ref: ref, Msg: "foreign wrapper flat-name collision"}
	}
	r.registry.CacheWrapper(metadata.SpecialClassForeign, key, c)

	ref.ResolvedClass = c
	return ref, nil
}

// ResolveBoxed generates a reference-type wrapper around a value-type with
// a single constructor and forwarding methods for each method of the
// wrapped type (§4.4 step 4 Boxed wrappers). Boxing is triggered by a cast
// (ast.CastBox), not by TypeRef shape, so this is exposed directly rather
// than dispatched from Resolve.
func (r *Resolver) ResolveBoxed(valueType *metadata.Class) (*metadata.Class, error) {
	if !valueType.Flags.IsValueType {
		return nil, fmt.Errorf("resolver: ResolveBoxed called on reference type %s", valueType.FlatName)
	}
	key := valueType.FlatName
	if cached, ok := r.registry.CachedWrapper(metadata.SpecialClassBoxed, key); ok {
		return cached, nil
	}

	flat := "0Boxed_" + valueType.FlatName
	c := metadata.NewClass(flat, valueType.NiceName) // same nice name as the wrapped value-type (§3.2 invariant)
	c.Special = metadata.SpecialClassBoxed
	c.Flags.IsCompilerGenerated = true
	c.Wrapped = valueType

	ctor := metadata.NewMethod("box", metadata.MethodCtor)
	ctor.Special = metadata.SpecialBoxedCtor
	ctor.Flags.CompilerGenerated = true
	c.InstanceCtors = append(c.InstanceCtors, ctor)

	for _, base := range valueType.InstanceMethods {
		m := metadata.NewMethod(base.Name, metadata.MethodNormal)
		m.Signature = base.Signature
		m.Special = metadata.SpecialBoxedMethod
		m.Flags.CompilerGenerated = true
		if err := c.AddInstanceMethod(m); err != nil {
			return nil, err
		}
	}

	if !r.registry.Register(c) {
		return nil, fmt.Errorf("resolver: boxed wrapper flat-name collision for %s", valueType.FlatName)
	}
	r.registry.CacheWrapper(metadata.SpecialClassBoxed, key, c)
	return c, nil
}

// ResolveAlias registers name as a transparent redirection to target:
// alias classes compare equal to their target for assignment (via
// Class.IsAssignableFrom walking ResolvedBase/alias Wrapped) but remain
// distinguishable for reflection (§4.4 "Alias classes").
func (r *Resolver) ResolveAlias(name string, target *metadata.Class) (*metadata.Class, error) {
	if cached, ok := r.registry.CachedWrapper(metadata.SpecialClassAlias, name); ok {
		return cached, nil
	}
	c := metadata.NewClass(name, name)
	c.Special = metadata.SpecialClassAlias
	c.Wrapped = target
	if !r.registry.Register(c) {
		return nil, fmt.Errorf("resolver: alias flat-name collision for %s", name)
	}
	r.registry.CacheWrapper(metadata.SpecialClassAlias, name, c)
	return c, nil
}
