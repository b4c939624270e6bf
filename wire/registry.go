package wire

import (
	"reflect"

	"github.com/pkg/errors"

	"bser/value"
)

// EncodeFunc converts a registered value into the argument tuple its type
// name travels with. DecodeFunc rebuilds a value from that tuple.
type EncodeFunc func(v interface{}) ([]interface{}, error)
type DecodeFunc func(args []interface{}) (interface{}, error)

// DumpFunc and LoadFunc are the host hooks for opaque procedure bodies.
// Without them tag 210 is never emitted and always rejected on input.
type DumpFunc func(v interface{}) ([]byte, error)
type LoadFunc func(body []byte) (interface{}, error)

// IdentityFunc resolves the type identity token of a host value. The
// default uses the value's concrete reflect.Type; tables carry their own
// identity in their meta token and never consult this hook.
type IdentityFunc func(v interface{}) interface{}

type typeEntry struct {
	name     string
	id       interface{}
	encode   EncodeFunc
	decode   DecodeFunc
	template *Template
}

// Register binds a type identity to a stable name, with optional encode
// and decode callbacks and an optional template. Passing nil callbacks
// selects the default table-based codec for the type. A template cannot be
// combined with a custom encoder or decoder.
func (c *Codec) Register(id interface{}, name string, enc EncodeFunc, dec DecodeFunc, tmpl *Template) error {
	if id == nil {
		return errors.New("type identity cannot be nil")
	}
	if name == "" {
		return errors.New("type name cannot be empty")
	}
	if tmpl != nil && (enc != nil || dec != nil) {
		return errors.New("template cannot be combined with custom encode or decode callbacks")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.types[name]; ok {
		return errors.Wrapf(ErrDuplicateRegistration, "name %q", name)
	}
	if _, ok := c.ids[id]; ok {
		return errors.Wrapf(ErrDuplicateRegistration, "type identity %v", id)
	}
	entry := &typeEntry{
		name:     name,
		id:       id,
		encode:   enc,
		decode:   dec,
		template: tmpl,
	}
	c.types[name] = entry
	c.ids[id] = entry
	return nil
}

// RegisterType registers the concrete type of sample under name, resolving
// the identity token through the codec's identity hook. An empty name
// falls back to the type's string form.
func (c *Codec) RegisterType(sample interface{}, name string) error {
	if sample == nil {
		return errors.New("sample value cannot be nil")
	}
	id := c.identity(sample)
	if id == nil {
		return errors.New("sample value has no identity")
	}
	if name == "" {
		name = reflect.TypeOf(sample).String()
	}
	return c.Register(id, name, nil, nil, nil)
}

// Unregister removes a registration by name or by type identity.
func (c *Codec) Unregister(key interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name, ok := key.(string); ok {
		if entry, ok := c.types[name]; ok {
			delete(c.types, entry.name)
			delete(c.ids, entry.id)
			return nil
		}
	}
	if entry, ok := c.ids[key]; ok {
		delete(c.types, entry.name)
		delete(c.ids, entry.id)
		return nil
	}
	return errors.Errorf("no registration for %v", key)
}

// RegisterResource binds an opaque host object to a stable name. Resources
// serialize by name only and resolve against the decoding codec's registry.
func (c *Codec) RegisterResource(obj interface{}, name string) error {
	if obj == nil {
		return errors.New("resource cannot be nil")
	}
	if name == "" {
		return errors.New("resource name cannot be empty")
	}
	key, ok := resourceKey(obj)
	if !ok {
		return errors.Errorf("resource of type %T has no usable identity", obj)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.resources[name]; ok {
		return errors.Wrapf(ErrDuplicateRegistration, "resource name %q", name)
	}
	if _, ok := c.resourceIDs[key]; ok {
		return errors.Wrapf(ErrDuplicateRegistration, "resource %v", obj)
	}
	c.resources[name] = obj
	c.resourceIDs[key] = name
	return nil
}

func (c *Codec) UnregisterResource(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.resources[name]
	if !ok {
		return errors.Errorf("no resource registered as %q", name)
	}
	key, _ := resourceKey(obj)
	delete(c.resources, name)
	delete(c.resourceIDs, key)
	return nil
}

// resourceKey derives a comparable identity for a resource object. Func
// values are keyed by code pointer; everything else must be comparable.
func resourceKey(obj interface{}) (interface{}, bool) {
	rv := reflect.ValueOf(obj)
	if rv.Kind() == reflect.Func {
		return funcKey{rv.Pointer()}, true
	}
	if !rv.Type().Comparable() {
		return nil, false
	}
	return obj, true
}

type funcKey struct {
	ptr uintptr
}

func (c *Codec) identity(v interface{}) interface{} {
	if t, ok := v.(*value.Table); ok {
		return t.Meta()
	}
	if c.identityFn != nil {
		return c.identityFn(v)
	}
	return reflect.TypeOf(v)
}
