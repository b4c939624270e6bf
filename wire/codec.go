package wire

import "sync"

// Codec is an independent serializer instance: a type registry, a resource
// registry and the host hooks. Instances created by New share nothing, so
// two libraries in one process can bind the same type name to different
// codecs. The package-level functions operate on a single default
// instance.
type Codec struct {
	mu          sync.RWMutex
	types       map[string]*typeEntry
	ids         map[interface{}]*typeEntry
	resources   map[string]interface{}
	resourceIDs map[interface{}]string
	identityFn  IdentityFunc
	dumpProc    DumpFunc
	loadProc    LoadFunc
	legacy      bool
}

func New() *Codec {
	return &Codec{
		types:       make(map[string]*typeEntry),
		ids:         make(map[interface{}]*typeEntry),
		resources:   make(map[string]interface{}),
		resourceIDs: make(map[interface{}]string),
	}
}

// SetProcHooks installs the host's dump and load callbacks for opaque
// procedure bodies. Both must be set for tag 210 to be usable.
func (c *Codec) SetProcHooks(dump DumpFunc, load LoadFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dumpProc = dump
	c.loadProc = load
}

// SetIdentityFunc overrides how the codec resolves a host value's type
// identity token. Tables are unaffected; they carry identity in their meta
// token.
func (c *Codec) SetIdentityFunc(fn IdentityFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identityFn = fn
}

// SetLegacyNumbers switches the instance to the text numeric form: numbers
// outside the inline range travel as decimal text between two 203 bytes.
// Encode and decode must agree on the setting; the two forms are not
// distinguishable on the wire.
func (c *Codec) SetLegacyNumbers(legacy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.legacy = legacy
}

var defaultCodec = New()

// Default returns the shared package-level instance.
func Default() *Codec {
	return defaultCodec
}

func Serialize(vals ...interface{}) ([]byte, error) {
	return defaultCodec.Serialize(vals...)
}

func Deserialize(data []byte) ([]interface{}, error) {
	return defaultCodec.Deserialize(data)
}

func DeserializeN(data []byte, n int) ([]interface{}, error) {
	return defaultCodec.DeserializeN(data, n)
}

func Register(id interface{}, name string, enc EncodeFunc, dec DecodeFunc, tmpl *Template) error {
	return defaultCodec.Register(id, name, enc, dec, tmpl)
}

func RegisterType(sample interface{}, name string) error {
	return defaultCodec.RegisterType(sample, name)
}

func Unregister(key interface{}) error {
	return defaultCodec.Unregister(key)
}

func RegisterResource(obj interface{}, name string) error {
	return defaultCodec.RegisterResource(obj, name)
}

func UnregisterResource(name string) error {
	return defaultCodec.UnregisterResource(name)
}
