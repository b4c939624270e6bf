package wire

import (
	"github.com/pkg/errors"

	"bser/value"
)

func errorIs(err, target error) bool {
	return errors.Is(err, target)
}

func roundTrip(c *Codec, vals ...interface{}) ([]interface{}, error) {
	data, err := c.Serialize(vals...)
	if err != nil {
		return nil, err
	}
	return c.Deserialize(data)
}

// registeredMeta is a throwaway identity token for table-based custom
// types in tests.
type registeredMeta struct {
	name string
}

// newMetaTable builds a table from alternating key/value pairs and stamps
// it with the given identity token.
func newMetaTable(meta interface{}, pairs ...interface{}) *value.Table {
	t := value.NewTable()
	for i := 0; i < len(pairs); i += 2 {
		t.MustSet(pairs[i], pairs[i+1])
	}
	if meta != nil {
		t.SetMeta(meta)
	}
	return t
}
