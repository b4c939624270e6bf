package archive

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/syndtr/goleveldb/leveldb"

	"bser/cli"
	"bser/config"
	"bser/store"
	"bser/wire"
)

var cmd = &cobra.Command{
	Use:   "archive",
	Short: "Commands for storing and retrieving serialized tuples.",
}

func AddCmd(parent *cobra.Command) {
	parent.AddCommand(cmd)
}

func openDB(c *cobra.Command) (*leveldb.DB, error) {
	homeDir := cli.GetHomeDir(c)
	db, err := store.Open(config.ExpandDBPath(homeDir))
	if err != nil {
		return nil, errors.Wrap(err, "error opening archive database")
	}
	return db, nil
}

func newCodec(c *cobra.Command) (*wire.Codec, *config.Config, error) {
	cfg, err := cli.GetConfig(c)
	if err != nil {
		return nil, nil, err
	}
	codec := wire.New()
	codec.SetLegacyNumbers(cfg.Archive.LegacyNumbers)
	return codec, cfg, nil
}
