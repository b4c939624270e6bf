package archive

import (
	"fmt"

	"github.com/spf13/cobra"

	"bser/store"
	"bser/value"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Loads a stored archive and prints its values as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, cfg, err := newCodec(cmd)
		if err != nil {
			return err
		}
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		payload, err := store.GetArchive(db, args[0])
		if err != nil {
			return err
		}

		var vals []interface{}
		if max := cfg.Archive.MaxDeserializeValues; max > 0 {
			vals, err = codec.DeserializeN(payload, max)
		} else {
			vals, err = codec.Deserialize(payload)
		}
		if err != nil {
			return err
		}

		for _, v := range vals {
			out, err := value.ToJSON(v)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		}
		return nil
	},
}

func init() {
	cmd.AddCommand(getCmd)
}
