package archive

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/syndtr/goleveldb/leveldb"

	"bser/store"
)

var rmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Deletes a stored archive.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		err = store.WithTx(db, func(tx *leveldb.Transaction) error {
			return store.DeleteArchiveTx(tx, args[0])
		})
		if err != nil {
			return err
		}
		fmt.Printf("Deleted archive %s.\n", args[0])
		return nil
	},
}

func init() {
	cmd.AddCommand(rmCmd)
}
