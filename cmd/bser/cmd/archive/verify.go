package archive

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bser/store"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verifies the checksums of every stored archive.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		var names []string
		err = store.StreamArchiveInfo(db, "", func(info *store.ArchiveInfo) bool {
			names = append(names, info.Name)
			return true
		})
		if err != nil {
			return err
		}

		var eg errgroup.Group
		for _, name := range names {
			name := name
			eg.Go(func() error {
				// GetArchive checks the payload against its info record
				if _, err := store.GetArchive(db, name); err != nil {
					return errors.Wrapf(err, "archive %q failed verification", name)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}
		fmt.Printf("Verified %d archives.\n", len(names))
		return nil
	},
}

func init() {
	cmd.AddCommand(verifyCmd)
}
