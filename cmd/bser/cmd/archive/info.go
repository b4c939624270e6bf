package archive

import (
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"bser/store"
)

var infoCmd = &cobra.Command{
	Use:   "info <names>",
	Short: "Returns metadata about stored archives.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := strings.Split(args[0], ",")

		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{
			"Name",
			"Size",
			"Checksum",
			"Created At",
		})
		for _, name := range names {
			info, err := store.GetArchiveInfo(db, name)
			if err != nil {
				return err
			}
			table.Append([]string{
				info.Name,
				strconv.Itoa(info.Size),
				info.Checksum.String(),
				info.CreatedAt.String(),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	cmd.AddCommand(infoCmd)
}
