package archive

import (
	"math"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"bser/store"
)

var listCmd = &cobra.Command{
	Use:   "list <start?> <limit?>",
	Short: "Lists stored archives.",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var start string
		if len(args) >= 1 {
			start = args[0]
		}
		lim := math.MaxInt64
		if len(args) == 2 {
			limit, err := strconv.ParseInt(args[1], 10, 32)
			if err != nil {
				return err
			}
			lim = int(limit)
		}

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
		var count int
		err = store.StreamArchiveInfo(db, start, func(info *store.ArchiveInfo) bool {
			table.Append([]string{
				info.Name,
				strconv.Itoa(info.Size),
				info.Checksum.String(),
				info.CreatedAt.String(),
			})
			count++
			return count < lim
		})
		if err != nil {
			return err
		}
		table.Render()
		return nil
	},
}

func init() {
	cmd.AddCommand(listCmd)
}
