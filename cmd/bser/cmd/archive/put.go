package archive

import (
	"bufio"
	"bytes"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/syndtr/goleveldb/leveldb"

	"bser/store"
	"bser/value"
)

var putCmd = &cobra.Command{
	Use:   "put <name> <json?>",
	Short: "Serializes a JSON document and stores it under the given name.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		var raw []byte
		if len(args) < 2 {
			if isatty.IsTerminal(os.Stdin.Fd()) {
				raw = readDataTTY()
			} else {
				var err error
				raw, err = ioutil.ReadAll(bufio.NewReader(os.Stdin))
				if err != nil {
					return err
				}
			}
		} else {
			raw = []byte(args[1])
		}

		val, err := value.FromJSONBytes(raw)
		if err != nil {
			return err
		}
		codec, _, err := newCodec(cmd)
		if err != nil {
			return err
		}
		payload, err := codec.Serialize(val)
		if err != nil {
			return err
		}

		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		var info *store.ArchiveInfo
		err = store.WithTx(db, func(tx *leveldb.Transaction) error {
			var err error
			info, err = store.PutArchiveTx(tx, name, payload)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Printf("Success. Wrote %d bytes. Checksum: %s\n", info.Size, info.Checksum)
		return nil
	},
}

func readDataTTY() []byte {
	fmt.Println("Paste or type the JSON you would like to store below.")
	fmt.Println("When you are finished, press Ctrl+D.")

	var buf bytes.Buffer
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		buf.Write(scanner.Bytes())
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

func init() {
	cmd.AddCommand(putCmd)
}
