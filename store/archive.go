package store

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"bser/crypto"
)

var (
	archiveInfoPrefix = Prefixer("archives/info")
	archiveDataPrefix = Prefixer("archives/data")
)

var ErrArchiveNotFound = errors.New("archive not found")

// ArchiveInfo describes a stored serialized tuple.
type ArchiveInfo struct {
	Name      string      `json:"name"`
	Size      int         `json:"size"`
	Checksum  crypto.Hash `json:"checksum"`
	CreatedAt time.Time   `json:"created_at"`
}

// PutArchiveTx stores payload under name together with its info record.
// An existing archive of the same name is overwritten.
func PutArchiveTx(tx *leveldb.Transaction, name string, payload []byte) (*ArchiveInfo, error) {
	if name == "" {
		return nil, errors.New("archive name cannot be empty")
	}
	info := &ArchiveInfo{
		Name:      name,
		Size:      len(payload),
		Checksum:  crypto.Blake2B256(payload),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	infoJSON, err := json.Marshal(info)
	if err != nil {
		return nil, errors.Wrap(err, "error marshaling archive info")
	}
	if err := tx.Put(archiveInfoPrefix(name), infoJSON, nil); err != nil {
		return nil, errors.Wrap(err, "error storing archive info")
	}
	if err := tx.Put(archiveDataPrefix(name), payload, nil); err != nil {
		return nil, errors.Wrap(err, "error storing archive data")
	}
	logger.Debug("stored archive", "name", name, "size", info.Size)
	return info, nil
}

// GetArchive returns the payload stored under name after verifying its
// checksum against the info record.
func GetArchive(db *leveldb.DB, name string) ([]byte, error) {
	info, err := GetArchiveInfo(db, name)
	if err != nil {
		return nil, err
	}
	payload, err := db.Get(archiveDataPrefix(name), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, errors.Wrapf(ErrArchiveNotFound, "name %q", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "error getting archive data")
	}
	if sum := crypto.Blake2B256(payload); !bytes.Equal(sum.Bytes(), info.Checksum.Bytes()) {
		return nil, errors.Errorf("archive %q is corrupt: checksum %s, expected %s", name, sum, info.Checksum)
	}
	return payload, nil
}

func GetArchiveInfo(db *leveldb.DB, name string) (*ArchiveInfo, error) {
	res, err := db.Get(archiveInfoPrefix(name), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, errors.Wrapf(ErrArchiveNotFound, "name %q", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "error getting archive info")
	}
	info := &ArchiveInfo{}
	if err := json.Unmarshal(res, info); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling archive info")
	}
	return info, nil
}

// StreamArchiveInfo iterates info records in name order, beginning with the
// first name after start (start itself is excluded), calling cb for each
// until it returns false.
func StreamArchiveInfo(db *leveldb.DB, start string, cb func(info *ArchiveInfo) bool) error {
	iterRange := util.BytesPrefix(archiveInfoPrefix())
	if start != "" {
		// exclusive start: the smallest key greater than start's own key
		iterRange.Start = append(archiveInfoPrefix(start), 0)
	}
	iter := db.NewIterator(iterRange, nil)
	defer iter.Release()
	for iter.Next() {
		info := &ArchiveInfo{}
		if err := json.Unmarshal(iter.Value(), info); err != nil {
			return errors.Wrap(err, "error unmarshaling archive info")
		}
		if !cb(info) {
			break
		}
	}
	return errors.Wrap(iter.Error(), "error iterating archives")
}

func DeleteArchiveTx(tx *leveldb.Transaction, name string) error {
	has, err := tx.Has(archiveInfoPrefix(name), nil)
	if err != nil {
		return errors.Wrap(err, "error checking archive info")
	}
	if !has {
		return errors.Wrapf(ErrArchiveNotFound, "name %q", name)
	}
	if err := tx.Delete(archiveInfoPrefix(name), nil); err != nil {
		return errors.Wrap(err, "error deleting archive info")
	}
	if err := tx.Delete(archiveDataPrefix(name), nil); err != nil {
		return errors.Wrap(err, "error deleting archive data")
	}
	logger.Debug("deleted archive", "name", name)
	return nil
}
