package leveldb

import "github.com/syndtr/goleveldb/leveldb/storage"

func newMemStorage() storage.Storage {
	return storage.NewMemStorage()
}
