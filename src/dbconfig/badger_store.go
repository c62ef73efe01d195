package dbconfig

import (
	"fmt"
	"strings"

	"github.com/b2slc/slowcontrol/src/common"
	"github.com/dgraph-io/badger"
)

const configPrefix = "config"

// BadgerStore is a Store persisted in a badger database.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// NewBadgerStore opens, or creates, the database in path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = true
	handle, err := badger.Open(opts)
	if err != nil {
		return nil, common.NewError(common.ConfigErr, "open "+path, err)
	}
	return &BadgerStore{
		db:   handle,
		path: path,
	}, nil
}

// Path ...
func (s *BadgerStore) Path() string {
	return s.path
}

func configKey(node, config string) []byte {
	return []byte(fmt.Sprintf("%s/%s/%s", configPrefix, node, config))
}

func nodePrefix(node string) []byte {
	return []byte(fmt.Sprintf("%s/%s/", configPrefix, node))
}

// Get implements the Store interface.
func (s *BadgerStore) Get(node, config string) (*Object, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(configKey(node, config))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, notFound(node, config)
	}
	if err != nil {
		return nil, err
	}

	obj := new(Object)
	if err := obj.Unmarshal(data); err != nil {
		return nil, common.NewError(common.ConfigErr, "decode "+string(configKey(node, config)), err)
	}
	return obj, nil
}

// Put implements the Store interface.
func (s *BadgerStore) Put(obj *Object) error {
	if err := checkKey(obj); err != nil {
		return err
	}
	val, err := obj.Marshal()
	if err != nil {
		return err
	}
	//insert [config/node/config] => [object json]
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(configKey(obj.Node, obj.Config), val)
	})
}

// List implements the Store interface.
func (s *BadgerStore) List(node string) ([]string, error) {
	res := []string{}
	prefix := nodePrefix(node)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := string(it.Item().Key())
			res = append(res, strings.TrimPrefix(k, string(prefix)))
		}
		return nil
	})
	return res, err
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
