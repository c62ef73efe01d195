package dbconfig

import (
	"sort"
	"sync"
)

// InmemStore is a Store held in memory.
type InmemStore struct {
	sync.RWMutex
	objects map[string]map[string]*Object
}

// NewInmemStore ...
func NewInmemStore() *InmemStore {
	return &InmemStore{
		objects: make(map[string]map[string]*Object),
	}
}

// Get implements the Store interface.
func (s *InmemStore) Get(node, config string) (*Object, error) {
	s.RLock()
	defer s.RUnlock()
	obj, ok := s.objects[node][config]
	if !ok {
		return nil, notFound(node, config)
	}
	return obj.Clone(), nil
}

// Put implements the Store interface.
func (s *InmemStore) Put(obj *Object) error {
	if err := checkKey(obj); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	if s.objects[obj.Node] == nil {
		s.objects[obj.Node] = make(map[string]*Object)
	}
	s.objects[obj.Node][obj.Config] = obj.Clone()
	return nil
}

// List implements the Store interface.
func (s *InmemStore) List(node string) ([]string, error) {
	s.RLock()
	defer s.RUnlock()
	res := []string{}
	for name := range s.objects[node] {
		res = append(res, name)
	}
	sort.Strings(res)
	return res, nil
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	return nil
}
