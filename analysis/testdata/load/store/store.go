package store

type Store struct {
	value string
}

func New() *Store { return &Store{} }

func (s *Store) Put(v string) { s.value = v }

func (s *Store) Get() string { return s.value }
