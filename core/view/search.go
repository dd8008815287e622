package view

import (
	"sync"
	"time"

	"github.com/trezcool/syllabus/core/debounce"
)

const DefaultSearchDelay = 500 * time.Millisecond

// SearchBox debounces free-text input before merging it into the search params.
type SearchBox struct {
	key       string
	merge     func(key, value string)
	debouncer *debounce.Debouncer

	mu    sync.Mutex
	value string
}

func NewSearchBox(key string, delay time.Duration, merge func(key, value string)) *SearchBox {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &SearchBox{
		key:       key,
		merge:     merge,
		debouncer: debounce.New(delay),
	}
}

// Input records what was typed. The returned channel yields true once the value was merged,
// or false if newer input superseded it.
func (s *SearchBox) Input(value string) <-chan bool {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()

	return s.debouncer.Do(func() {
		s.merge(s.key, value)
	})
}

// Value is the last typed text, merged or not.
func (s *SearchBox) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *SearchBox) Key() string { return s.key }

func (s *SearchBox) Close() {
	s.debouncer.Stop()
}
