package inmemdb

import (
	"sync"

	"github.com/trezcool/syllabus/core/account"
)

type (
	DB struct {
		account *accountTable
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*account.Account
	}
)

func Open() *DB {
	return &DB{
		account: &accountTable{table: make(map[string]*account.Account)},
	}
}
