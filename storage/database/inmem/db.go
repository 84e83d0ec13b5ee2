package inmemdb

import (
	"sync"

	"github.com/PeaceIshola/eduhub/core/subject"
	"github.com/PeaceIshola/eduhub/core/subscription"
	"github.com/PeaceIshola/eduhub/core/user"
)

type (
	DB struct {
		user         *userTable
		subject      *subjectTable
		subscription *subscriptionTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	subjectTable struct {
		sync.RWMutex
		table map[string]*subject.Subject
	}

	subscriptionTable struct {
		sync.RWMutex
		table map[string]*subscription.Subscription
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		subject:      &subjectTable{table: make(map[string]*subject.Subject)},
		subscription: &subscriptionTable{table: make(map[string]*subscription.Subscription)},
	}
	return db, nil
}
