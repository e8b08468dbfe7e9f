package storage

import (
	"errors"
)

var ErrRunNotFound = errors.New("run not found")

// Storage keeps the reports of finished runs.
type Storage interface {
	SaveRun(report *Report) error
	LoadRun(id string) (*Report, error)
	// ListRuns returns the stored run ids in ascending order.
	ListRuns() ([]string, error)
	Close() error
}
