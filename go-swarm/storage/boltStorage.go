package storage

import (
	"bytes"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
)

var runsBucket = []byte("runs")

// boltStorage keeps every report in the runs bucket, keyed by run id.
type boltStorage struct {
	db *bolt.DB
}

func NewBoltStorage(path string) (Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	err = db.Update(func(btx *bolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &boltStorage{db: db}, nil
}

func (s *boltStorage) SaveRun(report *Report) error {
	data, err := marshalReport(report)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", report.ID, err)
	}
	return s.db.Update(func(btx *bolt.Tx) error {
		return btx.Bucket(runsBucket).Put([]byte(report.ID), data)
	})
}

func (s *boltStorage) LoadRun(id string) (*Report, error) {
	var report *Report
	err := s.db.View(func(btx *bolt.Tx) error {
		data := btx.Bucket(runsBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		// data is only valid inside the transaction
		var err error
		report, err = decodeReport(bytes.NewReader(data))
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *boltStorage) ListRuns() ([]string, error) {
	ids := []string{}
	err := s.db.View(func(btx *bolt.Tx) error {
		return btx.Bucket(runsBucket).ForEach(func(k, v []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *boltStorage) Close() error {
	return s.db.Close()
}
