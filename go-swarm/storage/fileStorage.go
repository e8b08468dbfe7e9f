package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

const REPORT_EXT = ".bencode"

// fileStorage writes one bencoded file per run into a directory.
type fileStorage struct {
	sync.Mutex
	fs  afero.Fs
	dir string
}

func NewFileStorage(fs afero.Fs, dir string) (Storage, error) {
	if _, err := fs.Stat(dir); os.IsNotExist(err) {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return &fileStorage{
		fs:  fs,
		dir: dir,
	}, nil
}

func (s *fileStorage) path(id string) string {
	return filepath.Join(s.dir, id+REPORT_EXT)
}

func (s *fileStorage) SaveRun(report *Report) error {
	s.Lock()
	defer s.Unlock()

	file, err := s.fs.OpenFile(s.path(report.ID), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := encodeReport(file, report); err != nil {
		file.Close()
		return fmt.Errorf("encode run %s: %w", report.ID, err)
	}
	return file.Close()
}

func (s *fileStorage) LoadRun(id string) (*Report, error) {
	s.Lock()
	defer s.Unlock()

	file, err := s.fs.Open(s.path(id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	report, err := decodeReport(file)
	if err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return report, nil
}

func (s *fileStorage) ListRuns() ([]string, error) {
	s.Lock()
	defer s.Unlock()

	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, info := range infos {
		if !info.IsDir() && strings.HasSuffix(info.Name(), REPORT_EXT) {
			ids = append(ids, strings.TrimSuffix(info.Name(), REPORT_EXT))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *fileStorage) Close() error {
	return nil
}
