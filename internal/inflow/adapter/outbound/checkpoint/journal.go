package checkpoint

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/spaolacci/murmur3"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

const (
	// JournalFileName is the append-only log kept in the checkpoint dir.
	JournalFileName = "checkpoint.log"

	maxKeyLen = 4 * 1024
)

var ErrStoreClosed = errors.New("checkpoint store closed")

// Journal is a file-backed CheckpointStore. Every completed position is
// appended as one entry and the in-memory index is rebuilt by replaying the
// log on open.
type Journal struct {
	indexMu sync.RWMutex
	fileMu  sync.Mutex
	path    string
	file    *os.File
	fsync   bool
	index   map[string]map[int]struct{}
}

var _ port.CheckpointStore = (*Journal)(nil)

// OpenJournal opens or creates the journal in dir. A partially written
// entry at the tail, left by a crash, is truncated away.
func OpenJournal(dir string, fsync bool) (*Journal, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	j := &Journal{
		path:  filepath.Join(filepath.Clean(dir), JournalFileName),
		fsync: fsync,
		index: make(map[string]map[int]struct{}),
	}
	if err := j.replay(); err != nil {
		return nil, fmt.Errorf("failed to replay checkpoint journal: %w", err)
	}

	file, err := os.OpenFile(j.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304
	if err != nil {
		return nil, err
	}
	j.file = file
	return j, nil
}

func (j *Journal) Completed(ctx context.Context, runKey string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	j.indexMu.RLock()
	defer j.indexMu.RUnlock()

	positions := make([]int, 0, len(j.index[runKey]))
	for pos := range j.index[runKey] {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions, nil
}

// MarkCompleted appends an entry. Positions already recorded are skipped.
func (j *Journal) MarkCompleted(ctx context.Context, runKey string, position int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(runKey) == 0 || len(runKey) > maxKeyLen {
		return fmt.Errorf("invalid run key length %d", len(runKey))
	}
	if position < 0 || int64(position) > int64(^uint32(0)) {
		return fmt.Errorf("%w: %d", port.ErrPositionOutOfRange, position)
	}

	j.indexMu.RLock()
	_, exists := j.index[runKey][position]
	j.indexMu.RUnlock()
	if exists {
		return nil
	}

	j.fileMu.Lock()
	defer j.fileMu.Unlock()
	if j.file == nil {
		return ErrStoreClosed
	}

	if _, err := j.file.Write(encodeEntry(runKey, position)); err != nil {
		return fmt.Errorf("failed to append checkpoint: %w", err)
	}
	if j.fsync {
		if err := j.file.Sync(); err != nil {
			return err
		}
	}

	j.indexMu.Lock()
	j.addLocked(runKey, position)
	j.indexMu.Unlock()
	return nil
}

func (j *Journal) Close() error {
	j.fileMu.Lock()
	defer j.fileMu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

func (j *Journal) addLocked(runKey string, position int) {
	set, ok := j.index[runKey]
	if !ok {
		set = make(map[int]struct{})
		j.index[runKey] = set
	}
	set[position] = struct{}{}
}

// Format: Key_Len (4) | Key (N) | Position (4) | Checksum (4)
func encodeEntry(runKey string, position int) []byte {
	buf := make([]byte, 4+len(runKey)+4+4)
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(runKey))) // #nosec G115
	copy(buf[4:], runKey)
	body := 4 + len(runKey)
	binary.BigEndian.PutUint32(buf[body:body+4], uint32(position)) // #nosec G115
	binary.BigEndian.PutUint32(buf[body+4:], murmur3.Sum32(buf[:body+4]))
	return buf
}

func (j *Journal) replay() error {
	file, err := os.OpenFile(j.path, os.O_RDWR|os.O_CREATE, 0600) // #nosec G304
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	reader := bufio.NewReader(file)
	offset := int64(0)
	truncated := false

	for {
		header := make([]byte, 4)
		if _, err := io.ReadFull(reader, header); err != nil {
			if err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				truncated = true
				break
			}
			return fmt.Errorf("failed to read key len: %w", err)
		}
		keyLen := int(binary.BigEndian.Uint32(header))
		if keyLen <= 0 || keyLen > maxKeyLen {
			truncated = true
			break
		}

		rest := make([]byte, keyLen+8)
		if _, err := io.ReadFull(reader, rest); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				truncated = true
				break
			}
			return fmt.Errorf("failed to read entry: %w", err)
		}

		entry := append(header, rest...)
		body := 4 + keyLen
		if murmur3.Sum32(entry[:body+4]) != binary.BigEndian.Uint32(entry[body+4:]) {
			truncated = true
			break
		}

		j.addLocked(string(entry[4:body]), int(binary.BigEndian.Uint32(entry[body:body+4])))
		offset += int64(len(entry))
	}

	if truncated {
		if err := file.Truncate(offset); err != nil {
			return fmt.Errorf("failed to truncate partial journal: %w", err)
		}
		logger.Warnw("Truncated partial checkpoint journal tail during replay", "path", j.path, "valid_bytes", offset)
	}
	return nil
}
