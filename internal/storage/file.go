package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "mcnotify/pkg/logx"
)

// fileStore appends audit entries to <prefix>.audit.jsonl (JSON Lines).
// The most recent entries are also kept in memory for RecentAudit.
type fileStore struct {
	log logx.Logger

	mu        sync.Mutex
	auditFile *os.File
	recent    []AuditEntry
}

const fileRecentMax = 500

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	auditPath := filepath.Join(dir, base) + ".audit.jsonl"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	recent, err := replayAudit(auditPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("audit replay failed; starting with empty history", logx.String("path", auditPath), logx.Err(err))
	}

	af, err := os.OpenFile(auditPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return &fileStore{log: log, auditFile: af, recent: recent}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auditFile == nil {
		return nil
	}
	err := s.auditFile.Close()
	s.auditFile = nil
	return err
}

func (s *fileStore) AppendAudit(ctx context.Context, e AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auditFile == nil {
		return errors.New("audit file closed")
	}
	if err := json.NewEncoder(s.auditFile).Encode(e); err != nil {
		return err
	}
	s.recent = appendBounded(s.recent, e, fileRecentMax)
	return nil
}

func (s *fileStore) RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.recent, limit), nil
}

func replayAudit(path string) ([]AuditEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []AuditEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e AuditEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		out = appendBounded(out, e, fileRecentMax)
	}
	return out, sc.Err()
}

func appendBounded(in []AuditEntry, e AuditEntry, max int) []AuditEntry {
	in = append(in, e)
	if len(in) > max {
		in = in[len(in)-max:]
	}
	return in
}

func newestFirst(in []AuditEntry, limit int) []AuditEntry {
	if limit <= 0 || limit > len(in) {
		limit = len(in)
	}
	out := make([]AuditEntry, 0, limit)
	for i := len(in) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, in[i])
	}
	return out
}
