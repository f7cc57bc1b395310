package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "mcnotify/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", " NONE "} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("Open(%q) = %v, %v; want nil, nil", driver, st, err)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "redis", Path: "x"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestAuditRoundTrip(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "store.db")
			st, err := Open(Config{Driver: driver, Path: path, BusyTimeout: time.Second}, logx.Nop())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer st.Close()

			ctx := context.Background()
			first := AuditEntry{ActorID: "id-1", ActorName: "Alice", Command: "xprate_modify", Args: []string{"2.0", "true"}, Recipients: 3}
			second := AuditEntry{ActorName: "Console", Command: "xprate_end"}
			if err := st.AppendAudit(ctx, first); err != nil {
				t.Fatalf("AppendAudit: %v", err)
			}
			if err := st.AppendAudit(ctx, second); err != nil {
				t.Fatalf("AppendAudit: %v", err)
			}

			got, err := st.RecentAudit(ctx, 10)
			if err != nil {
				t.Fatalf("RecentAudit: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("len = %d, want 2", len(got))
			}
			if got[0].Command != "xprate_end" || got[1].Command != "xprate_modify" {
				t.Fatalf("order = %s,%s; want newest first", got[0].Command, got[1].Command)
			}
			if got[1].ActorID != "id-1" || len(got[1].Args) != 2 || got[1].Args[0] != "2.0" || got[1].Recipients != 3 {
				t.Fatalf("entry = %+v", got[1])
			}
			if got[0].At.IsZero() {
				t.Fatal("At not stamped")
			}

			limited, err := st.RecentAudit(ctx, 1)
			if err != nil || len(limited) != 1 {
				t.Fatalf("RecentAudit(1) = %d entries, err %v", len(limited), err)
			}
		})
	}
}

func TestFileStoreReplaysExistingAudit(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "audit")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.AppendAudit(context.Background(), AuditEntry{ActorName: "Bob", Command: "xprate_end"}); err != nil {
		t.Fatalf("AppendAudit: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err = Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	got, err := st.RecentAudit(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentAudit: %v", err)
	}
	if len(got) != 1 || got[0].ActorName != "Bob" {
		t.Fatalf("replayed = %+v", got)
	}
}
