package locale

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		tmpl   string
		params []string
		want   string
	}{
		{name: "no placeholders", tmpl: "plain", want: "plain"},
		{name: "ordered", tmpl: "{0} to {1}", params: []string{"a", "b"}, want: "a to b"},
		{name: "reordered", tmpl: "{1} then {0}", params: []string{"a", "b"}, want: "b then a"},
		{name: "repeated", tmpl: "{0}{0}", params: []string{"x"}, want: "xx"},
		{name: "missing param", tmpl: "{0} {3}", params: []string{"a"}, want: "a {3}"},
		{name: "not a number", tmpl: "{name}", params: []string{"a"}, want: "{name}"},
		{name: "escaped quote", tmpl: "it''s {0}", params: []string{"ok"}, want: "it's ok"},
		{name: "unclosed", tmpl: "{0", params: []string{"a"}, want: "{0"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Format(tt.tmpl, tt.params...); got != tt.want {
				t.Fatalf("Format(%q) = %q, want %q", tt.tmpl, got, tt.want)
			}
		})
	}
}

func TestLoadEmbeddedBase(t *testing.T) {
	t.Parallel()
	c, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.Tag().String(); got != BaseLocale {
		t.Fatalf("Tag = %s, want %s", got, BaseLocale)
	}
	got, err := c.Resolve("Notifications.Admin.XPRate.Start.Self", "2.5")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := "§7You have set the global XP rate multiplier to §62.5x"; got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveMissingKey(t *testing.T) {
	t.Parallel()
	c, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err = c.Resolve("No.Such.Key")
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("err = %v, want ErrMissingKey", err)
	}
	if c.Has("No.Such.Key") {
		t.Fatal("Has reported a missing key")
	}
}

func TestLocaleMatchingFallsBackToBase(t *testing.T) {
	t.Parallel()
	c, err := Load("", "de")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.Tag().String(); got != "de-DE" {
		t.Fatalf("Tag = %s, want de-DE", got)
	}
	got, err := c.Resolve("Notifications.Admin.XPRate.End.Self")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "§7Du hast das XP-Raten-Event beendet." {
		t.Fatalf("Resolve = %q", got)
	}
	// Not translated: served from en-US.
	if _, err := c.Resolve("Overhaul.Levelup", "Mining", "1", "10"); err != nil {
		t.Fatalf("fallback Resolve: %v", err)
	}
}

func TestDirOverridesAndReload(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, "en-US.yaml"), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("locale: en-US\nmessages:\n  Server.ConsoleName: \"Overlord\"\n")

	c, err := Load(dir, "en-US")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, _ := c.Resolve("Server.ConsoleName"); got != "Overlord" {
		t.Fatalf("override = %q, want Overlord", got)
	}
	// Untouched embedded keys survive the override.
	if !c.Has("Overhaul.Levelup") {
		t.Fatal("embedded key lost")
	}

	write("locale: en-US\nmessages:\n  Server.ConsoleName: \"&cAdmin\"\n")
	if err := c.Reload(dir, "en-US"); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got, _ := c.Resolve("Server.ConsoleName"); got != "§cAdmin" {
		t.Fatalf("after reload = %q", got)
	}
}

func TestLoadRejectsMismatchedLocale(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fr-FR.yaml"), []byte("locale: en-GB\nmessages:\n  a: b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, ""); err == nil {
		t.Fatal("expected error for mismatched locale")
	}
}
