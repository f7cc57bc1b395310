package locale

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	yaml "go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
)

// BaseLocale is the canonical source locale and the fallback for missing keys.
const BaseLocale = "en-US"

var ErrMissingKey = errors.New("missing locale key")

//go:embed locales/*.yaml
var embeddedFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

type snapshot struct {
	tag      language.Tag
	messages map[string]string
	fallback map[string]string
}

// Catalog resolves messages for one selected locale. Reload swaps the whole
// snapshot atomically, so Resolve is deterministic between reloads and safe
// for concurrent use.
type Catalog struct {
	cur atomic.Pointer[snapshot]
}

// Load builds a catalog from the embedded catalogs plus any *.yaml files in
// dir (may be empty). Files in dir override embedded keys of the same locale.
// want is matched against the available tags; no match selects BaseLocale.
func Load(dir, want string) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Reload(dir, want); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the catalogs and swaps them in on success.
func (c *Catalog) Reload(dir, want string) error {
	sets := map[string]map[string]string{}
	if err := loadFS(embeddedFS, "locales", sets); err != nil {
		return err
	}
	if strings.TrimSpace(dir) != "" {
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("locale dir: %w", err)
		}
		if err := loadFS(os.DirFS(dir), ".", sets); err != nil {
			return err
		}
	}
	snap, err := selectLocale(sets, want)
	if err != nil {
		return err
	}
	c.cur.Store(snap)
	return nil
}

// Tag returns the selected locale.
func (c *Catalog) Tag() language.Tag {
	return c.cur.Load().tag
}

// Has reports whether key resolves in the selected locale or the base locale.
func (c *Catalog) Has(key string) bool {
	_, ok := c.cur.Load().lookup(key)
	return ok
}

// Resolve looks up key and substitutes params positionally.
func (c *Catalog) Resolve(key string, params ...string) (string, error) {
	tmpl, ok := c.cur.Load().lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	return Format(tmpl, params...), nil
}

func (s *snapshot) lookup(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if v, ok := s.messages[key]; ok {
		return v, true
	}
	v, ok := s.fallback[key]
	return v, ok
}

func loadFS(fsys fs.FS, root string, sets map[string]map[string]string) error {
	paths, err := fs.Glob(fsys, path.Join(root, "*.yaml"))
	if err != nil {
		return fmt.Errorf("glob locale catalogs: %w", err)
	}
	sort.Strings(paths)
	for _, p := range paths {
		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read catalog %s: %w", p, err)
		}
		var f catalogFile
		if err := yaml.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("parse catalog %s: %w", p, err)
		}
		fromName := strings.TrimSuffix(path.Base(p), path.Ext(p))
		loc := strings.TrimSpace(f.Locale)
		if loc == "" {
			loc = fromName
		}
		if loc != fromName {
			return fmt.Errorf("catalog %s: locale %q must match file name", p, loc)
		}
		if _, err := language.Parse(loc); err != nil {
			return fmt.Errorf("catalog %s: %w", p, err)
		}
		dst := sets[loc]
		if dst == nil {
			dst = map[string]string{}
			sets[loc] = dst
		}
		for k, v := range f.Messages {
			k = strings.TrimSpace(k)
			if k == "" {
				return fmt.Errorf("catalog %s: message key cannot be blank", p)
			}
			dst[k] = translateCodes(v)
		}
	}
	return nil
}

func selectLocale(sets map[string]map[string]string, want string) (*snapshot, error) {
	base, ok := sets[BaseLocale]
	if !ok {
		return nil, fmt.Errorf("base locale %s is not defined", BaseLocale)
	}
	names := make([]string, 0, len(sets))
	for name := range sets {
		if name != BaseLocale {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	// The base locale goes first so it wins when nothing matches.
	names = append([]string{BaseLocale}, names...)

	tags := make([]language.Tag, len(names))
	for i, n := range names {
		tags[i] = language.MustParse(n)
	}

	chosen := 0
	if w := strings.TrimSpace(want); w != "" {
		wantTag, err := language.Parse(strings.ReplaceAll(w, "_", "-"))
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", want, err)
		}
		_, idx, conf := language.NewMatcher(tags).Match(wantTag)
		if conf != language.No {
			chosen = idx
		}
	}
	return &snapshot{tag: tags[chosen], messages: sets[names[chosen]], fallback: base}, nil
}

// Format substitutes {n} with params[n]. Out-of-range or malformed
// placeholders are left untouched; "''" becomes a single quote.
func Format(tmpl string, params ...string) string {
	if !strings.ContainsAny(tmpl, "{'") {
		return tmpl
	}
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		if ch == '\'' && i+1 < len(tmpl) && tmpl[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		if ch == '{' {
			if end := strings.IndexByte(tmpl[i:], '}'); end > 1 {
				if n, err := strconv.Atoi(tmpl[i+1 : i+end]); err == nil && n >= 0 && n < len(params) {
					b.WriteString(params[n])
					i += end
					continue
				}
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// translateCodes rewrites '&x' formatting codes to '§x'.
func translateCodes(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	rs := []rune(s)
	for i := 0; i+1 < len(rs); i++ {
		if rs[i] == '&' && strings.ContainsRune("0123456789abcdefklmnorABCDEFKLMNOR", rs[i+1]) {
			rs[i] = '§'
		}
	}
	return string(rs)
}
