package console

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var ridSeq atomic.Uint64

// newReqID returns a short, process-unique request id: base36 clock + sequence.
func newReqID() string {
	n := ridSeq.Add(1)
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + strconv.FormatUint(n, 36)
}

// tokenizeCommandLine splits a command line into tokens, honouring single or
// double quotes and backslash escapes:
//
//	notify Steve generic_info Test.Key "two words" --as=Alex
func tokenizeCommandLine(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var (
		out   []string
		buf   strings.Builder
		inQ   bool
		qChar rune
		esc   bool
		had   bool // a quoted empty string is still a token
	)
	flush := func() {
		if buf.Len() > 0 || had {
			out = append(out, buf.String())
			buf.Reset()
		}
		had = false
	}
	for _, ch := range s {
		switch {
		case esc:
			buf.WriteRune(ch)
			esc = false
		case ch == '\\':
			esc = true
		case inQ:
			if ch == qChar {
				inQ = false
				continue
			}
			buf.WriteRune(ch)
		case ch == '"' || ch == '\'':
			inQ, qChar, had = true, ch, true
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			flush()
		default:
			buf.WriteRune(ch)
		}
	}
	flush()
	return out
}

// parseFlags splits args into positionals and flags.
//
// Supported: --k=v, --k v, --flag (bool). A lone "-" and negative numbers
// stay positional.
func parseFlags(args []string) (pos []string, flags map[string]string, bools map[string]bool) {
	flags = map[string]string{}
	bools = map[string]bool{}
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "--") || len(a) == 2 {
			pos = append(pos, a)
			continue
		}
		raw := a[2:]
		if eq := strings.IndexByte(raw, '='); eq >= 0 {
			flags[strings.ToLower(raw[:eq])] = raw[eq+1:]
			continue
		}
		key := strings.ToLower(raw)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
			flags[key] = args[i+1]
			i++
			continue
		}
		bools[key] = true
	}
	return pos, flags, bools
}

// parseSwitch accepts the usual on/off spellings.
func parseSwitch(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1", "enable", "enabled":
		return true, true
	case "off", "false", "no", "0", "disable", "disabled":
		return false, true
	}
	return false, false
}
