package action

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// KeyPress is a parsed key with modifiers
type KeyPress struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
	Key   string // base key, e.g. "c", "enter", "f1"
}

// Terminal byte sequences for named keys. Aliases share a sequence.
var namedKeys = map[string][]byte{
	"enter":     {'\r'},
	"return":    {'\r'},
	"tab":       {'\t'},
	"esc":       {0x1b},
	"escape":    {0x1b},
	"space":     {' '},
	"backspace": {0x7f},
	"delete":    []byte("\x1b[3~"),
	"del":       []byte("\x1b[3~"),
	"insert":    []byte("\x1b[2~"),
	"ins":       []byte("\x1b[2~"),
	"home":      []byte("\x1b[H"),
	"end":       []byte("\x1b[F"),
	"pageup":    []byte("\x1b[5~"),
	"pgup":      []byte("\x1b[5~"),
	"pagedown":  []byte("\x1b[6~"),
	"pgdn":      []byte("\x1b[6~"),
	"up":        []byte("\x1b[A"),
	"down":      []byte("\x1b[B"),
	"right":     []byte("\x1b[C"),
	"left":      []byte("\x1b[D"),
	"f1":        []byte("\x1bOP"),
	"f2":        []byte("\x1bOQ"),
	"f3":        []byte("\x1bOR"),
	"f4":        []byte("\x1bOS"),
	"f5":        []byte("\x1b[15~"),
	"f6":        []byte("\x1b[17~"),
	"f7":        []byte("\x1b[18~"),
	"f8":        []byte("\x1b[19~"),
	"f9":        []byte("\x1b[20~"),
	"f10":       []byte("\x1b[21~"),
	"f11":       []byte("\x1b[23~"),
	"f12":       []byte("\x1b[24~"),
}

// Control bytes for ctrl+punctuation
var ctrlPunct = map[byte]byte{
	'[':  0x1b,
	'\\': 0x1c,
	']':  0x1d,
	'^':  0x1e,
	'_':  0x1f,
	'?':  0x7f,
}

// ParseKey parses a key string like "ctrl+shift+c" into a KeyPress
func ParseKey(s string) (KeyPress, error) {
	var kp KeyPress

	parts := strings.Split(strings.ToLower(s), "+")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if i == len(parts)-1 {
			kp.Key = part
			break
		}

		switch part {
		case "ctrl", "control":
			kp.Ctrl = true
		case "alt", "option":
			kp.Alt = true
		case "shift":
			kp.Shift = true
		case "meta", "cmd", "command", "win", "super":
			kp.Meta = true
		default:
			return KeyPress{}, fmt.Errorf("unknown modifier: %s", part)
		}
	}

	if kp.Key == "" {
		return KeyPress{}, fmt.Errorf("no key specified")
	}
	if !isValidKey(kp.Key) {
		return KeyPress{}, fmt.Errorf("invalid key: %s", kp.Key)
	}

	return kp, nil
}

// ParseKeys parses every key of a sequence, stopping at the first bad one
func ParseKeys(keys []string) ([]KeyPress, error) {
	out := make([]KeyPress, 0, len(keys))
	for _, s := range keys {
		kp, err := ParseKey(s)
		if err != nil {
			return nil, fmt.Errorf("invalid key %q: %w", s, err)
		}
		out = append(out, kp)
	}
	return out, nil
}

func isValidKey(key string) bool {
	if utf8.RuneCountInString(key) == 1 {
		return true
	}
	_, ok := namedKeys[key]
	return ok
}

func (kp KeyPress) String() string {
	var b strings.Builder
	for _, m := range []struct {
		on   bool
		name string
	}{
		{kp.Ctrl, "ctrl"},
		{kp.Alt, "alt"},
		{kp.Shift, "shift"},
		{kp.Meta, "meta"},
	} {
		if m.on {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(kp.Key)
	return b.String()
}

// ToBytes converts a KeyPress to the bytes a terminal would send
func (kp KeyPress) ToBytes() []byte {
	single := len(kp.Key) == 1

	if kp.Ctrl && !kp.Alt && !kp.Meta && single {
		c := kp.Key[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []byte{c - 'a' + 1}
		case c >= 'A' && c <= 'Z':
			return []byte{c - 'A' + 1}
		}
		if b, ok := ctrlPunct[c]; ok {
			return []byte{b}
		}
	}

	if seq, ok := namedKeys[kp.Key]; ok {
		return append([]byte(nil), seq...)
	}

	if !single {
		return nil
	}

	c := kp.Key[0]
	if kp.Alt {
		return []byte{0x1b, c}
	}
	if kp.Shift && c >= 'a' && c <= 'z' {
		return []byte{c - 32}
	}
	return []byte{c}
}
