package prompt

import (
	"sort"
	"strings"

	"github.com/kbukum/openbatch/errors"
	"github.com/kbukum/openbatch/util"
)

// Rendered is the output of a successful Render.
type Rendered struct {
	Text string
	// Unused lists mapping keys the text never referenced, sorted.
	Unused []string
}

// Render substitutes every {name} placeholder in text with values[name].
//
// Every placeholder must be present in values; otherwise an
// errors.ErrCodeMissingPlaceholder error naming all unresolved placeholders
// is returned and no partial text is produced.
func Render(text string, values map[string]string) (Rendered, error) {
	var (
		b       strings.Builder
		missing []string
		used    = make(map[string]struct{})
	)
	b.Grow(len(text))

	scan(text,
		func(lit string) { b.WriteString(lit) },
		func(name string) {
			used[name] = struct{}{}
			v, ok := values[name]
			if !ok {
				missing = append(missing, name)
				return
			}
			b.WriteString(v)
		},
	)
	if len(missing) > 0 {
		return Rendered{}, errors.MissingPlaceholder(missing)
	}
	return Rendered{Text: b.String(), Unused: unused(values, used)}, nil
}

// Placeholders returns the placeholder names referenced by text, in
// first-use order.
func Placeholders(text string) []string {
	var names []string
	scan(text, func(string) {}, func(name string) { names = append(names, name) })
	return util.Unique(names)
}

// scan walks text calling lit for literal runs and ph for each placeholder.
// "{{" and "}}" are literal braces. A "{" that does not open a valid
// identifier followed by "}" is kept as a literal character.
func scan(text string, lit func(string), ph func(string)) {
	start := 0
	flush := func(end int) {
		if end > start {
			lit(text[start:end])
		}
	}
	for i := 0; i < len(text); {
		switch text[i] {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				flush(i)
				lit("{")
				i += 2
				start = i
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				i++
				continue
			}
			name := text[i+1 : i+1+end]
			if !isIdentifier(name) {
				i++
				continue
			}
			flush(i)
			ph(name)
			i += end + 2
			start = i
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				flush(i)
				lit("}")
				i += 2
				start = i
				continue
			}
			i++
		default:
			i++
		}
	}
	flush(len(text))
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func unused(values map[string]string, used map[string]struct{}) []string {
	var out []string
	for k := range values {
		if _, ok := used[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
