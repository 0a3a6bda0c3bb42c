package typical

import (
	"sort"
	"strings"

	"github.com/ducminhgd/typical/internal/caseconv"
)

// Case is the case-conversion policy applied to output field names.
type Case int

const (
	CaseUnchanged Case = iota
	CaseCamel
	CaseSnake
	CasePascal
	CaseKebab
)

// Transform applies the policy to a field name.
func (c Case) Transform(name string) string {
	switch c {
	case CaseCamel:
		return caseconv.Camel(name)
	case CaseSnake:
		return caseconv.Snake(name)
	case CasePascal:
		return caseconv.Pascal(name)
	case CaseKebab:
		return caseconv.Kebab(name)
	}
	return name
}

func (c Case) String() string {
	switch c {
	case CaseCamel:
		return "camel"
	case CaseSnake:
		return "snake"
	case CasePascal:
		return "pascal"
	case CaseKebab:
		return "kebab"
	}
	return "unchanged"
}

// CaseFromString maps a policy name onto a Case; unknown names leave names
// unchanged.
func CaseFromString(s string) Case {
	switch strings.ToLower(s) {
	case "camel", "camelcase":
		return CaseCamel
	case "snake", "snake_case":
		return CaseSnake
	case "pascal", "pascalcase":
		return CasePascal
	case "kebab", "kebab-case":
		return CaseKebab
	}
	return CaseUnchanged
}

// SerdeFlags declaratively controls field projection for structured types.
// The zero value means "project every field unchanged".
type SerdeFlags struct {
	// Fields renames internal field names to explicit external names.
	Fields map[string]string
	// Include adds field names to the output set even when other rules would
	// drop them.
	Include []string
	// Exclude removes field names from the output map only; excluded fields
	// stay settable on input.
	Exclude []string
	// Omit lists values and/or Types that suppress a field at encode time:
	// a Type entry drops every field declared with that type, any other entry
	// drops fields whose current value equals it.
	Omit []any
	// Case converts output names that were not explicitly renamed.
	Case Case
	// SignatureOnly restricts projection to constructor-visible fields.
	SignatureOnly bool
}

// A FlagsProvider attaches projection flags directly to a type; these always
// override flags passed by the caller.
type FlagsProvider interface {
	SerdeFlags() SerdeFlags
}

// nested returns the flags propagated into nested field resolutions:
// renames, includes, and excludes apply only to the level that declared them.
func (f SerdeFlags) nested() SerdeFlags {
	return SerdeFlags{Omit: f.Omit, Case: f.Case, SignatureOnly: f.SignatureOnly}
}

// fingerprint renders a stable token so flag-equal annotations collapse to
// one cache entry.
func (f SerdeFlags) fingerprint() string {
	var b strings.Builder
	b.WriteString("case=")
	b.WriteString(f.Case.String())
	if f.SignatureOnly {
		b.WriteString(";sig")
	}
	if len(f.Fields) > 0 {
		keys := make([]string, 0, len(f.Fields))
		for k := range f.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(";fields=")
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k + ">" + f.Fields[k])
		}
	}
	if len(f.Include) > 0 {
		in := append([]string(nil), f.Include...)
		sort.Strings(in)
		b.WriteString(";include=" + strings.Join(in, ","))
	}
	if len(f.Exclude) > 0 {
		ex := append([]string(nil), f.Exclude...)
		sort.Strings(ex)
		b.WriteString(";exclude=" + strings.Join(ex, ","))
	}
	if len(f.Omit) > 0 {
		b.WriteString(";omit=" + strings.Join(sortedTokens(f.Omit), ","))
	}
	return b.String()
}
