package collapse

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Encode produces "name at repr(result)", the single clause grammar the
// termination predicates in §4.3 build their stop reasons from.
func Encode(name string, result *Result) string {
	return fmt.Sprintf("%s at %s", name, Repr(result))
}

// Join concatenates clauses with "; ", the reason-string grammar from §6.
func Join(clauses ...string) string {
	return strings.Join(clauses, "; ")
}

// Repr renders result as the textual payload used by Encode/Decode. A nil
// result renders as the empty-indices form.
func Repr(r *Result) string {
	if r == nil {
		return "I{}"
	}
	switch r.Kind {
	case KindIndices:
		keys := sortedIntKeys(r.Indices)
		return "I{" + joinInts(keys) + "}"
	case KindPairs:
		pairs := sortedPairs(r.Pairs)
		parts := make([]string, len(pairs))
		for i, p := range pairs {
			parts[i] = fmt.Sprintf("(%d,%d)", p.I, p.J)
		}
		return "P{" + strings.Join(parts, ",") + "}"
	case KindPerMeasure:
		measures := make([]int, 0, len(r.PerMeasure))
		for m := range r.PerMeasure {
			measures = append(measures, m)
		}
		sort.Ints(measures)
		parts := make([]string, len(measures))
		for i, m := range measures {
			idx := sortedIntKeys(r.PerMeasure[m])
			parts[i] = fmt.Sprintf("%d:[%s]", m, joinInts(idx))
		}
		return "D{" + strings.Join(parts, ",") + "}"
	case KindWhere:
		return fmt.Sprintf("W(%s,%s)", intSliceRepr(r.WhereAxis0), intSliceRepr(r.WhereAxis1))
	default:
		return "I{}"
	}
}

func sortedIntKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func sortedPairs(m map[Pair]bool) []Pair {
	out := make([]Pair, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].I != out[j].I {
			return out[i].I < out[j].I
		}
		return out[i].J < out[j].J
	})
	return out
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func intSliceRepr(xs []int) string {
	return "[" + joinInts(xs) + "]"
}

var clauseRE = regexp.MustCompile(`^(.+?) at (.+)$`)

// Decode splits reason on "; ", parses each "name at payload" clause, and
// returns the name->Result mapping. Later clauses with a repeated name
// overwrite earlier ones, matching Join's left-to-right concatenation order.
func Decode(reason string) (map[string]*Result, error) {
	out := map[string]*Result{}
	if strings.TrimSpace(reason) == "" {
		return out, nil
	}
	for _, clause := range strings.Split(reason, "; ") {
		m := clauseRE.FindStringSubmatch(clause)
		if m == nil {
			return nil, errors.Errorf("collapse: malformed clause %q", clause)
		}
		name, payload := m[1], m[2]
		result, err := parseRepr(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "collapse: decoding clause %q", clause)
		}
		out[name] = result
	}
	return out, nil
}

func parseRepr(payload string) (*Result, error) {
	if len(payload) < 3 {
		return nil, errors.Errorf("malformed payload %q", payload)
	}
	// payload is prefix + opening bracket + content + closing bracket, e.g.
	// "I{1,2,3}" or "W([0,1],[2,3])"; strip the first two and last one.
	prefix, body := payload[0], payload[2:len(payload)-1]

	switch prefix {
	case 'I':
		ints, err := parseIntList(body)
		if err != nil {
			return nil, err
		}
		idx := map[int]bool{}
		for _, i := range ints {
			idx[i] = true
		}
		return &Result{Kind: KindIndices, Indices: idx}, nil
	case 'P':
		pairs := map[Pair]bool{}
		if body != "" {
			for _, tuple := range splitTopLevel(body, ',', '(', ')') {
				tuple = strings.Trim(tuple, "()")
				parts := strings.Split(tuple, ",")
				if len(parts) != 2 {
					return nil, errors.Errorf("malformed pair %q", tuple)
				}
				a, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
				b, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
				if err1 != nil || err2 != nil {
					return nil, errors.Errorf("malformed pair %q", tuple)
				}
				pairs[NewPair(a, b)] = true
			}
		}
		return &Result{Kind: KindPairs, Pairs: pairs}, nil
	case 'D':
		pm := map[int]map[int]bool{}
		if body != "" {
			for _, entry := range splitTopLevel(body, ',', '[', ']') {
				colon := strings.Index(entry, ":")
				if colon < 0 {
					return nil, errors.Errorf("malformed measure entry %q", entry)
				}
				measure, err := strconv.Atoi(strings.TrimSpace(entry[:colon]))
				if err != nil {
					return nil, err
				}
				idxList := strings.Trim(entry[colon+1:], "[]")
				ints, err := parseIntList(idxList)
				if err != nil {
					return nil, err
				}
				s := map[int]bool{}
				for _, i := range ints {
					s[i] = true
				}
				pm[measure] = s
			}
		}
		return &Result{Kind: KindPerMeasure, PerMeasure: pm}, nil
	case 'W':
		// body is "[...],[...]"; split on the top-level comma only, since
		// the slices themselves contain commas.
		parts := splitTopLevel(body, ',', '[', ']')
		if len(parts) != 2 {
			return nil, errors.Errorf("malformed where payload %q", payload)
		}
		axis0, err := parseIntList(strings.Trim(parts[0], "[]"))
		if err != nil {
			return nil, err
		}
		axis1, err := parseIntList(strings.Trim(parts[1], "[]"))
		if err != nil {
			return nil, err
		}
		return &Result{Kind: KindWhere, WhereAxis0: axis0, WhereAxis1: axis1}, nil
	default:
		return nil, errors.Errorf("unknown payload prefix %q", string(prefix))
	}
}

func parseIntList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, errors.Wrapf(err, "malformed int list %q", s)
		}
		out[i] = v
	}
	return out, nil
}

// splitTopLevel splits s on sep, but only outside of open/close bracket
// nesting, so "(0,1),(2,3)" splits into two tuples rather than four ints.
func splitTopLevel(s string, sep, open, close byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}
