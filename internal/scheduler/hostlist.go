package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

// maxHostlistSize bounds the number of names one hostlist may expand to.
const maxHostlistSize = 1 << 20

// hostlistState is the state of the hostlist scanner
type hostlistState int

const (
	stateHost       hostlistState = iota // reading host name text before any bracket
	stateRange                           // inside [...]
	stateAfterRange                      // after ']' in the same entry
)

// idRange is an inclusive numeric range; singletons have lo == hi
type idRange struct {
	lo, hi int
}

// rangeGroup is one bracketed set of ids; width > 0 zero-pads every id
type rangeGroup struct {
	width  int
	ranges []idRange
}

// patternPart is either literal text or a bracketed group
type patternPart struct {
	literal string
	group   *rangeGroup
}

// hostPattern is one top-level hostlist entry
type hostPattern []patternPart

// ExpandHostlist expands a SLURM hostlist expression such as
// "machinea[2-5,7,14-15],machineb,machinec[008-010,012]" into host names,
// in the order they appear.
func ExpandHostlist(expr string) ([]string, error) {
	patterns, err := scanHostlist(strings.TrimSpace(expr))
	if err != nil {
		return nil, err
	}

	var hosts []string
	for _, p := range patterns {
		hosts, err = p.expand(hosts)
		if err != nil {
			return nil, err
		}
	}
	return hosts, nil
}

// scanHostlist splits expr into entries with a three-state scanner: commas
// end an entry only outside brackets, and inside brackets they separate the
// members of one range set.
func scanHostlist(expr string) ([]hostPattern, error) {
	if expr == "" {
		return nil, hostlistError(expr, 0, "empty hostlist")
	}

	var (
		patterns []hostPattern
		current  hostPattern
		text     strings.Builder
		member   strings.Builder
		group    *rangeGroup
		state    = stateHost
	)

	flushText := func() {
		if text.Len() > 0 {
			current = append(current, patternPart{literal: text.String()})
			text.Reset()
		}
	}
	endEntry := func(pos int) error {
		flushText()
		if len(current) == 0 {
			return hostlistError(expr, pos, "empty host name")
		}
		patterns = append(patterns, current)
		current = nil
		return nil
	}
	endMember := func(pos int) error {
		r, width, err := parseIDRange(member.String())
		if err != nil {
			return hostlistError(expr, pos, err.Error())
		}
		if len(group.ranges) == 0 {
			group.width = width
		}
		group.ranges = append(group.ranges, r)
		member.Reset()
		return nil
	}

	for pos, c := range expr {
		switch state {
		case stateHost, stateAfterRange:
			switch c {
			case ',':
				if err := endEntry(pos); err != nil {
					return nil, err
				}
				state = stateHost
			case '[':
				flushText()
				group = &rangeGroup{}
				state = stateRange
			case ']':
				return nil, hostlistError(expr, pos, "unexpected ']'")
			default:
				text.WriteRune(c)
			}

		case stateRange:
			switch c {
			case ',':
				if err := endMember(pos); err != nil {
					return nil, err
				}
			case ']':
				if err := endMember(pos); err != nil {
					return nil, err
				}
				current = append(current, patternPart{group: group})
				group = nil
				state = stateAfterRange
			case '[':
				return nil, hostlistError(expr, pos, "nested '['")
			default:
				member.WriteRune(c)
			}
		}
	}

	if state == stateRange {
		return nil, hostlistError(expr, len(expr), "unclosed '['")
	}
	if err := endEntry(len(expr)); err != nil {
		return nil, err
	}
	return patterns, nil
}

// parseIDRange parses "7" or "14-15". The returned width is the literal
// length of lo when it has a leading zero, else 0.
func parseIDRange(s string) (idRange, int, error) {
	loStr, hiStr, isRange := strings.Cut(s, "-")
	if !isRange {
		hiStr = loStr
	}
	if !isDigits(loStr) || !isDigits(hiStr) {
		return idRange{}, 0, fmt.Errorf("invalid range %q", s)
	}

	lo, err := strconv.Atoi(loStr)
	if err != nil {
		return idRange{}, 0, fmt.Errorf("invalid range %q: %v", s, err)
	}
	hi, err := strconv.Atoi(hiStr)
	if err != nil {
		return idRange{}, 0, fmt.Errorf("invalid range %q: %v", s, err)
	}
	if hi < lo {
		return idRange{}, 0, fmt.Errorf("range %q runs backwards", s)
	}

	width := 0
	if strings.HasPrefix(loStr, "0") {
		width = len(loStr)
	}
	return idRange{lo: lo, hi: hi}, width, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// expand appends every name p denotes to hosts. With several groups in one
// entry the leftmost group varies slowest.
func (p hostPattern) expand(hosts []string) ([]string, error) {
	names := []string{""}
	for _, part := range p {
		if part.group == nil {
			for i := range names {
				names[i] += part.literal
			}
			continue
		}

		var next []string
		for _, prefix := range names {
			for _, r := range part.group.ranges {
				for id := r.lo; id <= r.hi; id++ {
					if len(hosts)+len(next) >= maxHostlistSize {
						return nil, hostlistError("", 0, fmt.Sprintf("expands to more than %d hosts", maxHostlistSize))
					}
					next = append(next, prefix+fmt.Sprintf("%0*d", part.group.width, id))
				}
			}
		}
		names = next
	}
	return append(hosts, names...), nil
}

func hostlistError(expr string, pos int, reason string) *ParseError {
	if expr != "" {
		reason = fmt.Sprintf("%s at offset %d", reason, pos)
	}
	return NewParseError(SchedulerSLURM, 0, expr, reason)
}

// ExpandTasksPerNode expands SLURM's compressed per-node task counts,
// e.g. "10,3,12(x2)" -> [10 3 12 12].
func ExpandTasksPerNode(s string) ([]int, error) {
	var counts []int
	for _, elem := range strings.Split(strings.TrimSpace(s), ",") {
		elem = strings.TrimSpace(elem)
		value, repeat := elem, "1"
		if i := strings.Index(elem, "(x"); i >= 0 {
			if !strings.HasSuffix(elem, ")") {
				return nil, fmt.Errorf("%w: %q", ErrInvalidTasksPerNode, elem)
			}
			value, repeat = elem[:i], elem[i+2:len(elem)-1]
		}

		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTasksPerNode, elem)
		}
		k, err := strconv.Atoi(repeat)
		if err != nil || k < 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTasksPerNode, elem)
		}
		if len(counts)+k > maxHostlistSize {
			return nil, fmt.Errorf("%w: %q repeats too many times", ErrInvalidTasksPerNode, elem)
		}
		for i := 0; i < k; i++ {
			counts = append(counts, n)
		}
	}
	return counts, nil
}
