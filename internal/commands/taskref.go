package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"todo/internal/tasks"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Raw string // the reference as typed, trimmed
	Num int    // 1-based position if Raw is all digits, otherwise 0
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// minPrefixLen is the shortest id prefix accepted as a reference.
const minPrefixLen = 4

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. No args, or a blank first arg → ErrTaskRefRequired
// 2. More than one arg → error: unexpected argument
// 3. All digits → position reference (the id is tried too when resolving)
// 4. Anything else without whitespace → id or id prefix reference
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("unexpected argument: %s", args[1])
	}

	raw := strings.TrimSpace(args[0])
	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", raw)
	}

	ref := TaskRef{Raw: raw}
	if isAllDigits(raw) {
		num, err := strconv.Atoi(raw)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", raw)
		}
		ref.Num = num
	}
	return ref, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResolveTaskRef maps a reference to a task id within snapshot.
//
// Resolution order: position in snapshot, exact id, unique id prefix of at
// least minPrefixLen characters. A number that matches nothing is out of
// range. Any other unmatched reference is returned unchanged; the store
// treats an unknown id as a no-op.
func ResolveTaskRef(snapshot []tasks.Task, ref TaskRef) (string, error) {
	if ref.Num >= 1 && ref.Num <= len(snapshot) {
		return snapshot[ref.Num-1].ID, nil
	}

	for _, t := range snapshot {
		if t.ID == ref.Raw {
			return t.ID, nil
		}
	}

	if isAllDigits(ref.Raw) {
		return "", fmt.Errorf("task number out of range: %s", ref.Raw)
	}

	if len(ref.Raw) >= minPrefixLen {
		var match string
		for _, t := range snapshot {
			if strings.HasPrefix(t.ID, ref.Raw) {
				if match != "" {
					return "", fmt.Errorf("ambiguous task reference: %s", ref.Raw)
				}
				match = t.ID
			}
		}
		if match != "" {
			return match, nil
		}
	}
	return ref.Raw, nil
}
