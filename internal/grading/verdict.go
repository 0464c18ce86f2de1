package grading

import "fmt"

// Verdict is the graded outcome of one submission for one item.
type Verdict int

const (
	Unanswered Verdict = iota
	Wrong
	Partial // similar enough to pass the threshold, not an exact match
	Perfect // exact match after normalization
)

var verdictNames = map[Verdict]string{
	Unanswered: "unanswered",
	Wrong:      "wrong",
	Partial:    "partial",
	Perfect:    "perfect",
}

func (v Verdict) String() string {
	if s, ok := verdictNames[v]; ok {
		return s
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// ParseVerdict is the inverse of Verdict.String.
func ParseVerdict(s string) (Verdict, error) {
	for v, name := range verdictNames {
		if name == s {
			return v, nil
		}
	}
	return Unanswered, fmt.Errorf("unknown verdict: %q", s)
}

// StatusCode is the integer stored for a verdict in progress records.
// Perfect is 1, partial ("remembered vaguely") is 2, wrong is -1.
func (v Verdict) StatusCode() int {
	switch v {
	case Perfect:
		return 1
	case Partial:
		return 2
	case Wrong:
		return -1
	default:
		return 0
	}
}

// VerdictFromStatus maps a stored status code back to a Verdict.
func VerdictFromStatus(code int) Verdict {
	switch code {
	case 1:
		return Perfect
	case 2:
		return Partial
	case -1:
		return Wrong
	default:
		return Unanswered
	}
}
