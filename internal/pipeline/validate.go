package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"uetingest/internal/util"
)

const (
	SessionTheory    = "Lý thuyết"
	SessionPractical = "Thực hành"

	birthdayLayout = "02/01/2006"
)

// ExpandPeriods turns a period field into an ordered list of lesson numbers:
// "7" -> [7], "3-4" -> [3, 4]. Anything non-numeric fails the whole field.
func ExpandPeriods(raw string) ([]int, error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := parseInt(part)
		if err != nil {
			return nil, fmt.Errorf("invalid period %q: %w", raw, err)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty period field")
	}
	return out, nil
}

func parseInt(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}

func IsDate(token string) bool {
	_, err := time.Parse(birthdayLayout, token)
	return err == nil
}

// ParseBirthday returns nil for unparsable dates; a missing birthday does
// not reject the record.
func ParseBirthday(token string) *time.Time {
	parsed, err := time.Parse(birthdayLayout, token)
	if err != nil {
		return nil
	}
	return &parsed
}

// SessionType classifies the group identifier: the whole-class sentinel "CL"
// (any case, surrounding whitespace ignored) means a theory session, anything
// else a practical one.
func SessionType(groupIdentifier string) string {
	if strings.ToUpper(strings.TrimSpace(groupIdentifier)) == "CL" {
		return SessionTheory
	}
	return SessionPractical
}

var (
	academicRanks = map[string]string{"GS": "GS", "PGS": "PGS"}
	degrees       = map[string]string{"TS": "TS", "TSKH": "TSKH", "THS": "ThS", "CN": "CN", "KS": "KS"}
)

// SplitAcademicTitle strips the rank/degree abbreviation prefix from a raw
// professor string ("PGS.TS. Nguyễn Văn A" -> "PGS", "TS", "Nguyễn Văn A").
// The cleaned name is the identity key; leaving the prefix in place would
// split one person into several professor rows.
func SplitAcademicTitle(raw string) (rank, degree *string, name string) {
	tokens := util.Fields(raw)

	i := 0
	for ; i < len(tokens); i++ {
		parts := strings.Split(strings.TrimSuffix(tokens[i], "."), ".")
		if !allTitleParts(parts) {
			break
		}
		for _, part := range parts {
			key := strings.ToUpper(part)
			if r, ok := academicRanks[key]; ok && rank == nil {
				rank = util.StringPtr(r)
			}
			if d, ok := degrees[key]; ok && degree == nil {
				degree = util.StringPtr(d)
			}
		}
	}

	name = strings.Join(tokens[i:], " ")
	return rank, degree, name
}

func allTitleParts(parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			continue
		}
		key := strings.ToUpper(part)
		_, isRank := academicRanks[key]
		_, isDegree := degrees[key]
		if !isRank && !isDegree {
			return false
		}
	}
	return true
}
