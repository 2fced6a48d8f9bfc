package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidClassCode marks a cohort code that cannot even be split into an
// admission-year token and a suffix. Absence from a lookup table is a
// different, non-fatal condition.
var ErrInvalidClassCode = errors.New("invalid administrative class code")

// StandardizeClassName maps a document-era cohort code to the canonical
// database-era class name: the leading 2-digit admission-year token is added
// to the institutional epoch, the remainder is the suffix.
// "65ABC" with epoch 1955 becomes "QH-2020-I/CQ-ABC".
func StandardizeClassName(raw string, epochYear int) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 4 {
		return "", fmt.Errorf("%w: %q", ErrInvalidClassCode, raw)
	}
	year, err := strconv.Atoi(raw[:2])
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidClassCode, raw)
	}
	return fmt.Sprintf("QH-%d-I/CQ-%s", epochYear+year, raw[2:]), nil
}

// ClassMap resolves cohort+suffix codes of the form "K66CNTT4" (as printed
// on advisor listings) to the class names used by the reference sheet. It is
// built once per run from the reference document and passed by value; there
// is no shared package state.
type ClassMap struct {
	display  map[string]string // canonical reference name -> display class name
	byCohort map[string]string // K<cohort><suffix> -> canonical reference name
}

// BuildClassMap derives both directions from (canonical, display) reference
// pairs. A canonical name like "QH-2021-I/CQ-CN1" contributes the synthetic
// key "K66CN1": the 4-digit year minus the epoch, plus the suffix with
// hyphens removed.
func BuildClassMap(pairs [][2]string, epochYear int) ClassMap {
	cm := ClassMap{
		display:  map[string]string{},
		byCohort: map[string]string{},
	}

	for _, pair := range pairs {
		canonical, display := pair[0], pair[1]
		if canonical == "" || display == "" {
			continue
		}
		cm.display[canonical] = display

		year, suffix, ok := splitCanonicalName(canonical)
		if !ok {
			continue
		}
		cohortKey := "K" + strconv.Itoa(year-epochYear) + strings.ReplaceAll(suffix, "-", "")
		cm.byCohort[cohortKey] = canonical
	}

	return cm
}

// Resolve returns the display class name for a raw cohort code, or false
// when the code is unknown to the reference sheet.
func (cm ClassMap) Resolve(rawCode string) (string, bool) {
	canonical, ok := cm.byCohort[strings.TrimSpace(rawCode)]
	if !ok {
		return "", false
	}
	name, ok := cm.display[canonical]
	return name, ok
}

func (cm ClassMap) Len() int {
	return len(cm.byCohort)
}

// splitCanonicalName picks the year and suffix out of "QH-<yyyy>-I/CQ-<suffix>".
func splitCanonicalName(canonical string) (year int, suffix string, ok bool) {
	const prefixLen = len("QH-")
	const suffixStart = len("QH-yyyy-I/CQ-")
	if len(canonical) <= suffixStart {
		return 0, "", false
	}
	year, err := strconv.Atoi(canonical[prefixLen : prefixLen+4])
	if err != nil {
		return 0, "", false
	}
	return year, canonical[suffixStart:], true
}
