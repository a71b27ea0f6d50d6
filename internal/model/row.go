package model

import "strings"

// RowLabel converts a zero-based index to an alphabetical row label:
// 0 → A, 25 → Z, 26 → AA.  Negative indices yield "".
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// RowIndex is the inverse of RowLabel.  It is case-insensitive and reports
// false for labels containing anything but ASCII letters.
func RowIndex(label string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(label))
	if s == "" {
		return -1, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch < 'A' || ch > 'Z' {
			return -1, false
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1, true
}

// NormalizeRowLabel strips everything but ASCII letters and upper-cases
// the rest.
func NormalizeRowLabel(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 32)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LessRow orders row labels A < B < … < Z < AA < AB.  Labels that are not
// valid sort after valid ones, lexically.
func LessRow(a, b string) bool {
	ia, oka := RowIndex(a)
	ib, okb := RowIndex(b)
	switch {
	case oka && okb:
		return ia < ib
	case oka != okb:
		return oka
	}
	return a < b
}

// LessSeat orders seats by row as LessRow does and then by number.
func LessSeat(rowA string, numA uint32, rowB string, numB uint32) bool {
	if rowA != rowB {
		return LessRow(rowA, rowB)
	}
	return numA < numB
}
