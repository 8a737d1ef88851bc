// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"fmt"
	"regexp"
	"strings"
)

// statement is one period-terminated ABAP statement, comments removed,
// whitespace collapsed and upper-cased outside literals.
type statement struct {
	Line int
	Text string
}

// keyword returns the first token of the statement.
func (s statement) keyword() string {
	if i := strings.IndexByte(s.Text, ' '); i >= 0 {
		return s.Text[:i]
	}
	return s.Text
}

// splitStatements strips full-line (*) and inline (") comments and splits
// source on periods outside string literals.
func splitStatements(src string) []statement {
	var (
		out   []statement
		cur   strings.Builder
		start int
	)
	flush := func() {
		text := strings.Join(strings.Fields(cur.String()), " ")
		if text != "" {
			out = append(out, statement{Line: start, Text: text})
		}
		cur.Reset()
		start = 0
	}
	for n, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(line, "*") {
			continue
		}
		var quote rune
	chars:
		for _, r := range line {
			if quote != 0 {
				cur.WriteRune(r)
				if r == quote {
					quote = 0
				}
				continue
			}
			switch r {
			case '\'', '`', '|':
				quote = r
				cur.WriteRune(r)
			case '"':
				break chars
			case '.':
				flush()
				continue
			default:
				if start == 0 && r != ' ' && r != '\t' && r != '\r' {
					start = n + 1
				}
				cur.WriteString(strings.ToUpper(string(r)))
			}
		}
		cur.WriteByte(' ')
	}
	flush()
	return out
}

// blocks maps each block opener to its closer.
var blocks = map[string]string{
	"IF":        "ENDIF",
	"LOOP":      "ENDLOOP",
	"DO":        "ENDDO",
	"WHILE":     "ENDWHILE",
	"CASE":      "ENDCASE",
	"TRY":       "ENDTRY",
	"FORM":      "ENDFORM",
	"METHOD":    "ENDMETHOD",
	"FUNCTION":  "ENDFUNCTION",
	"CLASS":     "ENDCLASS",
	"INTERFACE": "ENDINTERFACE",
}

// blockOrder fixes the reporting order of mismatches.
var blockOrder = []string{"IF", "LOOP", "DO", "WHILE", "CASE", "TRY", "FORM", "METHOD", "FUNCTION", "CLASS", "INTERFACE"}

var forwardDecl = regexp.MustCompile(`\b(DEFERRED|LOAD)\b`)

var closers = func() map[string]string {
	m := make(map[string]string, len(blocks))
	for open, end := range blocks {
		m[end] = open
	}
	return m
}()

// opens reports whether s opens a block. Forward declarations of classes
// and interfaces do not.
func (s statement) opens() (string, bool) {
	kw := s.keyword()
	if _, ok := blocks[kw]; !ok {
		return "", false
	}
	if (kw == "CLASS" || kw == "INTERFACE") && forwardDecl.MatchString(s.Text) {
		return "", false
	}
	return kw, true
}

type syntaxReport struct {
	Statements int
	Mismatches []string
	Empty      []string
}

// checkSyntax balances block openers against closers and finds empty
// FORM and METHOD implementations.
func checkSyntax(src string) syntaxReport {
	stmts := splitStatements(src)
	rep := syntaxReport{Statements: len(stmts)}
	opened := make(map[string]int)
	closed := make(map[string]int)
	for i, s := range stmts {
		if kw, ok := s.opens(); ok {
			opened[kw]++
			if (kw == "FORM" || kw == "METHOD") && i+1 < len(stmts) && stmts[i+1].keyword() == blocks[kw] {
				name := ""
				if f := strings.Fields(s.Text); len(f) > 1 {
					name = f[1]
				}
				rep.Empty = append(rep.Empty, fmt.Sprintf("Empty %s implementation %s (line %d)", kw, name, s.Line))
			}
			continue
		}
		if open, ok := closers[s.keyword()]; ok {
			closed[open]++
		}
	}
	for _, kw := range blockOrder {
		if opened[kw] != closed[kw] {
			rep.Mismatches = append(rep.Mismatches,
				fmt.Sprintf("%s/%s mismatch: %d opened, %d closed", kw, blocks[kw], opened[kw], closed[kw]))
		}
	}
	return rep
}

// Finding is one static-analysis result.
type Finding struct {
	Check    string `json:"check"`
	Critical bool   `json:"critical"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
}

type pattern struct {
	check    string
	critical bool
	message  string
	match    *regexp.Regexp
	unless   *regexp.Regexp // statement-level exemption
}

var (
	hasWhere       = regexp.MustCompile(`\bWHERE\b`)
	authorityCheck = regexp.MustCompile(`\bAUTHORITY-CHECK\b`)
)

var atcPatterns = []pattern{
	{check: "SELECT_STAR_NO_WHERE", critical: true, message: "Unrestricted SELECT * without WHERE clause",
		match: regexp.MustCompile(`^SELECT (SINGLE )?\*`), unless: hasWhere},
	{check: "DELETE_NO_WHERE", critical: true, message: "DELETE FROM without WHERE clause",
		match: regexp.MustCompile(`^DELETE FROM `), unless: hasWhere},
	{check: "DYNAMIC_CODE", critical: true, message: "Dynamic program generation",
		match: regexp.MustCompile(`^(GENERATE SUBROUTINE POOL|INSERT REPORT)\b`)},
	{check: "NATIVE_SQL", critical: true, message: "Native SQL (EXEC SQL)",
		match: regexp.MustCompile(`^EXEC SQL\b`)},
	{check: "OBSOLETE_MOVE", message: "Obsolete MOVE ... TO; use assignment",
		match: regexp.MustCompile(`^MOVE .* TO `)},
	{check: "OBSOLETE_OCCURS", message: "Obsolete OCCURS table declaration",
		match: regexp.MustCompile(`\bOCCURS\b`)},
	{check: "HEADER_LINE", message: "Internal table WITH HEADER LINE",
		match: regexp.MustCompile(`\bWITH HEADER LINE\b`)},
	{check: "OBSOLETE_REFRESH", message: "Obsolete REFRESH; use CLEAR",
		match: regexp.MustCompile(`^REFRESH\b`)},
	{check: "S4_OBSOLETE_TABLE", message: "Table replaced in S/4HANA",
		match: regexp.MustCompile(`\b(FROM|JOIN|TABLES) (MKPF|MSEG|VBUK|VBUP|KONV)\b`)},
}

var callTransaction = regexp.MustCompile(`^CALL TRANSACTION\b`)

// scanATC pattern-scans source for critical and S/4HANA-readiness findings.
func scanATC(src string) []Finding {
	stmts := splitStatements(src)
	sourceChecksAuthority := false
	for _, s := range stmts {
		if s.keyword() == "AUTHORITY-CHECK" {
			sourceChecksAuthority = true
			break
		}
	}
	var out []Finding
	for _, s := range stmts {
		for _, p := range atcPatterns {
			if !p.match.MatchString(s.Text) {
				continue
			}
			if p.unless != nil && p.unless.MatchString(s.Text) {
				continue
			}
			msg := p.message
			if p.check == "S4_OBSOLETE_TABLE" {
				msg = fmt.Sprintf("%s: %s", msg, p.match.FindStringSubmatch(s.Text)[2])
			}
			out = append(out, Finding{Check: p.check, Critical: p.critical, Message: msg, Line: s.Line})
		}
		if callTransaction.MatchString(s.Text) && !sourceChecksAuthority && !authorityCheck.MatchString(s.Text) {
			out = append(out, Finding{Check: "MISSING_AUTHORITY_CHECK", Critical: true,
				Message: "CALL TRANSACTION without AUTHORITY-CHECK", Line: s.Line})
		}
	}
	return out
}

// hasTestClasses reports whether the source declares a test class.
func hasTestClasses(src string) bool {
	for _, s := range splitStatements(src) {
		if strings.Contains(s.Text, " FOR TESTING") {
			return true
		}
	}
	return false
}

// rollingHash is the 32-bit string hash (h = 31h + c) used to identify
// source in live-access audit records. It is not cryptographic.
func rollingHash(s string) string {
	var h int32
	for _, c := range s {
		h = 31*h + int32(c)
	}
	return fmt.Sprintf("%08x", uint32(h))
}
