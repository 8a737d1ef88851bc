// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"context"
	"testing"
)

func TestCheckSyntax(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		statements int
		mismatches int
		empty      int
	}{
		{"balanced", "IF x = 1.\n  WRITE 'y'.\nENDIF.", 3, 0, 0},
		{"unclosed loop", "IF x = 1.\nLOOP AT t INTO w.\nENDIF.", 3, 1, 0},
		{"extra closer", "DO 3 TIMES.\nENDDO.\nENDDO.", 3, 1, 0},
		{"empty form", "FORM f.\nENDFORM.", 2, 0, 1},
		{"empty method", "CLASS c IMPLEMENTATION.\nMETHOD m.\nENDMETHOD.\nENDCLASS.", 4, 0, 1},
		{"deferred class", "CLASS zcl_a DEFINITION DEFERRED.\nCLASS zcl_a DEFINITION.\nENDCLASS.", 3, 0, 0},
		{"comments and literals", "* IF commented out\nWRITE 'a.b'. \" IF inline\n", 1, 0, 0},
		{"methods declaration", "CLASS c DEFINITION.\nPUBLIC SECTION.\nMETHODS m.\nENDCLASS.", 4, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := checkSyntax(tt.src)
			if rep.Statements != tt.statements {
				t.Errorf("statements = %d, want %d", rep.Statements, tt.statements)
			}
			if len(rep.Mismatches) != tt.mismatches {
				t.Errorf("mismatches = %v, want %d", rep.Mismatches, tt.mismatches)
			}
			if len(rep.Empty) != tt.empty {
				t.Errorf("empty = %v, want %d", rep.Empty, tt.empty)
			}
		})
	}
}

func TestStatementLines(t *testing.T) {
	stmts := splitStatements("REPORT z.\n\nSELECT matnr\n  FROM mara\n  INTO TABLE lt.")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements", len(stmts))
	}
	if stmts[1].Line != 3 || stmts[1].Text != "SELECT MATNR FROM MARA INTO TABLE LT" {
		t.Errorf("statement = %+v", stmts[1])
	}
}

func TestScanATC(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		critical int
		other    int
	}{
		{"clean", "SELECT matnr FROM mara INTO TABLE @lt WHERE mtart = 'FERT'.", 0, 0},
		{"select star", "SELECT * FROM mara INTO TABLE @lt.", 1, 0},
		{"select star where", "SELECT * FROM mara INTO TABLE @lt WHERE matnr = @p.", 0, 0},
		{"select single star", "SELECT SINGLE * FROM mara INTO @ls.", 1, 0},
		{"call transaction", "CALL TRANSACTION 'MM01'.", 1, 0},
		{"call transaction checked", "AUTHORITY-CHECK OBJECT 'S_TCODE' ID 'TCD' FIELD 'MM01'.\nCALL TRANSACTION 'MM01'.", 0, 0},
		{"call transaction with check", "CALL TRANSACTION 'MM01' WITH AUTHORITY-CHECK.", 0, 0},
		{"delete no where", "DELETE FROM ztab.", 1, 0},
		{"native sql", "EXEC SQL.", 1, 0},
		{"generate", "GENERATE SUBROUTINE POOL lt_code NAME lv_prog.", 1, 0},
		{"obsolete", "DATA lt TYPE i OCCURS 0 WITH HEADER LINE.\nMOVE a TO b.\nREFRESH lt.", 0, 4},
		{"s4 table", "SELECT mblnr FROM mkpf INTO TABLE @lt WHERE mjahr = '2024'.", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var critical, other int
			for _, f := range scanATC(tt.src) {
				if f.Critical {
					critical++
				} else {
					other++
				}
			}
			if critical != tt.critical || other != tt.other {
				t.Errorf("critical=%d other=%d, want %d/%d", critical, other, tt.critical, tt.other)
			}
		})
	}
}

func TestATCStrictness(t *testing.T) {
	a := &Artifact{Source: "MOVE a TO b."}
	for s, want := range map[Strictness]Status{Permissive: Warning, Moderate: Warning, Strict: Failed} {
		r, _ := checkATC(context.Background(), a, Env{Strictness: s})
		if r.Status != want {
			t.Errorf("%s: status = %q, want %q", s, r.Status, want)
		}
	}
}

func TestRollingHash(t *testing.T) {
	if got := rollingHash("hello"); got != "05e918d2" {
		t.Errorf("rollingHash(hello) = %s", got)
	}
	if got := rollingHash(""); got != "00000000" {
		t.Errorf("rollingHash(\"\") = %s", got)
	}
}
