package canonical

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestCheckSchemas(t *testing.T) {
	if err := CheckSchemas(); err != nil {
		t.Fatal(err)
	}
	if got := len(Types()); got != 14 {
		t.Fatalf("got %d entity types, want 14", got)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(""); !errors.Is(err, ErrInvalidInvocation) {
		t.Errorf("New(\"\") err = %v, want ErrInvalidInvocation", err)
	}
	_, err := New("Widget")
	if !errors.Is(err, ErrUnknownEntityType) {
		t.Fatalf("New(Widget) err = %v, want ErrUnknownEntityType", err)
	}
	if !strings.Contains(err.Error(), "Customer") || !strings.Contains(err.Error(), "Item") {
		t.Errorf("error should list available types: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		data      map[string]any
		wantValid bool
		wantErr   string
	}{
		{
			"complete",
			map[string]any{"itemId": "MAT-1", "description": "Bearing", "baseUom": "EA", "grossWeight": 0.45},
			true, "",
		},
		{
			"missing required",
			map[string]any{"itemId": "MAT-1", "baseUom": "EA"},
			false, "Missing required field: description",
		},
		{
			"empty string counts as missing",
			map[string]any{"itemId": "", "description": "Bearing", "baseUom": "EA"},
			false, "Missing required field: itemId",
		},
		{
			"nil counts as missing",
			map[string]any{"itemId": "MAT-1", "description": nil, "baseUom": "EA"},
			false, "Missing required field: description",
		},
		{
			"wrong type",
			map[string]any{"itemId": "MAT-1", "description": "Bearing", "baseUom": "EA", "grossWeight": "heavy"},
			false, "Field 'grossWeight' must be a number, got string",
		},
		{
			"too long",
			map[string]any{"itemId": "MAT-1", "description": "Bearing", "baseUom": "EACH"},
			false, "Field 'baseUom' exceeds max length 3 (got 4)",
		},
		{
			"date as string",
			map[string]any{"itemId": "MAT-1", "description": "Bearing", "baseUom": "EA", "createdDate": "2024-03-15"},
			true, "",
		},
		{
			"date as time",
			map[string]any{"itemId": "MAT-1", "description": "Bearing", "baseUom": "EA", "createdDate": time.Now()},
			true, "",
		},
		{
			"bad date",
			map[string]any{"itemId": "MAT-1", "description": "Bearing", "baseUom": "EA", "createdDate": "15.03.2024"},
			false, "Field 'createdDate' must be a date, got string",
		},
		{
			"boolean",
			map[string]any{"itemId": "MAT-1", "description": "Bearing", "baseUom": "EA", "deletionFlag": "X"},
			false, "Field 'deletionFlag' must be a boolean, got string",
		},
		{
			"unknown fields ignored",
			map[string]any{"itemId": "MAT-1", "description": "Bearing", "baseUom": "EA", "colour": 7},
			true, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(Item, tt.data)
			if res.Valid != tt.wantValid {
				t.Fatalf("valid = %v, want %v (errors %v)", res.Valid, tt.wantValid, res.Errors)
			}
			if tt.wantErr == "" {
				if len(res.Errors) != 0 {
					t.Errorf("unexpected errors: %v", res.Errors)
				}
				return
			}
			found := false
			for _, e := range res.Errors {
				if e == tt.wantErr {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not contain %q", res.Errors, tt.wantErr)
			}
		})
	}
}

func TestValidateArray(t *testing.T) {
	e, err := New("SalesOrder")
	if err != nil {
		t.Fatal(err)
	}
	e.Set("orderId", "4711").Set("customerId", "C1").Set("orderDate", "2024-01-01")
	e.Set("lines", []any{map[string]any{"item": "A"}})
	if res := e.Validate(); !res.Valid {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	e.Set("lines", "A,B")
	if res := e.Validate(); res.Valid {
		t.Fatal("string lines should not validate as array")
	}
}

func TestToJSON(t *testing.T) {
	e, _ := New("Customer")
	e.Set("customerId", "C1").Set("name", "Acme")

	out := e.ToJSON()
	if out["_entityType"] != "Customer" {
		t.Errorf("_entityType = %v", out["_entityType"])
	}
	ts, ok := out["_timestamp"].(string)
	if !ok {
		t.Fatalf("_timestamp missing")
	}
	if _, err := time.Parse(TimestampFormat, ts); err != nil {
		t.Errorf("_timestamp %q not ISO-8601: %v", ts, err)
	}

	// Shallow copy: mutating the output must not touch the entity.
	out["name"] = "Other"
	if e.Data["name"] != "Acme" {
		t.Error("ToJSON did not copy data")
	}

	a, b := e.ToJSON(), e.ToJSON()
	delete(a, "_timestamp")
	delete(b, "_timestamp")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("ToJSON not stable: %v vs %v", a, b)
	}
}
