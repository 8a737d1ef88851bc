package mapping

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/marcelocantos/erpkit/internal/canonical"
)

func newMapper() *canonical.Mapper {
	return canonical.NewMapper(Default(), zap.NewNop())
}

func TestSAPMaterial(t *testing.T) {
	e, err := newMapper().Map("Item", "SAP", map[string]any{
		"MATNR": "MAT-12345",
		"MAKTX": "Precision Ball Bearing",
		"MEINS": "EA",
		"BRGEW": "0.450",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"itemId":      "MAT-12345",
		"description": "Precision Ball Bearing",
		"baseUom":     "EA",
		"grossWeight": 0.45,
	}
	if !reflect.DeepEqual(e.Data, want) {
		t.Errorf("data = %v, want %v", e.Data, want)
	}
	if res := e.Validate(); !res.Valid {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
}

func TestLNItemType(t *testing.T) {
	e, err := newMapper().Map("Item", "infor_ln", map[string]any{
		"T$ITEM": "LN-ITEM-001",
		"T$CTYP": float64(1),
		"T$CUNI": "PC",
		"T$DSCA": "Cyl",
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.Data["itemType"] != "FERT" {
		t.Errorf("itemType = %v, want FERT", e.Data["itemType"])
	}
	if res := e.Validate(); !res.Valid {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
}

func TestUnsupportedSource(t *testing.T) {
	_, err := newMapper().Map("Item", "ORACLE", map[string]any{})
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("err = %v, want ErrUnsupportedSource", err)
	}
	if !strings.Contains(err.Error(), "INFOR_M3") {
		t.Errorf("error should list supported systems: %v", err)
	}
}

func TestNoMapping(t *testing.T) {
	_, ok, err := Default().Resolve("INFOR_M3", canonical.FixedAsset)
	if err != nil || ok {
		t.Fatalf("Resolve = ok %v err %v, want no mapping and no error", ok, err)
	}
	_, err = newMapper().Map("FixedAsset", "INFOR_M3", map[string]any{})
	if !errors.Is(err, canonical.ErrNoMapping) {
		t.Errorf("err = %v, want ErrNoMapping", err)
	}
}

func TestNilValuesSkipped(t *testing.T) {
	e, err := newMapper().Map("Item", "SAP", map[string]any{"MATNR": "M1", "MAKTX": nil})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Data["description"]; ok {
		t.Error("nil source value should not write the target")
	}
}

func TestMappingIdempotent(t *testing.T) {
	rec := map[string]any{"KUNNR": "0000004711", "NAME1": "Acme", "KLIMK": "5000.00", "SPERR": "X", "ERDAT": "20240315"}
	m := newMapper()
	a, err := m.Map("Customer", "SAP", rec)
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Map("Customer", "SAP", rec)
	if err != nil {
		t.Fatal(err)
	}
	ja, jb := a.ToJSON(), b.ToJSON()
	delete(ja, "_timestamp")
	delete(jb, "_timestamp")
	if !reflect.DeepEqual(ja, jb) {
		t.Errorf("mapping not idempotent: %v vs %v", ja, jb)
	}
	if ja["customerId"] != "4711" || ja["blocked"] != true || ja["createdDate"] != "2024-03-15" {
		t.Errorf("unexpected conversion: %v", ja)
	}
}

func TestEverySystemMapsRequiredFields(t *testing.T) {
	tables := Default()
	for _, system := range tables.Supported() {
		entities, err := tables.Entities(system)
		if err != nil {
			t.Fatal(err)
		}
		for _, et := range entities {
			schema, _ := canonical.SchemaFor(et)
			mappings, _, _ := tables.Resolve(system, et)
			targets := map[string]bool{}
			for _, m := range mappings {
				if _, ok := schema.FieldDefinitions[m.Target]; !ok {
					t.Errorf("%s/%s: target %q has no field definition", system, et, m.Target)
				}
				targets[m.Target] = true
			}
			for _, req := range schema.RequiredFields {
				if !targets[req] {
					t.Errorf("%s/%s: required field %q is never mapped", system, et, req)
				}
			}
		}
	}
}

func TestSAPCoversAllEntities(t *testing.T) {
	entities, err := Default().Entities("SAP")
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != len(canonical.Types()) {
		t.Errorf("SAP maps %d entities, want %d", len(entities), len(canonical.Types()))
	}
}

func TestCoercers(t *testing.T) {
	tests := []struct {
		name string
		conv canonical.Coercer
		raw  any
		rec  map[string]any
		want any
	}{
		{"number string", Number, "1,234.50", nil, 1234.5},
		{"number trailing minus", Number, "12.50-", nil, -12.5},
		{"number garbage", Number, "n/a", nil, 0.0},
		{"number int", Number, 7, nil, 7.0},
		{"alpha numeric", Alpha, "0000012345", nil, "12345"},
		{"alpha zero", Alpha, "0000", nil, "0"},
		{"alpha mixed", Alpha, "00A1", nil, "00A1"},
		{"flag X", Flag, "X", nil, true},
		{"flag blank", Flag, " ", nil, false},
		{"yes", YesNo, 1, nil, true},
		{"no", YesNo, 2, nil, false},
		{"sap date", Date, "20240315", nil, "2024-03-15"},
		{"zero date", Date, "00000000", nil, nil},
		{"m3 date", Date, 20240315, nil, "2024-03-15"},
		{"iso date", Date, "2024-03-15T10:00:00Z", nil, "2024-03-15"},
		{"bad date", Date, "soon", nil, "soon"},
		{"code", Code(lnItemTypes), 3, nil, "ROH"},
		{"code unknown", Code(lnItemTypes), 9, nil, "9"},
		{"signed credit", Signed("SHKZG", "H"), "100.00", map[string]any{"SHKZG": "H"}, -100.0},
		{"signed debit", Signed("SHKZG", "H"), "100.00", map[string]any{"SHKZG": "S"}, 100.0},
		{"prefixed", Prefixed("T$TTYP", "-"), 1001, map[string]any{"T$TTYP": "GLT"}, "GLT-1001"},
		{"scaled", Scaled(12), 60, nil, 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.conv(tt.raw, tt.rec)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}
