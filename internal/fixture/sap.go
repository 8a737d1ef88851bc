// Package fixture holds the canned, schema-shaped data served by adapters
// and tools in mock mode.
package fixture

import (
	"sort"
	"strings"

	"github.com/marcelocantos/erpkit/internal/canonical"
)

// Field is one column of a dictionary table (a DD03L row).
type Field struct {
	Name        string `json:"name"`
	Position    int    `json:"position"`
	Key         bool   `json:"key"`
	Type        string `json:"type"`
	Length      int    `json:"length"`
	Decimals    int    `json:"decimals"`
	Description string `json:"description"`
}

// Table is a dictionary table with sample rows.
type Table struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Fields      []Field          `json:"fields"`
	Rows        []map[string]any `json:"-"`
}

func fields(defs ...Field) []Field {
	for i := range defs {
		defs[i].Position = i + 1
	}
	return defs
}

func key(name, typ string, length int, desc string) Field {
	return Field{Name: name, Key: true, Type: typ, Length: length, Description: desc}
}

func col(name, typ string, length int, desc string) Field {
	return Field{Name: name, Type: typ, Length: length, Description: desc}
}

func dec(name string, length, decimals int, desc string) Field {
	return Field{Name: name, Type: "QUAN", Length: length, Decimals: decimals, Description: desc}
}

func mandt() Field { return key("MANDT", "CLNT", 3, "Client") }

var sapTables = map[string]Table{
	"MARA": {
		Name:        "MARA",
		Description: "General Material Data",
		Fields: fields(
			mandt(),
			key("MATNR", "CHAR", 40, "Material Number"),
			col("ERSDA", "DATS", 8, "Created On"),
			col("MTART", "CHAR", 4, "Material Type"),
			col("MBRSH", "CHAR", 1, "Industry Sector"),
			col("MATKL", "CHAR", 9, "Material Group"),
			col("MEINS", "UNIT", 3, "Base Unit of Measure"),
			dec("BRGEW", 13, 3, "Gross Weight"),
			dec("NTGEW", 13, 3, "Net Weight"),
			col("GEWEI", "UNIT", 3, "Weight Unit"),
			col("LVORM", "CHAR", 1, "Flag Material for Deletion at Client Level"),
			col("MSTAE", "CHAR", 2, "Cross-Plant Material Status"),
		),
		Rows: []map[string]any{
			{"MANDT": "100", "MATNR": "MAT-12345", "ERSDA": "20230115", "MTART": "FERT", "MBRSH": "M", "MATKL": "BEARINGS", "MEINS": "EA", "BRGEW": "0.450", "NTGEW": "0.420", "GEWEI": "KG", "LVORM": "", "MSTAE": ""},
			{"MANDT": "100", "MATNR": "MAT-20001", "ERSDA": "20230302", "MTART": "ROH", "MBRSH": "M", "MATKL": "STEEL", "MEINS": "KG", "BRGEW": "1.000", "NTGEW": "1.000", "GEWEI": "KG", "LVORM": "", "MSTAE": ""},
			{"MANDT": "100", "MATNR": "MAT-30077", "ERSDA": "20231110", "MTART": "HALB", "MBRSH": "M", "MATKL": "HOUSINGS", "MEINS": "EA", "BRGEW": "2.750", "NTGEW": "2.500", "GEWEI": "KG", "LVORM": "", "MSTAE": "01"},
			{"MANDT": "100", "MATNR": "MAT-99999", "ERSDA": "20190601", "MTART": "FERT", "MBRSH": "M", "MATKL": "BEARINGS", "MEINS": "EA", "BRGEW": "0.300", "NTGEW": "0.280", "GEWEI": "KG", "LVORM": "X", "MSTAE": "99"},
		},
	},
	"MAKT": {
		Name:        "MAKT",
		Description: "Material Descriptions",
		Fields: fields(
			mandt(),
			key("MATNR", "CHAR", 40, "Material Number"),
			key("SPRAS", "LANG", 1, "Language Key"),
			col("MAKTX", "CHAR", 40, "Material Description"),
		),
		Rows: []map[string]any{
			{"MANDT": "100", "MATNR": "MAT-12345", "SPRAS": "E", "MAKTX": "Precision Ball Bearing"},
			{"MANDT": "100", "MATNR": "MAT-20001", "SPRAS": "E", "MAKTX": "Steel Bar Stock 40mm"},
			{"MANDT": "100", "MATNR": "MAT-30077", "SPRAS": "E", "MAKTX": "Bearing Housing Casting"},
			{"MANDT": "100", "MATNR": "MAT-99999", "SPRAS": "E", "MAKTX": "Discontinued Bearing"},
		},
	},
	"KNA1": {
		Name:        "KNA1",
		Description: "General Data in Customer Master",
		Fields: fields(
			mandt(),
			key("KUNNR", "CHAR", 10, "Customer Number"),
			col("NAME1", "CHAR", 35, "Name 1"),
			col("STRAS", "CHAR", 35, "Street and House Number"),
			col("ORT01", "CHAR", 35, "City"),
			col("PSTLZ", "CHAR", 10, "Postal Code"),
			col("REGIO", "CHAR", 3, "Region"),
			col("LAND1", "CHAR", 3, "Country Key"),
			col("STCD1", "CHAR", 16, "Tax Number 1"),
			col("SPERR", "CHAR", 1, "Central Posting Block"),
			col("ERDAT", "DATS", 8, "Created On"),
		),
		Rows: []map[string]any{
			{"MANDT": "100", "KUNNR": "0000100001", "NAME1": "Northwind Industrial", "STRAS": "12 Harbour Rd", "ORT01": "Hamburg", "PSTLZ": "20457", "REGIO": "02", "LAND1": "DE", "STCD1": "DE123456789", "SPERR": "", "ERDAT": "20200110"},
			{"MANDT": "100", "KUNNR": "0000100002", "NAME1": "Contoso Machining", "STRAS": "400 Main St", "ORT01": "Dayton", "PSTLZ": "45402", "REGIO": "OH", "LAND1": "US", "STCD1": "31-1234567", "SPERR": "", "ERDAT": "20210722"},
			{"MANDT": "100", "KUNNR": "0000100003", "NAME1": "Fabrikam Tools", "STRAS": "8 Rue Haute", "ORT01": "Lyon", "PSTLZ": "69002", "REGIO": "69", "LAND1": "FR", "STCD1": "FR987654321", "SPERR": "X", "ERDAT": "20180305"},
		},
	},
	"LFA1": {
		Name:        "LFA1",
		Description: "Supplier Master (General Section)",
		Fields: fields(
			mandt(),
			key("LIFNR", "CHAR", 10, "Account Number of Supplier"),
			col("NAME1", "CHAR", 35, "Name 1"),
			col("ORT01", "CHAR", 35, "City"),
			col("LAND1", "CHAR", 3, "Country Key"),
			col("STCD1", "CHAR", 16, "Tax Number 1"),
			col("SPERR", "CHAR", 1, "Central Posting Block"),
			col("ERDAT", "DATS", 8, "Created On"),
		),
		Rows: []map[string]any{
			{"MANDT": "100", "LIFNR": "0000200001", "NAME1": "Steelworks GmbH", "ORT01": "Dortmund", "LAND1": "DE", "STCD1": "DE111222333", "SPERR": "", "ERDAT": "20190215"},
			{"MANDT": "100", "LIFNR": "0000200002", "NAME1": "Precision Castings Ltd", "ORT01": "Sheffield", "LAND1": "GB", "STCD1": "GB444555666", "SPERR": "", "ERDAT": "20200901"},
		},
	},
	"VBAK": {
		Name:        "VBAK",
		Description: "Sales Document: Header Data",
		Fields: fields(
			mandt(),
			key("VBELN", "CHAR", 10, "Sales Document"),
			col("AUDAT", "DATS", 8, "Document Date"),
			col("AUART", "CHAR", 4, "Sales Document Type"),
			col("VKORG", "CHAR", 4, "Sales Organization"),
			col("KUNNR", "CHAR", 10, "Sold-To Party"),
			Field{Name: "NETWR", Type: "CURR", Length: 15, Decimals: 2, Description: "Net Value"},
			col("WAERK", "CUKY", 5, "SD Document Currency"),
			col("GBSTK", "CHAR", 1, "Overall Processing Status"),
		),
		Rows: []map[string]any{
			{"MANDT": "100", "VBELN": "0000004711", "AUDAT": "20240310", "AUART": "OR", "VKORG": "1000", "KUNNR": "0000100001", "NETWR": "12500.00", "WAERK": "EUR", "GBSTK": "A"},
			{"MANDT": "100", "VBELN": "0000004712", "AUDAT": "20240312", "AUART": "OR", "VKORG": "3000", "KUNNR": "0000100002", "NETWR": "8740.50", "WAERK": "USD", "GBSTK": "C"},
		},
	},
	"EKKO": {
		Name:        "EKKO",
		Description: "Purchasing Document Header",
		Fields: fields(
			mandt(),
			key("EBELN", "CHAR", 10, "Purchasing Document Number"),
			col("BUKRS", "CHAR", 4, "Company Code"),
			col("BSART", "CHAR", 4, "Purchasing Document Type"),
			col("LIFNR", "CHAR", 10, "Supplier"),
			col("EKORG", "CHAR", 4, "Purchasing Organization"),
			col("BEDAT", "DATS", 8, "Purchasing Document Date"),
			col("WAERS", "CUKY", 5, "Currency Key"),
		),
		Rows: []map[string]any{
			{"MANDT": "100", "EBELN": "4500000101", "BUKRS": "1000", "BSART": "NB", "LIFNR": "0000200001", "EKORG": "1000", "BEDAT": "20240301", "WAERS": "EUR"},
		},
	},
	"MARD": {
		Name:        "MARD",
		Description: "Storage Location Data for Material",
		Fields: fields(
			mandt(),
			key("MATNR", "CHAR", 40, "Material Number"),
			key("WERKS", "CHAR", 4, "Plant"),
			key("LGORT", "CHAR", 4, "Storage Location"),
			dec("LABST", 13, 3, "Valuated Unrestricted-Use Stock"),
			dec("SPEME", 13, 3, "Blocked Stock"),
		),
		Rows: []map[string]any{
			{"MANDT": "100", "MATNR": "MAT-12345", "WERKS": "1000", "LGORT": "0001", "LABST": "1250.000", "SPEME": "0.000"},
			{"MANDT": "100", "MATNR": "MAT-20001", "WERKS": "1000", "LGORT": "0002", "LABST": "8400.000", "SPEME": "120.000"},
		},
	},
	"T000": {
		Name:        "T000",
		Description: "Clients",
		Fields: fields(
			mandt(),
			col("MTEXT", "CHAR", 25, "Client Name"),
			col("ORT01", "CHAR", 25, "City"),
			col("CCCATEGORY", "CHAR", 1, "Client Role"),
		),
		Rows: []map[string]any{
			{"MANDT": "000", "MTEXT": "SAP AG Konzern", "ORT01": "Walldorf", "CCCATEGORY": "S"},
			{"MANDT": "100", "MTEXT": "Development", "ORT01": "Walldorf", "CCCATEGORY": "C"},
		},
	},
}

// SAPTable returns a dictionary table by name.
func SAPTable(name string) (Table, bool) {
	t, ok := sapTables[strings.ToUpper(name)]
	return t, ok
}

// SAPTables returns the known table names, sorted.
func SAPTables() []string {
	names := make([]string, 0, len(sapTables))
	for n := range sapTables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DD03L synthesizes data-dictionary field rows for every known table.
func DD03L() []map[string]any {
	var rows []map[string]any
	for _, name := range SAPTables() {
		for _, f := range sapTables[name].Fields {
			keyflag := ""
			if f.Key {
				keyflag = "X"
			}
			rows = append(rows, map[string]any{
				"TABNAME":   name,
				"FIELDNAME": f.Name,
				"POSITION":  f.Position,
				"KEYFLAG":   keyflag,
				"DATATYPE":  f.Type,
				"LENG":      f.Length,
				"DECIMALS":  f.Decimals,
				"DDTEXT":    f.Description,
			})
		}
	}
	return rows
}

// sapRecords are joined, entity-shaped source records.
var sapRecords = map[canonical.EntityType][]map[string]any{
	canonical.Item: {
		{"MATNR": "MAT-12345", "MAKTX": "Precision Ball Bearing", "MTART": "FERT", "MEINS": "EA", "MATKL": "BEARINGS", "BRGEW": "0.450", "NTGEW": "0.420", "GEWEI": "KG", "ERSDA": "20230115"},
		{"MATNR": "MAT-20001", "MAKTX": "Steel Bar Stock 40mm", "MTART": "ROH", "MEINS": "KG", "MATKL": "STEEL", "BRGEW": "1.000", "NTGEW": "1.000", "GEWEI": "KG", "ERSDA": "20230302"},
		{"MATNR": "MAT-30077", "MAKTX": "Bearing Housing Casting", "MTART": "HALB", "MEINS": "EA", "MATKL": "HOUSINGS", "BRGEW": "2.750", "NTGEW": "2.500", "GEWEI": "KG", "ERSDA": "20231110"},
	},
	canonical.Customer: {
		{"KUNNR": "0000100001", "NAME1": "Northwind Industrial", "ORT01": "Hamburg", "PSTLZ": "20457", "LAND1": "DE", "WAERS": "EUR", "ZTERM": "0001", "KLIMK": "250000.00", "SPERR": "", "ERDAT": "20200110"},
		{"KUNNR": "0000100002", "NAME1": "Contoso Machining", "ORT01": "Dayton", "PSTLZ": "45402", "LAND1": "US", "WAERS": "USD", "ZTERM": "NT30", "KLIMK": "100000.00", "SPERR": "", "ERDAT": "20210722"},
	},
	canonical.Vendor: {
		{"LIFNR": "0000200001", "NAME1": "Steelworks GmbH", "ORT01": "Dortmund", "LAND1": "DE", "WAERS": "EUR", "ZTERM": "0002", "SPERR": "", "ERDAT": "20190215"},
	},
	canonical.SalesOrder: {
		{"VBELN": "0000004711", "KUNNR": "0000100001", "AUDAT": "20240310", "AUART": "OR", "VKORG": "1000", "WAERK": "EUR", "NETWR": "12500.00", "GBSTK": "A",
			"ITEMS": []any{map[string]any{"POSNR": "000010", "MATNR": "MAT-12345", "KWMENG": "500", "NETWR": "12500.00"}}},
	},
	canonical.PurchaseOrder: {
		{"EBELN": "4500000101", "LIFNR": "0000200001", "BEDAT": "20240301", "BSART": "NB", "BUKRS": "1000", "EKORG": "1000", "WAERS": "EUR", "RLWRT": "42000.00", "PROCSTAT": "05"},
	},
	canonical.Inventory: {
		{"MATNR": "MAT-12345", "WERKS": "1000", "LGORT": "0001", "LABST": "1250.000", "SPEME": "0.000", "MEINS": "EA", "SALK3": "16250.00"},
		{"MATNR": "MAT-20001", "WERKS": "1000", "LGORT": "0002", "LABST": "8400.000", "SPEME": "120.000", "MEINS": "KG", "SALK3": "25200.00"},
	},
	canonical.GlEntry: {
		{"BELNR": "0100000017", "BUKRS": "1000", "GJAHR": "2024", "BUZEI": "001", "BUDAT": "20240315", "HKONT": "0000400000", "WRBTR": "1250.00", "WAERS": "EUR", "SHKZG": "S", "KOSTL": "0000004100", "SGTXT": "Material consumption"},
		{"BELNR": "0100000017", "BUKRS": "1000", "GJAHR": "2024", "BUZEI": "002", "BUDAT": "20240315", "HKONT": "0000300000", "WRBTR": "1250.00", "WAERS": "EUR", "SHKZG": "H", "SGTXT": "Inventory"},
	},
	canonical.CostCenter: {
		{"KOSTL": "0000004100", "KTEXT": "Assembly Line 1", "BUKRS": "1000", "KOKRS": "1000", "KOSAR": "F", "VERAK": "J. Weber", "WAERS": "EUR", "DATAB": "20200101", "DATBI": "99991231"},
	},
}

// SAPRecords returns source-shaped records for an entity type.
func SAPRecords(et canonical.EntityType) []map[string]any {
	return sapRecords[et]
}

// SAPSystemInfo describes the mock SAP system.
func SAPSystemInfo() map[string]any {
	return map[string]any{
		"systemId":       "S4D",
		"client":         "100",
		"release":        "S/4HANA 2023",
		"kernelRelease":  "793",
		"databaseSystem": "HDB",
		"host":           "s4d.example.internal",
		"language":       "EN",
		"unicode":        true,
	}
}

// Object is a repository object (program, class, function module, ...).
type Object struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Package     string `json:"package"`
	Description string `json:"description"`
	Source      string `json:"-"`
}

var sapObjects = []Object{
	{
		Type:        "program",
		Name:        "Z_MATERIAL_REPORT",
		Package:     "ZERP_TOOLS",
		Description: "Material master overview report",
		Source: `REPORT z_material_report.

PARAMETERS p_mtart TYPE mara-mtart DEFAULT 'FERT'.

START-OF-SELECTION.
  SELECT matnr, mtart, meins FROM mara
    WHERE mtart = @p_mtart
    INTO TABLE @DATA(lt_mara)
    UP TO 100 ROWS.
  LOOP AT lt_mara INTO DATA(ls_mara).
    WRITE: / ls_mara-matnr, ls_mara-mtart, ls_mara-meins.
  ENDLOOP.
`,
	},
	{
		Type:        "class",
		Name:        "ZCL_CANONICAL_ITEM",
		Package:     "ZERP_TOOLS",
		Description: "Canonical item projection",
		Source: `CLASS zcl_canonical_item DEFINITION PUBLIC FINAL CREATE PUBLIC.
  PUBLIC SECTION.
    METHODS get_description
      IMPORTING iv_matnr       TYPE matnr
      RETURNING VALUE(rv_text) TYPE maktx.
ENDCLASS.

CLASS zcl_canonical_item IMPLEMENTATION.
  METHOD get_description.
    SELECT SINGLE maktx FROM makt
      WHERE matnr = @iv_matnr AND spras = @sy-langu
      INTO @rv_text.
  ENDMETHOD.
ENDCLASS.
`,
	},
	{
		Type:        "function_module",
		Name:        "Z_GET_STOCK",
		Package:     "ZERP_TOOLS",
		Description: "Unrestricted stock for a material",
		Source: `FUNCTION z_get_stock.
  SELECT SUM( labst ) FROM mard
    WHERE matnr = @iv_matnr
    INTO @ev_stock.
ENDFUNCTION.
`,
	},
	{
		Type:        "interface",
		Name:        "ZIF_ERP_ENTITY",
		Package:     "ZERP_TOOLS",
		Description: "Canonical entity contract",
		Source: `INTERFACE zif_erp_entity PUBLIC.
  METHODS to_json RETURNING VALUE(rv_json) TYPE string.
ENDINTERFACE.
`,
	},
	{
		Type:        "include",
		Name:        "Z_MATERIAL_REPORT_TOP",
		Package:     "ZERP_TOOLS",
		Description: "Global data for material report",
		Source: `TABLES mara.
DATA gt_mara TYPE STANDARD TABLE OF mara.
`,
	},
}

// SAPObjects returns the repository objects.
func SAPObjects() []Object {
	out := make([]Object, len(sapObjects))
	copy(out, sapObjects)
	return out
}

// SAPObject looks up one repository object by type and name.
func SAPObject(objType, name string) (Object, bool) {
	for _, o := range sapObjects {
		if strings.EqualFold(o.Type, objType) && strings.EqualFold(o.Name, name) {
			return o, true
		}
	}
	return Object{}, false
}
