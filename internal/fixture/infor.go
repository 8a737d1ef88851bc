package fixture

import (
	"sort"
	"strings"

	"github.com/marcelocantos/erpkit/internal/canonical"
)

// inforSystem is the mock content of one Infor product.
type inforSystem struct {
	info     map[string]any
	entities map[canonical.EntityType]string // entity → table
	tables   map[string][]map[string]any
}

var inforSystems = map[string]inforSystem{
	"INFOR_LN": {
		info: map[string]any{"product": "Infor LN", "version": "10.7", "company": "121", "tenant": "ACME_TST"},
		entities: map[canonical.EntityType]string{
			canonical.Item:            "tcibd001",
			canonical.Customer:        "tccom110",
			canonical.Vendor:          "tccom120",
			canonical.SalesOrder:      "tdsls400",
			canonical.PurchaseOrder:   "tdpur400",
			canonical.ProductionOrder: "tisfc001",
			canonical.Inventory:       "whwmd215",
		},
		tables: map[string][]map[string]any{
			"tcibd001": {
				{"T$ITEM": "LN-ITEM-001", "T$DSCA": "Cylinder Assembly", "T$CTYP": 1, "T$CUNI": "pc", "T$CITG": "CYL", "T$WGHT": 3.2, "T$CWUN": "kg"},
				{"T$ITEM": "LN-ITEM-002", "T$DSCA": "Piston Rod", "T$CTYP": 2, "T$CUNI": "pc", "T$CITG": "ROD", "T$WGHT": 0.8, "T$CWUN": "kg"},
				{"T$ITEM": "LN-ITEM-003", "T$DSCA": "Seal Kit", "T$CTYP": 3, "T$CUNI": "set", "T$CITG": "SEAL", "T$WGHT": 0.1, "T$CWUN": "kg"},
			},
			"tccom110": {
				{"T$OFBP": "C00000100", "T$NAMA": "Adatum Hydraulics", "T$CCTY": "NL", "T$CCUR": "EUR", "T$CPAY": "030", "T$CRLR": 50000, "T$BLCK": 2},
			},
			"tccom120": {
				{"T$OTBP": "S00000200", "T$NAMA": "Litware Metals", "T$CCTY": "BE", "T$CCUR": "EUR", "T$CPAY": "060", "T$BLCK": 2},
			},
			"tdsls400": {
				{"T$ORNO": "SO1000123", "T$OFBP": "C00000100", "T$ODAT": "2024-03-11T00:00:00Z", "T$SOTP": "SOT", "T$CCUR": "EUR", "T$OAMT": 18250.0, "T$HDST": 10},
			},
			"tdpur400": {
				{"T$ORNO": "PO2000045", "T$OTBP": "S00000200", "T$ODAT": "2024-02-27T00:00:00Z", "T$COTP": "POT", "T$CCUR": "EUR", "T$OAMT": 7400.0, "T$HDST": 10},
			},
			"tisfc001": {
				{"T$PDNO": "SFC000771", "T$MITM": "LN-ITEM-001", "T$QRDR": 40, "T$QDLV": 12, "T$CUNI": "pc", "T$PRDT": "2024-03-18T06:00:00Z", "T$DLDT": "2024-03-22T18:00:00Z", "T$OSTA": 4},
			},
			"whwmd215": {
				{"T$ITEM": "LN-ITEM-001", "T$CWAR": "WH1", "T$QHND": 64, "T$QBLK": 2},
				{"T$ITEM": "LN-ITEM-002", "T$CWAR": "WH1", "T$QHND": 410, "T$QBLK": 0},
			},
		},
	},
	"INFOR_M3": {
		info: map[string]any{"product": "Infor M3", "version": "13.4", "company": "100", "division": "AAA"},
		entities: map[canonical.EntityType]string{
			canonical.Item:          "MITMAS",
			canonical.Customer:      "OCUSMA",
			canonical.Vendor:        "CIDMAS",
			canonical.SalesOrder:    "OOHEAD",
			canonical.PurchaseOrder: "MPHEAD",
			canonical.Inventory:     "MITBAL",
		},
		tables: map[string][]map[string]any{
			"MITMAS": {
				{"MMITNO": "M3-100200", "MMITDS": "Gear Motor 0.75kW", "MMITTY": "FIN", "MMUNMS": "EA", "MMITGR": "MOTOR", "MMGRWE": 14.5, "MMNEWE": 13.9, "MMSTAT": "20", "MMRGDT": 20220418},
			},
			"OCUSMA": {
				{"OKCUNO": "CU1001", "OKCUNM": "Wingtip Conveyors", "OKTOWN": "Malmo", "OKCSCD": "SE", "OKCUCD": "SEK", "OKTEPY": "30", "OKCRLM": 750000, "OKRGDT": 20210111},
			},
			"CIDMAS": {
				{"IDSUNO": "SU2001", "IDSUNM": "Tailspin Bearings", "IDCSCD": "DK", "IDCUCD": "DKK", "IDTEPY": "45", "IDRGDT": 20190903},
			},
			"OOHEAD": {
				{"OAORNO": "1000004521", "OACUNO": "CU1001", "OAORDT": 20240305, "OAORTP": "A01", "OACUCD": "SEK", "OANTAM": 98500.0, "OAORSL": "33"},
			},
			"MPHEAD": {
				{"IAPUNO": "2000001877", "IASUNO": "SU2001", "IAPUDT": 20240301, "IAORTY": "P10", "IACUCD": "DKK", "IACOAM": 15600.0, "IAPUSL": "20"},
			},
			"MITBAL": {
				{"MBITNO": "M3-100200", "MBWHLO": "100", "MBSTQT": 37, "MBQUQT": 1},
			},
		},
	},
	"INFOR_CSI": {
		info: map[string]any{"product": "Infor CloudSuite Industrial", "version": "10.0", "site": "DALS"},
		entities: map[canonical.EntityType]string{
			canonical.Item:            "item",
			canonical.Customer:        "customer",
			canonical.Vendor:          "vendor",
			canonical.SalesOrder:      "co",
			canonical.PurchaseOrder:   "po",
			canonical.Inventory:       "itemwhse",
			canonical.ProductionOrder: "job",
		},
		tables: map[string][]map[string]any{
			"item": {
				{"Item": "FG-500", "Description": "Pump Assembly", "PMTCode": "M", "UM": "ea", "ProductCode": "PUMPS", "UnitWeight": 22.0, "Stat": "A"},
			},
			"customer": {
				{"CustNum": "C000042", "Name": "Proseware Fluids", "City": "Dallas", "State": "TX", "Zip": "75201", "Country": "US", "CurrCode": "USD", "TermsCode": "N30", "CreditLimit": 120000},
			},
			"vendor": {
				{"VendNum": "V000017", "Name": "Lucerne Castings", "City": "Tulsa", "State": "OK", "Country": "US", "CurrCode": "USD", "TermsCode": "N45"},
			},
			"co": {
				{"CoNum": "CO0001234", "CustNum": "C000042", "OrderDate": "2024-03-01T00:00:00", "Type": "R", "Price": 44000.0, "Stat": "O"},
			},
			"po": {
				{"PoNum": "PO0000777", "VendNum": "V000017", "OrderDate": "2024-02-20T00:00:00", "Type": "R", "PoCost": 9100.0, "Stat": "O"},
			},
			"itemwhse": {
				{"Item": "FG-500", "Whse": "MAIN", "QtyOnHand": 18},
			},
			"job": {
				{"Job": "J00000310", "Item": "FG-500", "QtyReleased": 25, "QtyComplete": 5, "JobDate": "2024-03-12T00:00:00", "Stat": "R"},
			},
		},
	},
	"INFOR_LAWSON": {
		info: map[string]any{"product": "Infor Lawson", "version": "10.0.12", "productLine": "PROD"},
		entities: map[canonical.EntityType]string{
			canonical.Vendor:          "APVENMAST",
			canonical.Customer:        "ARCUSTOMER",
			canonical.Employee:        "EMPLOYEE",
			canonical.GlEntry:         "GLTRANS",
			canonical.ChartOfAccounts: "GLCHARTDTL",
			canonical.FixedAsset:      "AMASSET",
			canonical.CostCenter:      "GLNAMES",
			canonical.PurchaseOrder:   "PURCHORDER",
		},
		tables: map[string][]map[string]any{
			"APVENMAST": {
				{"VENDOR": "   10045", "VENDOR-VNAME": "Blue Yonder Supply", "COUNTRY-CODE": "US", "CURRENCY-CODE": "USD", "TERM-CODE": "N30", "VENDOR-STATUS": "A"},
			},
			"ARCUSTOMER": {
				{"CUSTOMER": "CUST0009", "NAME": "Trey Research Clinics", "COUNTRY-CODE": "US", "CURRENCY-CODE": "USD", "TERMS-CODE": "N30", "CREDIT-LIMIT": 25000},
			},
			"EMPLOYEE": {
				{"EMPLOYEE": 1207, "FIRST-NAME": "Dana", "LAST-NAME": "Okafor", "EMAIL-ADDRESS": "dana.okafor@example.com", "DEPARTMENT": "FIN", "JOB-CODE": "ACCT2", "DATE-HIRED": 20170605, "EMP-STATUS": "A1"},
			},
			"GLTRANS": {
				{"JE-SEQUENCE": "JE-88121", "COMPANY": 1000, "FISCAL-YEAR": 2024, "LINE-NBR": 1, "POSTING-DATE": 20240229, "ACCOUNT": "61000", "TRAN-AMOUNT": -420.75, "CURRENCY-CODE": "USD", "DESCRIPTION": "Office supplies"},
			},
			"GLCHARTDTL": {
				{"ACCOUNT": "61000", "CHART-NAME": "CORP", "ACCOUNT-DESC": "Office Expense", "ACCT-TYPE": "E"},
			},
			"AMASSET": {
				{"ASSET": "A-000310", "DESCRIPTION": "CNC Lathe", "COMPANY": 1000, "ASSET-GROUP": "MACH", "IN-SRVC-DATE": 20210115, "BOOK-BASIS": 185000.0, "LIFE": 120},
			},
			"GLNAMES": {
				{"ACCT-UNIT": "4100", "DESCRIPTION": "Plant Maintenance", "COMPANY": 1000, "ACTIVE-STATUS": "A"},
			},
			"PURCHORDER": {
				{"PO-NUMBER": "PO-55120", "VENDOR": "   10045", "PO-DATE": 20240219, "PO-CODE": "STD", "CURRENCY-CODE": "USD", "TOT-PRD-AMT": 3120.0},
			},
		},
	},
}

// InforSystems returns the mock Infor system identifiers, sorted.
func InforSystems() []string {
	names := make([]string, 0, len(inforSystems))
	for n := range inforSystems {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// InforSystemInfo describes a mock Infor system.
func InforSystemInfo(system string) (map[string]any, bool) {
	s, ok := inforSystems[strings.ToUpper(system)]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(s.info))
	for k, v := range s.info {
		out[k] = v
	}
	return out, true
}

// InforEntityTable returns the table holding an entity type.
func InforEntityTable(system string, et canonical.EntityType) (string, bool) {
	s, ok := inforSystems[strings.ToUpper(system)]
	if !ok {
		return "", false
	}
	t, ok := s.entities[et]
	return t, ok
}

// InforTable returns the rows of a mock Infor table.
func InforTable(system, table string) ([]map[string]any, bool) {
	s, ok := inforSystems[strings.ToUpper(system)]
	if !ok {
		return nil, false
	}
	for name, rows := range s.tables {
		if strings.EqualFold(name, table) {
			return rows, true
		}
	}
	return nil, false
}
