package mapping

import (
	"github.com/marcelocantos/erpkit/internal/canonical"
)

type entries = []canonical.FieldMapping

func f(source, target string) canonical.FieldMapping { return canonical.FieldMapping{Source: source, Target: target} }

func c(source, target string, conv canonical.Coercer) canonical.FieldMapping {
	return canonical.FieldMapping{Source: source, Target: target, Convert: conv}
}

// SAP ECC and S/4 share table layouts for the fields mapped here.
var sapTables = map[canonical.EntityType]entries{
	// MARA + MAKT
	canonical.Item: {
		c("MATNR", "itemId", Alpha),
		f("MAKTX", "description"),
		f("MTART", "itemType"),
		f("MEINS", "baseUom"),
		f("MATKL", "materialGroup"),
		c("BRGEW", "grossWeight", Number),
		c("NTGEW", "netWeight", Number),
		f("GEWEI", "weightUnit"),
		f("MBRSH", "industrySector"),
		f("MSTAE", "status"),
		c("ERSDA", "createdDate", Date),
		c("LVORM", "deletionFlag", Flag),
	},
	// KNA1
	canonical.Customer: {
		c("KUNNR", "customerId", Alpha),
		f("NAME1", "name"),
		f("STRAS", "street"),
		f("ORT01", "city"),
		f("PSTLZ", "postalCode"),
		f("REGIO", "region"),
		f("LAND1", "country"),
		f("WAERS", "currency"),
		f("ZTERM", "paymentTerms"),
		c("KLIMK", "creditLimit", Number),
		f("STCD1", "taxId"),
		f("TELF1", "phone"),
		f("SMTP_ADDR", "email"),
		c("SPERR", "blocked", Flag),
		c("ERDAT", "createdDate", Date),
	},
	// LFA1
	canonical.Vendor: {
		c("LIFNR", "vendorId", Alpha),
		f("NAME1", "name"),
		f("STRAS", "street"),
		f("ORT01", "city"),
		f("PSTLZ", "postalCode"),
		f("REGIO", "region"),
		f("LAND1", "country"),
		f("WAERS", "currency"),
		f("ZTERM", "paymentTerms"),
		f("STCD1", "taxId"),
		f("BANKN", "bankAccount"),
		c("SPERR", "blocked", Flag),
		c("ERDAT", "createdDate", Date),
	},
	// SKA1 + SKAT
	canonical.ChartOfAccounts: {
		c("SAKNR", "accountId", Alpha),
		f("KTOPL", "chartId"),
		f("TXT50", "description"),
		f("KTOKS", "accountType"),
		c("XBILK", "balanceSheet", Flag),
		c("BILKT", "groupAccount", Alpha),
		f("WAERS", "currency"),
		c("XSPEB", "blocked", Flag),
	},
	// VBAK
	canonical.SalesOrder: {
		c("VBELN", "orderId", Alpha),
		c("KUNNR", "customerId", Alpha),
		c("AUDAT", "orderDate", Date),
		f("AUART", "orderType"),
		f("VKORG", "salesOrg"),
		f("WAERK", "currency"),
		c("NETWR", "totalAmount", Number),
		c("GBSTK", "status", Code(map[string]string{"A": "OPEN", "B": "PARTIAL", "C": "COMPLETED"})),
		c("VDATU", "requestedDeliveryDate", Date),
		f("ITEMS", "lines"),
	},
	// EKKO
	canonical.PurchaseOrder: {
		c("EBELN", "orderId", Alpha),
		c("LIFNR", "vendorId", Alpha),
		c("BEDAT", "orderDate", Date),
		f("BSART", "orderType"),
		f("BUKRS", "companyCode"),
		f("EKORG", "purchasingOrg"),
		f("WAERS", "currency"),
		c("RLWRT", "totalAmount", Number),
		c("PROCSTAT", "status", Code(map[string]string{
			"01": "DRAFT", "02": "ACTIVE", "03": "IN_APPROVAL", "05": "RELEASED", "08": "REJECTED",
		})),
		f("ITEMS", "lines"),
	},
	// AUFK + AFKO
	canonical.ProductionOrder: {
		c("AUFNR", "orderId", Alpha),
		c("PLNBEZ", "itemId", Alpha),
		c("GAMNG", "plannedQuantity", Number),
		c("IGMNG", "confirmedQuantity", Number),
		f("GMEIN", "uom"),
		f("AUART", "orderType"),
		f("WERKS", "plant"),
		c("GSTRP", "startDate", Date),
		c("GLTRP", "endDate", Date),
		f("SYSST", "status"),
	},
	// MARD + MBEW
	canonical.Inventory: {
		c("MATNR", "itemId", Alpha),
		f("WERKS", "location"),
		f("LGORT", "storageLocation"),
		c("LABST", "quantity", Number),
		c("SPEME", "blockedQuantity", Number),
		f("MEINS", "uom"),
		f("CHARG", "batch"),
		f("SOBKZ", "stockType"),
		c("SALK3", "valuationAmount", Number),
	},
	// BSEG / ACDOCA line
	canonical.GlEntry: {
		c("BELNR", "documentId", Alpha),
		f("BUKRS", "companyCode"),
		c("GJAHR", "fiscalYear", Number),
		c("BUZEI", "lineItem", Number),
		c("BUDAT", "postingDate", Date),
		c("HKONT", "accountId", Alpha),
		c("WRBTR", "amount", Signed("SHKZG", "H")),
		f("WAERS", "currency"),
		f("SHKZG", "debitCredit"),
		c("KOSTL", "costCenter", Alpha),
		f("SGTXT", "description"),
	},
	// PA0001 + PA0002
	canonical.Employee: {
		c("PERNR", "employeeId", Alpha),
		f("VORNA", "firstName"),
		f("NACHN", "lastName"),
		f("USRID_LONG", "email"),
		c("ORGEH", "department", Alpha),
		c("PLANS", "position", Alpha),
		c("KOSTL", "costCenter", Alpha),
		c("BEGDA", "hireDate", Date),
		c("STAT2", "status", Code(map[string]string{"0": "WITHDRAWN", "1": "INACTIVE", "2": "RETIRED", "3": "ACTIVE"})),
	},
	// STKO + MAST
	canonical.Bom: {
		c("STLNR", "bomId", Alpha),
		c("MATNR", "parentItemId", Alpha),
		f("WERKS", "plant"),
		f("STLAN", "usage"),
		c("BMENG", "baseQuantity", Number),
		f("BMEIN", "uom"),
		c("DATUV", "validFrom", Date),
		f("ITEMS", "components"),
	},
	// PLKO + MAPL
	canonical.Routing: {
		c("PLNNR", "routingId", Alpha),
		c("MATNR", "itemId", Alpha),
		f("WERKS", "plant"),
		f("STATU", "status"),
		c("LOSVN", "lotSizeFrom", Number),
		c("LOSBS", "lotSizeTo", Number),
		c("DATUV", "validFrom", Date),
		f("OPERATIONS", "operations"),
	},
	// ANLA + ANLZ + ANLC
	canonical.FixedAsset: {
		c("ANLN1", "assetId", Alpha),
		f("ANLN2", "subNumber"),
		f("TXT50", "description"),
		f("BUKRS", "companyCode"),
		f("ANLKL", "assetClass"),
		c("KOSTL", "costCenter", Alpha),
		c("AKTIV", "acquisitionDate", Date),
		c("KANSW", "acquisitionValue", Number),
		f("WAERS", "currency"),
		c("NDJAR", "usefulLifeYears", Number),
		c("DEAKT", "deactivationDate", Date),
	},
	// CSKS + CSKT
	canonical.CostCenter: {
		c("KOSTL", "costCenterId", Alpha),
		f("KTEXT", "name"),
		f("BUKRS", "companyCode"),
		f("KOKRS", "controllingArea"),
		f("KOSAR", "category"),
		f("VERAK", "responsible"),
		f("WAERS", "currency"),
		c("DATAB", "validFrom", Date),
		c("DATBI", "validTo", Date),
		c("BKZKP", "blocked", Flag),
	},
}

// lnItemTypes maps the LN item type enumeration onto SAP-style material types.
var lnItemTypes = map[string]string{"1": "FERT", "2": "HALB", "3": "ROH", "4": "DIEN", "5": "NLAG"}

var lnTables = map[canonical.EntityType]entries{
	// tcibd001
	canonical.Item: {
		c("T$ITEM", "itemId", Text),
		c("T$DSCA", "description", Text),
		c("T$CTYP", "itemType", Code(lnItemTypes)),
		c("T$CUNI", "baseUom", Upper),
		c("T$CITG", "materialGroup", Text),
		c("T$WGHT", "netWeight", Number),
		c("T$CWUN", "weightUnit", Upper),
	},
	// tccom100 + tccom110
	canonical.Customer: {
		c("T$OFBP", "customerId", Text),
		c("T$NAMA", "name", Text),
		f("T$CCTY", "country"),
		f("T$CCUR", "currency"),
		f("T$CPAY", "paymentTerms"),
		c("T$CRLR", "creditLimit", Number),
		f("T$FOVN", "taxId"),
		c("T$BLCK", "blocked", YesNo),
	},
	// tccom100 + tccom120
	canonical.Vendor: {
		c("T$OTBP", "vendorId", Text),
		c("T$NAMA", "name", Text),
		f("T$CCTY", "country"),
		f("T$CCUR", "currency"),
		f("T$CPAY", "paymentTerms"),
		f("T$FOVN", "taxId"),
		c("T$BLCK", "blocked", YesNo),
	},
	// tdsls400
	canonical.SalesOrder: {
		c("T$ORNO", "orderId", Text),
		c("T$OFBP", "customerId", Text),
		c("T$ODAT", "orderDate", Date),
		f("T$SOTP", "orderType"),
		f("T$CCUR", "currency"),
		c("T$OAMT", "totalAmount", Number),
		c("T$HDST", "status", Code(map[string]string{"5": "FREE", "10": "IN_PROCESS", "20": "CLOSED", "25": "CANCELLED"})),
		c("T$DDAT", "requestedDeliveryDate", Date),
	},
	// tdpur400
	canonical.PurchaseOrder: {
		c("T$ORNO", "orderId", Text),
		c("T$OTBP", "vendorId", Text),
		c("T$ODAT", "orderDate", Date),
		f("T$COTP", "orderType"),
		f("T$CCUR", "currency"),
		c("T$OAMT", "totalAmount", Number),
		c("T$HDST", "status", Code(map[string]string{"5": "CREATED", "10": "APPROVED", "15": "SENT", "20": "IN_PROCESS", "30": "CLOSED"})),
	},
	// tisfc001
	canonical.ProductionOrder: {
		c("T$PDNO", "orderId", Text),
		c("T$MITM", "itemId", Text),
		c("T$QRDR", "plannedQuantity", Number),
		c("T$QDLV", "confirmedQuantity", Number),
		c("T$CUNI", "uom", Upper),
		c("T$PRDT", "startDate", Date),
		c("T$DLDT", "endDate", Date),
		c("T$OSTA", "status", Code(map[string]string{
			"1": "PLANNED", "2": "DOC_PRINTED", "3": "RELEASED", "4": "ACTIVE", "5": "COMPLETED", "6": "CLOSED",
		})),
	},
	// whwmd215
	canonical.Inventory: {
		c("T$ITEM", "itemId", Text),
		c("T$CWAR", "location", Text),
		c("T$QHND", "quantity", Number),
		c("T$QBLK", "blockedQuantity", Number),
	},
	// tfgld106
	canonical.GlEntry: {
		c("T$DOCN", "documentId", Prefixed("T$TTYP", "-")),
		c("T$NCMP", "companyCode", Text),
		c("T$YEAR", "fiscalYear", Number),
		c("T$LINO", "lineItem", Number),
		c("T$DCDT", "postingDate", Date),
		c("T$LEAC", "accountId", Text),
		c("T$AMNT", "amount", Signed("T$DBCR", "2")),
		f("T$CCUR", "currency"),
		c("T$DBCR", "debitCredit", Code(map[string]string{"1": "S", "2": "H"})),
		c("T$REFR", "description", Text),
	},
	// tccom001
	canonical.Employee: {
		c("T$EMNO", "employeeId", Text),
		c("T$NAMA", "lastName", Text),
		c("T$CDEP", "department", Text),
		c("T$MAIL", "email", Text),
	},
}

var m3Tables = map[canonical.EntityType]entries{
	// MITMAS
	canonical.Item: {
		c("MMITNO", "itemId", Text),
		c("MMITDS", "description", Text),
		f("MMITTY", "itemType"),
		f("MMUNMS", "baseUom"),
		f("MMITGR", "materialGroup"),
		c("MMGRWE", "grossWeight", Number),
		c("MMNEWE", "netWeight", Number),
		c("MMSTAT", "status", Text),
		c("MMRGDT", "createdDate", Date),
	},
	// OCUSMA
	canonical.Customer: {
		c("OKCUNO", "customerId", Text),
		c("OKCUNM", "name", Text),
		f("OKCUA1", "street"),
		f("OKTOWN", "city"),
		f("OKPONO", "postalCode"),
		f("OKCSCD", "country"),
		f("OKCUCD", "currency"),
		f("OKTEPY", "paymentTerms"),
		c("OKCRLM", "creditLimit", Number),
		f("OKVRNO", "taxId"),
		f("OKPHNO", "phone"),
		c("OKRGDT", "createdDate", Date),
	},
	// CIDMAS + CIDVEN
	canonical.Vendor: {
		c("IDSUNO", "vendorId", Text),
		c("IDSUNM", "name", Text),
		f("IDCSCD", "country"),
		f("IDCUCD", "currency"),
		f("IDTEPY", "paymentTerms"),
		f("IDVRNO", "taxId"),
		c("IDRGDT", "createdDate", Date),
	},
	// OOHEAD
	canonical.SalesOrder: {
		c("OAORNO", "orderId", Text),
		c("OACUNO", "customerId", Text),
		c("OAORDT", "orderDate", Date),
		f("OAORTP", "orderType"),
		f("OACUCD", "currency"),
		c("OANTAM", "totalAmount", Number),
		c("OAORSL", "status", Text),
		c("OARLDT", "requestedDeliveryDate", Date),
	},
	// MPHEAD
	canonical.PurchaseOrder: {
		c("IAPUNO", "orderId", Text),
		c("IASUNO", "vendorId", Text),
		c("IAPUDT", "orderDate", Date),
		f("IAORTY", "orderType"),
		f("IACUCD", "currency"),
		c("IACOAM", "totalAmount", Number),
		c("IAPUSL", "status", Text),
	},
	// MWOHED
	canonical.ProductionOrder: {
		c("VHMFNO", "orderId", Text),
		c("VHPRNO", "itemId", Text),
		c("VHORQT", "plannedQuantity", Number),
		c("VHMAQT", "confirmedQuantity", Number),
		f("VHFACI", "plant"),
		c("VHSTDT", "startDate", Date),
		c("VHFIDT", "endDate", Date),
		c("VHWHST", "status", Text),
	},
	// MITBAL
	canonical.Inventory: {
		c("MBITNO", "itemId", Text),
		c("MBWHLO", "location", Text),
		c("MBSTQT", "quantity", Number),
		c("MBQUQT", "blockedQuantity", Number),
	},
}

// csiItemSources maps CSI product sources onto material types.
var csiItemSources = map[string]string{"M": "FERT", "P": "ROH", "T": "HALB"}

var csiTables = map[canonical.EntityType]entries{
	// item
	canonical.Item: {
		c("Item", "itemId", Text),
		c("Description", "description", Text),
		c("PMTCode", "itemType", Code(csiItemSources)),
		c("UM", "baseUom", Upper),
		f("ProductCode", "materialGroup"),
		c("UnitWeight", "netWeight", Number),
		f("Stat", "status"),
	},
	// customer + custaddr
	canonical.Customer: {
		c("CustNum", "customerId", Text),
		c("Name", "name", Text),
		f("Addr_1", "street"),
		f("City", "city"),
		f("State", "region"),
		f("Zip", "postalCode"),
		f("Country", "country"),
		f("CurrCode", "currency"),
		f("TermsCode", "paymentTerms"),
		c("CreditLimit", "creditLimit", Number),
		f("TaxRegNum1", "taxId"),
	},
	// vendor + vendaddr
	canonical.Vendor: {
		c("VendNum", "vendorId", Text),
		c("Name", "name", Text),
		f("Addr_1", "street"),
		f("City", "city"),
		f("State", "region"),
		f("Zip", "postalCode"),
		f("Country", "country"),
		f("CurrCode", "currency"),
		f("TermsCode", "paymentTerms"),
	},
	// co
	canonical.SalesOrder: {
		c("CoNum", "orderId", Text),
		c("CustNum", "customerId", Text),
		c("OrderDate", "orderDate", Date),
		f("Type", "orderType"),
		c("Price", "totalAmount", Number),
		c("Stat", "status", Code(map[string]string{"O": "OPEN", "P": "PLANNED", "C": "COMPLETED", "S": "STOPPED"})),
	},
	// po
	canonical.PurchaseOrder: {
		c("PoNum", "orderId", Text),
		c("VendNum", "vendorId", Text),
		c("OrderDate", "orderDate", Date),
		f("Type", "orderType"),
		c("PoCost", "totalAmount", Number),
		c("Stat", "status", Code(map[string]string{"O": "OPEN", "P": "PLANNED", "C": "COMPLETED", "H": "HISTORY"})),
	},
	// itemwhse
	canonical.Inventory: {
		c("Item", "itemId", Text),
		c("Whse", "location", Text),
		c("QtyOnHand", "quantity", Number),
	},
	// job
	canonical.ProductionOrder: {
		c("Job", "orderId", Text),
		c("Item", "itemId", Text),
		c("QtyReleased", "plannedQuantity", Number),
		c("QtyComplete", "confirmedQuantity", Number),
		c("JobDate", "startDate", Date),
		c("Stat", "status", Code(map[string]string{"F": "FIRM", "R": "RELEASED", "C": "COMPLETE", "S": "STOPPED"})),
	},
}

var lawsonTables = map[canonical.EntityType]entries{
	// APVENMAST
	canonical.Vendor: {
		c("VENDOR", "vendorId", Text),
		c("VENDOR-VNAME", "name", Text),
		f("COUNTRY-CODE", "country"),
		f("CURRENCY-CODE", "currency"),
		f("TERM-CODE", "paymentTerms"),
		f("TAX-ID", "taxId"),
		c("VENDOR-STATUS", "blocked", func(raw any, _ map[string]any) any {
			return Text(raw, nil) == "H"
		}),
	},
	// ARCUSTOMER
	canonical.Customer: {
		c("CUSTOMER", "customerId", Text),
		c("NAME", "name", Text),
		f("COUNTRY-CODE", "country"),
		f("CURRENCY-CODE", "currency"),
		f("TERMS-CODE", "paymentTerms"),
		c("CREDIT-LIMIT", "creditLimit", Number),
	},
	// EMPLOYEE
	canonical.Employee: {
		c("EMPLOYEE", "employeeId", Text),
		c("FIRST-NAME", "firstName", Text),
		c("LAST-NAME", "lastName", Text),
		c("EMAIL-ADDRESS", "email", Text),
		c("DEPARTMENT", "department", Text),
		c("JOB-CODE", "position", Text),
		c("DATE-HIRED", "hireDate", Date),
		c("EMP-STATUS", "status", Text),
	},
	// GLTRANS
	canonical.GlEntry: {
		c("JE-SEQUENCE", "documentId", Text),
		c("COMPANY", "companyCode", Text),
		c("FISCAL-YEAR", "fiscalYear", Number),
		c("LINE-NBR", "lineItem", Number),
		c("POSTING-DATE", "postingDate", Date),
		c("ACCOUNT", "accountId", Text),
		c("TRAN-AMOUNT", "amount", Number),
		f("CURRENCY-CODE", "currency"),
		c("DESCRIPTION", "description", Text),
	},
	// GLCHARTDTL
	canonical.ChartOfAccounts: {
		c("ACCOUNT", "accountId", Text),
		c("CHART-NAME", "chartId", Text),
		c("ACCOUNT-DESC", "description", Text),
		c("ACCT-TYPE", "accountType", Text),
	},
	// AMASSET
	canonical.FixedAsset: {
		c("ASSET", "assetId", Text),
		c("DESCRIPTION", "description", Text),
		c("COMPANY", "companyCode", Text),
		c("ASSET-GROUP", "assetClass", Text),
		c("IN-SRVC-DATE", "acquisitionDate", Date),
		c("BOOK-BASIS", "acquisitionValue", Number),
		c("LIFE", "usefulLifeYears", Scaled(12)),
	},
	// GLNAMES accounting units
	canonical.CostCenter: {
		c("ACCT-UNIT", "costCenterId", Text),
		c("DESCRIPTION", "name", Text),
		c("COMPANY", "companyCode", Text),
		c("ACTIVE-STATUS", "blocked", func(raw any, _ map[string]any) any {
			return Text(raw, nil) == "I"
		}),
	},
	// PURCHORDER
	canonical.PurchaseOrder: {
		c("PO-NUMBER", "orderId", Text),
		c("VENDOR", "vendorId", Text),
		c("PO-DATE", "orderDate", Date),
		f("PO-CODE", "orderType"),
		f("CURRENCY-CODE", "currency"),
		c("TOT-PRD-AMT", "totalAmount", Number),
	},
}
