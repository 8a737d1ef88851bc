package canonical

import (
	"fmt"
	"sort"
	"strings"
)

// FieldType is the declared type of a canonical field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeDate    FieldType = "date"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
)

// Valid reports whether t is one of the five declared field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeDate, TypeBoolean, TypeArray:
		return true
	}
	return false
}

// FieldDefinition describes one canonical field.
type FieldDefinition struct {
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	MaxLength   int       `json:"maxLength,omitempty"` // strings only; 0 = unbounded
	Description string    `json:"description"`
}

// Schema is the required-field set plus field definitions of one entity type.
type Schema struct {
	RequiredFields   []string                   `json:"requiredFields"`
	FieldDefinitions map[string]FieldDefinition `json:"fieldDefinitions"`
}

// EntityType names a registered canonical entity.
type EntityType string

const (
	Item            EntityType = "Item"
	Customer        EntityType = "Customer"
	Vendor          EntityType = "Vendor"
	ChartOfAccounts EntityType = "ChartOfAccounts"
	SalesOrder      EntityType = "SalesOrder"
	PurchaseOrder   EntityType = "PurchaseOrder"
	ProductionOrder EntityType = "ProductionOrder"
	Inventory       EntityType = "Inventory"
	GlEntry         EntityType = "GlEntry"
	Employee        EntityType = "Employee"
	Bom             EntityType = "Bom"
	Routing         EntityType = "Routing"
	FixedAsset      EntityType = "FixedAsset"
	CostCenter      EntityType = "CostCenter"
)

func str(max int, desc string) FieldDefinition {
	return FieldDefinition{Type: TypeString, MaxLength: max, Description: desc}
}

func num(desc string) FieldDefinition  { return FieldDefinition{Type: TypeNumber, Description: desc} }
func date(desc string) FieldDefinition { return FieldDefinition{Type: TypeDate, Description: desc} }
func flag(desc string) FieldDefinition { return FieldDefinition{Type: TypeBoolean, Description: desc} }
func list(desc string) FieldDefinition { return FieldDefinition{Type: TypeArray, Description: desc} }

// newSchema marks every name in required as required in defs.
func newSchema(required []string, defs map[string]FieldDefinition) Schema {
	for _, name := range required {
		d, ok := defs[name]
		if !ok {
			panic(fmt.Sprintf("canonical: required field %q has no definition", name))
		}
		d.Required = true
		defs[name] = d
	}
	return Schema{RequiredFields: required, FieldDefinitions: defs}
}

var schemas = map[EntityType]Schema{
	Item: newSchema([]string{"itemId", "description", "baseUom"}, map[string]FieldDefinition{
		"itemId":         str(40, "Unique item identifier"),
		"description":    str(255, "Item description"),
		"itemType":       str(10, "Item type (FERT, HALB, ROH, DIEN, ...)"),
		"baseUom":        str(3, "Base unit of measure"),
		"materialGroup":  str(20, "Material or item group"),
		"grossWeight":    num("Gross weight"),
		"netWeight":      num("Net weight"),
		"weightUnit":     str(3, "Weight unit"),
		"industrySector": str(1, "Industry sector"),
		"status":         str(10, "Lifecycle status"),
		"createdDate":    date("Creation date"),
		"deletionFlag":   flag("Flagged for deletion"),
	}),
	Customer: newSchema([]string{"customerId", "name"}, map[string]FieldDefinition{
		"customerId":   str(20, "Unique customer identifier"),
		"name":         str(80, "Customer name"),
		"street":       str(60, "Street address"),
		"city":         str(40, "City"),
		"postalCode":   str(10, "Postal code"),
		"region":       str(3, "Region or state"),
		"country":      str(3, "ISO country code"),
		"currency":     str(5, "Default currency"),
		"paymentTerms": str(4, "Payment terms key"),
		"creditLimit":  num("Credit limit"),
		"taxId":        str(20, "Tax registration number"),
		"phone":        str(30, "Telephone"),
		"email":        str(241, "E-mail address"),
		"blocked":      flag("Posting or order block"),
		"createdDate":  date("Creation date"),
	}),
	Vendor: newSchema([]string{"vendorId", "name"}, map[string]FieldDefinition{
		"vendorId":     str(20, "Unique vendor identifier"),
		"name":         str(80, "Vendor name"),
		"street":       str(60, "Street address"),
		"city":         str(40, "City"),
		"postalCode":   str(10, "Postal code"),
		"region":       str(3, "Region or state"),
		"country":      str(3, "ISO country code"),
		"currency":     str(5, "Order currency"),
		"paymentTerms": str(4, "Payment terms key"),
		"taxId":        str(20, "Tax registration number"),
		"bankAccount":  str(34, "Bank account or IBAN"),
		"blocked":      flag("Posting or purchasing block"),
		"createdDate":  date("Creation date"),
	}),
	ChartOfAccounts: newSchema([]string{"accountId", "chartId", "description"}, map[string]FieldDefinition{
		"accountId":    str(10, "G/L account number"),
		"chartId":      str(4, "Chart of accounts"),
		"description":  str(50, "Account description"),
		"accountType":  str(10, "Account type (asset, liability, revenue, expense)"),
		"balanceSheet": flag("Balance sheet account"),
		"groupAccount": str(10, "Group account number"),
		"currency":     str(5, "Account currency"),
		"blocked":      flag("Blocked for posting"),
	}),
	SalesOrder: newSchema([]string{"orderId", "customerId", "orderDate"}, map[string]FieldDefinition{
		"orderId":               str(20, "Sales order number"),
		"customerId":            str(20, "Sold-to customer"),
		"orderDate":             date("Order date"),
		"orderType":             str(4, "Order type"),
		"salesOrg":              str(4, "Sales organization"),
		"currency":              str(5, "Document currency"),
		"totalAmount":           num("Net order value"),
		"status":                str(10, "Overall status"),
		"requestedDeliveryDate": date("Requested delivery date"),
		"lines":                 list("Order lines"),
	}),
	PurchaseOrder: newSchema([]string{"orderId", "vendorId", "orderDate"}, map[string]FieldDefinition{
		"orderId":       str(20, "Purchase order number"),
		"vendorId":      str(20, "Supplier"),
		"orderDate":     date("Document date"),
		"orderType":     str(4, "Order type"),
		"companyCode":   str(4, "Company code"),
		"purchasingOrg": str(4, "Purchasing organization"),
		"currency":      str(5, "Document currency"),
		"totalAmount":   num("Net order value"),
		"status":        str(10, "Processing status"),
		"lines":         list("Order lines"),
	}),
	ProductionOrder: newSchema([]string{"orderId", "itemId", "plannedQuantity"}, map[string]FieldDefinition{
		"orderId":           str(20, "Production order number"),
		"itemId":            str(40, "Item produced"),
		"plannedQuantity":   num("Planned quantity"),
		"confirmedQuantity": num("Confirmed quantity"),
		"uom":               str(3, "Unit of measure"),
		"orderType":         str(4, "Order type"),
		"plant":             str(10, "Plant or site"),
		"startDate":         date("Scheduled start"),
		"endDate":           date("Scheduled finish"),
		"status":            str(10, "Order status"),
	}),
	Inventory: newSchema([]string{"itemId", "location", "quantity"}, map[string]FieldDefinition{
		"itemId":          str(40, "Item"),
		"location":        str(20, "Plant, warehouse or site"),
		"storageLocation": str(10, "Storage location or bin"),
		"quantity":        num("Unrestricted quantity on hand"),
		"blockedQuantity": num("Blocked quantity"),
		"uom":             str(3, "Unit of measure"),
		"batch":           str(20, "Batch or lot"),
		"stockType":       str(10, "Stock type"),
		"valuationAmount": num("Stock value"),
	}),
	GlEntry: newSchema([]string{"documentId", "companyCode", "postingDate", "accountId", "amount"}, map[string]FieldDefinition{
		"documentId":  str(20, "Accounting document number"),
		"companyCode": str(4, "Company code"),
		"fiscalYear":  num("Fiscal year"),
		"lineItem":    num("Line item number"),
		"postingDate": date("Posting date"),
		"accountId":   str(10, "G/L account"),
		"amount":      num("Amount in document currency"),
		"currency":    str(5, "Document currency"),
		"debitCredit": str(1, "Debit (S) or credit (H) indicator"),
		"costCenter":  str(10, "Cost center"),
		"description": str(50, "Line item text"),
	}),
	Employee: newSchema([]string{"employeeId", "lastName"}, map[string]FieldDefinition{
		"employeeId": str(20, "Personnel number"),
		"firstName":  str(40, "First name"),
		"lastName":   str(40, "Last name"),
		"email":      str(241, "E-mail address"),
		"department": str(40, "Organizational unit"),
		"position":   str(40, "Position"),
		"costCenter": str(10, "Cost center"),
		"hireDate":   date("Hire date"),
		"status":     str(10, "Employment status"),
	}),
	Bom: newSchema([]string{"bomId", "parentItemId"}, map[string]FieldDefinition{
		"bomId":        str(20, "Bill of material number"),
		"parentItemId": str(40, "Assembly item"),
		"plant":        str(10, "Plant or site"),
		"usage":        str(2, "BOM usage"),
		"baseQuantity": num("Base quantity"),
		"uom":          str(3, "Base unit of measure"),
		"validFrom":    date("Valid from"),
		"components":   list("Component lines"),
	}),
	Routing: newSchema([]string{"routingId", "itemId"}, map[string]FieldDefinition{
		"routingId":   str(20, "Routing or task list identifier"),
		"itemId":      str(40, "Item produced"),
		"plant":       str(10, "Plant or site"),
		"status":      str(10, "Routing status"),
		"lotSizeFrom": num("Lot size from"),
		"lotSizeTo":   num("Lot size to"),
		"validFrom":   date("Valid from"),
		"operations":  list("Operations"),
	}),
	FixedAsset: newSchema([]string{"assetId", "description", "companyCode"}, map[string]FieldDefinition{
		"assetId":          str(20, "Asset number"),
		"subNumber":        str(4, "Asset sub-number"),
		"description":      str(50, "Asset description"),
		"companyCode":      str(4, "Company code"),
		"assetClass":       str(8, "Asset class"),
		"costCenter":       str(10, "Cost center"),
		"acquisitionDate":  date("Capitalization date"),
		"acquisitionValue": num("Acquisition value"),
		"currency":         str(5, "Currency"),
		"usefulLifeYears":  num("Useful life in years"),
		"deactivationDate": date("Deactivation date"),
	}),
	CostCenter: newSchema([]string{"costCenterId", "name", "companyCode"}, map[string]FieldDefinition{
		"costCenterId":    str(10, "Cost center"),
		"name":            str(40, "Cost center name"),
		"companyCode":     str(4, "Company code"),
		"controllingArea": str(4, "Controlling area"),
		"category":        str(1, "Cost center category"),
		"responsible":     str(40, "Person responsible"),
		"currency":        str(5, "Currency"),
		"validFrom":       date("Valid from"),
		"validTo":         date("Valid to"),
		"blocked":         flag("Blocked for postings"),
	}),
}

// Types returns the registered entity type names, sorted.
func Types() []EntityType {
	types := make([]EntityType, 0, len(schemas))
	for t := range schemas {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// SchemaFor returns the schema of a registered entity type.
func SchemaFor(t EntityType) (Schema, error) {
	s, ok := schemas[t]
	if !ok {
		return Schema{}, unknownType(string(t))
	}
	return s, nil
}

// CheckSchemas verifies that every required field is defined, marked
// required, and carries one of the declared field types.
func CheckSchemas() error {
	for _, t := range Types() {
		s := schemas[t]
		for _, name := range s.RequiredFields {
			def, ok := s.FieldDefinitions[name]
			if !ok {
				return fmt.Errorf("%s: required field %q has no definition", t, name)
			}
			if !def.Required {
				return fmt.Errorf("%s: required field %q not marked required", t, name)
			}
		}
		for name, def := range s.FieldDefinitions {
			if !def.Type.Valid() {
				return fmt.Errorf("%s: field %q has invalid type %q", t, name, def.Type)
			}
			if def.MaxLength > 0 && def.Type != TypeString {
				return fmt.Errorf("%s: field %q has maxLength on non-string type", t, name)
			}
		}
	}
	return nil
}

func unknownType(name string) error {
	names := make([]string, 0, len(schemas))
	for _, t := range Types() {
		names = append(names, string(t))
	}
	return fmt.Errorf("%w: %q (available: %s)", ErrUnknownEntityType, name, strings.Join(names, ", "))
}
