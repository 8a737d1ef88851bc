package adapter

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marcelocantos/erpkit/internal/canonical"
	"github.com/marcelocantos/erpkit/internal/fixture"
)

// Options configure a constructed adapter.
type Options struct {
	Mode    Mode
	Client  Client        // required in live mode
	Latency time.Duration // fabricated mock latency
	Logger  *zap.Logger
}

// Constructor builds an adapter.
type Constructor func(opts Options) (Adapter, error)

// Registry maps upper-cased adapter identifiers to constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds or replaces a constructor.
func (r *Registry) Register(name string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[strings.ToUpper(name)] = c
}

// Names returns the registered identifiers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for n := range r.ctors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New constructs an adapter without connecting it.
func (r *Registry) New(name string, opts Options) (Adapter, error) {
	r.mu.RLock()
	c, ok := r.ctors[strings.ToUpper(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownAdapter, name, strings.Join(r.Names(), ", "))
	}
	return c(opts)
}

// Open constructs an adapter and connects it.
func (r *Registry) Open(ctx context.Context, name string, opts Options) (Adapter, error) {
	a, err := r.New(name, opts)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// RegisterBuiltins adds the SAP and Infor adapters.
func RegisterBuiltins(r *Registry) {
	r.Register("SAP", func(opts Options) (Adapter, error) {
		return newERP("SAP", sapSource{}, sapEntitySets, opts)
	})
	for _, system := range fixture.InforSystems() {
		system := system
		r.Register(system, func(opts Options) (Adapter, error) {
			return newERP(system, inforSource{system: system}, inforEntitySets(system), opts)
		})
	}
}

// sapEntitySets name the OData entity sets queried in live mode.
var sapEntitySets = map[canonical.EntityType]string{
	canonical.Item:            "API_PRODUCT_SRV/A_Product",
	canonical.Customer:        "API_BUSINESS_PARTNER/A_Customer",
	canonical.Vendor:          "API_BUSINESS_PARTNER/A_Supplier",
	canonical.SalesOrder:      "API_SALES_ORDER_SRV/A_SalesOrder",
	canonical.PurchaseOrder:   "API_PURCHASEORDER_PROCESS_SRV/A_PurchaseOrder",
	canonical.ProductionOrder: "API_PRODUCTION_ORDER_2_SRV/A_ProductionOrder_2",
	canonical.Inventory:       "API_MATERIAL_STOCK_SRV/A_MatlStkInAcctMod",
	canonical.GlEntry:         "API_JOURNALENTRYITEMBASIC_SRV/A_JournalEntryItemBasic",
	canonical.CostCenter:      "API_COSTCENTER_SRV/A_CostCenter",
	canonical.FixedAsset:      "API_FIXEDASSET_SRV/A_FixedAsset",
	canonical.Bom:             "API_BILL_OF_MATERIAL_SRV/MaterialBOM",
	canonical.Routing:         "API_PRODUCTION_ROUTING/ProductionRoutingHeader",
	canonical.ChartOfAccounts: "API_GLACCOUNTINCHARTOFACCOUNTS_SRV/A_GLAccountInChartOfAccounts",
	canonical.Employee:        "API_BUSINESS_USER/A_BusinessUser",
}

// inforEntitySets are the tables behind each entity type; ION and BOD
// queries address the same names.
func inforEntitySets(system string) map[canonical.EntityType]string {
	sets := make(map[canonical.EntityType]string)
	for _, et := range canonical.Types() {
		if t, ok := fixture.InforEntityTable(system, et); ok {
			sets[et] = t
		}
	}
	return sets
}

type sapSource struct{}

func (sapSource) table(name string) ([]map[string]any, bool) {
	if strings.EqualFold(name, "DD03L") {
		return fixture.DD03L(), true
	}
	t, ok := fixture.SAPTable(name)
	return t.Rows, ok
}

func (sapSource) records(et canonical.EntityType) ([]map[string]any, bool) {
	recs := fixture.SAPRecords(et)
	return recs, recs != nil
}

func (sapSource) info() map[string]any { return fixture.SAPSystemInfo() }

type inforSource struct{ system string }

func (s inforSource) table(name string) ([]map[string]any, bool) {
	return fixture.InforTable(s.system, name)
}

func (s inforSource) records(et canonical.EntityType) ([]map[string]any, bool) {
	t, ok := fixture.InforEntityTable(s.system, et)
	if !ok {
		return nil, false
	}
	return fixture.InforTable(s.system, t)
}

func (s inforSource) info() map[string]any {
	info, _ := fixture.InforSystemInfo(s.system)
	return info
}
