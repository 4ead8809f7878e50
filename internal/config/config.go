// =============================================================================
// ERP Sales Reconciler - Configuration Module
// =============================================================================
//
// This module loads and validates the reconciler configuration. The external
// ERP renames, adds, and drops columns between export versions, so everything
// schema-dependent lives here as data rather than code:
//
//   1. Field-resolution tables: ordered candidate column names per logical
//      field, for the header, item, and optional general-ledger exports.
//   2. Voucher keyword sets: the exclude/include substrings that classify a
//      voucher label, and the return patterns that flip signs.
//   3. Identity rules: the substring whitelist that canonicalizes salesperson
//      spellings.
//   4. The unit-cost column choice, the one tunable the reconciliation logic
//      accepts at run time.
//
// Defaults reproduce the column names observed in the sample exports, so the
// tool runs without a config file at all.
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// TOP-LEVEL CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the full application configuration, loaded from a single YAML
// file with defaults applied for anything unset.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for export files to reconcile.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated ledger and report files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is where successfully processed exports are moved.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// =========================================================================
	// INPUT DISCOVERY
	// =========================================================================

	// HeaderToken, ItemsToken and LedgerToken identify which export file in a
	// set carries headers, line items, and general-ledger rows. Files are
	// paired by their name with the token removed, so "2024-05_header.xml"
	// pairs with "2024-05_items.xml".
	HeaderToken string `yaml:"header_token"`
	ItemsToken  string `yaml:"items_token"`
	LedgerToken string `yaml:"ledger_token"`

	// Encoding is the character encoding of the export files.
	// Supported: "UTF-8", "Windows-1256", "Windows-1252", "ISO-8859-1".
	// Default: "UTF-8"; the ERP's legacy exporter emits Windows-1256.
	Encoding string `yaml:"encoding"`

	// =========================================================================
	// RECONCILIATION SETTINGS
	// =========================================================================

	// TaxRate is the VAT rate used by the last-resort revenue fallback, which
	// divides a tax-inclusive total by (1 + TaxRate). Default: 0.15.
	TaxRate float64 `yaml:"tax_rate"`

	// CostColumn is the operator-chosen column holding the true unit cost.
	// Must be one of CostColumnCandidates. Changing it re-runs normalization
	// from cached raw records without re-parsing the files.
	CostColumn string `yaml:"cost_column"`

	// CostColumnCandidates is the fixed set of columns the operator may pick
	// from. Resolution tries CostColumn first, then the remaining candidates
	// in order; if no candidate column exists, unit cost is zero.
	CostColumnCandidates []string `yaml:"cost_column_candidates"`

	// Resolution holds the per-dataset field-resolution tables.
	Resolution ResolutionConfig `yaml:"resolution"`

	// Classifier holds the voucher keyword sets.
	Classifier ClassifierConfig `yaml:"classifier"`

	// Identity holds the salesperson canonicalization rules.
	Identity IdentityConfig `yaml:"identity"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// ExportFormat selects the report output: "csv", "xlsx", or "both".
	// Default: "both"
	ExportFormat string `yaml:"export_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// LogLevel controls verbosity: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// MaxConcurrency caps how many export sets are processed in parallel.
	// Each set's run is fully isolated; 1 forces sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps processing remaining export sets after one fails.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`
}

// =============================================================================
// FIELD RESOLUTION TABLES
// =============================================================================

// ResolutionConfig holds the ordered candidate column names for every logical
// field, per dataset. This is the declarative replacement for branching on
// column presence at each use site: the normalizer evaluates each list once
// per dataset and the policy stays auditable in one place.
type ResolutionConfig struct {
	Header HeaderFields `yaml:"header"`
	Items  ItemFields   `yaml:"items"`
	Ledger LedgerFields `yaml:"ledger"`
}

// HeaderFields lists candidate columns for the transaction-header export.
type HeaderFields struct {
	// TransactionID is the join key. Required: its absence is a SchemaError.
	TransactionID []string `yaml:"transaction_id"`

	// DateSerial is the serial day-count date source. Required.
	DateSerial []string `yaml:"date_serial"`

	VoucherLabel  []string `yaml:"voucher_label"`
	Deleted       []string `yaml:"deleted"`
	Salesperson   []string `yaml:"salesperson"`
	CustomerName  []string `yaml:"customer_name"`
	InvoiceNumber []string `yaml:"invoice_number"`
}

// ItemFields lists candidate columns for the line-item export. Revenue uses
// a three-tier fallback decided once per dataset: a tax-exclusive total, then
// a basic stock amount, then a tax-inclusive total divided by (1 + tax rate).
type ItemFields struct {
	// TransactionID is the join key. Required.
	TransactionID []string `yaml:"transaction_id"`

	StockName  []string `yaml:"stock_name"`
	StockCode  []string `yaml:"stock_code"`
	StockGroup []string `yaml:"stock_group"`
	Quantity   []string `yaml:"quantity"`

	RevenueTaxExclusive []string `yaml:"revenue_tax_exclusive"`
	RevenueBasic        []string `yaml:"revenue_basic"`
	RevenueTaxInclusive []string `yaml:"revenue_tax_inclusive"`

	Salesperson []string `yaml:"salesperson"`
}

// LedgerFields lists candidate columns for the optional general-ledger
// export. Ledger rows never join into the unified ledger; they are exposed
// to reporting as account context only.
type LedgerFields struct {
	AccountName []string `yaml:"account_name"`
	DateSerial  []string `yaml:"date_serial"`
	Debit       []string `yaml:"debit"`
	Credit      []string `yaml:"credit"`
}

// =============================================================================
// VOUCHER CLASSIFIER SETTINGS
// =============================================================================

// ClassifierConfig holds the ordered keyword sets for voucher disposition.
// Exclude is evaluated before Include: a label containing both an exclude and
// an include keyword is always ignored, a conservative bias that keeps
// ambiguous documents out of sales totals.
type ClassifierConfig struct {
	// Exclude lists substrings marking non-sale documents (purchases,
	// quotations, supply orders). Matched case-insensitively.
	Exclude []string `yaml:"exclude"`

	// Include lists substrings marking sale documents (cash/credit sales,
	// invoices, returns). Matched case-insensitively. Labels matching
	// neither set are ignored.
	Include []string `yaml:"include"`

	// ReturnPatterns lists substrings identifying returned-goods vouchers,
	// whose monetary values are negated post-merge.
	ReturnPatterns []string `yaml:"return_patterns"`
}

// =============================================================================
// IDENTITY NORMALIZER SETTINGS
// =============================================================================

// IdentityConfig holds the whitelist rules that canonicalize salesperson
// names. Upstream data entry produces several spellings of the same staff;
// the rules are an explicit substring table, deliberately not fuzzy matching,
// since a false merge would corrupt attribution.
type IdentityConfig struct {
	// Unassigned is the sentinel identity for rows with no salesperson on
	// either the item or the header. Default: "Unassigned".
	Unassigned string `yaml:"unassigned"`

	// NullForms are textual values treated the same as an empty name.
	NullForms []string `yaml:"null_forms"`

	// Rules are evaluated in order; the first rule whose every substring
	// occurs in the trimmed name wins. List compound rules (two substrings)
	// before their single-substring components. Names matching no rule pass
	// through trimmed but otherwise unchanged.
	Rules []IdentityRule `yaml:"rules"`
}

// IdentityRule maps names containing all of Contains to a canonical identity.
type IdentityRule struct {
	Contains  []string `yaml:"contains"`
	Canonical string   `yaml:"canonical"`
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Load reads the configuration from a YAML file, applies defaults, and
// validates the result. A missing file is not an error: the defaults alone
// describe the sample exports.
func Load(configPath string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(config)

	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Default returns the built-in configuration matching the sample ERP exports.
func Default() *Config {
	config := &Config{ContinueOnError: true}
	applyDefaults(config)
	return config
}

// applyDefaults fills in every unset option.
func applyDefaults(config *Config) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.HeaderToken == "" {
		config.HeaderToken = "header"
	}
	if config.ItemsToken == "" {
		config.ItemsToken = "items"
	}
	if config.LedgerToken == "" {
		config.LedgerToken = "ledger"
	}
	if config.Encoding == "" {
		config.Encoding = "UTF-8"
	}
	if config.TaxRate == 0 {
		config.TaxRate = 0.15
	}
	if len(config.CostColumnCandidates) == 0 {
		config.CostColumnCandidates = []string{"CostFactor", "AvgCost", "CostPrice"}
	}
	if config.CostColumn == "" {
		config.CostColumn = config.CostColumnCandidates[0]
	}
	if config.ExportFormat == "" {
		config.ExportFormat = "both"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}

	applyResolutionDefaults(&config.Resolution)
	applyClassifierDefaults(&config.Classifier)
	applyIdentityDefaults(&config.Identity)
}

// applyResolutionDefaults sets the candidate columns observed across the
// known export versions. Order matters: earlier candidates win.
func applyResolutionDefaults(r *ResolutionConfig) {
	h := &r.Header
	if len(h.TransactionID) == 0 {
		h.TransactionID = []string{"TransCode", "TransactionCode"}
	}
	if len(h.DateSerial) == 0 {
		h.DateSerial = []string{"TransDateValue", "DateValue"}
	}
	if len(h.VoucherLabel) == 0 {
		h.VoucherLabel = []string{"VoucherName", "VoucherType"}
	}
	if len(h.Deleted) == 0 {
		h.Deleted = []string{"IsDeleted", "Deleted", "Cancelled"}
	}
	if len(h.Salesperson) == 0 {
		h.Salesperson = []string{"SalesMan", "SalesManName"}
	}
	if len(h.CustomerName) == 0 {
		h.CustomerName = []string{"LedgerName", "CustomerName"}
	}
	if len(h.InvoiceNumber) == 0 {
		h.InvoiceNumber = []string{"InvoiceNo", "InvoiceNumber"}
	}

	i := &r.Items
	if len(i.TransactionID) == 0 {
		i.TransactionID = []string{"TransCode", "TransactionCode"}
	}
	if len(i.StockName) == 0 {
		i.StockName = []string{"StockName", "ItemName"}
	}
	if len(i.StockCode) == 0 {
		i.StockCode = []string{"StockCode", "ItemCode"}
	}
	if len(i.StockGroup) == 0 {
		i.StockGroup = []string{"StockGroup", "GroupName"}
	}
	if len(i.Quantity) == 0 {
		i.Quantity = []string{"TotalQty", "Qty"}
	}
	if len(i.RevenueTaxExclusive) == 0 {
		i.RevenueTaxExclusive = []string{"TaxbleAmount", "TaxableAmount"}
	}
	if len(i.RevenueBasic) == 0 {
		i.RevenueBasic = []string{"BasicStockAmount", "StockAmount"}
	}
	if len(i.RevenueTaxInclusive) == 0 {
		i.RevenueTaxInclusive = []string{"netStockAmount", "NetAmount"}
	}
	if len(i.Salesperson) == 0 {
		i.Salesperson = []string{"SalesMan", "SalesManName"}
	}

	l := &r.Ledger
	if len(l.AccountName) == 0 {
		l.AccountName = []string{"LedgerName", "AccountName"}
	}
	if len(l.DateSerial) == 0 {
		l.DateSerial = []string{"TransDateValue", "DateValue"}
	}
	if len(l.Debit) == 0 {
		l.Debit = []string{"Debit", "DebitAmount"}
	}
	if len(l.Credit) == 0 {
		l.Credit = []string{"Credit", "CreditAmount"}
	}
}

// applyClassifierDefaults sets the keyword sets, English and Arabic, seen in
// the sample voucher labels.
func applyClassifierDefaults(c *ClassifierConfig) {
	if len(c.Exclude) == 0 {
		c.Exclude = []string{
			"purchase", "quotation", "order",
			"مشتريات", "شراء", "عرض سعر", "أمر توريد", "طلب",
		}
	}
	if len(c.Include) == 0 {
		c.Include = []string{
			"sale", "cash", "invoice", "credit", "return",
			"بيع", "مبيعات", "نقد", "فاتورة", "آجل", "مرتجع",
		}
	}
	if len(c.ReturnPatterns) == 0 {
		c.ReturnPatterns = []string{"return", "مرتجع"}
	}
}

// applyIdentityDefaults sets the sentinel, null forms, and the whitelist for
// the two known staff members, compound rule first.
func applyIdentityDefaults(i *IdentityConfig) {
	if i.Unassigned == "" {
		i.Unassigned = "Unassigned"
	}
	if len(i.NullForms) == 0 {
		i.NullForms = []string{"null", "none", "nan", "-"}
	}
	if len(i.Rules) == 0 {
		i.Rules = []IdentityRule{
			{Contains: []string{"سعيد", "أحمد"}, Canonical: "سعيد وأحمد"},
			{Contains: []string{"سعيد"}, Canonical: "سعيد"},
			{Contains: []string{"أحمد"}, Canonical: "أحمد"},
		}
	}
}

// =============================================================================
// CONFIGURATION VALIDATION
// =============================================================================

// Validate checks the configuration for contradictions that would otherwise
// surface as silent misbehavior mid-run.
func Validate(config *Config) error {
	if config.TaxRate <= 0 || config.TaxRate >= 1 {
		return fmt.Errorf("tax_rate must be between 0 and 1 exclusive, got %v", config.TaxRate)
	}

	found := false
	for _, candidate := range config.CostColumnCandidates {
		if candidate == config.CostColumn {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("cost_column %q is not among cost_column_candidates %v",
			config.CostColumn, config.CostColumnCandidates)
	}

	switch config.ExportFormat {
	case "csv", "xlsx", "both":
	default:
		return fmt.Errorf("export_format must be csv, xlsx, or both, got %q", config.ExportFormat)
	}

	switch config.Encoding {
	case "UTF-8", "utf-8", "Windows-1256", "windows-1256",
		"Windows-1252", "windows-1252", "ISO-8859-1", "iso-8859-1":
	default:
		return fmt.Errorf("unsupported encoding %q", config.Encoding)
	}

	if len(config.Resolution.Header.TransactionID) == 0 {
		return fmt.Errorf("resolution.header.transaction_id must list at least one candidate column")
	}
	if len(config.Resolution.Header.DateSerial) == 0 {
		return fmt.Errorf("resolution.header.date_serial must list at least one candidate column")
	}
	if len(config.Resolution.Items.TransactionID) == 0 {
		return fmt.Errorf("resolution.items.transaction_id must list at least one candidate column")
	}

	for idx, rule := range config.Identity.Rules {
		if rule.Canonical == "" {
			return fmt.Errorf("identity.rules[%d]: canonical must not be empty", idx)
		}
		if len(rule.Contains) == 0 {
			return fmt.Errorf("identity.rules[%d]: contains must list at least one substring", idx)
		}
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}

	return nil
}

// CostCandidates returns the cost columns in resolution order: the chosen
// column first, then the remaining candidates as documented fallbacks.
func (c *Config) CostCandidates() []string {
	ordered := make([]string, 0, len(c.CostColumnCandidates))
	ordered = append(ordered, c.CostColumn)
	for _, candidate := range c.CostColumnCandidates {
		if candidate != c.CostColumn {
			ordered = append(ordered, candidate)
		}
	}
	return ordered
}
