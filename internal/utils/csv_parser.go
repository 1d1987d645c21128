package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/r3troseer/SME-loan-transact/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV        = errors.New("CSV content is empty")
	ErrMissingColumns  = errors.New("missing required columns")
	ErrNoDataRows      = errors.New("CSV file contains no data rows")
	ErrDuplicateLoanID = errors.New("duplicate loan id")
	ErrNonFinite       = errors.New("value is not a finite number")
)

// RequiredColumns defines the columns that must be present in the CSV.
var RequiredColumns = []string{
	"sme_id",
	"current_lender",
	"outstanding_balance",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	"id":          "sme_id",
	"smeid":       "sme_id",
	"company_id":  "sme_id",
	"companyid":   "sme_id",
	"lender":      "current_lender",
	"balance":     "outstanding_balance",
	"outstanding": "outstanding_balance",
	"revenue":     "turnover",
	"sales":       "turnover",
	"employees":   "number_of_employees",
	"headcount":   "number_of_employees",
	"term_years":  "loan_term_years",
	"loan_term":   "loan_term_years",
	"loanid":      "loan_id",
}

// financialColumns binds numeric columns to the company financial fields.
var financialColumns = []struct {
	column string
	field  func(f *models.Financials) **float64
}{
	{"turnover", func(f *models.Financials) **float64 { return &f.Turnover }},
	{"gross_profit", func(f *models.Financials) **float64 { return &f.GrossProfit }},
	{"operating_profit", func(f *models.Financials) **float64 { return &f.OperatingProfit }},
	{"ebitda", func(f *models.Financials) **float64 { return &f.EBITDA }},
	{"profit_after_tax", func(f *models.Financials) **float64 { return &f.ProfitAfterTax }},
	{"total_assets", func(f *models.Financials) **float64 { return &f.TotalAssets }},
	{"total_liabilities", func(f *models.Financials) **float64 { return &f.TotalLiabilities }},
	{"net_assets", func(f *models.Financials) **float64 { return &f.NetAssets }},
	{"cash", func(f *models.Financials) **float64 { return &f.Cash }},
	{"working_capital", func(f *models.Financials) **float64 { return &f.WorkingCapital }},
	{"stock", func(f *models.Financials) **float64 { return &f.Stock }},
	{"total_current_assets", func(f *models.Financials) **float64 { return &f.TotalCurrentAssets }},
	{"total_current_liabilities", func(f *models.Financials) **float64 { return &f.TotalCurrentLiabilities }},
}

// CSVParser parses company and loan datasets.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{columnMapping: make(map[string]int)}
}

// normalizeColumn lower-cases a header and joins its words with underscores.
func normalizeColumn(col string) string {
	normalized := strings.ToLower(strings.TrimSpace(col))
	normalized = strings.NewReplacer("-", " ", "_", " ").Replace(normalized)
	normalized = strings.Join(strings.Fields(normalized), "_")
	if alias, ok := ColumnAliases[normalized]; ok {
		return alias
	}
	return normalized
}

// ParseLoans parses CSV content into loans, one per company row. Row errors are
// collected as "line N: ..." and never abort the other rows.
func (p *CSVParser) ParseLoans(content string) ([]*models.Loan, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}
	return p.Parse(strings.NewReader(content))
}

// Parse reads a dataset from r.
func (p *CSVParser) Parse(r io.Reader) ([]*models.Loan, []error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, []error{ErrEmptyCSV}
	}
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var loans []*models.Loan
	var parseErrors []error
	seen := make(map[string]int)
	lineNum := 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		loan, err := p.parseRow(record)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		if err := models.ValidateLoan(loan); err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		if first, dup := seen[loan.ID]; dup {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w: %s (first seen on line %d)", lineNum, ErrDuplicateLoanID, loan.ID, first))
			continue
		}
		seen[loan.ID] = lineNum

		loans = append(loans, loan)
	}

	if len(loans) == 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return loans, parseErrors
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)
	for i, col := range header {
		normalized := normalizeColumn(col)
		if _, exists := p.columnMapping[normalized]; !exists {
			p.columnMapping[normalized] = i
		}
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

func (p *CSVParser) value(record []string, column string) string {
	idx, ok := p.columnMapping[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// optionalFloat parses a numeric cell. An absent or empty cell is nil.
func (p *CSVParser) optionalFloat(record []string, column string) (*float64, error) {
	raw := p.value(record, column)
	if raw == "" {
		return nil, nil
	}
	f, err := parseFloat(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", column, err)
	}
	return &f, nil
}

func (p *CSVParser) float(record []string, column string) (float64, error) {
	f, err := p.optionalFloat(record, column)
	if err != nil || f == nil {
		return 0, err
	}
	return *f, nil
}

// parseRow parses a single CSV row into a loan and its company.
func (p *CSVParser) parseRow(record []string) (*models.Loan, error) {
	company := &models.Company{
		ID:     p.value(record, "sme_id"),
		Sector: models.NormalizeSector(p.value(record, "sector")),
		Region: models.NormalizeRegion(p.value(record, "region")),
	}

	for _, fc := range financialColumns {
		f, err := p.optionalFloat(record, fc.column)
		if err != nil {
			return nil, err
		}
		*fc.field(&company.Financials) = f
	}

	if raw := p.value(record, "number_of_employees"); raw != "" {
		employees, err := parseInt(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid number_of_employees: %w", err)
		}
		company.Employees = &employees
	}

	loan := &models.Loan{
		ID:            p.value(record, "loan_id"),
		Company:       company,
		CurrentLender: p.value(record, "current_lender"),
	}
	if loan.ID == "" {
		loan.ID = company.ID
	}

	var err error
	if loan.OutstandingBalance, err = p.float(record, "outstanding_balance"); err != nil {
		return nil, err
	}
	if loan.LoanAmount, err = p.float(record, "loan_amount"); err != nil {
		return nil, err
	}
	if loan.InterestRate, err = p.float(record, "interest_rate"); err != nil {
		return nil, err
	}
	if loan.YearsRemaining, err = p.float(record, "years_remaining"); err != nil {
		return nil, err
	}
	if loan.MonthlyPayment, err = p.float(record, "monthly_payment"); err != nil {
		return nil, err
	}
	if raw := p.value(record, "loan_term_years"); raw != "" {
		if loan.TermYears, err = parseInt(raw); err != nil {
			return nil, fmt.Errorf("invalid loan_term_years: %w", err)
		}
	}

	return loan, nil
}

// parseFloat parses a string to float64, handling common formats.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	// Remove commas and currency symbols
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "£")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNonFinite, s)
	}
	return f, nil
}

// parseInt parses a string to int, handling common formats.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	// Handle float strings (e.g., "42.0")
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %q", ErrNonFinite, s)
		}
		return int(f), nil
	}

	return strconv.Atoi(s)
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content string) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalizedColumns[normalizeColumn(col)] = true
		result.Columns = append(result.Columns, col)
	}

	for _, required := range RequiredColumns {
		if !normalizedColumns[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0

	return result, nil
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
