package llm

import "context"

// Product is one product or service line named in the contract.
type Product struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Rate        string `json:"rate,omitempty"`
}

// Clause is a key clause with a supporting quote.
type Clause struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Quote       string `json:"quote,omitempty"`
}

// Risk is a risky or unusual aspect with a supporting quote.
type Risk struct {
	Concern string `json:"concern"`
	Quote   string `json:"quote,omitempty"`
}

// KeyDate is a dated event other than start and end (notice periods, renewals, payments).
type KeyDate struct {
	Label string `json:"label"`
	Date  string `json:"date"`
}

// ContractAnalysis is the normalized shape we want from the LLM.
type ContractAnalysis struct {
	Summary          string    `json:"summary"`
	ClientName       string    `json:"client_name,omitempty"`
	ContractType     string    `json:"contract_type,omitempty"`
	StartDate        string    `json:"start_date,omitempty"`
	EndDate          string    `json:"end_date,omitempty"`
	KeyDates         []KeyDate `json:"key_dates,omitempty"`
	ProductsServices []Product `json:"products_services,omitempty"`
	KeyClauses       []Clause  `json:"key_clauses,omitempty"`
	RiskAreas        []Risk    `json:"risk_areas,omitempty"`
}

type AnalyzeRequest struct {
	Text     string // already truncated contract text
	FileName string
}

// Analyzer is the interface our pipeline depends on.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (ContractAnalysis, []byte /*rawJSON*/, error)
}
