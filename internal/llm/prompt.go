package llm

import (
	"strings"
)

const responseShape = `{
    "summary": "Brief summary of what the contract is about",
    "client_name": "Name of the client/customer",
    "contract_type": "Type of contract or service agreement",
    "start_date": "Contract start date if mentioned",
    "end_date": "Contract end/termination date if mentioned",
    "key_dates": [
        {"label": "What the date refers to (e.g., Notice deadline, Renewal, Payment due)", "date": "The date as written"}
    ],
    "products_services": [
        {
            "name": "Product or service name",
            "description": "Description of the product/service",
            "quantity": "Quantity if specified",
            "unit": "Unit of measurement if applicable",
            "rate": "Rate or price if mentioned"
        }
    ],
    "key_clauses": [
        {
            "type": "Clause type (e.g., Termination, Confidentiality, Payment, Liability)",
            "description": "Brief description of the clause",
            "quote": "Direct quote from the contract text"
        }
    ],
    "risk_areas": [
        {
            "concern": "Description of the risky or unusual aspect",
            "quote": "Direct quote from the contract text"
        }
    ]
}`

// BuildSystemPrompt returns the fixed instruction message.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a legal assistant. Analyze the contract you are given and return ONLY a JSON object.",
		"Quotes must be copied verbatim from the contract text.",
		"Keep dates as written in the contract.",
		"Never output null. If a field is not present, omit it; use empty arrays for lists with no entries.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt embeds the contract text into the fixed analysis template.
func BuildUserPrompt(req AnalyzeRequest) string {
	var b strings.Builder
	b.WriteString("Analyze the following contract and provide information in a structured JSON format.\n\n")
	b.WriteString("Return a JSON object with the following structure:\n")
	b.WriteString(responseShape)
	b.WriteString("\n\n")
	if name := strings.TrimSpace(req.FileName); name != "" {
		b.WriteString("File name: ")
		b.WriteString(name)
		b.WriteString("\n\n")
	}
	b.WriteString("Contract Text:\n")
	b.WriteString(strings.TrimSpace(req.Text))
	return b.String()
}
