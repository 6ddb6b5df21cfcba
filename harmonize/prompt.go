package harmonize

import (
	"encoding/json"
	"strings"
)

// requestItem is one correlated entry of a batch request. ID is the position of the
// transaction inside its batch, not a global index.
type requestItem struct {
	ID     int         `json:"id"`
	Label  string      `json:"label"`
	Amount json.Number `json:"amount"`
}

// resultItem is one entry of the service answer.
type resultItem struct {
	ID              int    `json:"id"`
	HarmonizedLabel string `json:"harmonizedLabel"`
}

// buildPrompt renders the fixed rewriting instruction followed by the batch, which is
// always the last line of the prompt.
func buildPrompt(items []requestItem) (string, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return "", err
	}

	var prompt strings.Builder
	prompt.WriteString("Act as a banking expert. Your task is to standardize bank transaction labels.\n\n")
	prompt.WriteString("You receive a JSON array of transactions, each with an \"id\", a raw \"label\" and an \"amount\" in euros.\n\n")
	prompt.WriteString("Rules:\n")
	prompt.WriteString("1. Make each label more readable and clear.\n")
	prompt.WriteString("2. Keep the essential transaction information and merchant or company names.\n")
	prompt.WriteString("3. Standardize common banking terms ('VIR SEPA' becomes 'Virement', 'PRLV SEPA' becomes 'Prélèvement', 'CARTE' becomes 'Paiement carte', 'CB' becomes 'Carte bancaire').\n")
	prompt.WriteString("4. Write dates the French way ('12/04' becomes '12 avril').\n")
	prompt.WriteString("5. Capitalize the first letter, rest in lowercase.\n")
	prompt.WriteString("6. Remove unnecessary technical codes.\n")
	prompt.WriteString("For example 'PRLV SEPA MUTUELSANTE 552142259' becomes 'Prélèvement mutuelle santé - mensuel'.\n\n")
	prompt.WriteString("Output contract:\n")
	prompt.WriteString("Respond ONLY with a JSON array containing exactly one object per input transaction, ")
	prompt.WriteString("each object having the fields \"id\" (the input id, unchanged) and \"harmonizedLabel\" (string).\n")
	prompt.WriteString("Do not wrap the response in code fences, do not add any explanation or commentary.\n\n")
	prompt.WriteString("Transactions:\n")
	prompt.Write(payload)
	return prompt.String(), nil
}
