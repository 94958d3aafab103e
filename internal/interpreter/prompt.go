package interpreter

import (
	"fmt"
	"strings"
)

const responseContract = `Respond with a single JSON object and nothing else:
{
  "action": "ADD" | "UPDATE" | "QUERY" | "UNKNOWN",
  "parameters": { ... },
  "reasoning": "one short sentence",
  "answer": "text, only for QUERY"
}

ADD parameters: {"name": string, "quantity": positive integer, "price": number (unit price; use the current price when the user gives none), "category": string, "credit": boolean, "supplier": string (required when credit is true)}
UPDATE parameters: {"name": string, "field": one of opening_stock, added_today, packed, lost, alert_level, price, category, color, "value": string or number}
QUERY: answer the question from the stock list in "answer"; parameters may be {}.
UNKNOWN: anything else; parameters may be {}.
Use the existing item name when the user refers to a known item.`

func buildPrompt(command string, snap Snapshot) string {
	var b strings.Builder
	b.WriteString("You convert stock room instructions into structured actions.\n\n")
	b.WriteString(responseContract)
	b.WriteString("\n\nCurrent stock (name | category | remaining | unit price):\n")
	if len(snap.Items) == 0 {
		b.WriteString("(no items yet)\n")
	}
	for _, it := range snap.Items {
		fmt.Fprintf(&b, "- %s | %s | %d | %s\n", it.Name, it.Category, it.Remaining(), it.Price.StringFixed(2))
	}
	b.WriteString("\nKnown suppliers:\n")
	if len(snap.Suppliers) == 0 {
		b.WriteString("(none)\n")
	}
	for _, s := range snap.Suppliers {
		fmt.Fprintf(&b, "- %s\n", s.Name)
	}
	fmt.Fprintf(&b, "\nInstruction: %s\n", command)
	return b.String()
}
