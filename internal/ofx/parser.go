// Package ofx converts bank OFX/QFX statement files into shared expenses.
package ofx

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/miguelangat/dividela2-sub008/internal/model"
)

// Parser reads OFX/QFX statements and converts their debits into expenses.
// Credits (deposits, refunds) are skipped: only money spent is shareable.
type Parser struct {
	paidBy string
}

// NewParser creates a parser that attributes imported expenses to paidBy.
func NewParser(paidBy string) *Parser {
	if paidBy == "" {
		paidBy = "me"
	}
	return &Parser{paidBy: paidBy}
}

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in real-world OFX files:
// leading whitespace before the header, mixed-case SEVERITY values, and
// SGML-style tags missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	content = openTagRe.ReplaceAllString(content, "$1>")
	return content
}

// ParseFile parses an OFX/QFX file and returns the debits as expenses
// with the default even split applied.
func (p *Parser) ParseFile(reader io.Reader) ([]model.Expense, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var expenses []model.Expense
	var skippedCredits int

	collect := func(list *ofxgo.TransactionList) {
		if list == nil {
			return
		}
		for _, ofxTx := range list.Transactions {
			expense, ok := p.convertTransaction(ofxTx)
			if !ok {
				skippedCredits++
				continue
			}
			expenses = append(expenses, expense)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			collect(stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			collect(stmt.BankTranList)
		}
	}

	slog.Info("Parsed OFX file",
		"expenses", len(expenses),
		"skipped_credits", skippedCredits)

	return expenses, nil
}

// convertTransaction maps one OFX transaction onto an expense. The second
// return value is false for credits, which are not importable.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) (model.Expense, bool) {
	// OFX uses negative amounts for debits.
	amount, _ := ofxTx.TrnAmt.Float64()
	if amount >= 0 {
		return model.Expense{}, false
	}

	return model.Expense{
		Amount:      -amount,
		Description: cleanDescription(ofxTx),
		Date:        ofxTx.DtPosted.Time,
		PaidBy:      p.paidBy,
		Split:       model.DefaultSplit(),
	}, true
}

// cleanDescription extracts a readable merchant description from OFX data.
func cleanDescription(tx ofxgo.Transaction) string {
	// PAYEE carries the cleanest merchant name when present.
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Strip leading "MM/DD " date fragments some banks prepend.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic to keep.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
