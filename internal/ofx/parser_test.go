package ofx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing. The deposit is there to prove credits
// are skipped during import.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>POS PURCHASE STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>1500.00
<FITID>2024012501
<NAME>PAYROLL DEPOSIT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseFile_DebitsBecomeExpenses(t *testing.T) {
	parser := NewParser("me")

	expenses, err := parser.ParseFile(strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, expenses, 2, "the payroll credit must be skipped")

	first := expenses[0]
	assert.InDelta(t, 25.50, first.Amount, 0.001)
	assert.Equal(t, "STARBUCKS STORE #1234", first.Description, "POS prefix stripped")
	assert.Equal(t, "me", first.PaidBy)
	assert.Equal(t, 50, first.Split.PayerShare)
	assert.Equal(t, 50, first.Split.PartnerShare)
	assert.Equal(t, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), first.Date.UTC())

	assert.InDelta(t, 125.00, expenses[1].Amount, 0.001)
	assert.Equal(t, "Whole Foods Market", expenses[1].Description)
}

func TestParseFile_DefaultsPayer(t *testing.T) {
	parser := NewParser("")

	expenses, err := parser.ParseFile(strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.NotEmpty(t, expenses)
	assert.Equal(t, "me", expenses[0].PaidBy)
}

func TestParseFile_InvalidContent(t *testing.T) {
	parser := NewParser("me")

	_, err := parser.ParseFile(strings.NewReader("this is not an OFX file"))
	assert.Error(t, err)
}

func TestPreprocessOFX(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "leading whitespace trimmed",
			input: "\n\n  OFXHEADER:100",
			want:  "OFXHEADER:100",
		},
		{
			name:  "mixed case severity uppercased",
			input: "<SEVERITY>Info</SEVERITY>",
			want:  "<SEVERITY>INFO</SEVERITY>",
		},
		{
			name:  "missing closing bracket repaired",
			input: "<STMTTRN",
			want:  "<STMTTRN>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preprocessOFX(tt.input))
		})
	}
}
