package camt

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const camt053NS = "urn:iso:std:iso:20022:tech:xsd:camt.053.001.02"

func statement(entries ...string) string {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="` + camt053NS + `">
  <BkToCstmrStmt>
    <Stmt>`
	for _, e := range entries {
		doc += e
	}
	return doc + `
    </Stmt>
  </BkToCstmrStmt>
</Document>`
}

func extractString(t *testing.T, xml string) []Transaction {
	t.Helper()
	doc, err := Load([]byte(xml), "test.xml")
	require.NoError(t, err)
	txns, err := Extract(doc)
	require.NoError(t, err)
	return txns
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "amount = %s, want %s", got, want)
}

func TestExtract_CreditEntry(t *testing.T) {
	txns := extractString(t, statement(`
      <Ntry>
        <Amt Ccy="EUR">100.00</Amt>
        <CdtDbtInd>CRDT</CdtDbtInd>
        <BookgDt>
          <Dt>2023-12-01</Dt>
        </BookgDt>
        <NtryDtls>
          <TxDtls>
            <Refs>
              <InstrId>WRONG_REF</InstrId>
              <AcctSvcrRef>CORRECT_REF_123</AcctSvcrRef>
            </Refs>
            <RmtInf>
              <Ustrd>Payment for services</Ustrd>
            </RmtInf>
          </TxDtls>
        </NtryDtls>
      </Ntry>`))

	require.Len(t, txns, 1)
	tx := txns[0]
	requireAmount(t, "100.00", tx.Amount)
	assert.Equal(t, civil.Date{Year: 2023, Month: 12, Day: 1}, tx.Date)
	assert.Equal(t, "CORRECT_REF_123", tx.Reference)
	assert.Equal(t, "Payment for services", tx.OriginalLabel)
	assert.Empty(t, tx.HarmonizedLabel)
	assert.True(t, tx.HasKnownDate())
}

func TestExtract_DebitEntryIsNegated(t *testing.T) {
	txns := extractString(t, statement(`
      <Ntry>
        <Amt Ccy="EUR">50.50</Amt>
        <CdtDbtInd>DBIT</CdtDbtInd>
        <BookgDt><Dt>2023-01-01</Dt></BookgDt>
        <NtryDtls><TxDtls><RmtInf><Ustrd>Debit Test</Ustrd></RmtInf></TxDtls></NtryDtls>
      </Ntry>`))

	require.Len(t, txns, 1)
	requireAmount(t, "-50.50", txns[0].Amount)
}

func TestExtract_IndicatorSign(t *testing.T) {
	tests := []struct {
		name      string
		indicator string
		want      string
	}{
		{name: "credit", indicator: "<CdtDbtInd>CRDT</CdtDbtInd>", want: "12.34"},
		{name: "debit", indicator: "<CdtDbtInd>DBIT</CdtDbtInd>", want: "-12.34"},
		{name: "unknown value keeps sign", indicator: "<CdtDbtInd>XXXX</CdtDbtInd>", want: "12.34"},
		{name: "lowercase is not a debit", indicator: "<CdtDbtInd>dbit</CdtDbtInd>", want: "12.34"},
		{name: "absent keeps sign", indicator: "", want: "12.34"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns := extractString(t, statement(`<Ntry><Amt Ccy="EUR">12.34</Amt>`+tt.indicator+`</Ntry>`))
			require.Len(t, txns, 1)
			requireAmount(t, tt.want, txns[0].Amount)
		})
	}
}

func TestExtract_EntriesWithoutAmountAreDropped(t *testing.T) {
	txns := extractString(t, statement(
		`<Ntry><Amt Ccy="EUR">1.00</Amt><AddtlNtryInf>first</AddtlNtryInf></Ntry>`,
		`<Ntry><CdtDbtInd>DBIT</CdtDbtInd><AddtlNtryInf>no amount</AddtlNtryInf></Ntry>`,
		`<Ntry><Amt Ccy="EUR">3.00</Amt><AddtlNtryInf>third</AddtlNtryInf></Ntry>`,
	))

	require.Len(t, txns, 2)
	assert.Equal(t, "first", txns[0].OriginalLabel)
	assert.Equal(t, "third", txns[1].OriginalLabel)
}

func TestExtract_LabelFallbackOrder(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		want  string
	}{
		{
			name: "remittance text wins over everything",
			entry: `<Ntry><Amt>1</Amt><AddtlNtryInf>entry info</AddtlNtryInf>
				<NtryDtls><TxDtls><RmtInf><Ustrd>remittance</Ustrd></RmtInf><AddtlTxInf>tx info</AddtlTxInf></TxDtls></NtryDtls></Ntry>`,
			want: "remittance",
		},
		{
			name: "additional transaction info second",
			entry: `<Ntry><Amt>1</Amt><AddtlNtryInf>entry info</AddtlNtryInf>
				<NtryDtls><TxDtls><AddtlTxInf>tx info</AddtlTxInf></TxDtls></NtryDtls></Ntry>`,
			want: "tx info",
		},
		{
			name: "empty remittance text falls through",
			entry: `<Ntry><Amt>1</Amt>
				<NtryDtls><TxDtls><RmtInf><Ustrd>  </Ustrd></RmtInf><AddtlTxInf>tx info</AddtlTxInf></TxDtls></NtryDtls></Ntry>`,
			want: "tx info",
		},
		{
			name:  "additional entry info third",
			entry: `<Ntry><Amt>1</Amt><AddtlNtryInf>entry info</AddtlNtryInf></Ntry>`,
			want:  "entry info",
		},
		{
			name:  "default label",
			entry: `<Ntry><Amt>1</Amt><NtryDtls><TxDtls/></NtryDtls></Ntry>`,
			want:  DefaultLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns := extractString(t, statement(tt.entry))
			require.Len(t, txns, 1)
			assert.Equal(t, tt.want, txns[0].OriginalLabel)
		})
	}
}

func TestExtract_ReferenceFallback(t *testing.T) {
	tests := []struct {
		name string
		refs string
		want string
	}{
		{name: "servicer reference preferred", refs: `<Refs><AcctSvcrRef>SVC</AcctSvcrRef><InstrId>INSTR</InstrId></Refs>`, want: "SVC"},
		{name: "instruction id fallback", refs: `<Refs><InstrId>INSTR</InstrId></Refs>`, want: "INSTR"},
		{name: "empty servicer reference", refs: `<Refs><AcctSvcrRef></AcctSvcrRef><InstrId>INSTR</InstrId></Refs>`, want: "INSTR"},
		{name: "no references", refs: ``, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns := extractString(t, statement(`<Ntry><Amt>1</Amt><NtryDtls><TxDtls>`+tt.refs+`</TxDtls></NtryDtls></Ntry>`))
			require.Len(t, txns, 1)
			assert.Equal(t, tt.want, txns[0].Reference)
		})
	}
}

func TestExtract_OnlyFirstTransactionDetailsIsRead(t *testing.T) {
	txns := extractString(t, statement(`
      <Ntry>
        <Amt>9.99</Amt>
        <NtryDtls>
          <TxDtls><Refs><AcctSvcrRef>FIRST</AcctSvcrRef></Refs><RmtInf><Ustrd>first label</Ustrd></RmtInf></TxDtls>
          <TxDtls><Refs><AcctSvcrRef>SECOND</AcctSvcrRef></Refs><RmtInf><Ustrd>second label</Ustrd></RmtInf></TxDtls>
        </NtryDtls>
        <NtryDtls>
          <TxDtls><RmtInf><Ustrd>third label</Ustrd></RmtInf></TxDtls>
        </NtryDtls>
      </Ntry>`))

	require.Len(t, txns, 1)
	assert.Equal(t, "FIRST", txns[0].Reference)
	assert.Equal(t, "first label", txns[0].OriginalLabel)
}

func TestExtract_BookingDate(t *testing.T) {
	tests := []struct {
		name    string
		booking string
		want    civil.Date
	}{
		{name: "date", booking: `<BookgDt><Dt>2024-02-29</Dt></BookgDt>`, want: civil.Date{Year: 2024, Month: 2, Day: 29}},
		{name: "date time", booking: `<BookgDt><DtTm>2024-03-05T23:10:00+01:00</DtTm></BookgDt>`, want: civil.Date{Year: 2024, Month: 3, Day: 5}},
		{name: "date time without offset", booking: `<BookgDt><DtTm>2024-03-06T08:00:00</DtTm></BookgDt>`, want: civil.Date{Year: 2024, Month: 3, Day: 6}},
		{name: "missing", booking: ``, want: UnknownDate},
		{name: "empty booking block", booking: `<BookgDt/>`, want: UnknownDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns := extractString(t, statement(`<Ntry><Amt>1</Amt>`+tt.booking+`</Ntry>`))
			require.Len(t, txns, 1)
			assert.Equal(t, tt.want, txns[0].Date)
		})
	}
}

func TestExtract_MalformedAmountFailsDocument(t *testing.T) {
	doc, err := Load([]byte(statement(
		`<Ntry><Amt>1.00</Amt></Ntry>`,
		`<Ntry><Amt>1,000.00</Amt></Ntry>`,
	)), "bad.xml")
	require.NoError(t, err)

	txns, err := Extract(doc)
	require.Error(t, err)
	assert.Nil(t, txns)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, 2, extractionErr.Entry)
	assert.Equal(t, "Amt", extractionErr.Field)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestExtract_MalformedDateFailsDocument(t *testing.T) {
	doc, err := Load([]byte(statement(`<Ntry><Amt>1.00</Amt><BookgDt><Dt>01/12/2023</Dt></BookgDt></Ntry>`)), "bad.xml")
	require.NoError(t, err)

	_, err = Extract(doc)
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "BookgDt", extractionErr.Field)
}

func TestExtract_NoEntries(t *testing.T) {
	txns := extractString(t, statement())
	require.NotNil(t, txns)
	assert.Empty(t, txns)
}

func TestExtract_MultipleStatements(t *testing.T) {
	txns := extractString(t, `<Document xmlns="`+camt053NS+`"><BkToCstmrStmt>
		<Stmt><Ntry><Amt>1</Amt><AddtlNtryInf>a</AddtlNtryInf></Ntry></Stmt>
		<Stmt><Ntry><Amt>2</Amt><AddtlNtryInf>b</AddtlNtryInf></Ntry><Ntry><Amt>3</Amt><AddtlNtryInf>c</AddtlNtryInf></Ntry></Stmt>
	</BkToCstmrStmt></Document>`)

	require.Len(t, txns, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{txns[0].OriginalLabel, txns[1].OriginalLabel, txns[2].OriginalLabel})
}

func TestExtract_DocumentWithoutNamespace(t *testing.T) {
	txns := extractString(t, `<Document><BkToCstmrStmt><Stmt><Ntry><Amt>7</Amt></Ntry></Stmt></BkToCstmrStmt></Document>`)
	require.Len(t, txns, 1)
	requireAmount(t, "7", txns[0].Amount)
}

func TestExtract_PrefixedNamespace(t *testing.T) {
	txns := extractString(t, `<c:Document xmlns:c="`+camt053NS+`"><c:BkToCstmrStmt><c:Stmt>
		<c:Ntry><c:Amt Ccy="EUR">4.20</c:Amt><c:CdtDbtInd>DBIT</c:CdtDbtInd></c:Ntry>
	</c:Stmt></c:BkToCstmrStmt></c:Document>`)
	require.Len(t, txns, 1)
	requireAmount(t, "-4.20", txns[0].Amount)
}

func TestExtract_ForeignNamespaceIgnored(t *testing.T) {
	txns := extractString(t, `<Document xmlns="`+camt053NS+`" xmlns:x="urn:other"><BkToCstmrStmt><Stmt>
		<x:Ntry><x:Amt>1</x:Amt></x:Ntry>
		<Ntry><Amt>2</Amt></Ntry>
	</Stmt></BkToCstmrStmt></Document>`)
	require.Len(t, txns, 1)
	requireAmount(t, "2", txns[0].Amount)
}

func TestExtract_NilDocument(t *testing.T) {
	txns, err := Extract(nil)
	require.NoError(t, err)
	assert.Empty(t, txns)
}
