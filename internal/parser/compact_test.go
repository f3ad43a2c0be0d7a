package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finextract/internal/domain"
	"finextract/internal/parser"
)

func TestDecodeCompactResult_ExpandsFields(t *testing.T) {
	text := "```json\n" + `{
		"f": [{"dt": "12/01/2024", "id": "FA-001", "r": 1234.5, "c": 100, "v": 20, "n": 1114.5}],
		"t": [
			{"d": "15/02/2024", "l": "VIREMENT CLIENT", "db": 500, "cr": null},
			{"d": "16/02/2024", "l": "REMISE CARTE", "db": 0, "cr": 75.25}
		]
	}` + "\n```"

	res, err := parser.DecodeCompactResult(text)

	require.NoError(t, err)
	require.Len(t, res.Batches, 1)
	assert.Equal(t, domain.InvoiceBatch{
		Date:                   "12/01/2024",
		FactureNumber:          "FA-001",
		TotalRemiseDH:          1234.5,
		TotalCommissionsHT:     100,
		TotalTVASurCommissions: 20,
		SoldeNetRemise:         1114.5,
	}, res.Batches[0])

	require.Len(t, res.Transactions, 2)
	assert.Equal(t, 500.0, *res.Transactions[0].Debit)
	assert.Nil(t, res.Transactions[0].Credit)
	assert.Nil(t, res.Transactions[1].Debit)
	assert.Equal(t, 75.25, *res.Transactions[1].Credit)
	assert.Nil(t, res.Transactions[1].Solde)

	assert.Equal(t, 1234.5, res.Summary.TotalRemiseDH)
	assert.Equal(t, 0.0, res.Summary.SoldeGlobal)
	assert.Equal(t, domain.Currency, res.Currency)
}

func TestDecodeCompactResult_MissingValuesDefault(t *testing.T) {
	res, err := parser.DecodeCompactResult(`{"f": [{"r": 10}], "t": [{"l": "FRAIS"}]}`)

	require.NoError(t, err)
	require.Len(t, res.Batches, 1)
	assert.Equal(t, "", res.Batches[0].Date)
	assert.Equal(t, "", res.Batches[0].FactureNumber)
	assert.Equal(t, 0.0, res.Batches[0].SoldeNetRemise)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "", res.Transactions[0].Date)
	assert.Nil(t, res.Transactions[0].Debit)
	assert.Nil(t, res.Transactions[0].Credit)
}

func TestDecodeCompactResult_EmptyObject(t *testing.T) {
	res, err := parser.DecodeCompactResult(`{}`)

	require.NoError(t, err)
	assert.NotNil(t, res.Batches)
	assert.NotNil(t, res.Transactions)
	assert.Empty(t, res.Batches)
}

func TestDecodeCompactResult_InvalidJSON(t *testing.T) {
	_, err := parser.DecodeCompactResult("Je ne peux pas lire ce document.")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing LLM JSON output")
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"f":[]}`, parser.StripCodeFences("```json\n{\"f\":[]}\n```"))
	assert.Equal(t, `{"f":[]}`, parser.StripCodeFences("  {\"f\":[]} "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", parser.Truncate("abc", 5))
	assert.Equal(t, "ab...", parser.Truncate("abcdef", 2))
}

func TestResponseSchema_RequiresBothLists(t *testing.T) {
	schema := parser.ResponseSchema()

	assert.Equal(t, []string{"f", "t"}, schema["required"])
	props := schema["properties"].(map[string]interface{})
	assert.Contains(t, props, "f")
	assert.Contains(t, props, "t")
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := parser.BuildExtractionPrompt()

	assert.Contains(t, prompt, parser.SystemInstruction)
	assert.Contains(t, prompt, `"db"`)
	assert.Contains(t, prompt, parser.UserInstruction)
}
