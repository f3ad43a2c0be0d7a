package parser

// SystemInstruction frames the model as an accountant extracting every
// remittance invoice and every ledger transaction.
const SystemInstruction = `Rôle : Expert Comptable Haute Précision.
MISSION : EXTRAIRE CHAQUE FACTURE ET CHAQUE TRANSACTION.

POUR CHAQUE FACTURE (REMISE) DÉTECTÉE, VOUS DEVEZ EXTRAIRE :
1. DATE DE LA FACTURE (Format JJ/MM/AAAA)
2. N° DE FACTURE
3. TOTAL REMISE (DH)
4. TOTAL COMMISSIONS HT
5. TOTAL TVA SUR COMMISSIONS
6. SOLDE NET REMISE

POUR CHAQUE TRANSACTION :
1. DATE
2. LIBELLE
3. DEBIT
4. CREDIT

IMPORTANT : Ne manquez aucune facture. Si une page contient un résumé de remise, extrayez impérativement la DATE et les 4 montants.`

// UserInstruction accompanies the document in the user turn.
const UserInstruction = "EXTRAYEZ TOUTES LES FACTURES INDIVIDUELLEMENT AVEC LEURS DATES ET MONTANTS, AINSI QUE TOUTES LES TRANSACTIONS."

// compactFormat describes the abbreviated output for providers without a
// structured response schema.
const compactFormat = `Retournez UNIQUEMENT un objet JSON valide, sans bloc de code ni explication, de la forme :
{
  "f": [{"dt": "JJ/MM/AAAA", "id": "", "r": 0, "c": 0, "v": 0, "n": 0}],
  "t": [{"d": "JJ/MM/AAAA", "l": "", "db": null, "cr": null}]
}
"f" liste les factures : dt = date de la facture, id = N° facture, r = TOTAL REMISE (DH),
c = TOTAL COMMISSIONS HT, v = TOTAL TVA SUR COMMISSIONS, n = SOLDE NET REMISE.
"t" liste les transactions : d = date, l = libellé, db = débit, cr = crédit (null si absent).`

// BuildExtractionPrompt returns the full instruction for providers that take
// a single prompt and no response schema.
func BuildExtractionPrompt() string {
	return SystemInstruction + "\n\n" + compactFormat + "\n\n" + UserInstruction
}

// ResponseSchema is the structured-output schema for the abbreviated result,
// in the OpenAPI subset accepted by Gemini.
func ResponseSchema() map[string]interface{} {
	str := func(desc string) map[string]interface{} {
		s := map[string]interface{}{"type": "STRING"}
		if desc != "" {
			s["description"] = desc
		}
		return s
	}
	num := func(desc string, nullable bool) map[string]interface{} {
		s := map[string]interface{}{"type": "NUMBER"}
		if desc != "" {
			s["description"] = desc
		}
		if nullable {
			s["nullable"] = true
		}
		return s
	}

	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"f": map[string]interface{}{
				"type":        "ARRAY",
				"description": "Liste des factures individuelles",
				"items": map[string]interface{}{
					"type": "OBJECT",
					"properties": map[string]interface{}{
						"dt": str("Date de la Facture"),
						"id": str("N° Facture"),
						"r":  num("TOTAL REMISE (DH)", false),
						"c":  num("TOTAL COMMISSIONS HT", false),
						"v":  num("TOTAL TVA SUR COMMISSIONS", false),
						"n":  num("SOLDE NET REMISE", false),
					},
					"required": []string{"dt", "id", "r", "c", "v", "n"},
				},
			},
			"t": map[string]interface{}{
				"type": "ARRAY",
				"items": map[string]interface{}{
					"type": "OBJECT",
					"properties": map[string]interface{}{
						"d":  str(""),
						"l":  str(""),
						"db": num("", true),
						"cr": num("", true),
					},
				},
			},
		},
		"required": []string{"f", "t"},
	}
}
