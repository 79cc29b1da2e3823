package billing

// LedgerSnapshot is a point-in-time, normalized read of the external
// accounting system's state for one account. The absolute value of TotalDue
// is the single source of truth for the amount payable now; the breakdown
// fields are explanatory and may not sum to it.
type LedgerSnapshot struct {
	TotalDue             float64
	PaidThisPeriod       float64
	OpeningDebt          float64
	OpeningDebtBreakdown []DebtEntry
	CurrentCharges       []ChargeEntry
}

// DebtEntry is one per-service line of the opening-debt breakdown.
type DebtEntry struct {
	Service string
	Amount  float64
}

// ChargeEntry is one current-period charge line.
type ChargeEntry struct {
	Service       string
	Volume        float64
	UnitPrice     float64
	Exemption     float64
	Recalculation float64
	TotalCharge   float64
	Unit          string
}

// The external system is inconsistent about key casing and occasionally about
// key names. Each canonical field maps to an ordered list of acceptable source
// keys; the first present key wins.
var (
	keysTotalDue      = fieldKeys{"totalDue", "TotalDue"}
	keysPaid          = fieldKeys{"paid", "Paid"}
	keysOpeningDebt   = fieldKeys{"debt", "Debt"}
	keysDebtDetail    = fieldKeys{"debtDetail", "DebtDetail"}
	keysCharges       = fieldKeys{"charges", "Charges"}
	keysService       = fieldKeys{"service", "Service"}
	keysDuty          = fieldKeys{"duty", "Duty"}
	keysVolume        = fieldKeys{"volume", "Volume"}
	keysTariffPrice   = fieldKeys{"tariffPrice", "TariffPrice"}
	keysExemption     = fieldKeys{"exemption", "Exemption"}
	keysRecalculation = fieldKeys{"recalculation", "Recalculation"}
	keysCharge        = fieldKeys{"charge", "Charge", "chargeFull", "ChargeFull"}
	keysUnit          = fieldKeys{"unit", "Unit"}
)

type fieldKeys []string

func (k fieldKeys) resolve(doc map[string]any) (any, bool) {
	for _, key := range k {
		if value, ok := doc[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

func (k fieldKeys) amount(doc map[string]any, parser AmountParser) float64 {
	value, ok := k.resolve(doc)
	if !ok {
		return 0
	}
	return parser.Parse(value)
}

func (k fieldKeys) text(doc map[string]any) string {
	value, ok := k.resolve(doc)
	if !ok {
		return ""
	}
	text, _ := value.(string)
	return text
}

func (k fieldKeys) list(doc map[string]any) []map[string]any {
	value, ok := k.resolve(doc)
	if !ok {
		return nil
	}
	raw, ok := value.([]any)
	if !ok {
		return nil
	}
	result := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		result = append(result, entry)
	}
	return result
}

// SnapshotFromDocument builds a LedgerSnapshot from one raw external response.
// Absent fields default to zero or empty, never to an error; monetary fields
// go through the parser. Cross-field consistency is the reconciler's concern.
func SnapshotFromDocument(doc map[string]any, parser AmountParser) LedgerSnapshot {
	if doc == nil {
		return LedgerSnapshot{}
	}

	snapshot := LedgerSnapshot{
		TotalDue:       keysTotalDue.amount(doc, parser),
		PaidThisPeriod: keysPaid.amount(doc, parser),
		OpeningDebt:    keysOpeningDebt.amount(doc, parser),
	}

	for _, entry := range keysDebtDetail.list(doc) {
		snapshot.OpeningDebtBreakdown = append(snapshot.OpeningDebtBreakdown, DebtEntry{
			Service: keysService.text(entry),
			Amount:  keysDuty.amount(entry, parser),
		})
	}

	for _, entry := range keysCharges.list(doc) {
		snapshot.CurrentCharges = append(snapshot.CurrentCharges, ChargeEntry{
			Service:       keysService.text(entry),
			Volume:        keysVolume.amount(entry, parser),
			UnitPrice:     keysTariffPrice.amount(entry, parser),
			Exemption:     keysExemption.amount(entry, parser),
			Recalculation: keysRecalculation.amount(entry, parser),
			TotalCharge:   keysCharge.amount(entry, parser),
			Unit:          keysUnit.text(entry),
		})
	}

	return snapshot
}
