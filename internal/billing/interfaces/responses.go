package interfaces

import (
	"sort"
	"time"

	billing "enercom-billing/internal/billing/domain"
)

type monthEntryDTO struct {
	Month                              string  `json:"month"`
	SharedVolume                       float64 `json:"shared_volume"`
	ComplementaryVolume                float64 `json:"complementary_volume"`
	SharedInjection                    float64 `json:"shared_injection"`
	ComplementaryInjection             float64 `json:"complementary_injection"`
	CostShared                         float64 `json:"cost_shared"`
	CostComplementary                  float64 `json:"cost_complementary"`
	RemunerationSharedInjection        float64 `json:"remuneration_shared_injection"`
	RemunerationComplementaryInjection float64 `json:"remuneration_complementary_injection"`
	TotalCosts                         float64 `json:"total_costs"`
	TotalRemunerations                 float64 `json:"total_remunerations"`
	MonthlyBalance                     float64 `json:"monthly_balance"`
}

type ledgerDTO struct {
	ParticipantID    string          `json:"participant_id"`
	Months           []monthEntryDTO `json:"months"`
	NetworkCostTotal float64         `json:"network_cost_total"`
	VATRatePercent   float64         `json:"vat_rate_percent"`
	LastUpdated      time.Time       `json:"last_updated"`
}

func ledgerResponse(ledger *billing.ParticipantLedger) ledgerDTO {
	keys := make([]billing.MonthKey, 0, len(ledger.Months))
	for key := range ledger.Months {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	months := make([]monthEntryDTO, 0, len(keys))
	for _, key := range keys {
		entry := ledger.Months[key]
		months = append(months, monthEntryDTO{
			Month:                              key.String(),
			SharedVolume:                       entry.SharedVolume,
			ComplementaryVolume:                entry.ComplementaryVolume,
			SharedInjection:                    entry.SharedInjection,
			ComplementaryInjection:             entry.ComplementaryInjection,
			CostShared:                         entry.CostShared,
			CostComplementary:                  entry.CostComplementary,
			RemunerationSharedInjection:        entry.RemunerationSharedInjection,
			RemunerationComplementaryInjection: entry.RemunerationComplementaryInjection,
			TotalCosts:                         entry.TotalCosts,
			TotalRemunerations:                 entry.TotalRemunerations,
			MonthlyBalance:                     entry.MonthlyBalance,
		})
	}
	return ledgerDTO{
		ParticipantID:    ledger.ParticipantID,
		Months:           months,
		NetworkCostTotal: ledger.NetworkCosts.Total(),
		VATRatePercent:   ledger.Rates.VATRatePercent,
		LastUpdated:      ledger.LastUpdated,
	}
}

type invoiceDTO struct {
	Number                 string   `json:"number"`
	ParticipantID          string   `json:"participant_id"`
	ParticipantName        string   `json:"participant_name"`
	EAN                    string   `json:"ean"`
	PeriodStart            string   `json:"period_start"`
	PeriodEnd              string   `json:"period_end"`
	Months                 []string `json:"months"`
	SharedVolume           float64  `json:"shared_volume"`
	ComplementaryVolume    float64  `json:"complementary_volume"`
	SharedInjection        float64  `json:"shared_injection"`
	ComplementaryInjection float64  `json:"complementary_injection"`
	TotalCosts             float64  `json:"total_costs"`
	TotalRevenues          float64  `json:"total_revenues"`
	NetworkCostTotal       float64  `json:"network_cost_total"`
	Subtotal               float64  `json:"subtotal"`
	VAT                    float64  `json:"vat"`
	TotalWithVAT           float64  `json:"total_with_vat"`
	IssueDate              string   `json:"issue_date"`
	DueDate                string   `json:"due_date"`
}

func invoiceResponse(invoice *billing.Invoice) invoiceDTO {
	months := make([]string, 0, len(invoice.Months))
	for _, month := range invoice.Months {
		months = append(months, month.String())
	}
	return invoiceDTO{
		Number:                 invoice.Number,
		ParticipantID:          invoice.Participant.ID,
		ParticipantName:        invoice.Participant.Name,
		EAN:                    invoice.Participant.EAN,
		PeriodStart:            invoice.PeriodStart.String(),
		PeriodEnd:              invoice.PeriodEnd.String(),
		Months:                 months,
		SharedVolume:           invoice.SharedVolume,
		ComplementaryVolume:    invoice.ComplementaryVolume,
		SharedInjection:        invoice.SharedInjection,
		ComplementaryInjection: invoice.ComplementaryInjection,
		TotalCosts:             invoice.TotalCosts,
		TotalRevenues:          invoice.TotalRevenues,
		NetworkCostTotal:       invoice.NetworkCostTotal,
		Subtotal:               invoice.Subtotal,
		VAT:                    invoice.VAT,
		TotalWithVAT:           invoice.TotalWithVAT,
		IssueDate:              invoice.IssueDate.Format("2006-01-02"),
		DueDate:                invoice.DueDate.Format("2006-01-02"),
	}
}
