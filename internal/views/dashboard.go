// views/dashboard.go - Derived state for the client dashboard
package views

import (
	"time"

	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/querycache"
)

// Badge is a label with its colour classes
type Badge struct {
	Label string
	Class string
}

var projectBadges = map[models.ProjectStatus]Badge{
	models.ProjectWaiting:    {"Čekanje", "bg-yellow-500/10 text-yellow-600"},
	models.ProjectInProgress: {"U toku", "bg-blue-500/10 text-blue-600"},
	models.ProjectCompleted:  {"Završeno", "bg-green-500/10 text-green-600"},
	models.ProjectCancelled:  {"Otkazano", "bg-red-500/10 text-red-600"},
}

var invoiceBadges = map[models.InvoiceStatus]Badge{
	models.InvoicePending:   {"Na čekanju", "bg-yellow-500/10 text-yellow-600"},
	models.InvoicePaid:      {"Plaćeno", "bg-green-500/10 text-green-600"},
	models.InvoiceOverdue:   {"Prekoračeno", "bg-red-500/10 text-red-600"},
	models.InvoiceCancelled: {"Otkazano", "bg-gray-500/10 text-gray-600"},
}

var contractLabels = map[models.ContractType]string{
	models.ContractMixMaster:         "Mix & Master",
	models.ContractCopyrightTransfer: "Prenos autorskih prava",
	models.ContractInstrumentalSale:  "Prodaja instrumentala",
}

// ProjectBadge falls back to the raw status for values the portal does not know
func ProjectBadge(s models.ProjectStatus) Badge {
	if b, ok := projectBadges[s]; ok {
		return b
	}
	return Badge{Label: string(s), Class: "bg-muted"}
}

func InvoiceBadge(s models.InvoiceStatus) Badge {
	if b, ok := invoiceBadges[s]; ok {
		return b
	}
	return Badge{Label: string(s), Class: "bg-muted"}
}

func ContractLabel(t models.ContractType) string {
	if l, ok := contractLabels[t]; ok {
		return l
	}
	return string(t)
}

// EffectiveStatus is overdue for a pending invoice whose due date has passed
func EffectiveStatus(inv models.Invoice, now time.Time) models.InvoiceStatus {
	if inv.Status == models.InvoicePending && inv.DueDate.Before(now) {
		return models.InvoiceOverdue
	}
	return inv.Status
}

type ProjectRow struct {
	models.Project
	Badge      Badge
	UploadedOn string
}

type ContractRow struct {
	models.Contract
	TypeLabel string
	CreatedOn string
	PDFURL    string
}

type InvoiceRow struct {
	models.Invoice
	Effective models.InvoiceStatus
	Overdue   bool
	Badge     Badge
	Amount    string
	Due       string
	Paid      string
	// Payable invoices get an online payment action
	Payable bool
}

type OverviewCard struct {
	models.DashboardOverview
	InProgress     int
	UnreadSentence string
	HasOverdue     bool
	PendingAmount  string
}

// Dashboard is everything the dashboard template needs
type Dashboard struct {
	User      models.User
	Overview  querycache.Result[OverviewCard]
	Projects  querycache.Result[[]ProjectRow]
	Contracts querycache.Result[[]ContractRow]
	Invoices  querycache.Result[[]InvoiceRow]
}

func NewOverviewCard(o models.DashboardOverview) OverviewCard {
	return OverviewCard{
		DashboardOverview: o,
		InProgress:        o.ProjectsByStatus[string(models.ProjectInProgress)],
		UnreadSentence:    UnreadMessages(o.UnreadMessages),
		HasOverdue:        o.OverdueInvoices > 0,
		PendingAmount:     FormatAmount(o.TotalAmountPending, ""),
	}
}

func ProjectRows(projects []models.Project) []ProjectRow {
	rows := make([]ProjectRow, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, ProjectRow{
			Project:    p,
			Badge:      ProjectBadge(p.Status),
			UploadedOn: FormatDate(p.UploadDate),
		})
	}
	return rows
}

func ContractRows(contracts []models.Contract) []ContractRow {
	rows := make([]ContractRow, 0, len(contracts))
	for _, c := range contracts {
		row := ContractRow{
			Contract:  c,
			TypeLabel: ContractLabel(c.ContractType),
			CreatedOn: FormatDate(c.CreatedAt),
		}
		if c.PDFPath != nil {
			row.PDFURL = *c.PDFPath
		}
		rows = append(rows, row)
	}
	return rows
}

// InvoiceRows derives display state; payments says whether online payment is offered
func InvoiceRows(invoices []models.Invoice, now time.Time, payments bool) []InvoiceRow {
	rows := make([]InvoiceRow, 0, len(invoices))
	for _, inv := range invoices {
		eff := EffectiveStatus(inv, now)
		row := InvoiceRow{
			Invoice:   inv,
			Effective: eff,
			Overdue:   eff == models.InvoiceOverdue,
			Badge:     InvoiceBadge(eff),
			Amount:    FormatAmount(inv.Amount, inv.Currency),
			Due:       FormatDate(inv.DueDate),
			Payable:   payments && (eff == models.InvoicePending || eff == models.InvoiceOverdue),
		}
		if inv.PaidDate != nil {
			row.Paid = FormatDate(*inv.PaidDate)
		}
		rows = append(rows, row)
	}
	return rows
}
