// models/project.go - Client portal data models served by the studio backend
package models

import "time"

// ProjectStatus is driven by the studio; the portal only reads it.
type ProjectStatus string

const (
	ProjectWaiting    ProjectStatus = "waiting"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

// Project is an uploaded track under review or in production
type Project struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Genre       string        `json:"genre"`
	Status      ProjectStatus `json:"status"`
	UploadDate  time.Time     `json:"uploadDate"`
	Approved    bool          `json:"approved"`
	Username    string        `json:"username"`
}

// ContractType identifies the agreement template
type ContractType string

const (
	ContractMixMaster         ContractType = "mix_master"
	ContractCopyrightTransfer ContractType = "copyright_transfer"
	ContractInstrumentalSale  ContractType = "instrumental_sale"
)

// Contract is immutable from the client's point of view
type Contract struct {
	ID             int64        `json:"id"`
	ContractNumber string       `json:"contractNumber"`
	ContractType   ContractType `json:"contractType"`
	PDFPath        *string      `json:"pdfPath"`
	CreatedAt      time.Time    `json:"createdAt"`
	Username       string       `json:"username"`
}

// InvoiceStatus as stored by the backend. Overdue may also be derived client-side.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Invoice carries its amount as a decimal string; it is formatted, never summed.
type Invoice struct {
	ID             int64         `json:"id"`
	InvoiceNumber  string        `json:"invoiceNumber"`
	Amount         string        `json:"amount"`
	Currency       string        `json:"currency"`
	Status         InvoiceStatus `json:"status"`
	Description    string        `json:"description"`
	IssuedDate     time.Time     `json:"issuedDate"`
	DueDate        time.Time     `json:"dueDate"`
	PaidDate       *time.Time    `json:"paidDate"`
	ContractNumber *string       `json:"contractNumber"`
	ContractType   *ContractType `json:"contractType"`
}

// DashboardOverview is recomputed by the backend on every fetch
type DashboardOverview struct {
	TotalProjects      int            `json:"totalProjects"`
	ProjectsByStatus   map[string]int `json:"projectsByStatus"`
	TotalContracts     int            `json:"totalContracts"`
	TotalInvoices      int            `json:"totalInvoices"`
	PendingInvoices    int            `json:"pendingInvoices"`
	OverdueInvoices    int            `json:"overdueInvoices"`
	TotalAmountPending string         `json:"totalAmountPending"`
	UnreadMessages     int            `json:"unreadMessages"`
}
