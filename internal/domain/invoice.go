package domain

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

type BusinessInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website,omitempty"`
	TaxID   string `json:"taxId,omitempty"`
	Logo    string `json:"logo,omitempty"`
}

type ClientInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// InvoiceItem carries a precomputed Total. Nothing here recomputes it from
// quantity, price, tax and discount; callers keep it consistent.
type InvoiceItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	Tax         float64 `json:"tax,omitempty"`
	Discount    float64 `json:"discount,omitempty"`
	Total       float64 `json:"total"`
}

// InvoiceData is the business-facing payload bound into info, table and
// totals elements.
type InvoiceData struct {
	ID            string        `json:"id"`
	Number        string        `json:"number"`
	Date          string        `json:"date"`
	DueDate       string        `json:"dueDate"`
	Business      BusinessInfo  `json:"business"`
	Client        ClientInfo    `json:"client"`
	Items         []InvoiceItem `json:"items"`
	Notes         string        `json:"notes,omitempty"`
	Terms         string        `json:"terms,omitempty"`
	Subtotal      float64       `json:"subtotal"`
	TaxTotal      float64       `json:"taxTotal"`
	DiscountTotal float64       `json:"discountTotal"`
	Shipping      *float64      `json:"shipping,omitempty"`
	Total         float64       `json:"total"`
	Currency      string        `json:"currency"`
	Status        InvoiceStatus `json:"status"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
	Signature     string        `json:"signature,omitempty"`
}

func (d InvoiceData) Clone() InvoiceData {
	c := d
	if d.Items != nil {
		c.Items = append([]InvoiceItem(nil), d.Items...)
	}
	c.Shipping = clonePtr(d.Shipping)
	return c
}
