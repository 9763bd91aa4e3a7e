package builder

import (
	"time"

	"invoicebuilder/internal/domain"
)

// Element defaults, keyed by type. Anything missing falls back to fallbackSize.
var defaultSizes = map[domain.ElementType][2]float64{
	domain.ElementTypeText:           {100, 40},
	domain.ElementTypeLogo:           {120, 60},
	domain.ElementTypeRectangle:      {100, 100},
	domain.ElementTypeLine:           {200, 2},
	domain.ElementTypeImage:          {150, 150},
	domain.ElementTypeBusinessInfo:   {200, 120},
	domain.ElementTypeClientInfo:     {200, 120},
	domain.ElementTypeInvoiceDetails: {200, 100},
	domain.ElementTypeItemsTable:     {500, 200},
	domain.ElementTypeTotals:         {200, 120},
	domain.ElementTypeNotes:          {300, 80},
	domain.ElementTypeTerms:          {300, 80},
	domain.ElementTypeSignature:      {200, 80},
}

var fallbackSize = [2]float64{100, 40}

// DefaultSize returns the width and height a new element of type t gets.
func DefaultSize(t domain.ElementType) (w, h float64) {
	sz, ok := defaultSizes[t]
	if !ok {
		sz = fallbackSize
	}
	return sz[0], sz[1]
}

func defaultStyle(t domain.ElementType) domain.Style {
	s := domain.Style{
		FontSize: domain.Ptr(12.0),
		Color:    domain.Ptr("#000000"),
	}
	switch t {
	case domain.ElementTypeRectangle:
		s.BackgroundColor = domain.Ptr("#f3f4f6")
		s.BorderColor = domain.Ptr("#d1d5db")
		s.BorderWidth = domain.Ptr(1.0)
		s.BorderRadius = domain.Ptr(4.0)
	case domain.ElementTypeLine:
		s.BorderColor = domain.Ptr("#d1d5db")
		s.BorderWidth = domain.Ptr(1.0)
	}
	return s
}

// NewElement builds an element of type t at (x, y) with its default size
// and style. The id is left to the caller.
func NewElement(id string, t domain.ElementType, x, y float64) domain.CanvasElement {
	w, h := DefaultSize(t)
	el := domain.CanvasElement{
		ID:       id,
		Type:     t,
		Position: domain.Position{X: x, Y: y, Width: w, Height: h},
		Style:    defaultStyle(t),
	}
	if t == domain.ElementTypeText {
		el.Content = "Text"
	}
	return el
}

// NewBlankTemplate returns an empty white A4 page.
func NewBlankTemplate(id string) domain.TemplateData {
	return domain.TemplateData{
		ID:         id,
		Name:       "Blank Template",
		Elements:   []domain.CanvasElement{},
		Width:      domain.A4Width,
		Height:     domain.A4Height,
		Background: "#ffffff",
	}
}

const dateLayout = "2006-01-02"

// SampleInvoice is the placeholder invoice the editor opens with.
func SampleInvoice(now time.Time) domain.InvoiceData {
	return domain.InvoiceData{
		ID:      "sample",
		Number:  "INV-001",
		Date:    now.Format(dateLayout),
		DueDate: now.AddDate(0, 0, 30).Format(dateLayout),
		Business: domain.BusinessInfo{
			Name:    "Your Business Name",
			Address: "123 Business St",
			City:    "Business City",
			State:   "BS",
			Zip:     "12345",
			Country: "USA",
			Phone:   "(123) 456-7890",
			Email:   "contact@yourbusiness.com",
			Website: "www.yourbusiness.com",
			TaxID:   "TAX-123456789",
		},
		Client: domain.ClientInfo{
			Name:    "Client Name",
			Address: "456 Client Ave",
			City:    "Client City",
			State:   "CL",
			Zip:     "67890",
			Country: "USA",
			Phone:   "(098) 765-4321",
			Email:   "client@example.com",
		},
		Items: []domain.InvoiceItem{
			{ID: "1", Description: "Product or Service 1", Quantity: 2, Price: 100, Tax: 10, Discount: 5, Total: 210},
			{ID: "2", Description: "Product or Service 2", Quantity: 1, Price: 50, Tax: 10, Discount: 0, Total: 55},
		},
		Notes:         "Thank you for your business!",
		Terms:         "Payment due within 30 days.",
		Subtotal:      250,
		TaxTotal:      25,
		DiscountTotal: 10,
		Shipping:      domain.Ptr(15.0),
		Total:         280,
		Currency:      "USD",
		Status:        domain.InvoiceStatusDraft,
	}
}
