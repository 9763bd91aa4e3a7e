package domain

// PrintStyle names one of the fixed print layouts.
type PrintStyle string

const (
	StyleOne   PrintStyle = "StyleOne"
	StyleTwo   PrintStyle = "StyleTwo"
	StyleThree PrintStyle = "StyleThree"
	StyleFour  PrintStyle = "StyleFour"
	StyleFive  PrintStyle = "StyleFive"
	StyleSix   PrintStyle = "StyleSix"
	StyleSeven PrintStyle = "StyleSeven"
	StyleEight PrintStyle = "StyleEight"
)

var PrintStyles = []PrintStyle{
	StyleOne, StyleTwo, StyleThree, StyleFour,
	StyleFive, StyleSix, StyleSeven, StyleEight,
}

type LogoMode string

const (
	LogoEnabled  LogoMode = "ENABLE"
	LogoDisabled LogoMode = "DISABLE"
)

// PrintItem is one row of the print pipeline's item table. Money fields are
// decimal strings as entered by the user.
type PrintItem struct {
	Product  string  `json:"product"`
	Quantity float64 `json:"quantity"`
	Price    string  `json:"price"`
	Tax      string  `json:"tax"`
	Discount string  `json:"discount"`
}

// PrintHeader labels a column; Key is the PrintItem json field it shows.
type PrintHeader struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// PrintData is the flat record consumed by the fixed print layouts. It is
// filled by the caller and is not derived from a TemplateData.
type PrintData struct {
	Title           string        `json:"title"`
	LogoURL         string        `json:"logoUrl"`
	InvoiceNumber   string        `json:"invoiceNumber"`
	Date            string        `json:"date"`
	CustomerName    string        `json:"customerName"`
	CustomerAddress string        `json:"customerAddress"`
	CustomerPhone   string        `json:"customerPhone"`
	CustomerEmail   string        `json:"customerEmail,omitempty"`
	Items           []PrintItem   `json:"items"`
	Subtotal        string        `json:"subtotal"`
	TotalTax        string        `json:"totalTax"`
	Shipping        string        `json:"shipping"`
	Total           string        `json:"total"`
	Terms           string        `json:"terms"`
	ItemsHead       []PrintHeader `json:"itemsHead"`
	Watermark       string        `json:"watermark"`
	CompanyName     string        `json:"companyName,omitempty"`
	CompanyAddress  string        `json:"companyAddress,omitempty"`
	CompanyPhone    string        `json:"companyPhone,omitempty"`
	CompanyEmail    string        `json:"companyEmail,omitempty"`
	SignatureImage  *string       `json:"signatureImage"`
	IsSignature     bool          `json:"isSignature,omitempty"`
	IsWatermark     *bool         `json:"isWatermark,omitempty"`
	WatermarkImage  string        `json:"watermarkImage,omitempty"`
	WatermarkText   string        `json:"watermarkText,omitempty"`
	IsBankAccount   bool          `json:"isBankAccount,omitempty"`
	Theme           PrintStyle    `json:"theme,omitempty"`
	HasLogo         LogoMode      `json:"hasLogo,omitempty"`
}

// WatermarkEnabled is true unless the caller explicitly turned it off.
func (p PrintData) WatermarkEnabled() bool {
	return p.IsWatermark == nil || *p.IsWatermark
}

// DefaultItemsHead is used when a PrintData carries no column headers.
var DefaultItemsHead = []PrintHeader{
	{Name: "Product", Key: "product"},
	{Name: "Qty", Key: "quantity"},
	{Name: "Price", Key: "price"},
	{Name: "Tax", Key: "tax"},
	{Name: "Amount", Key: "amount"},
}
