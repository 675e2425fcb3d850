package email

import (
	"html/template"
	"time"
)

// EmailTemplate defines the interface for email templates
type EmailTemplate interface {
	Subject() string
	TemplateName() string
}

// OrderConfirmationEmail represents an order confirmation email sent to the
// customer after payment completes.
type OrderConfirmationEmail struct {
	OrderNumber   string
	CustomerEmail string
	OrderDate     time.Time
	Items         []OrderItem
	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	DonationCents int64
	TotalCents    int64
	NonprofitName string
	ReceiptURL    string // Optional, provider-hosted receipt
}

func (e OrderConfirmationEmail) Subject() string {
	return "Order Confirmation - " + e.OrderNumber
}

func (e OrderConfirmationEmail) TemplateName() string {
	return "order_confirmation"
}

// VendorNotificationEmail represents the fulfillment notification sent to a
// print vendor's order inbox when dispatch mode is email.
type VendorNotificationEmail struct {
	OrderNumber   string
	VendorName    string
	CustomerEmail string
	OrderDate     time.Time
	Items         []OrderItem
	TotalCents    int64
}

func (e VendorNotificationEmail) Subject() string {
	return "New Order " + e.OrderNumber + " - Print Power Purpose"
}

func (e VendorNotificationEmail) TemplateName() string {
	return "vendor_notification"
}

// OrderItem represents a line item in an order email.
type OrderItem struct {
	ProductName   string
	Configuration string // e.g. "Black / 3.5x2"
	Quantity      int
	PriceCents    int64
	TotalCents    int64
	ArtworkURL    string
}

var emailTemplates = template.Must(template.New("email").Funcs(template.FuncMap{
	"dollars": formatCents,
}).Parse(`
{{define "order_confirmation"}}
<div class="email-content">
  <h2>Thank you for your order!</h2>
  <p>Order <strong>{{.OrderNumber}}</strong> placed {{.OrderDate.Format "January 2, 2006"}}.</p>
  <table>
    <tr><th>Item</th><th>Qty</th><th>Price</th><th>Total</th></tr>
    {{range .Items}}
    <tr>
      <td>{{.ProductName}}{{if .Configuration}} ({{.Configuration}}){{end}}</td>
      <td>{{.Quantity}}</td>
      <td>{{dollars .PriceCents}}</td>
      <td>{{dollars .TotalCents}}</td>
    </tr>
    {{end}}
  </table>
  <p>Subtotal: {{dollars .SubtotalCents}}<br>
  Shipping: {{dollars .ShippingCents}}<br>
  {{if gt .TaxCents 0}}Tax: {{dollars .TaxCents}}<br>{{end}}
  {{if gt .DonationCents 0}}Donation{{if .NonprofitName}} to {{.NonprofitName}}{{end}}: {{dollars .DonationCents}}<br>{{end}}
  <strong>Total: {{dollars .TotalCents}}</strong></p>
  {{if gt .DonationCents 0}}<p>Your purchase supports {{.NonprofitName}}. Thank you for giving back!</p>{{end}}
  {{if .ReceiptURL}}<p><a href="{{.ReceiptURL}}">View your receipt</a></p>{{end}}
</div>
{{end}}

{{define "vendor_notification"}}
<div class="email-content">
  <h2>New Order: {{.OrderNumber}}</h2>
  <p>Vendor: {{.VendorName}}<br>
  Customer: {{.CustomerEmail}}<br>
  Placed: {{.OrderDate.Format "January 2, 2006 15:04 MST"}}</p>
  <table>
    <tr><th>Item</th><th>Qty</th><th>Artwork</th></tr>
    {{range .Items}}
    <tr>
      <td>{{.ProductName}}{{if .Configuration}} ({{.Configuration}}){{end}}</td>
      <td>{{.Quantity}}</td>
      <td>{{if .ArtworkURL}}<a href="{{.ArtworkURL}}">download</a>{{else}}n/a{{end}}</td>
    </tr>
    {{end}}
  </table>
  <p><strong>Order total: {{dollars .TotalCents}}</strong></p>
</div>
{{end}}
`))
