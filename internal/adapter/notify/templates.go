package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/polkiloo/rigshop/internal/domain/model"
)

const (
	KindOrderConfirmation = "order_confirmation"
	KindStatusChanged     = "status_changed"
	KindWelcome           = "welcome"
)

var templates = template.Must(template.New("emails").Parse(`
{{define "order_confirmation"}}<html><body>
<h1>Thank you for your order, {{.UserName}}!</h1>
<p>Order <strong>{{.ID}}</strong> for build "{{.BuildName}}" has been received.</p>
<table>
<tr><th>Component</th><th>Qty</th><th>Price</th></tr>
{{range .Components}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Price.StringFixed 2}}</td></tr>
{{end}}</table>
<p>Components: {{.ComponentsPrice.StringFixed 2}}<br>
Service charge: {{.ServiceCharge.StringFixed 2}}<br>
Delivery charge: {{.DeliveryCharge.StringFixed 2}}<br>
Assembly: {{.AssemblyCharge.StringFixed 2}}<br>
Quality testing: {{.QualityTestingCharge.StringFixed 2}}</p>
<p><strong>Total: {{.TotalCharge.StringFixed 2}} {{.Currency}}</strong></p>
<p>Delivery: {{.DeliveryMethod}}</p>
{{if .PickupCode}}<p>Your pickup code: <strong>{{.PickupCode}}</strong></p>{{end}}
</body></html>{{end}}

{{define "status_changed"}}<html><body>
<p>Hello {{.UserName}},</p>
<p>Your order <strong>{{.ID}}</strong> is now <strong>{{.BuildStatus}}</strong>.</p>
{{if .PickupCode}}<p>Pickup code: <strong>{{.PickupCode}}</strong></p>{{end}}
</body></html>{{end}}

{{define "welcome"}}<html><body>
<h1>Welcome, {{.Name}}!</h1>
<p>Your account {{.Email}} is ready. Start configuring your first build.</p>
</body></html>{{end}}
`))

// OrderConfirmation renders the e-mail sent after a successful checkout.
func OrderConfirmation(order *model.Order) (Email, error) {
	html, err := render(KindOrderConfirmation, order)
	if err != nil {
		return Email{}, err
	}
	return Email{
		Kind:    KindOrderConfirmation,
		To:      order.UserEmail,
		Subject: fmt.Sprintf("Order %s confirmed", order.ID),
		HTML:    html,
		OrderID: order.ID,
	}, nil
}

// StatusChanged renders the e-mail sent when an order advances.
func StatusChanged(order *model.Order) (Email, error) {
	html, err := render(KindStatusChanged, order)
	if err != nil {
		return Email{}, err
	}
	return Email{
		Kind:    KindStatusChanged,
		To:      order.UserEmail,
		Subject: fmt.Sprintf("Order %s: %s", order.ID, order.BuildStatus),
		HTML:    html,
		OrderID: order.ID,
	}, nil
}

// Welcome renders the e-mail sent after registration.
func Welcome(user *model.User) (Email, error) {
	html, err := render(KindWelcome, user)
	if err != nil {
		return Email{}, err
	}
	return Email{
		Kind:    KindWelcome,
		To:      user.Email,
		Subject: "Welcome to rigshop",
		HTML:    html,
	}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
