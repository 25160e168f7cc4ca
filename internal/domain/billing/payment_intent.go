package billing

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Defaults for the payment-intent URI.
const (
	DefaultPaymentScheme = "upi"
	DefaultCurrency      = "INR"
)

// PaymentIntent describes a request to pay a payee a fixed amount.
type PaymentIntent struct {
	Scheme      string
	PayeeHandle string
	PayeeName   string
	Amount      decimal.Decimal
	Currency    string
	Note        string
}

// String renders the intent as
//
//	<scheme>://pay?pa=<handle>&pn=<name>&am=<amount>&cu=<currency>&tn=<note>
//
// Name and note are query-escaped; the amount always has two decimals.
// Parameter order is fixed because scanning apps compare it literally.
func (p PaymentIntent) String() string {
	scheme := p.Scheme
	if scheme == "" {
		scheme = DefaultPaymentScheme
	}
	currency := strings.ToUpper(p.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://pay?pa=")
	b.WriteString(p.PayeeHandle)
	b.WriteString("&pn=")
	b.WriteString(url.QueryEscape(p.PayeeName))
	b.WriteString("&am=")
	b.WriteString(p.Amount.StringFixed(AmountPlaces))
	b.WriteString("&cu=")
	b.WriteString(currency)
	b.WriteString("&tn=")
	b.WriteString(url.QueryEscape(p.Note))
	return b.String()
}
