package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentIntent_String(t *testing.T) {
	intent := PaymentIntent{
		Scheme:      "upi",
		PayeeHandle: "ravi@okbank",
		PayeeName:   "Ravi Kumar",
		Amount:      d("5600"),
		Currency:    "inr",
		Note:        "Aug 2025 - Lake View #2",
	}

	assert.Equal(t,
		"upi://pay?pa=ravi@okbank&pn=Ravi+Kumar&am=5600.00&cu=INR&tn=Aug+2025+-+Lake+View+%232",
		intent.String(),
	)
}

func TestPaymentIntent_Defaults(t *testing.T) {
	intent := PaymentIntent{PayeeHandle: "a@b", PayeeName: "A", Amount: d("1.005"), Note: "n"}
	assert.Equal(t, "upi://pay?pa=a@b&pn=A&am=1.01&cu=INR&tn=n", intent.String())
}

func TestPaymentIntent_IsDeterministic(t *testing.T) {
	intent := PaymentIntent{PayeeHandle: "a@b", PayeeName: "Zoë & Co", Amount: d("10"), Note: "Sep 2025 - Flat"}
	assert.Equal(t, intent.String(), intent.String())
	assert.Contains(t, intent.String(), "pn=Zo%C3%AB+%26+Co")
}
