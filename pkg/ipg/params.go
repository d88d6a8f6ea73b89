package ipg

import (
	"errors"
	"fmt"
	"math"
	"time"
	_ "time/tzdata"
)

// Gateway field names.
const (
	FieldHashAlgorithm              = "hash_algorithm"
	FieldLanguage                   = "language"
	FieldTxnType                    = "txntype"
	FieldTimezone                   = "timezone"
	FieldTxnDateTime                = "txndatetime"
	FieldStoreName                  = "storename"
	FieldChargeTotal                = "chargetotal"
	FieldCurrency                   = "currency"
	FieldPaymentMethod              = "paymentMethod"
	FieldOrderID                    = "oid"
	FieldCheckoutOption             = "checkoutoption"
	FieldResponseFailURL            = "responseFailURL"
	FieldResponseSuccessURL         = "responseSuccessURL"
	FieldTransactionNotificationURL = "transactionNotificationURL"
	FieldRecurringInstallmentCount  = "recurringInstallmentCount"
	FieldRecurringInstallmentPeriod = "recurringInstallmentPeriod"
	FieldRecurringInstallmentFreq   = "recurringInstallmentFrequency"
)

// TestGatewayURL is the hosted payment page of the gateway's test environment.
const TestGatewayURL = "https://test.ipg-online.com/connect/gateway/processing"

// ProductKind selects which optional fields a request carries.
type ProductKind string

const (
	// KindWashbook is a one-time prepaid wash package.
	KindWashbook ProductKind = "washbook"

	// KindMembership is a recurring subscription.
	KindMembership ProductKind = "membership"
)

// Valid reports whether k is a known kind.
func (k ProductKind) Valid() bool {
	return k == KindWashbook || k == KindMembership
}

// Recurring reports whether purchases of this kind bill in installments.
func (k ProductKind) Recurring() bool {
	return k == KindMembership
}

var (
	// ErrUnknownKind is returned by Build for a ProductKind it does not know.
	ErrUnknownKind = errors.New("ipg: unknown product kind")

	// ErrInvalidTotal is returned by Build for a negative or non-finite total.
	ErrInvalidTotal = errors.New("ipg: invalid charge total")
)

// RecurringPlan describes the installment schedule of a membership.
type RecurringPlan struct {
	InstallmentCount int
	Period           string // day, week, month or year
	Frequency        int
}

// Config holds the per-store settings of a gateway integration.
type Config struct {
	GatewayURL string

	StoreName      string
	Language       string
	TxnType        string
	Currency       string
	PaymentMethod  string
	CheckoutOption string
	Timezone       string

	ResponseSuccessURL         string
	ResponseFailURL            string
	TransactionNotificationURL string

	Recurring RecurringPlan
}

// DefaultConfig returns the settings of a UAE store taking AED through the
// combined payment page. StoreName and the callback URLs still need filling.
func DefaultConfig() Config {
	return Config{
		GatewayURL:     TestGatewayURL,
		Language:       "en_US",
		TxnType:        "sale",
		Currency:       "784",
		CheckoutOption: "combinedpage",
		Timezone:       "Asia/Dubai",
		Recurring: RecurringPlan{
			InstallmentCount: 12,
			Period:           "month",
			Frequency:        1,
		},
	}
}

// Selection is what the customer is buying.
type Selection struct {
	Kind    ProductKind
	Total   float64
	OrderID string
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("ipg: invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Build assembles the unsigned request for sel at time now. The returned set
// includes hashExtended as an empty placeholder; use Params.Signed to fill it.
func (c Config) Build(sel Selection, now time.Time) (Params, error) {
	if !sel.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, sel.Kind)
	}
	if math.IsNaN(sel.Total) || math.IsInf(sel.Total, 0) || sel.Total < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTotal, sel.Total)
	}

	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	p := Params{
		FieldHashAlgorithm:              HashAlgorithm,
		FieldLanguage:                   c.Language,
		FieldHashExtended:               "",
		FieldTxnType:                    c.TxnType,
		FieldTimezone:                   c.Timezone,
		FieldTxnDateTime:                FormatTxnDateTime(now, loc),
		FieldStoreName:                  c.StoreName,
		FieldChargeTotal:                FormatChargeTotal(sel.Total),
		FieldCurrency:                   c.Currency,
		FieldPaymentMethod:              c.PaymentMethod,
		FieldOrderID:                    sel.OrderID,
		FieldCheckoutOption:             c.CheckoutOption,
		FieldResponseFailURL:            c.ResponseFailURL,
		FieldResponseSuccessURL:         c.ResponseSuccessURL,
		FieldTransactionNotificationURL: c.TransactionNotificationURL,
	}

	if sel.Kind.Recurring() {
		p[FieldRecurringInstallmentCount] = c.Recurring.InstallmentCount
		p[FieldRecurringInstallmentPeriod] = c.Recurring.Period
		p[FieldRecurringInstallmentFreq] = c.Recurring.Frequency
	}

	return p, nil
}
