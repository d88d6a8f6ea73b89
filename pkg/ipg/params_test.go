package ipg

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.StoreName = "811676300198"
	cfg.ResponseSuccessURL = "https://x/ok"
	cfg.ResponseFailURL = "https://x/fail"
	return cfg
}

// 10:30 UTC is 14:30 in Dubai.
var testNow = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, TestGatewayURL, cfg.GatewayURL)
	require.Equal(t, "en_US", cfg.Language)
	require.Equal(t, "sale", cfg.TxnType)
	require.Equal(t, "784", cfg.Currency)
	require.Equal(t, "combinedpage", cfg.CheckoutOption)
	require.Equal(t, "Asia/Dubai", cfg.Timezone)
	require.Equal(t, RecurringPlan{InstallmentCount: 12, Period: "month", Frequency: 1}, cfg.Recurring)
}

func TestBuild_Washbook(t *testing.T) {
	params, err := testConfig().Build(Selection{Kind: KindWashbook, Total: 13, OrderID: "ORDER1"}, testNow)
	require.NoError(t, err)

	require.Equal(t, Params{
		"hash_algorithm":             "HMACSHA256",
		"language":                   "en_US",
		"hashExtended":               "",
		"txntype":                    "sale",
		"timezone":                   "Asia/Dubai",
		"txndatetime":                "2024:01:15-14:30:00",
		"storename":                  "811676300198",
		"chargetotal":                "13.00",
		"currency":                   "784",
		"paymentMethod":              "",
		"oid":                        "ORDER1",
		"checkoutoption":             "combinedpage",
		"responseFailURL":            "https://x/fail",
		"responseSuccessURL":         "https://x/ok",
		"transactionNotificationURL": "",
	}, params)

	require.Equal(t,
		"13.00|combinedpage|784|HMACSHA256|en_US|ORDER1|https://x/fail|https://x/ok|811676300198|Asia/Dubai|2024:01:15-14:30:00|sale",
		Canonical(params))
	require.Equal(t, "3y1Th3ghajegDCVcNq74hxf2Q/3px+T6h73+H8VGmh0=", Sign(params, testSecret))
}

func TestBuild_MembershipAddsRecurringFields(t *testing.T) {
	params, err := testConfig().Build(Selection{Kind: KindMembership, Total: 13, OrderID: "ORDER1"}, testNow)
	require.NoError(t, err)

	require.Equal(t, 12, params[FieldRecurringInstallmentCount])
	require.Equal(t, "month", params[FieldRecurringInstallmentPeriod])
	require.Equal(t, 1, params[FieldRecurringInstallmentFreq])

	require.Equal(t,
		"13.00|combinedpage|784|HMACSHA256|en_US|ORDER1|12|1|month|https://x/fail|https://x/ok|811676300198|Asia/Dubai|2024:01:15-14:30:00|sale",
		Canonical(params))
	require.Equal(t, "sles6x2SO6PseGedE29ZgFo0I7ckzwCN1R3lBd/xVac=", Sign(params, testSecret))
}

func TestBuild_WashbookHasNoRecurringFields(t *testing.T) {
	params, err := testConfig().Build(Selection{Kind: KindWashbook, Total: 99}, testNow)
	require.NoError(t, err)

	for _, k := range []string{FieldRecurringInstallmentCount, FieldRecurringInstallmentPeriod, FieldRecurringInstallmentFreq} {
		require.NotContains(t, params, k)
	}
}

func TestBuild_ChargeTotalAlwaysTwoDecimals(t *testing.T) {
	for total, want := range map[float64]string{0: "0.00", 5: "5.00", 49.9: "49.90", 0.125: "0.13"} {
		params, err := testConfig().Build(Selection{Kind: KindWashbook, Total: total}, testNow)
		require.NoError(t, err)
		require.Equal(t, want, params[FieldChargeTotal])
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Run("unknown kind", func(t *testing.T) {
		_, err := testConfig().Build(Selection{Kind: "giftcard", Total: 1}, testNow)
		require.ErrorIs(t, err, ErrUnknownKind)
	})

	t.Run("invalid totals", func(t *testing.T) {
		for _, total := range []float64{-1, math.NaN(), math.Inf(1)} {
			_, err := testConfig().Build(Selection{Kind: KindWashbook, Total: total}, testNow)
			require.ErrorIs(t, err, ErrInvalidTotal)
		}
	})

	t.Run("invalid timezone", func(t *testing.T) {
		cfg := testConfig()
		cfg.Timezone = "Mars/Olympus_Mons"
		_, err := cfg.Build(Selection{Kind: KindWashbook, Total: 1}, testNow)
		require.Error(t, err)
	})
}
