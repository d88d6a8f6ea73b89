// Package ipg builds and signs payment requests for a hosted payment gateway
// (IPG) that authenticates browser-submitted form posts with a shared secret.
//
// The gateway recomputes the signature over the submitted fields, so
// Canonical must produce byte-for-byte the same string it does: values of all
// non-empty fields except hashExtended, sorted by key and joined with "|".
// The charge total is part of that string and is always written with two
// decimals.
//
// A typical checkout:
//
//	params, err := cfg.Build(ipg.Selection{Kind: ipg.KindMembership, Total: 99, OrderID: oid}, time.Now())
//	if err != nil {
//		return err
//	}
//	return ipg.RenderForm(w, cfg.GatewayURL, params.Signed(secret))
package ipg
