package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/washpay/internal/checkout/domain"
	"github.com/aussiebroadwan/washpay/pkg/ipg"
)

var (
	// ErrProductNotFound is returned when a product id is not offered.
	ErrProductNotFound = errors.New("product not found")

	// ErrUpstream is returned when the backend answers with a non-2xx status
	// or a body that cannot be read.
	ErrUpstream = errors.New("backend request failed")
)

// Doer sends an authenticated request to the backend. *authsdk.Manager is
// the production implementation.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CatalogService lists what the customer portal offers.
type CatalogService struct {
	Client  Doer
	BaseURL string
	APIKey  string
}

// List returns every product of kind that is shown on the customer portal.
func (s *CatalogService) List(ctx context.Context, kind ipg.ProductKind) ([]domain.Product, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ipg.ErrUnknownKind, kind)
	}

	q := url.Values{}
	q.Set("key", s.APIKey)
	q.Set("ShowOnCustomerPortal", "True")
	endpoint := strings.TrimSuffix(s.BaseURL, "/") + "/api/" + string(kind) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s: HTTP %d: %s", ErrUpstream, kind, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var body struct {
		Data []catalogItem `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s list: %w", ErrUpstream, kind, err)
	}

	products := make([]domain.Product, 0, len(body.Data))
	for _, item := range body.Data {
		p := item.product(kind)
		if p.ID == "" {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// Lookup finds one product by id. The returned price is the backend's, which
// is the only price ever signed.
func (s *CatalogService) Lookup(ctx context.Context, kind ipg.ProductKind, id string) (domain.Product, error) {
	products, err := s.List(ctx, kind)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("%w: %s %q", ErrProductNotFound, kind, id)
}

// catalogItem covers both list shapes; only the fields matching the requested
// kind are read.
type catalogItem struct {
	WashbookID      flexString `json:"washbookId"`
	WashbookName    string     `json:"washbookName"`
	WashbookPrice   flexNumber `json:"washbookPrice"`
	MembershipID    flexString `json:"membershipId"`
	MembershipName  string     `json:"membershipName"`
	MembershipPrice flexNumber `json:"membershipPrice"`
}

func (c catalogItem) product(kind ipg.ProductKind) domain.Product {
	if kind == ipg.KindMembership {
		return domain.Product{Kind: kind, ID: string(c.MembershipID), Name: c.MembershipName, Price: float64(c.MembershipPrice)}
	}
	return domain.Product{Kind: kind, ID: string(c.WashbookID), Name: c.WashbookName, Price: float64(c.WashbookPrice)}
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexNumber accepts a JSON number or a numeric string. Anything else reads
// as 0.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexNumber(v)
	return nil
}
