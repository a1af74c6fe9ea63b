// Package checko implements the company-registry lookup against the Checko
// finances API. The issuance flow uses it to verify that a business exists
// and is active before tokens are minted.
package checko

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/tokenizelocal/tokenizelocal/internal/adapter"
	"github.com/tokenizelocal/tokenizelocal/internal/domain"
)

const PROVIDER_NAME = "checko"

// StatusActive is the registry's sentinel for an operating company.
// Issuance must be rejected for any other status.
const StatusActive = "Действует"

// Client defines the interface for registry lookups to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/checko_client.go -package=mocks -mock_names=Client=MockCheckoClient
type Client interface {
	// CompanyInfo fetches company data by tax id. Network, HTTP, parse and
	// remote meta failures all wrap domain.ErrLookupFailed.
	CompanyInfo(ctx context.Context, taxID string) (*domain.CompanyInfo, error)
}

// metaPayload is the envelope status block of every Checko response
type metaPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// companyPayload carries the registry's own field names
type companyPayload struct {
	FullName         string          `json:"НаимПолн"`
	ShortName        string          `json:"НаимСокр"`
	Status           string          `json:"Статус"`
	OGRN             string          `json:"ОГРН"`
	KPP              string          `json:"КПП"`
	RegistrationDate string          `json:"ДатаРег"`
	Address          string          `json:"ЮрАдрес"`
	OKVED            string          `json:"ОКВЭД"`
	Revenue          decimal.Decimal `json:"Выручка"`
}

type lookupResponse struct {
	Meta    metaPayload     `json:"meta"`
	Company *companyPayload `json:"company"`
}

// CheckoClient implements Client against the live API
type CheckoClient struct {
	httpClient adapter.HTTPClient
	apiURL     string
	apiKey     string
}

// NewClient creates a new Checko client
func NewClient(httpClient adapter.HTTPClient, apiURL, apiKey string) Client {
	return &CheckoClient{
		httpClient: httpClient,
		apiURL:     apiURL,
		apiKey:     apiKey,
	}
}

// CompanyInfo fetches company data by tax id
func (c *CheckoClient) CompanyInfo(ctx context.Context, taxID string) (*domain.CompanyInfo, error) {
	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("inn", taxID)
	requestURL := fmt.Sprintf("%s?%s", c.apiURL, query.Encode())

	var response lookupResponse
	if err := c.httpClient.Get(ctx, requestURL, &response); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupFailed, err)
	}

	if response.Meta.Status != "ok" {
		message := response.Meta.Message
		if message == "" {
			message = "unknown registry error"
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrLookupFailed, message)
	}

	if response.Company == nil {
		return nil, fmt.Errorf("%w: no company data in response", domain.ErrLookupFailed)
	}

	return &domain.CompanyInfo{
		Name:             response.Company.FullName,
		ShortName:        response.Company.ShortName,
		Status:           response.Company.Status,
		OGRN:             response.Company.OGRN,
		KPP:              response.Company.KPP,
		RegistrationDate: response.Company.RegistrationDate,
		Address:          response.Company.Address,
		OKVED:            response.Company.OKVED,
		Revenue:          response.Company.Revenue,
	}, nil
}

// IsActive reports whether the company may take part in the issuance flow
func IsActive(info *domain.CompanyInfo) bool {
	return info != nil && info.Status == StatusActive
}
