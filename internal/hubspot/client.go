package hubspot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/dashdoc/webmanager/internal/httpx"
	"github.com/dashdoc/webmanager/internal/logging"
	"github.com/dashdoc/webmanager/internal/model"
)

// StatusError is returned for any status other than the one an endpoint documents
type StatusError = httpx.StatusError

var (
	ErrRequest = httpx.ErrRequest
	ErrDecode  = httpx.ErrDecode
)

const (
	companyURLFormat = "https://app.hubspot.com/contacts/%s/record/0-2/%s"

	// contact-to-company association, primary company
	associationCategory = "HUBSPOT_DEFINED"
	associationTypeID   = 279
)

// Client talks to the HubSpot CRM API
type Client struct {
	http *httpx.Client
	cfg  model.HubSpotConfig
	log  logging.Logger
}

// New creates a HubSpot client
func New(cfg model.HubSpotConfig, hc *httpx.Client, log logging.Logger) *Client {
	return &Client{http: hc, cfg: cfg, log: logging.OrNop(log)}
}

// Company is a CRM company with flattened property values
type Company struct {
	ID         int64             `json:"id"`
	Properties map[string]string `json:"properties"`
}

// Name returns the company name property
func (c Company) Name() string {
	return c.Properties["name"]
}

type companyResponse struct {
	CompanyID  int64 `json:"companyId"`
	Properties map[string]struct {
		Value string `json:"value"`
	} `json:"properties"`
}

type propertyValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type contactResponse struct {
	ID string `json:"id"`
}

type association struct {
	AssociationCategory string `json:"associationCategory"`
	AssociationTypeID   int    `json:"associationTypeId"`
}

type propertyResponse struct {
	Name    string `json:"name"`
	Options []struct {
		Label  string `json:"label"`
		Value  string `json:"value"`
		Hidden bool   `json:"hidden"`
	} `json:"options"`
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}

// GetCompany fetches a company by id
func (c *Client) GetCompany(ctx context.Context, id string) (*Company, error) {
	var resp companyResponse
	if _, err := c.http.Do(ctx, httpx.Request{
		URL:     c.url("/companies/v2/companies/" + url.PathEscape(id)),
		Headers: c.headers(),
		Expect:  []int{http.StatusOK},
	}, &resp); err != nil {
		return nil, fmt.Errorf("get company %s: %w", id, err)
	}

	company := &Company{ID: resp.CompanyID, Properties: make(map[string]string, len(resp.Properties))}
	for name, p := range resp.Properties {
		company.Properties[name] = p.Value
	}
	return company, nil
}

// UpdateCompany writes properties onto a company. Properties are sent in name order.
func (c *Client) UpdateCompany(ctx context.Context, id string, properties map[string]any) error {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]propertyValue, 0, len(names))
	for _, name := range names {
		values = append(values, propertyValue{Name: name, Value: properties[name]})
	}

	if _, err := c.http.Do(ctx, httpx.Request{
		Method:  http.MethodPut,
		URL:     c.url("/companies/v2/companies/" + url.PathEscape(id)),
		Headers: c.headers(),
		Body:    map[string]any{"properties": values},
		Expect:  []int{http.StatusOK},
	}, nil); err != nil {
		return fmt.Errorf("update company %s: %w", id, err)
	}

	c.log.Info("company updated", "company_id", id, "properties", len(values))
	return nil
}

// CreateContact creates a contact and returns its id
func (c *Client) CreateContact(ctx context.Context, properties map[string]string) (string, error) {
	var resp contactResponse
	if _, err := c.http.Do(ctx, httpx.Request{
		Method:  http.MethodPost,
		URL:     c.url("/crm/v3/objects/contacts"),
		Headers: c.headers(),
		Body:    map[string]any{"properties": properties},
		Expect:  []int{http.StatusCreated},
	}, &resp); err != nil {
		return "", fmt.Errorf("create contact: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create contact: %w: missing id", ErrDecode)
	}

	c.log.Info("contact created", "contact_id", resp.ID)
	return resp.ID, nil
}

// AssociateContactToCompany links a contact to a company
func (c *Client) AssociateContactToCompany(ctx context.Context, contactID, companyID string) error {
	path := fmt.Sprintf("/crm/v4/objects/contact/%s/associations/company/%s",
		url.PathEscape(contactID), url.PathEscape(companyID))

	if _, err := c.http.Do(ctx, httpx.Request{
		Method:  http.MethodPut,
		URL:     c.url(path),
		Headers: c.headers(),
		Body:    []association{{AssociationCategory: associationCategory, AssociationTypeID: associationTypeID}},
		Expect:  []int{http.StatusOK},
	}, nil); err != nil {
		return fmt.Errorf("associate contact %s to company %s: %w", contactID, companyID, err)
	}
	return nil
}

// PropertyOptions returns the visible option values of an enumerated company property
func (c *Client) PropertyOptions(ctx context.Context, property string) ([]string, error) {
	var resp propertyResponse
	if _, err := c.http.Do(ctx, httpx.Request{
		URL:     c.url("/crm/v3/properties/companies/" + url.PathEscape(property)),
		Headers: c.headers(),
		Expect:  []int{http.StatusOK},
	}, &resp); err != nil {
		return nil, fmt.Errorf("get property %s: %w", property, err)
	}

	values := make([]string, 0, len(resp.Options))
	for _, opt := range resp.Options {
		if opt.Hidden || opt.Value == "" {
			continue
		}
		values = append(values, opt.Value)
	}
	return values, nil
}

// CompanyURL links to the company record in the HubSpot UI
func (c *Client) CompanyURL(id string) string {
	return fmt.Sprintf(companyURLFormat, c.cfg.PortalID, id)
}
