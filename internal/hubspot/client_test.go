package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dashdoc/webmanager/internal/httpx"
	"github.com/dashdoc/webmanager/internal/model"
)

func newTestClient(url string) *Client {
	return New(model.HubSpotConfig{BaseURL: url, APIKey: "hs-key", PortalID: "4242"},
		httpx.NewClientWithDoer(http.DefaultClient), nil)
}

func TestGetCompany(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/companies/v2/companies/123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer hs-key" {
			t.Errorf("expected bearer auth")
		}
		_, _ = fmt.Fprint(w, `{"companyId":123,"properties":{"name":{"value":"Acme Transport"},"tms":{"value":"Shippeo"}}}`)
	}))
	defer server.Close()

	company, err := newTestClient(server.URL).GetCompany(context.Background(), "123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if company.ID != 123 || company.Name() != "Acme Transport" {
		t.Errorf("unexpected company: %+v", company)
	}
	if company.Properties["tms"] != "Shippeo" {
		t.Errorf("expected tms property, got %v", company.Properties)
	}
}

func TestGetCompany_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"status":"error"}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetCompany(context.Background(), "999")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Errorf("expected StatusError 404, got %v", err)
	}
}

func TestUpdateCompany(t *testing.T) {
	var body struct {
		Properties []propertyValue `json:"properties"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	err := newTestClient(server.URL).UpdateCompany(context.Background(), "123", map[string]any{
		"tms":            "Shippeo",
		"mrr_start_date": int64(1704067200000),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(body.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(body.Properties))
	}
	if body.Properties[0].Name != "mrr_start_date" || body.Properties[1].Name != "tms" {
		t.Errorf("expected properties in name order, got %+v", body.Properties)
	}
}

func TestCreateContact_RequiresCreated(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"created", http.StatusCreated, false},
		{"ok is not created", http.StatusOK, true},
		{"bad request", http.StatusBadRequest, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body struct {
					Properties map[string]string `json:"properties"`
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				if body.Properties["hs_buying_role"] != "DECISION_MAKER" {
					t.Errorf("expected buying role, got %v", body.Properties)
				}
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, `{"id":"501"}`)
			}))
			defer server.Close()

			id, err := newTestClient(server.URL).CreateContact(context.Background(), map[string]string{
				"firstname":      "Ada",
				"lastname":       "Lovelace",
				"hs_buying_role": "DECISION_MAKER",
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && id != "501" {
				t.Errorf("expected id 501, got %s", id)
			}
		})
	}
}

func TestAssociateContactToCompany(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crm/v4/objects/contact/501/associations/company/123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body []association
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body) != 1 || body[0].AssociationTypeID != 279 || body[0].AssociationCategory != "HUBSPOT_DEFINED" {
			t.Errorf("unexpected association body: %+v", body)
		}
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).AssociateContactToCompany(context.Background(), "501", "123"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestPropertyOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crm/v3/properties/companies/tms" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = fmt.Fprint(w, `{"name":"tms","options":[
			{"label":"Shippeo","value":"Shippeo","hidden":false},
			{"label":"Old","value":"Old","hidden":true},
			{"label":"Excel","value":"Excel","hidden":false}
		]}`)
	}))
	defer server.Close()

	opts, err := newTestClient(server.URL).PropertyOptions(context.Background(), "tms")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(opts) != 2 || opts[0] != "Shippeo" || opts[1] != "Excel" {
		t.Errorf("expected visible options, got %v", opts)
	}
}

func TestCompanyURL(t *testing.T) {
	got := newTestClient("http://unused").CompanyURL("123")
	if got != "https://app.hubspot.com/contacts/4242/record/0-2/123" {
		t.Errorf("unexpected url %s", got)
	}
}
