package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rumahdash/internal/dataset"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store := dataset.NewStore(zap.NewNop())
	return NewRouter(zap.NewNop(), store, filepath.Join("testdata", "listings.csv"), "test", []string{"*"})
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandleMeta(t *testing.T) {
	router := testRouter(t)

	rr := performJSON(t, router, http.MethodGet, "/api/meta", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Version string         `json:"version"`
		Count   int            `json:"count"`
		Cities  []string       `json:"cities"`
		Bounds  dataset.Bounds `json:"bounds"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Version != "test" {
		t.Errorf("version = %q, expected %q", resp.Version, "test")
	}
	if resp.Count != 8 {
		t.Errorf("count = %d, expected 8", resp.Count)
	}
	if len(resp.Cities) != 5 {
		t.Errorf("cities = %v, expected 5 entries", resp.Cities)
	}
	if resp.Bounds.PriceMax != 2500 {
		t.Errorf("price max = %v, expected 2500", resp.Bounds.PriceMax)
	}
}

func TestHandleFilterSuccess(t *testing.T) {
	router := testRouter(t)

	rr := performJSON(t, router, http.MethodPost, "/api/filter", map[string]any{
		"keyword": "kemang",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp filterResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Empty {
		t.Fatal("expected a non-empty result")
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, expected 1 (keyword matches one location)", resp.Count)
	}
	if resp.Aggregates == nil {
		t.Fatal("expected aggregates in response")
	}
	if len(resp.Labels) != resp.Count {
		t.Errorf("labels = %d entries, expected %d", len(resp.Labels), resp.Count)
	}
	if !strings.Contains(resp.Labels[0], "[Jakarta Selatan]") {
		t.Errorf("label = %q, expected city prefix", resp.Labels[0])
	}
	if resp.Insight == "" {
		t.Error("expected highest-median-city insight")
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
}

func TestHandleFilterEmptyResult(t *testing.T) {
	router := testRouter(t)

	rr := performJSON(t, router, http.MethodPost, "/api/filter", map[string]any{
		"cities": []string{},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp filterResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !resp.Empty {
		t.Fatal("expected empty result for an empty city selection")
	}
	if resp.Message == "" {
		t.Error("expected a relax-filters message")
	}
	if resp.Aggregates != nil {
		t.Error("expected no aggregates on an empty result")
	}
}

func TestHandleFilterColumnProjection(t *testing.T) {
	router := testRouter(t)

	rr := performJSON(t, router, http.MethodPost, "/api/filter", map[string]any{
		"columns": []string{"city", "price"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp filterResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Rows) == 0 {
		t.Fatal("expected rows in response")
	}
	for i, row := range resp.Rows {
		if len(row) != 2 {
			t.Fatalf("row %d has %d columns, expected 2: %v", i, len(row), row)
		}
		if _, ok := row["city"]; !ok {
			t.Errorf("row %d missing projected city column", i)
		}
		if _, ok := row["title"]; ok {
			t.Errorf("row %d contains unselected title column", i)
		}
	}
}

func TestHandleFilterTopNClamped(t *testing.T) {
	router := testRouter(t)

	rr := performJSON(t, router, http.MethodPost, "/api/filter", map[string]any{
		"topN": 1000,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp filterResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// Seven listings survive the default bounds, fewer than the
	// clamped maximum of 30.
	if len(resp.TopListings) != resp.Count {
		t.Errorf("top listings = %d rows, expected %d", len(resp.TopListings), resp.Count)
	}
}

func TestHandleExport(t *testing.T) {
	router := testRouter(t)

	rr := performJSON(t, router, http.MethodPost, "/api/export", map[string]any{})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	if got := rr.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("content type = %q, expected text/csv", got)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "harga_rumah_filtered.csv") {
		t.Errorf("content disposition = %q, expected the fixed export filename", got)
	}

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if lines[0] != strings.Join(dataset.Columns(), ",") {
		t.Errorf("header row = %q, expected all columns", lines[0])
	}
	// Header plus the seven rows that satisfy the default bounds.
	if len(lines) != 8 {
		t.Errorf("export has %d lines, expected 8", len(lines))
	}
}

func TestHandleExportEmptyResult(t *testing.T) {
	router := testRouter(t)

	rr := performJSON(t, router, http.MethodPost, "/api/export", map[string]any{
		"cities": []string{},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleMortgageManual(t *testing.T) {
	router := testRouter(t)

	rr := performJSON(t, router, http.MethodPost, "/api/mortgage", map[string]any{
		"source":             "manual",
		"priceJuta":          1000,
		"downPaymentPercent": 20,
		"annualRatePercent":  8.0,
		"tenorYears":         15,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp mortgageResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Principal != 800_000_000 {
		t.Errorf("principal = %.2f, expected 800,000,000", resp.Principal)
	}
	if resp.Months != 180 {
		t.Errorf("months = %d, expected 180", resp.Months)
	}
	if resp.MonthlyPayment < 7_570_000 || resp.MonthlyPayment > 7_725_000 {
		t.Errorf("monthly payment = %.2f, outside the expected range", resp.MonthlyPayment)
	}
	if resp.TotalInterest <= 0 {
		t.Errorf("total interest = %.2f, expected > 0", resp.TotalInterest)
	}
	if !strings.HasPrefix(resp.MonthlyPaymentDisplay, "Rp ") {
		t.Errorf("payment display = %q, expected rupiah formatting", resp.MonthlyPaymentDisplay)
	}
}

func TestHandleMortgageFromListing(t *testing.T) {
	router := testRouter(t)

	rr := performJSON(t, router, http.MethodPost, "/api/mortgage", map[string]any{
		"source":       "listing",
		"listingIndex": 0,
		"criteria":     map[string]any{"keyword": "kemang"},

		"downPaymentPercent": 20,
		"annualRatePercent":  8.0,
		"tenorYears":         15,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp mortgageResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// The kemang listing is priced at 2500 juta.
	if resp.HousePrice != 2_500_000_000 {
		t.Errorf("house price = %.2f, expected 2,500,000,000", resp.HousePrice)
	}
	if resp.Listing == nil {
		t.Fatal("expected the selected listing in the response")
	}
	if (*resp.Listing)["city"] != "Jakarta Selatan" {
		t.Errorf("selected listing city = %v, expected Jakarta Selatan", (*resp.Listing)["city"])
	}
}

func TestHandleMortgageInvalidInput(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{
			name: "Down payment above declared range",
			payload: map[string]any{
				"source":             "manual",
				"priceJuta":          1000,
				"downPaymentPercent": 100,
				"annualRatePercent":  8.0,
				"tenorYears":         15,
			},
		},
		{
			name: "Zero tenor",
			payload: map[string]any{
				"source":             "manual",
				"priceJuta":          1000,
				"downPaymentPercent": 20,
				"annualRatePercent":  8.0,
				"tenorYears":         0,
			},
		},
		{
			name: "Listing index out of range",
			payload: map[string]any{
				"source":             "listing",
				"listingIndex":       99,
				"criteria":           map[string]any{"keyword": "kemang"},
				"downPaymentPercent": 20,
				"annualRatePercent":  8.0,
				"tenorYears":         15,
			},
		},
		{
			name: "Listing source with empty view",
			payload: map[string]any{
				"source":             "listing",
				"listingIndex":       0,
				"criteria":           map[string]any{"cities": []string{}},
				"downPaymentPercent": 20,
				"annualRatePercent":  8.0,
				"tenorYears":         15,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := performJSON(t, router, http.MethodPost, "/api/mortgage", tt.payload)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected status 422, got %d: %s", rr.Code, rr.Body.String())
			}

			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["error"] == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestHandleVersion(t *testing.T) {
	router := testRouter(t)

	rr := performJSON(t, router, http.MethodGet, "/api/version", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"test"`) {
		t.Errorf("body = %s, expected version", rr.Body.String())
	}
}

func TestMissingDataSource(t *testing.T) {
	store := dataset.NewStore(zap.NewNop())
	router := NewRouter(zap.NewNop(), store, filepath.Join("testdata", "missing.csv"), "test", []string{"*"})

	rr := performJSON(t, router, http.MethodGet, "/api/meta", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d: %s", rr.Code, rr.Body.String())
	}
}
