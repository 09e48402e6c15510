// Package server exposes the dashboard over HTTP: a JSON API for
// filtering, aggregates, CSV export, and the KPR simulation, plus the
// embedded web UI.
package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rumahdash/internal/dataset"
	"rumahdash/internal/filter"
	"rumahdash/pkg/constants"
	"rumahdash/pkg/format"
	"rumahdash/pkg/mortgage"
	"rumahdash/pkg/validation"
)

//go:embed static/*
var staticFiles embed.FS

type handler struct {
	logger   *zap.Logger
	store    *dataset.Store
	dataPath string
	version  string
}

// NewRouter constructs the Gin engine serving the dashboard API and
// embedded UI. Filter state lives entirely in each request, so
// concurrent sessions are isolated by construction; only the read-only
// dataset cache is shared.
func NewRouter(logger *zap.Logger, store *dataset.Store, dataPath, version string, allowedOrigins []string) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, store: store, dataPath: dataPath, version: trimmedVersion}

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	engine.Use(cors.New(corsConfig))

	api := engine.Group("/api")
	api.GET("/meta", h.handleMeta)
	api.POST("/filter", h.handleFilter)
	api.POST("/export", h.handleExport)
	api.POST("/mortgage", h.handleMortgage)
	api.GET("/version", h.handleVersion)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	engine.NoRoute(gin.WrapH(http.FileServer(http.FS(sub))))

	return engine
}

// criteriaRequest carries a full filter-criteria snapshot. Absent
// range bounds fall back to the dataset's own min/max; an absent city
// list means all cities, while a present-but-empty list matches no
// rows.
type criteriaRequest struct {
	Cities       *[]string `json:"cities"`
	PriceMin     *float64  `json:"priceMin"`
	PriceMax     *float64  `json:"priceMax"`
	AreaMin      *float64  `json:"areaMin"`
	AreaMax      *float64  `json:"areaMax"`
	MinBedrooms  *float64  `json:"minBedrooms"`
	MinBathrooms *float64  `json:"minBathrooms"`
	Keyword      string    `json:"keyword"`
}

func (r criteriaRequest) toCriteria(ds *dataset.Dataset) filter.Criteria {
	criteria := filter.DefaultCriteria(ds)
	if r.Cities != nil {
		criteria.Cities = append([]string(nil), (*r.Cities)...)
	}
	if r.PriceMin != nil {
		criteria.PriceMin = *r.PriceMin
	}
	if r.PriceMax != nil {
		criteria.PriceMax = *r.PriceMax
	}
	if r.AreaMin != nil {
		criteria.AreaMin = *r.AreaMin
	}
	if r.AreaMax != nil {
		criteria.AreaMax = *r.AreaMax
	}
	if r.MinBedrooms != nil {
		criteria.MinBedrooms = *r.MinBedrooms
	}
	if r.MinBathrooms != nil {
		criteria.MinBathrooms = *r.MinBathrooms
	}
	criteria.Keyword = r.Keyword
	return criteria
}

type filterRequest struct {
	criteriaRequest
	TopN    int      `json:"topN"`
	Columns []string `json:"columns"`
}

type filterResponse struct {
	Empty       bool               `json:"empty"`
	Message     string             `json:"message,omitempty"`
	Count       int                `json:"count"`
	Rows        []map[string]any   `json:"rows,omitempty"`
	Labels      []string           `json:"labels,omitempty"`
	Aggregates  *filter.Aggregates `json:"aggregates,omitempty"`
	TopListings []map[string]any   `json:"topListings,omitempty"`
	Insight     string             `json:"insight,omitempty"`
	Duration    string             `json:"duration"`
}

func (h *handler) handleMeta(c *gin.Context) {
	ds, ok := h.dataset(c, "server.handleMeta")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"version": h.version,
		"count":   len(ds.Listings),
		"cities":  ds.Cities,
		"bounds":  ds.Bounds,
		"columns": dataset.Columns(),
		"topN": gin.H{
			"min":     constants.MinTopListings,
			"max":     constants.MaxTopListings,
			"default": constants.DefaultTopListings,
		},
		"loan": gin.H{
			"downPaymentMin": constants.MinDownPaymentPercent,
			"downPaymentMax": constants.MaxDownPaymentPercent,
			"rateMin":        constants.MinAnnualRatePercent,
			"rateMax":        constants.MaxAnnualRatePercent,
			"tenorMin":       constants.MinTenorYears,
			"tenorMax":       constants.MaxTenorYears,
		},
	})
}

func (h *handler) handleFilter(c *gin.Context) {
	start := time.Now()

	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request: "+err.Error(), "server.handleFilter")
		return
	}

	ds, ok := h.dataset(c, "server.handleFilter")
	if !ok {
		return
	}

	view := filter.Apply(ds, req.toCriteria(ds))
	if view.Empty() {
		c.JSON(http.StatusOK, filterResponse{
			Empty:    true,
			Message:  "No listings match the current filters. Relax the filters and try again.",
			Duration: time.Since(start).String(),
		})
		return
	}

	aggregates, err := filter.Aggregate(view, validation.ClampTopN(req.TopN))
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, err.Error(), "server.handleFilter")
		return
	}

	columns := req.Columns
	if len(columns) == 0 {
		columns = dataset.Columns()
	}

	response := filterResponse{
		Count:       len(view.Rows),
		Rows:        projectRows(view.Rows, columns),
		Labels:      listingLabels(view),
		Aggregates:  &aggregates,
		TopListings: projectRows(aggregates.TopListings, dataset.Columns()),
		Duration:    time.Since(start).String(),
	}
	if top, ok := aggregates.TopCity(); ok {
		response.Insight = fmt.Sprintf("Highest median price: %s (~%s)", top.City, format.Juta(top.Value))
	}

	h.logger.Info("filter evaluated",
		zap.String("op", "server.handleFilter"),
		zap.Int("rows", response.Count),
		zap.Duration("duration", time.Since(start)),
	)
	c.JSON(http.StatusOK, response)
}

func (h *handler) handleExport(c *gin.Context) {
	var req criteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request: "+err.Error(), "server.handleExport")
		return
	}

	ds, ok := h.dataset(c, "server.handleExport")
	if !ok {
		return
	}

	view := filter.Apply(ds, req.toCriteria(ds))
	if view.Empty() {
		h.respondError(c, http.StatusUnprocessableEntity,
			"no listings match the current filters; nothing to export", "server.handleExport")
		return
	}

	listings := make([]dataset.Listing, len(view.Rows))
	for i, row := range view.Rows {
		listings[i] = row.Listing
	}

	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf, listings); err != nil {
		h.respondError(c, http.StatusInternalServerError, "failed to build export: "+err.Error(), "server.handleExport")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", constants.ExportFilename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

type mortgageRequest struct {
	// Source selects where the house price comes from: "manual" uses
	// PriceJuta directly, "listing" resolves ListingIndex against the
	// view produced by Criteria.
	Source       string          `json:"source"`
	PriceJuta    float64         `json:"priceJuta"`
	ListingIndex int             `json:"listingIndex"`
	Criteria     criteriaRequest `json:"criteria"`

	DownPaymentPercent float64 `json:"downPaymentPercent"`
	AnnualRatePercent  float64 `json:"annualRatePercent"`
	TenorYears         int     `json:"tenorYears"`
}

type mortgageResponse struct {
	Listing        *map[string]any `json:"listing,omitempty"`
	HousePrice     float64         `json:"housePrice"`
	DownPayment    float64         `json:"downPayment"`
	Principal      float64         `json:"principal"`
	MonthlyRate    float64         `json:"monthlyRate"`
	Months         int             `json:"months"`
	MonthlyPayment float64         `json:"monthlyPayment"`
	TotalPaid      float64         `json:"totalPaid"`
	TotalInterest  float64         `json:"totalInterest"`
	InterestRatio  float64         `json:"interestRatio"`

	HousePriceDisplay     string `json:"housePriceDisplay"`
	MonthlyPaymentDisplay string `json:"monthlyPaymentDisplay"`
}

// handleMortgage is the explicit "compute" action: nothing is
// recalculated until the client posts here.
func (h *handler) handleMortgage(c *gin.Context) {
	var req mortgageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request: "+err.Error(), "server.handleMortgage")
		return
	}

	priceJuta := req.PriceJuta
	var selected *map[string]any

	if req.Source == "listing" {
		ds, ok := h.dataset(c, "server.handleMortgage")
		if !ok {
			return
		}
		view := filter.Apply(ds, req.Criteria.toCriteria(ds))
		if view.Empty() {
			h.respondError(c, http.StatusUnprocessableEntity,
				"no listings match the current filters; relax the filters or enter a price manually", "server.handleMortgage")
			return
		}
		listing, err := view.Resolve(req.ListingIndex)
		if err != nil {
			h.respondError(c, http.StatusUnprocessableEntity, err.Error(), "server.handleMortgage")
			return
		}
		if listing.Price == nil {
			h.respondError(c, http.StatusUnprocessableEntity,
				"selected listing has no price; choose another listing", "server.handleMortgage")
			return
		}
		priceJuta = *listing.Price
		projected := projectListing(listing, dataset.Columns())
		selected = &projected
	}

	params := mortgage.Parameters{
		PriceJuta:          priceJuta,
		DownPaymentPercent: req.DownPaymentPercent,
		AnnualRatePercent:  req.AnnualRatePercent,
		TenorYears:         req.TenorYears,
	}
	if err := validation.ValidateLoanParameters(params); err != nil {
		h.respondError(c, http.StatusUnprocessableEntity, err.Error(), "server.handleMortgage")
		return
	}

	breakdown, err := mortgage.Calculate(params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mortgage.ErrInvalidLoanInput) {
			status = http.StatusUnprocessableEntity
		}
		h.respondError(c, status, err.Error(), "server.handleMortgage")
		return
	}

	c.JSON(http.StatusOK, mortgageResponse{
		Listing:               selected,
		HousePrice:            breakdown.HousePrice,
		DownPayment:           breakdown.DownPayment,
		Principal:             breakdown.Principal,
		MonthlyRate:           breakdown.MonthlyRate,
		Months:                breakdown.Months,
		MonthlyPayment:        breakdown.MonthlyPayment,
		TotalPaid:             breakdown.TotalPaid,
		TotalInterest:         breakdown.TotalInterest,
		InterestRatio:         breakdown.InterestRatio(),
		HousePriceDisplay:     format.Rupiah(breakdown.HousePrice),
		MonthlyPaymentDisplay: format.Rupiah(breakdown.MonthlyPayment),
	})
}

func (h *handler) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.version})
}

// dataset resolves the cached dataset, converting a missing source
// into a terminal error response for this request.
func (h *handler) dataset(c *gin.Context, op string) (*dataset.Dataset, bool) {
	ds, err := h.store.GetOrLoad(h.dataPath)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dataset.ErrMissingDataSource) {
			status = http.StatusServiceUnavailable
		}
		h.respondError(c, status, err.Error(), op)
		return nil, false
	}
	return ds, true
}

func (h *handler) respondError(c *gin.Context, status int, msg, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	c.JSON(status, gin.H{"error": msg})
}

func projectRows(rows []filter.Row, columns []string) []map[string]any {
	projected := make([]map[string]any, len(rows))
	for i, row := range rows {
		projected[i] = projectListing(row.Listing, columns)
	}
	return projected
}

func projectListing(l dataset.Listing, columns []string) map[string]any {
	row := make(map[string]any, len(columns))
	for _, column := range columns {
		switch column {
		case dataset.ColumnCity:
			row[column] = l.City
		case dataset.ColumnLocation:
			row[column] = l.Location
		case dataset.ColumnTitle:
			row[column] = l.Title
		default:
			if value := l.NumericField(column); value != nil {
				row[column] = *value
			} else {
				row[column] = nil
			}
		}
	}
	return row
}

// listingLabels builds the selector labels for the mortgage tab, one
// per view ordinal.
func listingLabels(view filter.View) []string {
	labels := make([]string, len(view.Rows))
	for i, row := range view.Rows {
		labels[i] = listingLabel(row.Listing)
	}
	return labels
}

func listingLabel(l dataset.Listing) string {
	location := l.Location
	if len(location) > constants.ListingLabelLocationLimit {
		location = location[:constants.ListingLabelLocationLimit]
	}
	price := "?"
	if l.Price != nil {
		price = format.Juta(*l.Price)
	}
	return fmt.Sprintf("[%s] %s... | %s", l.City, location, price)
}
