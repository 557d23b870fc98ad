package handler

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lumo-cinema/ticketing/internal/model"
	"github.com/lumo-cinema/ticketing/internal/pricing"
	"github.com/lumo-cinema/ticketing/internal/repository"
)

// CatalogHandler serves the provisioning endpoints: theaters, seat
// layouts, showtimes and customer profiles.  Layouts are created once
// per screen and are immutable afterwards; booking-time code never
// creates catalog rows on the fly.
type CatalogHandler struct {
	TheaterRepo  *repository.TheaterRepo
	LayoutRepo   *repository.SeatLayoutRepo
	ShowtimeRepo *repository.ShowtimeRepo
	CustomerRepo *repository.CustomerRepo
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(theaterRepo *repository.TheaterRepo, layoutRepo *repository.SeatLayoutRepo, showtimeRepo *repository.ShowtimeRepo, customerRepo *repository.CustomerRepo) *CatalogHandler {
	if theaterRepo == nil || layoutRepo == nil || showtimeRepo == nil || customerRepo == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{
		TheaterRepo:  theaterRepo,
		LayoutRepo:   layoutRepo,
		ShowtimeRepo: showtimeRepo,
		CustomerRepo: customerRepo,
	}
}

// CreateTheater handles POST /v1/theaters.
func (h *CatalogHandler) CreateTheater(c echo.Context) error {
	var body struct {
		Name        string `json:"name"`
		Address     string `json:"address"`
		City        string `json:"city"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	t := &model.Theater{
		Name:        body.Name,
		Address:     body.Address,
		City:        body.City,
		PhoneNumber: body.PhoneNumber,
		IsActive:    true,
	}
	if err := h.TheaterRepo.Create(c.Request().Context(), t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create theater"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":   t.ID,
		"name": t.Name,
		"city": t.City,
	})
}

// ListTheaters handles GET /v1/theaters, returning active theaters.
func (h *CatalogHandler) ListTheaters(c echo.Context) error {
	theaters, err := h.TheaterRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load theaters"})
	}
	items := make([]echo.Map, 0, len(theaters))
	for i := range theaters {
		t := &theaters[i]
		items = append(items, echo.Map{
			"id":           t.ID,
			"name":         t.Name,
			"address":      t.Address,
			"city":         t.City,
			"phone_number": t.PhoneNumber,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// seatOverride customizes one seat of a new layout away from the
// standard defaults.
type seatOverride struct {
	SeatID             string  `json:"seat_id"`
	SeatType           string  `json:"seat_type"`
	PriceMultiplierPct *uint32 `json:"price_multiplier_pct"`
	IsActive           *bool   `json:"is_active"`
}

// CreateLayout handles POST /v1/theaters/:id/layouts.  The body carries
// the row configuration (row letter to seat count) plus optional per-seat
// overrides for type, multiplier and active flag.  Every seat defaults to
// an active standard seat at face value.
func (h *CatalogHandler) CreateLayout(c echo.Context) error {
	theaterID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid theater id"})
	}
	var body struct {
		ScreenNumber  uint32            `json:"screen_number"`
		Name          string            `json:"name"`
		Rows          map[string]uint32 `json:"rows"`
		SeatOverrides []seatOverride    `json:"seat_overrides"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ScreenNumber == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "screen_number is required"})
	}
	if len(body.Rows) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows is required"})
	}
	for row, count := range body.Rows {
		if len(row) != 1 || row[0] < 'A' || row[0] > 'Z' {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "row label must be a single uppercase letter", "row": row})
		}
		if count == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "row must have at least one seat", "row": row})
		}
	}
	ctx := c.Request().Context()
	if _, err := h.TheaterRepo.GetByID(ctx, theaterID); err != nil {
		if errors.Is(err, repository.ErrTheaterNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	seats, totalSeats, err := buildLayoutSeats(body.Rows, body.SeatOverrides)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	layout := &model.SeatLayout{
		TheaterID:        theaterID,
		ScreenNumber:     body.ScreenNumber,
		Name:             body.Name,
		TotalRows:        uint32(len(body.Rows)),
		TotalSeats:       totalSeats,
		RowConfiguration: body.Rows,
	}
	if err := h.LayoutRepo.CreateWithSeats(ctx, layout, seats); err != nil {
		if errors.Is(err, repository.ErrLayoutExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "layout already exists for this screen"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create layout"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":          layout.ID,
		"theater_id":  layout.TheaterID,
		"screen":      layout.ScreenNumber,
		"total_rows":  layout.TotalRows,
		"total_seats": layout.TotalSeats,
	})
}

// buildLayoutSeats expands a row configuration into concrete seats,
// applying the overrides.  Rows are emitted in alphabetical order so
// seat listings are stable.
func buildLayoutSeats(rows map[string]uint32, overrides []seatOverride) ([]model.Seat, uint32, error) {
	byID := make(map[string]seatOverride, len(overrides))
	for _, ov := range overrides {
		if _, _, err := model.ParseSeatID(ov.SeatID); err != nil {
			return nil, 0, errors.New("malformed seat_id in seat_overrides: " + ov.SeatID)
		}
		if ov.SeatType != "" && !model.ValidSeatType(ov.SeatType) {
			return nil, 0, errors.New("unknown seat type: " + ov.SeatType)
		}
		byID[ov.SeatID] = ov
	}
	labels := make([]string, 0, len(rows))
	for row := range rows {
		labels = append(labels, row)
	}
	sort.Strings(labels)

	var seats []model.Seat
	var total uint32
	for _, row := range labels {
		for n := uint32(1); n <= rows[row]; n++ {
			seat := model.Seat{
				Row:                row,
				Number:             n,
				SeatType:           model.SeatTypeStandard,
				PriceMultiplierPct: 100,
				IsActive:           true,
			}
			if ov, ok := byID[seat.Identifier()]; ok {
				if ov.SeatType != "" {
					seat.SeatType = ov.SeatType
				}
				if ov.PriceMultiplierPct != nil {
					seat.PriceMultiplierPct = *ov.PriceMultiplierPct
				}
				if ov.IsActive != nil {
					seat.IsActive = *ov.IsActive
				}
				delete(byID, seat.Identifier())
			}
			seats = append(seats, seat)
			total++
		}
	}
	for id := range byID {
		return nil, 0, errors.New("seat_overrides references a seat outside the layout: " + id)
	}
	return seats, total, nil
}

// CreateShowtime handles POST /v1/showtimes.  When a seat layout exists
// for the target screen the showtime is linked to it and inherits its
// capacity; otherwise total_seats is required and the showtime sells a
// plain counter.
func (h *CatalogHandler) CreateShowtime(c echo.Context) error {
	var body struct {
		MovieTitle       string `json:"movie_title"`
		TheaterID        uint64 `json:"theater_id"`
		ScreenNumber     uint32 `json:"screen_number"`
		StartsAt         string `json:"starts_at"`
		TotalSeats       uint32 `json:"total_seats"`
		TicketPriceCents int64  `json:"ticket_price_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.MovieTitle == "" || body.TheaterID == 0 || body.ScreenNumber == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_title, theater_id and screen_number are required"})
	}
	if body.TicketPriceCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_price_cents must be positive"})
	}
	startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	startsAt = startsAt.UTC()
	if !startsAt.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be in the future"})
	}

	ctx := c.Request().Context()
	if _, err := h.TheaterRepo.GetByID(ctx, body.TheaterID); err != nil {
		if errors.Is(err, repository.ErrTheaterNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	st := &model.Showtime{
		MovieTitle:       body.MovieTitle,
		TheaterID:        body.TheaterID,
		ScreenNumber:     body.ScreenNumber,
		StartsAt:         startsAt,
		TotalSeats:       body.TotalSeats,
		TicketPriceCents: body.TicketPriceCents,
		IsActive:         true,
	}
	layout, err := h.LayoutRepo.GetByTheaterScreen(ctx, body.TheaterID, body.ScreenNumber)
	switch {
	case err == nil:
		st.LayoutID = &layout.ID
		st.TotalSeats = layout.TotalSeats
	case errors.Is(err, repository.ErrLayoutNotFound):
		if body.TotalSeats == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats is required for screens without a layout"})
		}
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := h.ShowtimeRepo.Create(ctx, st); err != nil {
		if errors.Is(err, repository.ErrShowtimeExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "showtime already scheduled for this screen and time"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create showtime"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":              st.ID,
		"movie_title":     st.MovieTitle,
		"starts_at":       st.StartsAt.Format(time.RFC3339),
		"total_seats":     st.TotalSeats,
		"available_seats": st.AvailableSeats,
		"ticket_price":    pricing.FormatCents(st.TicketPriceCents),
		"has_seat_map":    st.HasSeatMap(),
	})
}

// ListShowtimes handles GET /v1/showtimes, returning upcoming active
// showtimes in start order.
func (h *CatalogHandler) ListShowtimes(c echo.Context) error {
	showtimes, err := h.ShowtimeRepo.ListUpcoming(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load showtimes"})
	}
	items := make([]echo.Map, 0, len(showtimes))
	for i := range showtimes {
		st := &showtimes[i]
		items = append(items, echo.Map{
			"id":              st.ID,
			"movie_title":     st.MovieTitle,
			"theater_id":      st.TheaterID,
			"screen":          st.ScreenNumber,
			"starts_at":       st.StartsAt.UTC().Format(time.RFC3339),
			"available_seats": st.AvailableSeats,
			"total_seats":     st.TotalSeats,
			"ticket_price":    pricing.FormatCents(st.TicketPriceCents),
			"has_seat_map":    st.HasSeatMap(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateCustomer handles POST /v1/customers.  Profiles mirror accounts
// in the external identity service; when no external id is supplied one
// is generated.
func (h *CatalogHandler) CreateCustomer(c echo.Context) error {
	var body struct {
		ExternalID    string `json:"external_id"`
		FullName      string `json:"full_name"`
		Email         string `json:"email"`
		LoyaltyPoints uint32 `json:"loyalty_points"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.FullName == "" || body.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name and email are required"})
	}
	if body.ExternalID == "" {
		body.ExternalID = uuid.NewString()
	}
	cust := &model.Customer{
		ExternalID:    body.ExternalID,
		FullName:      body.FullName,
		Email:         body.Email,
		LoyaltyPoints: body.LoyaltyPoints,
	}
	ctx := c.Request().Context()
	if err := h.CustomerRepo.Create(ctx, cust); err != nil {
		if errors.Is(err, repository.ErrCustomerExists) {
			resp := echo.Map{"error": "customer already exists"}
			if existing, lookupErr := h.CustomerRepo.GetByExternalID(ctx, body.ExternalID); lookupErr == nil {
				resp["id"] = existing.ID
			}
			return c.JSON(http.StatusConflict, resp)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create customer"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":             cust.ID,
		"external_id":    cust.ExternalID,
		"full_name":      cust.FullName,
		"email":          cust.Email,
		"loyalty_points": cust.LoyaltyPoints,
	})
}
