package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	bookdomain "github.com/smallbiznis/zoonova/internal/book/domain"
	"github.com/smallbiznis/zoonova/internal/clock"
	countrydomain "github.com/smallbiznis/zoonova/internal/country/domain"
	"github.com/smallbiznis/zoonova/internal/observability/metrics"
	"github.com/smallbiznis/zoonova/internal/order/domain"
	"github.com/smallbiznis/zoonova/internal/shipping"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Books     bookdomain.Repository
	Countries countrydomain.Repository
	Notifier  domain.Notifier
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	books     bookdomain.Repository
	countries countrydomain.Repository
	notifier  domain.Notifier
	metrics   *metrics.Metrics
	validate  *validator.Validate
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("order.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		books:     p.Books,
		countries: p.Countries,
		notifier:  p.Notifier,
		metrics:   p.Metrics,
		validate:  validator.New(),
	}
}

type line struct {
	bookID   int64
	quantity int
}

// Create places an order in a single transaction: validation, snapshot of
// titles and prices, shipping, persistence and a guarded stock decrement per
// book. Nothing is written unless every line can be served.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	order, err := s.buildOrder(req)
	if err != nil {
		return nil, err
	}
	countryID, err := snowflake.ParseString(strings.TrimSpace(req.CountryID))
	if err != nil || countryID.Int64() <= 0 {
		return nil, domain.ErrInvalidCountry
	}
	order.CountryID = countryID.Int64()

	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}

	var detail domain.Detail
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		country, err := s.countries.FindByID(ctx, tx, order.CountryID)
		if err != nil {
			return err
		}
		if country == nil || !country.IsActive {
			return domain.ErrInvalidCountry
		}

		books, err := s.books.FindByIDs(ctx, tx, lo.Map(lines, func(l line, _ int) int64 { return l.bookID }))
		if err != nil {
			return err
		}
		byID := lo.KeyBy(books, func(b bookdomain.Book) int64 { return b.ID })

		items := make([]domain.OrderItem, 0, len(lines))
		for _, l := range lines {
			book, ok := byID[l.bookID]
			if !ok || !book.IsActive {
				return domain.ErrBookNotFound
			}
			if l.quantity > book.Quantity {
				return domain.ErrInsufficientStock
			}
			items = append(items, domain.OrderItem{
				ID:        s.genID.Generate().Int64(),
				OrderID:   order.ID,
				BookID:    book.ID,
				BookTitle: book.Title,
				UnitPrice: book.Price,
				Quantity:  l.quantity,
			})
		}

		order.Subtotal = lo.SumBy(items, func(i domain.OrderItem) int64 { return i.Subtotal() })
		order.ShippingCost = shipping.Cost(country.Name, shipping.CountBooks(items))
		order.Total = order.Subtotal + order.ShippingCost

		if err := s.repo.Insert(ctx, tx, order); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}

		for _, l := range lines {
			affected, err := s.books.DecrementStock(ctx, tx, l.bookID, l.quantity, order.CreatedAt)
			if err != nil {
				return err
			}
			if affected == 0 {
				return domain.ErrInsufficientStock
			}
		}

		detail = domain.Detail{Order: *order, Items: items, Country: *country}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.metrics.RecordStockConflict(ctx)
		}
		return nil, err
	}

	s.log.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("total", order.Total),
		zap.Int("lines", len(detail.Items)),
	)
	s.metrics.RecordOrderCreated(ctx, detail.Country.Name)
	s.notifier.OrderPlaced(ctx, detail)

	resp := toResponse(detail)
	return &resp, nil
}

func (s *Service) buildOrder(req domain.CreateRequest) (*domain.Order, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Var(email, "required,email,max=254"); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if first == "" || last == "" {
		return nil, domain.ErrInvalidName
	}
	street := strings.TrimSpace(req.Street)
	postal := strings.TrimSpace(req.PostalCode)
	city := strings.TrimSpace(req.City)
	if street == "" || postal == "" || city == "" {
		return nil, domain.ErrInvalidAddress
	}

	now := s.clock.Now()
	return &domain.Order{
		ID:                s.genID.Generate().Int64(),
		Email:             email,
		FirstName:         first,
		LastName:          last,
		Phone:             strings.TrimSpace(req.Phone),
		Street:            street,
		StreetNumber:      strings.TrimSpace(req.StreetNumber),
		AddressComplement: strings.TrimSpace(req.AddressComplement),
		PostalCode:        postal,
		City:              city,
		Status:            domain.StatusPending,
		Notes:             strings.TrimSpace(req.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// mergeLines validates requested lines and folds repeated books into one line,
// keeping first-seen order.
func mergeLines(items []domain.ItemRequest) ([]line, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	merged := make([]line, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		id, err := snowflake.ParseString(strings.TrimSpace(item.BookID))
		if err != nil || id.Int64() <= 0 {
			return nil, domain.ErrBookNotFound
		}
		if pos, ok := index[id.Int64()]; ok {
			merged[pos].quantity += item.Quantity
			continue
		}
		index[id.Int64()] = len(merged)
		merged = append(merged, line{bookID: id.Int64(), quantity: item.Quantity})
	}
	return merged, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	detail, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(*detail)
	return &resp, nil
}

func (s *Service) Detail(ctx context.Context, id string) (*domain.Detail, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, orderID)
}

func (s *Service) loadDetail(ctx context.Context, orderID int64) (*domain.Detail, error) {
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	items, err := s.repo.FindItems(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	country, err := s.countries.FindByID(ctx, s.db, order.CountryID)
	if err != nil {
		return nil, err
	}
	detail := &domain.Detail{Order: *order, Items: items}
	if country != nil {
		detail.Country = *country
	}
	return detail, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{
		Search:    strings.TrimSpace(req.Search),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		SortBy:    strings.TrimSpace(req.SortBy),
		OrderBy:   strings.TrimSpace(req.OrderBy),
	}
	if status := strings.ToLower(strings.TrimSpace(req.Status)); status != "" {
		filter.Status = domain.Status(status)
		if !filter.Status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
	}
	if raw := strings.TrimSpace(req.CountryID); raw != "" {
		countryID, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidCountry
		}
		filter.CountryID = countryID.Int64()
	}

	orders, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.FindItemsForOrders(ctx, s.db, lo.Map(orders, func(o domain.Order, _ int) int64 { return o.ID }))
	if err != nil {
		return nil, err
	}
	itemsByOrder := lo.GroupBy(items, func(i domain.OrderItem) int64 { return i.OrderID })

	countries, err := s.countries.List(ctx, s.db, false)
	if err != nil {
		return nil, err
	}
	countryByID := lo.KeyBy(countries, func(c countrydomain.Country) int64 { return c.ID })

	resp := make([]domain.Response, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toResponse(domain.Detail{
			Order:   o,
			Items:   itemsByOrder[o.ID],
			Country: countryByID[o.CountryID],
		}))
	}
	return resp, nil
}

// UpdateStatus applies a fulfillment update. delivered_at is stamped on the
// first transition into delivered and the transition cannot be undone.
func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (*domain.Response, error) {
	orderID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var (
		detail *domain.Detail
		change domain.StatusChange
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}

		change.Previous = order.Status
		now := s.clock.Now()

		if req.Status != nil {
			next := domain.Status(strings.ToLower(strings.TrimSpace(*req.Status)))
			if !next.Valid() {
				return domain.ErrInvalidStatus
			}
			if order.Status == domain.StatusDelivered && next == domain.StatusPending {
				return domain.ErrInvalidTransition
			}
			if next == domain.StatusDelivered && order.DeliveredAt == nil {
				order.DeliveredAt = &now
			}
			order.Status = next
		}

		trackingProvided := false
		if req.TrackingNumber != nil {
			tracking := strings.TrimSpace(*req.TrackingNumber)
			if tracking == "" {
				order.TrackingNumber = nil
			} else {
				order.TrackingNumber = &tracking
				trackingProvided = true
			}
		}
		if req.Notes != nil {
			order.Notes = strings.TrimSpace(*req.Notes)
		}
		order.UpdatedAt = now

		if err := s.repo.UpdateFulfillment(ctx, tx, order); err != nil {
			return err
		}

		change.Current = order.Status
		change.Email = statusEmail(change.Previous != change.Current, trackingProvided, order)

		items, err := s.repo.FindItems(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		detail = &domain.Detail{Order: *order, Items: items}
		country, err := s.countries.FindByID(ctx, tx, order.CountryID)
		if err != nil {
			return err
		}
		if country != nil {
			detail.Country = *country
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order status updated",
		zap.Int64("order_id", orderID),
		zap.String("previous", string(change.Previous)),
		zap.String("current", string(change.Current)),
		zap.String("email", string(change.Email)),
	)
	if change.Email != domain.StatusEmailNone || change.Previous != change.Current {
		s.notifier.OrderStatusChanged(ctx, *detail, change)
	}

	resp := toResponse(*detail)
	return &resp, nil
}

func statusEmail(statusChanged, trackingProvided bool, order *domain.Order) domain.StatusEmail {
	if !statusChanged && !trackingProvided {
		return domain.StatusEmailNone
	}
	if order.Status == domain.StatusDelivered {
		return domain.StatusEmailDelivered
	}
	if order.TrackingNumber != nil {
		return domain.StatusEmailShipped
	}
	return domain.StatusEmailNone
}

func (s *Service) Statistics(ctx context.Context) (*domain.Statistics, error) {
	all, err := s.repo.Totals(ctx, s.db, nil)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.CountByStatus(ctx, s.db)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	month, err := s.repo.Totals(ctx, s.db, &monthStart)
	if err != nil {
		return nil, err
	}

	for _, st := range []domain.Status{domain.StatusPending, domain.StatusDelivered} {
		if _, ok := byStatus[st]; !ok {
			byStatus[st] = 0
		}
	}

	return &domain.Statistics{
		TotalOrders:         all.Orders,
		TotalRevenue:        all.Revenue,
		OrdersByStatus:      byStatus,
		CurrentMonthOrders:  month.Orders,
		CurrentMonthRevenue: month.Revenue,
	}, nil
}

func parseID(id string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed.Int64() <= 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}

func toResponse(d domain.Detail) domain.Response {
	o := d.Order
	resp := domain.Response{
		ID:                      snowflake.ID(o.ID).String(),
		Email:                   o.Email,
		FirstName:               o.FirstName,
		LastName:                o.LastName,
		FullName:                o.FullName(),
		Phone:                   o.Phone,
		Street:                  o.Street,
		StreetNumber:            o.StreetNumber,
		AddressComplement:       o.AddressComplement,
		PostalCode:              o.PostalCode,
		City:                    o.City,
		FullAddress:             d.FullAddress(),
		Subtotal:                o.Subtotal,
		ShippingCost:            o.ShippingCost,
		Total:                   o.Total,
		Status:                  o.Status,
		StripePaymentIntentID:   o.StripePaymentIntentID,
		StripeCheckoutSessionID: o.StripeCheckoutSessionID,
		TrackingNumber:          o.TrackingNumber,
		DeliveredAt:             o.DeliveredAt,
		Notes:                   o.Notes,
		Items:                   make([]domain.ItemResponse, 0, len(d.Items)),
		TotalItems:              shipping.CountBooks(d.Items),
		CreatedAt:               o.CreatedAt,
		UpdatedAt:               o.UpdatedAt,
	}
	if d.Country.ID != 0 {
		resp.Country = domain.CountryRef{
			ID:   snowflake.ID(d.Country.ID).String(),
			Name: d.Country.Name,
			Code: d.Country.Code,
		}
	}
	for _, item := range d.Items {
		resp.Items = append(resp.Items, domain.ItemResponse{
			ID:        snowflake.ID(item.ID).String(),
			BookID:    snowflake.ID(item.BookID).String(),
			BookTitle: item.BookTitle,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		})
	}
	return resp
}
