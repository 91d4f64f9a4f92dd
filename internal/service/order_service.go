package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/logger"
	"storefront-api/internal/models"
)

const maxOrderNumberAttempts = 5

var errOrderConflict = apperrors.Conflict("Order was modified by another request, reload and try again")

// OrderDeps agrupa las dependencias de OrderService; Events, Cache y
// Recorder son opcionales
type OrderDeps struct {
	Products ProductStore
	Orders   OrderStore
	Counters CounterStore
	Users    UserStore
	Events   EventPublisher
	Cache    CatalogCache
	Recorder Recorder
}

// OrderService coordina pedidos y stock. Cada reserva es un decremento
// condicional atómico; si un paso posterior falla se devuelve lo reservado.
type OrderService struct {
	products ProductStore
	orders   OrderStore
	counters CounterStore
	users    UserStore
	events   EventPublisher
	cache    CatalogCache
	recorder Recorder
	now      func() time.Time
}

func NewOrderService(deps OrderDeps) *OrderService {
	s := &OrderService{
		products: deps.Products,
		orders:   deps.Orders,
		counters: deps.Counters,
		users:    deps.Users,
		events:   deps.Events,
		cache:    deps.Cache,
		recorder: deps.Recorder,
		now:      time.Now,
	}
	if s.events == nil {
		s.events = nopPublisher{}
	}
	if s.cache == nil {
		s.cache = nopCache{}
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	return s
}

type requestedLine struct {
	productID primitive.ObjectID
	quantity  int
}

func parseLines(lines []models.OrderLine) ([]requestedLine, error) {
	if len(lines) == 0 {
		return nil, apperrors.Validation("items", "order must contain at least one item")
	}

	parsed := make([]requestedLine, 0, len(lines))
	for _, line := range lines {
		id, err := parseID("productId", line.ProductID)
		if err != nil {
			return nil, err
		}
		if line.Quantity < 1 {
			return nil, apperrors.Validation("quantity", "quantity must be at least 1")
		}
		parsed = append(parsed, requestedLine{productID: id, quantity: line.Quantity})
	}
	return parsed, nil
}

// reserveItems reserva las líneas en orden. Si alguna falla se liberan las
// que ya se habían reservado y no queda ningún efecto.
func (s *OrderService) reserveItems(ctx context.Context, lines []requestedLine) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := s.products.Reserve(ctx, line.productID, line.quantity)
		if err != nil {
			s.releaseItems(ctx, items)

			var stockErr *apperrors.InsufficientStockError
			if errors.As(err, &stockErr) {
				s.recorder.StockRejected("insufficient_stock")
			}
			return nil, apperrors.Internal("reserve stock", err)
		}
		items = append(items, models.OrderItem{
			ID:        primitive.NewObjectID(),
			ProductID: product.ID,
			Quantity:  line.quantity,
			Price:     product.Price,
		})
	}
	return items, nil
}

// releaseItems devuelve el stock de cada línea. Los productos que ya no
// existen se omiten. Devuelve las líneas efectivamente liberadas.
func (s *OrderService) releaseItems(ctx context.Context, items []models.OrderItem) []models.OrderItem {
	ctx = detached(ctx)
	log := logger.FromContext(ctx)

	released := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		err := s.products.Release(ctx, item.ProductID, item.Quantity)
		var notFound *apperrors.NotFoundError
		switch {
		case err == nil:
			released = append(released, item)
		case errors.As(err, &notFound):
			log.Debug("product no longer exists, skipping stock release",
				zap.String("product_id", item.ProductID.Hex()))
		default:
			log.Error("failed to release stock",
				zap.String("product_id", item.ProductID.Hex()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
	return released
}

// restoreItems vuelve a reservar líneas liberadas cuando una operación se
// revierte. Es best effort: si el stock ya no alcanza solo se registra.
func (s *OrderService) restoreItems(ctx context.Context, items []models.OrderItem) {
	ctx = detached(ctx)
	log := logger.FromContext(ctx)

	for _, item := range items {
		if _, err := s.products.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			log.Warn("could not re-reserve stock after rollback",
				zap.String("product_id", item.ProductID.Hex()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

// PlaceOrder reserva stock, asigna número y guarda el pedido en estado Pending
func (s *OrderService) PlaceOrder(ctx context.Context, customerID primitive.ObjectID, input models.PlaceOrderInput) (*models.Order, error) {
	lines, err := parseLines(input.Items)
	if err != nil {
		return nil, err
	}

	items, err := s.reserveItems(ctx, lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		CustomerID:      customerID,
		Items:           items,
		TotalAmount:     models.OrderTotal(items),
		Status:          models.OrderStatusPending,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.insertNumbered(ctx, order); err != nil {
		s.releaseItems(ctx, items)
		return nil, err
	}

	logger.FromContext(ctx).Info("order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total_amount", order.TotalAmount))

	s.recorder.OrderPlaced(order.TotalAmount)
	s.afterChange(ctx, EventOrderPlaced, order)
	return order, nil
}

// insertNumbered toma el siguiente número de la secuencia e inserta. El
// índice único de orderNumber es la última barrera; ante colisión se pide
// otro número.
func (s *OrderService) insertNumbered(ctx context.Context, order *models.Order) error {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		seq, err := s.counters.Next(ctx, OrderSequence)
		if err != nil {
			return apperrors.Internal("next order number", err)
		}
		order.OrderNumber = models.FormatOrderNumber(seq)

		err = s.orders.Insert(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateOrderNumber) {
			return apperrors.Internal("insert order", err)
		}
		logger.FromContext(ctx).Warn("order number collision, retrying",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt))
	}
	return apperrors.Internal("insert order", ErrDuplicateOrderNumber)
}

// UpdateOrder cambia estado, direcciones y opcionalmente reemplaza las
// líneas. Al reemplazar se libera el stock viejo y se reserva el nuevo; si
// algo falla se intenta dejar el stock como estaba.
func (s *OrderService) UpdateOrder(ctx context.Context, rawID string, update models.OrderUpdate) (*models.Order, error) {
	id, err := parseID("id", rawID)
	if err != nil {
		return nil, err
	}

	if update.Status != nil && *update.Status != "" && !update.Status.Valid() {
		return nil, apperrors.Validation("status", "invalid order status: %q", *update.Status)
	}

	var lines []requestedLine
	if update.Items != nil {
		if lines, err = parseLines(update.Items); err != nil {
			return nil, err
		}
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("find order", err)
	}

	var oldReleased, newItems []models.OrderItem
	if lines != nil {
		oldReleased = s.releaseItems(ctx, order.Items)

		newItems, err = s.reserveItems(ctx, lines)
		if err != nil {
			s.restoreItems(ctx, oldReleased)
			return nil, err
		}
		order.Items = newItems
		order.TotalAmount = models.OrderTotal(newItems)
	}

	if update.Status != nil && *update.Status != "" {
		order.Status = *update.Status
	}
	if update.ShippingAddress != nil {
		order.ShippingAddress = update.ShippingAddress
	}
	if update.BillingAddress != nil {
		order.BillingAddress = update.BillingAddress
	}
	order.UpdatedAt = s.now()

	if err := s.orders.Replace(ctx, order); err != nil {
		if lines != nil {
			s.releaseItems(ctx, newItems)
			s.restoreItems(ctx, oldReleased)
		}
		if errors.Is(err, ErrOrderModified) {
			return nil, errOrderConflict
		}
		return nil, apperrors.Internal("update order", err)
	}

	s.afterChange(ctx, EventOrderUpdated, order)
	return order, nil
}

// DeleteOrder devuelve el stock de las líneas y borra el pedido
func (s *OrderService) DeleteOrder(ctx context.Context, rawID string) error {
	id, err := parseID("id", rawID)
	if err != nil {
		return err
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return apperrors.Internal("find order", err)
	}

	released := s.releaseItems(ctx, order.Items)
	if err := s.orders.Delete(ctx, order); err != nil {
		s.restoreItems(ctx, released)
		if errors.Is(err, ErrOrderModified) {
			return errOrderConflict
		}
		return apperrors.Internal("delete order", err)
	}

	logger.FromContext(ctx).Info("order deleted",
		zap.String("order_id", order.ID.Hex()),
		zap.String("order_number", order.OrderNumber))

	s.afterChange(ctx, EventOrderDeleted, order)
	return nil
}

// afterChange publica el evento e invalida el catálogo cacheado, cuyo stock
// cambió. Los fallos solo se registran: el pedido ya está persistido.
func (s *OrderService) afterChange(ctx context.Context, eventType string, order *models.Order) {
	log := logger.FromContext(ctx)
	if err := s.events.Publish(ctx, eventType, order); err != nil {
		log.Warn("failed to publish order event", zap.String("event", eventType), zap.Error(err))
	}
	if err := s.cache.DeleteByPrefix(ctx, catalogCachePrefix); err != nil {
		log.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

// OrderListParams son los filtros crudos del listado de administración
type OrderListParams struct {
	Status     string
	CustomerID string
	ProductID  string
	StartDate  string
	EndDate    string
	Sort       string
	Page       int
	Limit      int
}

type OrderPage struct {
	Orders     []models.OrderView `json:"orders"`
	Pagination models.Pagination  `json:"pagination"`
}

func (s *OrderService) ListOrders(ctx context.Context, params OrderListParams) (*OrderPage, error) {
	filter := models.OrderFilter{
		Status: models.OrderStatus(params.Status),
		Sort:   params.Sort,
	}

	var err error
	if filter.CustomerID, err = parseOptionalID("customerId", params.CustomerID); err != nil {
		return nil, err
	}
	if filter.ProductID, err = parseOptionalID("productId", params.ProductID); err != nil {
		return nil, err
	}
	if filter.StartDate, err = parseDate("startDate", params.StartDate, false); err != nil {
		return nil, err
	}
	if filter.EndDate, err = parseDate("endDate", params.EndDate, true); err != nil {
		return nil, err
	}

	page := models.NewPage(params.Page, params.Limit, defaultOrderPageSize)
	orders, total, err := s.orders.Find(ctx, filter, &page)
	if err != nil {
		return nil, apperrors.Internal("list orders", err)
	}

	views, err := s.populate(ctx, orders, true)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: views, Pagination: page.Paginate(total)}, nil
}

// MyOrdersParams filtra los pedidos del propio cliente
type MyOrdersParams struct {
	Search string
	Status string
	Sort   string
}

func (s *OrderService) MyOrders(ctx context.Context, customerID primitive.ObjectID, params MyOrdersParams) ([]models.OrderView, error) {
	filter := models.OrderFilter{
		Status:     models.OrderStatus(params.Status),
		CustomerID: &customerID,
		Sort:       params.Sort,
	}

	if params.Search != "" {
		ids, err := s.products.FindIDsByName(ctx, params.Search)
		if err != nil {
			return nil, apperrors.Internal("search products", err)
		}
		// sin coincidencias el $in vacío no devuelve pedidos
		filter.ProductIn = append([]primitive.ObjectID{}, ids...)
	}

	orders, _, err := s.orders.Find(ctx, filter, nil)
	if err != nil {
		return nil, apperrors.Internal("list my orders", err)
	}
	return s.populate(ctx, orders, false)
}

func (s *OrderService) GetOrder(ctx context.Context, rawID string) (*models.OrderView, error) {
	id, err := parseID("id", rawID)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("find order", err)
	}

	views, err := s.populate(ctx, []*models.Order{order}, true)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// View devuelve el pedido con productos poblados, sin datos del cliente
func (s *OrderService) View(ctx context.Context, order *models.Order) (*models.OrderView, error) {
	views, err := s.populate(ctx, []*models.Order{order}, false)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *OrderService) Stats(ctx context.Context) (*models.OrderStats, error) {
	stats, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal("order stats", err)
	}
	if stats.StatusBreakdown == nil {
		stats.StatusBreakdown = []models.StatusBreakdown{}
	}
	return stats, nil
}

// SyncOrderSequence sube el contador al mayor número de pedido guardado (o
// al total de pedidos si es mayor), para bases creadas antes de que
// existiera la secuencia o con pedidos borrados
func (s *OrderService) SyncOrderSequence(ctx context.Context) error {
	count, err := s.orders.Count(ctx)
	if err != nil {
		return err
	}
	highest, err := s.orders.HighestOrderSequence(ctx)
	if err != nil {
		return err
	}
	return s.counters.EnsureAtLeast(ctx, OrderSequence, max(count, highest))
}

// populate reemplaza ids por resúmenes de producto (y cliente). Las
// referencias a documentos borrados quedan como el id.
func (s *OrderService) populate(ctx context.Context, orders []*models.Order, withCustomer bool) ([]models.OrderView, error) {
	productSet := map[primitive.ObjectID]struct{}{}
	customerSet := map[primitive.ObjectID]struct{}{}
	for _, order := range orders {
		customerSet[order.CustomerID] = struct{}{}
		for _, item := range order.Items {
			productSet[item.ProductID] = struct{}{}
		}
	}

	products := map[primitive.ObjectID]*models.ProductSummary{}
	if len(productSet) > 0 {
		found, err := s.products.FindByIDs(ctx, keys(productSet))
		if err != nil {
			return nil, apperrors.Internal("populate products", err)
		}
		for _, p := range found {
			products[p.ID] = p.Summary()
		}
	}

	customers := map[primitive.ObjectID]*models.CustomerSummary{}
	if withCustomer && len(customerSet) > 0 {
		found, err := s.users.FindByIDs(ctx, keys(customerSet))
		if err != nil {
			return nil, apperrors.Internal("populate customers", err)
		}
		for _, u := range found {
			customers[u.ID] = u.Summary()
		}
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, order := range orders {
		view := models.OrderView{
			ID:              order.ID,
			CustomerID:      order.CustomerID,
			Items:           make([]models.OrderItemView, 0, len(order.Items)),
			TotalAmount:     order.TotalAmount,
			Status:          order.Status,
			ShippingAddress: order.ShippingAddress,
			BillingAddress:  order.BillingAddress,
			OrderNumber:     order.OrderNumber,
			CreatedAt:       order.CreatedAt,
			UpdatedAt:       order.UpdatedAt,
		}
		if c, ok := customers[order.CustomerID]; ok {
			view.CustomerID = c
		}
		for _, item := range order.Items {
			line := models.OrderItemView{ID: item.ID, Product: item.ProductID, Quantity: item.Quantity, Price: item.Price}
			if p, ok := products[item.ProductID]; ok {
				line.Product = p
			}
			view.Items = append(view.Items, line)
		}
		views = append(views, view)
	}
	return views, nil
}

func keys(set map[primitive.ObjectID]struct{}) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
