package item

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"cnpgdemo/infras/otel"
	"cnpgdemo/internal/domains/item/model/dto"
	"cnpgdemo/internal/domains/item/service"
	"cnpgdemo/shared/constant"
	gDto "cnpgdemo/shared/dto"
	"cnpgdemo/shared/failure"
	"cnpgdemo/shared/validator"
	"cnpgdemo/transport/http/response"
)

const messageItemDeleted = "Item deleted successfully"

type Handler struct {
	service service.Item
	otel    otel.Otel
}

func New(service service.Item, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/items", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateItem)
		routerGroup.Get("/", handler.GetItems)
		routerGroup.Get("/{id}", handler.GetItemByID)
		routerGroup.Put("/{id}", handler.UpdateItem)
		routerGroup.Delete("/{id}", handler.DeleteItem)
	})
}

func parseID(request *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(request, constant.RequestParamID), 10, 64)
	if err != nil {
		return 0, failure.InvalidIDParam
	}

	return id, nil
}

// CreateItem handles the creation of a new item on the primary.
// @Summary Create a new item
// @Description Create an item. Always written to the primary database.
// @Tags Item
// @Accept json
// @Produce json
// @Param request body dto.CreateItemRequest true "Create Item Request"
// @Success 200 {object} dto.ItemResponse "Created item"
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /items/ [post]
func (handler *Handler) CreateItem(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateItem")
	defer scope.End()

	req := dto.CreateItemRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	item, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create item")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Item created successfully")

	response.WithJSON(writer, http.StatusOK, item)
}

// GetItems lists items from the replica.
// @Summary List items
// @Description Page through items in insertion order. Served by the replica, which may lag the primary.
// @Tags Item
// @Produce json
// @Param skip query int false "Number of items to skip" default(0)
// @Param limit query int false "Maximum number of items to return" default(100)
// @Success 200 {array} dto.ItemResponse "List of items"
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /items/ [get]
func (handler *Handler) GetItems(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetItems")
	defer scope.End()

	page := gDto.Pagination{}
	if err := page.FromRequest(request); err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	items, err := handler.service.List(ctx, page)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get items")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, items)
}

// GetItemByID retrieves an item from the replica.
// @Summary Get an item by ID
// @Tags Item
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} dto.ItemResponse "Item"
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /items/{id} [get]
func (handler *Handler) GetItemByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetItemByID")
	defer scope.End()

	id, err := parseID(request)
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	item, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, item)
}

// UpdateItem patches an item on the primary.
// @Summary Update an item by ID
// @Description Only the fields present in the body are changed. A null description clears it.
// @Tags Item
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param request body dto.UpdateItemRequest true "Update Item Request"
// @Success 200 {object} dto.ItemResponse "Updated item"
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /items/{id} [put]
func (handler *Handler) UpdateItem(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateItem")
	defer scope.End()

	id, err := parseID(request)
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	req := dto.UpdateItemRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	item, err := handler.service.Update(ctx, id, req)
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Item updated successfully")

	response.WithJSON(writer, http.StatusOK, item)
}

// DeleteItem removes an item on the primary.
// @Summary Delete an item by ID
// @Tags Item
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} response.Message "Item deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /items/{id} [delete]
func (handler *Handler) DeleteItem(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteItem")
	defer scope.End()

	id, err := parseID(request)
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Item deleted successfully")

	response.WithMessage(writer, http.StatusOK, messageItemDeleted)
}
