// Package handler exposes data records page by page over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/Alp4ka/cursorpaging"
	"github.com/Alp4ka/cursorpaging/api"
	"github.com/Alp4ka/cursorpaging/internal/webapp/config"
	"github.com/Alp4ka/cursorpaging/internal/webapp/model"
	"github.com/Alp4ka/cursorpaging/serializer"
)

//go:generate mockgen -source=datarecord.go -destination=../mocks/mock_repository.go -package=mocks

const (
	Path      = "/api/v1/datarecord"
	PathPage  = "/page"
	PathFirst = "/first"
	PathCount = "/count"
)

// DataRecordRepository loads pages of data records.
type DataRecordRepository interface {
	LoadPage(ctx context.Context, req *cursorpaging.PageRequest) (*cursorpaging.Page[model.DataRecord], error)
	Count(ctx context.Context, req *cursorpaging.PageRequest) (int64, error)
}

type DataRecordHandler struct {
	repo            DataRecordRepository
	serializer      *serializer.RequestSerializer
	defaultPageSize int
	maxPageSize     int
	logger          *slog.Logger
}

func NewDataRecordHandler(
	repo DataRecordRepository,
	s *serializer.RequestSerializer,
	paging config.PagingConfig,
	logger *slog.Logger,
) *DataRecordHandler {
	return &DataRecordHandler{
		repo:            repo,
		serializer:      s,
		defaultPageSize: paging.DefaultPageSize,
		maxPageSize:     paging.MaxPageSize,
		logger:          logger,
	}
}

// Register mounts the record routes below Path.
func (h *DataRecordHandler) Register(e *echo.Echo) {
	g := e.Group(Path)
	g.GET("", h.GetPage)
	g.GET(PathFirst, h.GetFirstPage)
	g.POST(PathPage, h.CreateCursor)
	g.GET(PathCount, h.GetCount)
}

type countModel struct {
	TotalElements int64      `json:"totalElements"`
	Links         []api.Link `json:"links"`
}

// GetPage returns the page addressed by the cursor parameter, or the first
// page ordered by name and id.
//
//	GET /api/v1/datarecord?pageSize=10&cursor=...
func (h *DataRecordHandler) GetPage(c echo.Context) error {
	var q api.CursorQuery
	if err := c.Bind(&q); err != nil {
		return err
	}

	if err := q.Validate(h.maxPageSize); err != nil {
		return h.mapError(c, err)
	}

	req, err := h.serializer.ParseCursor(q.Cursor)
	if err != nil {
		return h.mapError(c, err)
	}

	switch {
	case req == nil:
		req = model.FirstPage(q.PageSizeOrDefault(h.defaultPageSize))
	case q.PageSize > 0:
		req = req.WithPageSize(q.PageSize)
	}

	return h.respondPage(c, req, q.PageSize)
}

// GetFirstPage returns the first page in the order given by the sort
// parameter, optionally restricted to the given names. Records are ordered
// by id after the requested attributes.
//
//	GET /api/v1/datarecord/first?sort=created_at desc&name=Alpha&name=Bravo
func (h *DataRecordHandler) GetFirstPage(c echo.Context) error {
	var q api.CursorQuery
	if err := c.Bind(&q); err != nil {
		return err
	}

	if err := q.Validate(h.maxPageSize); err != nil {
		return h.mapError(c, err)
	}

	positions, err := api.ParseSort(c.QueryParam("sort"), model.Attributes)
	if err != nil {
		return h.mapError(c, err)
	}

	hasID := lo.ContainsBy(positions, func(p cursorpaging.Position) bool {
		return p.Attribute.Name == model.AttrID.Name
	})
	if !hasID {
		positions = append(positions, cursorpaging.Asc(model.AttrID))
	}

	req := cursorpaging.NewPageRequest().
		WithPositions(positions...).
		WithPageSize(q.PageSizeOrDefault(h.defaultPageSize))

	if names := lo.Compact(c.QueryParams()["name"]); len(names) > 0 {
		req = req.WithFilter(cursorpaging.Where(model.AttrName).In(lo.ToAnySlice(names)...))
	}

	return h.respondPage(c, req, q.PageSize)
}

func (h *DataRecordHandler) respondPage(c echo.Context, req *cursorpaging.PageRequest, pageSize int) error {
	page, err := h.repo.LoadPage(c.Request().Context(), req)
	if err != nil {
		return h.mapError(c, err)
	}

	links := api.NewPageLinks(h.serializer, Path).WithPageSize(pageSize)

	body, err := api.PageModel(links, page, model.ToDto)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, body)
}

// CreateCursor turns a page request body into a link on its first page.
// Records are ordered by id after the requested attributes.
//
//	POST /api/v1/datarecord/page
//	{"orderBy": {"name": "ASC"}, "filterBy": {"EQ": {"name": ["Tango", "Bravo"]}}, "pageSize": 10}
func (h *DataRecordHandler) CreateCursor(c echo.Context) error {
	dto := api.NewDtoPageRequest()
	if err := c.Bind(dto); err != nil {
		return err
	}

	if err := dto.Validate(); err != nil {
		return h.mapError(c, err)
	}

	dto.AddOrderByIfAbsent(model.AttrID.Name, cursorpaging.OrderASC)
	dto.PageSize = cursorpaging.NormalizeLimitMax(dto.PageSize, h.maxPageSize)

	req, err := dto.ToPageRequest(model.Attributes)
	if err != nil {
		return h.mapError(c, err)
	}

	first, err := api.NewPageLinks(h.serializer, Path).
		WithPageSize(dto.PageSize).
		Link(api.RelFirst, req)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusCreated, api.NewRepresentationModel(dto, first))
}

// GetCount counts the records matching the filters of the cursor, all
// records without one.
//
//	GET /api/v1/datarecord/count?cursor=...
func (h *DataRecordHandler) GetCount(c echo.Context) error {
	var q api.CursorQuery
	if err := c.Bind(&q); err != nil {
		return err
	}

	if err := q.Validate(h.maxPageSize); err != nil {
		return h.mapError(c, err)
	}

	req, err := h.serializer.ParseCursor(q.Cursor)
	if err != nil {
		return h.mapError(c, err)
	}
	if req == nil {
		req = cursorpaging.NewPageRequest()
	}

	count, err := h.repo.Count(c.Request().Context(), req)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, countModel{
		TotalElements: count,
		Links:         []api.Link{{Rel: api.RelSelf, Href: c.Request().URL.RequestURI()}},
	})
}
