package echoweb

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/syllabus/core"
	"github.com/trezcool/syllabus/core/authz"
	"github.com/trezcool/syllabus/core/catalog"
	"github.com/trezcool/syllabus/core/pagination"
	"github.com/trezcool/syllabus/core/view"
)

var (
	contextEntryKey = "tableEntry"

	errEntryNotFoundInCtx = errors.New("table entry not found in echo.Context")
	errInvalidPageSize    = "page size must be one of the proposed options"
	errNoSearch           = "this table cannot be searched"
	errUnknownFilter      = "this column cannot be filtered"
)

type tableApi struct {
	conf     *core.Config
	catalog  *catalog.Registry
	store    *sessionStore
	enforcer *authz.Enforcer
	validate *validator.Validate
}

func registerTableAPI(g *echo.Group, api *tableApi) {
	tg := g.Group("/:resource",
		permissionMiddleware(api.enforcer, authz.ObjTable, authz.ActRead),
		api.entryMiddleware,
	)
	tg.GET("", api.page)
	tg.GET("/state", api.state)
	tg.POST("/page", api.setPage)
	tg.POST("/size", api.setPageSize)
	tg.POST("/search", api.search)
	tg.POST("/filter", api.filter)
	tg.POST("/select", api.toggleSelection)
	tg.POST("/select-all", api.selectAll)
	tg.POST("/refresh", api.refresh)
	tg.POST("/toast/dismiss", api.dismissToast)
	tg.POST("/delete", api.delete, permissionMiddleware(api.enforcer, authz.ObjTable, authz.ActDelete))
}

// entryMiddleware puts the session's table of :resource in the context.
func (api *tableApi) entryMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		res, err := api.catalog.Lookup(ctx.Param("resource"))
		if err != nil {
			return errHttpNotFound
		}
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		e, err := api.store.entry(claims.Id, res)
		if err != nil {
			return errors.Wrap(err, "getting session table")
		}
		ctx.Set(contextEntryKey, e)
		return next(ctx)
	}
}

func getContextEntry(ctx echo.Context) (*tableEntry, error) {
	if e, ok := ctx.Get(contextEntryKey).(*tableEntry); ok {
		return e, nil
	}
	return nil, errEntryNotFoundInCtx
}

// model syncs the table with its query, then builds its render model.
func (api *tableApi) model(ctx echo.Context, e *tableEntry) (view.Model, error) {
	// fetch failures are logged by the table and shown in its status
	if _, err := e.table.Sync(ctx.Request().Context()); err != nil {
		ctx.Logger().Debugf("table %s: %v", e.resource.Name, err)
	}

	acc, err := getContextAccount(ctx)
	if err != nil {
		return view.Model{}, err
	}
	in := view.Input{
		Resource:  e.resource.Name,
		Toast:     e.toaster.Current(),
		CanDelete: api.enforcer.Enforce(acc.Roles, authz.ObjTable, authz.ActDelete),
	}
	if e.search != nil {
		in.SearchValue = e.search.Value()
	}
	return view.Build(e.resource.Layout, e.table.State(), in), nil
}

// render answers with the table fragment, or its model as JSON.
func (api *tableApi) render(ctx echo.Context) error {
	e, err := getContextEntry(ctx)
	if err != nil {
		return err
	}
	m, err := api.model(ctx, e)
	if err != nil {
		return err
	}
	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusOK, m)
	}
	return ctx.Render(http.StatusOK, "table", m)
}

// Handlers

func (api *tableApi) page(ctx echo.Context) error {
	e, err := getContextEntry(ctx)
	if err != nil {
		return err
	}
	m, err := api.model(ctx, e)
	if err != nil {
		return err
	}
	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusOK, m)
	}

	acc, _ := getContextAccount(ctx)
	return ctx.Render(http.StatusOK, "table_page", pageData{
		AppName: api.conf.AppName,
		Title:   e.resource.Title,
		Account: &acc,
		Nav:     newNav(api.catalog, e.resource.Name),
		Model:   &m,
	})
}

func (api *tableApi) state(ctx echo.Context) error {
	e, err := getContextEntry(ctx)
	if err != nil {
		return err
	}
	m, err := api.model(ctx, e)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *tableApi) setPage(ctx echo.Context) error {
	var data PageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PageRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	e, err := getContextEntry(ctx)
	if err != nil {
		return err
	}
	e.table.SetPage(data.Page)
	return api.render(ctx)
}

func (api *tableApi) setPageSize(ctx echo.Context) error {
	var data PageSizeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PageSizeRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	if !pagination.IsValidSize(data.Size) {
		return core.NewValidationError(nil, core.FieldError{Field: "size", Error: errInvalidPageSize})
	}
	e, err := getContextEntry(ctx)
	if err != nil {
		return err
	}
	if err := e.table.SetPageSize(data.Size); err != nil {
		return err
	}
	return api.render(ctx)
}

// search feeds the debounced search box. A keystroke superseded by a newer one answers 204.
func (api *tableApi) search(ctx echo.Context) error {
	var data SearchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SearchRequest")
	}
	e, err := getContextEntry(ctx)
	if err != nil {
		return err
	}
	if e.search == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "value", Error: errNoSearch})
	}

	select {
	case merged := <-e.search.Input(data.Value):
		if !merged {
			return ctx.NoContent(http.StatusNoContent)
		}
	case <-ctx.Request().Context().Done():
		return ctx.NoContent(http.StatusNoContent)
	}
	return api.render(ctx)
}

func (api *tableApi) filter(ctx echo.Context) error {
	var data FilterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FilterRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	e, err := getContextEntry(ctx)
	if err != nil {
		return err
	}
	sf := e.resource.SelectFilter
	if sf == nil || sf.Key != data.Key {
		return core.NewValidationError(nil, core.FieldError{Field: "key", Error: errUnknownFilter})
	}
	e.table.MergeSearchParam(data.Key, data.Value)
	return api.render(ctx)
}

func (api *tableApi) toggleSelection(ctx echo.Context) error {
	var data SelectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SelectRequest")
	}
	e, err := getContextEntry(ctx)
	if err != nil {
		return err
	}
	if _, err := e.table.ToggleSelection(data.ID); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "id", Error: err.Error()})
	}
	return api.render(ctx)
}

func (api *tableApi) selectAll(ctx echo.Context) error {
	e, err := getContextEntry(ctx)
	if err != nil {
		return err
	}
	e.table.SelectAll()
	return api.render(ctx)
}

func (api *tableApi) refresh(ctx echo.Context) error {
	e, err := getContextEntry(ctx)
	if err != nil {
		return err
	}
	e.table.Refresh(time.Now().UnixNano())
	return api.render(ctx)
}

func (api *tableApi) dismissToast(ctx echo.Context) error {
	e, err := getContextEntry(ctx)
	if err != nil {
		return err
	}
	e.toaster.Dismiss()
	return api.render(ctx)
}

func (api *tableApi) delete(ctx echo.Context) error {
	e, err := getContextEntry(ctx)
	if err != nil {
		return err
	}
	if _, err := e.table.DeleteSelected(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "deleting selected rows")
	}
	return api.render(ctx)
}

type (
	PageRequest struct {
		Page int `json:"page" form:"page" validate:"required,min=1"`
	}

	PageSizeRequest struct {
		Size int `json:"size" form:"size" validate:"required"`
	}

	SearchRequest struct {
		Value string `json:"value" form:"value"`
	}

	FilterRequest struct {
		Key   string `json:"key" form:"key" validate:"required"`
		Value string `json:"value" form:"value"`
	}

	SelectRequest struct {
		ID int64 `json:"id" form:"id"`
	}
)
