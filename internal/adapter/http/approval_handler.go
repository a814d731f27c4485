package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hr-admin-backend/internal/adapter/export"
	"hr-admin-backend/internal/adapter/response"
	"hr-admin-backend/internal/domain/validation"
	"hr-admin-backend/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

const (
	headerETag    = "ETag"
	headerIfMatch = "If-Match"
)

var errInvalidQuery = errors.New("invalid query")

type ApprovalHandler struct{ uc *approval.Usecase }

func NewApprovalHandler(uc *approval.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

// flexAmount accepts "100.00", "£100.00" or a bare JSON number.
type flexAmount string

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = flexAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = flexAmount(n.String())
	return nil
}

type createApprovalReq struct {
	Type        string     `json:"type"        validate:"required,approval_type"`
	Title       string     `json:"title"       validate:"required,max=255"`
	Description string     `json:"description" validate:"required,max=5000"`
	Amount      flexAmount `json:"amount"      validate:"omitempty,max=64"`
	Currency    string     `json:"currency"    validate:"omitempty,iso_currency"`
	Priority    string     `json:"priority"    validate:"omitempty,priority"`
}

type decisionReq struct {
	Decision string  `json:"decision" validate:"required,decision"`
	Notes    *string `json:"notes"    validate:"omitempty,max=2000"`
	Version  *uint32 `json:"version"`
}

type bulkDecisionReq struct {
	ApprovalIDs []string `json:"approval_ids" validate:"required,min=1,max=100,dive,required"`
	Decision    string   `json:"decision"     validate:"required,decision"`
	Notes       *string  `json:"notes"        validate:"omitempty,max=2000"`
}

type cancelReq struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

type commentReq struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type listQuery struct {
	Status   string `query:"status"`
	Type     string `query:"type"`
	Priority string `query:"priority"`
	From     string `query:"from"`
	To       string `query:"to"`
	Search   string `query:"search"`
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
}

func bindList(c echo.Context) (approval.ListInput, error) {
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return approval.ListInput{}, errInvalidQuery
	}
	return approval.ListInput(q), nil
}

func etag(version uint32) string { return strconv.Quote(strconv.FormatUint(uint64(version), 10)) }

// expectedVersion prefers If-Match over the body version. "*" means any.
func expectedVersion(c echo.Context, body *uint32) (*uint32, error) {
	h := strings.TrimSpace(c.Request().Header.Get(headerIfMatch))
	if h == "" || h == "*" {
		return body, nil
	}
	n, err := strconv.ParseUint(strings.Trim(strings.TrimPrefix(h, "W/"), `"`), 10, 32)
	if err != nil {
		return nil, validation.Field("If-Match", "must be a version ETag")
	}
	v := uint32(n)
	return &v, nil
}

func (h *ApprovalHandler) List(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return fail(c, err)
	}
	in, err := bindList(c)
	if err != nil {
		return fail(c, err)
	}
	page, err := h.uc.List(c.Request().Context(), actor, in)
	if err != nil {
		return fail(c, err)
	}
	return response.Paged(c, http.StatusOK, page.Items, response.Meta{Page: page.Page, Limit: page.Limit, Total: page.Total})
}

func (h *ApprovalHandler) Stats(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return fail(c, err)
	}
	stats, err := h.uc.Stats(c.Request().Context(), actor)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, http.StatusOK, stats)
}

func (h *ApprovalHandler) Export(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return fail(c, err)
	}
	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	if format == "" {
		format = export.FormatCSV
	}
	contentType, ok := export.ContentType(format)
	if !ok {
		return fail(c, validation.Field("format", "must be csv or xlsx"))
	}
	in, err := bindList(c)
	if err != nil {
		return fail(c, err)
	}
	items, err := h.uc.ListAll(c.Request().Context(), actor, in)
	if err != nil {
		return fail(c, err)
	}

	var buf bytes.Buffer
	if format == export.FormatXLSX {
		err = export.WriteXLSX(&buf, items)
	} else {
		err = export.WriteCSV(&buf, items)
	}
	if err != nil {
		return fail(c, err)
	}
	name := fmt.Sprintf("approvals-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func (h *ApprovalHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return fail(c, err)
	}
	var req createApprovalReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	dto, err := h.uc.Create(c.Request().Context(), actor, approval.CreateInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Amount:      string(req.Amount),
		Currency:    req.Currency,
		Priority:    req.Priority,
	})
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/approvals/"+dto.ApprovalID)
	return response.OK(c, http.StatusCreated, dto)
}

func (h *ApprovalHandler) BulkDecision(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return fail(c, err)
	}
	var req bulkDecisionReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	res, err := h.uc.BulkDecide(c.Request().Context(), actor, approval.BulkDecideInput(req))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, http.StatusOK, res)
}

func (h *ApprovalHandler) Get(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return fail(c, err)
	}
	dto, err := h.uc.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(headerETag, etag(dto.Version))
	return response.OK(c, http.StatusOK, dto)
}

func (h *ApprovalHandler) Decide(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return fail(c, err)
	}
	var req decisionReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	expected, err := expectedVersion(c, req.Version)
	if err != nil {
		return fail(c, err)
	}
	dto, err := h.uc.Decide(c.Request().Context(), actor, c.Param("id"), approval.DecideInput{
		Decision:        req.Decision,
		Notes:           req.Notes,
		ExpectedVersion: expected,
	})
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(headerETag, etag(dto.Version))
	return response.OK(c, http.StatusOK, dto)
}

func (h *ApprovalHandler) Cancel(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return fail(c, err)
	}
	var req cancelReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	dto, err := h.uc.Cancel(c.Request().Context(), actor, c.Param("id"), req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, http.StatusOK, dto)
}

func (h *ApprovalHandler) History(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return fail(c, err)
	}
	items, err := h.uc.History(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, http.StatusOK, items)
}

func (h *ApprovalHandler) Comments(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return fail(c, err)
	}
	items, err := h.uc.Comments(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, http.StatusOK, items)
}

func (h *ApprovalHandler) AddComment(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return fail(c, err)
	}
	var req commentReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	dto, err := h.uc.AddComment(c.Request().Context(), actor, c.Param("id"), req.Text)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, http.StatusCreated, dto)
}
