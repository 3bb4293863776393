// Package client is the console's typed HTTP client for the purchase order API.
// Every method returns core types; wire conversion happens here.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"procurement-console/internal/api"
	"procurement-console/internal/core"
)

// APIError is a non-2xx response other than a validation failure.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// ValidationError is a 422 response. Fields maps keys such as
// "lines.0.quantity" to their messages.
type ValidationError struct {
	Message string
	Fields  core.ValidationErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + e.Fields.Error()
}

func (e *ValidationError) Unwrap() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e.Fields
}

// Attachment is an optional file sent with a create or update.
type Attachment struct {
	Name string
	Body io.Reader
}

// Client calls the purchase order API with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a Client for baseURL. A nil httpClient uses a 30 second timeout.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}
}

// ListPurchaseOrders returns one page of orders matching f.
func (c *Client) ListPurchaseOrders(ctx context.Context, f core.PurchaseOrderFilter) (*core.Page[core.PurchaseOrder], error) {
	var page api.Page[api.PurchaseOrder]
	if err := c.getJSON(ctx, "/purchase-orders", orderQuery(f), &page); err != nil {
		return nil, err
	}
	return api.ToCorePage(page, api.PurchaseOrder.ToCore), nil
}

func (c *Client) GetPurchaseOrder(ctx context.Context, id int) (*core.PurchaseOrder, error) {
	var po api.PurchaseOrder
	if err := c.getJSON(ctx, "/purchase-orders/"+strconv.Itoa(id), nil, &po); err != nil {
		return nil, err
	}
	out := po.ToCore()
	return &out, nil
}

// CreatePurchaseOrder submits a new order. A non-empty idempotencyKey makes
// retries of the same submission return the first result.
func (c *Client) CreatePurchaseOrder(ctx context.Context, in core.PurchaseOrderInput, att *Attachment, idempotencyKey string) (*core.PurchaseOrder, error) {
	hdr := http.Header{}
	if idempotencyKey != "" {
		hdr.Set("Idempotency-Key", idempotencyKey)
	}
	return c.saveOrder(ctx, http.MethodPost, "/purchase-orders", in, att, hdr)
}

func (c *Client) UpdatePurchaseOrder(ctx context.Context, id int, in core.PurchaseOrderInput, att *Attachment) (*core.PurchaseOrder, error) {
	return c.saveOrder(ctx, http.MethodPut, "/purchase-orders/"+strconv.Itoa(id), in, att, nil)
}

func (c *Client) DeletePurchaseOrder(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/purchase-orders/"+strconv.Itoa(id), nil, nil, nil, nil)
}

func (c *Client) NextPONumber(ctx context.Context) (string, error) {
	var resp api.NextNumberResponse
	if err := c.getJSON(ctx, "/purchase-orders/next-po-number", nil, &resp); err != nil {
		return "", err
	}
	return resp.PONumber, nil
}

// ChangeStatus requests a workflow transition and returns the updated order.
func (c *Client) ChangeStatus(ctx context.Context, id int, to core.Status) (*core.PurchaseOrder, error) {
	body, err := json.Marshal(api.StatusRequest{Status: string(to)})
	if err != nil {
		return nil, err
	}
	hdr := http.Header{"Content-Type": {"application/json"}}
	var po api.PurchaseOrder
	path := "/purchase-orders/" + strconv.Itoa(id) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, nil, bytes.NewReader(body), hdr, &po); err != nil {
		return nil, err
	}
	out := po.ToCore()
	return &out, nil
}

func (c *Client) Affordances(ctx context.Context, id int) (core.Affordances, error) {
	var a api.Affordances
	if err := c.getJSON(ctx, "/purchase-orders/"+strconv.Itoa(id)+"/affordances", nil, &a); err != nil {
		return core.Affordances{}, err
	}
	return a.ToCore(), nil
}

// ExportPurchaseOrders downloads the spreadsheet for f and returns its bytes
// and the server-chosen file name.
func (c *Client) ExportPurchaseOrders(ctx context.Context, f core.PurchaseOrderFilter, columns []string) ([]byte, string, error) {
	q := orderQuery(f)
	if len(columns) > 0 {
		q.Set("columns", strings.Join(columns, ","))
	}
	resp, err := c.send(ctx, http.MethodGet, "/purchase-orders/export", q, nil, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return nil, "", err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read export: %w", err)
	}
	return data, attachmentName(resp.Header.Get("Content-Disposition")), nil
}

// PendingDemands returns demands not yet bound to a live order.
func (c *Client) PendingDemands(ctx context.Context, f core.DemandFilter) (*core.Page[core.Demand], error) {
	q := url.Values{}
	setStr(q, "type", string(f.Type))
	setStr(q, "search", f.Search)
	setInt(q, "location_id", f.LocationID)
	setStr(q, "demand_date_from", f.DateFrom)
	setStr(q, "demand_date_to", f.DateTo)
	setInt(q, "page", f.Page)
	setInt(q, "per_page", f.PerPage)

	var page api.Page[api.Demand]
	if err := c.getJSON(ctx, "/get-pending-po-demand", q, &page); err != nil {
		return nil, err
	}
	return api.ToCorePage(page, api.Demand.ToCore), nil
}

func (c *Client) Vendors(ctx context.Context) ([]core.Vendor, error) {
	return listLookup(ctx, c, "/vendors", api.Vendor.ToCore)
}

func (c *Client) Locations(ctx context.Context) ([]core.Location, error) {
	return listLookup(ctx, c, "/locations", api.Location.ToCore)
}

func (c *Client) Units(ctx context.Context) ([]core.Unit, error) {
	return listLookup(ctx, c, "/units", api.Unit.ToCore)
}

func (c *Client) Items(ctx context.Context) ([]core.Item, error) {
	return listLookup(ctx, c, "/items", api.Item.ToCore)
}

func (c *Client) Users(ctx context.Context) ([]core.User, error) {
	return listLookup(ctx, c, "/users", api.User.ToCore)
}

// listLookup accepts both a bare array and a {"data": [...]} envelope.
func listLookup[W, T any](ctx context.Context, c *Client, path string, conv func(W) T) ([]T, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	items, err := decodeList[W](raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return api.Map(items, conv), nil
}

func decodeList[W any](raw json.RawMessage) ([]W, error) {
	var page api.Page[W]
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (c *Client) saveOrder(ctx context.Context, method, path string, in core.PurchaseOrderInput, att *Attachment, hdr http.Header) (*core.PurchaseOrder, error) {
	if hdr == nil {
		hdr = http.Header{}
	}
	payload, err := json.Marshal(api.RequestFromInput(in))
	if err != nil {
		return nil, err
	}

	var body io.Reader = bytes.NewReader(payload)
	hdr.Set("Content-Type", "application/json")
	if att != nil {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if err := mw.WriteField("payload", string(payload)); err != nil {
			return nil, err
		}
		fw, err := mw.CreateFormFile("attachment", att.Name)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(fw, att.Body); err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}
		body = &buf
		hdr.Set("Content-Type", mw.FormDataContentType())
	}

	var po api.PurchaseOrder
	if err := c.do(ctx, method, path, nil, body, hdr, &po); err != nil {
		return nil, err
	}
	out := po.ToCore()
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, q, nil, nil, out)
}

// do sends the request and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body io.Reader, hdr http.Header, out any) error {
	resp, err := c.send(ctx, method, path, q, body, hdr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, body io.Reader, hdr http.Header) (*http.Response, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	for k, v := range hdr {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// checkResponse turns a non-2xx response into a ValidationError or APIError.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var body struct {
		api.ErrorResponse
		Error string `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)

	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return &ValidationError{Message: msg, Fields: core.FromFieldMap(body.Errors)}
	}
	return &APIError{StatusCode: resp.StatusCode, Code: body.Code, Message: msg}
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func orderQuery(f core.PurchaseOrderFilter) url.Values {
	q := url.Values{}
	setStr(q, "status", string(f.Status))
	setInt(q, "vendor_id", f.VendorID)
	setInt(q, "location_id", f.LocationID)
	setStr(q, "label", f.Label)
	setStr(q, "search", f.Search)
	setInt(q, "page", f.Page)
	setInt(q, "per_page", f.PerPage)
	return q
}

func setStr(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func setInt(q url.Values, key string, v int) {
	if v != 0 {
		q.Set(key, strconv.Itoa(v))
	}
}
