package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ListOptions mirrors the listing query string. Zero values are omitted.
type ListOptions struct {
	Search string
	SortBy string
	Order  string
	Page   int
	Limit  int
}

// ProductInput is the multipart body of a create request.
type ProductInput struct {
	Name              string
	Price             float64
	Stock             int
	Description       string
	Category          string
	ManufacturingDate string
	ImageName         string
	Image             io.Reader
}

// ProductPatch is the multipart body of an update request. Empty fields are
// left out and keep their stored values server-side.
type ProductPatch struct {
	Name              string
	Price             string
	Stock             string
	Description       string
	Category          string
	ManufacturingDate string
	ImageName         string
	Image             io.Reader
}

// API talks to the catalogue server and dispatches the outcome of every
// call into the store.
type API struct {
	base   string
	client *http.Client
	store  *Store
}

// NewAPI creates an API client against base (e.g. "http://localhost:8080").
func NewAPI(base string, store *Store) *API {
	return &API{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
		store:  store,
	}
}

// Store returns the backing store.
func (a *API) Store() *Store { return a.store }

// apiError extracts the server's {"message": ...} body.
func apiError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Message == "" {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return fmt.Errorf("%s", body.Message)
}

func (a *API) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return a.client.Do(req)
}

func (a *API) authorize(req *http.Request) {
	if token := a.store.State().Token; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// Signup registers a new account. No token is issued; call Login after.
func (a *API) Signup(ctx context.Context, email, password string) error {
	resp, err := a.postJSON(ctx, "/api/auth/signup", map[string]string{
		"email": email, "password": password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return apiError(resp)
	}
	return nil
}

// Login authenticates and stores the bearer token for later calls.
func (a *API) Login(ctx context.Context, email, password string) error {
	resp, err := a.postJSON(ctx, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}

	a.store.Dispatch(LoggedIn{Token: body.Token})
	return nil
}

// Logout drops the stored token.
func (a *API) Logout() {
	a.store.Dispatch(LoggedOut{})
}

// FetchProducts loads one page into the store. On failure the previous list
// is kept and State.Error carries the message.
func (a *API) FetchProducts(ctx context.Context, opts ListOptions) error {
	a.store.Dispatch(FetchStarted{})

	q := url.Values{}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.SortBy != "" {
		q.Set("sortBy", opts.SortBy)
	}
	if opts.Order != "" {
		q.Set("order", opts.Order)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	target := a.base + "/api/products"
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		a.store.Dispatch(FetchFailed{Err: err.Error()})
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		a.store.Dispatch(FetchFailed{Err: err.Error()})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := apiError(resp)
		a.store.Dispatch(FetchFailed{Err: err.Error()})
		return err
	}

	var body struct {
		Products      []Product `json:"products"`
		CurrentPage   int       `json:"currentPage"`
		TotalPages    int       `json:"totalPages"`
		TotalProducts int64     `json:"totalProducts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		err = fmt.Errorf("decode product list: %w", err)
		a.store.Dispatch(FetchFailed{Err: err.Error()})
		return err
	}

	a.store.Dispatch(FetchSucceeded{
		Products:      body.Products,
		CurrentPage:   body.CurrentPage,
		TotalPages:    body.TotalPages,
		TotalProducts: body.TotalProducts,
	})
	return nil
}

// GetProduct fetches a single product without touching the store.
func (a *API) GetProduct(ctx context.Context, id uint) (Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/%d", a.base, id), nil)
	if err != nil {
		return Product{}, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return Product{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Product{}, apiError(resp)
	}

	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return Product{}, fmt.Errorf("decode product: %w", err)
	}
	return product, nil
}

// writeField skips empty values so the server's fallback keeps the stored one.
func writeField(mw *multipart.Writer, key, value string) {
	if value != "" {
		mw.WriteField(key, value) //nolint:errcheck
	}
}

func buildMultipart(fields map[string]string, imageName string, image io.Reader) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for key, value := range fields {
		writeField(mw, key, value)
	}

	if image != nil {
		name := imageName
		if name == "" {
			name = "image"
		}
		part, err := mw.CreateFormFile("image", name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, image); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func (a *API) sendMultipart(ctx context.Context, method, path string, fields map[string]string, imageName string, image io.Reader) (*http.Response, error) {
	buf, contentType, err := buildMultipart(fields, imageName, image)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	a.authorize(req)

	return a.client.Do(req)
}

// CreateProduct adds a product and appends it to the local list.
func (a *API) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	fields := map[string]string{
		"name":              in.Name,
		"price":             strconv.FormatFloat(in.Price, 'f', -1, 64),
		"stock":             strconv.Itoa(in.Stock),
		"description":       in.Description,
		"category":          in.Category,
		"manufacturingDate": in.ManufacturingDate,
	}

	resp, err := a.sendMultipart(ctx, http.MethodPost, "/api/products", fields, in.ImageName, in.Image)
	if err != nil {
		return Product{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return Product{}, apiError(resp)
	}

	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return Product{}, fmt.Errorf("decode created product: %w", err)
	}

	a.store.Dispatch(ProductCreated{Product: product})
	return product, nil
}

// UpdateProduct patches a product and replaces it in the local list.
func (a *API) UpdateProduct(ctx context.Context, id uint, patch ProductPatch) (Product, error) {
	fields := map[string]string{
		"name":              patch.Name,
		"price":             patch.Price,
		"stock":             patch.Stock,
		"description":       patch.Description,
		"category":          patch.Category,
		"manufacturingDate": patch.ManufacturingDate,
	}

	resp, err := a.sendMultipart(ctx, http.MethodPut,
		fmt.Sprintf("/api/products/%d", id), fields, patch.ImageName, patch.Image)
	if err != nil {
		return Product{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Product{}, apiError(resp)
	}

	var body struct {
		Message string  `json:"message"`
		Product Product `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Product{}, fmt.Errorf("decode updated product: %w", err)
	}

	a.store.Dispatch(ProductUpdated{Product: body.Product})
	return body.Product, nil
}

// DeleteProduct removes a product server-side and from the local list.
func (a *API) DeleteProduct(ctx context.Context, id uint) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/api/products/%d", a.base, id), nil)
	if err != nil {
		return err
	}
	a.authorize(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	a.store.Dispatch(ProductDeleted{ID: id})
	return nil
}

// StockSummary fetches the per-category report. Requires a token.
func (a *API) StockSummary(ctx context.Context) ([]CategorySummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+"/api/stock-summary", nil)
	if err != nil {
		return nil, err
	}
	a.authorize(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var rows []CategorySummary
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode stock summary: %w", err)
	}
	return rows, nil
}
