package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bartek5186/spicedash/internal/orders"
	"github.com/google/uuid"
	"golang.org/x/net/html/charset"
)

const userAgent = "spicedash/1.0"

// HTTPError: backend odpowiedział statusem spoza 2xx.
type HTTPError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: http %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// FetchOrders pobiera listę zamówień; przy per_page > 0 idzie stronami,
// aż strona wróci niepełna, nie wniesie nic nowego albo skończy się limit max_pages.
// Zamówienia powtórzone na kolejnych stronach są pomijane.
func (b *Backend) FetchOrders(ctx context.Context) ([]orders.Order, error) {
	if b.cfg.PerPage <= 0 {
		return b.fetchPage(ctx, 0)
	}

	var out []orders.Order
	seen := make(map[orders.ID]struct{})
	for page := 1; page <= b.cfg.MaxPages; page++ {
		items, err := b.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("orders page %d: %w", page, err)
		}
		fresh := 0
		for _, o := range items {
			if o.ID != "" {
				if _, dup := seen[o.ID]; dup {
					continue
				}
				seen[o.ID] = struct{}{}
			}
			out = append(out, o)
			fresh++
		}
		if len(items) < b.cfg.PerPage {
			return out, nil
		}
		if fresh == 0 {
			// backend ignoruje "page" i oddaje w kółko to samo
			b.log.Warn().Int("page", page).Msg("orders: strona bez nowych zamówień, koniec stronicowania")
			return out, nil
		}
	}
	b.log.Warn().Int("max_pages", b.cfg.MaxPages).Msg("orders: osiągnięto limit stron, lista może być niepełna")
	return out, nil
}

func (b *Backend) fetchPage(ctx context.Context, page int) ([]orders.Order, error) {
	u := b.endpoint(b.cfg.OrdersPath)
	if page > 0 {
		q := u.Query()
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(b.cfg.PerPage))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	b.setHeaders(req)

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(req, resp)
	}

	body, err := decodeBody(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		b.log.Warn().Err(err).Str("content_type", resp.Header.Get("Content-Type")).Msg("nieznany charset, czytam surowo")
		body = resp.Body
	}

	list, err := orders.DecodeList(body)
	if err != nil {
		return nil, err
	}
	b.log.Debug().Int("page", page).Int("orders", len(list)).Msg("orders page fetched")
	return list, nil
}

// MarkComplete wysyła PATCH {"status":"completed"} dla zamówienia.
func (b *Backend) MarkComplete(ctx context.Context, orderID string) error {
	id := strings.TrimSpace(orderID)
	if id == "" {
		return fmt.Errorf("backend: pusty order id")
	}
	u := b.endpoint(strings.ReplaceAll(b.cfg.CompletePath, "{id}", id))
	u.RawPath = strings.TrimRight(b.base.EscapedPath(), "/") + "/" +
		strings.TrimLeft(strings.ReplaceAll(b.cfg.CompletePath, "{id}", url.PathEscape(id)), "/")

	payload, _ := json.Marshal(map[string]string{"status": "completed"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	b.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("PATCH %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(req, resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	b.log.Info().Str("order_id", id).Msg("order marked completed in backend")
	return nil
}

func (b *Backend) endpoint(path string) *url.URL {
	u := *b.base
	u.Path = strings.TrimRight(b.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return &u
}

func (b *Backend) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if b.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.Token)
	}
}

// decodeBody przekodowuje do UTF-8 tylko gdy Content-Type deklaruje inny charset.
func decodeBody(r io.Reader, contentType string) (io.Reader, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return r, nil
	}
	cs := strings.ToLower(strings.TrimSpace(params["charset"]))
	switch cs {
	case "", "utf-8", "utf8":
		return r, nil
	}
	return charset.NewReaderLabel(cs, r)
}

func httpError(req *http.Request, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &HTTPError{
		Method: req.Method,
		URL:    req.URL.Redacted(),
		Status: resp.StatusCode,
		Body:   strings.TrimSpace(string(snippet)),
	}
}
