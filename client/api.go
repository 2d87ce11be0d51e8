// Package client is the SDK the customer app, kitchen display and admin
// dashboard build on: a local cart, a live synchronized order list and a
// role gate, all talking to the restaurant API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/sufra-app/restaurant-api/models"
)

// Session is the resolved identity behind a token.
type Session struct {
	UserID  string `json:"user_id,omitempty"`
	GuestID string `json:"guest_id,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Event types carried on the order stream.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// OrderEvent is one change pushed over the order stream.
type OrderEvent struct {
	Type string        `json:"event_type"` // INSERT | UPDATE | DELETE
	New  *models.Order `json:"new,omitempty"`
	Old  *models.Order `json:"old,omitempty"`
}

// OrdersAPI is the server surface the syncer needs.
type OrdersAPI interface {
	FetchOrders(ctx context.Context, statuses []models.OrderStatus, limit int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error
	UpdateOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error
}

// OrderStream is one real-time subscription source. The returned release
// function must be called when observation interest ends.
type OrderStream interface {
	Subscribe(ctx context.Context) (<-chan OrderEvent, func(), error)
}

// SessionAPI is the server surface the access gate needs.
type SessionAPI interface {
	GetSession(ctx context.Context) (*Session, error)
	Roles(ctx context.Context) ([]models.Role, error)
	BootstrapAdmin(ctx context.Context) (bool, error)
}

// API is the HTTP implementation of OrdersAPI, SessionAPI and OrderStream.
type API struct {
	http    *resty.Client
	baseURL string
	token   string
}

func NewAPI(baseURL, token string) *API {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if token != "" {
		httpClient.SetAuthToken(token)
	}
	return &API{http: httpClient, baseURL: strings.TrimSuffix(baseURL, "/"), token: token}
}

func apiError(resp *resty.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		return errors.New(body.Error)
	}
	return fmt.Errorf("api error: %s", resp.Status())
}

func (a *API) FetchOrders(ctx context.Context, statuses []models.OrderStatus, limit int) ([]models.Order, error) {
	req := a.http.R().SetContext(ctx)
	if len(statuses) > 0 {
		parts := make([]string, len(statuses))
		for i, s := range statuses {
			parts[i] = string(s)
		}
		req.SetQueryParam("status", strings.Join(parts, ","))
	}
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}

	var orders []models.Order
	resp, err := req.SetResult(&orders).Get("/orders")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return orders, nil
}

func (a *API) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	resp, err := a.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"status": string(status)}).
		Put("/orders/" + orderID + "/status")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

func (a *API) UpdateOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error {
	resp, err := a.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"items": items}).
		Put("/orders/" + orderID + "/items")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

func (a *API) GetSession(ctx context.Context) (*Session, error) {
	var envelope struct {
		Session *struct {
			User *struct {
				ID    string `json:"id"`
				Email string `json:"email"`
				Name  string `json:"name"`
			} `json:"user"`
			GuestID string `json:"guest_id"`
		} `json:"session"`
	}
	resp, err := a.http.R().SetContext(ctx).SetResult(&envelope).Get("/auth/session")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	if envelope.Session == nil {
		return nil, nil
	}
	if u := envelope.Session.User; u != nil {
		return &Session{UserID: u.ID, Email: u.Email, Name: u.Name}, nil
	}
	return &Session{GuestID: envelope.Session.GuestID}, nil
}

func (a *API) Roles(ctx context.Context) ([]models.Role, error) {
	var envelope struct {
		Roles []models.Role `json:"roles"`
	}
	resp, err := a.http.R().SetContext(ctx).SetResult(&envelope).Get("/auth/roles")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return envelope.Roles, nil
}

func (a *API) BootstrapAdmin(ctx context.Context) (bool, error) {
	var envelope struct {
		Granted bool `json:"granted"`
	}
	resp, err := a.http.R().SetContext(ctx).SetResult(&envelope).Post("/auth/bootstrap-admin")
	if err != nil {
		return false, err
	}
	if resp.IsError() {
		return false, apiError(resp)
	}
	return envelope.Granted, nil
}

// Subscribe opens the websocket order feed. The release function closes the
// connection; the event channel closes when the connection drops.
func (a *API) Subscribe(ctx context.Context) (<-chan OrderEvent, func(), error) {
	wsURL := strings.Replace(a.baseURL, "http", "ws", 1) + "/orders/ws"

	header := map[string][]string{}
	if a.token != "" {
		header["Authorization"] = []string{"Bearer " + a.token}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, nil, err
	}

	events := make(chan OrderEvent, 16)
	go func() {
		defer close(events)
		for {
			var ev OrderEvent
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	release := func() { conn.Close() }
	return events, release, nil
}
