package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/littlethreads/backend/internal/cart"
	"github.com/littlethreads/backend/internal/catalog"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
)

type stubCartService struct {
	dto     *cartsvc.CartDTO
	err     error
	lastQty int
	lastSel catalog.VariantSelector
}

func (s *stubCartService) Get(ctx context.Context, owner cartsvc.OwnerRef) (*cartsvc.CartDTO, error) {
	return s.dto, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, owner cartsvc.OwnerRef, productID uuid.UUID, sel catalog.VariantSelector, qty int) (*cartsvc.CartDTO, error) {
	s.lastQty = qty
	s.lastSel = sel
	return s.dto, s.err
}

func (s *stubCartService) UpdateItem(ctx context.Context, owner cartsvc.OwnerRef, productID uuid.UUID, sel catalog.VariantSelector, qty int) (*cartsvc.CartDTO, error) {
	s.lastQty = qty
	return s.dto, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, owner cartsvc.OwnerRef, productID uuid.UUID, sel catalog.VariantSelector) (*cartsvc.CartDTO, error) {
	s.lastSel = sel
	return s.dto, s.err
}

func (s *stubCartService) Clear(ctx context.Context, owner cartsvc.OwnerRef) (*cartsvc.CartDTO, error) {
	return s.dto, s.err
}

func testCartDTO() *cartsvc.CartDTO {
	return &cartsvc.CartDTO{
		ID:          uuid.New(),
		TotalAmount: decimal.RequireFromString("1800.00"),
	}
}

func TestCartFetchWithUserID(t *testing.T) {
	svc := &stubCartService{dto: testCartDTO()}
	handler := CartFetch(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart?user_id="+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.TotalAmount.Equal(decimal.RequireFromString("1800.00")) {
		t.Fatalf("unexpected total %s", envelope.Data.TotalAmount)
	}
}

func TestCartFetchWithSessionHeader(t *testing.T) {
	svc := &stubCartService{dto: testCartDTO()}
	handler := CartFetch(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(sessionIDHeader, "sess-42")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartFetchRejectsMissingOwner(t *testing.T) {
	handler := CartFetch(&stubCartService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartFetchRejectsBothOwners(t *testing.T) {
	handler := CartFetch(&stubCartService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart?user_id="+uuid.NewString()+"&session_id=s", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemDecodesSelector(t *testing.T) {
	svc := &stubCartService{dto: testCartDTO()}
	handler := CartAddItem(svc, nil)

	body := `{"product_id":"` + uuid.NewString() + `","size":"2T","color":"Yellow","quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items?session_id=s1", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastQty != 2 {
		t.Fatalf("expected quantity 2, got %d", svc.lastQty)
	}
	if svc.lastSel.Size != "2T" || svc.lastSel.Color == nil || *svc.lastSel.Color != "Yellow" {
		t.Fatalf("unexpected selector %+v", svc.lastSel)
	}
}

func TestCartAddItemRejectsUnknownFields(t *testing.T) {
	handler := CartAddItem(&stubCartService{dto: testCartDTO()}, nil)

	body := `{"product_id":"` + uuid.NewString() + `","size":"2T","quantity":1,"price":"1.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items?session_id=s1", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("client-supplied price must be rejected, got %d", resp.Code)
	}
}

func TestCartAddItemMapsInsufficientStock(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "only 5 in stock").
		WithDetails(map[string]any{"available": 5, "requested": 6})}
	handler := CartAddItem(svc, nil)

	body := `{"product_id":"` + uuid.NewString() + `","size":"2T","quantity":6}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items?session_id=s1", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeInsufficientStock) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
	if payload.Error.Details["available"].(float64) != 5 {
		t.Fatalf("expected availability details, got %v", payload.Error.Details)
	}
}

func TestCartRemoveItemUsesQueryParams(t *testing.T) {
	svc := &stubCartService{dto: testCartDTO()}
	handler := CartRemoveItem(svc, nil)

	url := "/api/v1/cart/items?session_id=s1&product_id=" + uuid.NewString() + "&size=2T&color=Yellow"
	req := httptest.NewRequest(http.MethodDelete, url, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastSel.Size != "2T" || svc.lastSel.Color == nil {
		t.Fatalf("unexpected selector %+v", svc.lastSel)
	}
}

func TestCartRemoveItemRequiresLineIdentity(t *testing.T) {
	handler := CartRemoveItem(&stubCartService{}, nil)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items?session_id=s1", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
