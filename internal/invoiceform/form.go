// Package invoiceform holds the in-progress invoice draft: the selected
// client, its line items and the running total.
package invoiceform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Field error keys.
const (
	FieldClient = "cliente"
	FieldItems  = "items"
	FieldStock  = "stock"
)

var ErrSubmitInProgress = errors.New("invoice submission already in progress")

// ErrInvalidDraft is returned by Submit when Validate fails.
var ErrInvalidDraft = errors.New("invoice draft is incomplete")

// InvoiceCreator persists a finished draft.
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, req service.CreateInvoiceRequest) (service.CreateInvoiceResult, error)
}

// Form is safe for concurrent use. Submit holds no lock while the creator
// runs, so the draft stays readable during a submission.
type Form struct {
	mu         sync.Mutex
	clientID   uuid.UUID
	clientName string
	items      []model.LineItem
	total      decimal.Decimal
	errors     map[string]string
	key        string
	submitting bool
}

func New() *Form {
	f := &Form{}
	f.reset()
	return f
}

func (f *Form) SetClient(c model.Client) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c.ID != f.clientID {
		f.key = uuid.NewString()
	}
	f.clientID = c.ID
	f.clientName = c.Name
	delete(f.errors, FieldClient)
}

// AddLineItem adds quantity units of p, merging with an existing line for
// the same product. It returns false and records a field error when the
// quantity is not positive or exceeds the product's known stock.
func (f *Form) AddLineItem(p model.Product, quantity int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if quantity <= 0 {
		f.errors[FieldItems] = "quantity must be greater than 0"
		return false
	}

	idx := f.indexOf(p.ID)
	requested := quantity
	if idx >= 0 {
		requested += f.items[idx].Quantity
	}
	if requested > p.Quantity {
		f.errors[FieldStock] = fmt.Sprintf("insufficient stock. available: %d", p.Quantity)
		return false
	}

	if idx >= 0 {
		f.items[idx].SetQuantity(requested)
	} else {
		f.items = append(f.items, model.NewLineItem(p, quantity))
	}
	delete(f.errors, FieldItems)
	delete(f.errors, FieldStock)
	f.changed()
	return true
}

// UpdateLineItemQuantity overwrites a line's quantity. A quantity of zero or
// less removes the line.
func (f *Form) UpdateLineItemQuantity(productID uuid.UUID, quantity int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.indexOf(productID)
	if idx < 0 {
		return
	}
	if quantity <= 0 {
		f.remove(idx)
		return
	}
	if f.items[idx].Quantity == quantity {
		return
	}
	f.items[idx].SetQuantity(quantity)
	f.changed()
}

func (f *Form) RemoveLineItem(productID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if idx := f.indexOf(productID); idx >= 0 {
		f.remove(idx)
	}
}

// Validate reports whether the draft has a client and at least one item,
// recording a field error for each missing part.
func (f *Form) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validate()
}

// Reset clears the draft and issues a new idempotency key.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

// Submit sends the draft to creator. Retrying a failed submission of an
// unchanged draft reuses the same idempotency key, so at most one invoice is
// written per draft. Any edit to the client or lines issues a new key. The
// draft is reset only after a successful submission.
func (f *Form) Submit(ctx context.Context, creator InvoiceCreator) (service.CreateInvoiceResult, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return service.CreateInvoiceResult{}, ErrSubmitInProgress
	}
	if !f.validate() {
		f.mu.Unlock()
		return service.CreateInvoiceResult{}, ErrInvalidDraft
	}
	f.submitting = true
	req := f.request()
	f.mu.Unlock()

	result, err := creator.CreateInvoice(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	if err != nil {
		var stockErr *service.StockError
		if errors.As(err, &stockErr) {
			f.errors[FieldStock] = strings.Join(stockErr.Messages, "; ")
		}
		return service.CreateInvoiceResult{}, err
	}

	f.reset()
	return result, nil
}

func (f *Form) ClientID() uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clientID
}

func (f *Form) ClientName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clientName
}

// Items returns a copy of the line items.
func (f *Form) Items() []model.LineItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.LineItem, len(f.items))
	copy(out, f.items)
	return out
}

func (f *Form) Total() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// Errors returns a copy of the current field errors.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

func (f *Form) IdempotencyKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key
}

func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// --- Helpers (callers hold mu) ---

func (f *Form) validate() bool {
	ok := true
	if f.clientID == uuid.Nil {
		f.errors[FieldClient] = "select a client"
		ok = false
	}
	if len(f.items) == 0 {
		f.errors[FieldItems] = "add at least one product"
		ok = false
	}
	return ok
}

func (f *Form) request() service.CreateInvoiceRequest {
	lines := make([]service.LineItemRequest, 0, len(f.items))
	for _, item := range f.items {
		lines = append(lines, service.LineItemRequest{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	return service.CreateInvoiceRequest{
		ClientID:       f.clientID.String(),
		ClientName:     f.clientName,
		Items:          lines,
		Total:          f.total,
		IdempotencyKey: f.key,
	}
}

func (f *Form) reset() {
	f.clientID = uuid.Nil
	f.clientName = ""
	f.items = nil
	f.total = decimal.Zero
	f.errors = make(map[string]string)
	f.key = uuid.NewString()
}

func (f *Form) indexOf(productID uuid.UUID) int {
	for i, item := range f.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (f *Form) remove(idx int) {
	f.items = append(f.items[:idx], f.items[idx+1:]...)
	f.changed()
}

// changed recalculates the total and issues a new idempotency key, since the
// edited draft is a different invoice from any earlier submission.
func (f *Form) changed() {
	f.total = model.SumSubtotals(f.items)
	f.key = uuid.NewString()
}
