package sales

import (
	"context"
	"sync"
)

// Mode is the state of the entry form.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Form is the sale entry form. In create mode Submit adds a sale; after
// BeginEdit it edits that sale instead. A successful Submit or a ledger
// reload returns the form to create mode.
type Form struct {
	svc *Service

	mu          sync.Mutex
	productName string
	price       string
	editingID   string
	generation  int
}

// NewForm returns an empty form in create mode.
func NewForm(svc *Service) *Form {
	return &Form{svc: svc}
}

// Mode reports the current mode.
func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode()
}

// EditingID returns the ID of the sale being edited, or "" in create mode.
func (f *Form) EditingID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode() != ModeEdit {
		return ""
	}
	return f.editingID
}

// Fill sets the form fields.
func (f *Form) Fill(productName, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productName = productName
	f.price = price
}

// Fields returns the current form fields.
func (f *Form) Fields() (productName, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.productName, f.price
}

// BeginEdit prefills the form with the sale and switches to edit mode.
func (f *Form) BeginEdit(id string) error {
	sale, err := f.svc.Get(id)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.productName = sale.ProductName
	f.price = sale.Price.String()
	f.editingID = sale.ID
	f.generation = f.svc.Generation()
	return nil
}

// Submit adds or edits a sale depending on the mode and returns the feedback
// message. On validation failure the form keeps its fields and mode.
func (f *Form) Submit(ctx context.Context) (*Sale, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var (
		sale *Sale
		msg  string
		err  error
	)
	if f.mode() == ModeEdit {
		sale, err = f.svc.Edit(ctx, f.editingID, f.productName, f.price)
		msg = MsgEdited
	} else {
		sale, err = f.svc.Add(ctx, f.productName, f.price)
		msg = MsgAdded
	}
	if err != nil {
		return nil, UserMessage(err), err
	}
	f.reset()
	return sale, msg, nil
}

// Reset clears the fields and returns to create mode.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *Form) reset() {
	f.productName = ""
	f.price = ""
	f.editingID = ""
}

func (f *Form) mode() Mode {
	if f.editingID == "" || f.generation != f.svc.Generation() {
		return ModeCreate
	}
	return ModeEdit
}
