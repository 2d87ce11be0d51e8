package client

import (
	"encoding/json"
	"log"
	"os"
	"sync"

	"github.com/shopspring/decimal"
)

// CartLine is one entry in the local cart. ItemID may be a composite
// "<menu-id>:<addon>" id, matching what the server resolves at checkout.
type CartLine struct {
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
}

// CartStore persists cart lines between sessions.
type CartStore interface {
	Load() ([]CartLine, error)
	Save(lines []CartLine) error
}

// FileCartStore keeps the cart as a JSON file on disk.
type FileCartStore struct {
	Path string
}

func NewFileCartStore(path string) *FileCartStore {
	return &FileCartStore{Path: path}
}

func (s *FileCartStore) Load() ([]CartLine, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var lines []CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *FileCartStore) Save(lines []CartLine) error {
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o644)
}

// CartManager is the local cart. All mutations persist through the store;
// a failed save is logged and the in-memory cart stays authoritative.
type CartManager struct {
	mu    sync.Mutex
	lines []CartLine
	store CartStore
}

// NewCartManager loads any persisted cart from store. A nil store keeps the
// cart in memory only.
func NewCartManager(store CartStore) *CartManager {
	m := &CartManager{store: store}
	if store != nil {
		lines, err := store.Load()
		if err != nil {
			log.Printf("cart: load failed: %v", err)
		} else {
			m.lines = lines
		}
	}
	return m
}

func (m *CartManager) persistLocked() {
	if m.store == nil {
		return
	}
	if err := m.store.Save(m.lines); err != nil {
		log.Printf("cart: save failed: %v", err)
	}
}

func (m *CartManager) indexLocked(itemID string) int {
	for i := range m.lines {
		if m.lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// AddToCart adds quantity of an item. If the item is already present its
// quantity is incremented; the price snapshot is not re-resolved.
func (m *CartManager) AddToCart(line CartLine) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexLocked(line.ItemID); i >= 0 {
		m.lines[i].Quantity += line.Quantity
	} else {
		m.lines = append(m.lines, line)
	}
	m.persistLocked()
}

// UpdateQuantity adjusts an item's quantity by delta. A resulting quantity
// of zero or less removes the line. Unknown ids are a no-op.
func (m *CartManager) UpdateQuantity(itemID string, delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(itemID)
	if i < 0 {
		return
	}
	m.lines[i].Quantity += delta
	if m.lines[i].Quantity <= 0 {
		m.lines = append(m.lines[:i], m.lines[i+1:]...)
	}
	m.persistLocked()
}

// RemoveFromCart deletes a line regardless of its quantity.
func (m *CartManager) RemoveFromCart(itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(itemID)
	if i < 0 {
		return
	}
	m.lines = append(m.lines[:i], m.lines[i+1:]...)
	m.persistLocked()
}

// Clear empties the cart, used after a successful checkout.
func (m *CartManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil
	m.persistLocked()
}

// MergeRemote folds a server-side cart into the local one, used after
// sign-in. Lines are merged by item id with quantities summed; the remote
// price snapshot wins for lines present on both sides.
func (m *CartManager) MergeRemote(remote []CartLine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range remote {
		if i := m.indexLocked(r.ItemID); i >= 0 {
			m.lines[i].Quantity += r.Quantity
			m.lines[i].Price = r.Price
			m.lines[i].Name = r.Name
		} else {
			m.lines = append(m.lines, r)
		}
	}
	m.persistLocked()
}

// Lines returns a copy of the cart contents.
func (m *CartManager) Lines() []CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CartLine, len(m.lines))
	copy(out, m.lines)
	return out
}

// Count is the total number of units across all lines.
func (m *CartManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, l := range m.lines {
		total += l.Quantity
	}
	return total
}

// Total is the cart subtotal before tax and fees.
func (m *CartManager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, l := range m.lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
