package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/plateful/internal/model"
	"github.com/google/uuid"
)

type GroceryStore struct {
	db *sql.DB
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db}
}

// --- List methods ---

func scanList(scanner interface{ Scan(...any) error }) (*model.GroceryList, error) {
	var l model.GroceryList
	err := scanner.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const listCols = `id, name, created_at, updated_at`

// GetList returns the list with its items, or nil if it does not exist.
func (s *GroceryStore) GetList(id string) (*model.GroceryList, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM grocery_lists WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	l.Items, err = s.ListItemsByList(id)
	if err != nil {
		return nil, err
	}
	if l.Items == nil {
		l.Items = []model.GroceryItem{}
	}
	return l, nil
}

// ListLists returns every list, newest first, with items attached.
func (s *GroceryStore) ListLists() ([]model.GroceryList, error) {
	rows, err := s.db.Query(`SELECT ` + listCols + ` FROM grocery_lists ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}

	var lists []model.GroceryList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range lists {
		items, err := s.ListItemsByList(lists[i].ID)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []model.GroceryItem{}
		}
		lists[i].Items = items
	}
	return lists, nil
}

func (s *GroceryStore) CreateList(name string) (*model.GroceryList, error) {
	return s.CreateListWithItems(name, nil)
}

// CreateListWithItems inserts a list and its items in one transaction.
// Items keep their ids when set and are ordered as given.
func (s *GroceryStore) CreateListWithItems(name string, items []model.GroceryItem) (*model.GroceryList, error) {
	if name == "" {
		name = model.DefaultGroceryListName
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	now := time.Now().UTC()
	if _, err := tx.Exec(
		`INSERT INTO grocery_lists (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, name, now, now,
	); err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}

	for i, item := range items {
		item.SortOrder = i
		if err := insertItem(tx, id, &item, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit list: %w", err)
	}
	return s.GetList(id)
}

func (s *GroceryStore) DeleteList(id string) error {
	_, err := s.db.Exec(`DELETE FROM grocery_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

func (s *GroceryStore) touchList(listID string) error {
	_, err := s.db.Exec(`UPDATE grocery_lists SET updated_at = ? WHERE id = ?`, time.Now().UTC(), listID)
	if err != nil {
		return fmt.Errorf("touch list: %w", err)
	}
	return nil
}

// --- Item methods ---

func scanItem(scanner interface{ Scan(...any) error }) (*model.GroceryItem, error) {
	var item model.GroceryItem
	var purchased int
	var sourceRecipes string

	err := scanner.Scan(
		&item.ID, &item.ListID, &item.Name, &item.Category, &item.Quantity, &item.Unit,
		&purchased, &item.Notes, &item.Source, &item.SourceID, &sourceRecipes,
		&item.SortOrder, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Purchased = purchased != 0
	if err := json.Unmarshal([]byte(sourceRecipes), &item.SourceRecipes); err != nil {
		return nil, fmt.Errorf("decode source recipes: %w", err)
	}
	if item.SourceRecipes == nil {
		item.SourceRecipes = []string{}
	}
	return &item, nil
}

const itemCols = `id, list_id, name, category, quantity, unit, purchased, notes, source, source_id, source_recipes, sort_order, created_at, updated_at`

func insertItem(db execer, listID string, item *model.GroceryItem, now time.Time) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Source == "" {
		item.Source = model.SourceManual
	}
	sourceRecipes := item.SourceRecipes
	if sourceRecipes == nil {
		sourceRecipes = []string{}
	}
	srJSON, err := json.Marshal(sourceRecipes)
	if err != nil {
		return fmt.Errorf("encode source recipes: %w", err)
	}

	purchased := 0
	if item.Purchased {
		purchased = 1
	}

	_, err = db.Exec(
		`INSERT INTO grocery_items (`+itemCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, listID, item.Name, item.Category, item.Quantity, item.Unit, purchased, item.Notes,
		item.Source, item.SourceID, string(srJSON), item.SortOrder, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *GroceryStore) GetItemByID(id string) (*model.GroceryItem, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM grocery_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// CreateItem appends item to the end of the list.
func (s *GroceryStore) CreateItem(listID string, item model.GroceryItem) (*model.GroceryItem, error) {
	var next int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM grocery_items WHERE list_id = ?`, listID).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("next sort order: %w", err)
	}
	item.SortOrder = next
	item.ID = ""

	if err := insertItem(s.db, listID, &item, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.touchList(listID); err != nil {
		return nil, err
	}
	return s.GetItemByID(item.ID)
}

func (s *GroceryStore) ListItemsByList(listID string) ([]model.GroceryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM grocery_items WHERE list_id = ? ORDER BY sort_order ASC, created_at ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.GroceryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *GroceryStore) UpdateItem(id, name string, quantity float64, unit, notes, category string) (*model.GroceryItem, error) {
	_, err := s.db.Exec(
		`UPDATE grocery_items SET name = ?, quantity = ?, unit = ?, notes = ?, category = ?, updated_at = ? WHERE id = ?`,
		name, quantity, unit, notes, category, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *GroceryStore) DeleteItem(id string) error {
	_, err := s.db.Exec(`DELETE FROM grocery_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *GroceryStore) TogglePurchased(id string) (*model.GroceryItem, error) {
	result, err := s.db.Exec(
		`UPDATE grocery_items SET purchased = 1 - purchased, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle purchased: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return nil, nil
	}
	return s.GetItemByID(id)
}

func (s *GroceryStore) ClearPurchased(listID string) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM grocery_items WHERE list_id = ? AND purchased = 1`,
		listID,
	)
	if err != nil {
		return 0, fmt.Errorf("clear purchased: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
