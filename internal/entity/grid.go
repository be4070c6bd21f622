package entity

import (
	"errors"
	"fmt"
)

const GridSize = 3

var (
	ErrInvalidWireGrid = errors.New("invalid wire grid")

	// CellIDs lists every cell id as "(col)(row)".
	CellIDs = func() []string {
		ids := make([]string, 0, GridSize*GridSize)
		for col := 0; col < GridSize; col++ {
			for row := 0; row < GridSize; row++ {
				ids = append(ids, CellID(col, row))
			}
		}
		return ids
	}()

	// WinCombos are the 3 rows, 3 columns and 2 diagonals, checked in this order.
	WinCombos = [][3]string{
		{"00", "10", "20"},
		{"01", "11", "21"},
		{"02", "12", "22"},
		{"00", "01", "02"},
		{"10", "11", "12"},
		{"20", "21", "22"},
		{"00", "11", "22"},
		{"20", "11", "02"},
	}
)

// Cell is the state of one grid square. Empty strings stand for null.
type Cell struct {
	Mark   string
	Status string
	Owner  string
}

func (that Cell) IsEmpty() bool {
	return that.Status == EmptyCell
}

func (that Cell) IsSelected() bool {
	return that.Status == CellSelected
}

func (that Cell) IsCaptured() bool {
	return that.Status == CellCaptured
}

type Grid map[string]Cell

func NewGrid() Grid {
	grid := make(Grid, len(CellIDs))
	for _, id := range CellIDs {
		grid[id] = Cell{}
	}
	return grid
}

func (that Grid) Clone() Grid {
	clone := make(Grid, len(that))
	for id, cell := range that {
		clone[id] = cell
	}
	return clone
}

// EmptyCells returns free cell ids in CellIDs order.
func (that Grid) EmptyCells() []string {
	free := make([]string, 0, len(CellIDs))
	for _, id := range CellIDs {
		if that[id].IsEmpty() {
			free = append(free, id)
		}
	}
	return free
}

func CellID(col, row int) string {
	return fmt.Sprintf("%d%d", col, row)
}

// ParseCellID splits a cell id into its column and row.
func ParseCellID(id string) (int, int, bool) {
	if len(id) != 2 {
		return 0, 0, false
	}

	col, row := int(id[0]-'0'), int(id[1]-'0')
	if col < 0 || col >= GridSize || row < 0 || row >= GridSize {
		return 0, 0, false
	}

	return col, row, true
}

func IsValidCellID(id string) bool {
	_, _, ok := ParseCellID(id)
	return ok
}

// WireCell is the transport form of a cell. Nil pointers encode as null.
type WireCell struct {
	CellID  string  `json:"cellId" msgpack:"cellId"`
	Mark    *string `json:"mark" msgpack:"mark"`
	Status  *string `json:"status" msgpack:"status"`
	OwnerID *string `json:"ownerId" msgpack:"ownerId"`
}

// GridToWire serializes the grid as an explicit list of 9 cells.
func GridToWire(grid Grid) []WireCell {
	cells := make([]WireCell, 0, len(CellIDs))
	for _, id := range CellIDs {
		cell := grid[id]
		cells = append(cells, WireCell{
			CellID:  id,
			Mark:    nullable(cell.Mark),
			Status:  nullable(cell.Status),
			OwnerID: nullable(cell.Owner),
		})
	}
	return cells
}

// GridFromWire rebuilds a grid from an unordered list of exactly 9 distinct cells.
func GridFromWire(cells []WireCell) (Grid, error) {
	if len(cells) != len(CellIDs) {
		return nil, fmt.Errorf("%w: got %d cells", ErrInvalidWireGrid, len(cells))
	}

	grid := make(Grid, len(cells))
	for _, wc := range cells {
		if !IsValidCellID(wc.CellID) {
			return nil, fmt.Errorf("%w: cell id %q", ErrInvalidWireGrid, wc.CellID)
		}
		if _, dup := grid[wc.CellID]; dup {
			return nil, fmt.Errorf("%w: duplicate cell id %q", ErrInvalidWireGrid, wc.CellID)
		}

		grid[wc.CellID] = Cell{
			Mark:   deref(wc.Mark),
			Status: deref(wc.Status),
			Owner:  deref(wc.OwnerID),
		}
	}

	return grid, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
