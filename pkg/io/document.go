package io

// Version is the document format version written by this package. Readers
// reject any other version.
const Version = 1

type document struct {
	Version    int       `json:"version"`
	NextCellID uint32    `json:"next_cell_id,omitempty"`
	Cells      []cellDoc `json:"cells"`
	Root       *areaDoc  `json:"root"`
}

type cellDoc struct {
	ID        uint32     `json:"id"`
	ContentID uint32     `json:"content_id"`
	Position  [3]float32 `json:"position"`
	Rotation  [4]float32 `json:"rotation"`
	Scale     [3]float32 `json:"scale"`
}

type areaDoc struct {
	Name     string     `json:"name"`
	Position [3]float32 `json:"position"`
	Rotation [4]float32 `json:"rotation"`
	Scale    [3]float32 `json:"scale"`
	CellIDs  []uint32   `json:"cell_ids"`
	Children []*areaDoc `json:"children"`
}
