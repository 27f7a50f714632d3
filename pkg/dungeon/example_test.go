package dungeon_test

import (
	"fmt"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
)

func ExampleLayout_AddCell() {
	l := dungeon.New()
	hall := l.AddCell(dungeon.NewCell(0x0100), "Root/Wing1")
	room := l.AddCell(dungeon.NewCell(0x0101), "Wing1/RoomA")

	area, _ := l.AreaOf(room)
	fmt.Println("ids:", hall, room)
	fmt.Println("room area:", area.Path())
	fmt.Println("cells:", l.CellCount())
	// Output:
	// ids: 1 2
	// room area: Root/Wing1/RoomA
	// cells: 2
}

func ExampleHierarchy_MoveArea() {
	l := dungeon.New()
	h := l.Hierarchy()
	h.GetOrCreateArea("Root/A")
	h.GetOrCreateArea("Root/B")

	h.MoveArea("Root/A", "Root/B")
	for _, a := range h.Areas() {
		fmt.Println(a.Path())
	}
	// Output:
	// Root
	// Root/B
	// Root/B/A
}
