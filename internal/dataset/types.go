package dataset

// ContainerID identifies a container row
type ContainerID int64

// Tables holds both parsed input tables for one run
type Tables struct {
	Containers ContainerTable
	Paths      PathTable
}

// ContainerTable is the containers CSV in file order
type ContainerTable []Container

// PathTable is the paths CSV in file order
type PathTable []Path

// Container represents a row from the containers CSV
type Container struct {
	ID          ContainerID
	RawID       string // id column as written, for display
	X           float64
	Y           float64
	WasteLabel  string
	Capacity    int
	RawCapacity string // capacity column as written, for display
	Name        string
	Street      string
	Number      string
	Public      int
}

// Path represents an undirected edge from the paths CSV
type Path struct {
	A        ContainerID
	B        ContainerID
	Distance float64
}

// Len returns the number of container rows
func (t ContainerTable) Len() int {
	return len(t)
}

// At returns the container at row i
func (t ContainerTable) At(i int) Container {
	return t[i]
}

// Len returns the number of path rows
func (t PathTable) Len() int {
	return len(t)
}

// At returns the path at row i
func (t PathTable) At(i int) Path {
	return t[i]
}

// Other returns the endpoint of p opposite to id and whether p touches id
func (p Path) Other(id ContainerID) (ContainerID, bool) {
	switch id {
	case p.A:
		return p.B, true
	case p.B:
		return p.A, true
	}
	return 0, false
}
