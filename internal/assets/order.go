package assets

import "slices"

// orderResources returns resources in an order where every resource comes
// after all of its transitive dependencies. It is a depth-first post-order
// walk starting from each resource in declaration order, so the result is
// stable for a given declaration sequence.
func orderResources(resources []*Resource) ([]*Resource, error) {
	ordered := make([]*Resource, 0, len(resources))
	visited := make(map[*Resource]bool, len(resources))
	onPath := make(map[*Resource]bool)
	var path []*Resource

	var visit func(r *Resource) error
	visit = func(r *Resource) error {
		if onPath[r] {
			return newCycleError(path[slices.Index(path, r):], r)
		}
		if visited[r] {
			return nil
		}

		onPath[r] = true
		path = append(path, r)
		for _, dep := range r.deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(onPath, r)

		visited[r] = true
		ordered = append(ordered, r)
		return nil
	}

	for _, r := range resources {
		if err := visit(r); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func newCycleError(loop []*Resource, closing *Resource) *CycleError {
	cycle := make([]string, 0, len(loop)+1)
	for _, r := range loop {
		cycle = append(cycle, r.path)
	}
	return &CycleError{Cycle: append(cycle, closing.path)}
}
