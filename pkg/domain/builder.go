package domain

// BuildForest reconstructs a forest of unit trees from a flat, unordered
// record sequence whose only hierarchy signal is the address path.
//
// Depth-2 records become leaf units and pre-register an empty group
// placeholder at the same address, anticipating sub-address records that
// will need a parent there. Deeper records become leaves attached to their
// immediate parent group, synthesizing missing intermediate groups upward
// until a depth-2 ancestor exists; synthesis terminates because address
// depth strictly decreases at each step. A post-pass drops free-standing
// leaves already represented inside a composite, so every input record is
// represented exactly once in the result.
//
// Malformed records are skipped and reported as RecordError values; a single
// bad row is never fatal to the batch. A duplicate-child failure during
// parent resolution is a programming-invariant violation and aborts with an
// error.
func BuildForest(records []RawRecord) ([]Unit, []RecordError, error) {
	b := &forestBuilder{groups: make(map[string]*Group)}
	var skipped []RecordError
	for _, record := range records {
		if reason, ok := b.consume(record); !ok {
			skipped = append(skipped, RecordError{Record: record, Reason: reason})
		} else if b.err != nil {
			return nil, skipped, b.err
		}
	}
	return b.assemble(), skipped, nil
}

// forestBuilder is an arena of group nodes keyed by address storage string,
// with lookup-or-create parent resolution.
type forestBuilder struct {
	groups map[string]*Group
	// roots records first appearance of depth-2 units (free leaves and
	// group placeholders) to keep result ordering stable.
	roots []Unit
	err   error
}

// consume parses and places one record. It returns a skip reason and false
// when the record is malformed; structural failures land in b.err.
func (b *forestBuilder) consume(record RawRecord) (string, bool) {
	address, err := ParseAddress(record.Address)
	if err != nil {
		return err.Error(), false
	}
	if address.Depth() < mainDepth {
		return "address depth must be at least 2", false
	}
	status, ok := ParseStatus(record.Status)
	if !ok {
		return "unknown status " + record.Status, false
	}
	if record.Area <= 0 {
		return "area must be positive", false
	}
	if record.TotalPrice < 0 {
		return "total price must not be negative", false
	}
	pricePerArea := record.TotalPrice / record.Area

	key := address.Key()
	leaf, err := NewLeaf(AddressID(key), address, record.Area, pricePerArea, status)
	if err != nil {
		return err.Error(), false
	}

	if !address.IsSubAddress() {
		b.roots = append(b.roots, leaf)
		// Pre-register an empty group placeholder at the same address; later
		// sub-address records will resolve it as their parent.
		if _, exists := b.groups[key]; !exists {
			b.ensureGroup(address, status)
		}
		return "", true
	}

	parentAddress, err := address.ParentAddress()
	if err != nil {
		return err.Error(), false
	}
	parent := b.ensureGroup(parentAddress, status)
	if parent == nil {
		return "", true
	}
	if err := parent.Add(leaf); err != nil {
		b.err = err
	}
	return "", true
}

// ensureGroup resolves the group at address, synthesizing it and its missing
// ancestors when absent. Synthesized groups receive deterministic ids
// derived from the address string.
func (b *forestBuilder) ensureGroup(address Address, status Status) *Group {
	if b.err != nil {
		return nil
	}
	key := address.Key()
	if group, ok := b.groups[key]; ok {
		return group
	}
	group, err := NewGroup(AddressID(key), address, status)
	if err != nil {
		b.err = err
		return nil
	}
	b.groups[key] = group
	if !address.IsSubAddress() {
		b.roots = append(b.roots, group)
		return group
	}
	parentAddress, err := address.ParentAddress()
	if err != nil {
		b.err = err
		return nil
	}
	parent := b.ensureGroup(parentAddress, status)
	if parent == nil {
		return nil
	}
	if err := parent.Add(group); err != nil {
		b.err = err
		return nil
	}
	return group
}

// assemble filters the root list: group placeholders that never accumulated
// children are dropped, and free leaves whose address already appears inside
// a kept composite are deduplicated away.
func (b *forestBuilder) assemble() []Unit {
	subsumed := make(map[string]struct{})
	for _, root := range b.roots {
		if group, ok := root.(*Group); ok && len(group.children) > 0 {
			markAddresses(group, subsumed)
		}
	}

	var forest []Unit
	for _, root := range b.roots {
		switch unit := root.(type) {
		case *Group:
			if len(unit.children) > 0 {
				forest = append(forest, unit)
			}
		case *Leaf:
			if _, ok := subsumed[unit.Address().Key()]; !ok {
				forest = append(forest, unit)
			}
		}
	}
	return forest
}

func markAddresses(unit Unit, seen map[string]struct{}) {
	seen[unit.Address().Key()] = struct{}{}
	for _, child := range unit.Children() {
		markAddresses(child, seen)
	}
}
