package domain

import "fmt"

// UnitSnapshot is the JSON-serializable nested encoding of a unit tree used
// by persistence backends. Unlike the flat record format it preserves node
// identifiers, zero placeholder measurements, and empty groups exactly, so a
// decoded catalog is byte-for-byte equivalent to the encoded one.
type UnitSnapshot struct {
	ID           string         `json:"id"`
	Kind         UnitKind       `json:"kind"`
	Address      string         `json:"address"`
	Status       Status         `json:"status"`
	Area         float64        `json:"area,omitempty"`
	PricePerArea float64        `json:"price_per_area,omitempty"`
	Children     []UnitSnapshot `json:"children,omitempty"`
}

// EncodeUnit captures a unit tree as a snapshot node.
func EncodeUnit(unit Unit) UnitSnapshot {
	switch u := unit.(type) {
	case *Leaf:
		return UnitSnapshot{
			ID:           u.id,
			Kind:         KindLeaf,
			Address:      u.address.FileString(),
			Status:       u.status,
			Area:         u.area,
			PricePerArea: u.pricePerArea,
		}
	case *Group:
		snap := UnitSnapshot{
			ID:           u.id,
			Kind:         KindGroup,
			Address:      u.address.FileString(),
			Status:       u.status,
			PricePerArea: u.pricePerArea,
		}
		for _, child := range u.children {
			snap.Children = append(snap.Children, EncodeUnit(child))
		}
		return snap
	default:
		snap := UnitSnapshot{
			ID:           unit.ID(),
			Kind:         unit.Kind(),
			Address:      unit.Address().FileString(),
			Status:       unit.Status(),
			PricePerArea: unit.PricePerArea(),
		}
		for _, child := range unit.Children() {
			snap.Children = append(snap.Children, EncodeUnit(child))
		}
		return snap
	}
}

// DecodeUnit rebuilds a unit tree from its snapshot encoding.
func DecodeUnit(snap UnitSnapshot) (Unit, error) {
	address, err := ParseAddress(snap.Address)
	if err != nil {
		return nil, err
	}
	switch snap.Kind {
	case KindLeaf:
		return NewLeaf(snap.ID, address, snap.Area, snap.PricePerArea, snap.Status)
	case KindGroup:
		group, err := NewGroup(snap.ID, address, snap.Status)
		if err != nil {
			return nil, err
		}
		group.pricePerArea = snap.PricePerArea
		for _, childSnap := range snap.Children {
			child, err := DecodeUnit(childSnap)
			if err != nil {
				return nil, err
			}
			if err := group.Add(child); err != nil {
				return nil, err
			}
		}
		return group, nil
	default:
		return nil, fmt.Errorf("unknown unit kind %q", snap.Kind)
	}
}
