package domain

// Flatten serializes a unit tree back into flat records, one per leaf. It is
// the inverse of BuildForest: rebuilding the flattened records yields a
// forest with the same multiset of (area, total price, status, address) leaf
// tuples, up to node-identifier assignment.
//
// A childless group cannot be flattened: its measurements are derived and
// there is nothing to derive them from, so the aggregate error propagates.
func Flatten(unit Unit) ([]RawRecord, error) {
	var records []RawRecord
	if err := flattenInto(unit, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FlattenForest flattens every tree of the forest in order.
func FlattenForest(forest []Unit) ([]RawRecord, error) {
	var records []RawRecord
	for _, unit := range forest {
		if err := flattenInto(unit, &records); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func flattenInto(unit Unit, records *[]RawRecord) error {
	children := unit.Children()
	if len(children) == 0 {
		area, err := unit.Area()
		if err != nil {
			return err
		}
		price, err := unit.TotalPrice()
		if err != nil {
			return err
		}
		*records = append(*records, RawRecord{
			Area:       area,
			TotalPrice: price,
			Status:     string(unit.Status()),
			Address:    unit.Address().FileString(),
		})
		return nil
	}
	for _, child := range children {
		if err := flattenInto(child, records); err != nil {
			return err
		}
	}
	return nil
}
