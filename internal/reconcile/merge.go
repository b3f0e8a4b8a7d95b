// internal/reconcile/merge.go
package reconcile

// Merge składa trzy fragmenty w jedną paczkę.
//
// create: kolejność zachowana, bez deduplikacji.
// update: grupowane po ID, kolejność pierwszego wystąpienia w
// outOfStock++outdated. Przy kolizji pól wygrywa outdated, niezależnie od
// tego, w jakiej kolejności wołający uruchomił detektory.
func Merge(created []CreateRecord, outOfStock, outdated []UpdateRecord) BatchPayload {
	var create []CreateRecord
	if len(created) > 0 {
		create = append(make([]CreateRecord, 0, len(created)), created...)
	}
	return BatchPayload{
		Create: create,
		Update: MergeUpdates(outOfStock, outdated),
	}
}

// MergeUpdates łączy listy aktualizacji po ID; późniejsza lista (i późniejszy
// rekord) nadpisuje ustawione pola. ID <= 0 odrzucamy.
func MergeUpdates(lists ...[]UpdateRecord) []UpdateRecord {
	var order []int64
	byID := map[int64]UpdateRecord{}
	for _, list := range lists {
		for _, u := range list {
			if u.ID <= 0 {
				continue
			}
			cur, ok := byID[u.ID]
			if !ok {
				order = append(order, u.ID)
				cur = UpdateRecord{ID: u.ID}
			}
			byID[u.ID] = overlay(cur, u)
		}
	}
	if len(order) == 0 {
		return nil
	}
	out := make([]UpdateRecord, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

func overlay(dst, src UpdateRecord) UpdateRecord {
	if src.StockStatus != nil {
		dst.StockStatus = strPtr(*src.StockStatus)
	}
	if src.Name != nil {
		dst.Name = strPtr(*src.Name)
	}
	if src.RegularPrice != nil {
		dst.RegularPrice = strPtr(*src.RegularPrice)
	}
	return dst
}
