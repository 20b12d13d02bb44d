package lifecycle

import "container/list"

// retention is a bounded id->record index ordered by last update.
// On overflow the least recently updated terminal record goes first, so
// in-flight notifications keep their status as long as possible.
// Callers hold the tracker lock.
type retention struct {
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

func newRetention(capacity int) *retention {
	return &retention{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (r *retention) get(id string) (*record, bool) {
	elem, ok := r.items[id]
	if !ok {
		return nil, false
	}
	return elem.Value.(*record), true
}

// touch stores rec as the most recently updated record and returns the ids
// evicted to make room.
func (r *retention) touch(rec *record) []string {
	if elem, ok := r.items[rec.id]; ok {
		elem.Value = rec
		r.order.MoveToFront(elem)
		return nil
	}

	r.items[rec.id] = r.order.PushFront(rec)

	var evicted []string
	for r.order.Len() > r.capacity {
		victim := r.victim()
		delete(r.items, victim.Value.(*record).id)
		r.order.Remove(victim)
		evicted = append(evicted, victim.Value.(*record).id)
	}
	return evicted
}

// victim never picks the front element, which is the record just written.
func (r *retention) victim() *list.Element {
	for elem := r.order.Back(); elem != nil && elem != r.order.Front(); elem = elem.Prev() {
		if elem.Value.(*record).state.Terminal() {
			return elem
		}
	}
	return r.order.Back()
}

func (r *retention) remove(id string) bool {
	elem, ok := r.items[id]
	if !ok {
		return false
	}
	r.order.Remove(elem)
	delete(r.items, id)
	return true
}

func (r *retention) len() int {
	return r.order.Len()
}
