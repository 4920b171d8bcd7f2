package value

// heapSlot is one entry of the refcounted heap: the Go-level payload
// for a heap-handle Value, plus its live reference count. Grounded on
// spec §4.10's "Refcounted heap (design)" section.
type heapSlot struct {
	data     any
	refCount int
	live     bool
}

// Heap holds every reference-type value's payload behind a handle ID,
// with a free list so dec_ref-to-zero slots get reused.
type Heap struct {
	slots []heapSlot
	free  []int
}

func NewHeap() *Heap {
	return &Heap{}
}

// Alloc stores data in a fresh or recycled slot with ref_count 1 and
// returns its ID.
func (h *Heap) Alloc(data any) int {
	if n := len(h.free); n > 0 {
		id := h.free[n-1]
		h.free = h.free[:n-1]
		h.slots[id] = heapSlot{data: data, refCount: 1, live: true}
		return id
	}
	h.slots = append(h.slots, heapSlot{data: data, refCount: 1, live: true})
	return len(h.slots) - 1
}

func (h *Heap) IncRef(id int) {
	h.slots[id].refCount++
}

// DecRef drops one reference; at zero it depth-first drops any child
// heap handles the payload holds, then returns the slot to the free
// list.
func (h *Heap) DecRef(id int) {
	h.slots[id].refCount--
	if h.slots[id].refCount <= 0 {
		h.dropChildren(h.slots[id].data)
		h.slots[id] = heapSlot{}
		h.free = append(h.free, id)
	}
}

func (h *Heap) dropChildren(data any) {
	switch d := data.(type) {
	case []Value:
		for _, v := range d {
			if id, ok := HeapID(v); ok {
				h.DecRef(id)
			}
		}
	case *ObjectData:
		for _, name := range d.Order {
			if id, ok := HeapID(d.Fields[name]); ok {
				h.DecRef(id)
			}
		}
	}
}

// Get returns a slot's payload, for the VM to type-assert into the
// concrete Go representation (string, []Value, *ObjectData).
func (h *Heap) Get(id int) any {
	return h.slots[id].data
}

// Set replaces a slot's payload in place, used by SetIndex/SetField so
// every Value alias sharing the handle observes the mutation.
func (h *Heap) Set(id int, data any) {
	h.slots[id].data = data
}

// CheckExclusiveBorrow reports whether id's payload has exactly one
// live reference, the precondition a `&mut` borrow of a heap value
// requires (spec §4.10).
func (h *Heap) CheckExclusiveBorrow(id int) bool {
	return h.slots[id].refCount == 1
}

func (h *Heap) RefCount(id int) int {
	return h.slots[id].refCount
}
