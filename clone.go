package enact

// Cloner allows a checked-out value to provide its own deep-copy logic.
// Store.Modify uses Clone to give the caller an isolated mutable copy before
// rebinding the Ref to a new digest — the original committed value, and any
// other Ref still pointing at the old digest, is left untouched.
//
// For simple value types with no pointers, slices, or maps, Clone can simply
// return the receiver value:
//
//	func (u User) Clone() User { return u }
//
// For types with reference fields, ensure deep copying:
//
//	func (o Order) Clone() Order {
//	    items := make([]Item, len(o.Items))
//	    copy(items, o.Items)
//	    return Order{ID: o.ID, Items: items}
//	}
type Cloner[T any] interface {
	Clone() T
}
