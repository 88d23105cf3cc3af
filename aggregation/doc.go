// Package aggregation flattens the parameters of several model objects into
// one vector and maps a vector of that layout back to per-object updates.
//
// The layout (object order, offsets, lengths) is fixed when the Aggregation
// is built: objects keep their first-occurrence order and duplicates (same
// handle) collapse into one slot. An Aggregation is immutable and safe for
// concurrent use.
//
// Round trip: for every aggregation a,
//
//	ups, _ := a.ObjectsToModifyForParameter(a.Parameter())
//
// yields, for each object, exactly that object's Parameter().
package aggregation
