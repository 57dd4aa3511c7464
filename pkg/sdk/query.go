// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package sdk

// Querier is the base capability of every interface in the SDK.
//
// Query asks the implementation for the optional capability identified by
// id, writing the result through out on success. The set of valid ids and
// the concrete pointer type expected for out are defined by whichever
// interface implements Query; there is no global id registry. Check the
// documentation of the interface you are querying for its ids.
//
// An unrecognized id returns false and must not touch out. A recognized id
// whose out argument is not the expected pointer type also returns false
// without touching out.
//
// A chat-parsing module, for example, can answer an id of
// "register_callback" by accepting a callback through out, letting
// unrelated modules interact with it without an extended interface.
type Querier interface {
	Query(id string, out any) bool
}

// QueryAs queries q for id, inferring the expected output type from the
// call site. It is the typed convenience form of [Querier.Query].
func QueryAs[T any](q Querier, id string) (T, bool) {
	var v T
	if q == nil || !q.Query(id, &v) {
		var zero T
		return zero, false
	}
	return v, true
}

// QueryTable maps capability ids to answer functions. Concrete interfaces
// implement Query by delegating to a table of the ids they recognize.
//
// An answer function receives the caller's out slot and returns false
// without writing when the slot is not the type it expects. Use [Answer]
// or [AnswerFunc] to build entries with that check in place.
type QueryTable map[string]func(out any) bool

// Query implements the [Querier] contract over the table: unknown ids fail
// without touching out, known ids delegate to their answer function.
func (t QueryTable) Query(id string, out any) bool {
	answer, ok := t[id]
	if !ok {
		return false
	}
	return answer(out)
}

// Answer builds a query table entry that copies v into an out slot of type
// *T. Any other slot type fails the query without writing.
func Answer[T any](v T) func(out any) bool {
	return AnswerFunc(func() T { return v })
}

// AnswerFunc builds a query table entry whose value is produced at query
// time. The slot type check is identical to [Answer].
func AnswerFunc[T any](produce func() T) func(out any) bool {
	return func(out any) bool {
		p, ok := out.(*T)
		if !ok || p == nil {
			return false
		}
		*p = produce()
		return true
	}
}
