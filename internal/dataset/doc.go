// Package dataset loads record collections, and their named scopes, from
// declarative files.
//
// A dataset names a collection, optionally its primary key, lists its
// records and declares named scopes:
//
//	name: Project
//	primary_key: id
//	records:
//	  - {id: 1, state: draft, priority: 1}
//	  - {id: 3, state: completed, priority: 3}
//	scopes:
//	  completed:
//	    where: {state: completed}
//	  urgent:
//	    order: {priority: desc}
//	    limit: 1
//	  in_state:
//	    params: [state]
//	    where: {state: $state}
//	  urgent_completed:
//	    scopes: [completed, urgent]
//
// The same layout is accepted as YAML (.yaml, .yml), JSON (.json) and CUE
// (.cue). Mapping order is kept for where and order clauses. A scope's
// clauses apply in this sequence: referenced scopes, where, where_not,
// order, offset, limit.
package dataset
