// Package ir provides the value and record types every other relq package
// is built on.
//
// This package imports nothing internal. Predicates, orderings, relations
// and loaders all speak in IRValue, so ir remains the foundational layer with
// no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - numbers are int64 so equality and ordering
//     are exact
//   - Records are read through the Record interface only; IRObject is the
//     stock implementation
//   - Strings are NFC normalized whenever they are compared or serialized
//     canonically
package ir
