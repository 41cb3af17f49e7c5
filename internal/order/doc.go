// Package order provides the ordering algebra relations sort with.
//
// A Key compares two records on one attribute, Ascending or Descending. A
// Clause is an ordered list of keys compared lexicographically: the first
// key that tells the records apart decides, and a clause whose keys all
// compare equal (including the empty clause) leaves the records tied.
//
// Sort is stable, so ties keep the order of the base sequence. That makes
// chained refinement well defined: Combine(By("a"), By("b")) sorts exactly
// like By("a", "b").
package order
