// Package mapping turns an arbitrary uploaded table into canonical supplier
// records.
//
// The pipeline has four steps, each usable on its own:
//
//  1. [NormalizeHeader] / [NormalizeHeaders]: trim, lowercase and flatten
//     newlines and tabs in raw column labels.
//  2. [Resolve]: pick, per canonical field, the first alias from the static
//     alias table that appears among the normalized headers.
//  3. [Standardize]: project every row onto the six canonical fields,
//     synthesizing details from unused columns when it is unmapped, then drop
//     rows without a supplier or product.
//  4. [Canonical]: re-apply the supplier/product filter before persistence.
//
// [Engine.Run] composes the steps and accepts a caller override of the
// inferred mapping. Matching is exact after normalization; there is no fuzzy
// or token matching.
//
// Everything in this package is synchronous and free of shared state. Tables
// passed in are never modified.
package mapping
