// Package captions owns the caption model: the mutable caption store, the
// active-caption lookup used during rendering, and the read-only helpers
// (search, density statistics, SRT export) built on top of it.
//
// Captions are kept in non-decreasing start order. Overlapping intervals are
// allowed; lookup resolves them by returning the first match in stored order,
// with both interval ends inclusive. Renders never read the live store: they
// take a Timeline snapshot so edits made while a render runs cannot affect
// frames already scheduled.
package captions
