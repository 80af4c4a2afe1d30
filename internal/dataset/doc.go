// Package dataset holds the in-memory tabular data model shared by every
// analysis stage: a typed Dataset of named columns, a BOM-tolerant CSV
// loader, and the role-based Transactions view that gives downstream
// components strongly-typed access to the customer, timestamp and amount
// columns without re-inspecting raw data.
//
// Datasets are read-only once loaded. Stages that need derived columns use
// WithColumn, which copies; nothing ever mutates a shared dataset in place.
package dataset
