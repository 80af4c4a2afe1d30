// Package mlearn contains the hand-rolled learning primitives the model
// stages share: standardization, label encoding, seeded train/test splits,
// quantiles, CART tree ensembles, k-means and evaluation metrics.
//
// Everything is deterministic under a fixed seed. The tree ensembles
// parallelize across trees internally but give each tree its own derived
// seed, so results do not depend on goroutine scheduling.
package mlearn
